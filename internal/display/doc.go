// Package display provides terminal UI helpers: warnings, step progress and
// a text progress bar.
//
// # Warning Messages
//
//	display.Warning{
//	    Title:      "Leftover scratch files",
//	    Files:      leftovers,
//	    Suggestion: "Remove them or pick another --scratch-dir",
//	}.Display(os.Stderr)
//
// # Progress
//
// ProgressIndicator prints one "[N/Total] name" line per step and is used while
// scanning documents. ProgressBar renders "[=====     ] 5/10 (50%)" for long
// validation batches.
//
// Colors come from fatih/color, so they switch off automatically when output
// is not a terminal or NO_COLOR is set. All functions take an io.Writer.
package display
