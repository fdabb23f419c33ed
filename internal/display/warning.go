package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Message    string   // Detailed explanation (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  Warning: ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	if w.Message != "" {
		b.WriteString("    ")
		b.WriteString(w.Message)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	color.New(color.FgYellow).Fprint(out, b.String())
}

// WarnLeftoverScratch builds the warning shown when a scratch directory
// still holds files from an earlier, interrupted run.
func WarnLeftoverScratch(dir string, files []string) Warning {
	return Warning{
		Title:      "Scratch directory has leftover files",
		Message:    fmt.Sprintf("%s was not empty before this run; leftovers are left untouched", dir),
		Files:      files,
		Suggestion: "Remove them by hand or pass a different --scratch-dir",
	}
}

// WarnNoArtifacts builds the warning shown when extraction finds nothing.
func WarnNoArtifacts(files []string) Warning {
	return Warning{
		Title:      "No diagrams found",
		Message:    "None of the scanned documents contain a mermaid code block",
		Files:      files,
		Suggestion: "Check the paths, or the --lang flag if your fences use another tag",
	}
}
