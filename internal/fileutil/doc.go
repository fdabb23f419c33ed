// Package fileutil finds the documents mmdcheck extracts diagrams from.
//
// ScanDirectory walks one directory; CollectFiles accepts the mix of files and
// directories given on the command line. Both filter by extension
// (case-insensitive), skip hidden and excluded directories, and return
// sorted, absolute, de-duplicated paths so extraction is deterministic.
//
//	files, err := fileutil.CollectFiles([]string{"docs", "README.md"}, fileutil.ScanOptions{
//	    Extensions:  []string{".md", ".markdown"},
//	    Recursive:   true,
//	    ExcludeDirs: []string{"node_modules"},
//	})
//
// Errors hit while walking (unreadable subdirectories) are collected in
// ScanResult.Errors and do not stop the scan.
package fileutil
