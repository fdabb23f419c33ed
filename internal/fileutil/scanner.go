package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScanOptions configures directory scanning.
type ScanOptions struct {
	// Extensions to include, e.g. ".md" (empty = all files)
	Extensions []string
	// Recursive descends into subdirectories
	Recursive bool
	// ExcludeDirs lists directory names to skip; hidden directories are always skipped
	ExcludeDirs []string
}

// ScanResult contains the results of a scan.
type ScanResult struct {
	// Files holds absolute, sorted paths of matched files
	Files []string
	// Errors holds non-fatal errors met while walking
	Errors []error
}

func (o ScanOptions) extensionSet() map[string]bool {
	set := make(map[string]bool, len(o.Extensions))
	for _, ext := range o.Extensions {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		set[strings.ToLower(ext)] = true
	}
	return set
}

// Matches reports whether a file name passes the extension filter.
func (o ScanOptions) Matches(name string) bool {
	if len(o.Extensions) == 0 {
		return true
	}
	return o.extensionSet()[strings.ToLower(filepath.Ext(name))]
}

// ScanDirectory scans dir for files matching opts.
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	exts := opts.extensionSet()
	excluded := make(map[string]bool, len(opts.ExcludeDirs))
	for _, d := range opts.ExcludeDirs {
		excluded[d] = true
	}

	result := &ScanResult{Files: []string{}}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, walkErr))
			return nil
		}
		if path == dir {
			return nil
		}

		if d.IsDir() {
			if !opts.Recursive || excluded[d.Name()] || strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if len(exts) > 0 && !exts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}
		result.Files = append(result.Files, abs)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	sort.Strings(result.Files)
	return result, nil
}

// CollectFiles resolves a mix of file and directory paths.
// Files named explicitly are included even if their extension does not match.
// Missing paths are an error; walk errors inside directories are collected.
func CollectFiles(paths []string, opts ScanOptions) (*ScanResult, error) {
	result := &ScanResult{Files: []string{}}
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			result.Files = append(result.Files, p)
		}
	}

	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path for %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("failed to access path %s: %w", p, err)
		}

		if !info.IsDir() {
			add(abs)
			continue
		}

		scanned, err := ScanDirectory(abs, opts)
		if err != nil {
			return nil, err
		}
		for _, f := range scanned.Files {
			add(f)
		}
		result.Errors = append(result.Errors, scanned.Errors...)
	}

	sort.Strings(result.Files)
	return result, nil
}
