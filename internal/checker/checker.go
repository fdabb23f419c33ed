// Package checker runs the external diagram renderer that decides whether a
// diagram source is valid.
//
// The checker contract is narrow: an executable that takes an input path and
// an output path, exits 0 when the input renders and non-zero otherwise, and
// may explain a failure on stderr or stdout. Nothing else about the renderer
// is assumed.
package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoCommand is returned when a CommandChecker has an empty command template.
var ErrNoCommand = errors.New("checker command is empty")

// Checker validates one materialized artifact.
type Checker interface {
	// Check runs the checker against inputPath, asking it to render to outputPath.
	// Check never returns an error: every failure is described by the Result.
	Check(ctx context.Context, inputPath, outputPath string) Result
}

// Result captures a single checker invocation.
type Result struct {
	ExitCode int           // Process exit status (-1 when it never exited normally)
	Stdout   string        // Captured standard output
	Stderr   string        // Captured standard error
	Duration time.Duration // Wall time of the invocation
	Err      error         // Launch failure or *TimeoutError
	TimedOut bool          // The checker was killed at the deadline
}

// Passed reports whether the checker accepted the input.
func (r Result) Passed() bool {
	return r.Err == nil && !r.TimedOut && r.ExitCode == 0
}

// Diagnostic returns the text that explains a failed check.
// Preference order: stderr, stdout, then a generic message built from the
// error or exit status. A timeout always leads with the timeout message.
func (r Result) Diagnostic() string {
	captured := r.Stderr
	if strings.TrimSpace(captured) == "" {
		captured = r.Stdout
	}
	// Whitespace-only output is not a diagnostic
	if strings.TrimSpace(captured) == "" {
		captured = ""
	}
	if r.TimedOut {
		msg := "checker timed out"
		var te *TimeoutError
		if errors.As(r.Err, &te) {
			msg = te.Error()
		}
		if captured != "" {
			return msg + "\n" + captured
		}
		return msg
	}

	if captured != "" {
		return captured
	}
	if r.Err != nil {
		return fmt.Sprintf("checker failed: %v", r.Err)
	}
	return fmt.Sprintf("checker exited with status %d", r.ExitCode)
}

// TimeoutError reports a checker killed at its deadline.
type TimeoutError struct {
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("checker timed out after %v", e.Timeout)
}

// Unwrap returns context.DeadlineExceeded to support errors.Is.
func (e *TimeoutError) Unwrap() error {
	return context.DeadlineExceeded
}

// IsTimeoutError checks if the error is or wraps a TimeoutError or context.DeadlineExceeded.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Func adapts a plain function to the Checker interface.
type Func func(ctx context.Context, inputPath, outputPath string) Result

// Check calls f.
func (f Func) Check(ctx context.Context, inputPath, outputPath string) Result {
	return f(ctx, inputPath, outputPath)
}
