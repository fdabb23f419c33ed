package models

import (
	"errors"
	"fmt"
)

// Setup phases in which a run can fail before any artifact is validated.
const (
	PhaseConfig  = "config"
	PhaseInput   = "input"
	PhaseScratch = "scratch"
)

// SetupError is a fatal error raised before the validation loop starts:
// an input that cannot be loaded, a scratch directory that cannot be
// created or locked, or an invalid configuration.
type SetupError struct {
	Phase string // One of the Phase* constants
	Path  string // File or directory involved (optional)
	Err   error  // Underlying cause
}

// NewSetupError creates a SetupError for the given phase.
func NewSetupError(phase, path string, err error) *SetupError {
	return &SetupError{Phase: phase, Path: path, Err: err}
}

// Error implements the error interface.
func (e *SetupError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s setup failed for %s: %v", e.Phase, e.Path, e.Err)
	}
	return fmt.Sprintf("%s setup failed: %v", e.Phase, e.Err)
}

// Unwrap returns the underlying cause.
func (e *SetupError) Unwrap() error {
	return e.Err
}

// IsSetupError checks if the error is or wraps a SetupError.
func IsSetupError(err error) bool {
	if err == nil {
		return false
	}
	var se *SetupError
	return errors.As(err, &se)
}
