// Package artifact loads the collection of diagrams a run validates, either
// from a JSON input file or by extracting mermaid code blocks from Markdown.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/harrison/mmdcheck/internal/filelock"
	"github.com/harrison/mmdcheck/internal/models"
)

// ErrInputNotFound is wrapped in the SetupError returned for a missing input file.
var ErrInputNotFound = errors.New("input file not found")

// LoadFile reads a JSON array of artifacts. Every failure is a *models.SetupError.
func LoadFile(path string) ([]models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.NewSetupError(models.PhaseInput, path, ErrInputNotFound)
		}
		return nil, models.NewSetupError(models.PhaseInput, path, fmt.Errorf("failed to read input: %w", err))
	}

	artifacts, err := Parse(data)
	if err != nil {
		return nil, models.NewSetupError(models.PhaseInput, path, err)
	}
	return artifacts, nil
}

// Parse decodes a JSON array of artifacts. Unknown fields are ignored so that
// records produced by fix tooling (which add their own keys) load unchanged.
func Parse(data []byte) ([]models.Artifact, error) {
	var artifacts []models.Artifact
	if err := json.Unmarshal(data, &artifacts); err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	if artifacts == nil {
		artifacts = []models.Artifact{}
	}
	return artifacts, nil
}

// WriteFile atomically writes artifacts as an indented JSON array.
func WriteFile(path string, artifacts []models.Artifact) error {
	if artifacts == nil {
		artifacts = []models.Artifact{}
	}
	data, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode artifacts: %w", err)
	}
	return filelock.WriteAtomic(path, append(data, '\n'))
}
