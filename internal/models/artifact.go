package models

import (
	"fmt"
	"strings"
)

// Artifact is one named unit of diagram source submitted for validation.
// ID is opaque and supplied by the caller; uniqueness is assumed, not enforced.
type Artifact struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Label returns "title (id)", the form used in console listings.
func (a Artifact) Label() string {
	return fmt.Sprintf("%s (%s)", a.Title, a.ID)
}

// Validate checks that the artifact carries something to render.
func (a Artifact) Validate() error {
	if strings.TrimSpace(a.Source) == "" {
		return fmt.Errorf("artifact %q has empty source", a.ID)
	}
	return nil
}
