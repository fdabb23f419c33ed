package models

import (
	"math"
	"time"
)

// Outcome status constants
const (
	StatusValid   = "valid"   // Checker accepted the source
	StatusInvalid = "invalid" // Checker rejected, timed out or could not run
)

// Outcome is the verdict for a single artifact.
// Diagnostic and Source are only populated for invalid outcomes.
type Outcome struct {
	Index      int           // Position of the artifact in the input collection
	ID         string        // Artifact ID
	Title      string        // Artifact title
	Status     string        // StatusValid or StatusInvalid
	Diagnostic string        // Captured checker diagnostic (invalid only)
	Source     string        // Artifact source (invalid only)
	Duration   time.Duration // Time spent in the checker
}

// NewValidOutcome builds a Valid outcome for the artifact at index.
func NewValidOutcome(index int, a Artifact) Outcome {
	return Outcome{
		Index:  index,
		ID:     a.ID,
		Title:  a.Title,
		Status: StatusValid,
	}
}

// NewInvalidOutcome builds an Invalid outcome carrying the diagnostic and the original source.
func NewInvalidOutcome(index int, a Artifact, diagnostic string) Outcome {
	return Outcome{
		Index:      index,
		ID:         a.ID,
		Title:      a.Title,
		Status:     StatusInvalid,
		Diagnostic: diagnostic,
		Source:     a.Source,
	}
}

// IsValid reports whether the outcome is Valid.
func (o Outcome) IsValid() bool {
	return o.Status == StatusValid
}

// InvalidRecord is the side-file representation of an invalid outcome.
// The "error" key is what downstream fix tooling reads.
type InvalidRecord struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Error  string `json:"error"`
	Source string `json:"source"`
}

// RunReport holds the ordered outcomes of one harness run.
type RunReport struct {
	RunID    string        // Identifier of the run, used in logs
	Outcomes []Outcome     // One per input artifact, in input order
	Duration time.Duration // Wall time of the whole run
}

// Summary is the aggregate count view of a RunReport.
type Summary struct {
	Total   int
	Valid   int
	Invalid int
}

// Summarize folds an ordered outcome list into aggregate counts.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.IsValid() {
			s.Valid++
		} else {
			s.Invalid++
		}
	}
	return s
}

// SuccessRate returns the rounded percentage of valid outcomes.
// An empty run has a success rate of 0.
func (s Summary) SuccessRate() int {
	if s.Total == 0 {
		return 0
	}
	return int(math.Round(float64(s.Valid) / float64(s.Total) * 100))
}

// Summary returns the aggregate counts for the report.
func (r *RunReport) Summary() Summary {
	return Summarize(r.Outcomes)
}

// Valid returns the valid outcomes in input order.
func (r *RunReport) Valid() []Outcome {
	return r.filter(true)
}

// Invalid returns the invalid outcomes in input order.
func (r *RunReport) Invalid() []Outcome {
	return r.filter(false)
}

func (r *RunReport) filter(valid bool) []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.IsValid() == valid {
			out = append(out, o)
		}
	}
	return out
}

// InvalidRecords converts the invalid outcomes into side-file records.
func (r *RunReport) InvalidRecords() []InvalidRecord {
	invalid := r.Invalid()
	records := make([]InvalidRecord, 0, len(invalid))
	for _, o := range invalid {
		records = append(records, InvalidRecord{
			ID:     o.ID,
			Title:  o.Title,
			Error:  o.Diagnostic,
			Source: o.Source,
		})
	}
	return records
}
