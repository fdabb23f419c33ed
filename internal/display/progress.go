package display

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

// ProgressIndicator manages multi-step progress display
type ProgressIndicator struct {
	writer  io.Writer
	total   int
	current int
	noun    string
}

// NewProgressIndicator creates a new progress indicator. noun names the items
// being processed, e.g. "documents".
func NewProgressIndicator(w io.Writer, total int, noun string) *ProgressIndicator {
	return &ProgressIndicator{
		writer: w,
		total:  total,
		noun:   noun,
	}
}

// Start displays the header message
func (p *ProgressIndicator) Start() {
	fmt.Fprintf(p.writer, "Scanning %s:\n", p.noun)
}

// Step displays progress for current item: [N/Total] filename (cyan)
func (p *ProgressIndicator) Step(filename string) {
	p.current++
	color.New(color.FgCyan).Fprintf(p.writer, "  [%d/%d] %s\n", p.current, p.total, filepath.Base(filename))
}

// Complete displays a success message with a green checkmark.
func (p *ProgressIndicator) Complete(summary string) {
	fmt.Fprintf(p.writer, "%s %s\n", color.New(color.FgGreen).Sprint("✓"), summary)
}
