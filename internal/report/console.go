// Package report renders run results for humans and persists the invalid
// subset for follow-up tooling.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/harrison/mmdcheck/internal/models"
)

// ConsoleOptions controls what the console report includes.
type ConsoleOptions struct {
	// ExcerptLength caps each diagnostic in runes; 0 prints it in full
	ExcerptLength int
	// ListValid adds a listing of every valid artifact
	ListValid bool
}

// Console writes the human-readable report.
type Console struct {
	w     io.Writer
	opts  ConsoleOptions
	color bool
}

// NewConsole creates a Console writing to w. Colors are used only when w is
// a terminal and NO_COLOR is unset.
func NewConsole(w io.Writer, opts ConsoleOptions) *Console {
	return &Console{w: w, opts: opts, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if color.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) paint(attr color.Attribute, s string) string {
	if !c.color {
		return s
	}
	p := color.New(attr)
	p.EnableColor()
	return p.Sprint(s)
}

// Header announces the batch before any checking starts.
func (c *Console) Header(total int, checker string) {
	fmt.Fprintf(c.w, "Validating %d diagrams using %s...\n", total, checker)
}

// Render writes the results block, the optional listings, the side-file
// notice (when sideFile is non-empty) and the success rate.
func (c *Console) Render(report *models.RunReport, sideFile string) {
	s := report.Summary()

	fmt.Fprintf(c.w, "\n=== RESULTS ===\n")
	fmt.Fprintf(c.w, "Total: %d\n", s.Total)
	fmt.Fprintf(c.w, "Valid: %d\n", s.Valid)
	fmt.Fprintf(c.w, "Invalid: %d\n", s.Invalid)

	if c.opts.ListValid && s.Valid > 0 {
		fmt.Fprintf(c.w, "\n=== VALID (%d) ===\n", s.Valid)
		for _, o := range report.Valid() {
			fmt.Fprintf(c.w, "%s %s (%s)\n", c.paint(color.FgGreen, "✓"), o.Title, o.ID)
		}
	}

	if s.Invalid > 0 {
		fmt.Fprintf(c.w, "\n=== INVALID (%d) ===\n", s.Invalid)
		for _, o := range report.Invalid() {
			fmt.Fprintf(c.w, "\n%s\n", c.paint(color.FgRed, fmt.Sprintf("--- %s (%s) ---", o.Title, o.ID)))
			fmt.Fprintf(c.w, "Error: %s\n", strings.TrimRight(Excerpt(o.Diagnostic, c.opts.ExcerptLength), "\n"))
			fmt.Fprintf(c.w, "Source:\n%s\n", o.Source)
		}
	}

	if sideFile != "" {
		fmt.Fprintf(c.w, "\nInvalid diagrams written to %s\n", sideFile)
	}

	rate := fmt.Sprintf("=== SUCCESS RATE: %d%% ===", s.SuccessRate())
	if s.Invalid == 0 {
		rate = c.paint(color.FgGreen, rate)
	} else {
		rate = c.paint(color.FgYellow, rate)
	}
	fmt.Fprintf(c.w, "\n%s\n", rate)
}

// Excerpt returns at most n runes of s; n <= 0 returns s unchanged.
func Excerpt(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
