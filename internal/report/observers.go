package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/harrison/mmdcheck/internal/display"
	"github.com/harrison/mmdcheck/internal/models"
)

// ProgressObserver prints a progress bar line every Every artifacts.
type ProgressObserver struct {
	w     io.Writer
	every int
	color bool
	bar   *display.ProgressBar
}

// NewProgressObserver returns nil when every <= 0, so callers can skip it.
func NewProgressObserver(w io.Writer, every int) *ProgressObserver {
	if every <= 0 {
		return nil
	}
	return &ProgressObserver{w: w, every: every, color: colorEnabled(w)}
}

func (p *ProgressObserver) OnStart(total int) {
	p.bar = display.NewProgressBar(total, 20, p.color)
	p.bar.SetPrefix("Processed ")
}

func (p *ProgressObserver) OnOutcome(index, total int, _ models.Outcome) {
	if p.bar == nil {
		p.OnStart(total)
	}
	p.bar.Update(index + 1)
	if (index+1)%p.every == 0 {
		fmt.Fprintln(p.w, p.bar.Render())
	}
}

// LiveObserver prints one line per artifact as soon as it is checked,
// followed by an indented diagnostic excerpt for invalid ones.
type LiveObserver struct {
	w       io.Writer
	excerpt int
	color   bool
}

// NewLiveObserver creates a LiveObserver; excerpt caps the diagnostic in runes.
func NewLiveObserver(w io.Writer, excerpt int) *LiveObserver {
	return &LiveObserver{w: w, excerpt: excerpt, color: colorEnabled(w)}
}

func (l *LiveObserver) OnStart(int) {}

func (l *LiveObserver) OnOutcome(_, _ int, o models.Outcome) {
	if o.IsValid() {
		fmt.Fprintf(l.w, "%s %s\n", l.mark(color.FgGreen, "✓"), o.Title)
		return
	}
	fmt.Fprintf(l.w, "%s %s\n", l.mark(color.FgRed, "✗"), o.Title)
	fmt.Fprintf(l.w, "  Error: %s\n", strings.TrimRight(Excerpt(o.Diagnostic, l.excerpt), "\n"))
}

func (l *LiveObserver) mark(attr color.Attribute, s string) string {
	if !l.color {
		return s
	}
	p := color.New(attr)
	p.EnableColor()
	return p.Sprint(s)
}
