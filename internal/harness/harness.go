// Package harness validates a batch of diagram artifacts one at a time
// against an external checker and collects one outcome per artifact.
//
// A run materializes each artifact into an index-named scratch file, invokes
// the checker on it under a hard timeout, records a Valid or Invalid outcome,
// and removes the scratch files. Nothing that goes wrong for one artifact
// stops the batch; only setup failures (scratch directory unusable) are
// returned as errors.
package harness

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/harrison/mmdcheck/internal/checker"
	"github.com/harrison/mmdcheck/internal/filelock"
	"github.com/harrison/mmdcheck/internal/models"
)

// Defaults for scratch file naming.
const (
	DefaultFilePrefix = "diagram_"
	DefaultInputExt   = ".mmd"
	DefaultOutputExt  = ".svg"
)

// Logger is the logging surface the harness needs.
type Logger interface {
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
}

// Observer is notified as the run progresses. Observers cannot influence outcomes.
type Observer interface {
	OnStart(total int)
	OnOutcome(index, total int, outcome models.Outcome)
}

// Options configures a Harness.
type Options struct {
	// ScratchDir holds the per-artifact temp files. Created if absent.
	ScratchDir string

	// FilePrefix, InputExt and OutputExt shape scratch names: <prefix><index><ext>.
	FilePrefix string
	InputExt   string
	OutputExt  string

	// Timeout bounds each checker invocation (0 = no limit).
	Timeout time.Duration

	// Checker decides validity. Required.
	Checker checker.Checker

	// LockScratch takes an exclusive lock on "<ScratchDir>.lock" for the run.
	LockScratch bool

	// Logger receives run and per-artifact log lines (optional).
	Logger Logger

	// Observers receive progress callbacks (optional).
	Observers []Observer

	// RunID tags log lines and the report (generated when empty).
	RunID string
}

// Harness runs batch validations.
type Harness struct {
	opts Options
}

// New creates a Harness, filling in naming defaults.
func New(opts Options) (*Harness, error) {
	if opts.Checker == nil {
		return nil, errors.New("harness requires a checker")
	}
	if opts.ScratchDir == "" {
		return nil, errors.New("harness requires a scratch directory")
	}
	if opts.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be >= 0, got %v", opts.Timeout)
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = DefaultFilePrefix
	}
	if opts.InputExt == "" {
		opts.InputExt = DefaultInputExt
	}
	if opts.OutputExt == "" {
		opts.OutputExt = DefaultOutputExt
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &Harness{opts: opts}, nil
}

// ScratchPaths returns the input and output scratch paths for the artifact at index.
func (h *Harness) ScratchPaths(index int) (string, string) {
	base := fmt.Sprintf("%s%d", h.opts.FilePrefix, index)
	return filepath.Join(h.opts.ScratchDir, base+h.opts.InputExt),
		filepath.Join(h.opts.ScratchDir, base+h.opts.OutputExt)
}

// Run validates artifacts sequentially and returns one outcome per artifact
// in input order. The returned error is always a *models.SetupError.
func (h *Harness) Run(ctx context.Context, artifacts []models.Artifact) (*models.RunReport, error) {
	start := time.Now()
	runID := h.opts.RunID
	if runID == "" {
		runID = uuid.New().String()
	}

	created, err := ensureDir(h.opts.ScratchDir)
	if err != nil {
		return nil, models.NewSetupError(models.PhaseScratch, h.opts.ScratchDir, err)
	}

	if h.opts.LockScratch {
		lock := filelock.New(h.opts.ScratchDir + ".lock")
		if err := lock.TryAcquire(); err != nil {
			return nil, models.NewSetupError(models.PhaseScratch, h.opts.ScratchDir, err)
		}
		defer lock.Release()
	}

	total := len(artifacts)
	h.opts.Logger.LogInfo(fmt.Sprintf("Run %s: validating %d artifact(s) in %s", runID, total, h.opts.ScratchDir))
	for _, obs := range h.opts.Observers {
		obs.OnStart(total)
	}

	outcomes := make([]models.Outcome, 0, total)
	for i, artifact := range artifacts {
		// Blank sources are still handed to the checker; it decides validity
		if err := artifact.Validate(); err != nil {
			h.opts.Logger.LogWarn(err.Error())
		}
		outcome := h.validate(ctx, i, artifact)
		outcomes = append(outcomes, outcome)

		if outcome.IsValid() {
			h.opts.Logger.LogDebug(fmt.Sprintf("[%d/%d] valid: %s", i+1, total, artifact.Label()))
		} else {
			h.opts.Logger.LogDebug(fmt.Sprintf("[%d/%d] invalid: %s", i+1, total, artifact.Label()))
		}
		for _, obs := range h.opts.Observers {
			obs.OnOutcome(i, total, outcome)
		}
	}

	// Only a directory this run created is removed; Remove fails harmlessly if leftovers remain.
	if created {
		_ = os.Remove(h.opts.ScratchDir)
	}

	report := &models.RunReport{
		RunID:    runID,
		Outcomes: outcomes,
		Duration: time.Since(start),
	}
	summary := report.Summary()
	h.opts.Logger.LogInfo(fmt.Sprintf("Run %s finished: %d total, %d valid, %d invalid",
		runID, summary.Total, summary.Valid, summary.Invalid))

	return report, nil
}

// validate produces the outcome for one artifact. It never fails the run.
func (h *Harness) validate(ctx context.Context, index int, artifact models.Artifact) models.Outcome {
	inputPath, outputPath := h.ScratchPaths(index)
	defer removeQuietly(inputPath, outputPath)

	if err := os.WriteFile(inputPath, []byte(artifact.Source), 0644); err != nil {
		h.opts.Logger.LogWarn(fmt.Sprintf("failed to write scratch file for %s: %v", artifact.ID, err))
		return models.NewInvalidOutcome(index, artifact, fmt.Sprintf("failed to write scratch file: %v", err))
	}

	checkCtx := ctx
	if h.opts.Timeout > 0 {
		var cancel context.CancelFunc
		checkCtx, cancel = context.WithTimeout(ctx, h.opts.Timeout)
		defer cancel()
	}

	result := h.opts.Checker.Check(checkCtx, inputPath, outputPath)
	if checker.IsTimeoutError(result.Err) {
		h.opts.Logger.LogWarn(fmt.Sprintf("%s: %v", artifact.Label(), result.Err))
	}

	var outcome models.Outcome
	if result.Passed() {
		outcome = models.NewValidOutcome(index, artifact)
	} else {
		outcome = models.NewInvalidOutcome(index, artifact, result.Diagnostic())
	}
	outcome.Duration = result.Duration
	return outcome
}

// ensureDir creates dir if needed and reports whether it did.
func ensureDir(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", dir)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return true, nil
}

// removeQuietly deletes scratch files, ignoring every error.
func removeQuietly(paths ...string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}

type nopLogger struct{}

func (nopLogger) LogDebug(string) {}
func (nopLogger) LogInfo(string)  {}
func (nopLogger) LogWarn(string)  {}
