package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/mmdcheck/internal/artifact"
	"github.com/harrison/mmdcheck/internal/checker"
	"github.com/harrison/mmdcheck/internal/config"
	"github.com/harrison/mmdcheck/internal/display"
	"github.com/harrison/mmdcheck/internal/fileutil"
	"github.com/harrison/mmdcheck/internal/harness"
	"github.com/harrison/mmdcheck/internal/logger"
	"github.com/harrison/mmdcheck/internal/models"
	"github.com/harrison/mmdcheck/internal/report"
)

// ErrInvalidArtifacts is returned by check --strict when any artifact is invalid.
var ErrInvalidArtifacts = errors.New("invalid artifacts found")

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [input.json]",
		Short: "Validate every diagram in a collection",
		Long: `Validate each diagram of a JSON collection with the external renderer,
one at a time, and report which ones failed.

Run parameters come from a profile (see "mmdcheck profiles"); flags and the
optional positional input path override the profile's values. Invalid
diagrams are written to the profile's side file only when there are any.

Configuration is loaded from .mmdcheck/config.yaml if present.

Examples:
  mmdcheck check                                   # "initial" profile
  mmdcheck check --profile fixed                   # re-check AI-fixed diagrams
  mmdcheck check diagrams.json --side-file broken.json
  mmdcheck check --checker "npx mmdc -q -i {input} -o {output}" --timeout 30s
  mmdcheck check --strict                          # exit 1 if any diagram is invalid`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCheck,
	}

	cmd.Flags().String("config", "", "Path to config file (default: .mmdcheck/config.yaml)")
	cmd.Flags().String("profile", "", "Profile to run (default from config, else \"initial\")")
	cmd.Flags().String("input", "", "Input collection (JSON array of {id, title, source})")
	cmd.Flags().String("scratch-dir", "", "Directory for temporary diagram files")
	cmd.Flags().String("side-file", "", "Where to write invalid diagrams as JSON")
	cmd.Flags().String("timeout", "", "Per-diagram renderer timeout (e.g. 10s, 1m)")
	cmd.Flags().String("checker", "", "Renderer command template with {input} and {output} placeholders")
	cmd.Flags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().String("log-dir", "", "Directory for run log files (empty string disables)")
	cmd.Flags().Bool("strict", false, "Exit with an error when any diagram is invalid")

	return cmd
}

// checkSettings is the fully resolved input of a check run.
type checkSettings struct {
	cfg     *config.Config
	profile config.Profile
}

// resolveCheckSettings loads the config file, applies flags and validates
// the result. Failures are configuration SetupErrors.
func resolveCheckSettings(cmd *cobra.Command, args []string) (*checkSettings, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadConfig(configPath)
	} else {
		configPath = config.ConfigPath(".")
		cfg, err = config.LoadConfigFromDir(".")
	}
	if err != nil {
		return nil, models.NewSetupError(models.PhaseConfig, configPath, err)
	}

	var o config.Overrides
	if cmd.Flags().Changed("timeout") {
		raw, _ := cmd.Flags().GetString("timeout")
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, models.NewSetupError(models.PhaseConfig, "",
				fmt.Errorf("invalid timeout format %q: %w", raw, err))
		}
		o.Timeout = &timeout
	}
	o.LogLevel = changedString(cmd, "log-level")
	o.LogDir = changedString(cmd, "log-dir")
	o.Profile = changedString(cmd, "profile")
	if raw := changedString(cmd, "checker"); raw != nil {
		o.Checker = strings.Fields(*raw)
		if len(o.Checker) == 0 {
			return nil, models.NewSetupError(models.PhaseConfig, "", errors.New("--checker cannot be empty"))
		}
	}
	cfg.MergeWithFlags(o)

	if err := cfg.Validate(); err != nil {
		return nil, models.NewSetupError(models.PhaseConfig, configPath, err)
	}

	profile, err := cfg.ActiveProfile()
	if err != nil {
		return nil, models.NewSetupError(models.PhaseConfig, configPath, err)
	}

	input := changedString(cmd, "input")
	if len(args) == 1 {
		input = &args[0]
	}
	profile.ApplyFlags(input, changedString(cmd, "scratch-dir"), changedString(cmd, "side-file"))
	if err := profile.Validate(); err != nil {
		return nil, models.NewSetupError(models.PhaseConfig, "", fmt.Errorf("profile %q: %w", profile.Name, err))
	}

	return &checkSettings{cfg: cfg, profile: profile}, nil
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// runCheck implements the check command logic
func runCheck(cmd *cobra.Command, args []string) error {
	settings, err := resolveCheckSettings(cmd, args)
	if err != nil {
		return err
	}
	cfg, profile := settings.cfg, settings.profile
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

	// Fail fast: nothing is created before the input is known to be readable.
	artifacts, err := artifact.LoadFile(profile.Input)
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	console := logger.NewConsoleLogger(errOut, cfg.LogLevel)
	loggers := []logger.RunLogger{console}
	var observers []harness.Observer

	if cfg.LogDir != "" {
		fileLog, err := logger.NewFileLoggerWithLevel(cfg.LogDir, runID, cfg.LogLevel)
		if err != nil {
			console.LogWarn(fmt.Sprintf("file logging disabled: %v", err))
		} else {
			defer fileLog.Close()
			loggers = append(loggers, fileLog)
			observers = append(observers, fileLog)
		}
	}
	log := logger.NewMultiLogger(loggers...)
	log.LogDebug(fmt.Sprintf("Profile %s: input=%s scratch=%s side_file=%s",
		profile.Name, profile.Input, profile.ScratchDir, profile.SideFile))

	if leftovers := findLeftovers(profile.ScratchDir, profile.FilePrefix); len(leftovers) > 0 {
		display.WarnLeftoverScratch(profile.ScratchDir, leftovers).Display(errOut)
	}

	chk := checker.NewCommandChecker(cfg.Checker, cfg.Timeout)
	chk.Dir = cfg.CheckerDir

	if progress := report.NewProgressObserver(out, profile.ProgressEvery); progress != nil {
		observers = append(observers, progress)
	}
	if profile.Live {
		observers = append(observers, report.NewLiveObserver(out, profile.ExcerptLength))
	}

	h, err := harness.New(harness.Options{
		ScratchDir:  profile.ScratchDir,
		FilePrefix:  profile.FilePrefix,
		Timeout:     cfg.Timeout,
		Checker:     chk,
		LockScratch: true,
		Logger:      log,
		Observers:   observers,
		RunID:       runID,
	})
	if err != nil {
		return models.NewSetupError(models.PhaseConfig, "", err)
	}

	printer := report.NewConsole(out, report.ConsoleOptions{
		ExcerptLength: profile.ExcerptLength,
		ListValid:     profile.ListValid,
	})
	printer.Header(len(artifacts), chk.String())

	rep, err := h.Run(cmd.Context(), artifacts)
	if err != nil {
		log.LogError(err.Error())
		return err
	}

	var sideFile string
	var sideErr error
	if profile.SideFile != "" {
		written, err := report.WriteInvalid(profile.SideFile, rep)
		if err != nil {
			sideErr = err
		} else if written {
			sideFile = profile.SideFile
		}
	}

	printer.Render(rep, sideFile)
	log.LogSummary(rep)

	if sideErr != nil {
		log.LogError(sideErr.Error())
		return sideErr
	}

	if strict, _ := cmd.Flags().GetBool("strict"); strict {
		if s := rep.Summary(); s.Invalid > 0 {
			return fmt.Errorf("%w: %d of %d", ErrInvalidArtifacts, s.Invalid, s.Total)
		}
	}
	return nil
}

// findLeftovers lists scratch files from an earlier run that was killed
// before cleanup. A missing directory has no leftovers.
func findLeftovers(dir, prefix string) []string {
	if _, err := os.Stat(dir); err != nil {
		return nil
	}
	result, err := fileutil.ScanDirectory(dir, fileutil.ScanOptions{
		Extensions: []string{harness.DefaultInputExt, harness.DefaultOutputExt},
	})
	if err != nil {
		return nil
	}
	if prefix == "" {
		prefix = harness.DefaultFilePrefix
	}

	var leftovers []string
	for _, f := range result.Files {
		if base := filepath.Base(f); strings.HasPrefix(base, prefix) {
			leftovers = append(leftovers, base)
		}
	}
	return leftovers
}
