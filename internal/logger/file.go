package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/mmdcheck/internal/models"
)

// FileLogger writes a timestamped run log (run-YYYYMMDD-HHMMSS.log) and keeps
// a latest.log symlink pointing at the most recent run. Besides the usual
// leveled messages it records every outcome with the full diagnostic, so it
// also serves as a harness Observer. It is safe for concurrent use.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates a FileLogger in logDir with log level "info".
func NewFileLogger(logDir, runID string) (*FileLogger, error) {
	return NewFileLoggerWithLevel(logDir, runID, "info")
}

// NewFileLoggerWithLevel creates a FileLogger in logDir with the given level.
// runID is written to the header so the log can be matched with console output.
func NewFileLoggerWithLevel(logDir, runID, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	now := time.Now()
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", now.Format("20060102-150405")))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== mmdcheck Run Log ===\n")
	if runID != "" {
		fl.writeRunLog(fmt.Sprintf("Run ID: %s\n", runID))
	}
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", now.Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the run log file.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !enabled(fl.logLevel, level) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

// OnStart records the number of artifacts about to be checked.
func (fl *FileLogger) OnStart(total int) {
	fl.writeRunLog(fmt.Sprintf("[%s] Checking %d artifacts\n", timestamp(), total))
}

// OnOutcome records a single outcome. Invalid outcomes include the
// complete diagnostic, indented under the artifact label.
func (fl *FileLogger) OnOutcome(index, total int, outcome models.Outcome) {
	var sb strings.Builder
	label := fmt.Sprintf("%s (%s)", outcome.Title, outcome.ID)
	fmt.Fprintf(&sb, "[%s] [%d/%d] %s: %s (%s)\n",
		timestamp(), index+1, total, outcome.Status, label, FormatDuration(outcome.Duration))
	if !outcome.IsValid() {
		for _, line := range strings.Split(strings.TrimRight(outcome.Diagnostic, "\n"), "\n") {
			sb.WriteString("    ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
	}
	fl.writeRunLog(sb.String())
}

// LogSummary writes the run totals and success rate.
func (fl *FileLogger) LogSummary(report *models.RunReport) {
	if report == nil {
		return
	}
	s := report.Summary()
	var sb strings.Builder
	sb.WriteString("\n=== Run Summary ===\n")
	if report.RunID != "" {
		fmt.Fprintf(&sb, "Run ID: %s\n", report.RunID)
	}
	fmt.Fprintf(&sb, "Total: %d\n", s.Total)
	fmt.Fprintf(&sb, "Valid: %d\n", s.Valid)
	fmt.Fprintf(&sb, "Invalid: %d\n", s.Invalid)
	fmt.Fprintf(&sb, "Success rate: %d%%\n", s.SuccessRate())
	fmt.Fprintf(&sb, "Duration: %s\n", FormatDuration(report.Duration))
	fl.writeRunLog(sb.String())
}

// Close closes the run log file. It is safe to call more than once.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	_, _ = fl.runLog.WriteString(message)
}
