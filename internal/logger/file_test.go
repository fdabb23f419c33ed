package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harrison/mmdcheck/internal/models"
)

func readLog(t *testing.T, fl *FileLogger) string {
	t.Helper()
	data, err := os.ReadFile(fl.Path())
	if err != nil {
		t.Fatalf("failed to read run log: %v", err)
	}
	return string(data)
}

// TestLogDirectoryCreation verifies the log directory is created on initialization
func TestLogDirectoryCreation(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "nested", "logs")

	logger, err := NewFileLogger(logDir, "run-1")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(logDir); os.IsNotExist(err) {
		t.Errorf("expected log directory %s to exist", logDir)
	}
	if filepath.Dir(logger.Path()) != logDir {
		t.Errorf("run log %s not inside %s", logger.Path(), logDir)
	}
	if !strings.HasPrefix(filepath.Base(logger.Path()), "run-") {
		t.Errorf("unexpected run log name %s", logger.Path())
	}
}

// TestLatestSymlink verifies latest.log points at the current run log
func TestLatestSymlink(t *testing.T) {
	logDir := t.TempDir()

	logger, err := NewFileLogger(logDir, "")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	target, err := os.Readlink(filepath.Join(logDir, "latest.log"))
	if err != nil {
		t.Fatalf("failed to read latest.log symlink: %v", err)
	}
	if target != filepath.Base(logger.Path()) {
		t.Errorf("latest.log -> %s, want %s", target, filepath.Base(logger.Path()))
	}

	// A second logger replaces the symlink rather than failing.
	second, err := NewFileLogger(logDir, "")
	if err != nil {
		t.Fatalf("second NewFileLogger() error = %v", err)
	}
	defer second.Close()

	if _, err := os.Readlink(filepath.Join(logDir, "latest.log")); err != nil {
		t.Errorf("latest.log missing after second logger: %v", err)
	}
}

func TestFileLogHeaderAndLevels(t *testing.T) {
	logger, err := NewFileLoggerWithLevel(t.TempDir(), "abc-123", "warn")
	if err != nil {
		t.Fatalf("NewFileLoggerWithLevel() error = %v", err)
	}
	defer logger.Close()

	logger.LogInfo("hidden info")
	logger.LogWarn("shown warning")
	logger.LogError("shown error")

	content := readLog(t, logger)
	for _, want := range []string{"=== mmdcheck Run Log ===", "Run ID: abc-123", "Started at:", "[WARN] shown warning", "[ERROR] shown error"} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q:\n%s", want, content)
		}
	}
	if strings.Contains(content, "hidden info") {
		t.Error("info message should be filtered at warn level")
	}
}

// TestFileLogOutcomes verifies invalid outcomes carry the full diagnostic.
func TestFileLogOutcomes(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	logger.OnStart(2)
	logger.OnOutcome(0, 2, models.Outcome{ID: "a", Title: "Alpha", Status: models.StatusValid, Duration: 120 * time.Millisecond})
	logger.OnOutcome(1, 2, models.Outcome{
		ID:         "b",
		Title:      "Beta",
		Status:     models.StatusInvalid,
		Diagnostic: "Parse error on line 2:\nExpecting 'NODE'\n",
	})

	content := readLog(t, logger)
	for _, want := range []string{
		"Checking 2 artifacts",
		"[1/2] valid: Alpha (a) (120ms)",
		"[2/2] invalid: Beta (b)",
		"    Parse error on line 2:\n    Expecting 'NODE'\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("run log missing %q:\n%s", want, content)
		}
	}
}

func TestFileLogSummary(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}
	defer logger.Close()

	logger.LogSummary(&models.RunReport{
		RunID:    "r-9",
		Outcomes: []models.Outcome{{Status: models.StatusValid}, {Status: models.StatusInvalid}},
		Duration: 3 * time.Second,
	})
	logger.LogSummary(nil)

	content := readLog(t, logger)
	for _, want := range []string{"=== Run Summary ===", "Run ID: r-9", "Total: 2", "Valid: 1", "Invalid: 1", "Success rate: 50%", "Duration: 3s"} {
		if !strings.Contains(content, want) {
			t.Errorf("summary missing %q:\n%s", want, content)
		}
	}
}

// TestCloseIsIdempotent verifies writes after Close are dropped and Close can repeat.
func TestCloseIsIdempotent(t *testing.T) {
	logger, err := NewFileLogger(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	logger.LogInfo("before close")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	logger.LogInfo("after close")
	if err := logger.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}

	content := readLog(t, logger)
	if !strings.Contains(content, "before close") || strings.Contains(content, "after close") {
		t.Errorf("unexpected log content:\n%s", content)
	}
}
