package logger

import (
	"bytes"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harrison/mmdcheck/internal/models"
)

// TestNewConsoleLogger verifies the constructor creates a ConsoleLogger with the provided writer.
func TestNewConsoleLogger(t *testing.T) {
	t.Run("with valid writer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		logger := NewConsoleLogger(buf, "info")

		if logger.writer != buf {
			t.Error("writer not set correctly")
		}
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
		if logger.colorOutput {
			t.Error("expected color disabled for non-terminal writer")
		}
	})

	t.Run("with nil writer", func(t *testing.T) {
		logger := NewConsoleLogger(nil, "debug")
		// must not panic
		logger.LogInfo("ignored")
		logger.LogSummary(&models.RunReport{})
	})

	t.Run("unknown level falls back to info", func(t *testing.T) {
		logger := NewConsoleLogger(&bytes.Buffer{}, "LOUD")
		if logger.logLevel != "info" {
			t.Errorf("expected log level %q, got %q", "info", logger.logLevel)
		}
	})
}

// TestConsoleLineFormat verifies the [HH:MM:SS] [LEVEL] message layout.
func TestConsoleLineFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "trace")

	logger.LogTrace("t")
	logger.LogDebug("d")
	logger.LogInfo("i")
	logger.LogWarn("w")
	logger.LogError("e")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %q", len(lines), buf.String())
	}

	want := []string{"TRACE] t", "DEBUG] d", "INFO] i", "WARN] w", "ERROR] e"}
	pattern := regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}\] \[[A-Z]+\] `)
	for i, line := range lines {
		if !pattern.MatchString(line) {
			t.Errorf("line %d %q does not match timestamp format", i, line)
		}
		if !strings.HasSuffix(line, want[i]) {
			t.Errorf("line %d = %q, want suffix %q", i, line, want[i])
		}
	}
}

// TestConsoleLogSummary verifies the summary line carries counts and rate.
func TestConsoleLogSummary(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []models.Outcome
		want     string
	}{
		{
			name:     "empty run",
			outcomes: nil,
			want:     "Run summary: 0 total, 0 valid, 0 invalid (0%) in 1s",
		},
		{
			name: "mixed run",
			outcomes: []models.Outcome{
				{Status: models.StatusValid},
				{Status: models.StatusValid},
				{Status: models.StatusInvalid},
			},
			want: "Run summary: 3 total, 2 valid, 1 invalid (67%) in 1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := NewConsoleLogger(buf, "info")
			logger.LogSummary(&models.RunReport{Outcomes: tt.outcomes, Duration: time.Second})

			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("got %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}

	t.Run("suppressed above info", func(t *testing.T) {
		buf := &bytes.Buffer{}
		NewConsoleLogger(buf, "warn").LogSummary(&models.RunReport{})
		if buf.Len() != 0 {
			t.Errorf("expected no output, got %q", buf.String())
		}
	})
}

// TestConsoleConcurrentWrites verifies lines are never interleaved.
func TestConsoleConcurrentWrites(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewConsoleLogger(buf, "info")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.LogInfo("concurrent message")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 20 {
		t.Fatalf("expected 20 lines, got %d", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "[INFO] concurrent message") {
			t.Errorf("malformed line %q", line)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m30s"},
		{2 * time.Minute, "2m"},
		{2*time.Hour + 15*time.Minute, "2h15m"},
		{time.Hour, "1h"},
		{time.Hour + time.Minute + time.Second, "1h1m1s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
