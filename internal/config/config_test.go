package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestDefaultConfig verifies default configuration values
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if strings.Join(cfg.Checker, " ") != "npx mmdc -i {input} -o {output}" {
		t.Errorf("Checker = %v, want default mmdc template", cfg.Checker)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.LogDir != filepath.Join(".mmdcheck", "logs") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if cfg.Profile != "initial" {
		t.Errorf("Profile = %q, want initial", cfg.Profile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

// TestBuiltinProfiles checks the three stages of the fix pipeline
func TestBuiltinProfiles(t *testing.T) {
	profiles := BuiltinProfiles()

	tests := []struct {
		name       string
		scratch    string
		prefix     string
		excerpt    int
		listValid  bool
		progress   int
		live       bool
		sideSuffix string
	}{
		{"initial", "/tmp/mermaid_validate", "diagram_", 500, false, 20, false, "broken_diagrams.json"},
		{"fixed", "/tmp/mermaid_validate_fixed", "diagram_", 300, true, 0, false, "still_broken_after_ai_fix.json"},
		{"round2", "/tmp/mermaid_validate_r2", "d", 200, false, 0, true, "still_broken_round2.json"},
	}

	if len(profiles) != len(tests) {
		t.Fatalf("expected %d built-in profiles, got %d", len(tests), len(profiles))
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := profiles[tt.name]
			if !ok {
				t.Fatalf("missing profile %q", tt.name)
			}
			if p.Name != tt.name {
				t.Errorf("Name = %q", p.Name)
			}
			if p.ScratchDir != tt.scratch {
				t.Errorf("ScratchDir = %q, want %q", p.ScratchDir, tt.scratch)
			}
			if p.FilePrefix != tt.prefix {
				t.Errorf("FilePrefix = %q, want %q", p.FilePrefix, tt.prefix)
			}
			if p.ExcerptLength != tt.excerpt {
				t.Errorf("ExcerptLength = %d, want %d", p.ExcerptLength, tt.excerpt)
			}
			if p.ListValid != tt.listValid || p.Live != tt.live || p.ProgressEvery != tt.progress {
				t.Errorf("display settings = %+v", p)
			}
			if !strings.HasSuffix(p.SideFile, tt.sideSuffix) {
				t.Errorf("SideFile = %q, want suffix %q", p.SideFile, tt.sideSuffix)
			}
			if err := p.Validate(); err != nil {
				t.Errorf("built-in profile invalid: %v", err)
			}
		})
	}
}

// TestLoadConfigValidFile tests loading a valid YAML config file
func TestLoadConfigValidFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	configContent := `checker: ["./node_modules/.bin/mmdc", "-i", "{input}", "-o", "{output}", "-q"]
checker_dir: /srv/docs
timeout: 30s
log_level: debug
log_dir: /tmp/mmdcheck-logs
profile: fixed
profiles:
  fixed:
    input: out/fixed.json
    excerpt_length: 1000
  nightly:
    description: Nightly docs sweep
    input: build/diagrams.json
    scratch_dir: /tmp/nightly
    side_file: build/broken.json
    live: true
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Checker[0] != "./node_modules/.bin/mmdc" || len(cfg.Checker) != 6 {
		t.Errorf("Checker = %v", cfg.Checker)
	}
	if cfg.CheckerDir != "/srv/docs" {
		t.Errorf("CheckerDir = %q", cfg.CheckerDir)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.LogDir != "/tmp/mmdcheck-logs" {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}

	active, err := cfg.ActiveProfile()
	if err != nil {
		t.Fatalf("ActiveProfile() error = %v", err)
	}
	// Overridden fields
	if active.Input != "out/fixed.json" || active.ExcerptLength != 1000 {
		t.Errorf("override not applied: %+v", active)
	}
	// Untouched built-in fields survive
	if active.ScratchDir != "/tmp/mermaid_validate_fixed" || !active.ListValid {
		t.Errorf("built-in fields lost: %+v", active)
	}

	nightly := cfg.Profiles["nightly"]
	if nightly.Name != "nightly" || nightly.FilePrefix != "diagram_" || !nightly.Live {
		t.Errorf("custom profile = %+v", nightly)
	}
	if names := strings.Join(cfg.ProfileNames(), ","); names != "fixed,initial,nightly,round2" {
		t.Errorf("ProfileNames() = %s", names)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadConfigCheckerAsString(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("checker: mmdc -i {input} -o {output}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if strings.Join(cfg.Checker, "|") != "mmdc|-i|{input}|-o|{output}" {
		t.Errorf("Checker = %v", cfg.Checker)
	}
}

func TestLoadConfigEmptyLogDirDisablesFileLog(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("log_dir: \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogDir != "" {
		t.Errorf("LogDir = %q, want empty", cfg.LogDir)
	}
}

// TestLoadConfigMissingFile returns defaults
func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Timeout != 10*time.Second || cfg.Profile != DefaultProfile {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"malformed yaml", "timeout: [unclosed", "failed to parse config file"},
		{"bad timeout", "timeout: soon\n", "invalid timeout format"},
		{"bad checker type", "checker: {a: b}\n", "checker must be a string or a list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv(HomeEnv, "")
	if got := ConfigPath("/work"); got != filepath.Join("/work", ".mmdcheck", "config.yaml") {
		t.Errorf("ConfigPath() = %q", got)
	}

	t.Setenv(HomeEnv, "/etc/mmdcheck")
	if got := ConfigPath("/work"); got != filepath.Join("/etc/mmdcheck", "config.yaml") {
		t.Errorf("ConfigPath() with env = %q", got)
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig()

	timeout := 2 * time.Second
	level := "warn"
	logDir := ""
	profile := "round2"
	cfg.MergeWithFlags(Overrides{
		Timeout:  &timeout,
		LogLevel: &level,
		LogDir:   &logDir,
		Checker:  []string{"mmdc"},
		Profile:  &profile,
	})

	if cfg.Timeout != timeout || cfg.LogLevel != "warn" || cfg.LogDir != "" || cfg.Profile != "round2" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if len(cfg.Checker) != 1 || cfg.Checker[0] != "mmdc" {
		t.Errorf("Checker = %v", cfg.Checker)
	}

	// Nil overrides keep values
	cfg.MergeWithFlags(Overrides{})
	if cfg.Timeout != timeout || cfg.Profile != "round2" {
		t.Error("nil overrides should not change config")
	}
}

func TestProfileApplyFlags(t *testing.T) {
	p := BuiltinProfiles()["initial"]
	input := "custom.json"
	side := "/tmp/out.json"
	p.ApplyFlags(&input, nil, &side)

	if p.Input != input || p.SideFile != side {
		t.Errorf("flags not applied: %+v", p)
	}
	if p.ScratchDir != "/tmp/mermaid_validate" {
		t.Errorf("ScratchDir changed: %q", p.ScratchDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty checker", func(c *Config) { c.Checker = nil }, "checker command cannot be empty"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "invalid log_level"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout must be >= 0"},
		{"unknown profile", func(c *Config) { c.Profile = "round3" }, `unknown profile "round3"`},
		{"profile without scratch", func(c *Config) {
			p := c.Profiles["fixed"]
			p.ScratchDir = ""
			c.Profiles["fixed"] = p
		}, "scratch_dir cannot be empty"},
		{"prefix with separator", func(c *Config) {
			p := c.Profiles["initial"]
			p.FilePrefix = "../d"
			c.Profiles["initial"] = p
		}, "must not contain path separators"},
		{"negative excerpt", func(c *Config) {
			p := c.Profiles["round2"]
			p.ExcerptLength = -1
			c.Profiles["round2"] = p
		}, "excerpt_length must be >= 0"},
		{"zero timeout allowed", func(c *Config) { c.Timeout = 0 }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
