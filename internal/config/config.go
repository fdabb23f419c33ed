package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/harrison/mmdcheck/internal/checker"
	"gopkg.in/yaml.v3"
)

// HomeEnv overrides the directory holding config.yaml (default ".mmdcheck").
const HomeEnv = "MMDCHECK_HOME"

// DefaultProfile is used when neither the config file nor flags pick one.
const DefaultProfile = "initial"

// Command is a checker argv template. In YAML it may be a list or a single
// whitespace-separated string.
type Command []string

// UnmarshalYAML accepts both `checker: [npx, mmdc]` and `checker: "npx mmdc"`.
func (c *Command) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*c = strings.Fields(value.Value)
		return nil
	}
	var list []string
	if err := value.Decode(&list); err != nil {
		return fmt.Errorf("checker must be a string or a list of strings: %w", err)
	}
	*c = list
	return nil
}

// Profile is a named set of run parameters. The built-in profiles reproduce
// the initial validation, the post-fix validation and the round-2 re-check.
type Profile struct {
	// Name is the key the profile is registered under
	Name string `yaml:"-"`

	// Description is shown by `mmdcheck profiles`
	Description string `yaml:"description"`

	// Input is the JSON collection of artifacts to validate
	Input string `yaml:"input"`

	// ScratchDir holds the per-artifact temp files
	ScratchDir string `yaml:"scratch_dir"`

	// FilePrefix names scratch files <prefix><index>.mmd
	FilePrefix string `yaml:"file_prefix"`

	// SideFile receives the invalid records (empty = never written)
	SideFile string `yaml:"side_file"`

	// ExcerptLength truncates diagnostics in the console listing (0 = no limit)
	ExcerptLength int `yaml:"excerpt_length"`

	// ListValid prints the valid artifacts after the counts
	ListValid bool `yaml:"list_valid"`

	// ProgressEvery prints a progress line every N artifacts (0 = off)
	ProgressEvery int `yaml:"progress_every"`

	// Live prints a ✓/✗ line per artifact as it is checked
	Live bool `yaml:"live"`
}

// BuiltinProfiles returns fresh copies of the built-in profiles.
func BuiltinProfiles() map[string]Profile {
	return map[string]Profile{
		"initial": {
			Name:          "initial",
			Description:   "First pass over extracted diagrams",
			Input:         "diagrams_to_validate.json",
			ScratchDir:    "/tmp/mermaid_validate",
			FilePrefix:    "diagram_",
			SideFile:      "/tmp/broken_diagrams.json",
			ExcerptLength: 500,
			ProgressEvery: 20,
		},
		"fixed": {
			Name:          "fixed",
			Description:   "Re-validate diagrams after automated fixes",
			Input:         "/tmp/fixed_diagrams_for_validation.json",
			ScratchDir:    "/tmp/mermaid_validate_fixed",
			FilePrefix:    "diagram_",
			SideFile:      "/tmp/still_broken_after_ai_fix.json",
			ExcerptLength: 300,
			ListValid:     true,
		},
		"round2": {
			Name:          "round2",
			Description:   "Second fix round with per-diagram output",
			Input:         "/tmp/fixed_diagrams_round2.json",
			ScratchDir:    "/tmp/mermaid_validate_r2",
			FilePrefix:    "d",
			SideFile:      "/tmp/still_broken_round2.json",
			ExcerptLength: 200,
			Live:          true,
		},
	}
}

// Config represents mmdcheck configuration options
type Config struct {
	// Checker is the argv template of the external renderer
	Checker Command `yaml:"checker"`

	// CheckerDir is the working directory for the checker (empty = current directory)
	CheckerDir string `yaml:"checker_dir"`

	// Timeout bounds each checker invocation
	Timeout time.Duration `yaml:"timeout"`

	// LogLevel sets the logging verbosity (trace, debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is where per-run log files go (empty = no file log)
	LogDir string `yaml:"log_dir"`

	// Profile is the profile used when none is given on the command line
	Profile string `yaml:"profile"`

	// Profiles holds built-in and user-defined profiles by name
	Profiles map[string]Profile `yaml:"profiles"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Checker:  Command(checker.DefaultCommand()),
		Timeout:  checker.DefaultTimeout,
		LogLevel: "info",
		LogDir:   filepath.Join(".mmdcheck", "logs"),
		Profile:  DefaultProfile,
		Profiles: BuiltinProfiles(),
	}
}

// LoadConfig loads configuration from the specified file path.
// A missing file yields the defaults; a malformed one is an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations are strings in YAML
	type yamlConfig struct {
		Checker    Command            `yaml:"checker"`
		CheckerDir string             `yaml:"checker_dir"`
		Timeout    string             `yaml:"timeout"`
		LogLevel   string             `yaml:"log_level"`
		LogDir     *string            `yaml:"log_dir"`
		Profile    string             `yaml:"profile"`
		Profiles   map[string]Profile `yaml:"profiles"`
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(yamlCfg.Checker) > 0 {
		cfg.Checker = yamlCfg.Checker
	}
	if yamlCfg.CheckerDir != "" {
		cfg.CheckerDir = yamlCfg.CheckerDir
	}
	if yamlCfg.Timeout != "" {
		timeout, err := time.ParseDuration(yamlCfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout format %q: %w", yamlCfg.Timeout, err)
		}
		cfg.Timeout = timeout
	}
	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}
	// An explicit empty log_dir disables the file log
	if yamlCfg.LogDir != nil {
		cfg.LogDir = *yamlCfg.LogDir
	}
	if yamlCfg.Profile != "" {
		cfg.Profile = yamlCfg.Profile
	}

	// Profiles merge field by field over the built-ins, so we need to know
	// which keys were actually present
	var raw struct {
		Profiles map[string]map[string]interface{} `yaml:"profiles"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	for name, fields := range raw.Profiles {
		cfg.Profiles[name] = mergeProfile(name, cfg.Profiles[name], yamlCfg.Profiles[name], fields)
	}

	return cfg, nil
}

// mergeProfile overlays the keys present in fields from override onto base.
func mergeProfile(name string, base, override Profile, fields map[string]interface{}) Profile {
	merged := base
	merged.Name = name
	if merged.FilePrefix == "" {
		merged.FilePrefix = "diagram_"
	}

	set := func(key string) bool {
		_, ok := fields[key]
		return ok
	}
	if set("description") {
		merged.Description = override.Description
	}
	if set("input") {
		merged.Input = override.Input
	}
	if set("scratch_dir") {
		merged.ScratchDir = override.ScratchDir
	}
	if set("file_prefix") {
		merged.FilePrefix = override.FilePrefix
	}
	if set("side_file") {
		merged.SideFile = override.SideFile
	}
	if set("excerpt_length") {
		merged.ExcerptLength = override.ExcerptLength
	}
	if set("list_valid") {
		merged.ListValid = override.ListValid
	}
	if set("progress_every") {
		merged.ProgressEvery = override.ProgressEvery
	}
	if set("live") {
		merged.Live = override.Live
	}
	return merged
}

// ConfigPath returns the config file location for dir, honoring MMDCHECK_HOME.
func ConfigPath(dir string) string {
	if home := os.Getenv(HomeEnv); home != "" {
		return filepath.Join(home, "config.yaml")
	}
	return filepath.Join(dir, ".mmdcheck", "config.yaml")
}

// LoadConfigFromDir loads configuration from ConfigPath(dir).
func LoadConfigFromDir(dir string) (*Config, error) {
	return LoadConfig(ConfigPath(dir))
}

// Overrides carries CLI flag values. Nil fields leave the config untouched.
type Overrides struct {
	Timeout    *time.Duration
	LogLevel   *string
	LogDir     *string
	Checker    []string
	CheckerDir *string
	Profile    *string
}

// MergeWithFlags lets CLI flags take precedence over config file settings.
func (c *Config) MergeWithFlags(o Overrides) {
	if o.Timeout != nil {
		c.Timeout = *o.Timeout
	}
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.LogDir != nil {
		c.LogDir = *o.LogDir
	}
	if len(o.Checker) > 0 {
		c.Checker = o.Checker
	}
	if o.CheckerDir != nil {
		c.CheckerDir = *o.CheckerDir
	}
	if o.Profile != nil {
		c.Profile = *o.Profile
	}
}

// ActiveProfile returns the profile selected by c.Profile.
func (c *Config) ActiveProfile() (Profile, error) {
	p, ok := c.Profiles[c.Profile]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q (available: %s)", c.Profile, strings.Join(c.ProfileNames(), ", "))
	}
	p.Name = c.Profile
	return p, nil
}

// ProfileNames returns the sorted profile names.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if len(c.Checker) == 0 || strings.TrimSpace(c.Checker[0]) == "" {
		return fmt.Errorf("checker command cannot be empty")
	}

	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	// Timeout can be 0 (no timeout) or positive
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}

	if _, err := c.ActiveProfile(); err != nil {
		return err
	}
	for _, name := range c.ProfileNames() {
		if err := c.Profiles[name].Validate(); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}

	return nil
}

// Validate checks a single profile.
func (p Profile) Validate() error {
	if p.Input == "" {
		return fmt.Errorf("input cannot be empty")
	}
	if p.ScratchDir == "" {
		return fmt.Errorf("scratch_dir cannot be empty")
	}
	if strings.ContainsAny(p.FilePrefix, `/\`) {
		return fmt.Errorf("file_prefix %q must not contain path separators", p.FilePrefix)
	}
	if p.ExcerptLength < 0 {
		return fmt.Errorf("excerpt_length must be >= 0, got %d", p.ExcerptLength)
	}
	if p.ProgressEvery < 0 {
		return fmt.Errorf("progress_every must be >= 0, got %d", p.ProgressEvery)
	}
	return nil
}

// ApplyFlags overrides profile paths from CLI flags. Nil values are ignored.
func (p *Profile) ApplyFlags(input, scratchDir, sideFile *string) {
	if input != nil {
		p.Input = *input
	}
	if scratchDir != nil {
		p.ScratchDir = *scratchDir
	}
	if sideFile != nil {
		p.SideFile = *sideFile
	}
}
