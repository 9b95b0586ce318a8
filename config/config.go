// Package config provides configuration loading and access for gridbot runs.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/gridbot/scheduler"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all run configuration parameters.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Narration NarrationConfig `yaml:"narration"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// LogConfig holds slog settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// SchedulerConfig holds scheduling parameters.
type SchedulerConfig struct {
	OnUnreachable string `yaml:"on_unreachable"` // skip or abort
	MaxExpansions int    `yaml:"max_expansions"` // per search, 0 = grid size
}

// NarrationConfig holds terminal report settings.
type NarrationConfig struct {
	Color          bool `yaml:"color"`
	ShowRerank     bool `yaml:"show_rerank"`
	ShowExpansions bool `yaml:"show_expansions"`
}

// OutputConfig holds file output settings.
type OutputConfig struct {
	Dir      string `yaml:"dir"`      // empty disables file output
	Compress string `yaml:"compress"` // none or zstd
}

// TelemetryConfig holds perf collection settings.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LogLevel slog.Level
	Policy   scheduler.Policy
	Zstd     bool
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in the file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.ComputeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived validates enum fields and fills Derived. Call it again after
// changing fields in place (for example from CLI flags).
func (c *Config) ComputeDerived() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	c.Derived.LogLevel = level

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	policy, err := scheduler.ParsePolicy(c.Scheduler.OnUnreachable)
	if err != nil {
		return fmt.Errorf("scheduler.on_unreachable: %w", err)
	}
	c.Derived.Policy = policy

	switch c.Output.Compress {
	case "", "none":
		c.Derived.Zstd = false
	case "zstd":
		c.Derived.Zstd = true
	default:
		return fmt.Errorf("output.compress: unknown codec %q", c.Output.Compress)
	}

	if c.Scheduler.MaxExpansions < 0 {
		return fmt.Errorf("scheduler.max_expansions: must be >= 0, got %d", c.Scheduler.MaxExpansions)
	}
	return nil
}

// NewLogger builds the slog logger described by the log section.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Derived.LogLevel}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
