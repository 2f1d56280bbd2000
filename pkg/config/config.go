// Package config loads the korkac driver settings from TOML or YAML.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format is the on-disk configuration syntax.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Config holds the complete driver configuration
type Config struct {
	Log         LogConfig         `toml:"log" yaml:"log"`
	Dump        DumpConfig        `toml:"dump" yaml:"dump"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics" yaml:"diagnostics"`
	Check       CheckConfig       `toml:"check" yaml:"check"`
}

// LogConfig selects the slog level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// DumpConfig controls the lex and parse dumps.
type DumpConfig struct {
	Format string `toml:"format" yaml:"format"` // text, json or yaml
	Indent int    `toml:"indent" yaml:"indent"` // spaces per tree level
}

// DiagnosticsConfig controls how errors are rendered.
type DiagnosticsConfig struct {
	Color   bool `toml:"color" yaml:"color"`
	Snippet bool `toml:"snippet" yaml:"snippet"`
}

// CheckConfig controls the check command.
type CheckConfig struct {
	Jobs int `toml:"jobs" yaml:"jobs"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:         LogConfig{Level: "warn"},
		Dump:        DumpConfig{Format: "text", Indent: 2},
		Diagnostics: DiagnosticsConfig{Color: true, Snippet: true},
		Check:       CheckConfig{Jobs: 4},
	}
}

// Load reads path on top of Default. An empty path returns the defaults.
// The format is chosen by file extension; anything other than .yaml or
// .yml is read as TOML.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	path = os.ExpandEnv(path)
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(content, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes content on top of Default and validates the result.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("TOML parse error: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("YAML parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DetectFormat determines the configuration format from file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Dump.Format = strings.ToLower(strings.TrimSpace(c.Dump.Format))
}

// Validate reports the first setting that is out of range.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	switch c.Dump.Format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("dump.format must be text, json or yaml, got %q", c.Dump.Format)
	}
	if c.Dump.Indent < 1 || c.Dump.Indent > 8 {
		return fmt.Errorf("dump.indent must be between 1 and 8, got %d", c.Dump.Indent)
	}
	if c.Check.Jobs < 1 {
		return fmt.Errorf("check.jobs must be at least 1, got %d", c.Check.Jobs)
	}
	return nil
}

// SlogLevel maps log.level onto a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
}
