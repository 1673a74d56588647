// Package config loads the engine configuration from a YAML file, applying
// defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds engine settings shared by the CLI commands.
type Config struct {
	// OutputDir is where recordings are written and scanned from.
	OutputDir string `yaml:"output_dir"`
	// ReservedKeys are the capture session's start/stop control keys,
	// filtered out of the recorded stream. Parameterized so an operator who
	// rebinds the controls moves the filter with them.
	ReservedKeys []string `yaml:"reserved_keys"`
	// Sensitivity is the default pointer-motion multiplier for replay.
	Sensitivity float64 `yaml:"sensitivity"`
	// StartDelaySeconds is the default replay pre-roll.
	StartDelaySeconds float64 `yaml:"start_delay_seconds"`
	// LibraryPath is the recording catalog database. Defaults to
	// library.db inside OutputDir.
	LibraryPath string `yaml:"library_path"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "macroplay", "config.yaml")
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:         "routes_out",
		ReservedKeys:      []string{"f9", "f10"},
		Sensitivity:       1.0,
		StartDelaySeconds: 3,
		LogLevel:          "info",
	}
}

// Load reads the configuration at path. A missing file yields the defaults;
// a present but unparseable or invalid file is an error. An empty path skips
// the file entirely.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg.finalize(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg.finalize(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg = cfg.finalize()
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) finalize() Config {
	if c.LibraryPath == "" {
		c.LibraryPath = filepath.Join(c.OutputDir, "library.db")
	}
	return c
}

func (c Config) validate() error {
	if c.Sensitivity <= 0 {
		return fmt.Errorf("sensitivity must be positive, got %v", c.Sensitivity)
	}
	if c.StartDelaySeconds < 0 {
		return fmt.Errorf("start_delay_seconds must not be negative, got %v", c.StartDelaySeconds)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	return nil
}
