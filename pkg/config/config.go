// Package config provides configuration loading and validation for logpeek.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/logpeek/logpeek/pkg/source"
)

// Config is the root configuration structure loaded from YAML. All
// fields are optional; zero values fall back to the defaults.
type Config struct {
	// DefaultSource is the source used when none is given on the command
	// line (journal or file).
	DefaultSource string `yaml:"default_source,omitempty"`

	// Since is the default journal time window expression.
	Since string `yaml:"since,omitempty"`

	// Limit is the default record cap for bounded fetches. Zero means
	// unbounded.
	Limit int `yaml:"limit,omitempty"`

	// Buffer is the in-memory record cap for the terminal UI.
	Buffer int `yaml:"buffer,omitempty"`

	// JournalctlPath overrides the journalctl executable.
	JournalctlPath string `yaml:"journalctl_path,omitempty"`

	// WarnOnErrors emits diagnostics for skipped entries and degraded
	// fields.
	WarnOnErrors bool `yaml:"warn_on_errors,omitempty"`

	// SearchRaw extends keyword filtering to preserved raw fields.
	SearchRaw bool `yaml:"search_raw,omitempty"`

	// FileMode is the default file format (text, jsonl, auto).
	FileMode string `yaml:"file_mode,omitempty"`
}

// Load reads a configuration file, applies environment overrides, and
// validates the result. An empty path loads the default location when it
// exists, or just the defaults when it does not.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = defaultPath()
	}

	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; run on defaults.
	default:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Validate checks a configuration for errors.
func Validate(cfg *Config) error {
	switch cfg.DefaultSource {
	case "journal", "file":
	default:
		return fmt.Errorf("default_source: unknown source %q (must be journal or file)", cfg.DefaultSource)
	}

	if cfg.Limit < 0 {
		return errors.New("limit: must not be negative")
	}
	if cfg.Buffer <= 0 {
		return errors.New("buffer: must be positive")
	}

	if _, err := source.ParseMode(cfg.FileMode); err != nil {
		return fmt.Errorf("file_mode: %w", err)
	}

	return nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".logpeek.yaml")
}
