package config

import "os"

// Default values for configuration.
const (
	DefaultSource = "journal"
	DefaultLimit  = 1000
	DefaultBuffer = 10000
	DefaultMode   = "auto"
)

// Environment variable names.
const (
	EnvSource         = "LOGPEEK_SOURCE"
	EnvJournalctlPath = "LOGPEEK_JOURNALCTL"
	EnvSince          = "LOGPEEK_SINCE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultSource: DefaultSource,
		Limit:         DefaultLimit,
		Buffer:        DefaultBuffer,
		FileMode:      DefaultMode,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if v := os.Getenv(EnvSource); v != "" {
		c.DefaultSource = v
	}
	if v := os.Getenv(EnvJournalctlPath); v != "" {
		c.JournalctlPath = v
	}
	if v := os.Getenv(EnvSince); v != "" {
		c.Since = v
	}
}
