// Package config provides configuration management for the needscheck CLI.
//
// The shared lint types are defined in pkg/core and re-exported here via
// type aliases for convenience.
package config

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
)

// LintConfig is an alias for the shared lint configuration.
type LintConfig = core.LintConfig

// RuleOptions is an alias for the shared rule options type.
type RuleOptions = core.RuleOptions

// HistoryConfig holds configuration for the run history store.
type HistoryConfig struct {
	// Path of the SQLite database; empty disables recording
	Path string `koanf:"path"`
}

// ServeConfig holds configuration for the HTTP service.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Config holds all CLI configuration options.
type Config struct {
	Schema       string         `koanf:"schema"`
	Strict       bool           `koanf:"strict"`
	OutputFormat string         `koanf:"output"`
	Verbose      bool           `koanf:"verbose"`
	Concurrency  int            `koanf:"concurrency"`
	Lint         *LintConfig    `koanf:"lint"`
	History      *HistoryConfig `koanf:"history"`
	Serve        *ServeConfig   `koanf:"serve"`

	// ConfigDir is the directory of the config file used, or the working
	// directory. Relative paths in the file resolve against it.
	ConfigDir string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeAddr = ":8080"
	DefaultHistory   = ".needscheck/history.db"
	EnvPrefix        = "NEEDSCHECK_"
)

// ConfigFileNames are searched, in order, when --config is not given.
var ConfigFileNames = []string{"needscheck.yaml", "needscheck.yml"}

// HistoryPath returns the configured history database, or "" when
// recording is disabled.
func (c *Config) HistoryPath() string {
	if c.History == nil {
		return ""
	}
	return c.History.Path
}

// ServeAddr returns the listen address with the default applied.
func (c *Config) ServeAddr() string {
	if c.Serve == nil || c.Serve.Addr == "" {
		return DefaultServeAddr
	}
	return c.Serve.Addr
}
