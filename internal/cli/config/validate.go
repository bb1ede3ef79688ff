package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/needscheck/internal/cli/output"
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch output.OutputMode(strings.ToLower(c.OutputFormat)) {
	case output.ModeAuto, output.ModeText, output.ModeMarkdown, output.ModeJSON, "":
	default:
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.OutputFormat)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.Lint != nil {
		for id, sev := range c.Lint.Severity {
			if _, ok := core.ParseSeverity(sev); !ok {
				return fmt.Errorf("lint.severity.%s: unknown severity %q (want error or warning)", id, sev)
			}
		}
	}
	return nil
}

// BuildLintConfig converts the file configuration into the rule engine's.
func (c *Config) BuildLintConfig() *lint.Config {
	cfg := lint.NewConfig()
	if c.Lint == nil {
		return cfg
	}
	for _, id := range c.Lint.Disabled {
		cfg.Disable(strings.ToUpper(strings.TrimSpace(id)))
	}
	for id, sev := range c.Lint.Severity {
		if s, ok := core.ParseSeverity(sev); ok {
			cfg.SetSeverity(strings.ToUpper(id), s)
		}
	}
	for id, opts := range c.Lint.Rules {
		cfg.SetRuleOptions(strings.ToUpper(id), opts)
	}
	return cfg
}

// Scripts returns the configured script rule paths.
func (c *Config) Scripts() []string {
	if c.Lint == nil {
		return nil
	}
	return c.Lint.Scripts
}
