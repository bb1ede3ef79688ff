package core

// LintConfig holds rule configuration as read from needscheck.yaml.
type LintConfig struct {
	// Disabled contains rule IDs to skip
	Disabled []string `koanf:"disabled"`

	// Severity maps rule ID to severity override (error, warning)
	Severity map[string]string `koanf:"severity"`

	// Rules contains rule-specific options
	Rules map[string]RuleOptions `koanf:"rules"`

	// Scripts lists Starlark rule files or directories
	Scripts []string `koanf:"scripts"`
}

// RuleOptions holds rule-specific configuration options.
type RuleOptions map[string]any
