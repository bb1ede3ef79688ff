package rules

// Import all rule subpackages to register them with the global registry.
import (
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules/consistency" // registers VR01
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules/convention"  // registers ND07, ND08
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules/format"      // registers ND03-ND06
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules/identity"    // registers ND01, ND02
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules/references"  // registers VR02
)
