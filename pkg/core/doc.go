// Package core defines the shared language of the needscheck system.
//
// This package contains:
//   - Finding severities and rule metadata (Severity, RuleInfo)
//   - Document verdicts (Verdict)
//   - Lint configuration shared by the CLI and the engine (LintConfig)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
