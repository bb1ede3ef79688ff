package lint

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// Rule scopes.
const (
	ScopeVersion = "version"
	ScopeNeed    = "need"
)

// =============================================================================
// Rule Definitions
// =============================================================================

// RuleDef is a data-driven rule definition.
// Exactly one of CheckVersion and CheckNeed is set.
type RuleDef struct {
	ID          string        // Unique identifier, e.g., "ND01"
	Name        string        // Human-readable name, e.g., "id-mismatch"
	Group       string        // Category, e.g., "identity", "references", "convention"
	Description string        // Human-readable description
	Severity    core.Severity // Default severity
	ConfigKeys  []string      // Configuration keys this rule accepts

	CheckVersion VersionCheckFunc
	CheckNeed    NeedCheckFunc

	// Documentation fields for richer rule documentation
	Rationale   string // Why this rule exists, what problems it prevents
	BadExample  string // Document fragment showing the problem
	GoodExample string // Document fragment showing the fix
	Fix         string // How to fix violations (when not obvious)
}

// VersionCheckFunc inspects one version that has a needs mapping.
// The opts parameter contains rule-specific options from configuration.
type VersionCheckFunc func(v *needs.Version, opts map[string]any) []Diagnostic

// NeedCheckFunc inspects one need.
type NeedCheckFunc func(n *needs.Need, opts map[string]any) []Diagnostic

// =============================================================================
// Diagnostics
// =============================================================================

// Diagnostic represents a finding.
//
// Checks fill in Message and, optionally, Path relative to the version or
// need they inspected. Version rules may name the need a finding is about.
// The analyzer stamps the rest.
type Diagnostic struct {
	RuleID   string        `json:"rule"`
	Severity core.Severity `json:"severity"`
	Message  string        `json:"message"`
	Version  string        `json:"version,omitempty"`
	Need     string        `json:"need,omitempty"`
	Path     []string      `json:"path,omitempty"`

	DocumentationURL string `json:"documentation_url,omitempty"`

	// RuleFailure marks a finding raised because the rule itself could not
	// run. It is always reported as an error.
	RuleFailure bool `json:"rule_failure,omitempty"`
}

// =============================================================================
// Rule Interfaces
// =============================================================================

// Rule is the base interface all lint rules implement.
type Rule interface {
	// ID returns the unique identifier, e.g., "VR01" or "ND03"
	ID() string

	// Name returns the human-readable name, e.g., "needs-amount"
	Name() string

	// Group returns the category, e.g., "consistency", "references"
	Group() string

	// Description returns a human-readable description
	Description() string

	// DefaultSeverity returns the default severity for this rule
	DefaultSeverity() core.Severity

	// ConfigKeys returns configuration keys this rule accepts
	ConfigKeys() []string

	// Documentation methods for richer rule documentation
	Rationale() string
	BadExample() string
	GoodExample() string
	Fix() string
}

// VersionRule checks a version as a whole.
type VersionRule interface {
	Rule
	CheckVersion(v *needs.Version, opts map[string]any) []Diagnostic
}

// NeedRule checks a single need.
type NeedRule interface {
	Rule
	CheckNeed(n *needs.Need, opts map[string]any) []Diagnostic
}

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
func GetRuleInfo(r Rule) core.RuleInfo {
	info := core.RuleInfo{
		ID:              r.ID(),
		Name:            r.Name(),
		Group:           r.Group(),
		Description:     r.Description(),
		DefaultSeverity: r.DefaultSeverity(),
		ConfigKeys:      r.ConfigKeys(),
		Rationale:       r.Rationale(),
		BadExample:      r.BadExample(),
		GoodExample:     r.GoodExample(),
		Fix:             r.Fix(),
	}

	switch r.(type) {
	case VersionRule:
		info.Scope = ScopeVersion
	case NeedRule:
		info.Scope = ScopeNeed
	}

	return info
}

// =============================================================================
// Wrapped RuleDef
// =============================================================================

type wrappedRuleDef struct {
	def RuleDef
}

type versionRuleDef struct{ wrappedRuleDef }

type needRuleDef struct{ wrappedRuleDef }

// WrapRuleDef wraps a RuleDef as a VersionRule or NeedRule depending on
// which check function it carries.
func WrapRuleDef(def RuleDef) Rule {
	if def.CheckVersion != nil {
		return &versionRuleDef{wrappedRuleDef{def: def}}
	}
	return &needRuleDef{wrappedRuleDef{def: def}}
}

func (w *wrappedRuleDef) ID() string                     { return w.def.ID }
func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Group() string                  { return w.def.Group }
func (w *wrappedRuleDef) Description() string            { return w.def.Description }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }

// Documentation methods
func (w *wrappedRuleDef) Rationale() string   { return w.def.Rationale }
func (w *wrappedRuleDef) BadExample() string  { return w.def.BadExample }
func (w *wrappedRuleDef) GoodExample() string { return w.def.GoodExample }
func (w *wrappedRuleDef) Fix() string         { return w.def.Fix }

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}

func (w *versionRuleDef) CheckVersion(v *needs.Version, opts map[string]any) []Diagnostic {
	return w.def.CheckVersion(v, opts)
}

func (w *needRuleDef) CheckNeed(n *needs.Need, opts map[string]any) []Diagnostic {
	if w.def.CheckNeed == nil {
		return nil
	}
	return w.def.CheckNeed(n, opts)
}
