package lint

import (
	"fmt"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// Analyzer runs lint rules against a needs document.
type Analyzer struct {
	config *Config
	extra  []Rule
}

// NewAnalyzer creates a new analyzer with optional configuration.
// Extra rules run after the registered ones, in the order given.
func NewAnalyzer(config *Config, extra ...Rule) *Analyzer {
	if config == nil {
		config = NewConfig()
	}
	return &Analyzer{config: config, extra: extra}
}

// Rules returns the enabled rules in execution order.
func (a *Analyzer) Rules() []Rule {
	all := append(GetAll(), a.extra...)
	enabled := all[:0]
	for _, r := range all {
		if !a.config.IsDisabled(r.ID()) {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

// Analyze runs every enabled rule over the document and returns the
// findings in a deterministic order: per version in document order, the
// version rules first and then, for each need in document order, the need
// rules. It never fails; a rule that panics yields an error finding.
func (a *Analyzer) Analyze(doc *needs.Document) []Diagnostic {
	if doc == nil {
		return nil
	}

	var versionRules []VersionRule
	var needRules []NeedRule
	for _, r := range a.Rules() {
		switch rule := r.(type) {
		case VersionRule:
			versionRules = append(versionRules, rule)
		case NeedRule:
			needRules = append(needRules, rule)
		}
	}

	var diagnostics []Diagnostic
	for _, v := range doc.Versions {
		if !v.HasNeeds {
			continue
		}
		for _, rule := range versionRules {
			diags := a.run(rule, func(opts map[string]any) []Diagnostic {
				return rule.CheckVersion(v, opts)
			})
			diagnostics = append(diagnostics, a.stamp(rule, v.Key, "", diags)...)
		}
		for _, n := range v.Needs {
			for _, rule := range needRules {
				diags := a.run(rule, func(opts map[string]any) []Diagnostic {
					return rule.CheckNeed(n, opts)
				})
				diagnostics = append(diagnostics, a.stamp(rule, v.Key, n.Key, diags)...)
			}
		}
	}

	return diagnostics
}

func (a *Analyzer) run(rule Rule, check func(opts map[string]any) []Diagnostic) (diags []Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			diags = []Diagnostic{{
				Message:     fmt.Sprintf("Rule %s failed: %v", rule.ID(), r),
				RuleFailure: true,
			}}
		}
	}()
	return check(a.config.GetRuleOptions(rule.ID()))
}

// stamp fills in rule, severity and location. Rule failures stay errors
// whatever the configured severity.
func (a *Analyzer) stamp(rule Rule, version, need string, diags []Diagnostic) []Diagnostic {
	for i := range diags {
		d := &diags[i]
		d.RuleID = rule.ID()
		if d.RuleFailure {
			d.Severity = core.SeverityError
		} else {
			d.Severity = a.config.GetSeverity(rule.ID(), rule.DefaultSeverity())
		}
		d.Version = version
		if need != "" {
			d.Need = need
		}
		d.Path = locate(version, need, d.Path)
		d.DocumentationURL = BuildDocURL(rule.ID())
	}
	return diags
}

// locate anchors a check-relative path at its version, or at its need
// for need rules.
func locate(version, need string, rel []string) []string {
	path := []string{needs.FieldVersions, version}
	if need != "" {
		path = append(path, needs.FieldNeeds, need)
	}
	return append(path, rel...)
}
