package format

import (
	"fmt"
	"regexp"

	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// mustBeString reports a truthy field that is not a string.
func mustBeString(n *needs.Need, field string, v *needs.Node) []lint.Diagnostic {
	if !v.Truthy() {
		return nil
	}
	if _, ok := v.AsString(); ok {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("Need '%s' %s must be a string", n.Key, field),
		Path:    []string{field},
	}}
}

// badTokens reports every token of a comma-separated string field that
// does not match pattern. Non-string values are left to mustBeString.
func badTokens(n *needs.Need, field string, v *needs.Node, pattern *regexp.Regexp, format string) []lint.Diagnostic {
	if !v.Truthy() {
		return nil
	}
	s, ok := v.AsString()
	if !ok {
		return nil
	}

	var diagnostics []lint.Diagnostic
	for _, tok := range needs.SplitTokens(s) {
		if pattern.MatchString(tok) {
			continue
		}
		diagnostics = append(diagnostics, lint.Diagnostic{
			Message: fmt.Sprintf(format, n.Key, tok),
			Path:    []string{field},
		})
	}
	return diagnostics
}
