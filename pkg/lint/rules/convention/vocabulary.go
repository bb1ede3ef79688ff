package convention

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

type vocabularyOptions struct {
	Allowed []string `mapstructure:"allowed"`
}

// checkVocabulary warns when a present field holds a value outside the
// allowed list. format receives the value and the comma-joined list.
func checkVocabulary(field string, v *needs.Node, defaults []string, opts map[string]any, format string) []lint.Diagnostic {
	if v == nil {
		return nil
	}

	cfg := vocabularyOptions{Allowed: defaults}
	if err := lint.DecodeOptions(opts, &cfg); err != nil {
		return []lint.Diagnostic{{
			Message:     fmt.Sprintf("invalid options: %v", err),
			RuleFailure: true,
		}}
	}

	if s, ok := v.AsString(); ok && slices.Contains(cfg.Allowed, s) {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf(format, v.Text(), strings.Join(cfg.Allowed, ", ")),
		Path:    []string{field},
	}}
}
