package convention

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(TypeConvention)
}

// DefaultTypes are the need types sphinx-needs projects commonly declare.
var DefaultTypes = []string{"req", "spec", "impl", "test", "actor", "usecase"}

// TypeConvention warns about need types outside the common vocabulary.
var TypeConvention = lint.RuleDef{
	ID:          "ND07",
	Name:        "type-convention",
	Group:       "convention",
	Description: "Need type should be one of the common types",
	Severity:    core.SeverityWarning,
	ConfigKeys:  []string{"allowed"},
	CheckNeed:   checkType,

	Rationale: `Types must be declared in the consuming project's needs_types. An unusual type often
means the importing project lacks the matching declaration.`,

	BadExample: `"REQ_1": {"type": "requirement"}`,

	GoodExample: `"REQ_1": {"type": "req"}`,

	Fix: "Use a common type, or list the project's types under lint.rules.ND07.allowed.",
}

func checkType(n *needs.Need, opts map[string]any) []lint.Diagnostic {
	return checkVocabulary(needs.FieldType, n.Type, DefaultTypes, opts, "Uncommon need type '%s'. Common types: %s")
}
