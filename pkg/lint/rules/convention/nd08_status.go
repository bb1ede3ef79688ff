package convention

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(StatusConvention)
}

// DefaultStatuses are the commonly used need statuses.
var DefaultStatuses = []string{"open", "closed", "in_progress", "done"}

// StatusConvention warns about statuses outside the common vocabulary.
var StatusConvention = lint.RuleDef{
	ID:          "ND08",
	Name:        "status-convention",
	Group:       "convention",
	Description: "Need status should be one of the common statuses",
	Severity:    core.SeverityWarning,
	ConfigKeys:  []string{"allowed"},
	CheckNeed:   checkStatus,

	BadExample: `"REQ_1": {"status": "wip"}`,

	GoodExample: `"REQ_1": {"status": "in_progress"}`,

	Fix: "Use a common status, or list the project's statuses under lint.rules.ND08.allowed.",
}

func checkStatus(n *needs.Need, opts map[string]any) []lint.Diagnostic {
	return checkVocabulary(needs.FieldStatus, n.Status, DefaultStatuses, opts, "Uncommon status '%s'. Common statuses: %s")
}
