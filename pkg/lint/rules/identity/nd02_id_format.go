package identity

import (
	"fmt"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(IDFormat)
}

// IDFormat warns about ids outside the upper-case id convention.
var IDFormat = lint.RuleDef{
	ID:          "ND02",
	Name:        "id-format",
	Group:       "identity",
	Description: "Need ids should contain only uppercase letters, numbers, and underscores",
	Severity:    core.SeverityWarning,
	CheckNeed:   checkIDFormat,

	Rationale: `Ids are used as link targets in comma-separated fields and as anchors in generated
documentation. Upper-case ids with underscores survive both without quoting.`,

	BadExample: `"req-1": {"id": "req-1"}`,

	GoodExample: `"REQ_1": {"id": "REQ_1"}`,
}

func checkIDFormat(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	if n.ID == nil {
		return nil
	}
	if id, ok := n.ID.AsString(); ok && needs.IDPattern.MatchString(id) {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("Need ID '%s' should contain only uppercase letters, numbers, and underscores", n.ID.Text()),
		Path:    []string{needs.FieldID},
	}}
}
