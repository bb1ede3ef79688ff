package identity

import (
	"fmt"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(IDMismatch)
}

// IDMismatch reports needs whose id field differs from their key.
var IDMismatch = lint.RuleDef{
	ID:          "ND01",
	Name:        "id-mismatch",
	Group:       "identity",
	Description: "A need's id field must equal its key in the needs mapping",
	Severity:    core.SeverityError,
	CheckNeed:   checkIDMismatch,

	Rationale: `sphinx-needs resolves needs by key while tools display the id field. When they
disagree, links resolve to a different need than the one shown.`,

	BadExample: `"REQ_1": {"id": "REQ_2"}`,

	GoodExample: `"REQ_1": {"id": "REQ_1"}`,
}

func checkIDMismatch(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	if n.ID == nil {
		return nil
	}
	if id, ok := n.ID.AsString(); ok && id == n.Key {
		return nil
	}
	return []lint.Diagnostic{{
		Message: fmt.Sprintf("Need ID mismatch: key='%s', id='%s'", n.Key, n.ID.Text()),
		Path:    []string{needs.FieldID},
	}}
}
