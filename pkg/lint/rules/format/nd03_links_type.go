package format

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(LinksType)
}

// LinksType reports a links value that is not a comma-separated string.
var LinksType = lint.RuleDef{
	ID:          "ND03",
	Name:        "links-type",
	Group:       "format",
	Description: "A non-empty links field must be a comma-separated string",
	Severity:    core.SeverityError,
	CheckNeed:   checkLinksType,

	Rationale: `The links field is read as a comma-separated string of need ids. The same field is also
followed as a relationship by VR02, which accepts either form.`,

	BadExample: `"REQ_1": {"links": ["REQ_2", "REQ_3"]}`,

	GoodExample: `"REQ_1": {"links": "REQ_2, REQ_3"}`,
}

func checkLinksType(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	return mustBeString(n, needs.FieldLinks, n.Links)
}
