package format

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(LinksFormat)
}

// LinksFormat warns about link tokens that are not well-formed ids.
var LinksFormat = lint.RuleDef{
	ID:          "ND04",
	Name:        "links-format",
	Group:       "format",
	Description: "Each token of a links string should be a well-formed need id",
	Severity:    core.SeverityWarning,
	CheckNeed:   checkLinksFormat,

	BadExample: `"REQ_1": {"links": "REQ_2, req three"}`,

	GoodExample: `"REQ_1": {"links": "REQ_2, REQ_3"}`,
}

func checkLinksFormat(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	return badTokens(n, needs.FieldLinks, n.Links, needs.IDPattern, "Need '%s' has invalid link ID format: '%s'")
}
