package format

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(TagsType)
}

// TagsType reports a tags value that is not a comma-separated string.
var TagsType = lint.RuleDef{
	ID:          "ND05",
	Name:        "tags-type",
	Group:       "format",
	Description: "A non-empty tags field must be a comma-separated string",
	Severity:    core.SeverityError,
	CheckNeed:   checkTagsType,

	BadExample: `"REQ_1": {"tags": ["usecase", "functional"]}`,

	GoodExample: `"REQ_1": {"tags": "usecase, functional"}`,
}

func checkTagsType(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	return mustBeString(n, needs.FieldTags, n.Tags)
}
