package format

import (
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(TagsFormat)
}

// TagsFormat warns about tags containing characters other than letters,
// digits, underscores and hyphens.
var TagsFormat = lint.RuleDef{
	ID:          "ND06",
	Name:        "tags-format",
	Group:       "format",
	Description: "Tags should contain only letters, numbers, underscores, and hyphens",
	Severity:    core.SeverityWarning,
	CheckNeed:   checkTagsFormat,

	Rationale: `Tags become filter terms and CSS classes in the rendered documentation. Spaces and
punctuation break both.`,

	BadExample: `"REQ_1": {"tags": "ok, bad tag!"}`,

	GoodExample: `"REQ_1": {"tags": "ok, bad-tag"}`,
}

func checkTagsFormat(n *needs.Need, _ map[string]any) []lint.Diagnostic {
	return badTokens(n, needs.FieldTags, n.Tags, needs.TagPattern, "Need '%s' has tag with special characters: '%s'")
}
