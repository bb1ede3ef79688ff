package consistency

import (
	"fmt"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func init() {
	lint.Register(NeedsAmount)
}

// NeedsAmount warns when the declared needs_amount disagrees with the
// number of needs in the version.
var NeedsAmount = lint.RuleDef{
	ID:           "VR01",
	Name:         "needs-amount",
	Group:        "consistency",
	Description:  "Declared needs_amount must match the number of needs in the version",
	Severity:     core.SeverityWarning,
	CheckVersion: checkNeedsAmount,

	Rationale: `Exporters write needs_amount alongside the needs mapping. A mismatch usually means the
export was edited by hand or truncated.`,

	BadExample: `"1.0": {"needs_amount": 5, "needs": {"REQ_1": {}, "REQ_2": {}, "REQ_3": {}}}`,

	GoodExample: `"1.0": {"needs_amount": 3, "needs": {"REQ_1": {}, "REQ_2": {}, "REQ_3": {}}}`,

	Fix: "Regenerate the export, or set needs_amount to the number of needs.",
}

// checkNeedsAmount treats an absent needs_amount as 0. A value that is not
// an integer never matches and is quoted as written.
func checkNeedsAmount(v *needs.Version, _ map[string]any) []lint.Diagnostic {
	actual := len(v.Needs)

	declared := "0"
	matches := actual == 0
	if v.NeedsAmount != nil {
		declared = v.NeedsAmount.Text()
		n, ok := v.NeedsAmount.AsInt()
		matches = ok && n == int64(actual)
	}
	if matches {
		return nil
	}

	return []lint.Diagnostic{{
		Message: fmt.Sprintf("Version '%s': needs_amount (%s) doesn't match actual count (%d)", v.Key, declared, actual),
		Path:    []string{needs.FieldNeedsAmount},
	}}
}
