package lint_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func analyze(t *testing.T, cfg *lint.Config, doc string) []lint.Diagnostic {
	t.Helper()
	d, err := needs.Parse([]byte(doc), needs.FormatJSON)
	require.NoError(t, err)
	return lint.NewAnalyzer(cfg).Analyze(d)
}

func split(diags []lint.Diagnostic) (errs, warns []lint.Diagnostic) {
	for _, d := range diags {
		if d.Severity == core.SeverityError {
			errs = append(errs, d)
		} else {
			warns = append(warns, d)
		}
	}
	return errs, warns
}

func TestRegistry_BuiltinRules(t *testing.T) {
	var ids []string
	for _, r := range lint.GetAll() {
		ids = append(ids, r.ID())
	}
	assert.Equal(t, []string{"VR01", "VR02", "ND01", "ND02", "ND03", "ND04", "ND05", "ND06", "ND07", "ND08"}, ids)

	rule, ok := lint.GetByID("ND07")
	require.True(t, ok)
	assert.Equal(t, "type-convention", rule.Name())
	assert.Len(t, lint.GetByGroup("format"), 4)
}

func TestAnalyzer_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		wantErrs  []string
		wantWarns []string
	}{
		{
			name: "clean document",
			doc:  `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_1", "type": "req", "status": "open"}}}}}`,
		},
		{
			name:     "id mismatch",
			doc:      `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_2", "type": "req", "status": "open"}}}}}`,
			wantErrs: []string{"Need ID mismatch: key='REQ_1', id='REQ_2'"},
		},
		{
			name:     "dangling extends",
			doc:      `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_1", "extends": ["REQ_9"]}}}}}`,
			wantErrs: []string{"Need 'REQ_1' extends references non-existent need 'REQ_9'"},
		},
		{
			name:      "bad tag",
			doc:       `{"versions": {"v1": {"needs_amount": 1, "needs": {"REQ_1": {"id": "REQ_1", "tags": "ok, bad tag!"}}}}}`,
			wantWarns: []string{"Need 'REQ_1' has tag with special characters: 'bad tag!'"},
		},
		{
			name:      "count mismatch",
			doc:       `{"versions": {"v1": {"needs_amount": 5, "needs": {"A": {}, "B": {}, "C": {}}}}}`,
			wantWarns: []string{"Version 'v1': needs_amount (5) doesn't match actual count (3)"},
		},
		{
			name: "version rules before need rules",
			doc:  `{"versions": {"v1": {"needs": {"a": {"id": "b", "links": "X"}}}}}`,
			wantErrs: []string{
				"Need 'a' links references non-existent need 'X'",
				"Need ID mismatch: key='a', id='b'",
			},
			wantWarns: []string{
				"Version 'v1': needs_amount (0) doesn't match actual count (1)",
				"Need ID 'b' should contain only uppercase letters, numbers, and underscores",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, warns := split(analyze(t, nil, tt.doc))
			assert.Equal(t, tt.wantErrs, messages(errs))
			assert.Equal(t, tt.wantWarns, messages(warns))
		})
	}
}

func messages(diags []lint.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestAnalyzer_ZeroNeedsProduceNothing(t *testing.T) {
	docs := []string{
		`{}`,
		`{"versions": {}}`,
		`{"versions": {"v1": {}}}`,
		`{"versions": {"v1": {"needs": {}}, "v2": {"needs": {}, "needs_amount": 0}}}`,
		`{"versions": {"v1": {"needs_amount": 4}}}`,
		`{"versions": []}`,
	}
	for _, doc := range docs {
		assert.Empty(t, analyze(t, nil, doc), doc)
	}
}

func TestAnalyzer_WellFormedIDsProduceNoIDFindings(t *testing.T) {
	ids := []string{"A", "REQ_1", "123", "_", "UC_001_X"}
	for _, id := range ids {
		doc := fmt.Sprintf(`{"versions": {"v1": {"needs_amount": 1, "needs": {%q: {"id": %q}}}}}`, id, id)
		for _, d := range analyze(t, nil, doc) {
			assert.NotContains(t, []string{"ND01", "ND02"}, d.RuleID, id)
		}
	}
}

func TestAnalyzer_OneReferentialErrorPerTriple(t *testing.T) {
	doc := `{"versions": {"v1": {"needs_amount": 2, "needs": {
		"A": {"includes": ["M1", "M1", "B"], "extends": ["M1"], "associates": ["M2"], "links": ["M1", "M2"]},
		"B": {"extends": ["M1", "A"]}
	}}}}`

	counts := make(map[string]int)
	for _, d := range analyze(t, nil, doc) {
		if d.RuleID == "VR02" {
			counts[d.Message]++
		}
	}

	want := []string{
		"Need 'A' includes references non-existent need 'M1'",
		"Need 'A' extends references non-existent need 'M1'",
		"Need 'A' associates references non-existent need 'M2'",
		"Need 'A' links references non-existent need 'M1'",
		"Need 'A' links references non-existent need 'M2'",
		"Need 'B' extends references non-existent need 'M1'",
	}
	assert.Len(t, counts, len(want))
	for _, m := range want {
		assert.Equal(t, 1, counts[m], m)
	}
}

func TestAnalyzer_CountMismatchIsWarningPerVersion(t *testing.T) {
	doc := `{"versions": {
		"1.0": {"needs_amount": 2, "needs": {"A": {}}},
		"2.0": {"needs_amount": 1, "needs": {"A": {}}},
		"3.0": {"needs_amount": 0, "needs": {"A": {}, "B": {}}}
	}}`

	var got []lint.Diagnostic
	for _, d := range analyze(t, nil, doc) {
		if d.RuleID == "VR01" {
			got = append(got, d)
		}
	}
	require.Len(t, got, 2)
	assert.Equal(t, "1.0", got[0].Version)
	assert.Equal(t, "3.0", got[1].Version)
	for _, d := range got {
		assert.Equal(t, core.SeverityWarning, d.Severity)
	}
}

func TestAnalyzer_Idempotent(t *testing.T) {
	raw := `{"versions": {"b": {"needs": {"z": {"id": 1, "tags": "x y", "links": ["Q"]}, "Y": {"type": "odd"}}}, "a": {"needs_amount": "x", "needs": {"K": {"status": "wip"}}}}}`
	d, err := needs.Parse([]byte(raw), needs.FormatJSON)
	require.NoError(t, err)

	analyzer := lint.NewAnalyzer(nil)
	first := analyzer.Analyze(d)
	second := analyzer.Analyze(d)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
	assert.Equal(t, "b", first[0].Version, "versions are visited in document order")
}

func TestAnalyzer_Config(t *testing.T) {
	doc := `{"versions": {"v1": {"needs": {"REQ_1": {"id": "REQ_1", "type": "story", "status": "open"}}}}}`

	t.Run("disable", func(t *testing.T) {
		cfg := lint.NewConfig().Disable("VR01").Disable("ND07")
		assert.Empty(t, analyze(t, cfg, doc))
	})

	t.Run("severity override", func(t *testing.T) {
		cfg := lint.NewConfig().Disable("VR01").SetSeverity("ND07", core.SeverityError)
		diags := analyze(t, cfg, doc)
		require.Len(t, diags, 1)
		assert.Equal(t, core.SeverityError, diags[0].Severity)
		assert.Equal(t, "ND07", diags[0].RuleID)
	})

	t.Run("rule options", func(t *testing.T) {
		cfg := lint.NewConfig().Disable("VR01").SetRuleOptions("ND07", map[string]any{"allowed": []any{"story"}})
		assert.Empty(t, analyze(t, cfg, doc))
	})
}

func TestAnalyzer_FindingLocation(t *testing.T) {
	diags := analyze(t, nil, `{"versions": {"1.0": {"needs_amount": 1, "needs": {"A": {"tags": ["t"]}}}}}`)
	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, "ND05", d.RuleID)
	assert.Equal(t, "1.0", d.Version)
	assert.Equal(t, "A", d.Need)
	assert.Equal(t, "versions -> 1.0 -> needs -> A -> tags", strings.Join(d.Path, " -> "))
	assert.True(t, strings.HasSuffix(d.DocumentationURL, "/nd05"))
}
