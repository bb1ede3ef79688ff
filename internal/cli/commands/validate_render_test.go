package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitestutil "github.com/leapstack-labs/needscheck/internal/cli/testutil"
	"github.com/leapstack-labs/needscheck/internal/engine"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func validateString(t *testing.T, doc string, strict bool) *engine.Result {
	t.Helper()
	eng, err := engine.New(engine.Config{})
	require.NoError(t, err)
	return eng.Validate(context.Background(), engine.Input{
		Source: "needs.json",
		Data:   []byte(doc),
		Format: needs.FormatJSON,
		Strict: strict,
	})
}

func TestRenderResults_Text(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		strict  bool
		wantOut []string
		notOut  []string
	}{
		{
			name:    "pass",
			doc:     clitestutil.ValidNeeds,
			wantOut: []string{"needs.json", "schema: bundled:sphinx-needs, needs: 2", msgPassed, "Version", "1.0"},
			notOut:  []string{"VALIDATION ERRORS:", "VALIDATION WARNINGS:"},
		},
		{
			name:    "warnings",
			doc:     clitestutil.WarningNeeds,
			wantOut: []string{"VALIDATION WARNINGS:", "  - VR01 ", msgPassWarnings},
			notOut:  []string{"VALIDATION ERRORS:", "strict mode"},
		},
		{
			name:    "warnings strict",
			doc:     clitestutil.WarningNeeds,
			strict:  true,
			wantOut: []string{msgPassWarnings, "(failing: strict mode)"},
		},
		{
			name:    "errors",
			doc:     clitestutil.InvalidNeeds,
			wantOut: []string{"VALIDATION ERRORS:", "  - ND01 Need ID mismatch", msgFailed},
		},
		{
			name:    "schema violation path",
			doc:     `{"versions": {"1.0": {"needs": {"A": {"lineno": "x"}}}}}`,
			wantOut: []string{"  - SC01 ", "(at versions -> 1.0 -> needs -> A -> lineno)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := clitestutil.NewTestRendererText()
			renderResults(tr.Renderer, []*engine.Result{validateString(t, tt.doc, tt.strict)})

			out := clitestutil.StripANSI(tr.Output())
			for _, want := range tt.wantOut {
				assert.Contains(t, out, want)
			}
			for _, notWant := range tt.notOut {
				assert.NotContains(t, out, notWant)
			}
		})
	}
}

func TestRenderResults_ErrorsBeforeWarnings(t *testing.T) {
	doc := `{"versions": {"1.0": {"needs_amount": 4, "needs": {"REQ_1": {"id": "REQ_2"}}}}}`
	tr := clitestutil.NewTestRendererText()
	renderResults(tr.Renderer, []*engine.Result{validateString(t, doc, false)})

	out := clitestutil.StripANSI(tr.Output())
	errIdx := indexOf(t, out, "VALIDATION ERRORS:")
	warnIdx := indexOf(t, out, "VALIDATION WARNINGS:")
	statusIdx := indexOf(t, out, msgFailed)
	assert.Less(t, errIdx, warnIdx)
	assert.Less(t, warnIdx, statusIdx)
}

func TestRenderResults_Summary(t *testing.T) {
	results := []*engine.Result{
		validateString(t, clitestutil.ValidNeeds, false),
		validateString(t, clitestutil.InvalidNeeds, false),
	}

	tr := clitestutil.NewTestRendererMarkdown()
	renderResults(tr.Renderer, results)
	assert.Contains(t, tr.Output(), "[fail] 2 documents validated, 1 failed")

	tr = clitestutil.NewTestRendererMarkdown()
	renderResults(tr.Renderer, results[:1])
	assert.NotContains(t, tr.Output(), "documents validated")
}

func indexOf(t *testing.T, s, sub string) int {
	t.Helper()
	i := strings.Index(s, sub)
	require.GreaterOrEqual(t, i, 0, "%q not found", sub)
	return i
}
