package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func need(t *testing.T, body string) *needs.Need {
	t.Helper()
	doc, err := needs.Parse([]byte(`{"versions": {"v1": {"needs": {"REQ_1": `+body+`}}}}`), needs.FormatJSON)
	require.NoError(t, err)
	return doc.Versions[0].Needs[0]
}

func messages(diags []lint.Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.Message)
	}
	return out
}

func TestLinksRules(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantType   []string
		wantFormat []string
	}{
		{name: "absent", body: `{}`},
		{name: "empty string", body: `{"links": ""}`},
		{name: "empty list", body: `{"links": []}`},
		{name: "null", body: `{"links": null}`},
		{name: "valid tokens", body: `{"links": "REQ_2, REQ_3,,"}`},
		{
			name:       "bad token",
			body:       `{"links": "REQ_2, req three"}`,
			wantFormat: []string{"Need 'REQ_1' has invalid link ID format: 'req three'"},
		},
		{
			name:     "list value",
			body:     `{"links": ["REQ_2"]}`,
			wantType: []string{"Need 'REQ_1' links must be a string"},
		},
		{
			name:     "number value",
			body:     `{"links": 3}`,
			wantType: []string{"Need 'REQ_1' links must be a string"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := need(t, tt.body)
			assert.Equal(t, tt.wantType, messages(checkLinksType(n, nil)))
			assert.Equal(t, tt.wantFormat, messages(checkLinksFormat(n, nil)))
		})
	}
}

func TestTagsRules(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantType   []string
		wantFormat []string
	}{
		{name: "absent", body: `{}`},
		{name: "valid", body: `{"tags": "usecase, functional, a_b-c"}`},
		{
			name:       "special characters",
			body:       `{"tags": "ok, bad tag!"}`,
			wantFormat: []string{"Need 'REQ_1' has tag with special characters: 'bad tag!'"},
		},
		{
			name: "every bad token reported",
			body: `{"tags": "a.b, c d, ok"}`,
			wantFormat: []string{
				"Need 'REQ_1' has tag with special characters: 'a.b'",
				"Need 'REQ_1' has tag with special characters: 'c d'",
			},
		},
		{
			name:     "list value",
			body:     `{"tags": ["usecase"]}`,
			wantType: []string{"Need 'REQ_1' tags must be a string"},
		},
		{name: "false value", body: `{"tags": false}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := need(t, tt.body)
			assert.Equal(t, tt.wantType, messages(checkTagsType(n, nil)))
			assert.Equal(t, tt.wantFormat, messages(checkTagsFormat(n, nil)))
		})
	}
}
