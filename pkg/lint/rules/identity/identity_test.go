package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func need(t *testing.T, key, body string) *needs.Need {
	t.Helper()
	doc, err := needs.Parse([]byte(`{"versions": {"v1": {"needs": {"`+key+`": `+body+`}}}}`), needs.FormatJSON)
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

func TestND01_IDMismatch(t *testing.T) {
	tests := []struct {
		name string
		key  string
		body string
		want []string
	}{
		{name: "matching id", key: "REQ_1", body: `{"id": "REQ_1"}`},
		{name: "absent id", key: "REQ_1", body: `{}`},
		{
			name: "different id",
			key:  "REQ_1",
			body: `{"id": "REQ_2"}`,
			want: []string{"Need ID mismatch: key='REQ_1', id='REQ_2'"},
		},
		{
			name: "non-string id",
			key:  "7",
			body: `{"id": 7}`,
			want: []string{"Need ID mismatch: key='7', id='7'"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(checkIDMismatch(need(t, tt.key, tt.body), nil)))
		})
	}
}

func TestND02_IDFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "upper case", body: `{"id": "REQ_001"}`},
		{name: "absent", body: `{}`},
		{
			name: "lower case",
			body: `{"id": "req-1"}`,
			want: []string{"Need ID 'req-1' should contain only uppercase letters, numbers, and underscores"},
		},
		{
			name: "empty",
			body: `{"id": ""}`,
			want: []string{"Need ID '' should contain only uppercase letters, numbers, and underscores"},
		},
		{
			name: "trailing newline",
			body: `{"id": "REQ\n"}`,
			want: []string{"Need ID 'REQ\n' should contain only uppercase letters, numbers, and underscores"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messages(checkIDFormat(need(t, "K", tt.body), nil)))
		})
	}
}
