package consistency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func TestVR01_NeedsAmount(t *testing.T) {
	tests := []struct {
		name        string
		version     string
		wantMessage string
	}{
		{
			name:    "matching count",
			version: `{"needs_amount": 2, "needs": {"A": {}, "B": {}}}`,
		},
		{
			name:    "absent amount with no needs",
			version: `{"needs": {}}`,
		},
		{
			name:        "absent amount defaults to zero",
			version:     `{"needs": {"A": {}}}`,
			wantMessage: "Version 'v1': needs_amount (0) doesn't match actual count (1)",
		},
		{
			name:        "declared more than present",
			version:     `{"needs_amount": 5, "needs": {"A": {}, "B": {}, "C": {}}}`,
			wantMessage: "Version 'v1': needs_amount (5) doesn't match actual count (3)",
		},
		{
			name:    "integral float matches",
			version: `{"needs_amount": 1.0, "needs": {"A": {}}}`,
		},
		{
			name:        "string amount never matches",
			version:     `{"needs_amount": "1", "needs": {"A": {}}}`,
			wantMessage: "Version 'v1': needs_amount (1) doesn't match actual count (1)",
		},
		{
			name:        "null amount",
			version:     `{"needs_amount": null, "needs": {}}`,
			wantMessage: "Version 'v1': needs_amount (null) doesn't match actual count (0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := needs.Parse([]byte(`{"versions": {"v1": `+tt.version+`}}`), needs.FormatJSON)
			require.NoError(t, err)
			require.Len(t, doc.Versions, 1)

			diags := checkNeedsAmount(doc.Versions[0], nil)
			if tt.wantMessage == "" {
				assert.Empty(t, diags)
				return
			}
			require.Len(t, diags, 1)
			assert.Equal(t, tt.wantMessage, diags[0].Message)
			assert.Equal(t, []string{"needs_amount"}, diags[0].Path)
		})
	}
}
