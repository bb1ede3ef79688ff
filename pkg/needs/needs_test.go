package needs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

func TestDecodeJSON_PreservesOrder(t *testing.T) {
	root, err := needs.DecodeJSON([]byte(`{"b": 1, "a": [true, null, "x"], "c": {"z": 1.5, "y": 2}}`))
	require.NoError(t, err)

	var keys []string
	for _, m := range root.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"b", "a", "c"}, keys)

	a, ok := root.Get("a")
	require.True(t, ok)
	assert.Equal(t, needs.KindArray, a.Kind())
	assert.Equal(t, `[true,null,"x"]`, a.Text())

	c, _ := root.Get("c")
	assert.Equal(t, "z", c.Members()[0].Key)
	z, _ := c.Get("z")
	assert.Equal(t, "1.5", z.Text())
}

func TestDecodeJSON_DuplicateKeys(t *testing.T) {
	root, err := needs.DecodeJSON([]byte(`{"a": 1, "b": 2, "a": 3}`))
	require.NoError(t, err)

	require.Len(t, root.Members(), 2)
	assert.Equal(t, "a", root.Members()[0].Key)
	a, _ := root.Get("a")
	assert.Equal(t, "3", a.Text())
}

func TestDecodeJSON_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "truncated", input: `{"versions": {`},
		{name: "trailing data", input: `{} {}`},
		{name: "bad literal", input: `{"a": tru}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := needs.DecodeJSON([]byte(tt.input))
			require.Error(t, err)
			var perr *needs.ParseError
			assert.ErrorAs(t, err, &perr)
			assert.Contains(t, err.Error(), "invalid JSON")
		})
	}
}

func TestDecodeYAML(t *testing.T) {
	input := `
versions:
  "1.0":
    needs_amount: 2
    needs:
      REQ_2: {id: REQ_2, links: [REQ_1]}
      REQ_1:
        id: REQ_1
        done: false
        score: 0.5
        note: ~
`
	root, err := needs.DecodeYAML([]byte(input))
	require.NoError(t, err)

	doc := needs.FromNode(root)
	require.Len(t, doc.Versions, 1)
	v := doc.Versions[0]
	assert.Equal(t, "1.0", v.Key)

	amount, ok := v.NeedsAmount.AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(2), amount)

	require.Len(t, v.Needs, 2)
	assert.Equal(t, "REQ_2", v.Needs[0].Key)
	assert.Equal(t, []string{"REQ_1"}, needs.Targets(v.Needs[0].Links))

	req1 := v.Needs[1]
	assert.Equal(t, needs.KindBool, req1.Field("done").Kind())
	assert.Equal(t, needs.KindNumber, req1.Field("score").Kind())
	assert.Equal(t, needs.KindNull, req1.Field("note").Kind())
	assert.Nil(t, req1.Field("missing"))
}

func TestDecodeYAML_Errors(t *testing.T) {
	_, err := needs.DecodeYAML([]byte("a: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid YAML")

	_, err = needs.DecodeYAML([]byte(""))
	require.Error(t, err)
}

func TestFromNode_OptionalStructure(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantVersions int
		wantHasNeeds bool
	}{
		{name: "no versions", input: `{}`, wantVersions: 0},
		{name: "versions not object", input: `{"versions": []}`, wantVersions: 0},
		{name: "version without needs", input: `{"versions": {"v1": {}}}`, wantVersions: 1},
		{name: "needs not object", input: `{"versions": {"v1": {"needs": "x"}}}`, wantVersions: 1},
		{name: "version not object", input: `{"versions": {"v1": 3}}`, wantVersions: 1},
		{name: "needs present", input: `{"versions": {"v1": {"needs": {}}}}`, wantVersions: 1, wantHasNeeds: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := needs.Parse([]byte(tt.input), needs.FormatJSON)
			require.NoError(t, err)
			require.Len(t, doc.Versions, tt.wantVersions)
			if tt.wantVersions > 0 {
				assert.Equal(t, tt.wantHasNeeds, doc.Versions[0].HasNeeds)
			}
		})
	}
}

func TestNeed_AbsentFieldsAreNil(t *testing.T) {
	doc, err := needs.Parse([]byte(`{"versions": {"v1": {"needs": {"A": {"type": "req"}}}}}`), needs.FormatJSON)
	require.NoError(t, err)

	n := doc.Versions[0].Needs[0]
	assert.Nil(t, n.ID)
	assert.Nil(t, n.Status)
	assert.Nil(t, n.Links)
	assert.Nil(t, n.Tags)
	require.NotNil(t, n.Type)
	s, ok := n.Type.AsString()
	assert.True(t, ok)
	assert.Equal(t, "req", s)
	assert.Equal(t, "v1", n.Version)
}

func TestNode_Truthy(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{`null`, false},
		{`false`, false},
		{`true`, true},
		{`0`, false},
		{`0.0`, false},
		{`2`, true},
		{`""`, false},
		{`"x"`, true},
		{`[]`, false},
		{`[0]`, true},
		{`{}`, false},
		{`{"a": 1}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := needs.DecodeJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.Truthy())
		})
	}
}

func TestNode_AsInt(t *testing.T) {
	tests := []struct {
		node *needs.Node
		want int64
		ok   bool
	}{
		{needs.Number("5"), 5, true},
		{needs.Number("5.0"), 5, true},
		{needs.Number("5.5"), 0, false},
		{needs.String("5"), 0, false},
		{nil, 0, false},
	}

	for _, tt := range tests {
		got, ok := tt.node.AsInt()
		assert.Equal(t, tt.ok, ok)
		assert.Equal(t, tt.want, got)
	}
}

func TestNode_Equal(t *testing.T) {
	a, err := needs.DecodeJSON([]byte(`{"x": [1, "a"], "y": {"k": true}}`))
	require.NoError(t, err)
	b, err := needs.DecodeJSON([]byte(`{"y": {"k": true}, "x": [1.0, "a"]}`))
	require.NoError(t, err)
	c, err := needs.DecodeJSON([]byte(`{"y": {"k": false}, "x": [1, "a"]}`))
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestNode_Interface(t *testing.T) {
	n, err := needs.DecodeJSON([]byte(`{"a": [1, "b", null], "c": false}`))
	require.NoError(t, err)

	v, ok := n.Interface().(map[string]any)
	require.True(t, ok)
	arr, ok := v["a"].([]any)
	require.True(t, ok)
	assert.Len(t, arr, 3)
	assert.Equal(t, "b", arr[1])
	assert.Nil(t, arr[2])
	assert.Equal(t, false, v["c"])
}

func TestTargets(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "array", input: `["A", "B"]`, want: []string{"A", "B"}},
		{name: "array with number", input: `["A", 7]`, want: []string{"A", "7"}},
		{name: "comma string", input: `"A, B,, C "`, want: []string{"A", "B", "C"}},
		{name: "empty string", input: `""`, want: []string{}},
		{name: "object", input: `{"A": 1}`, want: nil},
		{name: "null", input: `null`, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := needs.DecodeJSON([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, needs.Targets(n))
		})
	}
}

func TestSplitTokens(t *testing.T) {
	assert.Equal(t, []string{"ok", "bad tag!"}, needs.SplitTokens("ok, bad tag!"))
	assert.Equal(t, []string{}, needs.SplitTokens(" , ,"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "needs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"versions": {"1.0": {"needs": {}}}}`), 0o600))
	doc, err := needs.Load(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, jsonPath, doc.Source)
	assert.Equal(t, needs.FormatJSON, doc.Format)

	yamlPath := filepath.Join(dir, "needs.YML")
	require.NoError(t, os.WriteFile(yamlPath, []byte("versions: {}\n"), 0o600))
	doc, err = needs.Load(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, needs.FormatYAML, doc.Format)

	_, err = needs.Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
}
