// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leapstack-labs/needscheck/internal/cli/output"
)

// Needs export fixtures.
const (
	// ValidNeeds passes every check.
	ValidNeeds = `{
  "current_version": "1.0",
  "versions": {
    "1.0": {
      "needs_amount": 2,
      "needs": {
        "REQ_001": {"id": "REQ_001", "type": "req", "status": "open", "title": "Login", "links": "SPEC_001", "tags": "auth, login"},
        "SPEC_001": {"id": "SPEC_001", "type": "spec", "status": "closed", "title": "Login form"}
      }
    }
  }
}`

	// WarningNeeds passes with a needs_amount warning.
	WarningNeeds = `{
  "versions": {
    "1.0": {
      "needs_amount": 3,
      "needs": {
        "REQ_001": {"id": "REQ_001", "type": "req", "status": "open"}
      }
    }
  }
}`

	// InvalidNeeds fails on an id mismatch.
	InvalidNeeds = `{
  "versions": {
    "1.0": {
      "needs_amount": 1,
      "needs": {
        "REQ_001": {"id": "REQ_999", "type": "req", "status": "open"}
      }
    }
  }
}`

	// ValidNeedsYAML is ValidNeeds in YAML form.
	ValidNeedsYAML = `versions:
  "1.0":
    needs_amount: 1
    needs:
      REQ_001:
        id: REQ_001
        type: req
        status: open
`
)

// SetupTestProject creates a temporary directory holding one export per
// fixture: valid.json, warning.json, invalid.json and valid.yaml.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()
	files := map[string]string{
		"valid.json":   ValidNeeds,
		"warning.json": WarningNeeds,
		"invalid.json": InvalidNeeds,
		"valid.yaml":   ValidNeedsYAML,
	}
	for name, content := range files {
		WriteFile(t, tmpDir, name, content)
	}
	return tmpDir
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	return path
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a new test renderer in text mode (simulated TTY).
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// StripANSI removes ANSI escape codes.
func StripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown performs basic markdown validation.
// It checks for unclosed code fences and basic structure.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	// Check for balanced code fences
	fenceCount := strings.Count(md, "```")
	if fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	// Check that headers have content
	lines := strings.Split(md, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
