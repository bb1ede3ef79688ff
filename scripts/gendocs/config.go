package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/needscheck/internal/cli/config"
)

// ConfigField describes one key of needscheck.yaml.
type ConfigField struct {
	Key         string
	Type        string
	Default     string
	Flag        string
	Description string
}

// configKeys mirrors internal/cli/config.Config.
var configKeys = []ConfigField{
	{Key: "schema", Type: "string", Flag: "--schema", Description: "JSON Schema file; empty uses the bundled sphinx-needs schema"},
	{Key: "strict", Type: "bool", Default: "false", Flag: "--strict", Description: "Treat warnings as failures"},
	{Key: "output", Type: "string", Default: config.DefaultOutput, Flag: "--output", Description: "Output format: auto, text, markdown, json"},
	{Key: "verbose", Type: "bool", Default: "false", Flag: "--verbose", Description: "Debug logging on stderr"},
	{Key: "concurrency", Type: "int", Default: "0", Flag: "--concurrency", Description: "Documents validated in parallel; 0 uses GOMAXPROCS"},
	{Key: "lint.disabled", Type: "[]string", Flag: "--disable", Description: "Rule IDs to skip"},
	{Key: "lint.severity", Type: "map[string]string", Description: "Severity override per rule ID (error, warning)"},
	{Key: "lint.rules", Type: "map[string]map", Description: "Rule-specific options keyed by rule ID"},
	{Key: "lint.scripts", Type: "[]string", Flag: "--script", Description: "Starlark rule files or directories"},
	{Key: "history.path", Type: "string", Flag: "--history", Description: "SQLite database that records runs; empty disables recording"},
	{Key: "serve.addr", Type: "string", Default: config.DefaultServeAddr, Flag: "--addr", Description: "Listen address of needscheck serve"},
}

// envName maps a config key to its environment variable.
func envName(key string) string {
	return config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// generateConfigDocs writes the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(outDir, "configuration.md"), configurationPage().Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to generate configuration.md: %w", err)
	}
	log.Printf("  Generated configuration.md")

	return nil
}

func configurationPage() *MarkdownWriter {
	w := NewMarkdownWriter()

	w.Frontmatter("Configuration", "needscheck configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("needscheck reads %s from the working directory, or the file named by %s. Relative paths in the file resolve against its directory.",
		strings.Join(quoted(config.ConfigFileNames), " or "), InlineCode("--config")))

	w.Header(2, "Keys")

	rows := make([][]string, 0, len(configKeys))
	for _, f := range configKeys {
		def := "-"
		if f.Default != "" {
			def = InlineCode(f.Default)
		}
		flagName := "-"
		if f.Flag != "" {
			flagName = InlineCode(f.Flag)
		}
		rows = append(rows, []string{InlineCode(f.Key), f.Type, def, flagName, InlineCode(envName(f.Key)), f.Description})
	}
	w.Table([]string{"Key", "Type", "Default", "Flag", "Environment", "Description"}, rows)

	w.Header(2, "Precedence")
	w.BulletList([]string{
		"Command-line flags that were set explicitly",
		fmt.Sprintf("Environment variables with the %s prefix", InlineCode(config.EnvPrefix)),
		"The config file",
		"Built-in defaults",
	})

	w.Header(2, "Example")
	w.CodeBlock("yaml", `strict: true
schema: schemas/needs.schema.json
lint:
  disabled: [ND06]
  severity:
    VR01: error
  rules:
    VR02:
      preset: extended
    ND07:
      allowed: [req, spec, impl, test]
  scripts:
    - rules/
history:
  path: .needscheck/history.db
serve:
  addr: ":8080"`)

	return w
}

func quoted(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = InlineCode(n)
	}
	return out
}
