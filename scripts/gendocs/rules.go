package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules"
)

// groupDescriptions provides human-readable descriptions for rule groups.
var groupDescriptions = map[string]string{
	"consistency": "Rules comparing what a version declares with what it contains.",
	"references":  "Rules about links between needs.",
	"identity":    "Rules about need IDs and their keys.",
	"format":      "Rules about the shape of list-valued fields.",
	"convention":  "Rules about the vocabulary of type and status.",
}

// scopePages lists one page per rule scope.
var scopePages = []struct {
	scope, file, title, intro string
}{
	{lint.ScopeVersion, "version-rules.md", "Version Rules", "Version rules run once per version object, before any need rule."},
	{lint.ScopeNeed, "need-rules.md", "Need Rules", "Need rules run once per need of every version."},
}

// generateRuleDocs generates all rule documentation files.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	byScope := make(map[string][]core.RuleInfo)
	for _, info := range lint.AllRuleInfo() {
		byScope[info.Scope] = append(byScope[info.Scope], info)
	}

	if err := os.WriteFile(filepath.Join(outDir, "index.md"), rulesIndexPage(byScope).Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated index.md")

	for _, p := range scopePages {
		w := rulesScopePage(p.title, p.intro, byScope[p.scope])
		if err := os.WriteFile(filepath.Join(outDir, p.file), w.Bytes(), 0600); err != nil {
			return err
		}
		log.Printf("  Generated %s", p.file)
	}

	return nil
}

// rulesIndexPage builds the overview page.
func rulesIndexPage(byScope map[string][]core.RuleInfo) *MarkdownWriter {
	w := NewMarkdownWriter()

	w.Frontmatter("Rules", "Validation rules for sphinx-needs exports")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("needscheck ships **%d version rules** and **%d need rules**. They run after the schema check passes or fails with %s; a structural failure (%s) stops the document before any rule runs.",
		len(byScope[lint.ScopeVersion]), len(byScope[lint.ScopeNeed]), InlineCode("SC01"), InlineCode("SC02")))

	w.Header(2, "Severity Levels")
	w.Table(
		[]string{"Severity", "Description"},
		[][]string{
			{InlineCode("error"), "Fails the document"},
			{InlineCode("warning"), "Reported; fails the document only in strict mode"},
		},
	)

	w.Header(2, "Configuration")
	w.Paragraph("Rules can be configured in `needscheck.yaml`:")
	w.CodeBlock("yaml", `lint:
  disabled: [ND06]         # skip a rule
  severity:
    VR01: error            # override severity
  rules:
    ND08:
      allowed: [open, closed, draft]`)

	w.Header(2, "All Rules")
	var rows [][]string
	for _, p := range scopePages {
		for _, info := range byScope[p.scope] {
			link := fmt.Sprintf("[%s](/rules/%s#%s)", info.ID, strings.TrimSuffix(p.file, ".md"), info.ID)
			rows = append(rows, []string{link, info.Name, capitalizeFirst(info.Group), InlineCode(info.DefaultSeverity.String())})
		}
	}
	w.Table([]string{"ID", "Name", "Group", "Severity"}, rows)

	w.Header(2, "Script Rules")
	w.Paragraph(fmt.Sprintf("Additional rules can be written in Starlark and loaded with %s. Script rule IDs may not reuse a built-in ID.", InlineCode("lint.scripts")))

	return w
}

// rulesScopePage builds the page for one scope.
func rulesScopePage(title, intro string, rules []core.RuleInfo) *MarkdownWriter {
	w := NewMarkdownWriter()

	w.Frontmatter(title, intro)
	w.GeneratedMarker()

	w.Header(1, title)
	w.Paragraph(intro)

	grouped := groupRules(rules)
	groups := make([]string, 0, len(grouped))
	for g := range grouped {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	for _, group := range groups {
		w.Line(fmt.Sprintf("## %s {#%s}", capitalizeFirst(group), group))
		w.Newline()

		if desc, ok := groupDescriptions[group]; ok {
			w.Paragraph(desc)
		}

		for _, rule := range grouped[group] {
			writeRuleDoc(w, rule)
		}
	}

	return w
}

// groupRules organizes rules by their Group field, sorted by ID.
func groupRules(rules []core.RuleInfo) map[string][]core.RuleInfo {
	grouped := make(map[string][]core.RuleInfo)
	for _, r := range rules {
		grouped[r.Group] = append(grouped[r.Group], r)
	}
	for group := range grouped {
		sort.Slice(grouped[group], func(i, j int) bool {
			return grouped[group][i].ID < grouped[group][j].ID
		})
	}
	return grouped
}

// capitalizeFirst capitalizes the first letter of a string.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, rule core.RuleInfo) {
	// ### ND01 - id-mismatch {#ND01}
	w.Line(fmt.Sprintf("### %s - %s {#%s}", rule.ID, rule.Name, rule.ID))
	w.Newline()

	w.Line(fmt.Sprintf("**Severity:** %s", InlineCode(rule.DefaultSeverity.String())))
	w.Newline()

	w.Paragraph(cleanDescription(rule.Description))

	if rule.Rationale != "" {
		w.Header(4, "Why This Matters")
		w.Paragraph(strings.TrimSpace(rule.Rationale))
	}

	if rule.BadExample != "" {
		w.Header(4, "Bad")
		w.CodeBlock("json", rule.BadExample)
	}

	if rule.GoodExample != "" {
		w.Header(4, "Good")
		w.CodeBlock("json", rule.GoodExample)
	}

	if rule.Fix != "" {
		w.Header(4, "How to Fix")
		w.Paragraph(strings.TrimSpace(rule.Fix))
	}

	if len(rule.ConfigKeys) > 0 {
		w.Header(4, "Configuration")
		w.Paragraph(fmt.Sprintf("This rule accepts the following configuration options: %s",
			InlineCode(strings.Join(rule.ConfigKeys, ", "))))
	}

	w.Line("---")
	w.Newline()
}
