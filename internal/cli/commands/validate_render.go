package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leapstack-labs/needscheck/internal/cli/output"
	"github.com/leapstack-labs/needscheck/internal/engine"
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/schema"
)

// Status lines of a validation report.
const (
	msgPassed       = "Validation passed! The needs file is valid."
	msgPassWarnings = "Validation passed with warnings."
	msgFailed       = "Validation failed with errors."
)

// ValidateJSONOutput is the JSON output structure for validate.
type ValidateJSONOutput struct {
	Results []*engine.Result `json:"results"`
	Failed  bool             `json:"failed"`
}

func renderResults(r *output.Renderer, results []*engine.Result) {
	switch r.EffectiveMode() {
	case output.ModeJSON:
		_ = r.JSON(ValidateJSONOutput{Results: results, Failed: engine.Failed(results)})
	case output.ModeMarkdown:
		for _, res := range results {
			renderResultMarkdown(r, res)
		}
		renderSummary(r, results)
	default:
		for _, res := range results {
			renderResultText(r, res)
		}
		renderSummary(r, results)
	}
}

func renderResultText(r *output.Renderer, res *engine.Result) {
	styles := r.Styles()

	r.Println("")
	r.Println(styles.Path.Render(res.Source))
	r.Println(styles.Muted.Render(fmt.Sprintf("schema: %s, needs: %d", res.Schema, res.NeedCount)))
	r.Println("")

	if len(res.Errors) > 0 {
		r.Println(styles.Error.Render("VALIDATION ERRORS:"))
		for _, d := range res.Errors {
			r.Println(formatFindingText(r, d))
		}
		r.Println("")
	}
	if len(res.Warnings) > 0 {
		r.Println(styles.Warning.Render("VALIDATION WARNINGS:"))
		for _, d := range res.Warnings {
			r.Println(formatFindingText(r, d))
		}
		r.Println("")
	}

	if len(res.Versions) > 0 {
		t := versionTable(res)
		t.SetOutputMirror(r.Writer())
		t.SetStyle(table.StyleLight)
		t.Render()
		r.Println("")
	}

	renderStatus(r, res)
}

func formatFindingText(r *output.Renderer, d lint.Diagnostic) string {
	styles := r.Styles()
	line := fmt.Sprintf("  - %s %s", styles.Muted.Render(d.RuleID), d.Message)
	if len(d.Path) > 0 && d.RuleID == engine.RuleSchema {
		line += styles.Muted.Render(" (at " + strings.Join(d.Path, schema.PathSeparator) + ")")
	}
	return line
}

func renderResultMarkdown(r *output.Renderer, res *engine.Result) {
	r.Println(output.FormatHeader(2, res.Source))
	r.Println("")
	r.Println(output.FormatKeyValue("Schema", res.Schema))
	r.Println(output.FormatKeyValue("Needs", strconv.Itoa(res.NeedCount)))
	r.Println(output.FormatKeyValue("Verdict", string(res.Verdict)))
	r.Println("")

	if len(res.Errors) > 0 {
		r.Println(output.FormatHeader(3, "Validation errors"))
		r.Println("")
		for _, d := range res.Errors {
			r.Println(formatFindingMarkdown(d))
		}
		r.Println("")
	}
	if len(res.Warnings) > 0 {
		r.Println(output.FormatHeader(3, "Validation warnings"))
		r.Println("")
		for _, d := range res.Warnings {
			r.Println(formatFindingMarkdown(d))
		}
		r.Println("")
	}

	if len(res.Versions) > 0 {
		r.Println(versionTable(res).RenderMarkdown())
		r.Println("")
	}

	renderStatus(r, res)
	r.Println("")
}

func formatFindingMarkdown(d lint.Diagnostic) string {
	line := fmt.Sprintf("- **%s** %s", d.RuleID, d.Message)
	if len(d.Path) > 0 {
		line += " (`" + strings.Join(d.Path, schema.PathSeparator) + "`)"
	}
	return line
}

func versionTable(res *engine.Result) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Version", "Needs", "needs_amount", "Errors", "Warnings"})
	for _, v := range res.Versions {
		declared := v.Declared
		if declared == "" {
			declared = "-"
		}
		t.AppendRow(table.Row{v.Key, v.Needs, declared, v.Errors, v.Warnings})
	}
	return t
}

func renderStatus(r *output.Renderer, res *engine.Result) {
	switch res.Verdict {
	case core.VerdictPass:
		r.StatusLine(msgPassed, "success", "")
	case core.VerdictPassWithWarnings:
		detail := ""
		if res.Failed {
			detail = "(failing: strict mode)"
		}
		r.StatusLine(msgPassWarnings, "warning", detail)
	default:
		r.StatusLine(msgFailed, "error", "")
	}
}

// renderSummary prints a one-line tally when several documents ran.
func renderSummary(r *output.Renderer, results []*engine.Result) {
	if len(results) < 2 {
		return
	}
	failed := 0
	for _, res := range results {
		if res.Failed {
			failed++
		}
	}
	msg := fmt.Sprintf("%d documents validated, %d failed", len(results), failed)
	if failed > 0 {
		r.StatusLine(msg, "error", "")
		return
	}
	r.StatusLine(msg, "success", "")
}
