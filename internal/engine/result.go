package engine

import (
	"strings"
	"time"

	"github.com/leapstack-labs/needscheck/internal/state"
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	"github.com/leapstack-labs/needscheck/pkg/needs"
	"github.com/leapstack-labs/needscheck/pkg/schema"
)

// Rule ids for findings raised by the pipeline itself.
const (
	RuleLoad           = "LD01" // document could not be read or parsed
	RuleSchema         = "SC01" // document violates the schema
	RuleSchemaUnusable = "SC02" // schema could not be loaded or is invalid
)

// Result is the outcome of validating one document.
type Result struct {
	RunID     string       `json:"run_id"`
	Source    string       `json:"source"`
	Schema    string       `json:"schema"`
	Strict    bool         `json:"strict"`
	Verdict   core.Verdict `json:"verdict"`
	Failed    bool         `json:"failed"`
	NeedCount int          `json:"need_count"`

	// Errors and Warnings keep insertion order and are never deduplicated.
	Errors   []lint.Diagnostic `json:"errors"`
	Warnings []lint.Diagnostic `json:"warnings"`

	Versions []VersionSummary `json:"versions,omitempty"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// VersionSummary counts the findings of one version.
type VersionSummary struct {
	Key      string `json:"key"`
	Needs    int    `json:"needs"`
	Declared string `json:"needs_amount,omitempty"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
}

func newResult(runID, source, schemaName string, strict bool) *Result {
	return &Result{
		RunID:     runID,
		Source:    source,
		Schema:    schemaName,
		Strict:    strict,
		Errors:    []lint.Diagnostic{},
		Warnings:  []lint.Diagnostic{},
		StartedAt: time.Now(),
	}
}

func (r *Result) add(d lint.Diagnostic) {
	if d.Severity == core.SeverityError {
		r.Errors = append(r.Errors, d)
	} else {
		r.Warnings = append(r.Warnings, d)
	}
}

func (r *Result) finish() {
	r.Verdict = core.Classify(len(r.Errors), len(r.Warnings))
	r.Failed = r.Verdict.Failed(r.Strict)
	r.Duration = time.Since(r.StartedAt)
}

// ExitCode is 1 when the run failed, taking strict mode into account.
func (r *Result) ExitCode() int {
	return r.Verdict.ExitCode(r.Strict)
}

// Findings returns errors followed by warnings, the report order.
func (r *Result) Findings() []lint.Diagnostic {
	out := make([]lint.Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	out = append(out, r.Errors...)
	return append(out, r.Warnings...)
}

// summarize fills the per-version table from the document and findings.
func (r *Result) summarize(doc *needs.Document) {
	r.NeedCount = doc.NeedCount()
	if len(doc.Versions) == 0 {
		return
	}
	index := make(map[string]int, len(doc.Versions))
	r.Versions = make([]VersionSummary, len(doc.Versions))
	for i, v := range doc.Versions {
		index[v.Key] = i
		r.Versions[i] = VersionSummary{Key: v.Key, Needs: len(v.Needs)}
		if v.NeedsAmount != nil {
			r.Versions[i].Declared = v.NeedsAmount.Text()
		}
	}
	for _, d := range r.Errors {
		if i, ok := index[d.Version]; ok && d.Version != "" {
			r.Versions[i].Errors++
		}
	}
	for _, d := range r.Warnings {
		if i, ok := index[d.Version]; ok && d.Version != "" {
			r.Versions[i].Warnings++
		}
	}
}

// Run converts the result into a history record.
func (r *Result) Run() *state.Run {
	run := &state.Run{
		ID:         r.RunID,
		Source:     r.Source,
		Schema:     r.Schema,
		Verdict:    r.Verdict,
		Strict:     r.Strict,
		Errors:     len(r.Errors),
		Warnings:   len(r.Warnings),
		StartedAt:  r.StartedAt,
		FinishedAt: r.StartedAt.Add(r.Duration),
	}
	for i, d := range r.Findings() {
		run.Findings = append(run.Findings, state.Finding{
			Seq:      i,
			RuleID:   d.RuleID,
			Severity: d.Severity,
			Message:  d.Message,
			Version:  d.Version,
			Need:     d.Need,
			Path:     strings.Join(d.Path, schema.PathSeparator),
		})
	}
	return run
}
