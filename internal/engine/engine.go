// Package engine runs the validation pipeline: load the document, check it
// against the schema, run the rule engine and classify the findings.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	starctx "github.com/leapstack-labs/needscheck/internal/starlark"
	"github.com/leapstack-labs/needscheck/internal/state"
	"github.com/leapstack-labs/needscheck/pkg/core"
	"github.com/leapstack-labs/needscheck/pkg/lint"
	_ "github.com/leapstack-labs/needscheck/pkg/lint/rules" // register built-in rules
	"github.com/leapstack-labs/needscheck/pkg/needs"
	"github.com/leapstack-labs/needscheck/pkg/schema"
)

// Recorder persists finished runs. *state.Store implements it.
type Recorder interface {
	RecordRun(ctx context.Context, run *state.Run) error
}

// Config holds engine configuration.
type Config struct {
	// SchemaPath overrides the bundled schema when set
	SchemaPath string
	// Lint controls rule selection, severities and options
	Lint *lint.Config
	// Scripts lists Starlark rule files or directories
	Scripts []string
	// Concurrency bounds how many documents ValidateAll checks at once
	Concurrency int
	// Recorder stores every run (optional)
	Recorder Recorder
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine validates needs documents. It is safe for concurrent use: the
// compiled schema and the rules are shared read-only between runs.
type Engine struct {
	checker     *schema.Checker
	schemaName  string
	schemaErr   error
	analyzer    *lint.Analyzer
	scripts     []*starctx.ScriptRule
	concurrency int
	recorder    Recorder
	logger      *slog.Logger
}

// Input is one document to validate.
type Input struct {
	Source string
	Data   []byte
	Format needs.Format
	Strict bool
}

// New creates an engine. A schema that cannot be loaded does not fail
// New: every run then reports it as a single fatal finding. Broken
// script rules do fail New.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		concurrency: cfg.Concurrency,
		recorder:    cfg.Recorder,
		logger:      logger,
		schemaName:  schema.DefaultName,
	}
	if e.concurrency <= 0 {
		e.concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.SchemaPath != "" {
		e.schemaName = cfg.SchemaPath
	}

	checker, err := schema.Load(cfg.SchemaPath)
	if err != nil {
		var loadErr *schema.LoadError
		var invalidErr *schema.InvalidSchemaError
		if !errors.As(err, &loadErr) && !errors.As(err, &invalidErr) {
			return nil, fmt.Errorf("failed to load schema: %w", err)
		}
		logger.Warn("schema unusable", slog.String("schema", e.schemaName), slog.String("error", err.Error()))
		e.schemaErr = err
	} else {
		e.checker = checker
		e.schemaName = checker.Name()
	}

	if len(cfg.Scripts) > 0 {
		pool := starctx.NewThreadPool(e.concurrency, logger)
		scripts, err := starctx.NewLoader(pool).Load(cfg.Scripts)
		if err != nil {
			return nil, fmt.Errorf("failed to load script rules: %w", err)
		}
		e.scripts = scripts
		logger.Debug("script rules loaded", slog.Int("count", len(scripts)))
	}

	e.analyzer = lint.NewAnalyzer(cfg.Lint, starctx.Rules(e.scripts)...)
	return e, nil
}

// SchemaName names the schema in reports.
func (e *Engine) SchemaName() string { return e.schemaName }

// SchemaError returns why the schema is unusable, or nil.
func (e *Engine) SchemaError() error { return e.schemaErr }

// Rules returns the enabled rules, built-in and scripted, in run order.
func (e *Engine) Rules() []lint.Rule { return e.analyzer.Rules() }

// RuleInfo returns documentation for every rule the engine knows,
// including disabled ones.
func (e *Engine) RuleInfo() []core.RuleInfo {
	infos := lint.AllRuleInfo()
	for _, s := range e.scripts {
		info := lint.GetRuleInfo(s)
		info.Scope = starctx.GroupScript
		infos = append(infos, info)
	}
	return infos
}

// Validate runs the pipeline over one document. It never fails; every
// problem is a finding in the result.
func (e *Engine) Validate(ctx context.Context, in Input) *Result {
	res := newResult(state.NewRunID(), in.Source, e.schemaName, in.Strict)
	logger := e.logger.With(slog.String("source", in.Source), slog.String("run_id", res.RunID))

	e.run(res, in, logger)
	res.finish()

	logger.Debug("validation finished",
		slog.String("verdict", string(res.Verdict)),
		slog.Int("errors", len(res.Errors)),
		slog.Int("warnings", len(res.Warnings)),
		slog.Duration("duration", res.Duration))

	e.record(ctx, res, logger)
	return res
}

func (e *Engine) run(res *Result, in Input, logger *slog.Logger) {
	if e.schemaErr != nil {
		res.add(lint.Diagnostic{RuleID: RuleSchemaUnusable, Severity: core.SeverityError, Message: e.schemaErr.Error()})
		return
	}

	doc, err := needs.Parse(in.Data, in.Format)
	if err != nil {
		res.add(lint.Diagnostic{RuleID: RuleLoad, Severity: core.SeverityError, Message: parseMessage(err)})
		return
	}
	doc.Source = in.Source
	logger.Debug("document loaded", slog.Int("versions", len(doc.Versions)), slog.Int("needs", doc.NeedCount()))

	// the rule engine tolerates any shape, so it runs even after a violation
	if v := e.checker.Check(doc.Root); v != nil {
		res.add(lint.Diagnostic{
			RuleID:   RuleSchema,
			Severity: core.SeverityError,
			Message:  v.Error(),
			Path:     v.Path,
		})
	}

	for _, d := range e.analyzer.Analyze(doc) {
		res.add(d)
	}
	res.summarize(doc)
}

func (e *Engine) record(ctx context.Context, res *Result, logger *slog.Logger) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordRun(ctx, res.Run()); err != nil {
		logger.Warn("failed to record run", slog.String("error", err.Error()))
	}
}

// ValidateFile reads and validates the document at path. The format
// follows the extension.
func (e *Engine) ValidateFile(ctx context.Context, path string, strict bool) *Result {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is user input by design
	if err != nil {
		res := newResult(state.NewRunID(), path, e.schemaName, strict)
		if e.schemaErr != nil {
			res.add(lint.Diagnostic{RuleID: RuleSchemaUnusable, Severity: core.SeverityError, Message: e.schemaErr.Error()})
		} else {
			res.add(lint.Diagnostic{RuleID: RuleLoad, Severity: core.SeverityError, Message: readMessage(path, err)})
		}
		res.finish()
		e.record(ctx, res, e.logger.With(slog.String("source", path)))
		return res
	}
	return e.Validate(ctx, Input{Source: path, Data: data, Format: needs.FormatForPath(path), Strict: strict})
}

// ValidateAll expands patterns and validates every file concurrently.
// Results come back in input order.
func (e *Engine) ValidateAll(ctx context.Context, patterns []string, strict bool) ([]*Result, error) {
	paths, err := ExpandInputs(patterns)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.ValidateFile(gctx, p, strict)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func readMessage(path string, err error) string {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Sprintf("File not found: %s", path)
	}
	return fmt.Sprintf("Failed to read %s: %v", path, err)
}

func parseMessage(err error) string {
	var pe *needs.ParseError
	if errors.As(err, &pe) {
		if pe.Format == needs.FormatYAML {
			return fmt.Sprintf("Invalid YAML: %v", pe.Err)
		}
		return fmt.Sprintf("Invalid JSON: %v", pe.Err)
	}
	return err.Error()
}

// Failed reports whether any result failed.
func Failed(results []*Result) bool {
	for _, r := range results {
		if r.Failed {
			return true
		}
	}
	return false
}
