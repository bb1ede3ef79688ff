package commands

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/needscheck/internal/cli/config"
	"github.com/leapstack-labs/needscheck/internal/cli/output"
	"github.com/leapstack-labs/needscheck/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int // Maximum runs listed
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded validation runs",
		Long: `Show validation runs recorded in the history database.

Runs are recorded when history.path (or --history) is set. Without a run
id, the most recent runs are listed, newest first. With a run id, the run
and all of its findings are shown.`,
		Example: `  # List the last 20 runs
  needscheck history

  # List more runs from a specific database
  needscheck history --history .needscheck/history.db --limit 100

  # Show the findings of one run
  needscheck history 3f6c1e9a-5a0b-4c39-9a35-0b7f3d2f8c11`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd, args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().String("history", "", "History database (default: "+config.DefaultHistory+")")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string, opts *HistoryOptions) error {
	cmdCtx := NewCommandContextWithoutEngine(cmd)
	path := cmdCtx.Cfg.HistoryPath()
	if path == "" {
		path = config.DefaultHistory
	}

	store, err := openStore(path, cmdCtx.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	r := cmdCtx.Renderer
	if len(args) > 0 {
		run, err := store.GetRun(cmd.Context(), args[0])
		if errors.Is(err, state.ErrRunNotFound) {
			return fmt.Errorf("run %q not found in %s", args[0], path)
		}
		if err != nil {
			return err
		}
		return renderRun(r, run)
	}

	runs, err := store.ListRuns(cmd.Context(), opts.Limit)
	if err != nil {
		return err
	}
	return renderRuns(r, runs)
}

func renderRuns(r *output.Renderer, runs []*state.Run) error {
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(map[string]any{"runs": runs, "count": len(runs)})
	}
	if len(runs) == 0 {
		r.Muted("No runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Run", "Started", "Source", "Verdict", "Strict", "Errors", "Warnings"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Source,
			string(run.Verdict),
			run.Strict,
			run.Errors,
			run.Warnings,
		})
	}

	if mode == output.ModeMarkdown {
		r.Println(output.FormatHeader(1, "Validation History"))
		r.Println("")
		r.Println(t.RenderMarkdown())
		return nil
	}
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.Render()
	r.Printf("(%d runs)\n", len(runs))
	return nil
}

func renderRun(r *output.Renderer, run *state.Run) error {
	mode := r.EffectiveMode()
	if mode == output.ModeJSON {
		return r.JSON(run)
	}

	r.Header(1, "Run "+run.ID)
	for _, kv := range [][2]string{
		{"Source", run.Source},
		{"Schema", run.Schema},
		{"Verdict", string(run.Verdict)},
		{"Strict", strconv.FormatBool(run.Strict)},
		{"Started", run.StartedAt.Local().Format(time.DateTime)},
		{"Duration", run.FinishedAt.Sub(run.StartedAt).String()},
	} {
		r.Println(output.FormatKeyValue(kv[0], kv[1]))
	}
	r.Println("")

	if len(run.Findings) == 0 {
		r.Muted("No findings")
		return nil
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Rule", "Severity", "Message", "Location"})
	for _, f := range run.Findings {
		loc := f.Path
		if loc == "" {
			loc = f.Need
		}
		t.AppendRow(table.Row{f.Seq + 1, f.RuleID, f.Severity.String(), f.Message, loc})
	}
	if mode == output.ModeMarkdown {
		r.Println(t.RenderMarkdown())
		return nil
	}
	t.SetOutputMirror(r.Writer())
	t.SetStyle(table.StyleLight)
	t.Render()
	return nil
}
