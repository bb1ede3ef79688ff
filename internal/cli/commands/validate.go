package commands

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/needscheck/internal/engine"
	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// ErrValidationFailed is returned when at least one document failed. The
// report has already been printed, so callers exit 1 without a message.
var ErrValidationFailed = errors.New("validation failed")

// stdinSource names documents read from standard input.
const stdinSource = "<stdin>"

// ValidateOptions holds options for the validate command.
type ValidateOptions struct {
	Watch       bool   // Re-validate on file changes
	InputFormat string // Format of stdin input: json, yaml
}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate <path|glob>...",
		Short: "Validate needs exports",
		Long: `Validate sphinx-needs exports against the JSON Schema and the rule set.

Each document is checked against the schema first, then every enabled rule
runs over its versions and needs. The report lists all errors, then all
warnings, then a status line.

Documents ending in .yaml or .yml are read as YAML, everything else as JSON.
Use "-" to read a single document from standard input.

Exit status is 1 when any document has errors, or warnings under --strict.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Validate one export
  needscheck validate build/needs.json

  # Validate several exports, failing on warnings
  needscheck validate --strict "docs/**/needs.json"

  # Use a custom schema
  needscheck validate --schema schemas/needs.schema.json needs.json

  # Read YAML from stdin
  cat needs.yaml | needscheck validate --input-format yaml -

  # Re-validate whenever the file changes
  needscheck validate --watch needs.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args, opts)
		},
	}

	// These flags feed the config loader; see config.LoadConfig.
	cmd.Flags().String("schema", "", "JSON Schema file (default: bundled schema)")
	cmd.Flags().Bool("strict", false, "Treat warnings as failures")
	cmd.Flags().String("history", "", "Record runs in this SQLite database")
	cmd.Flags().StringSlice("script", nil, "Starlark rule files or directories")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to disable")
	cmd.Flags().Int("concurrency", 0, "Documents validated in parallel (default: GOMAXPROCS)")

	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-validate when inputs change")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "json", "Format of stdin input: json, yaml")

	_ = cmd.RegisterFlagCompletionFunc("input-format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"json", "yaml"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runValidate(cmd *cobra.Command, args []string, opts *ValidateOptions) error {
	readStdin := len(args) == 1 && args[0] == "-"
	if readStdin && opts.Watch {
		return fmt.Errorf("--watch cannot be used with stdin")
	}
	for _, a := range args {
		if a == "-" && !readStdin {
			return fmt.Errorf("\"-\" must be the only input")
		}
	}
	format, err := parseInputFormat(opts.InputFormat)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	eng := cmdCtx.Engine
	strict := cmdCtx.Cfg.Strict
	ctx := cmd.Context()

	if opts.Watch {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		cmdCtx.Logger.Info("watching inputs", slog.String("inputs", strings.Join(args, ", ")))
		return eng.Watch(ctx, args, strict, func(results []*engine.Result) {
			renderResults(cmdCtx.Renderer, results)
		})
	}

	var results []*engine.Result
	if readStdin {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		results = []*engine.Result{eng.Validate(ctx, engine.Input{
			Source: stdinSource,
			Data:   data,
			Format: format,
			Strict: strict,
		})}
	} else {
		results, err = eng.ValidateAll(ctx, args, strict)
		if err != nil {
			return err
		}
	}

	renderResults(cmdCtx.Renderer, results)
	if engine.Failed(results) {
		return ErrValidationFailed
	}
	return nil
}

func parseInputFormat(s string) (needs.Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return needs.FormatJSON, nil
	case "yaml", "yml":
		return needs.FormatYAML, nil
	default:
		return needs.FormatJSON, fmt.Errorf("invalid input format %q (want json or yaml)", s)
	}
}
