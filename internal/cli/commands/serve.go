package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/needscheck/internal/server"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve validation over HTTP",
		Long: `Start an HTTP server that validates documents on request.

Endpoints:
  POST /v1/validate   validate the request body (JSON, or YAML by Content-Type)
  GET  /v1/rules      list rules
  GET  /v1/events     stream finished validations (server-sent events)
  GET  /v1/runs       list recorded runs (when history is enabled)
  GET  /healthz       health check
  GET  /metrics       prometheus metrics

The server shuts down gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve on the default address
  needscheck serve

  # Serve on localhost only, recording every run
  needscheck serve --addr 127.0.0.1:9000 --history .needscheck/history.db`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	// These flags feed the config loader; see config.LoadConfig.
	cmd.Flags().String("addr", "", "Listen address (default: :8080)")
	cmd.Flags().String("schema", "", "JSON Schema file (default: bundled schema)")
	cmd.Flags().String("history", "", "Record runs in this SQLite database")
	cmd.Flags().StringSlice("script", nil, "Starlark rule files or directories")
	cmd.Flags().StringSlice("disable", nil, "Rule IDs to disable")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := server.Config{
		Engine: cmdCtx.Engine,
		Addr:   cmdCtx.Cfg.ServeAddr(),
		Logger: cmdCtx.Logger,
	}
	if cmdCtx.Store != nil {
		cfg.Store = cmdCtx.Store
	}
	srv := server.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmdCtx.Renderer.Success(fmt.Sprintf("Serving on %s (schema: %s)", cfg.Addr, cmdCtx.Engine.SchemaName()))
	return srv.Serve(ctx)
}
