package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/needscheck/internal/cli/config"
	"github.com/leapstack-labs/needscheck/internal/testutil"
)

// executeCommand runs cmd under a root that loads configuration the way
// the real root command does, and returns stdout and stderr.
func executeCommand(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)

	root := &cobra.Command{
		Use:           "needscheck",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, _ []string) error {
			cfgFile, _ := c.Flags().GetString("config")
			if _, err := config.LoadConfig(cfgFile, c.Flags()); err != nil {
				return err
			}
			c.SetContext(context.WithValue(c.Context(), config.LoggerKey(), testutil.NewTestLogger(t)))
			return nil
		},
	}
	root.PersistentFlags().String("config", "", "config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	root.PersistentFlags().StringP("output", "o", "", "output format")
	root.AddCommand(cmd)

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(append([]string{cmd.Name()}, args...))

	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	assert.Equal(t, "validate <path|glob>...", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	// Verify flags exist
	flags := []string{"schema", "strict", "history", "script", "disable", "concurrency", "watch", "input-format"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.Contains(t, cmd.Long, "/v1/validate")

	flags := []string{"addr", "schema", "history", "script", "disable"}
	for _, flag := range flags {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewHistoryCommand(t *testing.T) {
	cmd := NewHistoryCommand()

	assert.Equal(t, "history [run-id]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")

	for _, flag := range []string{"limit", "history"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestGetConfig_Fallback(t *testing.T) {
	config.ResetConfig()
	t.Setenv("NEEDSCHECK_OUTPUT", "json")

	cfg := getConfig()
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Empty(t, cfg.HistoryPath())
}
