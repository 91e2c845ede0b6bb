// Package cmd implements the smartplan command line.
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// rootState carries the per-invocation app out of the command tree so it
// can be closed even when a command fails.
type rootState struct {
	app *app
}

func (s *rootState) close() {
	if s.app != nil {
		s.app.close()
		s.app = nil
	}
}

// NewRootCmd builds the command tree. Each call returns a fresh tree, so
// tests can run commands without sharing flag state.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *rootState) {
	state := &rootState{}

	root := &cobra.Command{
		Use:   "smartplan",
		Short: "Dependency-aware task scheduler",
		Long: `smartplan turns a goal or a list of estimated tasks into a dated schedule.

Tasks are ordered so that every dependency comes first, then projected onto
calendar days from a daily work capacity. A dependency cycle or an unknown
dependency is reported instead of producing a partial schedule.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := setupApp(cmd)
			if err != nil {
				return err
			}
			state.app = a
			cmd.SetContext(withApp(cmd.Context(), a))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default ./smartplan.yaml when present)")
	flags.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	flags.String("log-format", "", "log format: text or json (overrides config)")
	flags.StringP("format", "f", "text", "output format: text, json, yaml")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(
		newServeCmd(),
		newPlanCmd(),
		newScheduleCmd(),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root, state
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx, which the binary cancels
// on SIGINT and SIGTERM.
func ExecuteContext(ctx context.Context) error {
	return execute(ctx, nil, nil, nil)
}

// execute runs the tree with explicit args and writers. Nil values keep
// cobra's defaults.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root, state := newRootCmd()
	defer state.close()

	if args != nil {
		root.SetArgs(args)
	}
	if stdout != nil {
		root.SetOut(stdout)
	}
	if stderr != nil {
		root.SetErr(stderr)
	}
	return root.ExecuteContext(ctx)
}
