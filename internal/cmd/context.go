package cmd

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

// CommandContext holds the persistent flags of one invocation.
type CommandContext struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string
	Format     string
	NoColor    bool
}

// NewCommandContext extracts command context from cobra.Command flags.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	logLevel, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return nil, err
	}

	logFormat, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return nil, err
	}

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return nil, err
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		ConfigPath: configPath,
		LogLevel:   logLevel,
		LogFormat:  logFormat,
		Format:     format,
		NoColor:    noColor,
	}, nil
}

// Formatter returns the output formatter selected by --format, writing to
// the command's stdout.
func (c *CommandContext) Formatter(cmd *cobra.Command) (ux.Formatter, error) {
	return ux.NewFormatter(c.Format, &ux.FormatterOptions{
		Writer:  cmd.OutOrStdout(),
		NoColor: c.NoColor,
	})
}

// TextOutput reports whether --format selects human-readable output.
func (c *CommandContext) TextOutput() bool {
	return c.Format == "" || strings.EqualFold(c.Format, "text")
}

// app is the state built once per invocation by setupApp.
type app struct {
	flags    *CommandContext
	cfg      *config.Config
	logger   *log.Logger
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	cleanup  func()
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
}

type appKey struct{}

func withApp(ctx context.Context, a *app) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// appFrom returns the state attached by setupApp.
func appFrom(cmd *cobra.Command) *app {
	if a, ok := cmd.Context().Value(appKey{}).(*app); ok {
		return a
	}
	return nil
}
