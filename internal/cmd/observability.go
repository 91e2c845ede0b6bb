package cmd

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
	"github.com/felixgeelhaar/smartplan/internal/version"
)

// Environment overrides, applied between the config file and flags.
const (
	envLogLevel            = "SMARTPLAN_LOG_LEVEL"
	envLogFormat           = "SMARTPLAN_LOG_FORMAT"
	envTelemetry           = "SMARTPLAN_TELEMETRY"
	envTelemetryEndpoint   = "SMARTPLAN_TELEMETRY_ENDPOINT"
	envTelemetrySampleRate = "SMARTPLAN_TELEMETRY_SAMPLE_RATE"
	envEnvironment         = "SMARTPLAN_ENV"
)

// setupApp loads configuration and sets up logging, metrics and tracing
// for one invocation.
func setupApp(cmd *cobra.Command) (*app, error) {
	flags, err := NewCommandContext(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, err
	}

	logger, err := setupLogging(cmd, flags, cfg)
	if err != nil {
		return nil, err
	}

	registry, m := metrics.NewRegistry()
	telemetryCleanup := setupTelemetry(cmd.Context(), cfg, logger)

	return &app{
		flags:    flags,
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		registry: registry,
		cleanup:  telemetryCleanup,
	}, nil
}

func setupLogging(cmd *cobra.Command, flags *CommandContext, cfg *config.Config) (*log.Logger, error) {
	level := firstNonEmpty(flags.LogLevel, os.Getenv(envLogLevel), cfg.Logging.Level)
	format := firstNonEmpty(flags.LogFormat, os.Getenv(envLogFormat), cfg.Logging.Format)

	logCfg, err := log.FromStrings(level, format)
	if err != nil {
		return nil, errors.NewConfigInvalidError(err.Error())
	}
	logCfg.Output = cmd.ErrOrStderr()
	logCfg.ServiceVersion = version.GetInfo().Version

	logger := log.New(logCfg)
	log.SetDefaultLogger(logger)
	return logger, nil
}

// setupTelemetry starts the tracer provider. Failures are logged and
// tracing stays off; they never fail the command.
func setupTelemetry(ctx context.Context, cfg *config.Config, logger *log.Logger) func() {
	telemCfg := telemetryConfig(cfg)
	if !telemCfg.Enabled {
		return func() {}
	}

	shutdown, err := telemetry.InitProvider(ctx, telemCfg)
	if err != nil {
		logger.Warn("failed to initialize telemetry", "error", err)
		return func() {}
	}

	logger.Debug("telemetry enabled",
		"endpoint", telemCfg.Endpoint,
		"sample_rate", telemCfg.SampleRate,
	)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to flush telemetry", "error", err)
		}
	}
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	t := cfg.Telemetry
	t.ServiceName = "smartplan"
	t.ServiceVersion = version.GetInfo().Version

	if val := strings.ToLower(os.Getenv(envTelemetry)); val != "" {
		t.Enabled = val == "on" || val == "true" || val == "1" || val == "enabled"
	}
	if env := os.Getenv(envTelemetryEndpoint); env != "" {
		t.Endpoint = env
	}
	if env := os.Getenv(envTelemetrySampleRate); env != "" {
		if v, err := strconv.ParseFloat(env, 64); err == nil {
			t.SampleRate = clampSampleRate(v)
		}
	}
	if env := os.Getenv(envEnvironment); env != "" {
		t.Environment = env
	}
	return t
}

func clampSampleRate(value float64) float64 {
	switch {
	case value <= 0:
		return 0.0
	case value >= 1:
		return 1.0
	default:
		return value
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// instrumented wraps a RunE with a command span, metrics and error
// counting.
func instrumented(name string, run func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if a == nil {
			var err error
			if a, err = setupApp(cmd); err != nil {
				return err
			}
			defer a.close()
		}

		ctx, span := telemetry.StartCommandSpan(cmd.Context(), name)
		defer span.End()
		cmd.SetContext(ctx)

		start := time.Now()
		err := run(cmd, a, args)
		a.metrics.RecordCommand(name, time.Since(start), err)

		if err != nil {
			telemetry.RecordError(span, err)
			a.metrics.RecordError("cli", err)
			return err
		}
		telemetry.RecordSuccess(span)
		return nil
	}
}
