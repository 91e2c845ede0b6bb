package cmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/smartplan/internal/api"
	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/health"
	"github.com/felixgeelhaar/smartplan/internal/server"
	"github.com/felixgeelhaar/smartplan/internal/version"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Long: `Start the HTTP API.

Endpoints:
  POST /plan          - create a plan from a goal or a task list
  GET  /openapi.yaml  - the request and response schema
  GET  /metrics       - Prometheus metrics
  GET  /health/live   - liveness probe
  GET  /health/ready  - readiness probe (runs the scheduling self-test)
  GET  /health/startup
  GET  /healthz       - alias of /health/ready

The server drains in-flight requests on SIGTERM or SIGINT.

Example:
  smartplan serve --port 9090
  smartplan serve --config smartplan.yaml --log-format json`,
		Args: cobra.NoArgs,
		RunE: instrumented("serve", runServe),
	}

	defaults := config.Default().Server
	f := cmd.Flags()
	f.Int("port", defaults.Port, "port to listen on")
	f.String("address", defaults.Address, "address to bind to")
	f.Duration("shutdown-timeout", defaults.ShutdownTimeout, "maximum time to drain connections on shutdown")
	f.Duration("read-timeout", defaults.ReadTimeout, "maximum duration for reading a request")
	f.Duration("write-timeout", defaults.WriteTimeout, "maximum duration for writing a response")
	f.Duration("idle-timeout", defaults.IdleTimeout, "maximum keep-alive idle time")
	f.Int64("max-body-bytes", defaults.MaxBodyBytes, "maximum request body size")
	f.Duration("health-check-timeout", defaults.HealthCheckTimeout, "maximum time for each readiness check")
	return cmd
}

// serverConfig applies explicitly set flags on top of the config file.
func serverConfig(cmd *cobra.Command, cfg config.ServerConfig) config.ServerConfig {
	f := cmd.Flags()
	if f.Changed("port") {
		cfg.Port, _ = f.GetInt("port")
	}
	if f.Changed("address") {
		cfg.Address, _ = f.GetString("address")
	}
	if f.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout, _ = f.GetDuration("shutdown-timeout")
	}
	if f.Changed("read-timeout") {
		cfg.ReadTimeout, _ = f.GetDuration("read-timeout")
	}
	if f.Changed("write-timeout") {
		cfg.WriteTimeout, _ = f.GetDuration("write-timeout")
	}
	if f.Changed("idle-timeout") {
		cfg.IdleTimeout, _ = f.GetDuration("idle-timeout")
	}
	if f.Changed("max-body-bytes") {
		cfg.MaxBodyBytes, _ = f.GetInt64("max-body-bytes")
	}
	if f.Changed("health-check-timeout") {
		cfg.HealthCheckTimeout, _ = f.GetDuration("health-check-timeout")
	}
	return cfg
}

func runServe(cmd *cobra.Command, a *app, args []string) error {
	ctx := cmd.Context()
	srvCfg := serverConfig(cmd, a.cfg.Server)

	gen, err := resolveGenerator(a.cfg.Scheduling.Generator)
	if err != nil {
		return err
	}

	doc, err := api.LoadSpec(ctx)
	if err != nil {
		return err
	}
	plans, err := api.NewHandler(newPlanner(a, gen), doc,
		api.WithMaxBodyBytes(srvCfg.MaxBodyBytes),
		api.WithHandlerLogger(a.logger),
	)
	if err != nil {
		return err
	}

	pm := health.NewProbeManager(version.GetInfo().Version)
	pm.WithTimeout(srvCfg.HealthCheckTimeout)
	pm.AddChecker(health.NewEngineChecker())
	pm.AddChecker(health.NewGeneratorChecker(gen))
	a.logger.Debug("health checks registered", "checks", pm.CheckNames())

	srv := server.NewServer(pm, srvCfg, server.Deps{
		Plans:    plans,
		Metrics:  a.metrics,
		Gatherer: a.registry,
		Logger:   a.logger,
	})

	ln, err := net.Listen("tcp", srvCfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srvCfg.ListenAddr(), err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "smartplan %s listening on http://%s (generator %s)\n",
		version.GetInfo().Short(), ln.Addr(), gen.Name())

	return srv.Run(ctx, ln)
}
