// Package server hosts the smartplan HTTP API.
//
// Besides POST /plan it serves the OpenAPI document, Prometheus metrics and
// Kubernetes-style health probes, and drains in-flight requests on
// shutdown.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/felixgeelhaar/smartplan/internal/api"
	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/health"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
)

// Routes served besides the plan endpoint.
const (
	LivenessPath  = "/health/live"
	ReadinessPath = "/health/ready"
	StartupPath   = "/health/startup"
	HealthzPath   = "/healthz"
	MetricsPath   = "/metrics"
	SpecPath      = "/openapi.yaml"
)

// Deps are the handlers and instrumentation a Server mounts. Plans is
// required; the rest are optional.
type Deps struct {
	Plans    http.Handler
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Logger   *log.Logger
}

// Server is the smartplan HTTP server.
type Server struct {
	httpServer      *http.Server
	probeManager    *health.ProbeManager
	logger          *log.Logger
	inShutdown      atomic.Bool
	shutdownTimeout time.Duration
	addr            atomic.Value
}

// NewServer builds the server. Zero timeouts in cfg fall back to the
// configuration defaults.
func NewServer(probeManager *health.ProbeManager, cfg config.ServerConfig, deps Deps) *Server {
	defaults := config.Default().Server
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = defaults.WriteTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}

	logger := deps.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}

	s := &Server{
		probeManager:    probeManager,
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	mux := http.NewServeMux()
	mux.Handle(api.PlanPath, api.Instrument(api.PlanPath, deps.Metrics, logger, deps.Plans))
	mux.Handle(SpecPath, api.SpecHandler())

	mux.HandleFunc(LivenessPath, s.probe(probeManager.CheckLiveness, http.StatusOK))
	mux.HandleFunc(ReadinessPath, s.probe(probeManager.CheckReadiness, http.StatusServiceUnavailable))
	mux.HandleFunc(StartupPath, s.probe(probeManager.CheckStartup, http.StatusServiceUnavailable))
	mux.HandleFunc(HealthzPath, s.probe(probeManager.CheckReadiness, http.StatusServiceUnavailable))

	if deps.Gatherer != nil {
		mux.Handle(MetricsPath, metrics.HandlerFor(deps.Gatherer))
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           mux,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	return s
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound address once the server is listening, otherwise
// the configured one.
func (s *Server) Addr() string {
	if addr, ok := s.addr.Load().(string); ok {
		return addr
	}
	return s.httpServer.Addr
}

// Start listens on the configured address and serves until Shutdown.
// It returns http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.addr.Store(ln.Addr().String())
	s.probeManager.MarkInitialized()
	s.logger.Info("server listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Run serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	if err := s.Shutdown(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown fails readiness, stops keep-alives and waits up to the
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.inShutdown.Store(true)
	s.probeManager.MarkShutdown()
	s.httpServer.SetKeepAlivesEnabled(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}

// IsShuttingDown reports whether Shutdown has been called.
func (s *Server) IsShuttingDown() bool {
	return s.inShutdown.Load()
}

// probe adapts a probe check to an HTTP handler. Unhealthy results are
// written with unhealthyStatus.
func (s *Server) probe(check func(context.Context) *health.ProbeResult, unhealthyStatus int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		result := check(r.Context())
		status := http.StatusOK
		if result.Status == health.StatusUnhealthy {
			status = unhealthyStatus
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(result); err != nil {
			s.logger.WithError(err).Warn("failed to encode probe response")
		}
	}
}
