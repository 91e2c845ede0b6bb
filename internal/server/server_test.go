package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/smartplan/internal/api"
	"github.com/felixgeelhaar/smartplan/internal/config"
	"github.com/felixgeelhaar/smartplan/internal/generator"
	"github.com/felixgeelhaar/smartplan/internal/health"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/plan"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

func newTestServer(t *testing.T, cfg config.ServerConfig) (*Server, *health.ProbeManager) {
	t.Helper()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	logger := log.Discard()

	svc := planner.NewService(generator.NewStatic(), plan.DefaultPreferences(),
		planner.WithMetrics(m), planner.WithLogger(logger))
	doc, err := api.LoadSpec(context.Background())
	require.NoError(t, err)
	plans, err := api.NewHandler(svc, doc, api.WithHandlerLogger(logger))
	require.NoError(t, err)

	pm := health.NewProbeManager("1.0.0")
	pm.AddChecker(health.NewEngineChecker())

	return NewServer(pm, cfg, Deps{Plans: plans, Metrics: m, Gatherer: reg, Logger: logger}), pm
}

func serve(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServerDefaults(t *testing.T) {
	s, _ := newTestServer(t, config.ServerConfig{Address: "127.0.0.1", Port: 9090})
	defaults := config.Default().Server

	assert.Equal(t, "127.0.0.1:9090", s.Addr())
	assert.Equal(t, defaults.ShutdownTimeout, s.shutdownTimeout)
	assert.Equal(t, defaults.ReadTimeout, s.httpServer.ReadTimeout)
	assert.Equal(t, defaults.WriteTimeout, s.httpServer.WriteTimeout)
	assert.Equal(t, defaults.IdleTimeout, s.httpServer.IdleTimeout)
}

func TestNewServerCustomTimeouts(t *testing.T) {
	s, _ := newTestServer(t, config.ServerConfig{
		ShutdownTimeout: 5 * time.Second,
		ReadTimeout:     2 * time.Second,
	})

	assert.Equal(t, 5*time.Second, s.shutdownTimeout)
	assert.Equal(t, 2*time.Second, s.httpServer.ReadTimeout)
}

func TestPlanEndpoint(t *testing.T) {
	s, _ := newTestServer(t, config.ServerConfig{})

	rec := serve(t, s, http.MethodPost, api.PlanPath, `{"goal":"Launch a landing page"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(api.RequestIDHeader))

	var resp planner.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Tasks, 5)

	rec = serve(t, s, http.MethodPost, api.PlanPath,
		`{"goal":"x","tasks":[{"id":"a","title":"A","dependencies":["a"],"est_hours":1}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestSpecAndMetricsEndpoints(t *testing.T) {
	s, _ := newTestServer(t, config.ServerConfig{})
	serve(t, s, http.MethodPost, api.PlanPath, `{"goal":"x"}`)

	rec := serve(t, s, http.MethodGet, SpecPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "openapi: 3.0.3")

	rec = serve(t, s, http.MethodGet, MetricsPath, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "smartplan_http_requests_total")
	assert.Contains(t, rec.Body.String(), "smartplan_plan_requests_total")
}

func TestHealthEndpoints(t *testing.T) {
	s, pm := newTestServer(t, config.ServerConfig{})

	tests := []struct {
		name       string
		path       string
		setup      func()
		wantStatus int
		wantHealth health.Status
	}{
		{"liveness", LivenessPath, nil, http.StatusOK, health.StatusHealthy},
		{"startup before init", StartupPath, nil, http.StatusServiceUnavailable, health.StatusUnhealthy},
		{"readiness runs checks", ReadinessPath, nil, http.StatusOK, health.StatusHealthy},
		{"healthz aliases readiness", HealthzPath, nil, http.StatusOK, health.StatusHealthy},
		{"startup after init", StartupPath, pm.MarkInitialized, http.StatusOK, health.StatusHealthy},
		{"readiness during shutdown", ReadinessPath, pm.MarkShutdown, http.StatusServiceUnavailable, health.StatusUnhealthy},
		{"liveness during shutdown", LivenessPath, nil, http.StatusOK, health.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := serve(t, s, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var result health.ProbeResult
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
			assert.Equal(t, tt.wantHealth, result.Status)
		})
	}
}

func TestHealthEndpointMethodNotAllowed(t *testing.T) {
	s, _ := newTestServer(t, config.ServerConfig{})

	rec := serve(t, s, http.MethodPost, LivenessPath, "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestRunShutsDownOnCancel(t *testing.T) {
	s, pm := newTestServer(t, config.ServerConfig{ShutdownTimeout: 2 * time.Second})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, ln) }()

	url := fmt.Sprintf("http://%s%s", ln.Addr().String(), LivenessPath)
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	assert.True(t, pm.IsInitialized())
	assert.Equal(t, ln.Addr().String(), s.Addr())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, s.IsShuttingDown())
	assert.True(t, pm.IsShuttingDown())
}
