package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

// Metrics holds all Prometheus metrics for smartplan
type Metrics struct {
	// Command execution metrics
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Plan creation metrics
	PlanRequests   *prometheus.CounterVec
	PlanDuration   *prometheus.HistogramVec
	PlanTaskCount  prometheus.Histogram
	PlanSpanDays   prometheus.Histogram
	DeadlineMisses prometheus.Counter

	// Task generation metrics
	GeneratorCalls   *prometheus.CounterVec
	GeneratorLatency *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		PlanRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_plan_requests_total",
				Help: "Total number of plan requests by task source and outcome",
			},
			[]string{"source", "outcome"},
		),
		PlanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_duration_seconds",
				Help:    "Time to create a plan in seconds, generation included",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
			[]string{"source"},
		),
		PlanTaskCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_tasks",
				Help:    "Number of tasks in created plans",
				Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		PlanSpanDays: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "smartplan_plan_span_days",
				Help:    "Calendar days from plan start to plan end",
				Buckets: []float64{1, 3, 7, 14, 30, 60, 90, 180, 365},
			},
		),
		DeadlineMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "smartplan_plan_deadline_misses_total",
				Help: "Total number of plans that end after their deadline",
			},
		),

		GeneratorCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_generator_calls_total",
				Help: "Total number of task generator calls",
			},
			[]string{"generator", "success"},
		),
		GeneratorLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_generator_latency_seconds",
				Help:    "Task generator latency in seconds",
				Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"generator"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "smartplan_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "smartplan_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// RecordPlan records a finished plan request. taskCount and spanDays are
// only observed for successful requests.
func (m *Metrics) RecordPlan(source string, d time.Duration, taskCount, spanDays int, err error) {
	outcome := "success"
	if err != nil {
		outcome = outcomeOf(err)
	}
	m.PlanRequests.WithLabelValues(source, outcome).Inc()
	m.PlanDuration.WithLabelValues(source).Observe(d.Seconds())
	if err == nil {
		m.PlanTaskCount.Observe(float64(taskCount))
		m.PlanSpanDays.Observe(float64(spanDays))
	}
}

// RecordGenerator records one generator call.
func (m *Metrics) RecordGenerator(name string, d time.Duration, err error) {
	m.GeneratorCalls.WithLabelValues(name, strconv.FormatBool(err == nil)).Inc()
	m.GeneratorLatency.WithLabelValues(name).Observe(d.Seconds())
}

// RecordHTTP records one served HTTP request.
func (m *Metrics) RecordHTTP(route, method string, status int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// RecordCommand records one CLI command execution.
func (m *Metrics) RecordCommand(command string, d time.Duration, err error) {
	m.CommandExecutions.WithLabelValues(command, strconv.FormatBool(err == nil)).Inc()
	m.CommandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// RecordError counts err under its error code. Errors without a code are
// counted as "unknown".
func (m *Metrics) RecordError(component string, err error) {
	if err == nil {
		return
	}
	code := string(errors.CodeOf(err))
	if code == "" {
		code = "unknown"
	}
	m.Errors.WithLabelValues(code, component).Inc()
}

// outcomeOf buckets an error into a low-cardinality label value.
func outcomeOf(err error) string {
	switch {
	case errors.IsStructural(err):
		return "structural_error"
	case errors.IsValidation(err):
		return "validation_error"
	case errors.HasCode(err, errors.ErrCodeGenerationFailed):
		return "generation_error"
	default:
		return "error"
	}
}
