// Package health reports whether smartplan can serve plans.
//
// A Manager runs registered Checkers in parallel and folds their results
// into one Status. ProbeManager layers liveness, readiness and startup
// probes on top for the HTTP server:
//
//	pm := health.NewProbeManager(version.GetInfo().Version)
//	pm.AddChecker(health.NewEngineChecker())
//	pm.AddChecker(health.NewGeneratorChecker(gen))
//	pm.MarkInitialized()
package health

import (
	"context"
	"time"
)

// Checker verifies one capability. Check must honor the context deadline.
type Checker interface {
	// Name is lowercase with hyphens, e.g. "schedule-engine".
	Name() string
	Check(ctx context.Context) *Result
}

// Status is the outcome of a check.
type Status string

const (
	// StatusHealthy means fully operational.
	StatusHealthy Status = "healthy"

	// StatusDegraded means plans can still be served with reduced
	// functionality, e.g. a slow generator.
	StatusDegraded Status = "degraded"

	// StatusUnhealthy means plans cannot be served.
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) String() string {
	return string(s)
}

// severity orders statuses from best to worst.
func (s Status) severity() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	default:
		return 2
	}
}

// Result is the outcome of a single check.
type Result struct {
	Status  Status         `json:"status"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Latency time.Duration  `json:"latency_ns"`
}

// NewResult creates a result with an empty detail map.
func NewResult(status Status, message string) *Result {
	return &Result{
		Status:  status,
		Message: message,
		Details: make(map[string]any),
	}
}

// WithDetail adds a detail and returns r.
func (r *Result) WithDetail(key string, value any) *Result {
	r.Details[key] = value
	return r
}

// WithLatency sets the latency and returns r.
func (r *Result) WithLatency(latency time.Duration) *Result {
	r.Latency = latency
	return r
}

func Healthy(message string) *Result {
	return NewResult(StatusHealthy, message)
}

func Degraded(message string) *Result {
	return NewResult(StatusDegraded, message)
}

func Unhealthy(message string) *Result {
	return NewResult(StatusUnhealthy, message)
}
