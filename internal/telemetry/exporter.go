package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
)

// circuitBreaker stops export attempts after repeated failures so a dead
// collector does not slow down plan requests.
type circuitBreaker struct {
	mu           sync.Mutex
	threshold    int
	resetTimeout time.Duration
	failures     int
	openedAt     time.Time
	state        breakerState
	now          func() time.Time
}

func newCircuitBreaker() *circuitBreaker {
	return &circuitBreaker{
		threshold:    5,
		resetTimeout: 30 * time.Second,
		now:          time.Now,
	}
}

// allow reports whether an export may be attempted. An open breaker lets a
// single probe through once resetTimeout has passed.
func (cb *circuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == breakerClosed {
		return true
	}
	return cb.now().Sub(cb.openedAt) > cb.resetTimeout
}

func (cb *circuitBreaker) success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = breakerClosed
}

func (cb *circuitBreaker) failure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	if cb.failures >= cb.threshold || cb.state == breakerOpen {
		cb.state = breakerOpen
		cb.openedAt = cb.now()
	}
}

// retryingExporter retries failed exports with exponential backoff behind
// a circuit breaker.
type retryingExporter struct {
	next    sdktrace.SpanExporter
	breaker *circuitBreaker

	attempts int
	initial  time.Duration
	max      time.Duration
}

func newRetryingExporter(next sdktrace.SpanExporter) *retryingExporter {
	return &retryingExporter{
		next:     next,
		breaker:  newCircuitBreaker(),
		attempts: 5,
		initial:  100 * time.Millisecond,
		max:      2 * time.Second,
	}
}

func (e *retryingExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	if !e.breaker.allow() {
		return fmt.Errorf("span export suspended after repeated failures")
	}

	wait := e.initial
	var lastErr error
	for attempt := 1; attempt <= e.attempts; attempt++ {
		if lastErr = e.next.ExportSpans(ctx, spans); lastErr == nil {
			e.breaker.success()
			return nil
		}
		if attempt == e.attempts {
			break
		}

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			e.breaker.failure()
			return ctx.Err()
		}
		wait = min(wait*3/2, e.max)
	}

	e.breaker.failure()
	return fmt.Errorf("export spans after %d attempts: %w", e.attempts, lastErr)
}

func (e *retryingExporter) Shutdown(ctx context.Context) error {
	return e.next.Shutdown(ctx)
}
