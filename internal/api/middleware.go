package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/metrics"
	"github.com/felixgeelhaar/smartplan/internal/telemetry"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Instrument wraps next with a server span, a request id, metrics and an
// access log line. route is the low-cardinality label for metrics. m may be
// nil.
func Instrument(route string, m *metrics.Metrics, logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		ctx, span := telemetry.StartRequestSpan(r.Context(), r.Method, route)
		defer span.End()

		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r.WithContext(ctx))
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		elapsed := time.Since(started)
		span.SetAttributes(
			attribute.Int("http.response.status_code", rec.status),
			attribute.String("request.id", requestID),
		)
		if m != nil {
			m.RecordHTTP(route, r.Method, rec.status, elapsed)
		}
		logger.WithContext(ctx).InfoContext(ctx, "http request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"request_id", requestID,
			"duration", elapsed,
		)
	})
}
