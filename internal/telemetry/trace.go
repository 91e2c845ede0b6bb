package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/felixgeelhaar/smartplan/internal/errors"
)

const instrumentation = "github.com/felixgeelhaar/smartplan"

func tracer() trace.Tracer {
	return GetTracerProvider().Tracer(instrumentation)
}

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "schedule")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "command."+cmdName,
		trace.WithAttributes(
			attribute.String("command", cmdName),
			attribute.String("component", "cli"),
		))
}

// StartRequestSpan creates a server span for an HTTP request.
func StartRequestSpan(ctx context.Context, method, route string) (context.Context, trace.Span) {
	return tracer().Start(ctx, method+" "+route,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("http.route", route),
			attribute.String("component", "api"),
		))
}

// StartPlanSpan creates a span covering one plan creation.
func StartPlanSpan(ctx context.Context, source string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "plan.create",
		trace.WithAttributes(
			attribute.String("plan.task_source", source),
			attribute.String("component", "planner"),
		))
}

// StartScheduleSpan creates a span for ordering and dating a task set.
func StartScheduleSpan(ctx context.Context, taskCount int) (context.Context, trace.Span) {
	return tracer().Start(ctx, "plan.schedule",
		trace.WithAttributes(
			attribute.Int("plan.task_count", taskCount),
			attribute.String("component", "scheduler"),
		))
}

// StartGeneratorSpan creates a span for a task generator call.
func StartGeneratorSpan(ctx context.Context, generator string) (context.Context, trace.Span) {
	return tracer().Start(ctx, "generator.generate",
		trace.WithAttributes(
			attribute.String("generator", generator),
			attribute.String("component", "generator"),
		))
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status. Coded
// errors also set the error.code attribute.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(
			attribute.String("error.code", string(code)),
			attribute.String("error.category", code.Category()),
		)
	}
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(attribute.Int64(name+"_ms", duration.Milliseconds()))
}
