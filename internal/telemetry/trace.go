package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartCommandSpan creates a span for a CLI command execution.
//
// Usage:
//
//	ctx, span := telemetry.StartCommandSpan(ctx, "generate")
//	defer span.End()
func StartCommandSpan(ctx context.Context, cmdName string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("commands")
	ctx, span := tracer.Start(ctx, "command."+cmdName)

	span.SetAttributes(
		attribute.String("command", cmdName),
		attribute.String("component", "cli"),
	)

	return ctx, span
}

// StartProviderSpan creates a span for a completion service call.
//
// Usage:
//
//	ctx, span := telemetry.StartProviderSpan(ctx, "openai", "generate")
//	defer span.End()
//
//	span.SetAttributes(
//	    attribute.String("model", "gpt-4.1-2025-04-14"),
//	    attribute.Int("max_tokens", 2000),
//	)
func StartProviderSpan(ctx context.Context, providerName, operation string) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("providers")
	ctx, span := tracer.Start(ctx, "provider."+operation)

	span.SetAttributes(
		attribute.String("provider", providerName),
		attribute.String("operation", operation),
		attribute.String("component", "provider"),
	)

	return ctx, span
}

// StartSessionSpan creates a span for one step of a generation session
// (generate, check or repair).
func StartSessionSpan(ctx context.Context, step, sessionID string, cycle int) (context.Context, trace.Span) {
	tracer := GetTracerProvider().Tracer("session")
	ctx, span := tracer.Start(ctx, "session."+step)

	span.SetAttributes(
		attribute.String("step", step),
		attribute.String("session_id", sessionID),
		attribute.Int("cycle", cycle),
		attribute.String("component", "session"),
	)

	return ctx, span
}

// RecordSuccess marks a span as successful with optional result attributes.
func RecordSuccess(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
	span.SetStatus(codes.Ok, "")
}

// RecordError records an error in a span and sets error status.
// This should be called when an operation fails.
//
// Usage:
//
//	if err != nil {
//	    telemetry.RecordError(span, err)
//	    return err
//	}
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(
		attribute.Bool("error", true),
	)
}

// RecordDuration records the duration of an operation as a span attribute.
func RecordDuration(span trace.Span, name string, duration time.Duration) {
	span.SetAttributes(
		attribute.Int64(name+"_ms", duration.Milliseconds()),
	)
}
