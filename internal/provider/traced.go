package provider

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/telemetry"
)

// tracedClient wraps a client with a span and call metrics per request
type tracedClient struct {
	next GenerationClient
}

// WithTelemetry wraps a client so every request is traced and counted
func WithTelemetry(client GenerationClient) GenerationClient {
	if _, ok := client.(*tracedClient); ok {
		return client
	}
	return &tracedClient{next: client}
}

func (c *tracedClient) Name() string { return c.next.Name() }

func (c *tracedClient) Generate(ctx context.Context, pair prompt.Pair, opts Options) (string, error) {
	operation := string(pair.Inputs.Purpose)
	if operation == "" {
		operation = string(prompt.PurposeGenerate)
	}

	ctx, span := telemetry.StartProviderSpan(ctx, c.next.Name(), operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("model", opts.Model),
		attribute.Int("max_tokens", opts.maxTokens()),
		attribute.Float64("temperature", opts.Temperature),
		attribute.Bool("json_mode", opts.JSONMode),
		attribute.String("prompt_fingerprint", pair.Fingerprint()),
	)

	start := time.Now()
	text, err := c.next.Generate(ctx, pair, opts)
	elapsed := time.Since(start)
	telemetry.RecordDuration(span, "generate", elapsed)

	if err != nil {
		code := "unknown"
		if se, ok := errors.As(err); ok {
			code = string(se.Code)
		}
		telemetry.RecordError(span, err)
		telemetry.RecordProviderCall(ctx, c.next.Name(), operation, "error", elapsed)
		telemetry.RecordProviderError(ctx, c.next.Name(), operation, code)
		return "", err
	}

	telemetry.RecordSuccess(span, attribute.Int("completion_chars", len(text)))
	telemetry.RecordProviderCall(ctx, c.next.Name(), operation, "success", elapsed)
	return text, nil
}
