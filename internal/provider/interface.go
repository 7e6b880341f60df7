package provider

import (
	"context"

	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
)

// GenerationClient sends one prompt pair to a completion backend and returns
// the raw completion text. Implementations are chosen once per session and
// are interchangeable: swapping one never changes downstream behaviour.
type GenerationClient interface {
	// Generate performs exactly one request. Any non-2xx response, transport
	// failure, timeout or malformed envelope is returned as a service error.
	Generate(ctx context.Context, pair prompt.Pair, opts Options) (string, error)

	// Name identifies the backend in logs, spans and error messages
	Name() string
}
