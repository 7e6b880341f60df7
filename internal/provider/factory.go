package provider

import (
	"context"
	"net/http"

	"github.com/felixgeelhaar/scriptsmith/internal/dialect"
)

// New builds the client for the resolved backend. The choice is made once;
// switching backends later means building a new client.
func New(ctx context.Context, settings Settings, reg *dialect.Registry) (GenerationClient, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return NewFor(ctx, settings.Resolve(), settings, reg)
}

// NewFor builds the client for an explicit backend, ignoring settings.Backend
func NewFor(ctx context.Context, backend Backend, settings Settings, reg *dialect.Registry) (GenerationClient, error) {
	httpClient := &http.Client{Timeout: settings.timeout()}

	var (
		client GenerationClient
		err    error
	)
	switch backend {
	case BackendOpenAI:
		client, err = NewOpenAIClient(settings.OpenAI, httpClient)
	case BackendAnthropic:
		client, err = NewAnthropicClient(settings.Anthropic, httpClient)
	case BackendGemini:
		client, err = NewGeminiClient(ctx, settings.Gemini, httpClient)
	case BackendOffline:
		client = NewOfflineClient(reg)
	case BackendAuto, "":
		settings.Backend = BackendAuto
		return NewFor(ctx, settings.Resolve(), settings, reg)
	default:
		_, err = ParseBackend(string(backend))
	}
	if err != nil {
		return nil, err
	}

	return WithTelemetry(client), nil
}
