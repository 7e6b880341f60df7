package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Options are the per-request generation parameters
type Options struct {
	// Model overrides the client's default model when set
	Model string

	// Temperature controls randomness (0.0 = deterministic)
	Temperature float64

	// MaxTokens limits the completion length. Zero uses DefaultMaxTokens.
	MaxTokens int

	// JSONMode asks the backend for a JSON object reply where supported
	JSONMode bool
}

// Backend names a completion backend
type Backend string

const (
	// BackendAuto picks the first live backend with a key, else offline
	BackendAuto      Backend = "auto"
	BackendOpenAI    Backend = "openai"
	BackendAnthropic Backend = "anthropic"
	BackendGemini    Backend = "gemini"
	BackendOffline   Backend = "offline"
)

// Backends lists every selectable backend
var Backends = []Backend{BackendAuto, BackendOpenAI, BackendAnthropic, BackendGemini, BackendOffline}

// Default request parameters
const (
	DefaultOpenAIModel    = "gpt-4.1-2025-04-14"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultMaxTokens      = 2000
	DefaultTimeout        = 120 * time.Second
)

// ParseBackend validates a backend name; empty means auto
func ParseBackend(s string) (Backend, error) {
	b := Backend(strings.ToLower(strings.TrimSpace(s)))
	if b == "" {
		return BackendAuto, nil
	}
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}

	names := make([]string, len(Backends))
	for i, known := range Backends {
		names[i] = string(known)
	}
	return "", errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown backend: %q", s)).
		WithSuggestion(fmt.Sprintf("Use one of: %s", strings.Join(names, ", ")))
}

func (o Options) maxTokens() int {
	if o.MaxTokens > 0 {
		return o.MaxTokens
	}
	return DefaultMaxTokens
}

func (o Options) model(fallback string) string {
	if o.Model != "" {
		return o.Model
	}
	return fallback
}
