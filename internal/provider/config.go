package provider

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

// Settings selects and configures the completion backend
type Settings struct {
	Backend   Backend         `yaml:"backend"`
	Timeout   time.Duration   `yaml:"timeout,omitempty"`
	MaxTokens int             `yaml:"max_tokens,omitempty"`
	OpenAI    ServiceSettings `yaml:"openai,omitempty"`
	Anthropic ServiceSettings `yaml:"anthropic,omitempty"`
	Gemini    ServiceSettings `yaml:"gemini,omitempty"`
}

// ServiceSettings configures one live completion service
type ServiceSettings struct {
	APIKey  string `yaml:"api_key,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
	Model   string `yaml:"model,omitempty"`
}

// DefaultSettings returns settings that resolve to the first backend with a key
func DefaultSettings() Settings {
	return Settings{
		Backend:   BackendAuto,
		Timeout:   DefaultTimeout,
		MaxTokens: DefaultMaxTokens,
	}
}

// Validate checks the settings without touching the network
func (s Settings) Validate() error {
	if _, err := ParseBackend(string(s.Backend)); err != nil {
		return err
	}
	if s.Timeout < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "provider timeout must be non-negative")
	}
	if s.MaxTokens < 0 {
		return errors.New(errors.ErrCodeConfigInvalid, "max_tokens must be non-negative")
	}

	switch s.Backend {
	case BackendOpenAI:
		return requireKey(BackendOpenAI, s.OpenAI)
	case BackendAnthropic:
		return requireKey(BackendAnthropic, s.Anthropic)
	case BackendGemini:
		return requireKey(BackendGemini, s.Gemini)
	}
	return nil
}

// Resolve turns auto into a concrete backend. The decision is made once.
func (s Settings) Resolve() Backend {
	backend, err := ParseBackend(string(s.Backend))
	if err != nil || backend != BackendAuto {
		return backend
	}

	switch {
	case s.OpenAI.APIKey != "":
		return BackendOpenAI
	case s.Anthropic.APIKey != "":
		return BackendAnthropic
	case s.Gemini.APIKey != "":
		return BackendGemini
	default:
		return BackendOffline
	}
}

// Live reports whether the resolved backend calls a remote service
func (s Settings) Live() bool {
	return s.Resolve() != BackendOffline
}

func (s Settings) timeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return DefaultTimeout
}

func requireKey(backend Backend, svc ServiceSettings) error {
	if svc.APIKey != "" {
		return nil
	}
	env := fmt.Sprintf("%s_API_KEY", strings.ToUpper(string(backend)))
	return errors.New(errors.ErrCodeMissingAPIKey, fmt.Sprintf("backend %s needs an API key", backend)).
		WithSuggestion(fmt.Sprintf("Set the %s environment variable", env)).
		WithSuggestion("Or run with --backend offline")
}
