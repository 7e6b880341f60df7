package provider

import (
	"context"
	stderrors "errors"
	"net/http"

	"google.golang.org/genai"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/version"
)

// GeminiClient talks to the Gemini API through the genai SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a Gemini client from service settings
func NewGeminiClient(ctx context.Context, svc ServiceSettings, httpClient *http.Client) (*GeminiClient, error) {
	if svc.APIKey == "" {
		return nil, requireKey(BackendGemini, svc)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	cfg := &genai.ClientConfig{
		APIKey:     svc.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: svc.BaseURL,
			Headers: http.Header{"User-Agent": []string{version.GetInfo().UserAgent()}},
		},
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, "failed to create Gemini client", err)
	}

	model := svc.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	return &GeminiClient{client: client, model: model}, nil
}

// Name implements GenerationClient
func (c *GeminiClient) Name() string { return string(BackendGemini) }

// Generate implements GenerationClient
func (c *GeminiClient) Generate(ctx context.Context, pair prompt.Pair, opts Options) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(pair.System, genai.RoleUser),
		Temperature:       genai.Ptr(float32(opts.Temperature)),
		MaxOutputTokens:   int32(opts.maxTokens()),
	}
	if opts.JSONMode {
		config.ResponseMIMEType = "application/json"
	}

	contents := []*genai.Content{genai.NewContentFromText(pair.User, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, opts.model(c.model), contents, config)
	if err != nil {
		return "", c.mapError(err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", malformedError(c.Name(), "no candidates in response", nil)
	}

	return resp.Text(), nil
}

func (c *GeminiClient) mapError(err error) error {
	var apiErr genai.APIError
	if !stderrors.As(err, &apiErr) {
		return transportError(c.Name(), err)
	}

	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewServiceAuthError(c.Name()).WithSuggestion("gemini said: " + apiErr.Message)
	case http.StatusTooManyRequests:
		return errors.NewServiceRateLimitError(c.Name(), "")
	default:
		return errors.NewServiceStatusError(c.Name(), apiErr.Code, apiErr.Message)
	}
}
