package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/version"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion        = "2023-06-01"
)

// AnthropicClient talks to the Anthropic messages endpoint
type AnthropicClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Anthropic API request/response structures
type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string             `json:"id"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewAnthropicClient creates an Anthropic client from service settings
func NewAnthropicClient(svc ServiceSettings, httpClient *http.Client) (*AnthropicClient, error) {
	if svc.APIKey == "" {
		return nil, requireKey(BackendAnthropic, svc)
	}

	baseURL := svc.BaseURL
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	model := svc.Model
	if model == "" {
		model = DefaultAnthropicModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &AnthropicClient{
		apiKey:  svc.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  httpClient,
	}, nil
}

// Name implements GenerationClient
func (c *AnthropicClient) Name() string { return string(BackendAnthropic) }

// Generate implements GenerationClient. The messages API has no JSON mode;
// the check prompt already demands a bare JSON object.
func (c *AnthropicClient) Generate(ctx context.Context, pair prompt.Pair, opts Options) (string, error) {
	reqBody, err := json.Marshal(&anthropicRequest{
		Model:       opts.model(c.model),
		System:      pair.System,
		Messages:    []anthropicMessage{{Role: "user", Content: pair.User}},
		MaxTokens:   opts.maxTokens(),
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)
	httpReq.Header.Set("User-Agent", version.GetInfo().UserAgent())

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return "", transportError(c.Name(), err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", transportError(c.Name(), err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return "", statusError(c.Name(), httpResp, respBody)
	}

	var resp anthropicResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", malformedError(c.Name(), "body is not JSON", err)
	}
	if len(resp.Content) == 0 {
		return "", malformedError(c.Name(), "no content blocks in response", nil)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return text.String(), nil
}
