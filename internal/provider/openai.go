package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/felixgeelhaar/scriptsmith/internal/prompt"
	"github.com/felixgeelhaar/scriptsmith/internal/version"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// OpenAI API request/response structures
type openAIRequest struct {
	Model          string                `json:"model"`
	Messages       []openAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature"`
	MaxTokens      int                   `json:"max_tokens"`
	ResponseFormat *openAIResponseFormat `json:"response_format,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponseFormat struct {
	Type string `json:"type"`
}

type openAIResponse struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []openAIChoice `json:"choices"`
}

type openAIChoice struct {
	Index        int           `json:"index"`
	Message      openAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// NewOpenAIClient creates an OpenAI client from service settings
func NewOpenAIClient(svc ServiceSettings, httpClient *http.Client) (*OpenAIClient, error) {
	if svc.APIKey == "" {
		return nil, requireKey(BackendOpenAI, svc)
	}

	baseURL := svc.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	model := svc.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}

	return &OpenAIClient{
		apiKey:  svc.APIKey,
		baseURL: baseURL,
		model:   model,
		client:  httpClient,
	}, nil
}

// Name implements GenerationClient
func (c *OpenAIClient) Name() string { return string(BackendOpenAI) }

// Generate implements GenerationClient
func (c *OpenAIClient) Generate(ctx context.Context, pair prompt.Pair, opts Options) (string, error) {
	oaiReq := c.buildRequest(pair, opts)

	reqBody, err := json.Marshal(oaiReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
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

	var oaiResp openAIResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return "", malformedError(c.Name(), "body is not JSON", err)
	}
	if len(oaiResp.Choices) == 0 {
		return "", malformedError(c.Name(), "no choices in response", nil)
	}

	return oaiResp.Choices[0].Message.Content, nil
}

// buildRequest constructs the chat completions body from a prompt pair
func (c *OpenAIClient) buildRequest(pair prompt.Pair, opts Options) *openAIRequest {
	req := &openAIRequest{
		Model: opts.model(c.model),
		Messages: []openAIMessage{
			{Role: "system", Content: pair.System},
			{Role: "user", Content: pair.User},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.maxTokens(),
	}
	if opts.JSONMode {
		req.ResponseFormat = &openAIResponseFormat{Type: "json_object"}
	}
	return req
}
