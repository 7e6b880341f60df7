package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/scriptsmith/internal/errors"
)

func TestAnthropicClient_Generate(t *testing.T) {
	server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, testPair.System, req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, testPair.User, req.Messages[0].Content)
		assert.Equal(t, DefaultMaxTokens, req.MaxTokens)

		_ = json.NewEncoder(w).Encode(anthropicResponse{
			ID: "msg_1",
			Content: []anthropicContent{
				{Type: "text", Text: "async function runTest(page) {"},
				{Type: "text", Text: "}"},
			},
		})
	}))

	client, err := NewAnthropicClient(ServiceSettings{APIKey: "test-key", BaseURL: server.URL}, nil)
	require.NoError(t, err)

	text, err := client.Generate(context.Background(), testPair, Options{Temperature: 0.3})
	require.NoError(t, err)
	assert.Equal(t, "async function runTest(page) {}", text)
}

func TestAnthropicClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
	}{
		{"forbidden", http.StatusForbidden, `{"type":"error","error":{"type":"permission_error","message":"nope"}}`, errors.ErrCodeServiceAuth},
		{"overloaded", 529, `{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`, errors.ErrCodeServiceStatus},
		{"empty content", http.StatusOK, `{"id":"msg","content":[]}`, errors.ErrCodeServiceMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))

			client, err := NewAnthropicClient(ServiceSettings{APIKey: "k", BaseURL: server.URL}, nil)
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), testPair, Options{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}
