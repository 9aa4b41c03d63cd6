package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIServiceGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": "gpt-4o-mini",
			"choices": []map[string]any{
				{
					"message":       map[string]any{"role": "assistant", "content": "Ten SEO tips."},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]any{"total_tokens": 42},
		})
	}))
	defer server.Close()

	svc := NewAIService(server.URL, "test-key", "", testLogger())

	result, err := svc.Generate(context.Background(), GenerationRequest{
		Prompt: "Write ten SEO tips",
		System: "You are a content strategist",
	})
	require.NoError(t, err)

	assert.Equal(t, "Ten SEO tips.", result.Text)
	assert.Equal(t, "stop", result.FinishReason)
	assert.Equal(t, 42, result.TokensUsed)
}

func TestAIServiceGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))
	defer server.Close()

	svc := NewAIService(server.URL, "test-key", "", testLogger())

	_, err := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestAIServiceGenerateWithoutKey(t *testing.T) {
	svc := NewAIService("", "", "", testLogger())

	_, err := svc.Generate(context.Background(), GenerationRequest{Prompt: "hi"})
	assert.ErrorIs(t, err, ErrAINotConfigured)
}
