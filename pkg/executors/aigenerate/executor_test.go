package aigenerate

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

type fakeAIService struct {
	lastRequest services.GenerationRequest
	result      *services.GenerationResult
	err         error
}

func (f *fakeAIService) Generate(_ context.Context, req services.GenerationRequest) (*services.GenerationResult, error) {
	f.lastRequest = req

	return f.result, f.err
}

func executionContext(ai services.AIService, input map[string]any) protocol.ExecutionContext {
	return protocol.ExecutionContext{
		NodeID:   "ai-1",
		RunID:    "run-test1234",
		Input:    input,
		Services: &services.Container{AI: ai},
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func TestAIGenerate(t *testing.T) {
	fake := &fakeAIService{
		result: &services.GenerationResult{
			Text:         "A fine description.",
			Model:        "gpt-4o-mini",
			FinishReason: "stop",
			TokensUsed:   12,
		},
	}

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:       "ai-1",
		NodeType: NodeType,
		Properties: map[string]any{
			"prompt":      "Describe {{.input.main.website}}",
			"system":      "You are a content writer.",
			"max_tokens":  float64(200),
			"temperature": 0.7,
		},
	}

	ec := executionContext(fake, map[string]any{
		"main": map[string]any{"website": "example.com"},
	})

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "Describe example.com", fake.lastRequest.Prompt)
	assert.Equal(t, "You are a content writer.", fake.lastRequest.System)
	assert.Equal(t, 200, fake.lastRequest.MaxTokens)
	assert.InDelta(t, 0.7, fake.lastRequest.Temperature, 0.001)

	assert.Equal(t, "A fine description.", result.Data["text"])
	assert.Equal(t, 12, result.Data["tokens_used"])
}

func TestAIGenerateNotConfigured(t *testing.T) {
	fake := &fakeAIService{err: services.ErrAINotConfigured}

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:         "ai-1",
		NodeType:   NodeType,
		Properties: map[string]any{"prompt": "hello"},
	}

	result, err := executor.Execute(context.Background(), node, executionContext(fake, nil))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "not configured")
}

func TestAIGenerateRequiresPrompt(t *testing.T) {
	executor := NewExecutor()
	node := &models.WorkflowNode{ID: "ai-1", NodeType: NodeType, Properties: map[string]any{}}

	_, err := executor.Execute(context.Background(), node, executionContext(&fakeAIService{}, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid node properties")
}
