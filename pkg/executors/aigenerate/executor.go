// Package aigenerate implements the AI text generation node executor.
package aigenerate

import (
	"context"
	"fmt"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/template"
)

const NodeType = "ai_generate"

// Executor renders a prompt template against the node's input and sends it
// to the run's AI service. Missing AI configuration surfaces as a per-node
// failure, not a run abort, so unconfigured environments degrade per the
// workflow's error strategy.
type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"prompt"},
		"properties": map[string]any{
			"prompt":      map[string]any{"type": "string", "minLength": 1},
			"system":      map[string]any{"type": "string"},
			"model":       map[string]any{"type": "string"},
			"max_tokens":  map[string]any{"type": "number", "minimum": 1},
			"temperature": map[string]any{"type": "number", "minimum": 0, "maximum": 2},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	prompt, err := template.RenderString(node.Properties["prompt"].(string), &ec)
	if err != nil {
		return nil, fmt.Errorf("failed to render prompt template: %w", err)
	}

	system := ""
	if raw := executors.StringProperty(node.Properties, "system", ""); raw != "" {
		system, err = template.RenderString(raw, &ec)
		if err != nil {
			return nil, fmt.Errorf("failed to render system template: %w", err)
		}
	}

	temperature := 0.0
	if value, ok := node.Properties["temperature"].(float64); ok {
		temperature = value
	}

	result, err := ec.Services.AI.Generate(ctx, services.GenerationRequest{
		Prompt:      prompt,
		System:      system,
		Model:       executors.StringProperty(node.Properties, "model", ""),
		MaxTokens:   executors.IntProperty(node.Properties, "max_tokens", 0),
		Temperature: temperature,
	})
	if err != nil {
		return models.FailureResult(err.Error()), nil
	}

	return models.SuccessResult(map[string]any{
		"text":          result.Text,
		"model":         result.Model,
		"finish_reason": result.FinishReason,
		"tokens_used":   result.TokensUsed,
	}), nil
}
