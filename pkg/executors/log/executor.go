// Package log implements the logging node executor: it emits a templated
// message through the run's logger and passes its input through unchanged.
package log

import (
	"context"
	"fmt"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/executors"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/template"
)

const NodeType = "log"

type Executor struct{}

func NewExecutor() *Executor { return &Executor{} }

func (e *Executor) Type() string { return NodeType }

func (e *Executor) Schema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []any{"message"},
		"properties": map[string]any{
			"message": map[string]any{"type": "string", "minLength": 1},
			"level": map[string]any{
				"type": "string",
				"enum": []any{"debug", "info", "warn", "error"},
			},
		},
	}
}

func (e *Executor) Execute(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
	if err := executors.ValidateProperties(e.Schema(), node.Properties); err != nil {
		return nil, err
	}

	message, err := template.RenderString(node.Properties["message"].(string), &ec)
	if err != nil {
		return models.FailureResult(fmt.Sprintf("failed to render log message: %v", err)), nil
	}

	switch executors.StringProperty(node.Properties, "level", "info") {
	case "debug":
		ec.Logger.DebugContext(ctx, message)
	case "warn":
		ec.Logger.WarnContext(ctx, message)
	case "error":
		ec.Logger.ErrorContext(ctx, message)
	default:
		ec.Logger.InfoContext(ctx, message)
	}

	// Pass input through so log nodes can sit inline in a pipeline.
	return &models.NodeExecutionResult{
		Success:     true,
		Data:        map[string]any{"message": message},
		OutputPorts: map[string]any{models.PortMain: ec.Input[models.PortMain]},
	}, nil
}
