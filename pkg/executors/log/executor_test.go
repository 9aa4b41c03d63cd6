package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

func TestLogRendersTemplatedMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:       "log-1",
		NodeType: NodeType,
		Properties: map[string]any{
			"message": "imported {{.input.main.count}} rows",
			"level":   "warn",
		},
	}

	input := map[string]any{
		"main": map[string]any{"count": float64(42)},
	}

	ec := protocol.ExecutionContext{
		NodeID:   "log-1",
		RunID:    "run-test1234",
		Input:    input,
		Services: &services.Container{},
		Logger:   logger,
	}

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Equal(t, "imported 42 rows", result.Data["message"])
	assert.Contains(t, buf.String(), "imported 42 rows")
	assert.Contains(t, buf.String(), "level=WARN")

	// The node passes its main input through untouched.
	assert.Equal(t, input["main"], result.OutputPorts[models.PortMain])
}

func TestLogRequiresMessage(t *testing.T) {
	executor := NewExecutor()
	node := &models.WorkflowNode{ID: "log-1", NodeType: NodeType, Properties: map[string]any{}}

	_, err := executor.Execute(context.Background(), node, protocol.ExecutionContext{
		Logger: slog.New(slog.DiscardHandler),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid node properties")
}
