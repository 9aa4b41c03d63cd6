package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

func executionContext(input map[string]any) protocol.ExecutionContext {
	return protocol.ExecutionContext{
		NodeID:   "export-1",
		RunID:    "run-test1234",
		Input:    input,
		Services: &services.Container{},
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "inventory.json")

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:         "export-1",
		NodeType:   NodeType,
		Properties: map[string]any{"path": path},
	}

	ec := executionContext(map[string]any{
		"main": []any{
			map[string]any{"website": "example.com", "price": float64(1800)},
		},
	})

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, path, result.Data["path"])
	assert.Equal(t, 1, result.Data["rows"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "example.com", decoded[0]["website"])
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.csv")

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:       "export-1",
		NodeType: NodeType,
		Properties: map[string]any{
			"path":    path,
			"format":  "csv",
			"columns": []any{"website", "price"},
		},
	}

	ec := executionContext(map[string]any{
		"main": []any{
			map[string]any{"website": "example.com", "price": float64(1800)},
			map[string]any{"website": "other.io", "price": float64(75)},
		},
	})

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 2, result.Data["rows"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.Contains(t, content, "website,price")
	assert.Contains(t, content, "example.com,1800")
	assert.Contains(t, content, "other.io,75")
}

func TestExportTemplatedPath(t *testing.T) {
	dir := t.TempDir()

	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:       "export-1",
		NodeType: NodeType,
		Properties: map[string]any{
			"path": dir + "/{{.run.id}}.json",
		},
	}

	ec := executionContext(map[string]any{
		"main": map[string]any{"ok": true},
	})

	result, err := executor.Execute(context.Background(), node, ec)
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, filepath.Join(dir, "run-test1234.json"), result.Data["path"])
}

func TestExportMissingInput(t *testing.T) {
	executor := NewExecutor()
	node := &models.WorkflowNode{
		ID:         "export-1",
		NodeType:   NodeType,
		Properties: map[string]any{"path": filepath.Join(t.TempDir(), "out.json")},
	}

	result, err := executor.Execute(context.Background(), node, executionContext(map[string]any{}))
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "nothing to export")
}
