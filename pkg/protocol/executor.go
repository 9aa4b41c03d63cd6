// Package protocol defines the contracts between the execution engine and
// pluggable node executors.
package protocol

import (
	"context"
	"log/slog"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

// ExecutionContext carries everything an executor may touch during one node
// execution, and nothing else: no ambient singletons, no access to sibling
// nodes. Input and Variables are read-only snapshots; executors must not
// mutate them.
type ExecutionContext struct {
	NodeID     string
	RunID      string
	WorkflowID string
	Input      map[string]any
	Variables  map[string]any
	Settings   models.WorkflowSettings
	Services   *services.Container
	Logger     *slog.Logger
}

// Executor is the strategy implementation for one node type. Implementations
// are stateless with respect to the graph and side-effect-isolated to their
// declared output. An executor that cannot complete reports it through
// NodeExecutionResult{Success: false, Error: ...}; a returned Go error is
// reserved for invocation-level failures and is treated the same way by the
// execution loop. Long-running I/O must honor ctx cancellation and deadlines.
type Executor interface {
	// Type returns the node type this executor handles.
	Type() string

	// Execute runs one node and returns its result.
	Execute(ctx context.Context, node *models.WorkflowNode, ec ExecutionContext) (*models.NodeExecutionResult, error)

	// Schema returns the JSON schema for the node's properties. Property
	// validation happens at each executor's boundary, the engine never
	// interprets properties.
	Schema() map[string]any
}

// ExecutorLoader produces a batch of executors for deferred registration.
// Loaders run asynchronously so the engine can accept work before every
// executor module has finished loading.
type ExecutorLoader func(ctx context.Context) ([]Executor, error)
