// Package models defines the core domain models for node-based workflow execution.
package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrorStrategy controls how a single node failure affects the rest of a run.
type ErrorStrategy string

const (
	ErrorStrategyStop     ErrorStrategy = "stop"     // First node failure aborts the run
	ErrorStrategyContinue ErrorStrategy = "continue" // Failures are recorded, remaining nodes still execute
	ErrorStrategyRetry    ErrorStrategy = "retry"    // Retry semantics are owned by executors/services
)

// WorkflowSettings holds run-level execution policy.
type WorkflowSettings struct {
	MaxRetries        int           `json:"max_retries"        validate:"min=0,max=10"`
	TimeoutMillis     int           `json:"timeout_ms"         validate:"min=0"`
	ParallelExecution bool          `json:"parallel_execution"`
	ErrorStrategy     ErrorStrategy `json:"error_strategy"     validate:"omitempty,oneof=stop continue retry"`
}

// WorkflowDefinition is the authored graph: nodes, typed connections between
// named ports, shared variables and execution settings. Definitions are
// authored and persisted elsewhere; the engine only ever reads them, so one
// definition can back any number of concurrent runs.
type WorkflowDefinition struct {
	ID          string            `json:"id"          validate:"required"`
	Name        string            `json:"name"        validate:"required,min=3"`
	Description string            `json:"description,omitempty"`
	Nodes       []*WorkflowNode   `json:"nodes"`
	Connections []*NodeConnection `json:"connections"`
	Variables   map[string]any    `json:"variables,omitempty"`
	Settings    WorkflowSettings  `json:"settings"`
	Owner       string            `json:"owner,omitempty"`
	CreatedAt   time.Time         `json:"created_at,omitzero"`
	UpdatedAt   time.Time         `json:"updated_at,omitzero"`
}

// DefinitionError reports a structural problem in a workflow definition
// (dangling connection references, empty graph, duplicate node IDs). It is
// fatal to a run before any node executes and is never retried.
type DefinitionError struct {
	WorkflowID string
	Reason     string
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("invalid workflow definition %s: %s", e.WorkflowID, e.Reason)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and graph structure. It fails fast with a
// *DefinitionError so callers can reject a definition before starting a run.
func (d *WorkflowDefinition) Validate() error {
	if err := validate.Struct(d); err != nil {
		return &DefinitionError{WorkflowID: d.ID, Reason: err.Error()}
	}

	if len(d.Nodes) == 0 {
		return &DefinitionError{WorkflowID: d.ID, Reason: "workflow has no nodes"}
	}

	nodeIDs := make(map[string]bool, len(d.Nodes))

	for _, node := range d.Nodes {
		if node.ID == "" {
			return &DefinitionError{WorkflowID: d.ID, Reason: "found node with empty ID"}
		}

		if node.NodeType == "" {
			return &DefinitionError{WorkflowID: d.ID, Reason: fmt.Sprintf("node %s has no type specified", node.ID)}
		}

		if nodeIDs[node.ID] {
			return &DefinitionError{WorkflowID: d.ID, Reason: fmt.Sprintf("duplicate node ID: %s", node.ID)}
		}

		nodeIDs[node.ID] = true
	}

	for _, conn := range d.Connections {
		if conn.SourceNodeID == "" || conn.TargetNodeID == "" {
			return &DefinitionError{WorkflowID: d.ID, Reason: fmt.Sprintf("connection %s is missing a node reference", conn.ID)}
		}

		if !nodeIDs[conn.SourceNodeID] {
			return &DefinitionError{WorkflowID: d.ID, Reason: fmt.Sprintf("connection references non-existent source node: %s", conn.SourceNodeID)}
		}

		if !nodeIDs[conn.TargetNodeID] {
			return &DefinitionError{WorkflowID: d.ID, Reason: fmt.Sprintf("connection references non-existent target node: %s", conn.TargetNodeID)}
		}
	}

	return nil
}

// NodeByID returns the node with the given ID, or nil.
func (d *WorkflowDefinition) NodeByID(id string) *WorkflowNode {
	for _, node := range d.Nodes {
		if node.ID == id {
			return node
		}
	}

	return nil
}

// StartNodes returns the nodes with no incoming connections.
func (d *WorkflowDefinition) StartNodes() []*WorkflowNode {
	hasIncoming := make(map[string]bool, len(d.Nodes))
	for _, conn := range d.Connections {
		hasIncoming[conn.TargetNodeID] = true
	}

	var starts []*WorkflowNode

	for _, node := range d.Nodes {
		if !hasIncoming[node.ID] {
			starts = append(starts, node)
		}
	}

	return starts
}

// SinkNodes returns the nodes with no outgoing connections. Their recorded
// outputs form the run's aggregate output data.
func (d *WorkflowDefinition) SinkNodes() []*WorkflowNode {
	hasOutgoing := make(map[string]bool, len(d.Nodes))
	for _, conn := range d.Connections {
		hasOutgoing[conn.SourceNodeID] = true
	}

	var sinks []*WorkflowNode

	for _, node := range d.Nodes {
		if !hasOutgoing[node.ID] {
			sinks = append(sinks, node)
		}
	}

	return sinks
}
