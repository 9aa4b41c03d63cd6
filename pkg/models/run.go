package models

import "time"

// RunStatus is the lifecycle state of one workflow run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
	RunStatusCancelled RunStatus = "cancelled"
)

// Terminal reports whether the status is one of the terminal states.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed || s == RunStatusCancelled
}

// TriggerType records what initiated a run.
type TriggerType string

const (
	TriggerTypeManual    TriggerType = "manual"
	TriggerTypeScheduled TriggerType = "scheduled"
	TriggerTypeWebhook   TriggerType = "webhook"
	TriggerTypeAPI       TriggerType = "api"
)

// RunProgress is polling telemetry for an in-flight run. CompletedNodes counts
// visited nodes regardless of per-node success, so progress is monotonic.
type RunProgress struct {
	CompletedNodes int    `json:"completed_nodes"`
	TotalNodes     int    `json:"total_nodes"`
	CurrentStep    string `json:"current_step,omitempty"`
}

// NodeState is the run-scoped status of a single node, kept on the run record
// so partial failures under the continue strategy stay observable after the
// run ends.
type NodeState struct {
	Status NodeStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// WorkflowRun is the mutable record of one execution of a workflow
// definition. It is owned exclusively by the execution driving it and handed
// to callers only as a snapshot or after reaching a terminal state.
type WorkflowRun struct {
	ID          string               `json:"id"`
	WorkflowID  string               `json:"workflow_id"`
	UserID      string               `json:"user_id,omitempty"`
	Status      RunStatus            `json:"status"`
	TriggerType TriggerType          `json:"trigger_type"`
	StartedAt   time.Time            `json:"started_at"`
	CompletedAt *time.Time           `json:"completed_at,omitempty"`
	InputData   map[string]any       `json:"input_data,omitempty"`
	OutputData  map[string]any       `json:"output_data,omitempty"`
	Error       string               `json:"error,omitempty"`
	Progress    RunProgress          `json:"progress"`
	NodeStates  map[string]NodeState `json:"node_states,omitempty"`
}

// Clone returns a deep copy of the run. Snapshot accessors hand clones to
// callers so engine-internal state can never be mutated from outside.
func (r *WorkflowRun) Clone() *WorkflowRun {
	clone := *r

	if r.CompletedAt != nil {
		completedAt := *r.CompletedAt
		clone.CompletedAt = &completedAt
	}

	clone.InputData = copyMap(r.InputData)
	clone.OutputData = copyMap(r.OutputData)

	if r.NodeStates != nil {
		clone.NodeStates = make(map[string]NodeState, len(r.NodeStates))
		for id, state := range r.NodeStates {
			clone.NodeStates[id] = state
		}
	}

	return &clone
}

// copyMap creates a copy of a map[string]any. Values are copied shallowly.
func copyMap(original map[string]any) map[string]any {
	if original == nil {
		return nil
	}

	result := make(map[string]any, len(original))
	for k, v := range original {
		result[k] = v
	}

	return result
}
