package models

// NodeStatus is the run-scoped execution state of a node. It is tracked per
// run and never written back onto the shared definition.
type NodeStatus string

const (
	NodeStatusIdle      NodeStatus = "idle"
	NodeStatusRunning   NodeStatus = "running"
	NodeStatusCompleted NodeStatus = "completed"
	NodeStatusError     NodeStatus = "error"
	NodeStatusSkipped   NodeStatus = "skipped"
)

// WorkflowNode is a node instance in a workflow definition. NodeType selects
// the executor; Properties is executor-specific configuration validated at
// each executor's boundary, the engine treats it as opaque. Position is
// editor metadata carried through the model but never interpreted.
type WorkflowNode struct {
	ID         string         `json:"id"         validate:"required"`
	NodeType   string         `json:"node_type"  validate:"required"`
	Title      string         `json:"title"`
	Properties map[string]any `json:"properties,omitempty"`
	PositionX  int            `json:"position_x"`
	PositionY  int            `json:"position_y"`
}

// DisplayName returns the title, falling back to the node ID.
func (n *WorkflowNode) DisplayName() string {
	if n.Title != "" {
		return n.Title
	}

	return n.ID
}
