// Package testutil provides test data builders shared across packages.
package testutil

import (
	"github.com/google/uuid"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

// NewNode creates a test WorkflowNode with default values that can be
// overridden.
func NewNode(overrides ...func(*models.WorkflowNode)) *models.WorkflowNode {
	node := &models.WorkflowNode{
		ID:       uuid.New().String(),
		NodeType: "log",
		Title:    "Test Node",
		Properties: map[string]any{
			"message": "test",
			"level":   "info",
		},
		PositionX: 100,
		PositionY: 200,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.ID = id
	}
}

// WithNodeType sets the node type.
func WithNodeType(nodeType string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.NodeType = nodeType
	}
}

// WithProperties sets the node properties.
func WithProperties(properties map[string]any) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Properties = properties
	}
}

// WithTitle sets the node title.
func WithTitle(title string) func(*models.WorkflowNode) {
	return func(n *models.WorkflowNode) {
		n.Title = title
	}
}

// Connect creates a main-to-main connection between two nodes.
func Connect(sourceID, targetID string) *models.NodeConnection {
	return &models.NodeConnection{
		ID:           uuid.New().String(),
		SourceNodeID: sourceID,
		SourcePort:   models.PortMain,
		TargetNodeID: targetID,
		TargetPort:   models.PortMain,
	}
}

// NewDefinition creates a valid test workflow definition from the given
// nodes, chained in order over the main port.
func NewDefinition(nodes ...*models.WorkflowNode) *models.WorkflowDefinition {
	connections := make([]*models.NodeConnection, 0, len(nodes))
	for i := 1; i < len(nodes); i++ {
		connections = append(connections, Connect(nodes[i-1].ID, nodes[i].ID))
	}

	return &models.WorkflowDefinition{
		ID:          "wf-" + uuid.New().String()[:8],
		Name:        "Test Workflow",
		Nodes:       nodes,
		Connections: connections,
	}
}
