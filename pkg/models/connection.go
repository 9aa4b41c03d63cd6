package models

// NodeConnection is a directed, named-port edge between two nodes. Data flows
// from the source node's output port to the target node's input port. A node
// with no incoming connections is a start node; one with no outgoing
// connections is a sink node.
type NodeConnection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	SourcePort   string `json:"source_port"    validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	TargetPort   string `json:"target_port"    validate:"required"`
}

// Main is the conventional default port name used by single-port nodes.
const PortMain = "main"
