package engine

import (
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

type visitMark int

const (
	markUnvisited visitMark = iota
	markInProgress
	markDone
)

// topologicalOrder computes a legal execution order: depth-first over the
// target-to-sources dependency relation, emitting each node after all of its
// upstream dependencies. Every node serves as a traversal root so
// disconnected components are covered, not only declared start nodes.
//
// The order is deterministic for a given graph: nodes are visited in
// definition order and dependencies in connection order, so re-running the
// same definition yields the same order.
func topologicalOrder(def *models.WorkflowDefinition) ([]*models.WorkflowNode, error) {
	dependencies := make(map[string][]string, len(def.Nodes))
	for _, conn := range def.Connections {
		dependencies[conn.TargetNodeID] = append(dependencies[conn.TargetNodeID], conn.SourceNodeID)
	}

	marks := make(map[string]visitMark, len(def.Nodes))
	order := make([]*models.WorkflowNode, 0, len(def.Nodes))

	var visit func(id string) error

	visit = func(id string) error {
		switch marks[id] {
		case markDone:
			return nil
		case markInProgress:
			// Reaching a node already on the traversal stack means the
			// dependency relation loops back on itself.
			return &CycleError{NodeID: id}
		case markUnvisited:
		}

		marks[id] = markInProgress

		for _, dep := range dependencies[id] {
			if err := visit(dep); err != nil {
				return err
			}
		}

		marks[id] = markDone
		order = append(order, def.NodeByID(id))

		return nil
	}

	for _, node := range def.Nodes {
		if err := visit(node.ID); err != nil {
			return nil, err
		}
	}

	return order, nil
}
