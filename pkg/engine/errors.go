// Package engine orchestrates workflow runs: it resolves execution order from
// the connection graph, dispatches each node through its registered executor
// and tracks every in-flight run until it reaches a terminal state.
package engine

import (
	"errors"
	"fmt"
)

// ErrNoStartNodes is returned for a graph in which no node is free of
// incoming connections, so execution has nowhere to begin.
var ErrNoStartNodes = errors.New("workflow has no start nodes")

// ErrRunCancelled terminates a run whose cancellation flag was observed
// between node dispatches. It bypasses the error strategy; the run always
// ends as cancelled.
var ErrRunCancelled = errors.New("workflow run cancelled")

// CycleError reports a cycle detected while ordering the graph. It is fatal:
// the run fails with no nodes executed.
type CycleError struct {
	NodeID string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("workflow graph contains a cycle through node %s", e.NodeID)
}

// UnknownExecutorError reports a node whose type has no registered executor.
// It is a node-level failure subject to the run's error strategy, so a
// continue-mode run tolerates unimplemented node types.
type UnknownExecutorError struct {
	NodeID   string
	NodeType string
}

func (e *UnknownExecutorError) Error() string {
	return fmt.Sprintf("no executor registered for node type %q (node %s)", e.NodeType, e.NodeID)
}

// NodeError reports a node whose executor failed or returned an unsuccessful
// result. Subject to the run's error strategy.
type NodeError struct {
	NodeID  string
	Message string
}

func (e *NodeError) Error() string {
	return e.Message
}
