// Package events defines the lifecycle notifications the engine publishes
// while driving workflow runs. Consumers (dashboards, audit sinks) subscribe
// through the event bus; publishing failures never affect the run itself.
package events

import (
	"time"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

type EventType string

// Topic is the event bus topic all run lifecycle events are published on.
const Topic = "workflow.runs"

const (
	EventMetadataKey     = "key"
	EventTypeMetadataKey = "event_type"
)

const (
	RunStartedEvent   EventType = "run.started"
	RunCompletedEvent EventType = "run.completed"
	RunFailedEvent    EventType = "run.failed"
	RunCancelledEvent EventType = "run.cancelled"

	NodeStartedEvent  EventType = "node.started"
	NodeFinishedEvent EventType = "node.finished"
	NodeFailedEvent   EventType = "node.failed"
)

// Event is implemented by every published event type.
type Event interface {
	GetType() EventType
}

type BaseEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	WorkflowID string    `json:"workflow_id"`
	RunID      string    `json:"run_id"`
}

func (e BaseEvent) GetType() EventType { return e.Type }

type RunStarted struct {
	BaseEvent

	TriggerType models.TriggerType `json:"trigger_type"`
	TotalNodes  int                `json:"total_nodes"`
}

type RunFinished struct {
	BaseEvent

	Status   models.RunStatus `json:"status"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
}

type NodeStarted struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

type NodeFinished struct {
	BaseEvent

	NodeID          string `json:"node_id"`
	NodeType        string `json:"node_type"`
	Success         bool   `json:"success"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMS int64  `json:"execution_time_ms"`
}
