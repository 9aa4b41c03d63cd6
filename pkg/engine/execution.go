package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/events"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/eventbus"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/otelhelper"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

// Execution drives one workflow run: one logical thread of control visiting
// nodes sequentially in topological order. It exclusively owns its run record
// until the run reaches a terminal state; outside readers only ever get
// clones via Snapshot.
type Execution struct {
	def       *models.WorkflowDefinition
	registry  *registry.Registry
	container *services.Container
	bus       eventbus.EventBus
	tracer    trace.Tracer
	logger    *slog.Logger

	mu  sync.Mutex
	run *models.WorkflowRun

	cancelled atomic.Bool

	// outputs holds each visited node's result for downstream input
	// collection. Run-scoped; discarded with the execution.
	outputs map[string]*models.NodeExecutionResult
}

func newExecution(
	run *models.WorkflowRun,
	def *models.WorkflowDefinition,
	reg *registry.Registry,
	container *services.Container,
	bus eventbus.EventBus,
	tracer trace.Tracer,
	logger *slog.Logger,
) *Execution {
	return &Execution{
		run:       run,
		def:       def,
		registry:  reg,
		container: container,
		bus:       bus,
		tracer:    tracer,
		logger:    logger,
		outputs:   make(map[string]*models.NodeExecutionResult),
	}
}

// Cancel requests cooperative cancellation. The flag is polled before each
// node dispatch; a node already in flight is not interrupted.
func (e *Execution) Cancel() {
	e.cancelled.Store(true)
}

// Snapshot returns a deep copy of the run record for polling callers.
func (e *Execution) Snapshot() *models.WorkflowRun {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.run.Clone()
}

// execute runs the workflow to a terminal outcome. A nil return means the
// run completed; note that under the continue strategy a completed run may
// still carry individual node errors in its node states.
func (e *Execution) execute(ctx context.Context) error {
	if len(e.def.StartNodes()) == 0 {
		return ErrNoStartNodes
	}

	order, err := topologicalOrder(e.def)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.run.Status = models.RunStatusRunning
	e.run.Progress.TotalNodes = len(order)
	e.run.NodeStates = make(map[string]models.NodeState, len(order))

	for _, node := range e.def.Nodes {
		e.run.NodeStates[node.ID] = models.NodeState{Status: models.NodeStatusIdle}
	}
	e.mu.Unlock()

	strategy := e.def.Settings.ErrorStrategy
	if strategy == "" {
		strategy = models.ErrorStrategyStop
	}

	for _, node := range order {
		if e.cancelled.Load() {
			return ErrRunCancelled
		}

		if err := e.executeNode(ctx, node, strategy); err != nil {
			return err
		}
	}

	e.assembleOutput()

	return nil
}

// executeNode dispatches a single node and applies the error strategy to its
// outcome. The returned error, when non-nil, aborts the whole run.
func (e *Execution) executeNode(ctx context.Context, node *models.WorkflowNode, strategy models.ErrorStrategy) error {
	logger := e.logger.With("node_id", node.ID, "node_type", node.NodeType)

	nodeCtx, span := e.tracer.Start(ctx, "workflow.node",
		trace.WithAttributes(
			attribute.String(otelhelper.NodeIDKey, node.ID),
			attribute.String(otelhelper.NodeTypeKey, node.NodeType),
			attribute.String(otelhelper.RunIDKey, e.run.ID),
		))
	defer span.End()

	e.setNodeStatus(node.ID, models.NodeStatusRunning, "")
	e.publish(nodeCtx, &events.NodeStarted{
		BaseEvent: e.baseEvent(events.NodeStartedEvent),
		NodeID:    node.ID,
		NodeType:  node.NodeType,
	})

	ec := protocol.ExecutionContext{
		NodeID:     node.ID,
		RunID:      e.run.ID,
		WorkflowID: e.def.ID,
		Input:      e.collectNodeInputs(node),
		Variables:  e.def.Variables,
		Settings:   e.def.Settings,
		Services:   e.container,
		Logger:     logger,
	}

	result := e.dispatch(nodeCtx, node, ec, logger)

	// The result is recorded even on failure: executors may publish error
	// details on dedicated output ports for downstream consumers.
	e.outputs[node.ID] = result

	status := models.NodeStatusCompleted
	if !result.Success {
		status = models.NodeStatusError
	}

	e.setNodeStatus(node.ID, status, result.Error)

	// Progress advances regardless of per-node success so pollers always see
	// monotonic progress.
	e.mu.Lock()
	e.run.Progress.CompletedNodes++
	e.run.Progress.CurrentStep = node.DisplayName()
	e.mu.Unlock()

	eventType := events.NodeFinishedEvent
	if !result.Success {
		eventType = events.NodeFailedEvent
	}

	e.publish(nodeCtx, &events.NodeFinished{
		BaseEvent:       e.baseEvent(eventType),
		NodeID:          node.ID,
		NodeType:        node.NodeType,
		Success:         result.Success,
		Error:           result.Error,
		ExecutionTimeMS: result.ExecutionTimeMillis,
	})

	if result.Success {
		return nil
	}

	nodeErr := &NodeError{NodeID: node.ID, Message: result.Error}
	otelhelper.SetError(span, nodeErr)

	if strategy == models.ErrorStrategyContinue {
		logger.WarnContext(nodeCtx, "Node failed, continuing per error strategy", "error", result.Error)

		return nil
	}

	// stop (and retry, whose re-attempts live in the executor/service layer):
	// the first node failure aborts the run.
	return nodeErr
}

// dispatch resolves the node's executor and invokes it, converting every
// failure mode (unknown type, returned error, nil result) into a uniform
// failed result with wall-clock timing attached.
func (e *Execution) dispatch(ctx context.Context, node *models.WorkflowNode, ec protocol.ExecutionContext, logger *slog.Logger) *models.NodeExecutionResult {
	executor, ok := e.registry.Executor(ctx, node.NodeType)
	if !ok {
		err := &UnknownExecutorError{NodeID: node.ID, NodeType: node.NodeType}
		logger.ErrorContext(ctx, "No executor registered for node type")

		return models.FailureResult(err.Error())
	}

	started := time.Now()

	result, err := executor.Execute(ctx, node, ec)
	elapsed := time.Since(started).Milliseconds()

	switch {
	case err != nil:
		result = models.FailureResult(err.Error())
	case result == nil:
		result = models.FailureResult("executor returned no result")
	}

	result.ExecutionTimeMillis = elapsed

	return result
}

// collectNodeInputs gathers the node's input map: for every connection
// targeting it, the producing node's output port value lands under the
// matching target port. A start node with no incoming connections receives
// the run's input data instead.
func (e *Execution) collectNodeInputs(node *models.WorkflowNode) map[string]any {
	inputs := make(map[string]any)
	incoming := false

	for _, conn := range e.def.Connections {
		if conn.TargetNodeID != node.ID {
			continue
		}

		incoming = true

		result, ok := e.outputs[conn.SourceNodeID]
		if !ok {
			// Upstream never produced output (failed under continue, or was
			// never reached). The port stays absent.
			continue
		}

		if value := result.PortValue(conn.SourcePort); value != nil {
			inputs[conn.TargetPort] = value
		}
	}

	if !incoming && len(e.run.InputData) > 0 {
		inputs[models.PortMain] = e.run.InputData
	}

	return inputs
}

// assembleOutput maps each sink node's recorded payload into the run's
// aggregate output data.
func (e *Execution) assembleOutput() {
	output := make(map[string]any)

	for _, sink := range e.def.SinkNodes() {
		result, ok := e.outputs[sink.ID]
		if !ok {
			continue
		}

		if result.Data != nil {
			output[sink.ID] = result.Data
		} else if len(result.OutputPorts) > 0 {
			output[sink.ID] = result.OutputPorts
		}
	}

	e.mu.Lock()
	e.run.OutputData = output
	e.mu.Unlock()
}

func (e *Execution) setNodeStatus(nodeID string, status models.NodeStatus, errMessage string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.run.NodeStates[nodeID] = models.NodeState{Status: status, Error: errMessage}
}

func (e *Execution) baseEvent(eventType events.EventType) events.BaseEvent {
	id := ""
	if e.bus != nil {
		id = e.bus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: e.def.ID,
		RunID:      e.run.ID,
	}
}

// publish sends a lifecycle event best-effort. Bus failures are logged and
// never affect the run.
func (e *Execution) publish(ctx context.Context, event events.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, e.run.ID, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}
