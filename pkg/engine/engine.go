package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/events"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/eventbus"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/otelhelper"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

// ServiceFactory builds the per-run service container. A fresh container per
// run keeps per-run configuration and credentials from leaking across runs.
type ServiceFactory func(ctx context.Context, run *models.WorkflowRun) (*services.Container, error)

// Engine is the public entry point of the execution subsystem. It starts
// runs, tracks every in-flight run, supports cooperative cancellation and
// serves read-only run snapshots for polling.
type Engine struct {
	registry *registry.Registry
	services ServiceFactory
	logger   *slog.Logger

	bus    eventbus.EventBus
	tracer trace.Tracer
	runs   persistence.Persistence

	mu     sync.RWMutex
	active map[string]*Execution
}

// NewEngine creates an engine around an executor registry and a service
// factory.
func NewEngine(reg *registry.Registry, factory ServiceFactory, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		registry: reg,
		services: factory,
		logger:   logger.With("module", "workflow_engine"),
		tracer:   otel.Tracer("workflow-engine"),
		active:   make(map[string]*Execution),
	}
}

// WithEventBus publishes run lifecycle events on the given bus.
func (e *Engine) WithEventBus(bus eventbus.EventBus) *Engine {
	e.bus = bus

	return e
}

// WithTracer replaces the default (global) tracer.
func (e *Engine) WithTracer(tracer trace.Tracer) *Engine {
	e.tracer = tracer

	return e
}

// WithPersistence stores every terminal run record in the given backend.
func (e *Engine) WithPersistence(p persistence.Persistence) *Engine {
	e.runs = p

	return e
}

// startedRun bundles everything a begun run needs until it finishes.
type startedRun struct {
	run       *models.WorkflowRun
	exec      *Execution
	container *services.Container
	span      trace.Span
	logger    *slog.Logger
}

// ExecuteWorkflow runs a definition to completion and returns the terminal
// run record. The definition is only ever read, so the same definition may
// back concurrent runs. The returned error is non-nil when the run did not
// complete (failed or cancelled); the run record carries the same outcome.
func (e *Engine) ExecuteWorkflow(
	ctx context.Context,
	def *models.WorkflowDefinition,
	inputData map[string]any,
	userID string,
	trigger models.TriggerType,
) (*models.WorkflowRun, error) {
	started, run, err := e.begin(ctx, def, inputData, userID, trigger)
	if err != nil {
		return run, err
	}

	return e.drive(ctx, started)
}

// StartWorkflow launches a run in the background and returns its id
// immediately. Definition and service setup failures still surface
// synchronously; once the id is returned the run is observable through
// RunStatus while in flight and through the configured persistence once
// terminal. The run outlives ctx.
func (e *Engine) StartWorkflow(
	ctx context.Context,
	def *models.WorkflowDefinition,
	inputData map[string]any,
	userID string,
	trigger models.TriggerType,
) (string, error) {
	runCtx := context.WithoutCancel(ctx)

	started, _, err := e.begin(runCtx, def, inputData, userID, trigger)
	if err != nil {
		return "", err
	}

	go func() {
		_, _ = e.drive(runCtx, started)
	}()

	return started.run.ID, nil
}

// begin creates the run record, validates the definition, builds the per-run
// services and registers the execution as active. On error the returned run
// is already finalized.
func (e *Engine) begin(
	ctx context.Context,
	def *models.WorkflowDefinition,
	inputData map[string]any,
	userID string,
	trigger models.TriggerType,
) (*startedRun, *models.WorkflowRun, error) {
	run := &models.WorkflowRun{
		ID:          newRunID(),
		WorkflowID:  def.ID,
		UserID:      userID,
		Status:      models.RunStatusPending,
		TriggerType: trigger,
		StartedAt:   time.Now().UTC(),
		InputData:   inputData,
	}

	logger := e.logger.With("workflow_id", def.ID, "run_id", run.ID)
	logger.InfoContext(ctx, "Starting workflow run", "trigger_type", trigger)

	ctx, span := e.tracer.Start(ctx, "workflow.run",
		trace.WithAttributes(
			attribute.String(otelhelper.WorkflowIDKey, def.ID),
			attribute.String(otelhelper.WorkflowNameKey, def.Name),
			attribute.String(otelhelper.RunIDKey, run.ID),
			attribute.String(otelhelper.TriggerTypeKey, string(trigger)),
		))

	if err := def.Validate(); err != nil {
		otelhelper.SetError(span, err)
		span.End()

		return nil, e.finalize(ctx, run, nil, err, logger), err
	}

	container, err := e.services(ctx, run)
	if err != nil {
		err = fmt.Errorf("failed to build service container: %w", err)
		otelhelper.SetError(span, err)
		span.End()

		return nil, e.finalize(ctx, run, nil, err, logger), err
	}

	exec := newExecution(run, def, e.registry, container, e.bus, e.tracer, logger)

	e.mu.Lock()
	e.active[run.ID] = exec
	e.mu.Unlock()

	e.publish(ctx, run.ID, &events.RunStarted{
		BaseEvent:   e.baseEvent(events.RunStartedEvent, def.ID, run.ID),
		TriggerType: trigger,
		TotalNodes:  len(def.Nodes),
	})

	return &startedRun{run: run, exec: exec, container: container, span: span, logger: logger}, run, nil
}

// drive runs a begun execution to its terminal state and releases its
// resources.
func (e *Engine) drive(ctx context.Context, started *startedRun) (*models.WorkflowRun, error) {
	defer started.span.End()

	defer func() {
		e.mu.Lock()
		delete(e.active, started.run.ID)
		e.mu.Unlock()

		if closeErr := started.container.Close(); closeErr != nil {
			started.logger.WarnContext(ctx, "Failed to close service container", "error", closeErr)
		}
	}()

	execErr := started.exec.execute(ctx)
	if execErr != nil {
		otelhelper.SetError(started.span, execErr)
	}

	return e.finalize(ctx, started.run, started.exec, execErr, started.logger), execErr
}

// CancelWorkflow requests cancellation of an active run. It returns whether a
// cancellable run was found. Cancellation is cooperative: a node already in
// flight finishes before the flag is observed.
func (e *Engine) CancelWorkflow(runID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	exec, ok := e.active[runID]
	if !ok {
		return false
	}

	exec.Cancel()
	delete(e.active, runID)

	return true
}

// RunStatus returns a snapshot of an active run. The copy is the caller's
// own; mutating it cannot touch engine state.
func (e *Engine) RunStatus(runID string) (*models.WorkflowRun, bool) {
	e.mu.RLock()
	exec, ok := e.active[runID]
	e.mu.RUnlock()

	if !ok {
		return nil, false
	}

	return exec.Snapshot(), true
}

// ActiveRuns returns snapshots of every in-flight run.
func (e *Engine) ActiveRuns() []*models.WorkflowRun {
	e.mu.RLock()
	executions := make([]*Execution, 0, len(e.active))

	for _, exec := range e.active {
		executions = append(executions, exec)
	}
	e.mu.RUnlock()

	runs := make([]*models.WorkflowRun, 0, len(executions))
	for _, exec := range executions {
		runs = append(runs, exec.Snapshot())
	}

	return runs
}

// finalize stamps the terminal status on the run, publishes the terminal
// event and persists the record.
func (e *Engine) finalize(ctx context.Context, run *models.WorkflowRun, exec *Execution, execErr error, logger *slog.Logger) *models.WorkflowRun {
	if exec != nil {
		// Take ownership of the final state under the execution's lock.
		run = exec.Snapshot()
	}

	completedAt := time.Now().UTC()
	run.CompletedAt = &completedAt

	eventType := events.RunCompletedEvent

	switch {
	case execErr == nil:
		run.Status = models.RunStatusCompleted
	case errors.Is(execErr, ErrRunCancelled):
		run.Status = models.RunStatusCancelled
		eventType = events.RunCancelledEvent
	default:
		run.Status = models.RunStatusFailed
		run.Error = execErr.Error()
		eventType = events.RunFailedEvent
	}

	logger.InfoContext(ctx, "Workflow run finished",
		"status", run.Status,
		"completed_nodes", run.Progress.CompletedNodes,
		"total_nodes", run.Progress.TotalNodes,
		"error", run.Error)

	e.publish(ctx, run.ID, &events.RunFinished{
		BaseEvent: e.baseEvent(eventType, run.WorkflowID, run.ID),
		Status:    run.Status,
		Error:     run.Error,
		Duration:  completedAt.Sub(run.StartedAt),
	})

	if e.runs != nil {
		if err := e.runs.SaveRun(ctx, run); err != nil {
			logger.ErrorContext(ctx, "Failed to persist run record", "error", err)
		}
	}

	return run
}

func (e *Engine) baseEvent(eventType events.EventType, workflowID, runID string) events.BaseEvent {
	id := ""
	if e.bus != nil {
		id = e.bus.GenerateID()
	}

	return events.BaseEvent{
		ID:         id,
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		RunID:      runID,
	}
}

func (e *Engine) publish(ctx context.Context, key string, event events.Event) {
	if e.bus == nil {
		return
	}

	if err := e.bus.Publish(ctx, key, event); err != nil {
		e.logger.WarnContext(ctx, "Failed to publish run event", "event_type", event.GetType(), "error", err)
	}
}

// newRunID generates a process-unique run id.
func newRunID() string {
	return "run-" + uuid.New().String()[:8]
}
