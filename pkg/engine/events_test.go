package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/events"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/mocks"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/testutil"
)

func TestExecuteWorkflowPublishesLifecycleEvents(t *testing.T) {
	noop := &fakeExecutor{
		nodeType: "noop",
		execute: func(_ context.Context, _ *models.WorkflowNode, _ protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
			return models.SuccessResult(map[string]any{"ok": true}), nil
		},
	}

	var (
		mu        sync.Mutex
		published []events.EventType
	)

	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("evt-1")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()

			published = append(published, args.Get(2).(events.Event).GetType())
		}).
		Return(nil)

	store := &mocks.MockPersistence{}
	store.On("SaveRun", mock.Anything, mock.AnythingOfType("*models.WorkflowRun")).Return(nil)

	eng := testEngine(t, noop).WithEventBus(bus).WithPersistence(store)

	def := testutil.NewDefinition(
		testutil.NewNode(testutil.WithID("a"), testutil.WithNodeType("noop")),
		testutil.NewNode(testutil.WithID("b"), testutil.WithNodeType("noop")),
	)

	run, err := eng.ExecuteWorkflow(context.Background(), def, nil, "user-1", models.TriggerTypeManual)
	require.NoError(t, err)
	require.Equal(t, models.RunStatusCompleted, run.Status)

	want := []events.EventType{
		events.RunStartedEvent,
		events.NodeStartedEvent,
		events.NodeFinishedEvent,
		events.NodeStartedEvent,
		events.NodeFinishedEvent,
		events.RunCompletedEvent,
	}
	assert.Equal(t, want, published)

	store.AssertCalled(t, "SaveRun", mock.Anything, mock.Anything)
	bus.AssertExpectations(t)
}

func TestFailedNodePublishesFailureEvents(t *testing.T) {
	failing := &fakeExecutor{
		nodeType: "broken",
		execute: func(_ context.Context, _ *models.WorkflowNode, _ protocol.ExecutionContext) (*models.NodeExecutionResult, error) {
			return models.FailureResult("boom"), nil
		},
	}

	var (
		mu        sync.Mutex
		published []events.EventType
	)

	bus := &mocks.MockEventBus{}
	bus.On("GenerateID").Return("evt-1")
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()

			published = append(published, args.Get(2).(events.Event).GetType())
		}).
		Return(nil)

	eng := testEngine(t, failing).WithEventBus(bus)

	def := testutil.NewDefinition(
		testutil.NewNode(testutil.WithID("a"), testutil.WithNodeType("broken")),
	)

	run, err := eng.ExecuteWorkflow(context.Background(), def, nil, "user-1", models.TriggerTypeManual)
	require.Error(t, err)
	require.Equal(t, models.RunStatusFailed, run.Status)

	want := []events.EventType{
		events.RunStartedEvent,
		events.NodeStartedEvent,
		events.NodeFailedEvent,
		events.RunFailedEvent,
	}
	assert.Equal(t, want, published)
}
