package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/channels/gochannel"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/eventbus"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/events"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

func testBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	return eventbus.NewWatermillEventBus(pub, sub)
}

func TestPublishedEventReachesHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := testBus(t)

	var (
		mu       sync.Mutex
		received []*events.RunStarted
	)

	bus.Handle(events.RunStartedEvent, func(_ context.Context, event events.Event) error {
		mu.Lock()
		defer mu.Unlock()

		received = append(received, event.(*events.RunStarted))

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))

	event := &events.RunStarted{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.RunStartedEvent,
			Timestamp:  time.Now().UTC(),
			WorkflowID: "wf-1",
			RunID:      "run-1",
		},
		TriggerType: models.TriggerTypeManual,
		TotalNodes:  3,
	}

	require.NoError(t, bus.Publish(ctx, "run-1", event))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()

	assert.Equal(t, "run-1", received[0].RunID)
	assert.Equal(t, models.TriggerTypeManual, received[0].TriggerType)
	assert.Equal(t, 3, received[0].TotalNodes)
}

func TestEventWithoutHandlerIsDropped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := testBus(t)

	var handled sync.WaitGroup

	handled.Add(1)

	bus.Handle(events.NodeStartedEvent, func(_ context.Context, _ events.Event) error {
		handled.Done()

		return nil
	})

	require.NoError(t, bus.Subscribe(ctx))

	// No handler registered for run.started, must be acked and dropped
	// without blocking later deliveries.
	unhandled := &events.RunStarted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.RunStartedEvent},
	}
	require.NoError(t, bus.Publish(ctx, "run-1", unhandled))

	nodeEvent := &events.NodeStarted{
		BaseEvent: events.BaseEvent{ID: bus.GenerateID(), Type: events.NodeStartedEvent},
		NodeID:    "a",
	}
	require.NoError(t, bus.Publish(ctx, "run-1", nodeEvent))

	done := make(chan struct{})
	go func() {
		handled.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("node.started event was never handled")
	}
}

func TestGenerateIDIsUnique(t *testing.T) {
	bus := testBus(t)

	seen := make(map[string]bool)
	for range 100 {
		id := bus.GenerateID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
