package schedule

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/engine"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence/file"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

func testScheduler(t *testing.T) *Scheduler {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	store := file.NewPersistence(t.TempDir())
	reg := registry.NewRegistry(logger)

	factory := func(ctx context.Context, run *models.WorkflowRun) (*services.Container, error) {
		return services.NewContainer(ctx, services.Config{}, logger)
	}

	return NewScheduler(engine.NewEngine(reg, factory, logger), store, logger)
}

func TestAddWorkflowValidatesCron(t *testing.T) {
	scheduler := testScheduler(t)

	require.NoError(t, scheduler.AddWorkflow("wf-1", "*/5 * * * *"))

	err := scheduler.AddWorkflow("wf-2", "not a cron expression")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestAddWorkflowReplacesSchedule(t *testing.T) {
	scheduler := testScheduler(t)

	require.NoError(t, scheduler.AddWorkflow("wf-1", "0 * * * *"))
	require.NoError(t, scheduler.AddWorkflow("wf-1", "30 * * * *"))

	assert.Len(t, scheduler.entries, 1)
	assert.Len(t, scheduler.cron.Entries(), 1)
}
