// Package schedule triggers workflow runs on cron expressions.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/engine"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
)

// Scheduler fires workflow runs on standard cron schedules. Each entry loads
// its definition fresh from persistence at fire time, so edits to a workflow
// take effect on the next tick without a restart.
type Scheduler struct {
	engine *engine.Engine
	store  persistence.Persistence
	logger *slog.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]cron.EntryID // workflowID -> cron entry
}

func NewScheduler(eng *engine.Engine, store persistence.Persistence, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine:  eng,
		store:   store,
		logger:  logger.With("module", "scheduler"),
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// AddWorkflow schedules a workflow on a standard 5-field cron expression.
// Scheduling the same workflow again replaces its previous schedule.
func (s *Scheduler) AddWorkflow(workflowID, cronExpr string) error {
	if _, err := cron.ParseStandard(cronExpr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[workflowID]; ok {
		s.cron.Remove(entryID)
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.fire(workflowID)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule workflow %s: %w", workflowID, err)
	}

	s.entries[workflowID] = entryID
	s.logger.Info("Scheduled workflow", "workflow_id", workflowID, "cron", cronExpr)

	return nil
}

// Start begins firing schedules and blocks until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

func (s *Scheduler) fire(workflowID string) {
	ctx := context.Background()

	def, err := s.store.WorkflowByID(ctx, workflowID)
	if err != nil {
		s.logger.Error("Failed to load scheduled workflow", "workflow_id", workflowID, "error", err)

		return
	}

	run, err := s.engine.ExecuteWorkflow(ctx, def, nil, "", models.TriggerTypeScheduled)
	if err != nil {
		s.logger.Error("Scheduled run did not complete",
			"workflow_id", workflowID, "run_id", run.ID, "status", run.Status, "error", err)

		return
	}

	s.logger.Info("Scheduled run completed", "workflow_id", workflowID, "run_id", run.ID)
}
