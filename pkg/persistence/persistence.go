// Package persistence abstracts storage of workflow definitions and run
// history. Definitions are authored elsewhere and read-only here; runs are
// written by the engine only once they reach a terminal state, so no backend
// ever sees intermediate node state.
package persistence

import (
	"context"
	"errors"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
)

var (
	// ErrWorkflowNotFound indicates a workflow definition was not found.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrRunNotFound indicates a run record was not found.
	ErrRunNotFound = errors.New("run not found")
)

// Persistence is the storage collaborator the application wires around the
// engine.
type Persistence interface {
	Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error)
	WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error)
	SaveWorkflow(ctx context.Context, def *models.WorkflowDefinition) error

	SaveRun(ctx context.Context, run *models.WorkflowRun) error
	RunByID(ctx context.Context, id string) (*models.WorkflowRun, error)
	RunsByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowRun, error)

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
