// Package postgresql provides Postgres-backed persistence for workflow
// definitions and run history. Documents are stored as JSONB alongside the
// columns the dashboard queries on.
package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
)

// Persistence implements persistence.Persistence on PostgreSQL.
type Persistence struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPersistence opens a connection pool and creates the schema when absent.
func NewPersistence(ctx context.Context, databaseURL string, logger *slog.Logger) (*Persistence, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &Persistence{db: db, logger: logger}
	if err := p.migrate(ctx); err != nil {
		_ = db.Close()

		return nil, err
	}

	return p, nil
}

func (p *Persistence) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS workflows (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			document JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS workflow_runs (
			id TEXT PRIMARY KEY,
			workflow_id TEXT NOT NULL,
			status TEXT NOT NULL,
			document JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflow_runs_workflow_id ON workflow_runs (workflow_id)`,
	}

	for _, statement := range statements {
		if _, err := p.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT document FROM workflows ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer p.closeRows(ctx, rows)

	var workflows []*models.WorkflowDefinition

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		def := &models.WorkflowDefinition{}
		if err := json.Unmarshal(document, def); err != nil {
			return nil, fmt.Errorf("failed to decode workflow: %w", err)
		}

		workflows = append(workflows, def)
	}

	return workflows, rows.Err()
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	var document []byte

	err := p.db.QueryRowContext(ctx, `SELECT document FROM workflows WHERE id = $1`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query workflow %s: %w", id, err)
	}

	def := &models.WorkflowDefinition{}
	if err := json.Unmarshal(document, def); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return def, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, def *models.WorkflowDefinition) error {
	document, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", def.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO workflows (id, name, document, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET name = $2, document = $3, updated_at = now()
	`, def.ID, def.Name, document)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", def.ID, err)
	}

	return nil
}

func (p *Persistence) SaveRun(ctx context.Context, run *models.WorkflowRun) error {
	document, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	_, err = p.db.ExecContext(ctx, `
		INSERT INTO workflow_runs (id, workflow_id, status, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET status = $3, document = $4
	`, run.ID, run.WorkflowID, string(run.Status), document)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

func (p *Persistence) RunByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	var document []byte

	err := p.db.QueryRowContext(ctx, `SELECT document FROM workflow_runs WHERE id = $1`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	run := &models.WorkflowRun{}
	if err := json.Unmarshal(document, run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}

	return run, nil
}

func (p *Persistence) RunsByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowRun, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT document FROM workflow_runs WHERE workflow_id = $1 ORDER BY created_at DESC
	`, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs for workflow %s: %w", workflowID, err)
	}

	defer p.closeRows(ctx, rows)

	var runs []*models.WorkflowRun

	for rows.Next() {
		var document []byte
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run := &models.WorkflowRun{}
		if err := json.Unmarshal(document, run); err != nil {
			return nil, fmt.Errorf("failed to decode run: %w", err)
		}

		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Persistence) Close(_ context.Context) error {
	return p.db.Close()
}

func (p *Persistence) closeRows(ctx context.Context, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
