// Package redis provides Redis-backed persistence for workflow definitions
// and run history. Records are JSON values under prefixed keys, with per-
// workflow run indexes kept in sets.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
)

const (
	workflowKeyPrefix = "workflow:"
	runKeyPrefix      = "run:"
	workflowIndexKey  = "workflows"
	runIndexPrefix    = "workflow-runs:"
)

// Persistence implements persistence.Persistence on a Redis instance.
type Persistence struct {
	client goredis.UniversalClient
}

// NewPersistence connects to Redis using a redis:// URL.
func NewPersistence(redisURL string) (*Persistence, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	return &Persistence{client: goredis.NewClient(opts)}, nil
}

func (p *Persistence) Workflows(ctx context.Context) ([]*models.WorkflowDefinition, error) {
	ids, err := p.client.SMembers(ctx, workflowIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	workflows := make([]*models.WorkflowDefinition, 0, len(ids))

	for _, id := range ids {
		def, err := p.WorkflowByID(ctx, id)
		if errors.Is(err, persistence.ErrWorkflowNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		workflows = append(workflows, def)
	}

	return workflows, nil
}

func (p *Persistence) WorkflowByID(ctx context.Context, id string) (*models.WorkflowDefinition, error) {
	data, err := p.client.Get(ctx, workflowKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrWorkflowNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get workflow %s: %w", id, err)
	}

	def := &models.WorkflowDefinition{}
	if err := json.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("failed to decode workflow %s: %w", id, err)
	}

	return def, nil
}

func (p *Persistence) SaveWorkflow(ctx context.Context, def *models.WorkflowDefinition) error {
	data, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to encode workflow %s: %w", def.ID, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, workflowKeyPrefix+def.ID, data, 0)
	pipe.SAdd(ctx, workflowIndexKey, def.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", def.ID, err)
	}

	return nil
}

func (p *Persistence) SaveRun(ctx context.Context, run *models.WorkflowRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run %s: %w", run.ID, err)
	}

	pipe := p.client.TxPipeline()
	pipe.Set(ctx, runKeyPrefix+run.ID, data, 0)
	pipe.SAdd(ctx, runIndexPrefix+run.WorkflowID, run.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.ID, err)
	}

	return nil
}

func (p *Persistence) RunByID(ctx context.Context, id string) (*models.WorkflowRun, error) {
	data, err := p.client.Get(ctx, runKeyPrefix+id).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrRunNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}

	run := &models.WorkflowRun{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, fmt.Errorf("failed to decode run %s: %w", id, err)
	}

	return run, nil
}

func (p *Persistence) RunsByWorkflow(ctx context.Context, workflowID string) ([]*models.WorkflowRun, error) {
	ids, err := p.client.SMembers(ctx, runIndexPrefix+workflowID).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs for workflow %s: %w", workflowID, err)
	}

	runs := make([]*models.WorkflowRun, 0, len(ids))

	for _, id := range ids {
		run, err := p.RunByID(ctx, id)
		if errors.Is(err, persistence.ErrRunNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, nil
}

func (p *Persistence) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func (p *Persistence) Close(_ context.Context) error {
	return p.client.Close()
}
