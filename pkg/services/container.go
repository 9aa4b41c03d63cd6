// Package services bundles the shared collaborator services injected into
// every node execution context: outbound HTTP, AI generation, database access
// and inventory/SEO helpers. A container is constructed once per run so
// per-run configuration never leaks across runs; executors receive it
// read-only and must not reconfigure services mid-run.
package services

import (
	"context"
	"log/slog"
	"time"
)

// Config carries per-run service configuration.
type Config struct {
	HTTPTimeout time.Duration
	HTTPRetries RetryPolicy

	AIAPIKey  string
	AIBaseURL string
	AIModel   string

	DatabaseURL string
}

// Container holds the collaborator services shared by all nodes of one run.
type Container struct {
	HTTP      HTTPService
	AI        AIService
	Database  DatabaseService
	Inventory *InventoryService

	logger *slog.Logger
}

// NewContainer builds a fresh container for one run. Database access is
// optional: without a DatabaseURL the Database field stays nil and
// database-backed executors fail per node instead of blocking the run.
func NewContainer(ctx context.Context, cfg Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	container := &Container{
		HTTP:      NewHTTPService(cfg.HTTPTimeout, cfg.HTTPRetries, logger),
		AI:        NewAIService(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel, logger),
		Inventory: NewInventoryService(),
		logger:    logger,
	}

	if cfg.DatabaseURL != "" {
		database, err := NewDatabaseService(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}

		container.Database = database
	}

	return container, nil
}

// Close releases resources held by the container's services.
func (c *Container) Close() error {
	if c.Database != nil {
		return c.Database.Close()
	}

	return nil
}
