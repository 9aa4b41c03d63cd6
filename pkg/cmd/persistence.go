// Package cmd provides common initialization for the command-line entry
// points: persistence, event bus and executor registry construction.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence/file"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence/postgresql"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence/redis"
)

// NewPersistence selects a persistence backend by URL scheme: postgres://
// and postgresql:// open a postgres document store, redis:// a redis store,
// anything else (including bare paths and file://) a file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	scheme, _, _ := strings.Cut(databaseURL, "://")

	logger.InfoContext(ctx, "Initializing persistence", "scheme", scheme)

	switch scheme {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, databaseURL, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize postgres persistence: %w", err)
		}

		return store, nil
	case "redis":
		store, err := redis.NewPersistence(databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis persistence: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
