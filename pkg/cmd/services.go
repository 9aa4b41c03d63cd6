package cmd

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/engine"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/models"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/services"
)

// NewServiceFactory builds per-run service containers from the process
// environment. AI and database access stay unconfigured when their variables
// are absent; the corresponding executors then fail per node.
func NewServiceFactory(logger *slog.Logger) engine.ServiceFactory {
	config := services.Config{
		AIAPIKey:    os.Getenv("AI_API_KEY"),
		AIBaseURL:   os.Getenv("AI_BASE_URL"),
		AIModel:     os.Getenv("AI_MODEL"),
		DatabaseURL: os.Getenv("SERVICES_DATABASE_URL"),
	}

	if raw := os.Getenv("HTTP_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			config.HTTPTimeout = time.Duration(seconds) * time.Second
		}
	}

	return func(ctx context.Context, run *models.WorkflowRun) (*services.Container, error) {
		return services.NewContainer(ctx, config, logger.With("run_id", run.ID))
	}
}
