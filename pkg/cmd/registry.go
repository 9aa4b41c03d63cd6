package cmd

import (
	"context"
	"log/slog"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
)

// NewRegistry creates the executor registry with all built-in executors and
// starts the background plugin loader for pluginsPath.
func NewRegistry(ctx context.Context, logger *slog.Logger, pluginsPath string) *registry.Registry {
	reg := registry.NewRegistry(logger)
	reg.RegisterDefaultExecutors()

	if pluginsPath != "" {
		reg.LoadExecutorPlugins(ctx, pluginsPath)
	}

	return reg
}
