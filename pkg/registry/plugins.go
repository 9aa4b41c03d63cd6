package registry

import (
	"context"
	"io/fs"
	"os"
	"plugin"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/protocol"
)

// LoadExecutorPlugins registers a background loader that opens every .so file
// under pluginsPath and looks up its exported Executor symbol. A plugin that
// fails to open or does not export the symbol is logged and skipped; the rest
// of the directory still loads.
func (r *Registry) LoadExecutorPlugins(ctx context.Context, pluginsPath string) {
	r.RegisterLoader(ctx, func(ctx context.Context) ([]protocol.Executor, error) {
		root := os.DirFS(pluginsPath)

		paths, err := fs.Glob(root, "*.so")
		if err != nil {
			return nil, err
		}

		logger := r.logger.With("path", pluginsPath)
		logger.InfoContext(ctx, "Loading executor plugins", "count", len(paths))

		executors := make([]protocol.Executor, 0, len(paths))

		for _, p := range paths {
			plg, err := plugin.Open(pluginsPath + "/" + p)
			if err != nil {
				logger.ErrorContext(ctx, "Failed to open plugin, skipping", "plugin", p, "error", err)

				continue
			}

			symbol, err := plg.Lookup("Executor")
			if err != nil {
				logger.ErrorContext(ctx, "Plugin does not export Executor, skipping", "plugin", p, "error", err)

				continue
			}

			executor, ok := symbol.(protocol.Executor)
			if !ok {
				logger.ErrorContext(ctx, "Plugin Executor has wrong type, skipping", "plugin", p)

				continue
			}

			executors = append(executors, executor)
			logger.InfoContext(ctx, "Loaded executor plugin", "plugin", p, "node_type", executor.Type())
		}

		return executors, nil
	})
}
