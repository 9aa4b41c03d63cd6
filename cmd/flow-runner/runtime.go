package main

import (
	"context"
	"log/slog"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/cmd"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/engine"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/eventbus"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/log"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/otelhelper"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/persistence"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/registry"
)

// runtime bundles the collaborators every subcommand needs.
type runtime struct {
	logger   *slog.Logger
	store    persistence.Persistence
	registry *registry.Registry
	bus      eventbus.EventBus
	engine   *engine.Engine
}

// newRuntime wires persistence, event bus, registry and engine from the
// global flags.
func newRuntime(ctx context.Context, command *cli.Command, module string) (*runtime, error) {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule(module)

	store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	bus, err := cmd.NewEventBus(command.String("event-bus"), logger)
	if err != nil {
		_ = store.Close(ctx)

		return nil, err
	}

	reg := cmd.NewRegistry(ctx, logger, command.String("plugins-path"))

	eng := engine.NewEngine(reg, cmd.NewServiceFactory(logger), logger).
		WithEventBus(bus).
		WithPersistence(store)

	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		tracer, err := otelhelper.NewTracer(ctx, module)
		if err != nil {
			logger.WarnContext(ctx, "Failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			eng = eng.WithTracer(tracer)
		}
	}

	return &runtime{
		logger:   logger,
		store:    store,
		registry: reg,
		bus:      bus,
		engine:   eng,
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	if err := r.bus.Close(); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
	}

	if err := r.store.Close(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
	}
}
