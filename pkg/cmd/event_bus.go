package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/channels/gochannel"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/channels/kafka"
	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/eventbus"
)

// NewEventBus builds the run event bus. "kafka" publishes across processes;
// everything else falls back to an in-process GoChannel pub/sub, which is
// enough for the single-binary runner.
func NewEventBus(provider string, logger *slog.Logger) (eventbus.EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermillLogger, "flow-runner")
		if err != nil {
			return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		pub, sub, err := gochannel.CreateChannel(watermillLogger)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-process pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	}
}
