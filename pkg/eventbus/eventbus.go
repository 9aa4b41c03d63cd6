// Package eventbus publishes run lifecycle events over a watermill
// pub/sub: an in-process GoChannel by default, Kafka when wired in by the
// application layer.
package eventbus

import (
	"context"

	"github.com/DhanaADS/aggrandize-dashboard-sub004/pkg/events"
)

// EventHandler consumes one decoded event.
type EventHandler func(ctx context.Context, event events.Event) error

// EventBus is the engine's outbound notification channel.
type EventBus interface {
	Publish(ctx context.Context, key string, event events.Event) error
	Subscribe(ctx context.Context) error
	Handle(eventType events.EventType, handler EventHandler)
	GenerateID() string
	Close() error
}
