package messaging

import (
	"context"
)

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. Used when messaging is disabled in config.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
