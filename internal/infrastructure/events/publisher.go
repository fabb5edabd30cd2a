package events

import (
	"context"
	"fmt"
)

// Publisher sends an already encoded event to a subject
type Publisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
	Close() error
}

// NewPublisher builds the publisher selected by driver: "nats", "amqp" or "none"
func NewPublisher(driver, natsURL, amqpURL, exchange string) (Publisher, error) {
	switch driver {
	case "nats":
		return NewNATSPublisher(natsURL)
	case "amqp":
		return NewAMQPPublisher(amqpURL, exchange)
	case "none", "":
		return NewNoopPublisher(), nil
	default:
		return nil, fmt.Errorf("events: unknown driver %q (use nats, amqp, or none)", driver)
	}
}

type noopPublisher struct{}

// NewNoopPublisher drops every event
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (noopPublisher) Close() error { return nil }
