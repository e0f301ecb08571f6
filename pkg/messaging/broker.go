package messaging

import (
	"context"
)

// Message is one payload received from a channel.
type Message struct {
	Channel string
	Payload []byte
}

// Broker defines the interface for message brokers
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channels ...string) (<-chan Message, error)
	// PSubscribe subscribes to glob patterns such as "bookings.*".
	PSubscribe(ctx context.Context, patterns ...string) (<-chan Message, error)
	Close() error
}

// Publisher defines the interface for publishing messages
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// BookingChannel is the per-clinic channel carrying booking change events.
func BookingChannel(clinicID string) string {
	return "bookings." + clinicID
}

const BookingChannelPattern = "bookings.*"
