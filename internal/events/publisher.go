package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the pricing service
const (
	TypeQuoteComputed     = "pricing.quote.computed"
	TypeSchedulesAdjusted = "pricing.schedules.adjusted"
)

// Event represents a pricing domain event
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Aggregate string                 `json:"aggregate"`
	Data      map[string]interface{} `json:"data"`
	Timestamp int64                  `json:"timestamp"`
	Version   int                    `json:"version"`
}

// NewEvent creates a new event
func NewEvent(eventType, aggregate string, data map[string]interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Aggregate: aggregate,
		Data:      data,
		Timestamp: time.Now().Unix(),
		Version:   1,
	}
}

// Publisher defines the interface for publishing events
type Publisher interface {
	// Publish publishes an event
	Publish(ctx context.Context, event *Event) error

	// Close closes the publisher
	Close() error
}

// NoopPublisher discards every event. Used in tests and when no brokers are
// configured.
type NoopPublisher struct{}

// Publish implements Publisher for NoopPublisher
func (NoopPublisher) Publish(ctx context.Context, event *Event) error {
	return nil
}

// Close implements Publisher for NoopPublisher
func (NoopPublisher) Close() error {
	return nil
}
