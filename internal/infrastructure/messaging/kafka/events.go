package kafka

import (
	"context"
	"time"
)

// Event types emitted over the acquisition topic.
const (
	EventRunStarted    = "run_started"
	EventStepStarted   = "step_started"
	EventStepCompleted = "step_completed"
	EventStepFailed    = "step_failed"
	EventRunCompleted  = "run_completed"
	EventRunSuperseded = "run_superseded"
)

// RunEvent is the wire form of an acquisition lifecycle event.  Keyed by run
// ID so all events for one run land on the same partition in order.
type RunEvent struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Category  string    `json:"category,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventSink receives acquisition lifecycle events.  Implementations must be
// safe for concurrent use; publish failures are logged, never surfaced to the
// acquisition flow.
type EventSink interface {
	Publish(ctx context.Context, event RunEvent) error
	Close() error
}

// NopSink discards all events.  Used when Kafka is disabled.
type NopSink struct{}

func (NopSink) Publish(context.Context, RunEvent) error { return nil }
func (NopSink) Close() error                            { return nil }
