package audit

import (
	"context"
	"time"
)

// Event is one immutable audit record describing an engine operation.
type Event struct {
	ID         string         `json:"id"`
	Time       time.Time      `json:"time"`
	Domain     string         `json:"domain"`
	Operation  string         `json:"operation"`
	Inputs     map[string]any `json:"inputs,omitempty"`
	Outputs    map[string]any `json:"outputs,omitempty"`
	Confidence string         `json:"confidence,omitempty"`
	Actor      string         `json:"actor,omitempty"`
}

// Sink records audit events. Recording is fire-and-forget from the engine's
// perspective but implementations must not silently drop events.
type Sink interface {
	Record(ctx context.Context, ev Event) error
	Close() error
}

// NopSink discards events. Used when auditing is disabled in configuration.
type NopSink struct{}

func (NopSink) Record(context.Context, Event) error { return nil }
func (NopSink) Close() error                        { return nil }
