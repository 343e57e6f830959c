package feedback

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no outcome exists for a run.
var ErrNotFound = errors.New("feedback store: outcome not found")

// Query selects outcomes.
type Query struct {
	RecommendationType string
	Since              time.Time
}

// Store persists outcome and feedback rows. Both are append-only.
type Store interface {
	AppendOutcome(ctx context.Context, o Outcome) error
	OutcomeByRun(ctx context.Context, runID string) (*Outcome, error)
	Outcomes(ctx context.Context, q Query) ([]Outcome, error)
	AppendFeedback(ctx context.Context, f UserFeedback) error
	Close() error
}
