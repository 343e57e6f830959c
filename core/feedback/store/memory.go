package store

import (
	"context"
	"sync"

	"github.com/medispatch/engine/core/feedback"
)

// MemoryStore keeps outcomes and feedback in memory.
type MemoryStore struct {
	mu       sync.RWMutex
	outcomes []feedback.Outcome
	byRun    map[string]int
	feedback []feedback.UserFeedback
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byRun: make(map[string]int)}
}

// AppendOutcome stores the outcome.
func (s *MemoryStore) AppendOutcome(_ context.Context, o feedback.Outcome) error {
	s.mu.Lock()
	s.byRun[o.RunID] = len(s.outcomes)
	s.outcomes = append(s.outcomes, o)
	s.mu.Unlock()
	return nil
}

// OutcomeByRun returns the outcome recorded for the run, if any.
func (s *MemoryStore) OutcomeByRun(_ context.Context, runID string) (*feedback.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byRun[runID]
	if !ok {
		return nil, ErrNotFound
	}
	o := s.outcomes[i]
	return &o, nil
}

// Outcomes returns outcomes matching q in insertion order.
func (s *MemoryStore) Outcomes(_ context.Context, q Query) ([]feedback.Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []feedback.Outcome
	for _, o := range s.outcomes {
		if q.RecommendationType != "" && o.RecommendationType != q.RecommendationType {
			continue
		}
		if !q.Since.IsZero() && o.CreatedAt.Before(q.Since) {
			continue
		}
		res = append(res, o)
	}
	return res, nil
}

// AppendFeedback stores the feedback row.
func (s *MemoryStore) AppendFeedback(_ context.Context, f feedback.UserFeedback) error {
	s.mu.Lock()
	s.feedback = append(s.feedback, f)
	s.mu.Unlock()
	return nil
}

// Feedback returns all stored feedback rows.
func (s *MemoryStore) Feedback() []feedback.UserFeedback {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]feedback.UserFeedback(nil), s.feedback...)
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
