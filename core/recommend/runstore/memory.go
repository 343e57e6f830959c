package runstore

import (
	"context"
	"sync"
)

// MemoryStore keeps runs in memory. Used by tests and one-shot CLI runs.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []Run
	byID map[string]int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]int)}
}

// Append stores the run.
func (s *MemoryStore) Append(_ context.Context, run Run) error {
	s.mu.Lock()
	s.byID[run.ID] = len(s.runs)
	s.runs = append(s.runs, run)
	s.mu.Unlock()
	return nil
}

// Get returns the run by id.
func (s *MemoryStore) Get(_ context.Context, runID string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[runID]
	if !ok {
		return nil, ErrNotFound
	}
	run := s.runs[i]
	return &run, nil
}

// Query returns runs matching q in insertion order.
func (s *MemoryStore) Query(_ context.Context, q Query) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Run
	for _, r := range s.runs {
		if !q.Start.IsZero() && r.CreatedAt.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.CreatedAt.After(q.End) {
			continue
		}
		if q.IncidentID != "" && r.IncidentID != q.IncidentID {
			continue
		}
		if q.OrganizationID != "" && r.OrganizationID != q.OrganizationID {
			continue
		}
		res = append(res, r)
	}
	return res, nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error { return nil }
