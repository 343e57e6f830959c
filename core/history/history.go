package history

import (
	"context"
	"sync"
	"time"

	"github.com/medispatch/engine/core/model"
)

// Query selects historical call counts. ZoneID and CallType narrow the
// result when set; HasCallType distinguishes "any call type" from the zero
// call type.
type Query struct {
	OrganizationID string
	ZoneID         string
	CallType       model.CallType
	HasCallType    bool
	Start          time.Time
	End            time.Time
}

// Bucket is the call count observed during one clock hour.
type Bucket struct {
	Start time.Time `json:"start"`
	Count float64   `json:"count"`
}

// Store provides read access to historical incident data. The live
// implementation queries the platform's relational store; the engine only
// reads.
type Store interface {
	// HourlyCounts returns per-hour call counts matching the query, ordered
	// by bucket start.
	HourlyCounts(ctx context.Context, q Query) ([]Bucket, error)
	// ActiveIncidents returns the number of incidents currently open in the
	// zone. An empty zone id counts the whole organization.
	ActiveIncidents(ctx context.Context, organizationID, zoneID string) (int, error)
}

type memoryKey struct {
	org  string
	zone string
}

// MemoryStore is an in-memory Store used by tests and simulations.
type MemoryStore struct {
	mu      sync.RWMutex
	buckets []memoryBucket
	active  map[memoryKey]int
}

type memoryBucket struct {
	org      string
	zone     string
	callType model.CallType
	b        Bucket
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{active: make(map[memoryKey]int)}
}

// AddCount records a historical hourly call count.
func (s *MemoryStore) AddCount(org, zone string, ct model.CallType, start time.Time, count float64) {
	s.mu.Lock()
	s.buckets = append(s.buckets, memoryBucket{org: org, zone: zone, callType: ct, b: Bucket{Start: start, Count: count}})
	s.mu.Unlock()
}

// SetActiveIncidents sets the open incident count for a zone.
func (s *MemoryStore) SetActiveIncidents(org, zone string, n int) {
	s.mu.Lock()
	s.active[memoryKey{org, zone}] = n
	s.mu.Unlock()
}

// HourlyCounts returns buckets matching q ordered by start time.
func (s *MemoryStore) HourlyCounts(_ context.Context, q Query) ([]Bucket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Bucket
	for _, mb := range s.buckets {
		if q.OrganizationID != "" && mb.org != q.OrganizationID {
			continue
		}
		if q.ZoneID != "" && mb.zone != q.ZoneID {
			continue
		}
		if q.HasCallType && mb.callType != q.CallType {
			continue
		}
		if !q.Start.IsZero() && mb.b.Start.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && mb.b.Start.After(q.End) {
			continue
		}
		res = append(res, mb.b)
	}
	return res, nil
}

// ActiveIncidents returns the configured open incident count.
func (s *MemoryStore) ActiveIncidents(_ context.Context, organizationID, zoneID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if zoneID != "" {
		return s.active[memoryKey{organizationID, zoneID}], nil
	}
	total := 0
	for k, n := range s.active {
		if k.org == organizationID {
			total += n
		}
	}
	return total, nil
}
