package roster

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/medispatch/engine/core/model"
)

// ErrUnitNotFound is returned when a unit id is unknown to the store.
var ErrUnitNotFound = errors.New("roster: unit not found")

// Store provides read access to the current unit roster. Implementations are
// fed by external systems; the engine never writes unit state.
type Store interface {
	// Units returns all units belonging to the organization.
	Units(ctx context.Context, organizationID string) ([]model.Unit, error)
	// Unit returns a single unit by id.
	Unit(ctx context.Context, unitID string) (model.Unit, error)
}

// MemoryStore is an in-memory Store used by tests, simulations and the
// MQTT-fed live roster.
type MemoryStore struct {
	mu    sync.RWMutex
	units map[string]model.Unit
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{units: make(map[string]model.Unit)}
}

// Upsert inserts or replaces a unit record.
func (s *MemoryStore) Upsert(u model.Unit) {
	s.mu.Lock()
	s.units[u.ID] = u
	s.mu.Unlock()
}

// Remove deletes a unit record if present.
func (s *MemoryStore) Remove(unitID string) {
	s.mu.Lock()
	delete(s.units, unitID)
	s.mu.Unlock()
}

// SetUnits replaces the whole roster.
func (s *MemoryStore) SetUnits(units []model.Unit) {
	s.mu.Lock()
	s.units = make(map[string]model.Unit, len(units))
	for _, u := range units {
		s.units[u.ID] = u
	}
	s.mu.Unlock()
}

// Units returns the units of the organization ordered by id so callers see a
// stable iteration order.
func (s *MemoryStore) Units(_ context.Context, organizationID string) ([]model.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Unit, 0, len(s.units))
	for _, u := range s.units {
		if organizationID == "" || u.OrganizationID == organizationID {
			res = append(res, u)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

// Unit returns a single unit by id.
func (s *MemoryStore) Unit(_ context.Context, unitID string) (model.Unit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.units[unitID]
	if !ok {
		return model.Unit{}, ErrUnitNotFound
	}
	return u, nil
}
