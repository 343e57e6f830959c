package routing

import (
	"context"
	"sync"

	"github.com/medispatch/engine/core/model"
)

// MockEstimator returns configurable travel times keyed by unit origin. It is
// used in development setups and tests where no routing provider exists.
type MockEstimator struct {
	mu sync.RWMutex
	// SpeedKMH converts great-circle distance into minutes when no fixed
	// answer matches.
	SpeedKMH float64
	fixed    map[model.Location]float64
	err      error
}

// NewMockEstimator returns a mock with a default speed of 50 km/h.
func NewMockEstimator() *MockEstimator {
	return &MockEstimator{SpeedKMH: 50, fixed: make(map[model.Location]float64)}
}

// SetTravelTime pins the answer for estimates originating at origin.
func (m *MockEstimator) SetTravelTime(origin model.Location, minutes float64) {
	m.mu.Lock()
	m.fixed[origin] = minutes
	m.mu.Unlock()
}

// Fail makes every estimate return err until called again with nil.
func (m *MockEstimator) Fail(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

// EstimateTravelTime implements eta.RouteEstimator.
func (m *MockEstimator) EstimateTravelTime(ctx context.Context, origin, dest model.Location, _ model.CallType) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	if minutes, ok := m.fixed[origin]; ok {
		return minutes, nil
	}
	return origin.DistanceKM(dest) / m.SpeedKMH * 60, nil
}
