package recommend

import (
	"sync"

	"github.com/medispatch/engine/core/model"
)

// Weights holds the six scoring coefficients. They conceptually sum to 1.0;
// Normalize enforces it before scoring.
type Weights struct {
	ETA          float64 `json:"eta"`
	Availability float64 `json:"availability"`
	Capability   float64 `json:"capability"`
	Fatigue      float64 `json:"fatigue"`
	Coverage     float64 `json:"coverage"`
	Cost         float64 `json:"cost"`
}

// Normalize scales the weights so they sum to 1. Zero-sum weights fall back
// to the emergency defaults rather than producing all-zero scores.
func (w Weights) Normalize() Weights {
	sum := w.ETA + w.Availability + w.Capability + w.Fatigue + w.Coverage + w.Cost
	if sum <= 0 {
		return defaultWeights[model.CallEmergency]
	}
	return Weights{
		ETA:          w.ETA / sum,
		Availability: w.Availability / sum,
		Capability:   w.Capability / sum,
		Fatigue:      w.Fatigue / sum,
		Coverage:     w.Coverage / sum,
		Cost:         w.Cost / sum,
	}
}

// Map returns the weights keyed by sub-score name, as persisted with runs.
func (w Weights) Map() map[string]float64 {
	return map[string]float64{
		"eta":          w.ETA,
		"availability": w.Availability,
		"capability":   w.Capability,
		"fatigue":      w.Fatigue,
		"coverage":     w.Coverage,
		"cost":         w.Cost,
	}
}

// Compiled-in defaults per call type. Emergency calls weight ETA highest,
// interfacility transports weight cost higher and fatigue lower, air-medical
// weights fatigue highest.
var defaultWeights = map[model.CallType]Weights{
	model.CallEmergency: {
		ETA: 0.35, Availability: 0.15, Capability: 0.15, Fatigue: 0.10, Coverage: 0.15, Cost: 0.10,
	},
	model.CallRoutine: {
		ETA: 0.20, Availability: 0.15, Capability: 0.15, Fatigue: 0.15, Coverage: 0.15, Cost: 0.20,
	},
	model.CallInterfacility: {
		ETA: 0.15, Availability: 0.15, Capability: 0.15, Fatigue: 0.05, Coverage: 0.15, Cost: 0.35,
	},
	model.CallAirMedical: {
		ETA: 0.20, Availability: 0.10, Capability: 0.15, Fatigue: 0.30, Coverage: 0.15, Cost: 0.10,
	},
}

// DefaultWeights returns the compiled-in weights for a call type.
func DefaultWeights(ct model.CallType) Weights {
	if w, ok := defaultWeights[ct]; ok {
		return w
	}
	return defaultWeights[model.CallEmergency]
}

type weightKey struct {
	org string
	ct  model.CallType
}

// WeightResolver resolves scoring weights per (organization, call type):
// organization override first, then call-type default, then the compiled-in
// constants. Resolution happens once per run; concurrent updates never
// affect a run in flight.
type WeightResolver struct {
	mu        sync.RWMutex
	overrides map[weightKey]Weights
	defaults  map[model.CallType]Weights
}

// NewWeightResolver creates a resolver with no overrides configured.
func NewWeightResolver() *WeightResolver {
	return &WeightResolver{
		overrides: make(map[weightKey]Weights),
		defaults:  make(map[model.CallType]Weights),
	}
}

// SetOverride installs an organization-specific weight row.
func (r *WeightResolver) SetOverride(orgID string, ct model.CallType, w Weights) {
	r.mu.Lock()
	r.overrides[weightKey{orgID, ct}] = w
	r.mu.Unlock()
}

// SetDefault installs a call-type default weight row.
func (r *WeightResolver) SetDefault(ct model.CallType, w Weights) {
	r.mu.Lock()
	r.defaults[ct] = w
	r.mu.Unlock()
}

// Resolve returns the normalized weights for the organization and call type.
func (r *WeightResolver) Resolve(orgID string, ct model.CallType) Weights {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := r.overrides[weightKey{orgID, ct}]; ok {
		return w.Normalize()
	}
	if w, ok := r.defaults[ct]; ok {
		return w.Normalize()
	}
	return DefaultWeights(ct).Normalize()
}
