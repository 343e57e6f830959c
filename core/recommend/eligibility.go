package recommend

import (
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/model"
)

// ExclusionReason explains why a unit failed the eligibility filter.
type ExclusionReason int

const (
	ExclMissingCapability ExclusionReason = iota
	ExclUnavailable
	ExclOutOfService
	ExclMaintenance
	ExclFlightCeiling
)

// String returns the short reason code.
func (r ExclusionReason) String() string {
	switch r {
	case ExclMissingCapability:
		return "missing_capability"
	case ExclUnavailable:
		return "unavailable"
	case ExclOutOfService:
		return "out_of_service"
	case ExclMaintenance:
		return "maintenance"
	case ExclFlightCeiling:
		return "flight_hour_ceiling"
	default:
		return "unknown"
	}
}

// Exclusion records one filtered-out unit with its reason.
type Exclusion struct {
	UnitID string
	Reason ExclusionReason
}

// EligibilityFilter reduces the unit pool to candidates capable of handling
// an incident. The flight-hour ceiling is a regulatory hard gate: no score
// can bring an excluded air unit back.
type EligibilityFilter struct {
	fatigue fatigue.Scorer
}

// NewEligibilityFilter creates a filter sharing the fatigue scorer's
// regulatory configuration.
func NewEligibilityFilter(fs fatigue.Scorer) EligibilityFilter {
	return EligibilityFilter{fatigue: fs}
}

// Filter returns the eligible subset and the per-unit exclusion reasons. An
// empty result is a valid outcome, not an error.
func (f EligibilityFilter) Filter(units []model.Unit, required model.CapabilitySet, ct model.CallType) ([]model.Unit, []Exclusion) {
	var eligible []model.Unit
	var excluded []Exclusion
	for _, u := range units {
		switch {
		case u.OutOfService:
			excluded = append(excluded, Exclusion{u.ID, ExclOutOfService})
		case u.InMaintenanceCycle:
			excluded = append(excluded, Exclusion{u.ID, ExclMaintenance})
		case u.Status != model.StatusAvailable && u.Status != model.StatusStaging:
			excluded = append(excluded, Exclusion{u.ID, ExclUnavailable})
		case !u.Capabilities.HasAll(required):
			excluded = append(excluded, Exclusion{u.ID, ExclMissingCapability})
		case ct == model.CallAirMedical && f.fatigue.OverCeiling(u):
			excluded = append(excluded, Exclusion{u.ID, ExclFlightCeiling})
		default:
			eligible = append(eligible, u)
		}
	}
	return eligible, excluded
}
