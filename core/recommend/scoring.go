package recommend

import (
	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/model"
)

// SubScores are the six normalized components combined into a total score.
type SubScores struct {
	ETA          float64
	Availability float64
	Capability   float64
	Fatigue      float64
	Coverage     float64
	Cost         float64
}

// Combine computes the weighted sum clamped to [0,1].
func (s SubScores) Combine(w Weights) float64 {
	total := s.ETA*w.ETA +
		s.Availability*w.Availability +
		s.Capability*w.Capability +
		s.Fatigue*w.Fatigue +
		s.Coverage*w.Coverage +
		s.Cost*w.Cost
	if total < 0 {
		return 0
	}
	if total > 1 {
		return 1
	}
	return total
}

// availabilityScore is 1.0 for fully available units and 0.8 for staging.
// Other statuses never reach scoring; they are filtered by eligibility.
func availabilityScore(s model.UnitStatus) float64 {
	switch s {
	case model.StatusAvailable:
		return 1.0
	case model.StatusStaging:
		return 0.8
	default:
		return 0.0
	}
}

const capabilityBaseline = 0.6

// capabilityScore rewards advanced capabilities additively above the
// baseline, capped at 1.0.
func capabilityScore(set model.CapabilitySet) float64 {
	score := capabilityBaseline
	for _, c := range set {
		if c.IsAdvanced() {
			score += 0.1
		}
	}
	if score > 1 {
		return 1
	}
	return score
}

// coverageScore maps the residual zone risk after a hypothetical dispatch to
// a coverage-contribution score.
func coverageScore(risk coverage.RiskLevel) float64 {
	switch risk {
	case coverage.RiskSafe:
		return 1.0
	case coverage.RiskModerate:
		return 0.65
	case coverage.RiskCritical:
		return 0.3
	case coverage.RiskLastUnit:
		return 0.1
	default:
		return 0.65
	}
}

// costScore gives the cheapest candidate 1.0 and scales the rest by
// minCost/cost. Non-positive costs are neutral.
func costScore(cost, minCost float64) float64 {
	if cost <= 0 || minCost <= 0 {
		return 1.0
	}
	return minCost / cost
}
