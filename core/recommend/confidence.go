package recommend

import "github.com/medispatch/engine/core/model"

// ReasonNoEligibleUnits is the explicit reason code returned with an empty
// ranked list.
const ReasonNoEligibleUnits = "no eligible units"

// classifyConfidence assigns a confidence level to a ranked score list. HIGH
// requires a strong top score and a clear gap to the runner-up; a single
// candidate competes against an implicit zero.
func classifyConfidence(ranked []CandidateScore) (model.ConfidenceLevel, string) {
	if len(ranked) == 0 {
		return model.ConfidenceLow, ReasonNoEligibleUnits
	}
	top := ranked[0].TotalScore
	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].TotalScore
	}
	switch {
	case top >= 0.8 && top-second >= 0.15:
		return model.ConfidenceHigh, ""
	case top >= 0.6:
		return model.ConfidenceMedium, ""
	default:
		return model.ConfidenceLow, ""
	}
}
