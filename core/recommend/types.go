package recommend

import (
	"time"

	"github.com/medispatch/engine/core/model"
)

// Request describes one recommendation invocation.
type Request struct {
	IncidentID           string              `json:"incident_id"`
	OrganizationID       string              `json:"organization_id"`
	ZoneID               string              `json:"zone_id,omitempty"`
	CallType             model.CallType      `json:"call_type"`
	SceneLocation        model.Location      `json:"scene_location"`
	RequiredCapabilities model.CapabilitySet `json:"required_capabilities,omitempty"`
	// TopN limits the recommended list; zero means the default of 3.
	TopN int `json:"top_n,omitempty"`
	// RequestedBy identifies the dispatcher for the audit trail.
	RequestedBy string `json:"requested_by,omitempty"`
}

// CandidateScore is the full per-unit score breakdown within a run.
type CandidateScore struct {
	UnitID            string  `json:"unit_id"`
	UnitName          string  `json:"unit_name,omitempty"`
	Rank              int     `json:"rank"`
	ETAMinutes        float64 `json:"eta_minutes"`
	ETAFallback       bool    `json:"eta_fallback,omitempty"`
	ETAScore          float64 `json:"eta_score"`
	AvailabilityScore float64 `json:"availability_score"`
	CapabilityScore   float64 `json:"capability_score"`
	FatigueScore      float64 `json:"fatigue_score"`
	CoverageScore     float64 `json:"coverage_score"`
	CostScore         float64 `json:"cost_score"`
	TotalScore        float64 `json:"total_score"`
	Explanation       string  `json:"explanation,omitempty"`
}

// Recommendation is the ranked advisory output of one run. It is never a
// dispatch decision: the dispatcher always makes the final call.
type Recommendation struct {
	RunID           string                `json:"run_id"`
	IncidentID      string                `json:"incident_id"`
	OrganizationID  string                `json:"organization_id"`
	CallType        model.CallType        `json:"call_type"`
	Confidence      model.ConfidenceLevel `json:"confidence"`
	Reason          string                `json:"reason,omitempty"`
	Recommendations []CandidateScore      `json:"recommendations"`
	AllCandidates   []CandidateScore      `json:"all_candidates"`
	WeightsUsed     Weights               `json:"weights_used"`
	// Degraded marks runs where a collaborator failed and the engine
	// answered anyway with reduced trust.
	Degraded  bool      `json:"degraded,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunEvent is published on the event bus after each completed run.
type RunEvent struct {
	RunID      string
	IncidentID string
	CallType   model.CallType
	Confidence model.ConfidenceLevel
	Candidates int
	Degraded   bool
}
