// Package runstore persists recommendation runs. Runs are append-only and
// immutable once written; outcome records reference them by id.
package runstore

import (
	"context"
	"errors"
	"time"

	"github.com/medispatch/engine/core/model"
)

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("runstore: run not found")

// Candidate mirrors one scored unit within a run.
type Candidate struct {
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

// Run captures one scoring invocation for one incident.
type Run struct {
	ID                   string                `json:"id"`
	IncidentID           string                `json:"incident_id"`
	OrganizationID       string                `json:"organization_id"`
	CallType             model.CallType        `json:"call_type"`
	SceneLocation        model.Location        `json:"scene_location"`
	RequiredCapabilities model.CapabilitySet   `json:"required_capabilities,omitempty"`
	Confidence           model.ConfidenceLevel `json:"confidence"`
	Reason               string                `json:"reason,omitempty"`
	WeightsUsed          map[string]float64    `json:"weights_used"`
	Candidates           []Candidate           `json:"candidates"`
	RecommendedUnitIDs   []string              `json:"recommended_unit_ids"`
	Degraded             bool                  `json:"degraded,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
}

// Query defines filters for retrieving runs.
type Query struct {
	Start          time.Time
	End            time.Time
	IncidentID     string
	OrganizationID string
}

// Store persists runs and supports querying.
type Store interface {
	Append(ctx context.Context, run Run) error
	Get(ctx context.Context, runID string) (*Run, error)
	Query(ctx context.Context, q Query) ([]Run, error)
	Close() error
}
