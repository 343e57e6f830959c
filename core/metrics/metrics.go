package metrics

import (
	"time"

	"github.com/medispatch/engine/core/model"
)

// CandidateResult represents one scored candidate within a recommendation run.
type CandidateResult struct {
	RunID          string
	IncidentID     string
	OrganizationID string
	CallType       model.CallType
	UnitID         string
	Rank           int
	TotalScore     float64
	ETAMinutes     float64
	ETAFallback    bool
	Confidence     model.ConfidenceLevel
	ScoredAt       time.Time
}

// MetricsSink records scored recommendation runs for observability purposes.
type MetricsSink interface {
	RecordCandidateResult(results []CandidateResult) error
}

// CoverageEvent is a snapshot of zone coverage risk.
type CoverageEvent struct {
	OrganizationID string
	ZoneID         string
	RiskLevel      string
	AvailableUnits int
	RequiredMin    int
	GapMinutes     float64
	GapKnown       bool
	Time           time.Time
}

// CoverageRecorder records coverage risk snapshots.
type CoverageRecorder interface {
	RecordCoverage(ev CoverageEvent) error
}

// ForecastEvent captures a demand forecast emission.
type ForecastEvent struct {
	OrganizationID   string
	ZoneID           string
	CallType         model.CallType
	HorizonHours     float64
	PredictedVolume  float64
	BaselineVolume   float64
	SurgeProbability float64
	Confidence       model.ConfidenceLevel
	SampleSize       int
	Time             time.Time
}

// ForecastRecorder records demand forecasts.
type ForecastRecorder interface {
	RecordForecast(ev ForecastEvent) error
}

// OutcomeEvent captures a dispatcher decision against a run.
type OutcomeEvent struct {
	RunID              string
	RecommendationType string
	Accepted           bool
	Overridden         bool
	OverrideReason     string
	Time               time.Time
}

// OutcomeRecorder records dispatcher outcomes.
type OutcomeRecorder interface {
	RecordOutcome(ev OutcomeEvent) error
}

// RoutingLatency is the observed latency of one travel-time estimate.
type RoutingLatency struct {
	UnitID   string
	Fallback bool
	Latency  time.Duration
	Time     time.Time
}

// RoutingLatencyRecorder is implemented by sinks able to record routing
// provider latency.
type RoutingLatencyRecorder interface {
	RecordRoutingLatency(latencies []RoutingLatency) error
}

// FatigueEvent is a per-unit fatigue assessment.
type FatigueEvent struct {
	UnitID      string
	Score       float64
	RiskLevel   string
	HoursOnDuty float64
	NearCeiling bool
	AssessedAt  time.Time
}

// FatigueRecorder records fatigue assessments.
type FatigueRecorder interface {
	RecordFatigue(ev FatigueEvent) error
}

// NopSink implements MetricsSink and all recorder extensions with no-op
// methods.
type NopSink struct{}

func (NopSink) RecordCandidateResult([]CandidateResult) error { return nil }
func (NopSink) RecordCoverage(CoverageEvent) error            { return nil }
func (NopSink) RecordForecast(ForecastEvent) error            { return nil }
func (NopSink) RecordOutcome(OutcomeEvent) error              { return nil }
func (NopSink) RecordRoutingLatency([]RoutingLatency) error   { return nil }
func (NopSink) RecordFatigue(FatigueEvent) error              { return nil }
