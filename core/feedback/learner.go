package feedback

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/medispatch/engine/core/audit"
	"github.com/medispatch/engine/core/logger"
	"github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/recommend/runstore"
)

// Learning weights: overrides carry more signal than acceptances when the
// aggregated patterns are reviewed.
const (
	acceptedLearningWeight   = 1.0
	overriddenLearningWeight = 2.0
)

// recentOverrideWindow is how many of the latest overrides are checked for a
// repeating reason.
const recentOverrideWindow = 5

// Learner records dispatcher outcomes and surfaces override-pattern
// analytics.
type Learner struct {
	store Store
	runs  runstore.Store
	audit audit.Sink
	sink  metrics.MetricsSink
	log   logger.Logger
	now   func() time.Time
}

// NewLearner creates a Learner. runs may be nil when outcome recording is
// used standalone (no suggested-unit resolution).
func NewLearner(st Store, runs runstore.Store, log logger.Logger) (*Learner, error) {
	if st == nil {
		return nil, fmt.Errorf("feedback: nil store provided to NewLearner")
	}
	return &Learner{
		store: st,
		runs:  runs,
		audit: audit.NopSink{},
		sink:  metrics.NopSink{},
		log:   log,
		now:   time.Now,
	}, nil
}

// SetAuditSink configures the immutable audit log.
func (l *Learner) SetAuditSink(s audit.Sink) {
	if s != nil {
		l.audit = s
	}
}

// SetMetricsSink configures the observability sink.
func (l *Learner) SetMetricsSink(s metrics.MetricsSink) {
	if s != nil {
		l.sink = s
	}
}

// OutcomeRequest is the caller-facing input to RecordOutcome.
type OutcomeRequest struct {
	RunID          string `json:"run_id"`
	Action         Action `json:"action"`
	SelectedUnitID string `json:"selected_unit_id,omitempty"`
	OverrideReason string `json:"override_reason,omitempty"`
	ActorID        string `json:"actor_id"`
}

// RecordOutcome records what the dispatcher did with a run. Idempotent per
// run: a second call for the same run is a no-op, with payload drift logged.
func (l *Learner) RecordOutcome(ctx context.Context, req OutcomeRequest) error {
	if req.RunID == "" {
		return fmt.Errorf("feedback: run id is required")
	}
	if req.Action == ActionOverridden && req.OverrideReason == "" {
		return fmt.Errorf("feedback: override reason is required for run %s", req.RunID)
	}

	if existing, err := l.store.OutcomeByRun(ctx, req.RunID); err == nil {
		if existing.SelectedUnitID != req.SelectedUnitID || existing.Action != req.Action ||
			existing.OverrideReason != req.OverrideReason {
			if l.log != nil {
				l.log.Warnf("outcome for run %s already recorded, ignoring drifted payload", req.RunID)
			}
		}
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("feedback: outcome lookup: %w", err)
	}

	o := Outcome{
		ID:                 uuid.NewString(),
		RunID:              req.RunID,
		RecommendationType: "unit_recommendation",
		SelectedUnitID:     req.SelectedUnitID,
		Action:             req.Action,
		Accepted:           req.Action == ActionAccepted,
		Overridden:         req.Action == ActionOverridden,
		OverrideReason:     req.OverrideReason,
		LearningWeight:     acceptedLearningWeight,
		ActorID:            req.ActorID,
		CreatedAt:          l.now(),
	}
	if o.Overridden {
		o.LearningWeight = overriddenLearningWeight
	}

	if l.runs != nil {
		run, err := l.runs.Get(ctx, req.RunID)
		if err != nil {
			return fmt.Errorf("feedback: run %s: %w", req.RunID, err)
		}
		if len(run.RecommendedUnitIDs) > 0 {
			o.SuggestedUnitID = run.RecommendedUnitIDs[0]
		}
		o.RecommendationType = "unit_recommendation"
		if run.Reason != "" {
			o.RecommendationType = "advisory"
		}
	}

	if err := l.store.AppendOutcome(ctx, o); err != nil {
		return fmt.Errorf("feedback: append outcome: %w", err)
	}

	if err := l.audit.Record(ctx, audit.Event{
		ID:        uuid.NewString(),
		Time:      o.CreatedAt,
		Domain:    "dispatch",
		Operation: "record_outcome",
		Inputs:    map[string]any{"run_id": o.RunID, "action": o.Action.String()},
		Outputs:   map[string]any{"outcome_id": o.ID},
		Actor:     req.ActorID,
	}); err != nil && l.log != nil {
		l.log.Errorf("audit record failed: %v", err)
	}

	if rec, ok := l.sink.(metrics.OutcomeRecorder); ok {
		if err := rec.RecordOutcome(metrics.OutcomeEvent{
			RunID:              o.RunID,
			RecommendationType: o.RecommendationType,
			Accepted:           o.Accepted,
			Overridden:         o.Overridden,
			OverrideReason:     o.OverrideReason,
			Time:               o.CreatedAt,
		}); err != nil && l.log != nil {
			l.log.Errorf("metrics sink error: %v", err)
		}
	}
	return nil
}

// RecordUserFeedback stores a qualitative feedback row.
func (l *Learner) RecordUserFeedback(ctx context.Context, f UserFeedback) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	f.ID = uuid.NewString()
	f.CreatedAt = l.now()
	if err := l.store.AppendFeedback(ctx, f); err != nil {
		return fmt.Errorf("feedback: append feedback: %w", err)
	}
	return nil
}

// AnalyzeOverridePatterns aggregates outcomes over a lookback window. The
// report is advisory: it flags systematic issues for weight review but never
// changes weights itself.
func (l *Learner) AnalyzeOverridePatterns(ctx context.Context, recommendationType string, lookbackDays int) (*PatternReport, error) {
	if lookbackDays <= 0 {
		lookbackDays = 30
	}
	since := l.now().AddDate(0, 0, -lookbackDays)
	outcomes, err := l.store.Outcomes(ctx, Query{RecommendationType: recommendationType, Since: since})
	if err != nil {
		return nil, fmt.Errorf("feedback: outcome query: %w", err)
	}

	report := &PatternReport{
		RecommendationType: recommendationType,
		LookbackDays:       lookbackDays,
		TotalOutcomes:      len(outcomes),
		SystematicIssues:   []string{},
		TopOverrideReasons: []ReasonCount{},
	}
	if len(outcomes) == 0 {
		return report, nil
	}

	accepted := make([]float64, len(outcomes))
	overridden := make([]float64, len(outcomes))
	reasonCounts := make(map[string]int)
	var overrides []Outcome
	for i, o := range outcomes {
		if o.Accepted {
			accepted[i] = 1
		}
		if o.Overridden {
			overridden[i] = 1
			overrides = append(overrides, o)
			if o.OverrideReason != "" {
				reasonCounts[o.OverrideReason]++
			}
		}
	}
	report.AcceptedRate = stat.Mean(accepted, nil)
	report.OverrideRate = stat.Mean(overridden, nil)

	for reason, count := range reasonCounts {
		report.TopOverrideReasons = append(report.TopOverrideReasons, ReasonCount{Reason: reason, Count: count})
	}
	// Count-ordered with a deterministic lexical tie-break.
	sort.Slice(report.TopOverrideReasons, func(i, j int) bool {
		a, b := report.TopOverrideReasons[i], report.TopOverrideReasons[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Reason < b.Reason
	})
	if len(report.TopOverrideReasons) > 5 {
		report.TopOverrideReasons = report.TopOverrideReasons[:5]
	}

	if report.OverrideRate > 0.5 {
		report.SystematicIssues = append(report.SystematicIssues,
			fmt.Sprintf("override rate %.0f%% exceeds 50%%", report.OverrideRate*100))
	}
	if reason, ok := repeatedRecentReason(overrides); ok {
		report.SystematicIssues = append(report.SystematicIssues,
			fmt.Sprintf("last %d overrides share reason %q", recentOverrideWindow, reason))
	}
	return report, nil
}

// repeatedRecentReason reports whether the most recent overrides all carry
// the same reason.
func repeatedRecentReason(overrides []Outcome) (string, bool) {
	if len(overrides) < recentOverrideWindow {
		return "", false
	}
	recent := overrides[len(overrides)-recentOverrideWindow:]
	reason := recent[0].OverrideReason
	if reason == "" {
		return "", false
	}
	for _, o := range recent[1:] {
		if o.OverrideReason != reason {
			return "", false
		}
	}
	return reason, true
}
