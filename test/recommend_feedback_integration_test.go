package test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/feedback"
	feedbackstore "github.com/medispatch/engine/core/feedback/store"
	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
	"github.com/medispatch/engine/infra/routing"
)

func seedRoster() *roster.MemoryStore {
	rs := roster.NewMemoryStore()
	shift := time.Now().Add(-3 * time.Hour)
	rs.SetUnits([]model.Unit{
		{ID: "m1", OrganizationID: "org1", ZoneID: "z1", Status: model.StatusAvailable, Capabilities: model.CapabilitySet{model.CapBLS, model.CapALS}, Location: model.Location{Lat: 45.01, Lon: 5.0}, ShiftStart: shift},
		{ID: "m2", OrganizationID: "org1", ZoneID: "z1", Status: model.StatusAvailable, Capabilities: model.CapabilitySet{model.CapBLS, model.CapALS}, Location: model.Location{Lat: 45.05, Lon: 5.0}, ShiftStart: shift},
		{ID: "m3", OrganizationID: "org1", ZoneID: "z2", Status: model.StatusAvailable, Capabilities: model.CapabilitySet{model.CapBLS}, Location: model.Location{Lat: 45.1, Lon: 5.0}, ShiftStart: shift},
	})
	return rs
}

// The full advisory loop: score an incident, persist the run in SQLite,
// record the dispatcher's override and analyze the pattern, with both stores
// reopened in between to prove persistence.
func TestRecommendationFeedbackLoop(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	runPath := filepath.Join(dir, "runs.db")
	fbPath := filepath.Join(dir, "feedback.db")

	runs, err := runstore.NewSQLiteStore(runPath)
	if err != nil {
		t.Fatalf("run store: %v", err)
	}

	rs := seedRoster()
	mock := routing.NewMockEstimator()
	mock.SetTravelTime(model.Location{Lat: 45.01, Lon: 5.0}, 5)
	mock.SetTravelTime(model.Location{Lat: 45.05, Lon: 5.0}, 15)

	hs := history.NewMemoryStore()
	cov := coverage.New(rs, hs, turnaround.New(turnaround.Config{}, nil), nil, coverage.Config{RequiredMinimum: 2}, nil)
	rec, err := recommend.NewRecommender(rs, eta.New(mock, eta.Config{}, nil), fatigue.NewScorer(fatigue.Config{}), cov, recommend.NewWeightResolver(), runs, nil)
	if err != nil {
		t.Fatalf("recommender: %v", err)
	}

	result, err := rec.RecommendUnits(ctx, recommend.Request{
		IncidentID:           "i1",
		OrganizationID:       "org1",
		CallType:             model.CallEmergency,
		SceneLocation:        model.Location{Lat: 45.0, Lon: 5.0},
		RequiredCapabilities: model.CapabilitySet{model.CapALS},
	})
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	if result.Recommendations[0].UnitID != "m1" {
		t.Fatalf("top unit = %s, want m1", result.Recommendations[0].UnitID)
	}
	if err := runs.Close(); err != nil {
		t.Fatalf("close runs: %v", err)
	}

	// Reopen the run store and record the dispatcher's decision.
	runs, err = runstore.NewSQLiteStore(runPath)
	if err != nil {
		t.Fatalf("reopen run store: %v", err)
	}
	defer runs.Close()
	fb, err := feedbackstore.NewSQLiteStore(fbPath)
	if err != nil {
		t.Fatalf("feedback store: %v", err)
	}
	defer fb.Close()

	learner, err := feedback.NewLearner(fb, runs, nil)
	if err != nil {
		t.Fatalf("learner: %v", err)
	}
	err = learner.RecordOutcome(ctx, feedback.OutcomeRequest{
		RunID:          result.RunID,
		Action:         feedback.ActionOverridden,
		SelectedUnitID: "m2",
		OverrideReason: "unit closer",
		ActorID:        "disp-4",
	})
	if err != nil {
		t.Fatalf("record outcome: %v", err)
	}

	out, err := fb.OutcomeByRun(ctx, result.RunID)
	if err != nil {
		t.Fatalf("outcome by run: %v", err)
	}
	if out.SuggestedUnitID != "m1" || out.SelectedUnitID != "m2" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if out.LearningWeight != 2.0 {
		t.Errorf("learning weight = %v, want 2.0 for overrides", out.LearningWeight)
	}

	report, err := learner.AnalyzeOverridePatterns(ctx, "unit_recommendation", 7)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if report.TotalOutcomes != 1 || report.OverrideRate != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.TopOverrideReasons) != 1 || report.TopOverrideReasons[0].Reason != "unit closer" {
		t.Fatalf("unexpected reasons: %+v", report.TopOverrideReasons)
	}
}
