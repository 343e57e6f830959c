package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/model"
)

func captureServer(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*bodies = append(*bodies, strings.TrimSpace(string(b)))
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestInfluxSink_RecordCandidateResult(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	rec := coremetrics.CandidateResult{
		RunID:          "run1",
		IncidentID:     "inc1",
		OrganizationID: "org1",
		CallType:       model.CallEmergency,
		UnitID:         "m3",
		Rank:           1,
		TotalScore:     0.82,
		ETAMinutes:     6.5,
		ETAFallback:    false,
		Confidence:     model.ConfidenceHigh,
		ScoredAt:       now,
	}

	if err := sink.RecordCandidateResult([]coremetrics.CandidateResult{rec}); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("candidate_scored").
		AddTag("run_id", "run1").
		AddTag("incident_id", "inc1").
		AddTag("organization_id", "org1").
		AddTag("call_type", model.CallEmergency.String()).
		AddTag("unit_id", "m3").
		AddTag("confidence", model.ConfidenceHigh.String()).
		AddTag("eta_fallback", "false").
		AddField("rank", 1).
		AddField("total_score", 0.82).
		AddField("eta_minutes", 6.5).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != expected {
		t.Errorf("unexpected bodies: %#v", bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestInfluxSink_RecordCoverage(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.CoverageEvent{
		OrganizationID: "org1",
		ZoneID:         "z1",
		RiskLevel:      "CRITICAL",
		AvailableUnits: 1,
		RequiredMin:    2,
		GapMinutes:     14.5,
		GapKnown:       true,
		Time:           now,
	}
	if err := sink.RecordCoverage(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("zone_coverage").
		AddTag("organization_id", "org1").
		AddTag("zone_id", "z1").
		AddTag("risk_level", "CRITICAL").
		AddField("available_units", 1).
		AddField("required_minimum", 2).
		AddField("gap_minutes", 14.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != exp {
		t.Errorf("bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordOutcome(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.OutcomeEvent{
		RunID:              "run1",
		RecommendationType: "unit_recommendation",
		Overridden:         true,
		OverrideReason:     "unit closer",
		Time:               now,
	}
	if err := sink.RecordOutcome(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("recommendation_outcome").
		AddTag("run_id", "run1").
		AddTag("recommendation_type", "unit_recommendation").
		AddTag("accepted", "false").
		AddTag("overridden", "true").
		AddField("override_reason", "unit closer").
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != exp {
		t.Errorf("bodies: %#v", bodies)
	}
}

func TestInfluxSink_RecordFatigue(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	now := time.Now()
	ev := coremetrics.FatigueEvent{
		UnitID:      "m3",
		Score:       0.55,
		RiskLevel:   "MODERATE",
		HoursOnDuty: 13,
		NearCeiling: false,
		AssessedAt:  now,
	}
	if err := sink.RecordFatigue(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("unit_fatigue").
		AddTag("unit_id", "m3").
		AddTag("risk_level", "MODERATE").
		AddField("score", 0.55).
		AddField("hours_on_duty", 13.0).
		AddField("near_ceiling", false).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if len(bodies) != 1 || bodies[0] != exp {
		t.Errorf("bodies: %#v", bodies)
	}
}
