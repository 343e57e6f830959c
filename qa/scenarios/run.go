package scenarios

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/history"
	coremetrics "github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
	"github.com/medispatch/engine/infra/logger"
	"github.com/medispatch/engine/infra/metrics"
)

// routeTable answers travel-time queries by unit origin. Unknown origins
// return an error so the estimator exercises its geometric fallback.
type routeTable map[model.Location]float64

func (r routeTable) EstimateTravelTime(_ context.Context, origin, _ model.Location, _ model.CallType) (float64, error) {
	if minutes, ok := r[origin]; ok {
		return minutes, nil
	}
	return 0, fmt.Errorf("no route from %.4f,%.4f", origin.Lat, origin.Lon)
}

func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(coremetrics.Config{}, reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	now := time.Now()
	rs := roster.NewMemoryStore()
	routes := routeTable{}
	for _, def := range sc.Units {
		u, err := def.ToModel(now)
		if err != nil {
			t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		rs.Upsert(u)
		if minutes, ok := sc.TravelMinutes[u.ID]; ok {
			routes[u.Location] = minutes
		}
	}

	ct, ok := model.ParseCallType(sc.Incident.CallType)
	if !ok {
		t.Fatalf("scenario %s: unknown call type %q", sc.Name, sc.Incident.CallType)
	}
	caps := make(model.CapabilitySet, 0, len(sc.Incident.Capabilities))
	for _, c := range sc.Incident.Capabilities {
		parsed, ok := model.ParseCapability(c)
		if !ok {
			t.Fatalf("scenario %s: unknown capability %q", sc.Name, c)
		}
		caps = append(caps, parsed)
	}

	hs := history.NewMemoryStore()
	est := eta.New(routes, eta.Config{}, logger.NopLogger{})
	cov := coverage.New(rs, hs, turnaround.New(turnaround.Config{}, nil), nil, coverage.Config{RequiredMinimum: 2}, logger.NopLogger{})
	rec, err := recommend.NewRecommender(rs, est, fatigue.NewScorer(fatigue.Config{}), cov, recommend.NewWeightResolver(), runstore.NewMemoryStore(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("recommender: %v", err)
	}
	rec.SetMetricsSink(sink)

	topN := len(sc.Expected.Order)
	result, err := rec.RecommendUnits(context.Background(), recommend.Request{
		IncidentID:           "qa-" + sc.Name,
		OrganizationID:       "org1",
		CallType:             ct,
		SceneLocation:        model.Location{Lat: sc.Incident.Lat, Lon: sc.Incident.Lon},
		RequiredCapabilities: caps,
		TopN:                 topN,
	})
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	if got := len(result.Recommendations); got != topN {
		t.Fatalf("scenario %s: got %d recommendations, want %d", sc.Name, got, topN)
	}
	for i, want := range sc.Expected.Order {
		if got := result.Recommendations[i].UnitID; got != want {
			t.Errorf("scenario %s: rank %d = %s, want %s", sc.Name, i+1, got, want)
		}
	}
	if sc.Expected.Confidence != "" {
		want, ok := model.ParseConfidenceLevel(sc.Expected.Confidence)
		if !ok {
			t.Fatalf("scenario %s: unknown confidence %q", sc.Name, sc.Expected.Confidence)
		}
		if result.Confidence != want {
			t.Errorf("scenario %s: confidence = %s, want %s", sc.Name, result.Confidence, want)
		}
	}
	for _, id := range sc.Expected.Excluded {
		for _, cand := range result.AllCandidates {
			if cand.UnitID == id {
				t.Errorf("scenario %s: unit %s should have been excluded", sc.Name, id)
			}
		}
	}
}
