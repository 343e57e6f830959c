package recommend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/model"
	corerecommend "github.com/medispatch/engine/core/recommend"
	"github.com/medispatch/engine/core/recommend/runstore"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
)

type fixedRoute float64

func (f fixedRoute) EstimateTravelTime(context.Context, model.Location, model.Location, model.CallType) (float64, error) {
	return float64(f), nil
}

func testRoster() *roster.MemoryStore {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{{
		ID:             "m1",
		OrganizationID: "org1",
		ZoneID:         "z1",
		Status:         model.StatusAvailable,
		Capabilities:   model.CapabilitySet{model.CapBLS, model.CapALS},
		Location:       model.Location{Lat: 45.01, Lon: 5.0},
		ShiftStart:     time.Now().Add(-2 * time.Hour),
	}})
	return rs
}

func testRecommender(t *testing.T, rs *roster.MemoryStore) (*corerecommend.Recommender, *runstore.MemoryStore) {
	t.Helper()
	hs := history.NewMemoryStore()
	est := eta.New(fixedRoute(7), eta.Config{}, nil)
	cov := coverage.New(rs, hs, turnaround.New(turnaround.Config{}, nil), nil, coverage.Config{RequiredMinimum: 1}, nil)
	store := runstore.NewMemoryStore()
	rec, err := corerecommend.NewRecommender(rs, est, fatigue.NewScorer(fatigue.Config{}), cov, corerecommend.NewWeightResolver(), store, nil)
	if err != nil {
		t.Fatalf("NewRecommender: %v", err)
	}
	return rec, store
}

func TestRecommendHandler_AuthAndPost(t *testing.T) {
	rec, _ := testRecommender(t, testRoster())
	h := NewRecommendHandler(rec, "tok")

	body, _ := json.Marshal(corerecommend.Request{
		IncidentID:     "i1",
		OrganizationID: "org1",
		CallType:       model.CallEmergency,
		SceneLocation:  model.Location{Lat: 45.0, Lon: 5.0},
	})

	req := httptest.NewRequest("POST", "/api/recommendations", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest("POST", "/api/recommendations", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var out corerecommend.Recommendation
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Recommendations) != 1 || out.Recommendations[0].UnitID != "m1" {
		t.Fatalf("unexpected recommendations: %+v", out.Recommendations)
	}

	req = httptest.NewRequest("GET", "/api/recommendations", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET, got %d", rr.Code)
	}
}

func TestRecommendHandler_BadRequest(t *testing.T) {
	rec, _ := testRecommender(t, testRoster())
	h := NewRecommendHandler(rec, "")

	req := httptest.NewRequest("POST", "/api/recommendations", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rr.Code)
	}

	// Missing incident fields surface as validation errors.
	body, _ := json.Marshal(corerecommend.Request{OrganizationID: "org1"})
	req = httptest.NewRequest("POST", "/api/recommendations", bytes.NewReader(body))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid request, got %d", rr.Code)
	}
}

func TestRunsHandler_Filters(t *testing.T) {
	store := runstore.NewMemoryStore()
	for _, run := range []runstore.Run{
		{ID: "r1", IncidentID: "i1", OrganizationID: "org1", CreatedAt: time.Now()},
		{ID: "r2", IncidentID: "i2", OrganizationID: "org1", CreatedAt: time.Now()},
	} {
		if err := store.Append(context.Background(), run); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h := NewRunsHandler(store, "tok")

	req := httptest.NewRequest("GET", "/api/recommendations/runs?incident_id=i1", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var runs []runstore.Run
	if err := json.NewDecoder(rr.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "r1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	req = httptest.NewRequest("GET", "/api/recommendations/runs", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestFatigueHandler(t *testing.T) {
	h := NewFatigueHandler(testRoster(), fatigue.NewScorer(fatigue.Config{}), "")

	req := httptest.NewRequest("GET", "/api/units/fatigue?organization_id=org1", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out []fatigue.Assessment
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one assessment, got %d", len(out))
	}
}

func TestFatigueHandlerUnitFilter(t *testing.T) {
	rs := testRoster()
	rs.Upsert(model.Unit{
		ID:             "m2",
		OrganizationID: "org1",
		ZoneID:         "z1",
		Status:         model.StatusAvailable,
		Capabilities:   model.CapabilitySet{model.CapBLS},
		ShiftStart:     time.Now().Add(-10 * time.Hour),
	})
	h := NewFatigueHandler(rs, fatigue.NewScorer(fatigue.Config{}), "")

	req := httptest.NewRequest("GET", "/api/units/fatigue?unit_id=m2", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var out []fatigue.Assessment
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].UnitID != "m2" {
		t.Fatalf("expected assessment for m2 only, got %+v", out)
	}

	req = httptest.NewRequest("GET", "/api/units/fatigue?unit_id=ghost", nil)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown unit, got %d", rr.Code)
	}
}
