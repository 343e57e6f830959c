package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/medispatch/engine/app"
	"github.com/medispatch/engine/config"
	corecoverage "github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/recommend"
)

func writeServiceFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	shift := time.Now().Add(-2 * time.Hour).Format(time.RFC3339)
	rosterYAML := fmt.Sprintf(`- id: m1
  organization_id: org1
  zone_id: north
  status: available
  capabilities: [BLS, ALS]
  location: {lat: 45.01, lon: 5.0}
  shift_start: %q
- id: m2
  organization_id: org1
  zone_id: north
  status: available
  capabilities: [BLS]
  location: {lat: 45.03, lon: 5.0}
  shift_start: %q
`, shift, shift)
	rosterPath := filepath.Join(dir, "units.yaml")
	if err := os.WriteFile(rosterPath, []byte(rosterYAML), 0o644); err != nil {
		t.Fatalf("write roster: %v", err)
	}

	cfgYAML := fmt.Sprintf(`api:
  token: "tok"
engine:
  coverage:
    required_minimum: 2
roster:
  mode: static
  file: %q
storage:
  run_store_path: %q
  feedback_store_path: %q
audit:
  file:
    path: %q
`, rosterPath,
		filepath.Join(dir, "runs.db"),
		filepath.Join(dir, "feedback.db"),
		filepath.Join(dir, "audit.jsonl"))
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfgYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

// Boots the whole service from a config file and walks the advisory flow
// over HTTP: recommend, assess coverage, record the outcome, read patterns.
func TestServiceHTTPFlow(t *testing.T) {
	ctx := context.Background()
	cfg, err := config.Load(writeServiceFixtures(t))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	svc, err := app.New(ctx, cfg)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	}()

	srv := httptest.NewServer(svc.Handler())
	defer srv.Close()

	do := func(method, path string, body any) *http.Response {
		t.Helper()
		var buf bytes.Buffer
		if body != nil {
			if err := json.NewEncoder(&buf).Encode(body); err != nil {
				t.Fatalf("encode: %v", err)
			}
		}
		req, err := http.NewRequest(method, srv.URL+path, &buf)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		req.Header.Set("Authorization", "Bearer tok")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s %s: %v", method, path, err)
		}
		return resp
	}

	// Recommendation.
	resp := do("POST", "/api/recommendations", recommend.Request{
		IncidentID:     "i1",
		OrganizationID: "org1",
		CallType:       model.CallEmergency,
		SceneLocation:  model.Location{Lat: 45.0, Lon: 5.0},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommend status %d", resp.StatusCode)
	}
	var rec recommend.Recommendation
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode recommendation: %v", err)
	}
	resp.Body.Close()
	if len(rec.Recommendations) != 2 || rec.Recommendations[0].UnitID != "m1" {
		t.Fatalf("unexpected recommendations: %+v", rec.Recommendations)
	}

	// Coverage.
	resp = do("GET", "/api/coverage?organization_id=org1&zone_id=north", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("coverage status %d", resp.StatusCode)
	}
	var snap corecoverage.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	resp.Body.Close()
	if snap.AvailableUnits != 2 {
		t.Errorf("available = %d, want 2", snap.AvailableUnits)
	}

	// Outcome.
	resp = do("POST", "/api/feedback/outcomes", map[string]string{
		"run_id": rec.RunID,
		"action": "accepted",
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("outcome status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// Patterns.
	resp = do("GET", "/api/feedback/patterns?lookback_days=7", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patterns status %d", resp.StatusCode)
	}
	var report struct {
		TotalOutcomes int     `json:"total_outcomes"`
		AcceptedRate  float64 `json:"accepted_rate"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	resp.Body.Close()
	if report.TotalOutcomes != 1 || report.AcceptedRate != 1 {
		t.Errorf("unexpected report: %+v", report)
	}

	// The audit trail was written on disk.
	auditPath := filepath.Join(filepath.Dir(cfg.Roster.File), "audit.jsonl")
	if fi, err := os.Stat(auditPath); err != nil || fi.Size() == 0 {
		t.Errorf("audit trail missing or empty: %v", err)
	}

	// Unauthenticated requests are rejected.
	plain, err := http.Get(srv.URL + "/api/coverage?organization_id=org1")
	if err != nil {
		t.Fatalf("plain get: %v", err)
	}
	plain.Body.Close()
	if plain.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", plain.StatusCode)
	}
}
