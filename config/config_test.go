package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `api:
  addr: ":8085"
  token: "secret"
  prometheus_enabled: true
engine:
  coverage:
    required_minimum: 3
    zone_minimums:
      north: 2
  weights:
    emergency:
      eta: 0.5
      availability: 0.2
      capability: 0.15
      fatigue: 0.1
      coverage: 0.05
  organization_weights:
    org-rural:
      routine:
        eta: 0.2
        coverage: 0.5
        availability: 0.3
roster:
  mode: mqtt
  mqtt:
    broker: "tcp://localhost:1883"
    client_id: "engine"
    topic: "ems/units/+/status"
routing:
  enabled: true
  http:
    base_url: "https://osrm.local"
history:
  backend: postgres
  postgres:
    dsn: "postgres://ems@localhost/cad"
metrics:
  - type: "nop"
audit:
  file:
    path: "audit/decisions.jsonl"
cache:
  backend: redis
  redis:
    addr: "localhost:6379"
jobs:
  coverage_watch:
    enabled: true
    organization_id: "org1"
    zones: ["north", "south"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"api.addr", cfg.API.Addr, ":8085"},
		{"api.token", cfg.API.Token, "secret"},
		{"api.prometheus_addr default", cfg.API.PrometheusAddr, ":9090"},
		{"coverage.required_minimum", cfg.Engine.Coverage.RequiredMinimum, 3},
		{"coverage.zone_minimums", cfg.Engine.Coverage.ZoneMinimums["north"], 2},
		{"weights.emergency.eta", cfg.Engine.Weights["emergency"].ETA, 0.5},
		{"org_weights.routine.coverage", cfg.Engine.OrganizationWeights["org-rural"]["routine"].Coverage, 0.5},
		{"roster.mode", cfg.Roster.Mode, "mqtt"},
		{"roster.mqtt.broker", cfg.Roster.MQTT.Broker, "tcp://localhost:1883"},
		{"routing.enabled", cfg.Routing.Enabled, true},
		{"routing.base_url", cfg.Routing.HTTP.BaseURL, "https://osrm.local"},
		{"history.backend", cfg.History.Backend, "postgres"},
		{"metrics sink", len(cfg.Metrics) == 1 && cfg.Metrics[0].Type == "nop", true},
		{"audit.file.path", cfg.Audit.File.Path, "audit/decisions.jsonl"},
		{"cache.backend", cfg.Cache.Backend, "redis"},
		{"cache.ttl default", cfg.Cache.TTLSeconds, 300},
		{"jobs.schedule default", cfg.Jobs.CoverageWatch.Schedule, "@every 5m"},
		{"jobs.zones", len(cfg.Jobs.CoverageWatch.Zones), 2},
		{"eta defaults applied", cfg.Engine.ETA.RoadSpeedKMH > 0, true},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadRejectsUnknownCallType(t *testing.T) {
	path := writeConfig(t, `engine:
  weights:
    express:
      eta: 1
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown call type")
	}
}

func TestLoadRejectsBadRoster(t *testing.T) {
	path := writeConfig(t, `roster:
  mode: carrier-pigeon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown roster mode")
	}
}

func TestEnvOverride(t *testing.T) {
	path := writeConfig(t, `api:
  addr: ":8080"
`)
	t.Setenv("MD_API__TOKEN", "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.API.Token != "from-env" {
		t.Errorf("token = %q, want env override", cfg.API.Token)
	}
}
