package coveragewatch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/internal/eventbus"
)

type captureSink struct {
	metrics.NopSink
	events []metrics.CoverageEvent
}

func (c *captureSink) RecordCoverage(ev metrics.CoverageEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func unit(id, zone string, status model.UnitStatus) model.Unit {
	return model.Unit{
		ID:             id,
		OrganizationID: "org-1",
		ZoneID:         zone,
		Status:         status,
		Capabilities:   model.CapabilitySet{model.CapBLS},
		Location:       model.Location{Lat: 45, Lon: 5},
	}
}

func TestRunOnceRecordsAndAlertsOnChange(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		unit("m1", "north", model.StatusAvailable),
		unit("m2", "north", model.StatusAvailable),
		unit("m3", "north", model.StatusAvailable),
	})
	assessor := coverage.New(rs, history.NewMemoryStore(), nil, nil, coverage.Config{RequiredMinimum: 2}, nil)

	sink := &captureSink{}
	bus := eventbus.New()
	w := New(assessor, nil, Config{OrganizationID: "org-1", Zones: []string{"north"}}, bus, sink, nil)
	alerts := w.Alerts()

	ctx := context.Background()
	w.RunOnce(ctx)
	require.Len(t, sink.events, 1)
	assert.Equal(t, "SAFE", sink.events[0].RiskLevel)

	// First cycle establishes the baseline, no alert yet.
	select {
	case a := <-alerts:
		t.Fatalf("unexpected alert on first cycle: %+v", a)
	default:
	}

	// Two units go out: 1 available means LAST_UNIT.
	rs.SetUnits([]model.Unit{
		unit("m1", "north", model.StatusAvailable),
		unit("m2", "north", model.StatusDispatched),
		unit("m3", "north", model.StatusDispatched),
	})
	w.RunOnce(ctx)

	select {
	case a := <-alerts:
		assert.Equal(t, coverage.RiskLastUnit, a.Snapshot.Risk)
		assert.Equal(t, coverage.RiskSafe, a.Previous)
		assert.True(t, a.Escalated())
	case <-time.After(time.Second):
		t.Fatal("expected an alert after risk change")
	}
}

func TestRunOnceNoAlertWhenRiskStable(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		unit("m1", "north", model.StatusAvailable),
		unit("m2", "north", model.StatusAvailable),
		unit("m3", "north", model.StatusAvailable),
	})
	assessor := coverage.New(rs, history.NewMemoryStore(), nil, nil, coverage.Config{RequiredMinimum: 2}, nil)

	w := New(assessor, nil, Config{OrganizationID: "org-1", Zones: []string{"north"}}, nil, nil, nil)
	alerts := w.Alerts()

	ctx := context.Background()
	w.RunOnce(ctx)
	w.RunOnce(ctx)

	select {
	case a := <-alerts:
		t.Fatalf("unexpected alert: %+v", a)
	default:
	}
}

func TestRunOnceAlertsOnFirstDegradedObservation(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		unit("m1", "north", model.StatusAvailable),
		unit("m2", "north", model.StatusDispatched),
		unit("m3", "north", model.StatusDispatched),
	})
	assessor := coverage.New(rs, history.NewMemoryStore(), nil, nil, coverage.Config{RequiredMinimum: 3}, nil)

	w := New(assessor, nil, Config{OrganizationID: "org-1", Zones: []string{"north"}}, nil, nil, nil)
	alerts := w.Alerts()

	ctx := context.Background()
	w.RunOnce(ctx)

	select {
	case a := <-alerts:
		assert.Equal(t, coverage.RiskLastUnit, a.Snapshot.Risk)
		assert.Equal(t, coverage.RiskSafe, a.Previous)
		assert.True(t, a.Escalated())
	case <-time.After(time.Second):
		t.Fatal("expected an alert for a zone first observed in a degraded state")
	}

	// Staying at the same degraded level does not re-alert.
	w.RunOnce(ctx)
	select {
	case a := <-alerts:
		t.Fatalf("unexpected alert while risk is stable: %+v", a)
	default:
	}
}
