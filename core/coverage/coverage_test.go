package coverage

import (
	"context"
	"testing"
	"time"

	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		available, required, active int
		want                        RiskLevel
	}{
		{1, 2, 0, RiskLastUnit},
		{1, 5, 3, RiskLastUnit}, // last unit wins regardless of required
		{0, 2, 0, RiskCritical},
		{2, 3, 0, RiskCritical},
		{2, 2, 0, RiskModerate}, // 2 <= 1.2*2
		{3, 2, 1, RiskModerate}, // required+1 with active incidents
		{3, 2, 0, RiskSafe},
		{5, 2, 0, RiskSafe},
	}
	for _, c := range cases {
		if got := Classify(c.available, c.required, c.active); got != c.want {
			t.Errorf("Classify(%d, %d, %d) = %s, want %s", c.available, c.required, c.active, got, c.want)
		}
	}
}

func zoneUnit(id string, status model.UnitStatus) model.Unit {
	return model.Unit{ID: id, OrganizationID: "org1", ZoneID: "z1", Status: status}
}

func newAssessor(rs roster.Store, hs history.Store) *Assessor {
	a := New(rs, hs, turnaround.New(turnaround.Config{}, nil), nil, Config{RequiredMinimum: 2}, nil)
	a.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return a
}

func TestAssessZone(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		zoneUnit("m1", model.StatusAvailable),
		zoneUnit("m2", model.StatusAvailable),
		zoneUnit("m3", model.StatusStaging),
	})
	hs := history.NewMemoryStore()
	snap, err := newAssessor(rs, hs).AssessZone(context.Background(), "org1", "z1")
	if err != nil {
		t.Fatalf("AssessZone: %v", err)
	}
	if snap.AvailableUnits != 3 {
		t.Errorf("available = %d, want 3", snap.AvailableUnits)
	}
	if snap.Risk != RiskSafe {
		t.Errorf("risk = %s, want SAFE", snap.Risk)
	}
	if snap.Confidence != model.ConfidenceHigh {
		t.Errorf("confidence = %s, want HIGH with 3 units evaluated", snap.Confidence)
	}
}

func TestLastUnitGapFromReturningUnit(t *testing.T) {
	rs := roster.NewMemoryStore()
	returning := zoneUnit("m2", model.StatusReturning)
	returning.CommittedSince = time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	rs.SetUnits([]model.Unit{zoneUnit("m1", model.StatusAvailable), returning})

	snap, err := newAssessor(rs, history.NewMemoryStore()).AssessZone(context.Background(), "org1", "z1")
	if err != nil {
		t.Fatalf("AssessZone: %v", err)
	}
	if snap.Risk != RiskLastUnit {
		t.Fatalf("risk = %s, want LAST_UNIT", snap.Risk)
	}
	if snap.GapMinutes == nil {
		t.Fatalf("gap should be estimated from the returning unit")
	}
	if *snap.GapMinutes != 12 {
		t.Errorf("gap = %v, want 12 (default drive-back)", *snap.GapMinutes)
	}
	if snap.Confidence != model.ConfidenceMedium {
		t.Errorf("confidence = %s, want MEDIUM with 2 units evaluated", snap.Confidence)
	}
}

func TestCriticalGapUnknownWhenNobodyReturns(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		zoneUnit("m1", model.StatusOutOfService),
		zoneUnit("m2", model.StatusMaintenance),
	})
	snap, err := newAssessor(rs, history.NewMemoryStore()).AssessZone(context.Background(), "org1", "z1")
	if err != nil {
		t.Fatalf("AssessZone: %v", err)
	}
	if snap.Risk != RiskCritical {
		t.Fatalf("risk = %s, want CRITICAL", snap.Risk)
	}
	if snap.GapMinutes != nil {
		t.Errorf("gap must be unknown, not %v", *snap.GapMinutes)
	}
}

func TestAssessDispatchRemovesOneUnit(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		zoneUnit("m1", model.StatusAvailable),
		zoneUnit("m2", model.StatusAvailable),
	})
	snap, err := newAssessor(rs, history.NewMemoryStore()).AssessDispatch(context.Background(), "org1", "z1")
	if err != nil {
		t.Fatalf("AssessDispatch: %v", err)
	}
	if snap.AvailableUnits != 1 {
		t.Errorf("residual available = %d, want 1", snap.AvailableUnits)
	}
	if snap.Risk != RiskLastUnit {
		t.Errorf("residual risk = %s, want LAST_UNIT", snap.Risk)
	}
}

func TestModerateWithActiveIncidents(t *testing.T) {
	rs := roster.NewMemoryStore()
	rs.SetUnits([]model.Unit{
		zoneUnit("m1", model.StatusAvailable),
		zoneUnit("m2", model.StatusAvailable),
		zoneUnit("m3", model.StatusAvailable),
	})
	hs := history.NewMemoryStore()
	hs.SetActiveIncidents("org1", "z1", 2)
	snap, err := newAssessor(rs, hs).AssessZone(context.Background(), "org1", "z1")
	if err != nil {
		t.Fatalf("AssessZone: %v", err)
	}
	if snap.Risk != RiskModerate {
		t.Errorf("risk = %s, want MODERATE (required+1 and active incidents)", snap.Risk)
	}
}
