package fatigue

import (
	"math"
	"testing"
	"time"

	"github.com/medispatch/engine/core/model"
)

func unitOnDuty(hours float64, calls, highAcuity int) model.Unit {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return model.Unit{
		ID:              "m1",
		ShiftStart:      now.Add(-time.Duration(hours * float64(time.Hour))),
		CallsThisShift:  calls,
		HighAcuityCalls: highAcuity,
	}
}

func assess(t *testing.T, u model.Unit) Assessment {
	t.Helper()
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	return NewScorer(Config{}).Assess(u, now)
}

func TestFreshCrewScoresOne(t *testing.T) {
	a := assess(t, unitOnDuty(0, 0, 0))
	if a.Score != 1.0 {
		t.Errorf("score = %v, want 1.0", a.Score)
	}
	if a.Risk != RiskLow {
		t.Errorf("risk = %s, want LOW", a.Risk)
	}
	if a.Explanation != "well rested" {
		t.Errorf("explanation = %q", a.Explanation)
	}
}

func TestTierPenalties(t *testing.T) {
	cases := []struct {
		hours      float64
		calls      int
		highAcuity int
		want       float64
	}{
		{7, 0, 0, 0.95},   // >6h
		{9, 0, 0, 0.85},   // >8h
		{13, 0, 0, 0.70},  // >12h
		{0, 5, 0, 0.95},   // >4 calls
		{0, 7, 0, 0.90},   // >6 calls
		{0, 11, 0, 0.80},  // >10 calls
		{0, 0, 2, 0.92},   // >1 high acuity
		{0, 0, 4, 0.85},   // >3 high acuity
		{13, 11, 4, 0.35}, // sum of highest tiers
	}
	for _, c := range cases {
		a := assess(t, unitOnDuty(c.hours, c.calls, c.highAcuity))
		if math.Abs(a.Score-c.want) > 1e-9 {
			t.Errorf("hours=%v calls=%d acuity=%d: score = %v, want %v", c.hours, c.calls, c.highAcuity, a.Score, c.want)
		}
	}
}

func TestRiskLevels(t *testing.T) {
	if a := assess(t, unitOnDuty(16, 0, 0)); a.Risk != RiskHigh {
		t.Errorf("16h duty risk = %s, want HIGH", a.Risk)
	}
	if a := assess(t, unitOnDuty(12.5, 0, 0)); a.Risk != RiskModerate {
		t.Errorf("12.5h duty risk = %s, want MODERATE", a.Risk)
	}
	if a := assess(t, unitOnDuty(13, 11, 4)); a.Risk != RiskHigh {
		t.Errorf("heavily loaded crew risk = %s, want HIGH", a.Risk)
	}
	if a := assess(t, unitOnDuty(2, 1, 0)); a.Risk != RiskLow {
		t.Errorf("light shift risk = %s, want LOW", a.Risk)
	}
}

func TestFlightCeiling(t *testing.T) {
	u := unitOnDuty(2, 0, 0)
	u.Capabilities = model.CapabilitySet{model.CapRotorWing, model.CapCriticalCare}
	u.FlightHoursToday = 6.5

	a := assess(t, u)
	if !a.NearFlightCeiling {
		t.Errorf("6.5/8.0 flight hours should be near ceiling")
	}
	if a.OverFlightCeiling {
		t.Errorf("6.5/8.0 flight hours should not be over ceiling")
	}

	u.FlightHoursToday = 8
	a = assess(t, u)
	if !a.OverFlightCeiling {
		t.Errorf("8/8 flight hours should be over ceiling")
	}
	if !NewScorer(Config{}).OverCeiling(u) {
		t.Errorf("OverCeiling should gate the unit")
	}

	// Ground units are never gated by flight hours.
	ground := unitOnDuty(2, 0, 0)
	ground.FlightHoursToday = 20
	if NewScorer(Config{}).OverCeiling(ground) {
		t.Errorf("ground unit must not be flight-hour gated")
	}
}
