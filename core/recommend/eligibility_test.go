package recommend

import (
	"testing"

	"github.com/medispatch/engine/core/fatigue"
	"github.com/medispatch/engine/core/model"
)

func newFilter() EligibilityFilter {
	return NewEligibilityFilter(fatigue.NewScorer(fatigue.Config{}))
}

func TestFilterCapabilitySuperset(t *testing.T) {
	units := []model.Unit{
		{ID: "bls", Status: model.StatusAvailable, Capabilities: model.CapabilitySet{model.CapBLS}},
		{ID: "als", Status: model.StatusAvailable, Capabilities: model.CapabilitySet{model.CapBLS, model.CapALS}},
	}
	eligible, excluded := newFilter().Filter(units, model.CapabilitySet{model.CapALS}, model.CallEmergency)
	if len(eligible) != 1 || eligible[0].ID != "als" {
		t.Fatalf("eligible = %+v, want only als", eligible)
	}
	if len(excluded) != 1 || excluded[0].Reason != ExclMissingCapability {
		t.Errorf("excluded = %+v, want bls for missing_capability", excluded)
	}
}

func TestFilterStatus(t *testing.T) {
	units := []model.Unit{
		{ID: "avail", Status: model.StatusAvailable},
		{ID: "staging", Status: model.StatusStaging},
		{ID: "busy", Status: model.StatusTransporting},
		{ID: "oos", Status: model.StatusAvailable, OutOfService: true},
		{ID: "shop", Status: model.StatusAvailable, InMaintenanceCycle: true},
	}
	eligible, excluded := newFilter().Filter(units, nil, model.CallEmergency)
	if len(eligible) != 2 {
		t.Fatalf("eligible = %+v, want avail and staging", eligible)
	}
	reasons := map[string]ExclusionReason{}
	for _, ex := range excluded {
		reasons[ex.UnitID] = ex.Reason
	}
	if reasons["busy"] != ExclUnavailable || reasons["oos"] != ExclOutOfService || reasons["shop"] != ExclMaintenance {
		t.Errorf("exclusion reasons = %+v", reasons)
	}
}

func TestFlightCeilingHardGate(t *testing.T) {
	grounded := model.Unit{
		ID:               "hawk1",
		Status:           model.StatusAvailable,
		Capabilities:     model.CapabilitySet{model.CapRotorWing, model.CapCriticalCare},
		FlightHoursToday: 8,
	}
	eligible, excluded := newFilter().Filter([]model.Unit{grounded}, nil, model.CallAirMedical)
	if len(eligible) != 0 {
		t.Fatalf("unit at the flight-hour ceiling must be hard-gated")
	}
	if len(excluded) != 1 || excluded[0].Reason != ExclFlightCeiling {
		t.Errorf("excluded = %+v, want flight_hour_ceiling", excluded)
	}

	// The ceiling applies only to air-medical call types.
	eligible, _ = newFilter().Filter([]model.Unit{grounded}, nil, model.CallEmergency)
	if len(eligible) != 1 {
		t.Errorf("ground response should not be flight-hour gated")
	}
}

func TestEmptyRosterIsValid(t *testing.T) {
	eligible, excluded := newFilter().Filter(nil, nil, model.CallEmergency)
	if eligible != nil || excluded != nil {
		t.Errorf("empty roster should yield empty results, got %+v / %+v", eligible, excluded)
	}
}
