// Package scenarios runs YAML-defined ranking scenarios against the full
// scoring pipeline. Each file describes a roster, an incident and the
// expected ranked outcome.
package scenarios

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/medispatch/engine/core/model"
)

type UnitDef struct {
	ID               string   `yaml:"id"`
	Status           string   `yaml:"status"`
	Zone             string   `yaml:"zone"`
	Capabilities     []string `yaml:"capabilities"`
	Lat              float64  `yaml:"lat"`
	Lon              float64  `yaml:"lon"`
	HoursOnDuty      float64  `yaml:"hours_on_duty"`
	CallsThisShift   int      `yaml:"calls_this_shift"`
	HighAcuityCalls  int      `yaml:"high_acuity_calls"`
	FlightHoursToday float64  `yaml:"flight_hours_today"`
}

func (u UnitDef) ToModel(now time.Time) (model.Unit, error) {
	status, ok := model.ParseUnitStatus(u.Status)
	if !ok {
		return model.Unit{}, fmt.Errorf("unit %s: unknown status %q", u.ID, u.Status)
	}
	caps := make(model.CapabilitySet, 0, len(u.Capabilities))
	for _, c := range u.Capabilities {
		parsed, ok := model.ParseCapability(c)
		if !ok {
			return model.Unit{}, fmt.Errorf("unit %s: unknown capability %q", u.ID, c)
		}
		caps = append(caps, parsed)
	}
	return model.Unit{
		ID:               u.ID,
		OrganizationID:   "org1",
		ZoneID:           u.Zone,
		Status:           status,
		Capabilities:     caps,
		Location:         model.Location{Lat: u.Lat, Lon: u.Lon},
		ShiftStart:       now.Add(-time.Duration(u.HoursOnDuty * float64(time.Hour))),
		CallsThisShift:   u.CallsThisShift,
		HighAcuityCalls:  u.HighAcuityCalls,
		FlightHoursToday: u.FlightHoursToday,
	}, nil
}

type IncidentDef struct {
	CallType     string   `yaml:"call_type"`
	Lat          float64  `yaml:"lat"`
	Lon          float64  `yaml:"lon"`
	Capabilities []string `yaml:"capabilities"`
}

type Expected struct {
	// Order is the expected recommended unit ids, best first.
	Order      []string `yaml:"order"`
	Confidence string   `yaml:"confidence"`
	// Excluded lists units that must not appear among the candidates.
	Excluded []string `yaml:"excluded,omitempty"`
}

type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Units       []UnitDef   `yaml:"units"`
	Incident    IncidentDef `yaml:"incident"`
	// TravelMinutes fixes the routed travel time per unit id. Units absent
	// from the map fall back to the geometric estimate.
	TravelMinutes map[string]float64 `yaml:"travel_minutes,omitempty"`
	Expected      Expected           `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
