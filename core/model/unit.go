package model

import (
	"fmt"
	"time"
)

// UnitStatus is the operational state of a response unit.
type UnitStatus int

const (
	StatusAvailable UnitStatus = iota
	StatusStaging
	StatusDispatched
	StatusOnScene
	StatusTransporting
	StatusAtHospital
	StatusReturning
	StatusOutOfService
	StatusMaintenance
)

// String returns a human-readable representation of the status.
func (s UnitStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusStaging:
		return "staging"
	case StatusDispatched:
		return "dispatched"
	case StatusOnScene:
		return "on_scene"
	case StatusTransporting:
		return "transporting"
	case StatusAtHospital:
		return "at_hospital"
	case StatusReturning:
		return "returning"
	case StatusOutOfService:
		return "out_of_service"
	case StatusMaintenance:
		return "maintenance"
	default:
		return "unknown"
	}
}

// ParseUnitStatus converts a string to a UnitStatus.
func ParseUnitStatus(s string) (UnitStatus, bool) {
	switch s {
	case "available":
		return StatusAvailable, true
	case "staging":
		return StatusStaging, true
	case "dispatched":
		return StatusDispatched, true
	case "on_scene":
		return StatusOnScene, true
	case "transporting":
		return StatusTransporting, true
	case "at_hospital":
		return StatusAtHospital, true
	case "returning":
		return StatusReturning, true
	case "out_of_service":
		return StatusOutOfService, true
	case "maintenance":
		return StatusMaintenance, true
	default:
		return 0, false
	}
}

// Committed reports whether the unit is working an active call.
func (s UnitStatus) Committed() bool {
	switch s {
	case StatusDispatched, StatusOnScene, StatusTransporting, StatusAtHospital, StatusReturning:
		return true
	default:
		return false
	}
}

// MarshalJSON encodes the status as its string form.
func (s UnitStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON decodes a status from its string form.
func (s *UnitStatus) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid unit status %s", string(b))
	}
	v, ok := ParseUnitStatus(string(b[1 : len(b)-1]))
	if !ok {
		return fmt.Errorf("unknown unit status %q", string(b[1:len(b)-1]))
	}
	*s = v
	return nil
}

// Unit represents a response unit as reported by the roster store. The engine
// treats units as read-only input.
type Unit struct {
	ID             string        `json:"id"`
	Name           string        `json:"name,omitempty"`
	OrganizationID string        `json:"organization_id"`
	ZoneID         string        `json:"zone_id"`
	Status         UnitStatus    `json:"status"`
	Capabilities   CapabilitySet `json:"capabilities"`
	Location       Location      `json:"location"`
	Station        Location      `json:"station,omitempty"` // home post, used for return estimates

	// Shift and workload information used by the fatigue scorer.
	ShiftStart         time.Time `json:"shift_start"`
	CallsThisShift     int       `json:"calls_this_shift"`
	HighAcuityCalls    int       `json:"high_acuity_calls"`
	OutOfService       bool      `json:"out_of_service"`
	InMaintenanceCycle bool      `json:"in_maintenance_cycle"`

	// Air-medical duty tracking. FlightHoursToday counts toward the daily
	// regulatory ceiling; FlightHourCeiling of zero means the default applies.
	FlightHoursToday  float64 `json:"flight_hours_today,omitempty"`
	FlightHourCeiling float64 `json:"flight_hour_ceiling,omitempty"`

	// CostPerHour is the blended operating cost used by the cost sub-score.
	CostPerHour float64 `json:"cost_per_hour,omitempty"`

	// CommittedSince marks when the unit entered its current committed status.
	// Zero when the unit is not working a call.
	CommittedSince time.Time `json:"committed_since,omitempty"`
}

// Validate checks that the unit record is usable for scoring.
func (u Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	if err := u.Location.Validate(); err != nil {
		return fmt.Errorf("unit %s: %w", u.ID, err)
	}
	return nil
}

// IsAirMedical reports whether the unit flies.
func (u Unit) IsAirMedical() bool {
	return u.Capabilities.Has(CapRotorWing)
}

// HoursOnDuty returns the elapsed duty time at now. A zero ShiftStart yields
// zero rather than decades.
func (u Unit) HoursOnDuty(now time.Time) float64 {
	if u.ShiftStart.IsZero() || now.Before(u.ShiftStart) {
		return 0
	}
	return now.Sub(u.ShiftStart).Hours()
}
