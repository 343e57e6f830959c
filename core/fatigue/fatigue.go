package fatigue

import (
	"fmt"
	"strings"
	"time"

	"github.com/medispatch/engine/core/model"
)

// RiskLevel classifies crew fatigue.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskModerate
	RiskHigh
)

// String returns the canonical upper-snake form used on the wire.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "LOW"
	case RiskModerate:
		return "MODERATE"
	case RiskHigh:
		return "HIGH"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts the wire form back to a level.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch s {
	case "LOW":
		return RiskLow, true
	case "MODERATE":
		return RiskModerate, true
	case "HIGH":
		return RiskHigh, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the level as its string form.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// Config tunes the scorer. The penalty thresholds themselves are fixed; only
// the air-medical regulatory ceiling is configurable.
type Config struct {
	// DefaultFlightCeilingHours is the daily flight-hour limit applied to
	// air-medical units that do not carry their own ceiling.
	DefaultFlightCeilingHours float64 `json:"default_flight_ceiling_hours"`
	// NearCeilingFraction flags units approaching the ceiling.
	NearCeilingFraction float64 `json:"near_ceiling_fraction"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.DefaultFlightCeilingHours <= 0 {
		c.DefaultFlightCeilingHours = 8
	}
	if c.NearCeilingFraction <= 0 {
		c.NearCeilingFraction = 0.8
	}
}

// Assessment is the fatigue evaluation of one unit at a point in time.
type Assessment struct {
	UnitID          string    `json:"unit_id"`
	HoursOnDuty     float64   `json:"hours_on_duty"`
	CallsThisShift  int       `json:"calls_this_shift"`
	HighAcuityCalls int       `json:"high_acuity_calls"`
	Score           float64   `json:"fatigue_score"`
	Risk            RiskLevel `json:"risk_level"`

	// Air-medical regulatory tracking. OverFlightCeiling is a hard-gate
	// condition for eligibility, not a score penalty.
	FlightHoursToday  float64 `json:"flight_hours_today,omitempty"`
	FlightCeiling     float64 `json:"flight_ceiling,omitempty"`
	NearFlightCeiling bool    `json:"near_flight_ceiling,omitempty"`
	OverFlightCeiling bool    `json:"over_flight_ceiling,omitempty"`

	Explanation string    `json:"explanation"`
	AssessedAt  time.Time `json:"assessed_at"`
}

// Scorer computes crew fatigue scores from duty time and call load.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) Scorer {
	cfg.SetDefaults()
	return Scorer{cfg: cfg}
}

// tier maps the highest crossed threshold to its penalty.
type tier struct {
	above   float64
	penalty float64
}

var (
	dutyTiers       = []tier{{12, 0.30}, {8, 0.15}, {6, 0.05}}
	callTiers       = []tier{{10, 0.20}, {6, 0.10}, {4, 0.05}}
	highAcuityTiers = []tier{{3, 0.15}, {1, 0.08}}
)

func tierPenalty(v float64, tiers []tier) float64 {
	for _, t := range tiers {
		if v > t.above {
			return t.penalty
		}
	}
	return 0
}

// Assess computes the fatigue assessment of u at now.
func (s Scorer) Assess(u model.Unit, now time.Time) Assessment {
	hours := u.HoursOnDuty(now)
	score := 1.0
	var factors []string

	if p := tierPenalty(hours, dutyTiers); p > 0 {
		score -= p
		factors = append(factors, fmt.Sprintf("%.1f hours on duty", hours))
	}
	if p := tierPenalty(float64(u.CallsThisShift), callTiers); p > 0 {
		score -= p
		factors = append(factors, fmt.Sprintf("%d calls this shift", u.CallsThisShift))
	}
	if p := tierPenalty(float64(u.HighAcuityCalls), highAcuityTiers); p > 0 {
		score -= p
		factors = append(factors, fmt.Sprintf("%d high-acuity calls", u.HighAcuityCalls))
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	var risk RiskLevel
	switch {
	case score <= 0.5 || hours >= 16:
		risk = RiskHigh
	case score <= 0.7 || hours >= 12:
		risk = RiskModerate
	default:
		risk = RiskLow
	}

	a := Assessment{
		UnitID:          u.ID,
		HoursOnDuty:     hours,
		CallsThisShift:  u.CallsThisShift,
		HighAcuityCalls: u.HighAcuityCalls,
		Score:           score,
		Risk:            risk,
		AssessedAt:      now,
	}

	if u.IsAirMedical() {
		ceiling := u.FlightHourCeiling
		if ceiling <= 0 {
			ceiling = s.cfg.DefaultFlightCeilingHours
		}
		a.FlightHoursToday = u.FlightHoursToday
		a.FlightCeiling = ceiling
		a.NearFlightCeiling = u.FlightHoursToday >= ceiling*s.cfg.NearCeilingFraction
		a.OverFlightCeiling = u.FlightHoursToday >= ceiling
		if a.OverFlightCeiling {
			factors = append(factors, fmt.Sprintf("flight-hour ceiling reached (%.1f/%.1f h)", u.FlightHoursToday, ceiling))
		} else if a.NearFlightCeiling {
			factors = append(factors, fmt.Sprintf("approaching flight-hour ceiling (%.1f/%.1f h)", u.FlightHoursToday, ceiling))
		}
	}

	if len(factors) == 0 {
		a.Explanation = "well rested"
	} else {
		a.Explanation = strings.Join(factors, ", ")
	}
	return a
}

// OverCeiling reports whether an air-medical unit has reached its daily
// flight-hour ceiling. Non-air units are never gated.
func (s Scorer) OverCeiling(u model.Unit) bool {
	if !u.IsAirMedical() {
		return false
	}
	ceiling := u.FlightHourCeiling
	if ceiling <= 0 {
		ceiling = s.cfg.DefaultFlightCeilingHours
	}
	return u.FlightHoursToday >= ceiling
}
