package coverage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medispatch/engine/core/forecast"
	"github.com/medispatch/engine/core/history"
	"github.com/medispatch/engine/core/logger"
	"github.com/medispatch/engine/core/model"
	"github.com/medispatch/engine/core/roster"
	"github.com/medispatch/engine/core/turnaround"
)

// RiskLevel classifies residual zone coverage.
type RiskLevel int

const (
	RiskSafe RiskLevel = iota
	RiskModerate
	RiskCritical
	RiskLastUnit
)

// String returns the canonical upper-snake form used on the wire.
func (r RiskLevel) String() string {
	switch r {
	case RiskSafe:
		return "SAFE"
	case RiskModerate:
		return "MODERATE"
	case RiskCritical:
		return "CRITICAL"
	case RiskLastUnit:
		return "LAST_UNIT"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts the wire form back to a level.
func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch s {
	case "SAFE":
		return RiskSafe, true
	case "MODERATE":
		return RiskModerate, true
	case "CRITICAL":
		return RiskCritical, true
	case "LAST_UNIT":
		return RiskLastUnit, true
	default:
		return 0, false
	}
}

// MarshalJSON encodes the level as its string form.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// Snapshot is a point-in-time coverage assessment for a zone. Snapshots are
// append-only; newer snapshots supersede older ones.
type Snapshot struct {
	ID              string    `json:"id"`
	OrganizationID  string    `json:"organization_id"`
	ZoneID          string    `json:"zone_id,omitempty"`
	AvailableUnits  int       `json:"available_units"`
	RequiredMinimum int       `json:"required_minimum"`
	ActiveIncidents int       `json:"active_incidents"`
	Risk            RiskLevel `json:"risk_level"`
	// GapMinutes is the expected coverage-gap duration when risk is CRITICAL
	// or LAST_UNIT. Nil means no unit is returning and the gap is unknown.
	GapMinutes        *float64              `json:"gap_minutes,omitempty"`
	PredictedCallRate float64               `json:"predicted_call_rate"`
	Confidence        model.ConfidenceLevel `json:"confidence"`
	TakenAt           time.Time             `json:"taken_at"`
}

// Config tunes the assessor.
type Config struct {
	// RequiredMinimum is the default minimum available-unit count per zone.
	RequiredMinimum int `json:"required_minimum"`
	// ZoneMinimums overrides the default per zone id.
	ZoneMinimums map[string]int `json:"zone_minimums,omitempty"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.RequiredMinimum <= 0 {
		c.RequiredMinimum = 2
	}
}

// Classify is the pure risk function. Precedence: exactly one available unit
// is always LAST_UNIT, then shortfall, then thin margins.
func Classify(available, required, activeIncidents int) RiskLevel {
	switch {
	case available == 1:
		return RiskLastUnit
	case available < required:
		return RiskCritical
	case float64(available) <= 1.2*float64(required),
		available <= required+1 && activeIncidents > 0:
		return RiskModerate
	default:
		return RiskSafe
	}
}

// Assessor estimates residual-coverage risk per zone.
type Assessor struct {
	roster     roster.Store
	history    history.Store
	turnaround *turnaround.Estimator
	forecaster *forecast.Forecaster
	cfg        Config
	log        logger.Logger
	now        func() time.Time
}

// New creates an Assessor. forecaster may be nil; the predicted call rate is
// then left at zero.
func New(rs roster.Store, hs history.Store, ta *turnaround.Estimator, fc *forecast.Forecaster, cfg Config, log logger.Logger) *Assessor {
	cfg.SetDefaults()
	return &Assessor{
		roster:     rs,
		history:    hs,
		turnaround: ta,
		forecaster: fc,
		cfg:        cfg,
		log:        log,
		now:        time.Now,
	}
}

// RequiredMinimum resolves the configured minimum for a zone.
func (a *Assessor) RequiredMinimum(zoneID string) int {
	if m, ok := a.cfg.ZoneMinimums[zoneID]; ok && m > 0 {
		return m
	}
	return a.cfg.RequiredMinimum
}

// AssessZone produces a fresh snapshot for the zone. An empty zoneID assesses
// the whole organization.
func (a *Assessor) AssessZone(ctx context.Context, organizationID, zoneID string) (*Snapshot, error) {
	return a.assess(ctx, organizationID, zoneID, 0)
}

// AssessDispatch produces the residual snapshot assuming one available unit
// of the zone has been committed. The scoring engine uses this to quantify a
// candidate's coverage contribution.
func (a *Assessor) AssessDispatch(ctx context.Context, organizationID, zoneID string) (*Snapshot, error) {
	return a.assess(ctx, organizationID, zoneID, 1)
}

func (a *Assessor) assess(ctx context.Context, organizationID, zoneID string, removed int) (*Snapshot, error) {
	units, err := a.roster.Units(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("coverage: roster query: %w", err)
	}

	var zoneUnits []model.Unit
	available := 0
	for _, u := range units {
		if zoneID != "" && u.ZoneID != zoneID {
			continue
		}
		zoneUnits = append(zoneUnits, u)
		if u.Status == model.StatusAvailable || u.Status == model.StatusStaging {
			available++
		}
	}
	available -= removed
	if available < 0 {
		available = 0
	}

	active := 0
	if a.history != nil {
		if n, err := a.history.ActiveIncidents(ctx, organizationID, zoneID); err == nil {
			active = n
		} else if a.log != nil {
			a.log.Warnf("active incident count failed for zone %s: %v", zoneID, err)
		}
	}

	required := a.RequiredMinimum(zoneID)
	risk := Classify(available, required, active)

	snap := &Snapshot{
		ID:              uuid.NewString(),
		OrganizationID:  organizationID,
		ZoneID:          zoneID,
		AvailableUnits:  available,
		RequiredMinimum: required,
		ActiveIncidents: active,
		Risk:            risk,
		Confidence:      model.ConfidenceMedium,
		TakenAt:         a.now(),
	}
	if len(zoneUnits) >= 3 {
		snap.Confidence = model.ConfidenceHigh
	}

	if (risk == RiskCritical || risk == RiskLastUnit) && a.turnaround != nil {
		if m, ok := a.turnaround.Soonest(ctx, zoneUnits, snap.TakenAt); ok {
			snap.GapMinutes = &m
		}
	}

	if a.forecaster != nil {
		fc, err := a.forecaster.ForecastCallVolume(ctx, forecast.Request{
			OrganizationID: organizationID,
			ZoneID:         zoneID,
			Horizon:        time.Hour,
		})
		if err == nil {
			snap.PredictedCallRate = fc.PredictedVolume
		} else if a.log != nil {
			a.log.Warnf("forecast for zone %s failed: %v", zoneID, err)
		}
	}

	return snap, nil
}
