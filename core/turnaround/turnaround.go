// Package turnaround estimates when committed units return to service. The
// estimate feeds coverage-gap durations instead of a fixed placeholder.
package turnaround

import (
	"context"
	"time"

	"github.com/medispatch/engine/core/eta"
	"github.com/medispatch/engine/core/model"
)

// Config holds per-phase historical mean durations in minutes.
type Config struct {
	OnSceneMinutes    float64 `json:"on_scene_minutes"`
	TransportMinutes  float64 `json:"transport_minutes"`
	AtHospitalMinutes float64 `json:"at_hospital_minutes"`
	// ReturnMinutes is used when the unit's station is unknown and no ETA
	// estimate is possible.
	ReturnMinutes float64 `json:"return_minutes"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.OnSceneMinutes <= 0 {
		c.OnSceneMinutes = 18
	}
	if c.TransportMinutes <= 0 {
		c.TransportMinutes = 22
	}
	if c.AtHospitalMinutes <= 0 {
		c.AtHospitalMinutes = 25
	}
	if c.ReturnMinutes <= 0 {
		c.ReturnMinutes = 12
	}
}

// Estimator predicts return-to-service times for committed units.
type Estimator struct {
	cfg Config
	eta *eta.Estimator
}

// New creates an Estimator. est may be nil; drive-back time then uses the
// configured default.
func New(cfg Config, est *eta.Estimator) *Estimator {
	cfg.SetDefaults()
	return &Estimator{cfg: cfg, eta: est}
}

// Estimate returns the expected minutes until u is back in service. ok is
// false when the unit is not committed to a call, so no estimate applies.
func (e *Estimator) Estimate(ctx context.Context, u model.Unit, now time.Time) (minutes float64, ok bool) {
	if !u.Status.Committed() {
		return 0, false
	}

	// Remaining time in the current phase, then the mean duration of each
	// later phase, then the drive back to station.
	elapsed := 0.0
	if !u.CommittedSince.IsZero() && now.After(u.CommittedSince) {
		elapsed = now.Sub(u.CommittedSince).Minutes()
	}

	var remaining float64
	switch u.Status {
	case model.StatusDispatched, model.StatusOnScene:
		remaining = phaseRemaining(e.cfg.OnSceneMinutes, elapsed) + e.cfg.TransportMinutes + e.cfg.AtHospitalMinutes
	case model.StatusTransporting:
		remaining = phaseRemaining(e.cfg.TransportMinutes, elapsed) + e.cfg.AtHospitalMinutes
	case model.StatusAtHospital:
		remaining = phaseRemaining(e.cfg.AtHospitalMinutes, elapsed)
	case model.StatusReturning:
		remaining = 0
	}

	return remaining + e.driveBack(ctx, u), true
}

// Soonest returns the smallest return estimate among units, or ok=false when
// no unit is committed. Reporting unknown instead of zero matters: a zone with
// nobody coming back has an open-ended gap.
func (e *Estimator) Soonest(ctx context.Context, units []model.Unit, now time.Time) (minutes float64, ok bool) {
	best := 0.0
	found := false
	for _, u := range units {
		m, committed := e.Estimate(ctx, u, now)
		if !committed {
			continue
		}
		if !found || m < best {
			best = m
			found = true
		}
	}
	return best, found
}

func (e *Estimator) driveBack(ctx context.Context, u model.Unit) float64 {
	if e.eta == nil || u.Station.IsZero() || u.Location.IsZero() {
		return e.cfg.ReturnMinutes
	}
	est := e.eta.Estimate(ctx, u.Location, u.Station, model.CallRoutine)
	return est.Minutes
}

func phaseRemaining(mean, elapsed float64) float64 {
	if elapsed >= mean {
		return 0
	}
	return mean - elapsed
}
