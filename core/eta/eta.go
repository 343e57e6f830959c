package eta

import (
	"context"
	"time"

	"github.com/medispatch/engine/core/logger"
	"github.com/medispatch/engine/core/model"
)

// RouteEstimator produces a travel-time estimate in minutes between two
// points. Implementations wrap an external routing provider and may fail.
type RouteEstimator interface {
	EstimateTravelTime(ctx context.Context, origin, dest model.Location, priority model.CallType) (float64, error)
}

// Estimate is the outcome of one travel-time estimation.
type Estimate struct {
	Minutes  float64 `json:"minutes"`
	Score    float64 `json:"score"`
	Fallback bool    `json:"fallback"`
}

// Config tunes the estimator.
type Config struct {
	// TimeoutSeconds bounds the routing provider call.
	TimeoutSeconds int `json:"timeout_seconds"`
	// RoadSpeedKMH is the assumed average speed for the geometric fallback.
	RoadSpeedKMH float64 `json:"road_speed_kmh"`
	// EmergencyUplift multiplies the fallback speed for lights-and-sirens
	// responses.
	EmergencyUplift float64 `json:"emergency_uplift"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 3
	}
	if c.RoadSpeedKMH <= 0 {
		c.RoadSpeedKMH = 48
	}
	if c.EmergencyUplift <= 0 {
		c.EmergencyUplift = 1.2
	}
}

// Estimator converts unit-to-scene travel into a normalized ETA score. The
// routing provider call is bounded by a timeout and degrades to a
// great-circle fallback rather than failing the run.
type Estimator struct {
	route   RouteEstimator
	timeout time.Duration
	cfg     Config
	log     logger.Logger
}

// New creates an Estimator. route may be nil, in which case every estimate
// uses the geometric fallback.
func New(route RouteEstimator, cfg Config, log logger.Logger) *Estimator {
	cfg.SetDefaults()
	return &Estimator{
		route:   route,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		cfg:     cfg,
		log:     log,
	}
}

// Estimate returns travel minutes and the normalized score for one unit. The
// raw minutes are retained alongside the score for explainability.
func (e *Estimator) Estimate(ctx context.Context, origin, dest model.Location, ct model.CallType) Estimate {
	if e.route != nil {
		rctx, cancel := context.WithTimeout(ctx, e.timeout)
		minutes, err := e.route.EstimateTravelTime(rctx, origin, dest, ct)
		cancel()
		if err == nil && minutes >= 0 {
			return Estimate{Minutes: minutes, Score: Score(minutes, ct)}
		}
		if err != nil && e.log != nil {
			e.log.Warnf("routing provider failed, using geometric fallback: %v", err)
		}
	}
	minutes := e.fallbackMinutes(origin, dest, ct)
	return Estimate{Minutes: minutes, Score: Score(minutes, ct), Fallback: true}
}

// fallbackMinutes converts great-circle distance at the assumed road speed.
func (e *Estimator) fallbackMinutes(origin, dest model.Location, ct model.CallType) float64 {
	speed := e.cfg.RoadSpeedKMH
	if ct.IsEmergent() {
		speed *= e.cfg.EmergencyUplift
	}
	return origin.DistanceKM(dest) / speed * 60
}

// breakpoint maps an upper ETA bound in minutes to a score.
type breakpoint struct {
	maxMinutes float64
	score      float64
}

// Emergency calls reward sub-8-minute responses heavily; routine transports
// tolerate up to about 40 minutes before penalizing.
var (
	emergencyBreakpoints = []breakpoint{
		{4, 1.0}, {8, 0.9}, {12, 0.7}, {20, 0.4}, {30, 0.2},
	}
	routineBreakpoints = []breakpoint{
		{10, 1.0}, {20, 0.85}, {30, 0.7}, {40, 0.5},
	}
	airBreakpoints = []breakpoint{
		{10, 1.0}, {20, 0.8}, {35, 0.5},
	}
)

// Score normalizes travel minutes into [0,1] using call-type breakpoints.
func Score(minutes float64, ct model.CallType) float64 {
	var table []breakpoint
	floor := 0.05
	switch ct {
	case model.CallEmergency:
		table = emergencyBreakpoints
	case model.CallAirMedical:
		table = airBreakpoints
		floor = 0.2
	default:
		table = routineBreakpoints
		floor = 0.25
	}
	for _, bp := range table {
		if minutes <= bp.maxMinutes {
			return bp.score
		}
	}
	return floor
}
