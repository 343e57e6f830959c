// Package coveragewatch periodically assesses zone coverage and raises
// alerts when a zone's risk level changes.
package coveragewatch

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/forecast"
	"github.com/medispatch/engine/core/logger"
	"github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/internal/eventbus"
)

// Config tunes the watcher.
type Config struct {
	// OrganizationID scopes the watched zones.
	OrganizationID string `json:"organization_id"`
	// Zones is the list of watched zone ids.
	Zones []string `json:"zones"`
	// Schedule is a cron spec; defaults to every five minutes.
	Schedule string `json:"schedule"`
	// ForecastHorizonHours adds a demand forecast per cycle when positive
	// and a forecaster is configured.
	ForecastHorizonHours int `json:"forecast_horizon_hours"`
}

// Watcher drives periodic coverage assessments from a cron schedule.
type Watcher struct {
	assessor   *coverage.Assessor
	forecaster *forecast.Forecaster
	cfg        Config
	cron       *cron.Cron
	bus        eventbus.EventBus
	alerts     *eventbus.TypedBus[coverage.Alert]
	sink       metrics.MetricsSink
	log        logger.Logger

	mu       sync.Mutex
	lastRisk map[string]coverage.RiskLevel
}

// New creates a Watcher. bus and sink may be nil; forecaster is optional.
func New(assessor *coverage.Assessor, forecaster *forecast.Forecaster, cfg Config, bus eventbus.EventBus, sink metrics.MetricsSink, log logger.Logger) *Watcher {
	if cfg.Schedule == "" {
		cfg.Schedule = "@every 5m"
	}
	return &Watcher{
		assessor:   assessor,
		forecaster: forecaster,
		cfg:        cfg,
		cron:       cron.New(),
		bus:        bus,
		alerts:     eventbus.NewTyped[coverage.Alert](),
		sink:       sink,
		log:        log,
		lastRisk:   make(map[string]coverage.RiskLevel),
	}
}

// Alerts returns a subscription to risk-change alerts.
func (w *Watcher) Alerts() <-chan coverage.Alert {
	return w.alerts.Subscribe()
}

// Start schedules the assessment cycle and starts the cron runner.
func (w *Watcher) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(w.cfg.Schedule, func() { w.RunOnce(ctx) })
	if err != nil {
		return err
	}
	w.cron.Start()
	if w.log != nil {
		w.log.Infof("coverage watcher started: %d zones, schedule %q", len(w.cfg.Zones), w.cfg.Schedule)
	}
	return nil
}

// Stop stops the cron runner and waits for a running cycle to finish.
func (w *Watcher) Stop() {
	stopCtx := w.cron.Stop()
	<-stopCtx.Done()
	w.alerts.Close()
}

// RunOnce assesses every watched zone once.
func (w *Watcher) RunOnce(ctx context.Context) {
	zones := w.cfg.Zones
	if len(zones) == 0 {
		zones = []string{""}
	}
	for _, zone := range zones {
		if ctx.Err() != nil {
			return
		}
		w.assessOne(ctx, zone)
	}
}

func (w *Watcher) assessOne(ctx context.Context, zone string) {
	snap, err := w.assessor.AssessZone(ctx, w.cfg.OrganizationID, zone)
	if err != nil {
		if w.log != nil {
			w.log.Errorf("coverage assessment failed for zone %q: %v", zone, err)
		}
		return
	}

	w.record(*snap)

	w.mu.Lock()
	prev, seen := w.lastRisk[zone]
	w.lastRisk[zone] = snap.Risk
	w.mu.Unlock()

	// Changes always alert. A zone that is already CRITICAL or LAST_UNIT
	// at its first assessment alerts too, against a SAFE baseline.
	degraded := snap.Risk == coverage.RiskCritical || snap.Risk == coverage.RiskLastUnit
	if (seen && prev != snap.Risk) || (!seen && degraded) {
		if !seen {
			prev = coverage.RiskSafe
		}
		alert := coverage.Alert{Snapshot: *snap, Previous: prev}
		w.alerts.Publish(alert)
		if w.bus != nil {
			w.bus.Publish(alert)
		}
		if w.log != nil && alert.Escalated() {
			w.log.Warnf("zone %q risk escalated %s -> %s (%d units available)",
				zone, prev, snap.Risk, snap.AvailableUnits)
		}
	}

	if w.forecaster != nil && w.cfg.ForecastHorizonHours > 0 {
		fc, err := w.forecaster.ForecastCallVolume(ctx, forecast.Request{
			OrganizationID: w.cfg.OrganizationID,
			ZoneID:         zone,
			Horizon:        time.Duration(w.cfg.ForecastHorizonHours) * time.Hour,
		})
		if err != nil {
			if w.log != nil {
				w.log.Warnf("forecast failed for zone %q: %v", zone, err)
			}
			return
		}
		if w.bus != nil {
			w.bus.Publish(*fc)
		}
	}
}

func (w *Watcher) record(snap coverage.Snapshot) {
	if w.sink == nil {
		return
	}
	rec, ok := w.sink.(metrics.CoverageRecorder)
	if !ok {
		return
	}
	ev := metrics.CoverageEvent{
		OrganizationID: snap.OrganizationID,
		ZoneID:         snap.ZoneID,
		RiskLevel:      snap.Risk.String(),
		AvailableUnits: snap.AvailableUnits,
		RequiredMin:    snap.RequiredMinimum,
		Time:           snap.TakenAt,
	}
	if snap.GapMinutes != nil {
		ev.GapMinutes = *snap.GapMinutes
		ev.GapKnown = true
	}
	if err := rec.RecordCoverage(ev); err != nil && w.log != nil {
		w.log.Errorf("coverage metrics record failed: %v", err)
	}
}
