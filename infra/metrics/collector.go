package metrics

import (
	"context"

	"github.com/medispatch/engine/core/coverage"
	"github.com/medispatch/engine/core/forecast"
	coremetrics "github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for events.
// It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				switch e := ev.(type) {
				case coverage.Alert:
					if r, ok := sink.(coremetrics.CoverageRecorder); ok {
						snap := e.Snapshot
						cev := coremetrics.CoverageEvent{
							OrganizationID: snap.OrganizationID,
							ZoneID:         snap.ZoneID,
							RiskLevel:      snap.Risk.String(),
							AvailableUnits: snap.AvailableUnits,
							RequiredMin:    snap.RequiredMinimum,
							Time:           snap.TakenAt,
						}
						if snap.GapMinutes != nil {
							cev.GapMinutes = *snap.GapMinutes
							cev.GapKnown = true
						}
						_ = r.RecordCoverage(cev)
					}
				case forecast.Forecast:
					if r, ok := sink.(coremetrics.ForecastRecorder); ok {
						_ = r.RecordForecast(coremetrics.ForecastEvent{
							OrganizationID:   e.OrganizationID,
							ZoneID:           e.ZoneID,
							CallType:         e.CallType,
							HorizonHours:     e.HorizonHours,
							PredictedVolume:  e.PredictedVolume,
							BaselineVolume:   e.BaselineVolume,
							SurgeProbability: e.SurgeProbability,
							Confidence:       e.Confidence,
							SampleSize:       e.SampleSize,
							Time:             e.CreatedAt,
						})
					}
				}
			}
		}
	}()
}
