package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/medispatch/engine/core/metrics"
	"github.com/medispatch/engine/infra/logger"
)

// InfluxSink writes engine events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCandidateResult writes each scored candidate as a point.
func (s *InfluxSink) RecordCandidateResult(results []coremetrics.CandidateResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, r := range results {
		p := write.NewPointWithMeasurement("candidate_scored").
			AddTag("run_id", r.RunID).
			AddTag("incident_id", r.IncidentID).
			AddTag("organization_id", r.OrganizationID).
			AddTag("call_type", r.CallType.String()).
			AddTag("unit_id", r.UnitID).
			AddTag("confidence", r.Confidence.String()).
			AddTag("eta_fallback", strconv.FormatBool(r.ETAFallback)).
			AddField("rank", r.Rank).
			AddField("total_score", round3(r.TotalScore)).
			AddField("eta_minutes", round3(r.ETAMinutes)).
			SetTime(r.ScoredAt)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordCoverage persists a zone coverage snapshot.
func (s *InfluxSink) RecordCoverage(ev coremetrics.CoverageEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("zone_coverage").
		AddTag("organization_id", ev.OrganizationID).
		AddTag("zone_id", ev.ZoneID).
		AddTag("risk_level", ev.RiskLevel).
		AddField("available_units", ev.AvailableUnits).
		AddField("required_minimum", ev.RequiredMin)
	if ev.GapKnown {
		p = p.AddField("gap_minutes", round3(ev.GapMinutes))
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordForecast persists a demand forecast emission.
func (s *InfluxSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("demand_forecast").
		AddTag("organization_id", ev.OrganizationID).
		AddTag("zone_id", ev.ZoneID).
		AddTag("call_type", ev.CallType.String()).
		AddTag("confidence", ev.Confidence.String()).
		AddField("horizon_hours", round3(ev.HorizonHours)).
		AddField("predicted_volume", round3(ev.PredictedVolume)).
		AddField("baseline_volume", round3(ev.BaselineVolume)).
		AddField("surge_probability", round3(ev.SurgeProbability)).
		AddField("sample_size", ev.SampleSize).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordOutcome persists a dispatcher decision.
func (s *InfluxSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("recommendation_outcome").
		AddTag("run_id", ev.RunID).
		AddTag("recommendation_type", ev.RecommendationType).
		AddTag("accepted", strconv.FormatBool(ev.Accepted)).
		AddTag("overridden", strconv.FormatBool(ev.Overridden)).
		AddField("override_reason", ev.OverrideReason).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordRoutingLatency persists routing provider latency samples.
func (s *InfluxSink) RecordRoutingLatency(latencies []coremetrics.RoutingLatency) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, l := range latencies {
		p := write.NewPointWithMeasurement("routing_latency").
			AddTag("unit_id", l.UnitID).
			AddTag("fallback", strconv.FormatBool(l.Fallback)).
			AddField("latency_ms", round3(l.Latency.Seconds()*1000)).
			SetTime(l.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordFatigue persists a per-unit fatigue assessment.
func (s *InfluxSink) RecordFatigue(ev coremetrics.FatigueEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("unit_fatigue").
		AddTag("unit_id", ev.UnitID).
		AddTag("risk_level", ev.RiskLevel).
		AddField("score", round3(ev.Score)).
		AddField("hours_on_duty", round3(ev.HoursOnDuty)).
		AddField("near_ceiling", ev.NearCeiling).
		SetTime(ev.AssessedAt)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
