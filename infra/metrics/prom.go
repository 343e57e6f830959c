package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/medispatch/engine/core/metrics"
)

// PromSink records engine events in Prometheus metrics.
type PromSink struct {
	candidates     *prometheus.CounterVec
	topScore       *prometheus.GaugeVec
	coverageUnits  *prometheus.GaugeVec
	coverageRisk   *prometheus.GaugeVec
	forecastVolume *prometheus.GaugeVec
	surgeProb      *prometheus.GaugeVec
	outcomes       *prometheus.CounterVec
	routingLatency *prometheus.HistogramVec
	fatigueScore   *prometheus.GaugeVec
}

// NewPromSink registers engine metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}

	candidates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_candidates_scored_total",
		Help: "Total number of scored candidates",
	}, []string{"call_type", "confidence", "eta_fallback"})
	topScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_top_candidate_score",
		Help: "Total score of the top-ranked candidate of the latest run",
	}, []string{"call_type"})
	coverageUnits := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_zone_available_units",
		Help: "Available units per zone at the latest snapshot",
	}, []string{"organization_id", "zone_id"})
	coverageRisk := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_zone_risk_level",
		Help: "Zone risk level: 0 safe, 1 moderate, 2 critical, 3 last unit",
	}, []string{"organization_id", "zone_id"})
	forecastVolume := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_forecast_predicted_volume",
		Help: "Predicted incident volume for the forecast horizon",
	}, []string{"organization_id", "zone_id", "call_type"})
	surgeProb := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_forecast_surge_probability",
		Help: "Probability that the horizon exceeds the surge threshold",
	}, []string{"organization_id", "zone_id", "call_type"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "engine_recommendation_outcomes_total",
		Help: "Dispatcher outcomes recorded against recommendation runs",
	}, []string{"recommendation_type", "action"})
	routingLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "engine_routing_latency_seconds",
		Help:    "Latency of travel-time estimates from the routing provider",
		Buckets: prometheus.DefBuckets,
	}, []string{"fallback"})
	fatigueScore := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "engine_unit_fatigue_score",
		Help: "Latest fatigue score per unit",
	}, []string{"unit_id", "risk_level"})

	if err := reg.Register(candidates); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			candidates = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(topScore); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			topScore = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(coverageUnits); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			coverageUnits = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(coverageRisk); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			coverageRisk = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(forecastVolume); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			forecastVolume = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(surgeProb); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			surgeProb = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(outcomes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			outcomes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(routingLatency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			routingLatency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(fatigueScore); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fatigueScore = are.ExistingCollector.(*prometheus.GaugeVec)
		} else {
			return nil, err
		}
	}

	s.candidates = candidates
	s.topScore = topScore
	s.coverageUnits = coverageUnits
	s.coverageRisk = coverageRisk
	s.forecastVolume = forecastVolume
	s.surgeProb = surgeProb
	s.outcomes = outcomes
	s.routingLatency = routingLatency
	s.fatigueScore = fatigueScore
	return s, nil
}

// RecordCandidateResult increments the counter for each scored candidate and
// exposes the top score of the run.
func (s *PromSink) RecordCandidateResult(results []coremetrics.CandidateResult) error {
	for _, r := range results {
		s.candidates.WithLabelValues(
			r.CallType.String(), r.Confidence.String(), strconv.FormatBool(r.ETAFallback)).Inc()
		if r.Rank == 1 {
			s.topScore.WithLabelValues(r.CallType.String()).Set(r.TotalScore)
		}
	}
	return nil
}

// RecordCoverage exposes the latest zone snapshot.
func (s *PromSink) RecordCoverage(ev coremetrics.CoverageEvent) error {
	s.coverageUnits.WithLabelValues(ev.OrganizationID, ev.ZoneID).Set(float64(ev.AvailableUnits))
	if lvl, ok := riskValue(ev.RiskLevel); ok {
		s.coverageRisk.WithLabelValues(ev.OrganizationID, ev.ZoneID).Set(lvl)
	}
	return nil
}

// RecordForecast exposes the latest forecast per zone and call type.
func (s *PromSink) RecordForecast(ev coremetrics.ForecastEvent) error {
	s.forecastVolume.WithLabelValues(ev.OrganizationID, ev.ZoneID, ev.CallType.String()).Set(ev.PredictedVolume)
	s.surgeProb.WithLabelValues(ev.OrganizationID, ev.ZoneID, ev.CallType.String()).Set(ev.SurgeProbability)
	return nil
}

// RecordOutcome counts dispatcher decisions.
func (s *PromSink) RecordOutcome(ev coremetrics.OutcomeEvent) error {
	action := "ignored"
	switch {
	case ev.Accepted:
		action = "accepted"
	case ev.Overridden:
		action = "overridden"
	}
	s.outcomes.WithLabelValues(ev.RecommendationType, action).Inc()
	return nil
}

// RecordRoutingLatency observes routing provider latency.
func (s *PromSink) RecordRoutingLatency(latencies []coremetrics.RoutingLatency) error {
	for _, l := range latencies {
		s.routingLatency.WithLabelValues(strconv.FormatBool(l.Fallback)).Observe(l.Latency.Seconds())
	}
	return nil
}

// RecordFatigue exposes the latest fatigue score per unit.
func (s *PromSink) RecordFatigue(ev coremetrics.FatigueEvent) error {
	s.fatigueScore.WithLabelValues(ev.UnitID, ev.RiskLevel).Set(ev.Score)
	return nil
}

func riskValue(level string) (float64, bool) {
	switch level {
	case "SAFE":
		return 0, true
	case "MODERATE":
		return 1, true
	case "CRITICAL":
		return 2, true
	case "LAST_UNIT":
		return 3, true
	default:
		return 0, false
	}
}
