package recommend

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	runDuration    *prometheus.HistogramVec
	unitsExcluded  *prometheus.CounterVec
	runsScored     *prometheus.CounterVec
	etaFallbacks   prometheus.Counter
	emptyRunsTotal prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.HistogramVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter) {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_run_duration_seconds",
			Help:    "Latency of one full recommendation scoring pass",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"call_type"},
	)
	excl := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_units_excluded_total",
			Help: "Units removed by the eligibility filter, by reason",
		},
		[]string{"reason"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_runs_total",
			Help: "Completed recommendation runs by call type and confidence",
		},
		[]string{"call_type", "confidence"},
	)
	fb := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_eta_fallback_total",
			Help: "Number of ETA estimates resolved by the geometric fallback",
		},
	)
	empty := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_empty_runs_total",
			Help: "Runs that produced no eligible candidates",
		},
	)
	return dur, excl, runs, fb, empty
}

func init() {
	runDuration, unitsExcluded, runsScored, etaFallbacks, emptyRunsTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers recommendation metrics on the provided
// registry. If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(runDuration, unitsExcluded, runsScored, etaFallbacks, emptyRunsTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	runDuration, unitsExcluded, runsScored, etaFallbacks, emptyRunsTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
