package metrics

// MultiSink fanouts engine events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCandidateResult forwards the record to all sinks, returning the first error encountered.
func (m *MultiSink) RecordCandidateResult(results []CandidateResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordCandidateResult(results); err != nil {
			return err
		}
	}
	return nil
}

// RecordCoverage forwards coverage snapshots.
func (m *MultiSink) RecordCoverage(ev CoverageEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(CoverageRecorder); ok {
			if err := rec.RecordCoverage(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordForecast forwards demand forecasts.
func (m *MultiSink) RecordForecast(ev ForecastEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(ForecastRecorder); ok {
			if err := rec.RecordForecast(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordOutcome forwards dispatcher outcomes.
func (m *MultiSink) RecordOutcome(ev OutcomeEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(OutcomeRecorder); ok {
			if err := rec.RecordOutcome(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordRoutingLatency forwards latency samples when supported by the sink.
func (m *MultiSink) RecordRoutingLatency(latencies []RoutingLatency) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(RoutingLatencyRecorder); ok {
			if err := rec.RecordRoutingLatency(latencies); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFatigue forwards fatigue assessments when supported by the sink.
func (m *MultiSink) RecordFatigue(ev FatigueEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FatigueRecorder); ok {
			if err := rec.RecordFatigue(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
