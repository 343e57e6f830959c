package metrics

import (
	"fmt"

	"github.com/medispatch/engine/core/factory"
)

var sinkRegistry = factory.NewRegistry[MetricsSink]()

// RegisterMetricsSink adds a metrics sink factory identified by name.
// Sink implementations register themselves in init.
func RegisterMetricsSink(name string, f factory.Factory[MetricsSink]) error {
	return sinkRegistry.Register(name, f)
}

// SinkTypes returns the registered sink type names.
func SinkTypes() []string {
	return sinkRegistry.Types()
}

// NewMetricsSink builds a sink from configuration: none yields a no-op
// sink, several are fanned out through a MultiSink.
func NewMetricsSink(cfgs []factory.ModuleConfig) (MetricsSink, error) {
	switch len(cfgs) {
	case 0:
		return NopSink{}, nil
	case 1:
		return sinkRegistry.Create(cfgs[0])
	}
	sinks := make([]MetricsSink, len(cfgs))
	for i, c := range cfgs {
		s, err := sinkRegistry.Create(c)
		if err != nil {
			return nil, fmt.Errorf("metrics sink %q: %w", c.Type, err)
		}
		sinks[i] = s
	}
	return NewMultiSink(sinks...), nil
}
