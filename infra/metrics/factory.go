package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medispatch/engine/core/factory"
	coremetrics "github.com/medispatch/engine/core/metrics"
)

type influxConf struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// init registers the built-in metrics sinks so config can select them
// by type name.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c coremetrics.Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		// The scrape server is started separately; the sink only needs
		// a registerer.
		return NewPromSinkWithRegistry(c, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c influxConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
