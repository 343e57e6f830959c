// Package factory provides a small generic registry used to instantiate
// modules from configuration, such as the metrics sinks listed in the
// service config. A module is a type string plus a map of raw settings;
// factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example:
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	reg.Register("prometheus", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c metrics.Config
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return metrics.NewPromSink(c)
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "prometheus"})
package factory
