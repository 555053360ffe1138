package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/techdispatch/core/factory"
	coremetrics "github.com/kilianp07/techdispatch/core/metrics"
)

func init() {
	mustRegister("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})
	// Every prometheus entry shares the default registry and its collectors.
	mustRegister("prometheus", func(map[string]any) (coremetrics.MetricsSink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})
	mustRegister("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}

func mustRegister(name string, f factory.Factory[coremetrics.MetricsSink]) {
	if err := coremetrics.RegisterMetricsSink(name, f); err != nil {
		panic(err)
	}
}
