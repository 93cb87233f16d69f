package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// NewRegistry returns a registry with build info, process and Go runtime
// (GC and scheduler) collectors. The extra collectors get a constant
// service label.
func NewRegistry(service string, extra ...prometheus.Collector) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewBuildInfoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(
				collectors.MetricsGC,
				collectors.MetricsScheduler,
			),
		),
	)

	if len(extra) > 0 {
		labeled := prometheus.WrapRegistererWith(prometheus.Labels{"service": service}, reg)
		labeled.MustRegister(extra...)
	}

	return reg
}
