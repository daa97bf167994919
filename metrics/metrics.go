// Package metrics defines the Prometheus gauges, counters and histogram
// registered for the health op's /metrics endpoint, grounded on
// kraklabs-cie's pkg/ingestion/metrics.go registration style (the pack's
// only Prometheus-client user), generalized from its once-registered
// package-level counters into an explicit Registry value so tests don't
// collide on the default registerer. The CLI updates PointsIndexed (index)
// and SearchLatency (search, analyze); nothing updates ActiveJobs,
// JobsCompleted or JobsFailed, so they report zero. The health op's
// active_jobs field is read from the job registry, not from ActiveJobs.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry holds every gauge/counter the service exposes on /metrics.
type Registry struct {
	ActiveJobs    prometheus.Gauge
	PointsIndexed prometheus.Gauge
	JobsCompleted prometheus.Counter
	JobsFailed    prometheus.Counter
	SearchLatency prometheus.Histogram
}

// New builds and registers a fresh Registry against reg.
func New(reg prometheus.Registerer) *Registry {
	m := &Registry{
		ActiveJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coderag_active_jobs", Help: "Jobs currently pending or running.",
		}),
		PointsIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "coderag_points_indexed", Help: "Vector points written to the ANN index.",
		}),
		JobsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coderag_jobs_completed_total", Help: "Jobs that reached status completed.",
		}),
		JobsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "coderag_jobs_failed_total", Help: "Jobs that reached status failed or cancelled.",
		}),
		SearchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "coderag_search_seconds",
			Help:    "search/analyze end-to-end latency.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
	reg.MustRegister(m.ActiveJobs, m.PointsIndexed, m.JobsCompleted, m.JobsFailed, m.SearchLatency)
	return m
}
