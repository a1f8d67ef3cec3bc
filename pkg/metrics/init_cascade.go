package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCascadeMetrics() {
	r.CascadeRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_runs_total",
			Help: "Total number of cascade simulations by outcome",
		},
		[]string{"status"},
	)

	r.CascadeWavesPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_waves_per_run",
			Help:    "Number of propagation waves per simulation run",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100},
		},
	)

	r.CascadeCumulativeImpact = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_cumulative_impact",
			Help:    "Cumulative propagated impact per simulation run",
			Buckets: []float64{0.1, 0.25, 0.5, 0.9, 1.5, 3.0, 6.0},
		},
	)

	r.CascadeRunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_run_duration_seconds",
			Help:    "Cascade simulation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 5.0},
		},
	)

	r.FeedbackLoopsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_feedback_loops_per_run",
			Help:    "Number of feedback loops detected per simulation run",
			Buckets: []float64{0, 1, 2, 5, 10, 50, 200, 1000},
		},
	)
}
