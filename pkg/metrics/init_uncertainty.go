package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initUncertaintyMetrics() {
	r.MonteCarloRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_monte_carlo_runs_total",
			Help: "Total number of Monte Carlo runs by consumer",
		},
		[]string{"consumer"},
	)

	r.MonteCarloSimulations = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_monte_carlo_simulations",
			Help:    "Number of stochastic rollouts per Monte Carlo run",
			Buckets: []float64{100, 500, 1000, 5000, 10000, 50000},
		},
	)

	r.MonteCarloDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_monte_carlo_duration_seconds",
			Help:    "Monte Carlo run duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 3.0, 10.0},
		},
	)
}
