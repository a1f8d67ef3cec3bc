package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initScoringMetrics() {
	r.DecisionPointsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_decision_points_per_run",
			Help:    "Number of decision points detected per trajectory",
			Buckets: []float64{0, 1, 2, 3, 5, 7},
		},
	)

	r.InflectionPointsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_inflection_points_per_run",
			Help:    "Number of inflection points detected per trajectory",
			Buckets: []float64{0, 1, 2, 5, 10, 25},
		},
	)

	r.ScoringOperationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_scoring_operations_total",
			Help: "Total number of scoring operations by type and outcome",
		},
		[]string{"operation", "status"},
	)

	r.ScoringDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cascade_scoring_duration_seconds",
			Help:    "Scoring operation duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"operation"},
	)

	r.CalibrationAdjustments = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cascade_calibration_adjustments_total",
			Help: "Total number of recorded expert calibration adjustments",
		},
	)

	r.CalibrationSuggestedShift = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "cascade_calibration_suggested_shift",
			Help: "Magnitude of the most recent suggested weight correction",
		},
	)
}
