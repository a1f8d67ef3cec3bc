package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initTrajectoryMetrics() {
	r.TrajectoriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cascade_trajectories_total",
			Help: "Total number of trajectory projections by granularity and outcome",
		},
		[]string{"granularity", "status"},
	)

	r.TrajectoryPointsPerRun = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_trajectory_points_per_run",
			Help:    "Number of baseline points per projected trajectory",
			Buckets: []float64{5, 10, 20, 60, 120, 240, 600},
		},
	)

	r.TrajectoryDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cascade_trajectory_duration_seconds",
			Help:    "Trajectory projection duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
	)

	r.TrajectoryBranchesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "cascade_trajectory_branches_total",
			Help: "Total number of alternative branches generated",
		},
	)
}
