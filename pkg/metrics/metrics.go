package metrics

import (
	"time"
)

// RecordCascadeRun records one cascade simulation with its outcome
func (r *Registry) RecordCascadeRun(status string, waves int, cumulativeImpact float64, duration time.Duration) {
	r.CascadeRunsTotal.WithLabelValues(status).Inc()
	r.CascadeWavesPerRun.Observe(float64(waves))
	r.CascadeCumulativeImpact.Observe(cumulativeImpact)
	r.CascadeRunDuration.Observe(duration.Seconds())
}

// RecordFeedbackLoops records the number of loops detected in one run
func (r *Registry) RecordFeedbackLoops(count int) {
	r.FeedbackLoopsPerRun.Observe(float64(count))
}

// RecordTrajectory records one trajectory projection
func (r *Registry) RecordTrajectory(granularity, status string, points int, duration time.Duration) {
	r.TrajectoriesTotal.WithLabelValues(granularity, status).Inc()
	r.TrajectoryPointsPerRun.Observe(float64(points))
	r.TrajectoryDuration.Observe(duration.Seconds())
}

// RecordBranches records generated alternative branches
func (r *Registry) RecordBranches(count int) {
	r.TrajectoryBranchesTotal.Add(float64(count))
}

// RecordMonteCarlo records one Monte Carlo run for the given consumer
// ("trajectory", "scoring", "propagation")
func (r *Registry) RecordMonteCarlo(consumer string, simulations int, duration time.Duration) {
	r.MonteCarloRunsTotal.WithLabelValues(consumer).Inc()
	r.MonteCarloSimulations.Observe(float64(simulations))
	r.MonteCarloDuration.Observe(duration.Seconds())
}

// RecordDetection records detector output sizes for one trajectory
func (r *Registry) RecordDetection(decisionPoints, inflectionPoints int) {
	r.DecisionPointsPerRun.Observe(float64(decisionPoints))
	r.InflectionPointsPerRun.Observe(float64(inflectionPoints))
}

// RecordScoringOperation records a scoring operation with its duration
func (r *Registry) RecordScoringOperation(operation, status string, duration time.Duration) {
	r.ScoringOperationsTotal.WithLabelValues(operation, status).Inc()
	r.ScoringDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCalibrationAdjustment records one expert adjustment
func (r *Registry) RecordCalibrationAdjustment() {
	r.CalibrationAdjustments.Inc()
}

// SetCalibrationSuggestedShift publishes the latest suggested correction magnitude
func (r *Registry) SetCalibrationSuggestedShift(shift float64) {
	r.CalibrationSuggestedShift.Set(shift)
}
