package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the analysis pipeline
type Registry struct {
	// Cascade simulation metrics
	CascadeRunsTotal        *prometheus.CounterVec
	CascadeWavesPerRun      prometheus.Histogram
	CascadeCumulativeImpact prometheus.Histogram
	CascadeRunDuration      prometheus.Histogram
	FeedbackLoopsPerRun     prometheus.Histogram

	// Trajectory metrics
	TrajectoriesTotal       *prometheus.CounterVec
	TrajectoryPointsPerRun  prometheus.Histogram
	TrajectoryDuration      prometheus.Histogram
	TrajectoryBranchesTotal prometheus.Counter

	// Uncertainty metrics
	MonteCarloRunsTotal   *prometheus.CounterVec
	MonteCarloSimulations prometheus.Histogram
	MonteCarloDuration    prometheus.Histogram

	// Detection and scoring metrics
	DecisionPointsPerRun      prometheus.Histogram
	InflectionPointsPerRun    prometheus.Histogram
	ScoringOperationsTotal    *prometheus.CounterVec
	ScoringDuration           *prometheus.HistogramVec
	CalibrationAdjustments    prometheus.Counter
	CalibrationSuggestedShift prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initCascadeMetrics()
	r.initTrajectoryMetrics()
	r.initUncertaintyMetrics()
	r.initScoringMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
