package trajectory

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/metrics"
	"github.com/dd0wney/cluso-cascade/pkg/uncertainty"
)

// Options configures a trajectory Engine.
type Options struct {
	// ConfidenceLevel is the two-sided bound level in (0,1).
	ConfidenceLevel float64
	// Seed fixes the Monte Carlo random source; 0 draws time-based seeds.
	Seed int64
	// MonteCarloSamples is the rollout count for baseline bounds.
	MonteCarloSamples int
	// BranchMonteCarloSamples is the reduced rollout count for branches.
	BranchMonteCarloSamples int
	// NoiseStd is the per-step Gaussian noise applied in rollouts.
	NoiseStd float64
	// Cascade configures the internal simulator.
	Cascade cascade.Options
	// Logger receives projection logs; nil uses the default logger.
	Logger logging.Logger
	// Metrics optionally records projection metrics.
	Metrics *metrics.Registry
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		ConfidenceLevel:         0.95,
		MonteCarloSamples:       2000,
		BranchMonteCarloSamples: 500,
		NoiseStd:                0.05,
		Cascade:                 cascade.DefaultOptions(),
	}
}

// Engine projects breach scenarios into state-variable trajectories. A
// single Engine may be shared across goroutines: each Project call builds
// its own simulator and the statistical engine is stateless per call.
type Engine struct {
	opts        Options
	uncertainty *uncertainty.Engine
	logger      logging.Logger
}

// NewEngine validates the options and creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.ConfidenceLevel == 0 {
		opts.ConfidenceLevel = 0.95
	}
	if opts.ConfidenceLevel < 0 || opts.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("%w: confidence level %.3f outside (0,1)", ErrInvalidConfig, opts.ConfidenceLevel)
	}
	if opts.MonteCarloSamples < 0 || opts.BranchMonteCarloSamples < 0 {
		return nil, fmt.Errorf("%w: negative sample count", ErrInvalidConfig)
	}
	if opts.MonteCarloSamples == 0 {
		opts.MonteCarloSamples = DefaultOptions().MonteCarloSamples
	}
	if opts.BranchMonteCarloSamples == 0 {
		opts.BranchMonteCarloSamples = DefaultOptions().BranchMonteCarloSamples
	}
	if opts.NoiseStd < 0 {
		return nil, fmt.Errorf("%w: noise std %.4f must be non-negative", ErrInvalidConfig, opts.NoiseStd)
	}
	if opts.Cascade.DampeningFactor == 0 && opts.Cascade.SaturationThreshold == 0 {
		opts.Cascade = cascade.DefaultOptions()
	}
	if opts.Cascade.Metrics == nil {
		opts.Cascade.Metrics = opts.Metrics
	}
	if opts.Logger == nil {
		opts.Logger = logging.DefaultLogger()
	}

	ue, err := uncertainty.NewEngine(uncertainty.Options{
		ConfidenceLevel: opts.ConfidenceLevel,
		Seed:            opts.Seed,
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		opts:        opts,
		uncertainty: ue,
		logger:      opts.Logger.With(logging.Component("trajectory")),
	}, nil
}

// Project simulates the breach against the dependency graph out to the
// farthest horizon and evolves the state variables along a uniform grid.
// Each cascade wave lands on its nearest grid point; every state variable
// then drops by impact x decay x multiplier and is clamped to its range.
// Confidence bounds come from a Monte Carlo pass over the same impact
// schedule, widened by the inverse confidence decay so uncertainty grows
// with temporal distance. A nil baseline uses the canonical default state.
func (e *Engine) Project(breach BreachCondition, graph *cascade.Graph, horizons []float64, granularity Granularity, baseline *StateVariables) (*Trajectory, error) {
	start := time.Now()

	if graph == nil {
		return nil, fmt.Errorf("%w: nil dependency graph", ErrInvalidInput)
	}
	if len(horizons) == 0 {
		return nil, fmt.Errorf("%w: no time horizons", ErrInvalidInput)
	}
	horizon := 0.0
	for _, h := range horizons {
		if h <= 0 {
			return nil, fmt.Errorf("%w: time horizon %.3f must be positive", ErrInvalidInput, h)
		}
		horizon = math.Max(horizon, h)
	}
	if !granularity.IsValid() {
		return nil, fmt.Errorf("%w: granularity %q", ErrInvalidConfig, granularity)
	}

	base := DefaultBaseline()
	if baseline != nil {
		base = baseline.Clamp()
	}

	sim, err := cascade.NewSimulator(graph, e.opts.Cascade)
	if err != nil {
		return nil, err
	}

	timeStep := granularity.TimeStep()
	run, err := sim.Simulate(breach.NodeID, horizon, timeStep)
	if err != nil {
		e.recordTrajectory(string(granularity), "error", 0, start)
		return nil, err
	}

	steps := int(math.Round(horizon * float64(granularity.StepsPerYear())))
	impacts := make([]float64, steps+1)
	waveNums := make([]int, steps+1)
	for i := range waveNums {
		waveNums[i] = -1
	}
	for _, wave := range run.Waves {
		idx := nearestIndex(wave.Timestamp, timeStep, steps)
		impacts[idx] += waveTotal(wave)
		waveNums[idx] = wave.Number
	}

	points := make([]Point, 0, steps+1)
	state := base
	lastWave := -1
	for i := 0; i <= steps; i++ {
		t := float64(i) * timeStep
		if impacts[i] > 0 {
			state = state.applyImpact(impacts[i], decayFactor(t))
			lastWave = waveNums[i]
		}
		points = append(points, Point{Timestamp: t, State: state, WaveNumber: lastWave})
	}

	if err := e.boundPoints(points, base.PrimaryMetric, impacts, e.opts.MonteCarloSamples, "trajectory"); err != nil {
		e.recordTrajectory(string(granularity), "error", 0, start)
		return nil, err
	}

	traj := &Trajectory{
		ID:          uuid.NewString(),
		TimeHorizon: horizon,
		Granularity: granularity,
		Baseline:    points,
		Metadata: Metadata{
			Breach:           breach,
			Horizons:         append([]float64(nil), horizons...),
			CascadeDepth:     run.Depth(),
			CumulativeImpact: run.CumulativeImpact,
			Saturated:        run.Saturated,
			AffectedDomains:  run.AffectedDomains,
			FeedbackLoops:    len(run.FeedbackLoops),
			WaveImpacts:      impacts,
		},
	}

	e.logger.Info("trajectory projected",
		logging.TrajectoryID(traj.ID),
		logging.BreachNode(breach.NodeID),
		logging.Granularity(string(granularity)),
		logging.Horizon(horizon),
		logging.Points(len(points)),
		logging.Waves(run.Depth()),
	)
	e.recordTrajectory(string(granularity), "completed", len(points), start)
	return traj, nil
}

// boundPoints fills per-point confidence bounds: a Monte Carlo pass over the
// primary-metric impact schedule yields band offsets around the mean, which
// are re-centered on the clamped deterministic path and widened by the
// inverse confidence decay.
func (e *Engine) boundPoints(points []Point, initial float64, impacts []float64, samples int, consumer string) error {
	if len(points) == 0 {
		return nil
	}

	schedule := make([]float64, len(points))
	for i := range schedule {
		schedule[i] = -impacts[i] * decayFactor(points[i].Timestamp) * multPrimary
	}

	mcStart := time.Now()
	mc, err := e.uncertainty.MonteCarloTrajectory(initial, schedule, len(points), samples, e.opts.NoiseStd)
	if err != nil {
		return err
	}
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordMonteCarlo(consumer, samples, time.Since(mcStart))
	}

	for i := range points {
		widen := 1.0 / e.uncertainty.ConfidenceDecay(points[i].Timestamp)
		center := points[i].State.PrimaryMetric
		points[i].Bounds = ConfidenceBounds{
			Lower: center + (mc.Lower[i]-mc.Mean[i])*widen,
			Upper: center + (mc.Upper[i]-mc.Mean[i])*widen,
		}
	}
	return nil
}

// decayFactor attenuates cascade impact with elapsed time.
func decayFactor(t float64) float64 {
	return math.Exp(-0.1 * t)
}

// waveTotal sums a wave's applied impact magnitudes.
func waveTotal(w cascade.Wave) float64 {
	total := 0.0
	for _, v := range w.Impacts {
		total += v
	}
	return total
}

// nearestIndex maps a timestamp onto the closest grid index.
func nearestIndex(ts, timeStep float64, max int) int {
	idx := int(math.Round(ts / timeStep))
	if idx < 0 {
		return 0
	}
	if idx > max {
		return max
	}
	return idx
}

func (e *Engine) recordTrajectory(granularity, status string, points int, start time.Time) {
	if e.opts.Metrics == nil {
		return
	}
	e.opts.Metrics.RecordTrajectory(granularity, status, points, time.Since(start))
}
