package scoring

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/metrics"
	"github.com/dd0wney/cluso-cascade/pkg/numutil"
	"github.com/dd0wney/cluso-cascade/pkg/uncertainty"
)

// Common sentinel errors
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidFactor    = errors.New("factor outside [0,1]")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoAdjustments    = errors.New("no adjustments recorded")
	ErrInsufficientData = errors.New("insufficient adjustments")
)

// weightSumTolerance is the permitted deviation of a weight set from 1.0.
const weightSumTolerance = 0.01

// bootstrapNoiseStd is the Gaussian perturbation applied to factor vectors
// when resampling scores.
const bootstrapNoiseStd = 0.05

// Weights maps factor names to their share of the score.
type Weights map[string]float64

// DefaultSeverityWeights returns the standard severity weighting.
func DefaultSeverityWeights() Weights {
	return Weights{
		FactorImmediateImpact:  0.3,
		FactorCascadePotential: 0.3,
		FactorPersistence:      0.2,
		FactorScope:            0.2,
	}
}

// DefaultProbabilityWeights returns the standard probability weighting.
func DefaultProbabilityWeights() Weights {
	return Weights{
		FactorEvidenceStrength:    0.35,
		FactorHistoricalPrecedent: 0.25,
		FactorTrendAlignment:      0.2,
		FactorExpertConsensus:     0.2,
	}
}

// validate checks that the weight set covers exactly the given factor names
// and sums to 1.0 within tolerance.
func (w Weights) validate(names []string) error {
	if len(w) != len(names) {
		return fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidConfig, len(names), len(w))
	}
	sum := 0.0
	for _, name := range names {
		value, ok := w[name]
		if !ok {
			return fmt.Errorf("%w: missing weight for %q", ErrInvalidConfig, name)
		}
		if value < 0 {
			return fmt.Errorf("%w: weight for %q is negative", ErrInvalidConfig, name)
		}
		sum += value
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must be 1.0 within %.2f", ErrInvalidConfig, sum, weightSumTolerance)
	}
	return nil
}

// Options configures a scoring Engine.
type Options struct {
	SeverityWeights    Weights
	ProbabilityWeights Weights
	// ConfidenceLevel is the two-sided bootstrap interval level in (0,1).
	ConfidenceLevel float64
	// BootstrapSamples is the number of perturbed re-scores per interval.
	BootstrapSamples int
	// Seed fixes the random source for reproducible runs; 0 draws a
	// time-based seed per call.
	Seed    int64
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		SeverityWeights:    DefaultSeverityWeights(),
		ProbabilityWeights: DefaultProbabilityWeights(),
		ConfidenceLevel:    0.95,
		BootstrapSamples:   1000,
	}
}

// Engine scores severity and probability factors. It holds no per-call
// state and may be shared across goroutines.
type Engine struct {
	opts   Options
	logger logging.Logger
}

// NewEngine validates the weight sets and creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.SeverityWeights == nil {
		opts.SeverityWeights = DefaultSeverityWeights()
	}
	if opts.ProbabilityWeights == nil {
		opts.ProbabilityWeights = DefaultProbabilityWeights()
	}
	if err := opts.SeverityWeights.validate(severityFactorNames); err != nil {
		return nil, fmt.Errorf("severity weights: %w", err)
	}
	if err := opts.ProbabilityWeights.validate(probabilityFactorNames); err != nil {
		return nil, fmt.Errorf("probability weights: %w", err)
	}
	if opts.ConfidenceLevel == 0 {
		opts.ConfidenceLevel = 0.95
	}
	if opts.ConfidenceLevel <= 0 || opts.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("%w: confidence level %.3f outside (0,1)", ErrInvalidConfig, opts.ConfidenceLevel)
	}
	if opts.BootstrapSamples < 0 {
		return nil, fmt.Errorf("%w: bootstrap samples must be non-negative", ErrInvalidConfig)
	}
	if opts.BootstrapSamples == 0 {
		opts.BootstrapSamples = 1000
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Engine{
		opts:   opts,
		logger: logger.With(logging.Component("scoring")),
	}, nil
}

// newRand returns a fresh random source, seeded from the options or, when
// no seed is configured, from the clock.
func (e *Engine) newRand() *rand.Rand {
	seed := e.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ScoreResult is one scored dimension with its uncertainty attribution.
type ScoreResult struct {
	Score              float64                        `json:"score"`
	ConfidenceInterval uncertainty.ConfidenceInterval `json:"confidence_interval"`
	Contributions      map[string]float64             `json:"contributions"`
	Sensitivity        map[string]float64             `json:"sensitivity"`
}

// CalculateSeverity scores severity factors against the engine's severity
// weights.
func (e *Engine) CalculateSeverity(factors SeverityFactors) (*ScoreResult, error) {
	return e.calculate("calculate_severity", severityFactorNames, factors.vector(), e.opts.SeverityWeights)
}

// CalculateProbability scores probability factors against the engine's
// probability weights.
func (e *Engine) CalculateProbability(factors ProbabilityFactors) (*ScoreResult, error) {
	return e.calculate("calculate_probability", probabilityFactorNames, factors.vector(), e.opts.ProbabilityWeights)
}

func (e *Engine) calculate(operation string, names []string, values []float64, weights Weights) (*ScoreResult, error) {
	start := time.Now()
	if err := validateFactors(names, values); err != nil {
		e.recordOperation(operation, "error", start)
		return nil, err
	}

	score := weightedScore(names, values, weights)

	contributions := make(map[string]float64, len(names))
	for i, name := range names {
		contributions[name] = weights[name] * values[i]
	}

	interval := e.bootstrapInterval(names, values, weights, score)
	sensitivity := sensitivities(names, values, weights, score)

	e.recordOperation(operation, "completed", start)
	e.logger.Info("factors scored",
		logging.Operation(operation),
		logging.Float64("score", score),
		logging.Latency(time.Since(start)),
	)
	return &ScoreResult{
		Score:              score,
		ConfidenceInterval: interval,
		Contributions:      contributions,
		Sensitivity:        sensitivity,
	}, nil
}

// bootstrapInterval perturbs the factor vector with Gaussian noise,
// re-scores each draw, and takes percentile bounds at the configured level.
// Perturbed factors are clamped back into [0,1] so resampled scores stay in
// the factor domain.
func (e *Engine) bootstrapInterval(names []string, values []float64, weights Weights, score float64) uncertainty.ConfidenceInterval {
	rng := e.newRand()
	samples := make([]float64, e.opts.BootstrapSamples)
	perturbed := make([]float64, len(values))
	for s := range samples {
		for i, v := range values {
			perturbed[i] = numutil.Clamp(v+rng.NormFloat64()*bootstrapNoiseStd, 0, 1)
		}
		samples[s] = weightedScore(names, perturbed, weights)
	}

	alpha := (1 - e.opts.ConfidenceLevel) / 2
	return uncertainty.ConfidenceInterval{
		Lower:  numutil.Percentile(samples, alpha*100),
		Upper:  numutil.Percentile(samples, (1-alpha)*100),
		Level:  e.opts.ConfidenceLevel,
		Center: score,
	}
}

// sensitivities estimates each factor's leverage by a finite difference:
// bump the factor by 0.01 on its [0,1] scale and report the absolute score
// change per unit of perturbation. The bump is absolute, not relative, so a
// currently-zero factor still reports the leverage it would have.
func sensitivities(names []string, values []float64, weights Weights, score float64) map[string]float64 {
	out := make(map[string]float64, len(names))
	bumped := make([]float64, len(values))
	for i, name := range names {
		copy(bumped, values)
		bumped[i] = values[i] + 0.01
		out[name] = math.Abs(weightedScore(names, bumped, weights)-score) / 0.01
	}
	return out
}

func weightedScore(names []string, values []float64, weights Weights) float64 {
	score := 0.0
	for i, name := range names {
		score += weights[name] * values[i]
	}
	return score
}

func (e *Engine) recordOperation(operation, status string, start time.Time) {
	if e.opts.Metrics == nil {
		return
	}
	e.opts.Metrics.RecordScoringOperation(operation, status, time.Since(start))
}
