package uncertainty

import (
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-cascade/pkg/numutil"
)

// BootstrapConfidenceInterval estimates a percentile confidence interval of
// the mean by resampling data with replacement nBootstrap times.
func (e *Engine) BootstrapConfidenceInterval(data []float64, nBootstrap int, confidenceLevel float64) (ConfidenceInterval, error) {
	if len(data) == 0 {
		return ConfidenceInterval{}, fmt.Errorf("%w: no data to bootstrap", ErrEmptyInput)
	}
	if nBootstrap <= 0 {
		return ConfidenceInterval{}, fmt.Errorf("%w: bootstrap count %d must be positive", ErrInvalidConfig, nBootstrap)
	}
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		return ConfidenceInterval{}, fmt.Errorf("%w: confidence level %.3f outside (0,1)", ErrInvalidConfig, confidenceLevel)
	}

	rng := e.newRand()
	n := len(data)

	means := make([]float64, nBootstrap)
	for b := 0; b < nBootstrap; b++ {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += data[rng.Intn(n)]
		}
		means[b] = sum / float64(n)
	}
	sort.Float64s(means)

	alpha := (1 - confidenceLevel) / 2
	return ConfidenceInterval{
		Lower:  percentileSorted(means, alpha),
		Upper:  percentileSorted(means, 1-alpha),
		Level:  confidenceLevel,
		Center: numutil.Mean(data),
	}, nil
}

// ConfidenceDecay returns the modeled confidence at projection distance t
// (years): CI(t) = initial * exp(-lambda*t) with lambda chosen so the curve
// passes through the target confidence at the horizon. The result never
// drops below 0.50.
func (e *Engine) ConfidenceDecay(t float64) float64 {
	return ConfidenceDecayAt(t, e.opts.Decay)
}

// ConfidenceDecayAt evaluates the decay curve for explicit parameters.
func ConfidenceDecayAt(t float64, p DecayParams) float64 {
	if t < 0 {
		t = 0
	}
	lambda := -math.Log(p.TargetCI/p.InitialCI) / p.Horizon
	ci := p.InitialCI * math.Exp(-lambda*t)
	if ci < 0.50 {
		return 0.50
	}
	return ci
}

// SensitivityAnalysis normalizes factor magnitudes to proportions as a
// first-order sensitivity proxy. A zero-magnitude vector yields all zeros.
func (e *Engine) SensitivityAnalysis(values []float64, names []string) (map[string]float64, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no factor values", ErrEmptyInput)
	}
	if len(values) != len(names) {
		return nil, fmt.Errorf("%w: %d values but %d names", ErrInvalidConfig, len(values), len(names))
	}

	total := 0.0
	for _, v := range values {
		total += math.Abs(v)
	}

	out := make(map[string]float64, len(values))
	for i, name := range names {
		if total == 0 {
			out[name] = 0
			continue
		}
		out[name] = math.Abs(values[i]) / total
	}
	return out, nil
}

// Decomposition splits total uncertainty into a reducible (epistemic) and an
// irreducible (aleatory) share.
type Decomposition struct {
	Epistemic         float64 `json:"epistemic"`
	Aleatory          float64 `json:"aleatory"`
	EpistemicFraction float64 `json:"epistemic_fraction"`
	AleatoryFraction  float64 `json:"aleatory_fraction"`
}

// DecomposeUncertainty estimates epistemic uncertainty as the variance
// across distinct model predictions and treats the remainder of the
// observed variance as aleatory.
func (e *Engine) DecomposeUncertainty(modelPredictions [][]float64, actualVariance float64) (*Decomposition, error) {
	if len(modelPredictions) == 0 {
		return nil, fmt.Errorf("%w: no model predictions", ErrEmptyInput)
	}
	if actualVariance < 0 {
		return nil, fmt.Errorf("%w: variance %.4f must be non-negative", ErrInvalidConfig, actualVariance)
	}

	modelMeans := make([]float64, len(modelPredictions))
	for i, preds := range modelPredictions {
		modelMeans[i] = numutil.Mean(preds)
	}

	epistemic := numutil.PopulationVariance(modelMeans)
	aleatory := math.Max(0, actualVariance-epistemic)

	d := &Decomposition{Epistemic: epistemic, Aleatory: aleatory}
	if total := epistemic + aleatory; total > 0 {
		d.EpistemicFraction = epistemic / total
		d.AleatoryFraction = aleatory / total
	}
	return d, nil
}

// PropagateUncertainty pushes a normal approximation of the input interval
// through an arbitrary transform and re-derives a percentile interval on
// the output. Used wherever a derived metric needs its own bounds.
func (e *Engine) PropagateUncertainty(interval ConfidenceInterval, transform func(float64) float64, nSamples int) (ConfidenceInterval, error) {
	if transform == nil {
		return ConfidenceInterval{}, fmt.Errorf("%w: nil transform", ErrInvalidConfig)
	}
	if nSamples <= 0 {
		return ConfidenceInterval{}, fmt.Errorf("%w: sample count %d must be positive", ErrInvalidConfig, nSamples)
	}
	level := interval.Level
	if level <= 0 || level >= 1 {
		level = e.opts.ConfidenceLevel
	}

	// Back out the normal parameters implied by the interval.
	mean := interval.Center
	if mean == 0 && interval.Lower != interval.Upper {
		mean = (interval.Lower + interval.Upper) / 2
	}
	z := numutil.ZScore((1 + level) / 2)
	std := 0.0
	if z > 0 {
		std = interval.Width() / (2 * z)
	}

	rng := e.newRand()
	outputs := make([]float64, nSamples)
	for i := range outputs {
		outputs[i] = transform(mean + rng.NormFloat64()*std)
	}
	sort.Float64s(outputs)

	alpha := (1 - level) / 2
	return ConfidenceInterval{
		Lower:  percentileSorted(outputs, alpha),
		Upper:  percentileSorted(outputs, 1-alpha),
		Level:  level,
		Center: numutil.Mean(outputs),
	}, nil
}
