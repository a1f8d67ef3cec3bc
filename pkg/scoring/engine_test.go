package scoring

import (
	"errors"
	"math"
	"testing"
)

func seededEngine(t *testing.T) *Engine {
	t.Helper()
	opts := DefaultOptions()
	opts.Seed = 42
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func TestNewEngine_WeightValidation(t *testing.T) {
	cases := []struct {
		name string
		opts Options
	}{
		{
			"severity weights sum to 0.8",
			Options{SeverityWeights: Weights{
				FactorImmediateImpact:  0.2,
				FactorCascadePotential: 0.2,
				FactorPersistence:      0.2,
				FactorScope:            0.2,
			}},
		},
		{
			"missing weight",
			Options{SeverityWeights: Weights{
				FactorImmediateImpact:  0.5,
				FactorCascadePotential: 0.3,
				FactorPersistence:      0.2,
			}},
		},
		{
			"unknown extra weight",
			Options{SeverityWeights: Weights{
				FactorImmediateImpact:  0.3,
				FactorCascadePotential: 0.3,
				FactorPersistence:      0.2,
				FactorScope:            0.1,
				"astral_alignment":     0.1,
			}},
		},
		{
			"negative weight",
			Options{ProbabilityWeights: Weights{
				FactorEvidenceStrength:    0.6,
				FactorHistoricalPrecedent: 0.4,
				FactorTrendAlignment:      0.2,
				FactorExpertConsensus:     -0.2,
			}},
		},
		{"confidence level at one", Options{ConfidenceLevel: 1}},
		{"negative bootstrap samples", Options{BootstrapSamples: -5}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewEngine(tc.opts); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if _, err := NewEngine(Options{}); err != nil {
		t.Fatalf("zero options should take defaults: %v", err)
	}
	within := DefaultOptions()
	within.SeverityWeights = Weights{
		FactorImmediateImpact:  0.3,
		FactorCascadePotential: 0.3,
		FactorPersistence:      0.2,
		FactorScope:            0.205,
	}
	if _, err := NewEngine(within); err != nil {
		t.Fatalf("sum within tolerance rejected: %v", err)
	}
}

func TestCalculateSeverity_Extremes(t *testing.T) {
	e := seededEngine(t)

	max, err := NewSeverityFactors(1, 1, 1, 1)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}
	res, err := e.CalculateSeverity(max)
	if err != nil {
		t.Fatalf("CalculateSeverity: %v", err)
	}
	if math.Abs(res.Score-1.0) > 1e-12 {
		t.Fatalf("all-ones score = %.15f, want 1.0", res.Score)
	}
	if res.ConfidenceInterval.Upper > 1+1e-12 {
		t.Fatalf("bootstrap upper bound %.6f escaped the factor domain", res.ConfidenceInterval.Upper)
	}

	min, err := NewSeverityFactors(0, 0, 0, 0)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}
	res, err = e.CalculateSeverity(min)
	if err != nil {
		t.Fatalf("CalculateSeverity: %v", err)
	}
	if res.Score != 0 {
		t.Fatalf("all-zeros score = %.15f, want 0", res.Score)
	}
	if res.ConfidenceInterval.Lower < 0 {
		t.Fatalf("bootstrap lower bound %.6f escaped the factor domain", res.ConfidenceInterval.Lower)
	}
}

func TestCalculateSeverity_Attribution(t *testing.T) {
	e := seededEngine(t)
	factors, err := NewSeverityFactors(0.8, 0.5, 0.4, 0.6)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}

	res, err := e.CalculateSeverity(factors)
	if err != nil {
		t.Fatalf("CalculateSeverity: %v", err)
	}
	if math.Abs(res.Score-0.59) > 1e-12 {
		t.Fatalf("score = %.15f, want 0.59", res.Score)
	}

	wantContributions := map[string]float64{
		FactorImmediateImpact:  0.24,
		FactorCascadePotential: 0.15,
		FactorPersistence:      0.08,
		FactorScope:            0.12,
	}
	for name, want := range wantContributions {
		if got := res.Contributions[name]; math.Abs(got-want) > 1e-12 {
			t.Fatalf("contribution[%s] = %.15f, want %.2f", name, got, want)
		}
	}

	// For a linear score the finite-difference sensitivity collapses to
	// the factor's weight, independent of its current value.
	wantSensitivity := map[string]float64{
		FactorImmediateImpact:  0.3,
		FactorCascadePotential: 0.3,
		FactorPersistence:      0.2,
		FactorScope:            0.2,
	}
	for name, want := range wantSensitivity {
		if got := res.Sensitivity[name]; math.Abs(got-want) > 1e-9 {
			t.Fatalf("sensitivity[%s] = %.12f, want %.2f", name, got, want)
		}
	}

	ci := res.ConfidenceInterval
	if !ci.Contains(res.Score) {
		t.Fatalf("interval [%.4f, %.4f] does not contain the score %.4f", ci.Lower, ci.Upper, res.Score)
	}
	if ci.Level != 0.95 {
		t.Fatalf("interval level = %.2f, want 0.95", ci.Level)
	}
}

func TestCalculateSeverity_SensitivityAtZeroFactor(t *testing.T) {
	e := seededEngine(t)
	factors, err := NewSeverityFactors(0.8, 0, 0.4, 0.6)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}

	res, err := e.CalculateSeverity(factors)
	if err != nil {
		t.Fatalf("CalculateSeverity: %v", err)
	}

	// A factor currently at zero contributes nothing to the score but
	// still carries its full weight as leverage.
	if got := res.Contributions[FactorCascadePotential]; got != 0 {
		t.Fatalf("contribution[%s] = %.12f, want 0", FactorCascadePotential, got)
	}
	if got := res.Sensitivity[FactorCascadePotential]; math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("sensitivity[%s] = %.12f, want 0.3", FactorCascadePotential, got)
	}
}

func TestCalculateProbability(t *testing.T) {
	e := seededEngine(t)
	factors, err := NewProbabilityFactors(0.4, 0.8, 0.6, 0.2)
	if err != nil {
		t.Fatalf("NewProbabilityFactors: %v", err)
	}

	res, err := e.CalculateProbability(factors)
	if err != nil {
		t.Fatalf("CalculateProbability: %v", err)
	}
	if math.Abs(res.Score-0.50) > 1e-12 {
		t.Fatalf("score = %.15f, want 0.50", res.Score)
	}
	if len(res.Contributions) != 4 || len(res.Sensitivity) != 4 {
		t.Fatalf("expected 4 contributions and sensitivities, got %d/%d",
			len(res.Contributions), len(res.Sensitivity))
	}
}

func TestCalculate_RejectsInvalidFactors(t *testing.T) {
	e := seededEngine(t)

	if _, err := NewSeverityFactors(1.2, 0.5, 0.5, 0.5); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("expected ErrInvalidFactor, got %v", err)
	}
	if _, err := e.CalculateSeverity(SeverityFactors{ImmediateImpact: -0.1}); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("expected ErrInvalidFactor, got %v", err)
	}
	if _, err := e.CalculateProbability(ProbabilityFactors{ExpertConsensus: 1.5}); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("expected ErrInvalidFactor, got %v", err)
	}
}

func TestCalculateSeverity_ReproducibleWithSeed(t *testing.T) {
	factors, err := NewSeverityFactors(0.7, 0.3, 0.5, 0.6)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}

	first, err := seededEngine(t).CalculateSeverity(factors)
	if err != nil {
		t.Fatalf("first CalculateSeverity: %v", err)
	}
	second, err := seededEngine(t).CalculateSeverity(factors)
	if err != nil {
		t.Fatalf("second CalculateSeverity: %v", err)
	}
	if first.ConfidenceInterval != second.ConfidenceInterval {
		t.Fatalf("seeded intervals differ: %+v vs %+v",
			first.ConfidenceInterval, second.ConfidenceInterval)
	}
}
