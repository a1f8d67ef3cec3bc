package scoring

import (
	"errors"
	"math"
	"testing"
)

func orderedPercentiles(t *testing.T, label string, d DistributionSummary) {
	t.Helper()
	keys := []string{"p5", "p25", "p50", "p75", "p95"}
	for i := 1; i < len(keys); i++ {
		lo, hi := d.Percentiles[keys[i-1]], d.Percentiles[keys[i]]
		if lo > hi {
			t.Fatalf("%s: %s=%.4f above %s=%.4f", label, keys[i-1], lo, keys[i], hi)
		}
	}
}

func TestMonteCarloSimulation(t *testing.T) {
	opts := DefaultOptions()
	opts.Seed = 99
	e, err := NewEngine(opts)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	severity, err := NewSeverityFactors(0.6, 0.5, 0.4, 0.7)
	if err != nil {
		t.Fatalf("NewSeverityFactors: %v", err)
	}
	probability, err := NewProbabilityFactors(0.5, 0.6, 0.4, 0.3)
	if err != nil {
		t.Fatalf("NewProbabilityFactors: %v", err)
	}

	res, err := e.MonteCarloSimulation(severity, probability, 2000)
	if err != nil {
		t.Fatalf("MonteCarloSimulation: %v", err)
	}
	if res.Simulations != 2000 {
		t.Fatalf("simulations = %d, want 2000", res.Simulations)
	}

	// Deterministic scores are 0.55 and 0.465; zero-mean noise keeps the
	// simulated means close and the risk mean near their product.
	if math.Abs(res.Severity.Mean-0.55) > 0.02 {
		t.Fatalf("severity mean = %.4f, want ~0.55", res.Severity.Mean)
	}
	if math.Abs(res.Probability.Mean-0.465) > 0.02 {
		t.Fatalf("probability mean = %.4f, want ~0.465", res.Probability.Mean)
	}
	if math.Abs(res.Risk.Mean-0.55*0.465) > 0.02 {
		t.Fatalf("risk mean = %.4f, want ~%.4f", res.Risk.Mean, 0.55*0.465)
	}

	for _, d := range []DistributionSummary{res.Severity, res.Probability, res.Risk} {
		if d.Std <= 0 {
			t.Fatalf("expected positive spread, got std %.6f", d.Std)
		}
	}
	orderedPercentiles(t, "severity", res.Severity)
	orderedPercentiles(t, "probability", res.Probability)
	orderedPercentiles(t, "risk", res.Risk)
}

func TestMonteCarloSimulation_DefaultsAndValidation(t *testing.T) {
	e := seededEngine(t)
	severity, _ := NewSeverityFactors(0.5, 0.5, 0.5, 0.5)
	probability, _ := NewProbabilityFactors(0.5, 0.5, 0.5, 0.5)

	res, err := e.MonteCarloSimulation(severity, probability, 0)
	if err != nil {
		t.Fatalf("MonteCarloSimulation: %v", err)
	}
	if res.Simulations != 1000 {
		t.Fatalf("zero simulations should default to 1000, got %d", res.Simulations)
	}

	if _, err := e.MonteCarloSimulation(severity, probability, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.MonteCarloSimulation(SeverityFactors{ImmediateImpact: 2}, probability, 100); !errors.Is(err, ErrInvalidFactor) {
		t.Fatalf("expected ErrInvalidFactor, got %v", err)
	}
}

func TestMonteCarloSimulation_Reproducible(t *testing.T) {
	severity, _ := NewSeverityFactors(0.7, 0.4, 0.6, 0.5)
	probability, _ := NewProbabilityFactors(0.3, 0.5, 0.7, 0.6)

	first, err := seededEngine(t).MonteCarloSimulation(severity, probability, 500)
	if err != nil {
		t.Fatalf("first MonteCarloSimulation: %v", err)
	}
	second, err := seededEngine(t).MonteCarloSimulation(severity, probability, 500)
	if err != nil {
		t.Fatalf("second MonteCarloSimulation: %v", err)
	}
	if first.Risk.Mean != second.Risk.Mean || first.Risk.Std != second.Risk.Std {
		t.Fatalf("seeded runs differ: %+v vs %+v", first.Risk, second.Risk)
	}
	if first.Severity.Percentiles["p50"] != second.Severity.Percentiles["p50"] {
		t.Fatal("seeded percentiles differ")
	}
}
