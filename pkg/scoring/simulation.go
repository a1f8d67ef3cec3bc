package scoring

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/numutil"
)

// DistributionSummary describes one simulated score distribution.
type DistributionSummary struct {
	Mean        float64            `json:"mean"`
	Std         float64            `json:"std"`
	Percentiles map[string]float64 `json:"percentiles"`
}

// SimulationResult holds the joint Monte Carlo distributions for severity,
// probability, and their product.
type SimulationResult struct {
	Severity    DistributionSummary `json:"severity"`
	Probability DistributionSummary `json:"probability"`
	Risk        DistributionSummary `json:"risk"`
	Simulations int                 `json:"simulations"`
}

// MonteCarloSimulation jointly perturbs both factor vectors per simulation
// and reports the resulting severity, probability, and risk distributions.
func (e *Engine) MonteCarloSimulation(severity SeverityFactors, probability ProbabilityFactors, simulations int) (*SimulationResult, error) {
	start := time.Now()
	if simulations < 0 {
		e.recordOperation("monte_carlo_simulation", "error", start)
		return nil, fmt.Errorf("%w: simulations must be non-negative", ErrInvalidInput)
	}
	if simulations == 0 {
		simulations = 1000
	}
	if err := severity.Validate(); err != nil {
		e.recordOperation("monte_carlo_simulation", "error", start)
		return nil, err
	}
	if err := probability.Validate(); err != nil {
		e.recordOperation("monte_carlo_simulation", "error", start)
		return nil, err
	}

	rng := e.newRand()
	severityBase := severity.vector()
	probabilityBase := probability.vector()
	severityDraw := make([]float64, len(severityBase))
	probabilityDraw := make([]float64, len(probabilityBase))

	severities := make([]float64, simulations)
	probabilities := make([]float64, simulations)
	risks := make([]float64, simulations)
	for s := 0; s < simulations; s++ {
		for i, v := range severityBase {
			severityDraw[i] = numutil.Clamp(v+rng.NormFloat64()*bootstrapNoiseStd, 0, 1)
		}
		for i, v := range probabilityBase {
			probabilityDraw[i] = numutil.Clamp(v+rng.NormFloat64()*bootstrapNoiseStd, 0, 1)
		}
		severities[s] = weightedScore(severityFactorNames, severityDraw, e.opts.SeverityWeights)
		probabilities[s] = weightedScore(probabilityFactorNames, probabilityDraw, e.opts.ProbabilityWeights)
		risks[s] = severities[s] * probabilities[s]
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordMonteCarlo("scoring", simulations, time.Since(start))
	}
	e.recordOperation("monte_carlo_simulation", "completed", start)
	e.logger.Info("risk distribution simulated",
		logging.Operation("monte_carlo_simulation"),
		logging.Simulations(simulations),
		logging.Latency(time.Since(start)),
	)
	return &SimulationResult{
		Severity:    summarize(severities),
		Probability: summarize(probabilities),
		Risk:        summarize(risks),
		Simulations: simulations,
	}, nil
}

func summarize(samples []float64) DistributionSummary {
	return DistributionSummary{
		Mean: numutil.Mean(samples),
		Std:  numutil.StdDev(samples),
		Percentiles: map[string]float64{
			"p5":  numutil.Percentile(samples, 5),
			"p25": numutil.Percentile(samples, 25),
			"p50": numutil.Percentile(samples, 50),
			"p75": numutil.Percentile(samples, 75),
			"p95": numutil.Percentile(samples, 95),
		},
	}
}
