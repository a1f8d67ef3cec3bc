// Package scoring converts normalized severity and probability factors into
// weighted scores with bootstrap confidence intervals, sensitivity
// attribution, and an expert-calibration feedback loop. The engine is
// stateless per call and safe to share; the calibrator keeps an append-only
// adjustment log and is not.
package scoring

import "fmt"

// Factor names double as weight keys and JSON attribute names.
const (
	FactorImmediateImpact  = "immediate_impact"
	FactorCascadePotential = "cascade_potential"
	FactorPersistence      = "persistence"
	FactorScope            = "scope"

	FactorEvidenceStrength    = "evidence_strength"
	FactorHistoricalPrecedent = "historical_precedent"
	FactorTrendAlignment      = "trend_alignment"
	FactorExpertConsensus     = "expert_consensus"
)

// severityFactorNames is the canonical scoring order for severity.
var severityFactorNames = []string{
	FactorImmediateImpact,
	FactorCascadePotential,
	FactorPersistence,
	FactorScope,
}

// probabilityFactorNames is the canonical scoring order for probability.
var probabilityFactorNames = []string{
	FactorEvidenceStrength,
	FactorHistoricalPrecedent,
	FactorTrendAlignment,
	FactorExpertConsensus,
}

// SeverityFactors are the four normalized severity inputs.
type SeverityFactors struct {
	ImmediateImpact  float64 `json:"immediate_impact"`
	CascadePotential float64 `json:"cascade_potential"`
	Persistence      float64 `json:"persistence"`
	Scope            float64 `json:"scope"`
}

// NewSeverityFactors validates each factor into [0,1].
func NewSeverityFactors(immediateImpact, cascadePotential, persistence, scope float64) (SeverityFactors, error) {
	f := SeverityFactors{
		ImmediateImpact:  immediateImpact,
		CascadePotential: cascadePotential,
		Persistence:      persistence,
		Scope:            scope,
	}
	if err := f.Validate(); err != nil {
		return SeverityFactors{}, err
	}
	return f, nil
}

// Validate rejects factors outside [0,1].
func (f SeverityFactors) Validate() error {
	return validateFactors(severityFactorNames, f.vector())
}

func (f SeverityFactors) vector() []float64 {
	return []float64{f.ImmediateImpact, f.CascadePotential, f.Persistence, f.Scope}
}

// ProbabilityFactors are the four normalized likelihood inputs.
type ProbabilityFactors struct {
	EvidenceStrength    float64 `json:"evidence_strength"`
	HistoricalPrecedent float64 `json:"historical_precedent"`
	TrendAlignment      float64 `json:"trend_alignment"`
	ExpertConsensus     float64 `json:"expert_consensus"`
}

// NewProbabilityFactors validates each factor into [0,1].
func NewProbabilityFactors(evidenceStrength, historicalPrecedent, trendAlignment, expertConsensus float64) (ProbabilityFactors, error) {
	f := ProbabilityFactors{
		EvidenceStrength:    evidenceStrength,
		HistoricalPrecedent: historicalPrecedent,
		TrendAlignment:      trendAlignment,
		ExpertConsensus:     expertConsensus,
	}
	if err := f.Validate(); err != nil {
		return ProbabilityFactors{}, err
	}
	return f, nil
}

// Validate rejects factors outside [0,1].
func (f ProbabilityFactors) Validate() error {
	return validateFactors(probabilityFactorNames, f.vector())
}

func (f ProbabilityFactors) vector() []float64 {
	return []float64{f.EvidenceStrength, f.HistoricalPrecedent, f.TrendAlignment, f.ExpertConsensus}
}

func validateFactors(names []string, values []float64) error {
	for i, v := range values {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s = %.4f", ErrInvalidFactor, names[i], v)
		}
	}
	return nil
}
