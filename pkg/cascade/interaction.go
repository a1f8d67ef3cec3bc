package cascade

import "fmt"

// Interaction weight defaults: same-domain propagation carries full weight,
// unlisted cross-domain pairs carry half weight.
const (
	sameDomainWeight  = 1.0
	crossDomainWeight = 0.5
)

type domainPair struct {
	From Domain
	To   Domain
}

// InteractionWeights is a sparse table of cross-domain propagation weights.
// Lookups fall back to 1.0 for same-domain pairs and 0.5 for unlisted
// cross-domain pairs.
type InteractionWeights struct {
	weights map[domainPair]float64
}

// DefaultInteractionWeights returns the canonical cross-domain table.
func DefaultInteractionWeights() *InteractionWeights {
	w := &InteractionWeights{weights: make(map[domainPair]float64)}

	pairs := map[domainPair]float64{
		{DomainEconomic, DomainPolitical}:        0.8,
		{DomainEconomic, DomainSocial}:           0.7,
		{DomainEconomic, DomainMilitary}:         0.6,
		{DomainEconomic, DomainTechnological}:    0.6,
		{DomainPolitical, DomainMilitary}:        0.7,
		{DomainPolitical, DomainEconomic}:        0.7,
		{DomainPolitical, DomainSocial}:          0.6,
		{DomainMilitary, DomainPolitical}:        0.9,
		{DomainMilitary, DomainTechnological}:    0.6,
		{DomainSocial, DomainPolitical}:          0.8,
		{DomainSocial, DomainEconomic}:           0.6,
		{DomainTechnological, DomainEconomic}:    0.8,
		{DomainTechnological, DomainMilitary}:    0.7,
		{DomainTechnological, DomainInformation}: 0.9,
		{DomainInformation, DomainPolitical}:     0.7,
		{DomainInformation, DomainSocial}:        0.8,
		{DomainInformation, DomainMilitary}:      0.6,
		{DomainEnvironmental, DomainEconomic}:    0.7,
		{DomainEnvironmental, DomainSocial}:      0.6,
	}
	for p, v := range pairs {
		w.weights[p] = v
	}
	return w
}

// Weight returns the propagation weight from one domain to another.
func (w *InteractionWeights) Weight(from, to Domain) float64 {
	if from == to {
		return sameDomainWeight
	}
	if v, ok := w.weights[domainPair{from, to}]; ok {
		return v
	}
	return crossDomainWeight
}

// Set overrides the weight for a domain pair. The weight must lie in [0,1]
// and both domains must be valid.
func (w *InteractionWeights) Set(from, to Domain, weight float64) error {
	if !from.IsValid() || !to.IsValid() {
		return NewError("set").Options().Cause(ErrUnknownDomain).
			Context(fmt.Sprintf("%s->%s", from, to)).Err()
	}
	if weight < 0 || weight > 1 {
		return NewError("set").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("interaction weight %.3f outside [0,1]", weight)).Err()
	}
	w.weights[domainPair{from, to}] = weight
	return nil
}

// DefaultDomainDelays returns the per-domain propagation delays in years,
// used for edges that do not carry an explicit delay.
func DefaultDomainDelays() map[Domain]float64 {
	return map[Domain]float64{
		DomainEconomic:      0.5,
		DomainPolitical:     1.0,
		DomainMilitary:      0.25,
		DomainSocial:        2.0,
		DomainTechnological: 1.5,
		DomainEnvironmental: 5.0,
		DomainInformation:   0.1,
	}
}
