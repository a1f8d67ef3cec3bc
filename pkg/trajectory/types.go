package trajectory

import (
	"fmt"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
	"github.com/dd0wney/cluso-cascade/pkg/numutil"
)

// Granularity fixes the projection grid spacing.
type Granularity string

const (
	GranularityMonthly   Granularity = "monthly"
	GranularityQuarterly Granularity = "quarterly"
	GranularityYearly    Granularity = "yearly"
)

// StepsPerYear returns the number of grid points per simulated year.
func (g Granularity) StepsPerYear() int {
	switch g {
	case GranularityMonthly:
		return 12
	case GranularityQuarterly:
		return 4
	case GranularityYearly:
		return 1
	}
	return 0
}

// TimeStep returns the grid spacing in years.
func (g Granularity) TimeStep() float64 {
	steps := g.StepsPerYear()
	if steps == 0 {
		return 0
	}
	return 1 / float64(steps)
}

// IsValid reports whether g is a known granularity.
func (g Granularity) IsValid() bool {
	return g.StepsPerYear() != 0
}

// ParseGranularity converts a string to a Granularity, rejecting unknown
// values.
func ParseGranularity(s string) (Granularity, error) {
	g := Granularity(s)
	if !g.IsValid() {
		return "", fmt.Errorf("%w: granularity %q", ErrInvalidConfig, s)
	}
	return g, nil
}

// StateVariables describes scenario health at one point in time. All values
// are clamped to their declared ranges at every update: gdp_impact spans
// [-1,1], everything else [0,1].
type StateVariables struct {
	PrimaryMetric         float64 `json:"primary_metric"`
	GDPImpact             float64 `json:"gdp_impact"`
	StabilityIndex        float64 `json:"stability_index"`
	ResourceLevels        float64 `json:"resource_levels"`
	OperationalCapability float64 `json:"operational_capability"`
	SocialCohesion        float64 `json:"social_cohesion"`
}

// DefaultBaseline returns the canonical pre-breach state.
func DefaultBaseline() StateVariables {
	return StateVariables{
		PrimaryMetric:         0.75,
		GDPImpact:             0,
		StabilityIndex:        0.80,
		ResourceLevels:        0.70,
		OperationalCapability: 0.75,
		SocialCohesion:        0.70,
	}
}

// Clamp returns a copy with every variable forced into its declared range.
func (s StateVariables) Clamp() StateVariables {
	return StateVariables{
		PrimaryMetric:         numutil.Clamp(s.PrimaryMetric, 0, 1),
		GDPImpact:             numutil.Clamp(s.GDPImpact, -1, 1),
		StabilityIndex:        numutil.Clamp(s.StabilityIndex, 0, 1),
		ResourceLevels:        numutil.Clamp(s.ResourceLevels, 0, 1),
		OperationalCapability: numutil.Clamp(s.OperationalCapability, 0, 1),
		SocialCohesion:        numutil.Clamp(s.SocialCohesion, 0, 1),
	}
}

// State-variable impact multipliers. Primary and operational track the
// cascade most directly; resources lag it.
const (
	multPrimary     = 0.5
	multGDP         = 0.6
	multStability   = 0.4
	multResources   = 0.3
	multOperational = 0.5
	multSocial      = 0.35
)

// applyImpact returns the state after one grid step: each variable drops by
// impact x decay x its multiplier, then is clamped.
func (s StateVariables) applyImpact(impact, decay float64) StateVariables {
	scaled := impact * decay
	s.PrimaryMetric -= scaled * multPrimary
	s.GDPImpact -= scaled * multGDP
	s.StabilityIndex -= scaled * multStability
	s.ResourceLevels -= scaled * multResources
	s.OperationalCapability -= scaled * multOperational
	s.SocialCohesion -= scaled * multSocial
	return s.Clamp()
}

// Delta returns the per-variable difference s minus prev, keyed by the JSON
// field names.
func (s StateVariables) Delta(prev StateVariables) map[string]float64 {
	return map[string]float64{
		"primary_metric":         s.PrimaryMetric - prev.PrimaryMetric,
		"gdp_impact":             s.GDPImpact - prev.GDPImpact,
		"stability_index":        s.StabilityIndex - prev.StabilityIndex,
		"resource_levels":        s.ResourceLevels - prev.ResourceLevels,
		"operational_capability": s.OperationalCapability - prev.OperationalCapability,
		"social_cohesion":        s.SocialCohesion - prev.SocialCohesion,
	}
}

// ConfidenceBounds brackets the primary metric at one trajectory point.
type ConfidenceBounds struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Point is one snapshot on a projected trajectory. Immutable once produced;
// the detector references are filled in by the detection pass before the
// trajectory is handed out.
type Point struct {
	Timestamp     float64          `json:"timestamp"`
	State         StateVariables   `json:"state"`
	Bounds        ConfidenceBounds `json:"confidence_bounds"`
	WaveNumber    int              `json:"wave_number"`
	DecisionRef   *int             `json:"decision_point_ref,omitempty"`
	InflectionRef *int             `json:"inflection_point_ref,omitempty"`
}

// BreachCondition names the hypothesized breach driving a projection.
type BreachCondition struct {
	NodeID      string `json:"node_id"`
	Description string `json:"description,omitempty"`
}

// Metadata carries the breach condition and cascade statistics of the run
// that produced a trajectory, including the per-grid-point impact schedule
// branch projections re-scale.
type Metadata struct {
	Breach           BreachCondition  `json:"breach"`
	Horizons         []float64        `json:"time_horizons"`
	CascadeDepth     int              `json:"cascade_depth"`
	CumulativeImpact float64          `json:"cumulative_impact"`
	Saturated        bool             `json:"saturated"`
	AffectedDomains  []cascade.Domain `json:"affected_domains"`
	FeedbackLoops    int              `json:"feedback_loops"`
	WaveImpacts      []float64        `json:"wave_impacts"`
}

// Trajectory is the complete result of one projection request. Branches are
// appended after the fact without mutating the baseline.
type Trajectory struct {
	ID               string            `json:"id"`
	ScenarioID       string            `json:"scenario_id,omitempty"`
	CounterfactualID string            `json:"counterfactual_id,omitempty"`
	TimeHorizon      float64           `json:"time_horizon"`
	Granularity      Granularity       `json:"granularity"`
	Baseline         []Point           `json:"baseline_trajectory"`
	Branches         []Branch          `json:"branches,omitempty"`
	DecisionPoints   []DecisionPoint   `json:"decision_points,omitempty"`
	InflectionPoints []InflectionPoint `json:"inflection_points,omitempty"`
	Metadata         Metadata          `json:"metadata"`
}

// Branch is an alternative future forked from a decision point. It shares
// the baseline prefix by value and diverges after the fork.
type Branch struct {
	ID          string  `json:"id"`
	ForkIndex   int     `json:"fork_index"`
	Action      string  `json:"action"`
	Probability float64 `json:"probability"`
	Points      []Point `json:"points"`
}

// AlternativePathway is one intervention option attached to a decision
// point. ImpactModifier scales subsequent cascade impact: below 1 mitigates,
// above 1 accelerates.
type AlternativePathway struct {
	Action         string  `json:"action"`
	ImpactModifier float64 `json:"impact_modifier"`
	Probability    float64 `json:"probability"`
	CostTier       string  `json:"cost_tier"`
	Timeframe      string  `json:"timeframe"`
}

// DecisionPoint marks a high-leverage moment on the baseline trajectory.
type DecisionPoint struct {
	Index              int                  `json:"index"`
	Timestamp          float64              `json:"timestamp"`
	Criticality        float64              `json:"criticality_score"`
	Pathways           []AlternativePathway `json:"alternative_pathways"`
	InterventionWindow float64              `json:"intervention_window_months"`
	Description        string               `json:"description"`
	RecommendedAction  string               `json:"recommended_action"`
}

// InflectionType classifies a detected trajectory inflection.
type InflectionType string

const (
	InflectionAcceleration      InflectionType = "acceleration"
	InflectionDeceleration      InflectionType = "deceleration"
	InflectionReversal          InflectionType = "reversal"
	InflectionThresholdCrossing InflectionType = "threshold_crossing"
)

// InflectionPoint marks a change in trajectory character.
type InflectionPoint struct {
	Index               int                `json:"index"`
	Timestamp           float64            `json:"timestamp"`
	Type                InflectionType     `json:"type"`
	Magnitude           float64            `json:"magnitude"`
	TriggeringCondition string             `json:"triggering_condition"`
	PreTrend            float64            `json:"pre_trend"`
	PostTrend           float64            `json:"post_trend"`
	StateChange         map[string]float64 `json:"state_change"`
}
