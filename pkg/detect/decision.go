// Package detect locates decision points and inflection points on projected
// trajectories. Both detectors are sliding-window classifiers over the
// baseline primary-metric series; they hold no per-call state and may be
// shared across goroutines.
package detect

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-cascade/pkg/numutil"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

var (
	// ErrInvalidConfig reports detector options out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrInvalidInput reports an unusable trajectory argument.
	ErrInvalidInput = errors.New("invalid input")
)

// canonicalBaseline is the reference primary-metric value used when scoring
// how reversible an intervention at a given point still is.
const canonicalBaseline = 0.75

// DecisionOptions configures a DecisionPointDetector.
type DecisionOptions struct {
	// LookaheadWindow is the number of future points a candidate index
	// must have.
	LookaheadWindow int
	// SensitivityThreshold gates candidates by normalized gradient
	// variance.
	SensitivityThreshold float64
	// MinCriticality is the emission floor for scored candidates.
	MinCriticality float64
	// MaxDecisionPoints truncates the ranked result.
	MaxDecisionPoints int
}

// DefaultDecisionOptions returns the standard detector configuration.
func DefaultDecisionOptions() DecisionOptions {
	return DecisionOptions{
		LookaheadWindow:      3,
		SensitivityThreshold: 0.3,
		MinCriticality:       0.4,
		MaxDecisionPoints:    7,
	}
}

// DecisionPointDetector finds high-leverage intervention moments on a
// baseline trajectory.
type DecisionPointDetector struct {
	opts DecisionOptions
}

// NewDecisionPointDetector validates the options and creates a detector.
func NewDecisionPointDetector(opts DecisionOptions) (*DecisionPointDetector, error) {
	if opts.LookaheadWindow == 0 {
		opts.LookaheadWindow = DefaultDecisionOptions().LookaheadWindow
	}
	if opts.LookaheadWindow < 1 {
		return nil, fmt.Errorf("%w: lookahead window %d must be at least 1", ErrInvalidConfig, opts.LookaheadWindow)
	}
	if opts.SensitivityThreshold < 0 || opts.SensitivityThreshold > 1 {
		return nil, fmt.Errorf("%w: sensitivity threshold %.3f outside [0,1]", ErrInvalidConfig, opts.SensitivityThreshold)
	}
	if opts.SensitivityThreshold == 0 {
		opts.SensitivityThreshold = DefaultDecisionOptions().SensitivityThreshold
	}
	if opts.MinCriticality < 0 || opts.MinCriticality > 1 {
		return nil, fmt.Errorf("%w: min criticality %.3f outside [0,1]", ErrInvalidConfig, opts.MinCriticality)
	}
	if opts.MinCriticality == 0 {
		opts.MinCriticality = DefaultDecisionOptions().MinCriticality
	}
	if opts.MaxDecisionPoints == 0 {
		opts.MaxDecisionPoints = DefaultDecisionOptions().MaxDecisionPoints
	}
	if opts.MaxDecisionPoints < 1 {
		return nil, fmt.Errorf("%w: max decision points %d must be at least 1", ErrInvalidConfig, opts.MaxDecisionPoints)
	}
	return &DecisionPointDetector{opts: opts}, nil
}

// Detect scans the baseline for indices where the primary metric turns
// volatile and an intervention would still matter. Candidates are scored
// criticality = impact x reversibility x time sensitivity, ranked by
// criticality, truncated, then re-sorted by timestamp for presentation.
// Series too short for the lookahead window yield no points.
func (d *DecisionPointDetector) Detect(points []trajectory.Point) []trajectory.DecisionPoint {
	n := len(points)
	window := d.opts.LookaheadWindow
	if n < window+1 {
		return nil
	}

	var found []trajectory.DecisionPoint
	for i := 0; i+window < n; i++ {
		segment := primarySeries(points[i : i+window+1])
		gradientVariance := math.Min(1, numutil.PopulationVariance(numutil.Diff(segment))/0.25)
		if gradientVariance <= d.opts.SensitivityThreshold {
			continue
		}

		future := segment[1:]
		impact := math.Min(1, numutil.PopulationVariance(future)/0.1)
		reversibility := 1 - math.Min(1, math.Abs(segment[0]-canonicalBaseline)/0.5)
		timeSensitivity := 1 / (points[i].Timestamp + 1)
		criticality := impact * reversibility * timeSensitivity
		if criticality < d.opts.MinCriticality {
			continue
		}

		rate := localRate(points, i)
		found = append(found, trajectory.DecisionPoint{
			Index:              i,
			Timestamp:          points[i].Timestamp,
			Criticality:        criticality,
			Pathways:           pathways(points[i].State.StabilityIndex),
			InterventionWindow: interventionWindow(rate),
			Description: fmt.Sprintf("trajectory turns volatile at %.2fy: gradient variance %.2f over the next %d points",
				points[i].Timestamp, gradientVariance, window),
			RecommendedAction: recommendAction(criticality),
		})
	}

	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Criticality > found[b].Criticality
	})
	if len(found) > d.opts.MaxDecisionPoints {
		found = found[:d.opts.MaxDecisionPoints]
	}
	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Timestamp < found[b].Timestamp
	})
	return found
}

// pathways returns the deterministic intervention options for a decision
// point. Deflection is only offered while the scenario is stable enough to
// absorb it.
func pathways(stability float64) []trajectory.AlternativePathway {
	ps := []trajectory.AlternativePathway{
		{Action: "implement mitigation measures", ImpactModifier: 0.5, Probability: 0.6, CostTier: "high", Timeframe: "immediate"},
		{Action: "accelerate planned response", ImpactModifier: 0.7, Probability: 0.5, CostTier: "medium", Timeframe: "short-term"},
		{Action: "maintain current course", ImpactModifier: 1.0, Probability: 0.8, CostTier: "minimal", Timeframe: "ongoing"},
	}
	if stability > 0.5 {
		ps = append(ps, trajectory.AlternativePathway{
			Action: "deflect cascade into resilient sectors", ImpactModifier: 0.3, Probability: 0.3, CostTier: "very-high", Timeframe: "immediate",
		})
	}
	return ps
}

// interventionWindow converts a local rate of change into a window in
// months: the faster the trajectory moves, the narrower the window.
func interventionWindow(rate float64) float64 {
	return numutil.Clamp(6/(1+10*math.Abs(rate)), 0.25, 6)
}

// localRate returns the per-year primary-metric change leaving index i.
func localRate(points []trajectory.Point, i int) float64 {
	if i+1 >= len(points) {
		return 0
	}
	dt := points[i+1].Timestamp - points[i].Timestamp
	if dt == 0 {
		return 0
	}
	return (points[i+1].State.PrimaryMetric - points[i].State.PrimaryMetric) / dt
}

func recommendAction(criticality float64) string {
	switch {
	case criticality > 0.7:
		return "immediate mitigation"
	case criticality > 0.4:
		return "accelerated response"
	default:
		return "monitor and prepare"
	}
}

// primarySeries extracts the primary metric from a run of points.
func primarySeries(points []trajectory.Point) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.State.PrimaryMetric
	}
	return out
}
