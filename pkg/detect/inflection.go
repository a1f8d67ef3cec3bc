package detect

import (
	"fmt"
	"math"
	"sort"

	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

// InflectionOptions configures an InflectionPointDetector.
type InflectionOptions struct {
	// DerivativeThreshold is the minimum second-derivative magnitude for a
	// curvature inflection.
	DerivativeThreshold float64
	// Crossings maps state-variable names to threshold values scanned
	// for sign crossings between consecutive points.
	Crossings map[string]float64
}

// DefaultInflectionOptions returns the standard detector configuration.
func DefaultInflectionOptions() InflectionOptions {
	return InflectionOptions{
		DerivativeThreshold: 0.05,
		Crossings: map[string]float64{
			"primary_metric":  0.5,
			"stability_index": 0.5,
			"gdp_impact":      -0.5,
		},
	}
}

// InflectionPointDetector finds curvature changes and threshold crossings
// on a projected trajectory.
type InflectionPointDetector struct {
	opts InflectionOptions
}

// NewInflectionPointDetector validates the options and creates a detector.
func NewInflectionPointDetector(opts InflectionOptions) (*InflectionPointDetector, error) {
	if opts.DerivativeThreshold < 0 {
		return nil, fmt.Errorf("%w: derivative threshold %.3f must be non-negative", ErrInvalidConfig, opts.DerivativeThreshold)
	}
	if opts.DerivativeThreshold == 0 {
		opts.DerivativeThreshold = DefaultInflectionOptions().DerivativeThreshold
	}
	if opts.Crossings == nil {
		opts.Crossings = DefaultInflectionOptions().Crossings
	}
	for name := range opts.Crossings {
		if _, ok := stateValue(trajectory.StateVariables{}, name); !ok {
			return nil, fmt.Errorf("%w: unknown crossing variable %q", ErrInvalidConfig, name)
		}
	}
	return &InflectionPointDetector{opts: opts}, nil
}

// Detect returns curvature inflections and threshold crossings merged in
// timestamp order. A series shorter than four points has no measurable
// curvature; a linear series produces no curvature inflections at all.
func (d *InflectionPointDetector) Detect(points []trajectory.Point) []trajectory.InflectionPoint {
	found := d.curvatureInflections(points)
	found = append(found, d.thresholdCrossings(points)...)
	sort.SliceStable(found, func(a, b int) bool {
		return found[a].Timestamp < found[b].Timestamp
	})
	return found
}

// curvatureInflections marks points where the second derivative of the
// primary metric changes sign with magnitude above the threshold. The type
// follows the sign of the new curvature and is upgraded to a reversal when
// the first derivative itself flips across the point.
func (d *InflectionPointDetector) curvatureInflections(points []trajectory.Point) []trajectory.InflectionPoint {
	n := len(points)
	if n < 4 {
		return nil
	}

	// first[k] is the rate over the segment points[k] -> points[k+1];
	// second[k] is the discrete second derivative at interior point k.
	first := make([]float64, n-1)
	for k := 0; k < n-1; k++ {
		first[k] = segmentRate(points[k], points[k+1])
	}
	second := make([]float64, n-1)
	for k := 1; k < n-1; k++ {
		span := (points[k+1].Timestamp - points[k-1].Timestamp) / 2
		if span == 0 {
			continue
		}
		second[k] = (first[k] - first[k-1]) / span
	}

	var found []trajectory.InflectionPoint
	for k := 2; k < n-1; k++ {
		prev, cur := second[k-1], second[k]
		if prev*cur >= 0 || math.Abs(cur) <= d.opts.DerivativeThreshold {
			continue
		}

		kind := trajectory.InflectionDeceleration
		if cur > 0 {
			kind = trajectory.InflectionAcceleration
		}
		pre, post := first[k-1], first[k]
		if pre*post < 0 {
			kind = trajectory.InflectionReversal
		}
		// The state change is the delta leaving the inflection, matching
		// the post-trend side of the pre/post split.
		found = append(found, trajectory.InflectionPoint{
			Index:               k,
			Timestamp:           points[k].Timestamp,
			Type:                kind,
			Magnitude:           math.Abs(cur),
			TriggeringCondition: fmt.Sprintf("primary_metric curvature flips from %+.3f to %+.3f", prev, cur),
			PreTrend:            pre,
			PostTrend:           post,
			StateChange:         points[k+1].State.Delta(points[k].State),
		})
	}
	return found
}

// thresholdCrossings scans each configured state variable for strict sign
// crossings of its threshold between consecutive points.
func (d *InflectionPointDetector) thresholdCrossings(points []trajectory.Point) []trajectory.InflectionPoint {
	if len(points) < 2 {
		return nil
	}

	names := make([]string, 0, len(d.opts.Crossings))
	for name := range d.opts.Crossings {
		names = append(names, name)
	}
	sort.Strings(names)

	var found []trajectory.InflectionPoint
	for _, name := range names {
		threshold := d.opts.Crossings[name]
		for idx := 1; idx < len(points); idx++ {
			before, _ := stateValue(points[idx-1].State, name)
			after, _ := stateValue(points[idx].State, name)
			if (before-threshold)*(after-threshold) >= 0 {
				continue
			}

			pre := variableRate(points[idx-1], points[idx], name)
			post := pre
			if idx+1 < len(points) {
				post = variableRate(points[idx], points[idx+1], name)
			}
			found = append(found, trajectory.InflectionPoint{
				Index:               idx,
				Timestamp:           points[idx].Timestamp,
				Type:                trajectory.InflectionThresholdCrossing,
				Magnitude:           math.Abs(after - threshold),
				TriggeringCondition: fmt.Sprintf("%s crossed %.2f (%.3f to %.3f)", name, threshold, before, after),
				PreTrend:            pre,
				PostTrend:           post,
				StateChange:         points[idx].State.Delta(points[idx-1].State),
			})
		}
	}
	return found
}

// segmentRate is the primary-metric rate of change between two points.
func segmentRate(a, b trajectory.Point) float64 {
	dt := b.Timestamp - a.Timestamp
	if dt == 0 {
		return 0
	}
	return (b.State.PrimaryMetric - a.State.PrimaryMetric) / dt
}

// variableRate is the rate of change of a named state variable between
// two points.
func variableRate(a, b trajectory.Point, name string) float64 {
	dt := b.Timestamp - a.Timestamp
	if dt == 0 {
		return 0
	}
	va, _ := stateValue(a.State, name)
	vb, _ := stateValue(b.State, name)
	return (vb - va) / dt
}

// stateValue looks up a state variable by its serialized name.
func stateValue(s trajectory.StateVariables, name string) (float64, bool) {
	switch name {
	case "primary_metric":
		return s.PrimaryMetric, true
	case "gdp_impact":
		return s.GDPImpact, true
	case "stability_index":
		return s.StabilityIndex, true
	case "resource_levels":
		return s.ResourceLevels, true
	case "operational_capability":
		return s.OperationalCapability, true
	case "social_cohesion":
		return s.SocialCohesion, true
	}
	return 0, false
}
