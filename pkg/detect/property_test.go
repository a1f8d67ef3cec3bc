package detect

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

// randomSeries builds a quarterly point series with ragged state variables
// from a seeded source.
func randomSeries(rng *rand.Rand) []trajectory.Point {
	n := 4 + rng.Intn(37)
	points := make([]trajectory.Point, n)
	for i := range points {
		points[i] = trajectory.Point{
			Timestamp: float64(i) * 0.25,
			State: trajectory.StateVariables{
				PrimaryMetric:  rng.Float64(),
				GDPImpact:      rng.Float64()*2 - 1,
				StabilityIndex: rng.Float64(),
			},
			WaveNumber: -1,
		}
	}
	return points
}

func TestDecisionPointProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property tests in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	detector, err := NewDecisionPointDetector(DefaultDecisionOptions())
	if err != nil {
		t.Fatalf("NewDecisionPointDetector: %v", err)
	}

	properties.Property("decision points are capped, ordered, and above the floor", prop.ForAll(
		func(seed int64) bool {
			points := randomSeries(rand.New(rand.NewSource(seed)))
			found := detector.Detect(points)
			if len(found) > DefaultDecisionOptions().MaxDecisionPoints {
				return false
			}
			for i, dp := range found {
				if dp.Index < 0 || dp.Index >= len(points) {
					return false
				}
				if dp.Timestamp != points[dp.Index].Timestamp {
					return false
				}
				if dp.Criticality < DefaultDecisionOptions().MinCriticality || dp.Criticality > 1 {
					return false
				}
				if n := len(dp.Pathways); n < 3 || n > 4 {
					return false
				}
				if dp.InterventionWindow <= 0 || dp.InterventionWindow > 6 {
					return false
				}
				if i > 0 && dp.Timestamp <= found[i-1].Timestamp {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t)
}

func TestInflectionPointProperties(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping property tests in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	detector, err := NewInflectionPointDetector(DefaultInflectionOptions())
	if err != nil {
		t.Fatalf("NewInflectionPointDetector: %v", err)
	}

	properties.Property("inflection points are typed, in range, and time ordered", prop.ForAll(
		func(seed int64) bool {
			points := randomSeries(rand.New(rand.NewSource(seed)))
			found := detector.Detect(points)
			for i, ip := range found {
				if ip.Index < 1 || ip.Index >= len(points) {
					return false
				}
				if ip.Timestamp != points[ip.Index].Timestamp {
					return false
				}
				switch ip.Type {
				case trajectory.InflectionAcceleration, trajectory.InflectionDeceleration, trajectory.InflectionReversal:
					if ip.Magnitude <= DefaultInflectionOptions().DerivativeThreshold {
						return false
					}
				case trajectory.InflectionThresholdCrossing:
					if ip.Magnitude < 0 {
						return false
					}
				default:
					return false
				}
				if len(ip.StateChange) == 0 {
					return false
				}
				if i > 0 && ip.Timestamp < found[i-1].Timestamp {
					return false
				}
			}
			return true
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.Property("linear trajectories have no curvature inflections", prop.ForAll(
		func(start, slope float64) bool {
			detector, err := NewInflectionPointDetector(InflectionOptions{
				Crossings: map[string]float64{},
			})
			if err != nil {
				return false
			}
			points := make([]trajectory.Point, 12)
			for i := range points {
				points[i] = trajectory.Point{
					Timestamp:  float64(i) * 0.25,
					State:      trajectory.StateVariables{PrimaryMetric: start + slope*float64(i)},
					WaveNumber: -1,
				}
			}
			return len(detector.Detect(points)) == 0
		},
		gen.Float64Range(0, 1),
		gen.Float64Range(-0.1, 0.1),
	))

	properties.TestingRun(t)
}
