package cascade

import (
	"fmt"
	"time"

	"github.com/dd0wney/cluso-cascade/pkg/metrics"
	"github.com/dd0wney/cluso-cascade/pkg/numutil"
)

// Options configures a Simulator.
type Options struct {
	// DampeningFactor attenuates impact at each propagation hop, in [0,1].
	DampeningFactor float64
	// SaturationThreshold is the cumulative propagated impact at which the
	// cascade is deemed exhausted. The hypothesized breach itself does not
	// count toward it.
	SaturationThreshold float64
	// MinimumMagnitude is the activation floor below which a node is
	// treated as extinguished and no longer propagates.
	MinimumMagnitude float64
	// MaxWaves bounds the number of recorded waves per run.
	MaxWaves int
	// DomainDelays supplies per-domain propagation delays (years) for
	// edges without an explicit delay.
	DomainDelays map[Domain]float64
	// Interactions is the cross-domain propagation weight table.
	Interactions *InteractionWeights
	// FeedbackLoopLimit bounds cycle enumeration; 0 means the default.
	FeedbackLoopLimit int
	// Metrics optionally records simulation metrics.
	Metrics *metrics.Registry
}

// DefaultOptions returns the standard simulator configuration.
func DefaultOptions() Options {
	return Options{
		DampeningFactor:     0.7,
		SaturationThreshold: 0.9,
		MinimumMagnitude:    0.01,
		MaxWaves:            100,
		DomainDelays:        DefaultDomainDelays(),
		Interactions:        DefaultInteractionWeights(),
		FeedbackLoopLimit:   1000,
	}
}

// Simulator propagates a breach through a dependency graph. It holds only
// the immutable graph and options; every Simulate call returns a fresh Run,
// so a single instance may run many simulations sequentially. It is not
// safe for concurrent Simulate calls.
type Simulator struct {
	graph *Graph
	opts  Options
}

// NewSimulator creates a simulator for the given graph. Option values out
// of range are configuration errors.
func NewSimulator(graph *Graph, opts Options) (*Simulator, error) {
	if graph == nil {
		return nil, NewError("new").Options().Cause(ErrInvalidConfig).Context("nil graph").Err()
	}
	if opts.DampeningFactor < 0 || opts.DampeningFactor > 1 {
		return nil, NewError("new").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("dampening factor %.3f outside [0,1]", opts.DampeningFactor)).Err()
	}
	if opts.SaturationThreshold <= 0 {
		return nil, NewError("new").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("saturation threshold %.3f must be positive", opts.SaturationThreshold)).Err()
	}
	if opts.MinimumMagnitude < 0 || opts.MinimumMagnitude >= 1 {
		return nil, NewError("new").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("minimum magnitude %.3f outside [0,1)", opts.MinimumMagnitude)).Err()
	}
	if opts.MaxWaves < 0 {
		return nil, NewError("new").Options().Cause(ErrInvalidConfig).Context("negative max waves").Err()
	}
	if opts.MaxWaves == 0 {
		opts.MaxWaves = DefaultOptions().MaxWaves
	}
	if opts.DomainDelays == nil {
		opts.DomainDelays = DefaultDomainDelays()
	}
	if opts.Interactions == nil {
		opts.Interactions = DefaultInteractionWeights()
	}
	if opts.FeedbackLoopLimit <= 0 {
		opts.FeedbackLoopLimit = DefaultOptions().FeedbackLoopLimit
	}

	return &Simulator{graph: graph, opts: opts}, nil
}

// Graph returns the simulator's dependency graph.
func (s *Simulator) Graph() *Graph {
	return s.graph
}

// Options returns the simulator's effective options.
func (s *Simulator) Options() Options {
	return s.opts
}

// Simulate propagates a breach of the given node across the graph up to
// timeHorizon (years) in discrete timeStep increments. The breach node
// starts at magnitude 1.0 at t=0 and is recorded as wave 0. Each later step
// propagates from every active node along its outgoing edges; a successor
// whose delay-adjusted activation time falls within the horizon receives
// propagated impact immediately. The run stops when a step activates no new
// nodes, when cumulative propagated impact reaches the saturation threshold,
// or when the horizon or wave limit is reached. Updates of a terminating
// step are discarded, so the recorded waves account for every final
// activation magnitude.
//
// An empty graph yields a zero-wave Run. A breach node missing from a
// non-empty graph is an error.
func (s *Simulator) Simulate(breachNodeID string, timeHorizon, timeStep float64) (*Run, error) {
	start := time.Now()

	if timeHorizon <= 0 {
		return nil, NewError("simulate").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("time horizon %.3f must be positive", timeHorizon)).Err()
	}
	if timeStep <= 0 {
		return nil, NewError("simulate").Options().Cause(ErrInvalidConfig).
			Context(fmt.Sprintf("time step %.3f must be positive", timeStep)).Err()
	}

	run := &Run{
		BreachNodeID:    breachNodeID,
		TimeHorizon:     timeHorizon,
		TimeStep:        timeStep,
		Waves:           make([]Wave, 0, 8),
		Activations:     make(map[string]float64),
		ActivationTimes: make(map[string]float64),
	}

	// No cascade is a legitimate answer for an empty graph.
	if s.graph.NodeCount() == 0 {
		s.recordRun("empty", start, run)
		return run, nil
	}

	if _, ok := s.graph.Node(breachNodeID); !ok {
		s.recordRun("not_found", start, run)
		return nil, NodeNotFoundError("simulate", breachNodeID)
	}

	run.FeedbackLoops = s.DetectFeedbackLoops()

	// Wave 0: the hypothesized breach itself. Its magnitude does not count
	// toward cumulative propagated impact.
	run.Activations[breachNodeID] = 1.0
	run.ActivationTimes[breachNodeID] = 0
	activeOrder := []string{breachNodeID}
	run.Waves = append(run.Waves, Wave{
		Number:         0,
		Timestamp:      0,
		Impacts:        map[string]float64{breachNodeID: 1.0},
		NewlyActivated: []string{breachNodeID},
	})

	for step := 1; ; step++ {
		t := float64(step) * timeStep
		if t > timeHorizon || len(run.Waves) >= s.opts.MaxWaves {
			break
		}

		frontier := activeOrder[:len(activeOrder):len(activeOrder)]
		frontierMag := make(map[string]float64, len(frontier))
		for _, id := range frontier {
			frontierMag[id] = run.Activations[id]
		}

		impacts := make(map[string]float64)
		var newlyActivated []string
		pending := make(map[string]float64)
		pendingTimes := make(map[string]float64)
		waveImpact := 0.0

		for _, src := range frontier {
			mag := frontierMag[src]
			if mag < s.opts.MinimumMagnitude {
				continue // extinguished
			}
			srcNode, _ := s.graph.Node(src)

			for _, edge := range s.graph.Outgoing(src) {
				delay := edge.Delay
				if delay == 0 {
					delay = s.opts.DomainDelays[edge.Domain]
				}
				if t+delay > timeHorizon {
					continue
				}

				target, _ := s.graph.Node(edge.Target)
				propagated := mag * s.opts.DampeningFactor * edge.Weight *
					s.opts.Interactions.Weight(srcNode.Domain, target.Domain)
				propagated = numutil.Clamp(propagated, 0, 1)
				if propagated <= 0 {
					continue
				}

				current, active := run.Activations[edge.Target]
				if staged, ok := pending[edge.Target]; ok {
					current, active = staged, true
				}
				if !active {
					pending[edge.Target] = propagated
					pendingTimes[edge.Target] = t + delay
					newlyActivated = append(newlyActivated, edge.Target)
					impacts[edge.Target] += propagated
					waveImpact += propagated
				} else {
					// Diminishing-returns reinforcement: half-weight,
					// saturating at 1.0, never decreasing.
					reinforced := current + propagated*0.5
					if reinforced > 1.0 {
						reinforced = 1.0
					}
					if reinforced > current {
						pending[edge.Target] = reinforced
						delta := reinforced - current
						impacts[edge.Target] += delta
						waveImpact += delta
					}
				}
			}
		}

		// A step that activates nothing new ends the cascade. Its staged
		// reinforcements are discarded with it, so every final activation
		// magnitude is accounted for by a recorded wave.
		if len(newlyActivated) == 0 {
			break
		}

		for id, magnitude := range pending {
			run.Activations[id] = magnitude
		}
		for _, id := range newlyActivated {
			run.ActivationTimes[id] = pendingTimes[id]
			activeOrder = append(activeOrder, id)
		}

		run.CumulativeImpact += waveImpact
		run.Waves = append(run.Waves, Wave{
			Number:           len(run.Waves),
			Timestamp:        t,
			Impacts:          impacts,
			NewlyActivated:   newlyActivated,
			CumulativeImpact: run.CumulativeImpact,
		})

		if run.CumulativeImpact >= s.opts.SaturationThreshold {
			run.Saturated = true
			break
		}
	}

	run.AffectedDomains = affectedDomains(s.graph, activeOrder)
	s.recordRun(outcome(run), start, run)
	return run, nil
}

// affectedDomains lists the distinct domains of activated nodes in
// first-activation order.
func affectedDomains(g *Graph, activeOrder []string) []Domain {
	seen := make(map[Domain]bool)
	var out []Domain
	for _, id := range activeOrder {
		n, ok := g.Node(id)
		if !ok {
			continue
		}
		if !seen[n.Domain] {
			seen[n.Domain] = true
			out = append(out, n.Domain)
		}
	}
	return out
}

func outcome(run *Run) string {
	if run.Saturated {
		return "saturated"
	}
	return "completed"
}

// recordRun records simulation metrics when a registry is configured.
func (s *Simulator) recordRun(status string, start time.Time, run *Run) {
	if s.opts.Metrics == nil {
		return
	}
	s.opts.Metrics.RecordCascadeRun(status, len(run.Waves), run.CumulativeImpact, time.Since(start))
}
