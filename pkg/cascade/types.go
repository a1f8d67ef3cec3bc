package cascade

import "fmt"

// Domain classifies nodes and edges by the sphere they act in.
type Domain string

const (
	DomainEconomic      Domain = "economic"
	DomainPolitical     Domain = "political"
	DomainMilitary      Domain = "military"
	DomainSocial        Domain = "social"
	DomainTechnological Domain = "technological"
	DomainEnvironmental Domain = "environmental"
	DomainInformation   Domain = "information"
)

// Domains lists all valid domains in canonical order.
func Domains() []Domain {
	return []Domain{
		DomainEconomic,
		DomainPolitical,
		DomainMilitary,
		DomainSocial,
		DomainTechnological,
		DomainEnvironmental,
		DomainInformation,
	}
}

// IsValid reports whether d is a known domain.
func (d Domain) IsValid() bool {
	switch d {
	case DomainEconomic, DomainPolitical, DomainMilitary, DomainSocial,
		DomainTechnological, DomainEnvironmental, DomainInformation:
		return true
	}
	return false
}

// String returns the domain name.
func (d Domain) String() string {
	return string(d)
}

// ParseDomain converts a string to a Domain, rejecting unknown values.
func ParseDomain(s string) (Domain, error) {
	d := Domain(s)
	if !d.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, s)
	}
	return d, nil
}

// Node is a fixed-field vertex of the dependency graph.
// Magnitude is the node's base impact scale; activation state during a
// simulation lives on the Run, not here.
type Node struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Domain      Domain  `json:"domain"`
	Magnitude   float64 `json:"magnitude"`
}

// Edge is a directed, weighted, delayed causal relation between two nodes.
// A zero Delay means "use the domain default" from the simulator options.
type Edge struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Weight float64 `json:"weight"`
	Delay  float64 `json:"delay"`
	Domain Domain  `json:"domain"`
}

// Wave is one discrete propagation step of a cascade run. Impacts holds the
// magnitude applied this wave per node: the full magnitude for first
// activations, the increase for reinforced nodes.
type Wave struct {
	Number           int                `json:"wave_number"`
	Timestamp        float64            `json:"timestamp"`
	Impacts          map[string]float64 `json:"impacts"`
	NewlyActivated   []string           `json:"newly_activated"`
	CumulativeImpact float64            `json:"cumulative_impact"`
}

// LoopType classifies a feedback loop by its net effect.
type LoopType string

const (
	LoopReinforcing LoopType = "reinforcing"
	LoopDampening   LoopType = "dampening"
)

// FeedbackLoop is a simple cycle in the dependency graph. Strength is the
// product of the cycle's edge weights, CycleTime the sum of its delays.
type FeedbackLoop struct {
	Type      LoopType `json:"loop_type"`
	Nodes     []string `json:"nodes"`
	Strength  float64  `json:"strength"`
	CycleTime float64  `json:"cycle_time"`
}

// Run is the complete result of one cascade simulation. Each Simulate call
// returns a fresh Run; the simulator itself keeps no per-run state.
type Run struct {
	BreachNodeID     string             `json:"breach_node_id"`
	TimeHorizon      float64            `json:"time_horizon"`
	TimeStep         float64            `json:"time_step"`
	Waves            []Wave             `json:"waves"`
	Activations      map[string]float64 `json:"activations"`
	ActivationTimes  map[string]float64 `json:"activation_times"`
	CumulativeImpact float64            `json:"cumulative_impact"`
	Saturated        bool               `json:"saturated"`
	FeedbackLoops    []FeedbackLoop     `json:"feedback_loops"`
	AffectedDomains  []Domain           `json:"affected_domains"`
}

// Depth returns the cascade depth: the number of recorded waves.
func (r *Run) Depth() int {
	return len(r.Waves)
}

// Graph is an immutable dependency graph. Construct with NewGraph; lookups
// and traversal order are deterministic (input order).
type Graph struct {
	nodes map[string]Node
	order []string
	out   map[string][]Edge
	edges []Edge
}

// NewGraph validates nodes and edges and builds the adjacency structure.
// It rejects duplicate node IDs, out-of-range magnitudes, weights or delays,
// unknown domains, and edges referencing absent endpoints.
func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		nodes: make(map[string]Node, len(nodes)),
		order: make([]string, 0, len(nodes)),
		out:   make(map[string][]Edge),
		edges: make([]Edge, 0, len(edges)),
	}

	for _, n := range nodes {
		if n.ID == "" {
			return nil, NewError("load").Node(n.ID).Cause(ErrInvalidNode).Context("empty id").Err()
		}
		if _, dup := g.nodes[n.ID]; dup {
			return nil, NewError("load").Node(n.ID).Cause(ErrInvalidNode).Context("duplicate id").Err()
		}
		if !n.Domain.IsValid() {
			return nil, NewError("load").Node(n.ID).Cause(ErrUnknownDomain).Context(string(n.Domain)).Err()
		}
		if n.Magnitude < 0 || n.Magnitude > 1 {
			return nil, NewError("load").Node(n.ID).Cause(ErrInvalidNode).
				Context(fmt.Sprintf("magnitude %.3f outside [0,1]", n.Magnitude)).Err()
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}

	for _, e := range edges {
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, NewError("load").Edge(e.Source, e.Target).Cause(ErrInvalidEdge).Context("unknown source").Err()
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, NewError("load").Edge(e.Source, e.Target).Cause(ErrInvalidEdge).Context("unknown target").Err()
		}
		if e.Weight < 0 || e.Weight > 1 {
			return nil, NewError("load").Edge(e.Source, e.Target).Cause(ErrInvalidEdge).
				Context(fmt.Sprintf("weight %.3f outside [0,1]", e.Weight)).Err()
		}
		if e.Delay < 0 {
			return nil, NewError("load").Edge(e.Source, e.Target).Cause(ErrInvalidEdge).
				Context(fmt.Sprintf("negative delay %.3f", e.Delay)).Err()
		}
		if !e.Domain.IsValid() {
			return nil, NewError("load").Edge(e.Source, e.Target).Cause(ErrUnknownDomain).Context(string(e.Domain)).Err()
		}
		g.out[e.Source] = append(g.out[e.Source], e)
		g.edges = append(g.edges, e)
	}

	return g, nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in input order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Edges returns all edges in input order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Outgoing returns the edges leaving the given node, in input order.
func (g *Graph) Outgoing(id string) []Edge {
	return g.out[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}
