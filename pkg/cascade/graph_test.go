package cascade

import (
	"errors"
	"testing"
)

func TestNewGraph_Valid(t *testing.T) {
	nodes := []Node{
		{ID: "E1", Description: "energy supply", Domain: DomainEconomic, Magnitude: 0.9},
		{ID: "P1", Description: "government stability", Domain: DomainPolitical, Magnitude: 0.8},
		{ID: "M1", Description: "readiness", Domain: DomainMilitary, Magnitude: 0.7},
	}
	edges := []Edge{
		{Source: "E1", Target: "P1", Weight: 0.8, Delay: 0.5, Domain: DomainEconomic},
		{Source: "P1", Target: "M1", Weight: 0.7, Domain: DomainPolitical},
	}

	g, err := NewGraph(nodes, edges)
	if err != nil {
		t.Fatalf("NewGraph failed: %v", err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("counts = (%d, %d), want (3, 2)", g.NodeCount(), g.EdgeCount())
	}

	n, ok := g.Node("P1")
	if !ok || n.Domain != DomainPolitical {
		t.Errorf("Node(P1) = %+v, %v", n, ok)
	}

	out := g.Outgoing("E1")
	if len(out) != 1 || out[0].Target != "P1" {
		t.Errorf("Outgoing(E1) = %+v", out)
	}
	if len(g.Outgoing("M1")) != 0 {
		t.Error("M1 should have no outgoing edges")
	}

	all := g.Nodes()
	if len(all) != 3 || all[0].ID != "E1" || all[2].ID != "M1" {
		t.Errorf("Nodes() should preserve input order, got %+v", all)
	}
}

func TestNewGraph_RejectsBadNodes(t *testing.T) {
	cases := []struct {
		name  string
		nodes []Node
		want  error
	}{
		{
			"empty id",
			[]Node{{ID: "", Domain: DomainEconomic, Magnitude: 0.5}},
			ErrInvalidNode,
		},
		{
			"duplicate id",
			[]Node{
				{ID: "A", Domain: DomainEconomic, Magnitude: 0.5},
				{ID: "A", Domain: DomainSocial, Magnitude: 0.5},
			},
			ErrInvalidNode,
		},
		{
			"unknown domain",
			[]Node{{ID: "A", Domain: "astral", Magnitude: 0.5}},
			ErrUnknownDomain,
		},
		{
			"magnitude above 1",
			[]Node{{ID: "A", Domain: DomainEconomic, Magnitude: 1.2}},
			ErrInvalidNode,
		},
		{
			"negative magnitude",
			[]Node{{ID: "A", Domain: DomainEconomic, Magnitude: -0.1}},
			ErrInvalidNode,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGraph(tc.nodes, nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewGraph_RejectsBadEdges(t *testing.T) {
	nodes := []Node{
		{ID: "A", Domain: DomainEconomic, Magnitude: 0.5},
		{ID: "B", Domain: DomainPolitical, Magnitude: 0.5},
	}

	cases := []struct {
		name string
		edge Edge
		want error
	}{
		{
			"unknown source",
			Edge{Source: "X", Target: "B", Weight: 0.5, Domain: DomainEconomic},
			ErrInvalidEdge,
		},
		{
			"unknown target",
			Edge{Source: "A", Target: "X", Weight: 0.5, Domain: DomainEconomic},
			ErrInvalidEdge,
		},
		{
			"weight above 1",
			Edge{Source: "A", Target: "B", Weight: 1.5, Domain: DomainEconomic},
			ErrInvalidEdge,
		},
		{
			"negative weight",
			Edge{Source: "A", Target: "B", Weight: -0.2, Domain: DomainEconomic},
			ErrInvalidEdge,
		},
		{
			"negative delay",
			Edge{Source: "A", Target: "B", Weight: 0.5, Delay: -1, Domain: DomainEconomic},
			ErrInvalidEdge,
		},
		{
			"unknown domain",
			Edge{Source: "A", Target: "B", Weight: 0.5, Domain: "astral"},
			ErrUnknownDomain,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewGraph(nodes, []Edge{tc.edge})
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseDomain(t *testing.T) {
	d, err := ParseDomain("military")
	if err != nil || d != DomainMilitary {
		t.Errorf("ParseDomain(military) = %v, %v", d, err)
	}

	if _, err := ParseDomain("astral"); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("ParseDomain(astral) error = %v, want ErrUnknownDomain", err)
	}

	for _, d := range Domains() {
		if !d.IsValid() {
			t.Errorf("canonical domain %q reported invalid", d)
		}
	}
}

func TestInteractionWeights(t *testing.T) {
	w := DefaultInteractionWeights()

	if got := w.Weight(DomainEconomic, DomainEconomic); got != 1.0 {
		t.Errorf("same-domain weight = %v, want 1.0", got)
	}
	if got := w.Weight(DomainEconomic, DomainPolitical); got != 0.8 {
		t.Errorf("economic->political = %v, want 0.8", got)
	}
	if got := w.Weight(DomainMilitary, DomainPolitical); got != 0.9 {
		t.Errorf("military->political = %v, want 0.9", got)
	}
	if got := w.Weight(DomainEnvironmental, DomainInformation); got != 0.5 {
		t.Errorf("unlisted cross-domain pair = %v, want 0.5", got)
	}
}

func TestInteractionWeights_Set(t *testing.T) {
	w := DefaultInteractionWeights()

	if err := w.Set(DomainSocial, DomainTechnological, 0.85); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := w.Weight(DomainSocial, DomainTechnological); got != 0.85 {
		t.Errorf("overridden weight = %v, want 0.85", got)
	}

	if err := w.Set(DomainSocial, DomainTechnological, 1.5); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("out-of-range weight error = %v, want ErrInvalidConfig", err)
	}
	if err := w.Set("astral", DomainSocial, 0.5); !errors.Is(err, ErrUnknownDomain) {
		t.Errorf("bad domain error = %v, want ErrUnknownDomain", err)
	}
}
