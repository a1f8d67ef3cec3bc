package export

import (
	"math"
	"testing"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
)

// chainGraph builds a three-node cascade chain: grid -> markets -> unrest.
func chainGraph(t *testing.T) *cascade.Graph {
	t.Helper()

	g, err := cascade.NewGraph(
		[]cascade.Node{
			{ID: "grid", Description: "Power grid failure", Domain: cascade.DomainTechnological, Magnitude: 0.9},
			{ID: "markets", Description: "Market disruption", Domain: cascade.DomainEconomic, Magnitude: 0.7},
			{ID: "unrest", Description: "Civil unrest", Domain: cascade.DomainSocial, Magnitude: 0.6},
		},
		[]cascade.Edge{
			{Source: "grid", Target: "markets", Weight: 0.8, Delay: 0.25, Domain: cascade.DomainEconomic},
			{Source: "markets", Target: "unrest", Weight: 0.6, Delay: 0.5, Domain: cascade.DomainSocial},
		},
	)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}
	return g
}

// TestForceDirectedLayout tests the force-directed layout algorithm
func TestForceDirectedLayout(t *testing.T) {
	g := chainGraph(t)

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:      800,
		Height:     600,
		Iterations: 50,
		Seed:       42,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// Verify all nodes have positions
	if len(positions) != 3 {
		t.Errorf("Expected 3 positions, got %d", len(positions))
	}

	// Verify positions are within bounds
	for id, pos := range positions {
		if pos.X < 0 || pos.X > 800 {
			t.Errorf("Node %s X position %f out of bounds", id, pos.X)
		}
		if pos.Y < 0 || pos.Y > 600 {
			t.Errorf("Node %s Y position %f out of bounds", id, pos.Y)
		}
	}

	// Connected nodes should be closer than unconnected ones
	dist12 := distance(positions["grid"], positions["markets"])
	dist23 := distance(positions["markets"], positions["unrest"])
	dist13 := distance(positions["grid"], positions["unrest"])

	// grid and unrest are not directly connected, should be furthest apart
	if dist13 < dist12 || dist13 < dist23 {
		t.Error("Force-directed layout did not separate unconnected nodes properly")
	}
}

// TestForceDirectedLayoutDeterministic verifies same seed, same layout
func TestForceDirectedLayoutDeterministic(t *testing.T) {
	g := chainGraph(t)

	first, err := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600, Seed: 7}).ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}
	second, err := NewForceDirectedLayout(&LayoutConfig{Width: 800, Height: 600, Seed: 7}).ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	for id, pos := range first {
		if second[id] != pos {
			t.Errorf("Node %s moved between seeded runs: %v vs %v", id, pos, second[id])
		}
	}
}

// TestCircularLayout tests circular layout algorithm
func TestCircularLayout(t *testing.T) {
	nodes := make([]cascade.Node, 5)
	for i := range nodes {
		nodes[i] = cascade.Node{
			ID:        string(rune('a' + i)),
			Domain:    cascade.DomainEconomic,
			Magnitude: 0.5,
		}
	}
	g, err := cascade.NewGraph(nodes, nil)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}

	layout := NewCircularLayout(&LayoutConfig{
		Width:  400,
		Height: 400,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// Verify all nodes are roughly the same distance from center
	centerX, centerY := 200.0, 200.0
	distances := make([]float64, 0, len(positions))

	for _, pos := range positions {
		dx := pos.X - centerX
		dy := pos.Y - centerY
		distances = append(distances, math.Sqrt(dx*dx+dy*dy))
	}

	// All distances should be approximately equal (within 5% tolerance)
	avgDist := distances[0]
	for _, dist := range distances {
		ratio := dist / avgDist
		if ratio < 0.95 || ratio > 1.05 {
			t.Errorf("Circular layout not uniform: distance ratio %f", ratio)
		}
	}
}

// TestHierarchicalLayout tests hierarchical/tree layout
func TestHierarchicalLayout(t *testing.T) {
	g, err := cascade.NewGraph(
		[]cascade.Node{
			{ID: "root", Domain: cascade.DomainTechnological, Magnitude: 0.9},
			{ID: "child1", Domain: cascade.DomainEconomic, Magnitude: 0.5},
			{ID: "child2", Domain: cascade.DomainPolitical, Magnitude: 0.5},
			{ID: "grandchild1", Domain: cascade.DomainSocial, Magnitude: 0.3},
			{ID: "grandchild2", Domain: cascade.DomainSocial, Magnitude: 0.3},
		},
		[]cascade.Edge{
			{Source: "root", Target: "child1", Weight: 0.8, Domain: cascade.DomainEconomic},
			{Source: "root", Target: "child2", Weight: 0.8, Domain: cascade.DomainPolitical},
			{Source: "child1", Target: "grandchild1", Weight: 0.6, Domain: cascade.DomainSocial},
			{Source: "child1", Target: "grandchild2", Weight: 0.6, Domain: cascade.DomainSocial},
		},
	)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}

	layout := NewHierarchicalLayout(&LayoutConfig{
		Width:  600,
		Height: 400,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// Verify root is at top (lowest Y value)
	rootY := positions["root"].Y
	for id, pos := range positions {
		if id != "root" && pos.Y <= rootY {
			t.Errorf("Node %s has Y=%f, should be below root Y=%f", id, pos.Y, rootY)
		}
	}

	// Children should be at same level
	if math.Abs(positions["child1"].Y-positions["child2"].Y) > 1.0 {
		t.Errorf("Children not at same level: Y1=%f, Y2=%f", positions["child1"].Y, positions["child2"].Y)
	}

	// Grandchildren should be at same level
	if math.Abs(positions["grandchild1"].Y-positions["grandchild2"].Y) > 1.0 {
		t.Errorf("Grandchildren not at same level: Y1=%f, Y2=%f",
			positions["grandchild1"].Y, positions["grandchild2"].Y)
	}
}

// TestHierarchicalLayoutCycle tests layout on a graph with no clear root
func TestHierarchicalLayoutCycle(t *testing.T) {
	g, err := cascade.NewGraph(
		[]cascade.Node{
			{ID: "a", Domain: cascade.DomainEconomic, Magnitude: 0.5},
			{ID: "b", Domain: cascade.DomainPolitical, Magnitude: 0.5},
		},
		[]cascade.Edge{
			{Source: "a", Target: "b", Weight: 0.5, Domain: cascade.DomainPolitical},
			{Source: "b", Target: "a", Weight: 0.5, Domain: cascade.DomainEconomic},
		},
	)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}

	layout := NewHierarchicalLayout(&LayoutConfig{Width: 600, Height: 400})
	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	if len(positions) != 2 {
		t.Errorf("Expected 2 positions, got %d", len(positions))
	}

	// First node becomes the fallback root, so it sits above the other
	if positions["a"].Y >= positions["b"].Y {
		t.Errorf("Fallback root not at top: a Y=%f, b Y=%f", positions["a"].Y, positions["b"].Y)
	}
}

// TestLayoutNormalization tests that coordinates are normalized to bounds
func TestLayoutNormalization(t *testing.T) {
	g := chainGraph(t)

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:      100,
		Height:     100,
		Iterations: 10,
		Seed:       42,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Layout computation failed: %v", err)
	}

	// All positions should be within bounds
	for id, pos := range positions {
		if pos.X < 0 || pos.X > 100 {
			t.Errorf("Node %s X=%f out of bounds [0, 100]", id, pos.X)
		}
		if pos.Y < 0 || pos.Y > 100 {
			t.Errorf("Node %s Y=%f out of bounds [0, 100]", id, pos.Y)
		}
	}
}

// TestEmptyGraph tests layout on empty graph
func TestEmptyGraph(t *testing.T) {
	g, err := cascade.NewGraph(nil, nil)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:  800,
		Height: 600,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Empty graph should not error: %v", err)
	}

	if len(positions) != 0 {
		t.Errorf("Expected 0 positions for empty graph, got %d", len(positions))
	}
}

// TestSingleNodeLayout tests layout with single node
func TestSingleNodeLayout(t *testing.T) {
	g, err := cascade.NewGraph(
		[]cascade.Node{{ID: "only", Domain: cascade.DomainEconomic, Magnitude: 0.5}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewGraph() failed: %v", err)
	}

	layout := NewForceDirectedLayout(&LayoutConfig{
		Width:  800,
		Height: 600,
	})

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		t.Fatalf("Single node layout failed: %v", err)
	}

	if len(positions) != 1 {
		t.Errorf("Expected 1 position, got %d", len(positions))
	}

	// Single node should be centered
	pos := positions["only"]
	centerX, centerY := 400.0, 300.0
	if math.Abs(pos.X-centerX) > 100 || math.Abs(pos.Y-centerY) > 100 {
		t.Errorf("Single node not centered: (%f, %f)", pos.X, pos.Y)
	}
}

// Helper function to calculate distance between two positions
func distance(p1, p2 Position) float64 {
	dx := p1.X - p2.X
	dy := p1.Y - p2.Y
	return math.Sqrt(dx*dx + dy*dy)
}
