// Package export renders analysis results for downstream consumers: laid-out
// visualization documents, trajectory JSON, and compressed artifact bundles
// stamped with a content digest and an optional signed manifest.
package export

import (
	"errors"
	"math/rand"
	"time"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
)

var (
	// ErrInvalidInput reports an unusable graph, run, or trajectory argument.
	ErrInvalidInput = errors.New("invalid input")
	// ErrDigestMismatch reports bundle content that does not match its digest.
	ErrDigestMismatch = errors.New("bundle digest mismatch")
	// ErrInvalidManifest reports a manifest token that fails verification.
	ErrInvalidManifest = errors.New("invalid manifest token")
)

// Position represents a 2D coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// LayoutConfig configures layout parameters
type LayoutConfig struct {
	Width      float64 // Canvas width
	Height     float64 // Canvas height
	Iterations int     // Number of iterations for iterative algorithms
	Padding    float64 // Padding from edges
	Seed       int64   // Random source seed; 0 draws from the clock
}

// Layout positions every node of a dependency graph on a 2D canvas.
type Layout interface {
	ComputeLayout(g *cascade.Graph) (map[string]Position, error)
}

// newRand returns a random source seeded from the config or, when no seed
// is set, from the clock.
func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// nodeIDs lists the graph's node IDs in input order.
func nodeIDs(g *cascade.Graph) []string {
	nodes := g.Nodes()
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// neighborMap collects each node's undirected neighbor list in edge order,
// deduplicated, so force passes iterate deterministically.
func neighborMap(g *cascade.Graph) map[string][]string {
	seen := make(map[[2]string]bool)
	neighbors := make(map[string][]string)
	add := func(a, b string) {
		if a == b || seen[[2]string{a, b}] {
			return
		}
		seen[[2]string{a, b}] = true
		neighbors[a] = append(neighbors[a], b)
	}
	for _, e := range g.Edges() {
		add(e.Source, e.Target)
		add(e.Target, e.Source)
	}
	return neighbors
}
