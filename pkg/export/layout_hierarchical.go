package export

import (
	"github.com/dd0wney/cluso-cascade/pkg/cascade"
)

// HierarchicalLayout arranges nodes in breach-to-leaf levels
type HierarchicalLayout struct {
	config *LayoutConfig
}

// NewHierarchicalLayout creates a new hierarchical layout
func NewHierarchicalLayout(config *LayoutConfig) *HierarchicalLayout {
	if config.Width == 0 {
		config.Width = 1000
	}
	if config.Height == 0 {
		config.Height = 1000
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config}
}

// ComputeLayout arranges nodes hierarchically
func (hl *HierarchicalLayout) ComputeLayout(g *cascade.Graph) (map[string]Position, error) {
	positions := make(map[string]Position)

	ids := nodeIDs(g)
	if len(ids) == 0 {
		return positions, nil
	}

	// Root nodes have no incoming edges. Self-loops don't count.
	incoming := make(map[string]int)
	for _, e := range g.Edges() {
		if e.Source != e.Target {
			incoming[e.Target]++
		}
	}

	roots := make([]string, 0)
	for _, id := range ids {
		if incoming[id] == 0 {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		// Pure cycle, no clear root. Use first node.
		roots = []string{ids[0]}
	}

	// Build levels using BFS
	levels := make([][]string, 0)
	visited := make(map[string]bool)
	for _, id := range roots {
		visited[id] = true
	}
	currentLevel := roots

	for len(currentLevel) > 0 {
		levels = append(levels, currentLevel)
		nextLevel := make([]string, 0)

		for _, id := range currentLevel {
			for _, edge := range g.Outgoing(id) {
				if !visited[edge.Target] {
					nextLevel = append(nextLevel, edge.Target)
					visited[edge.Target] = true
				}
			}
		}

		currentLevel = nextLevel
	}

	// Nodes unreachable from the roots go on the last level
	for _, id := range ids {
		if !visited[id] {
			levels[len(levels)-1] = append(levels[len(levels)-1], id)
		}
	}

	// Position nodes
	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))

	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		levelWidth := hl.config.Width - 2*hl.config.Padding
		spacing := levelWidth / float64(len(level)+1)

		for nodeIdx, id := range level {
			x := hl.config.Padding + spacing*float64(nodeIdx+1)
			positions[id] = Position{X: x, Y: y}
		}
	}

	return positions, nil
}
