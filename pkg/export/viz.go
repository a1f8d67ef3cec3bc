package export

import (
	"encoding/json"
	"fmt"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
)

// NodeView is a graph node joined with its cascade outcome and canvas position.
type NodeView struct {
	ID          string         `json:"id"`
	Description string         `json:"description,omitempty"`
	Domain      cascade.Domain `json:"domain"`
	Magnitude   float64        `json:"magnitude"`
	Activation  float64        `json:"activation"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
}

// TimelineEntry is one wave of the cascade flattened for playback controls.
type TimelineEntry struct {
	Timestamp        float64  `json:"timestamp"`
	Wave             int      `json:"wave"`
	Activated        []string `json:"activated"`
	CumulativeImpact float64  `json:"cumulative_impact"`
}

// VisualizationExport is a self-contained document describing one cascade
// run over its graph: positioned nodes, edges, waves, loops, and a timeline.
type VisualizationExport struct {
	Breach          string                 `json:"breach_node_id"`
	Nodes           []NodeView             `json:"nodes"`
	Edges           []cascade.Edge         `json:"edges"`
	Waves           []cascade.Wave         `json:"waves"`
	FeedbackLoops   []cascade.FeedbackLoop `json:"feedback_loops"`
	AffectedDomains []cascade.Domain       `json:"affected_domains"`
	Timeline        []TimelineEntry        `json:"timeline"`
}

// BuildVisualization lays out the graph and joins it with the run's
// activations. A nil layout falls back to a circular layout on a
// 1000x1000 canvas.
func BuildVisualization(g *cascade.Graph, run *cascade.Run, layout Layout) (*VisualizationExport, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: graph cannot be nil", ErrInvalidInput)
	}
	if run == nil {
		return nil, fmt.Errorf("%w: run cannot be nil", ErrInvalidInput)
	}
	if layout == nil {
		layout = NewCircularLayout(&LayoutConfig{Width: 1000, Height: 1000})
	}

	positions, err := layout.ComputeLayout(g)
	if err != nil {
		return nil, fmt.Errorf("compute layout: %w", err)
	}

	nodes := g.Nodes()
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		pos := positions[n.ID]
		views[i] = NodeView{
			ID:          n.ID,
			Description: n.Description,
			Domain:      n.Domain,
			Magnitude:   n.Magnitude,
			Activation:  run.Activations[n.ID],
			X:           pos.X,
			Y:           pos.Y,
		}
	}

	timeline := make([]TimelineEntry, len(run.Waves))
	for i, w := range run.Waves {
		timeline[i] = TimelineEntry{
			Timestamp:        w.Timestamp,
			Wave:             w.Number,
			Activated:        w.NewlyActivated,
			CumulativeImpact: w.CumulativeImpact,
		}
	}

	return &VisualizationExport{
		Breach:          run.BreachNodeID,
		Nodes:           views,
		Edges:           g.Edges(),
		Waves:           run.Waves,
		FeedbackLoops:   run.FeedbackLoops,
		AffectedDomains: run.AffectedDomains,
		Timeline:        timeline,
	}, nil
}

// JSON renders the export as an indented JSON document.
func (v *VisualizationExport) JSON() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
