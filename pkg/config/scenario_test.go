package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

const scenarioDoc = `
name: energy shock
description: supply disruption rippling into markets and unrest
breach: grid-eu
horizons: [1, 5]
granularity: quarterly
nodes:
  - id: grid-eu
    description: european power grid
    domain: technological
    magnitude: 0.9
  - id: markets
    domain: economic
    magnitude: 0.7
  - id: unrest
    domain: social
    magnitude: 0.6
edges:
  - source: grid-eu
    target: markets
    weight: 0.8
    delay: 0.25
    domain: economic
  - source: markets
    target: unrest
    weight: 0.6
    delay: 0.5
    domain: social
`

func TestParseScenario(t *testing.T) {
	req, err := ParseScenario([]byte(scenarioDoc))
	if err != nil {
		t.Fatalf("ParseScenario() failed: %v", err)
	}

	if req.Name != "energy shock" {
		t.Errorf("Name = %q, want energy shock", req.Name)
	}
	if req.Breach != "grid-eu" {
		t.Errorf("Breach = %q, want grid-eu", req.Breach)
	}
	if len(req.Nodes) != 3 || len(req.Edges) != 2 {
		t.Fatalf("parsed %d nodes and %d edges, want 3 and 2", len(req.Nodes), len(req.Edges))
	}

	graph, err := BuildGraph(req)
	if err != nil {
		t.Fatalf("BuildGraph() failed: %v", err)
	}
	if graph.NodeCount() != 3 || graph.EdgeCount() != 2 {
		t.Errorf("graph has %d nodes and %d edges, want 3 and 2", graph.NodeCount(), graph.EdgeCount())
	}
	if out := graph.Outgoing("grid-eu"); len(out) != 1 || out[0].Target != "markets" {
		t.Errorf("unexpected outgoing edges for grid-eu: %+v", out)
	}

	gran, err := ScenarioGranularity(req)
	if err != nil {
		t.Fatalf("ScenarioGranularity() failed: %v", err)
	}
	if gran != trajectory.GranularityQuarterly {
		t.Errorf("granularity = %q, want quarterly", gran)
	}
}

func TestParseScenario_DefaultGranularity(t *testing.T) {
	doc := `
name: minimal
breach: a
horizons: [1]
nodes:
  - id: a
    domain: economic
    magnitude: 0.5
`
	req, err := ParseScenario([]byte(doc))
	if err != nil {
		t.Fatalf("ParseScenario() failed: %v", err)
	}
	if req.Granularity != string(trajectory.GranularityYearly) {
		t.Errorf("Granularity = %q, want yearly default", req.Granularity)
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "malformed yaml",
			doc:  "nodes: [",
		},
		{
			name: "breach not in graph",
			doc:  "name: x\nbreach: ghost\nhorizons: [1]\nnodes:\n  - id: a\n    domain: economic\n    magnitude: 0.5\n",
		},
		{
			name: "unknown node domain",
			doc:  "name: x\nbreach: a\nhorizons: [1]\nnodes:\n  - id: a\n    domain: astral\n    magnitude: 0.5\n",
		},
		{
			name: "edge to unknown target",
			doc: "name: x\nbreach: a\nhorizons: [1]\nnodes:\n  - id: a\n    domain: economic\n    magnitude: 0.5\n" +
				"edges:\n  - source: a\n    target: ghost\n    weight: 0.5\n    domain: economic\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.doc)); err == nil {
				t.Error("Expected error but got nil")
			}
		})
	}
}

func TestLoadScenario(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(scenarioDoc), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	req, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario() failed: %v", err)
	}
	if req.Name != "energy shock" {
		t.Errorf("Name = %q, want energy shock", req.Name)
	}

	if _, err := LoadScenario(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestBuildGraph_Nil(t *testing.T) {
	if _, err := BuildGraph(nil); err == nil {
		t.Error("Expected error for nil request")
	}
}
