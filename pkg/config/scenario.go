package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
	"github.com/dd0wney/cluso-cascade/pkg/validation"
)

// LoadScenario reads, parses, and validates a scenario definition from a
// YAML file.
func LoadScenario(path string) (*validation.ScenarioRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	req, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return req, nil
}

// ParseScenario unmarshals and validates a scenario definition. An omitted
// granularity defaults to yearly.
func ParseScenario(data []byte) (*validation.ScenarioRequest, error) {
	var req validation.ScenarioRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if req.Granularity == "" {
		req.Granularity = string(trajectory.GranularityYearly)
	}
	if err := validation.ValidateScenarioRequest(&req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BuildGraph converts a validated scenario into a dependency graph ready
// for simulation.
func BuildGraph(req *validation.ScenarioRequest) (*cascade.Graph, error) {
	if req == nil {
		return nil, errors.New("scenario request cannot be nil")
	}

	nodes := make([]cascade.Node, 0, len(req.Nodes))
	for _, n := range req.Nodes {
		domain, err := cascade.ParseDomain(n.Domain)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		nodes = append(nodes, cascade.Node{
			ID:          n.ID,
			Description: n.Description,
			Domain:      domain,
			Magnitude:   n.Magnitude,
		})
	}

	edges := make([]cascade.Edge, 0, len(req.Edges))
	for _, e := range req.Edges {
		domain, err := cascade.ParseDomain(e.Domain)
		if err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.Source, e.Target, err)
		}
		edges = append(edges, cascade.Edge{
			Source: e.Source,
			Target: e.Target,
			Weight: e.Weight,
			Delay:  e.Delay,
			Domain: domain,
		})
	}

	return cascade.NewGraph(nodes, edges)
}

// ScenarioGranularity parses the scenario's projection granularity.
func ScenarioGranularity(req *validation.ScenarioRequest) (trajectory.Granularity, error) {
	if req == nil {
		return "", errors.New("scenario request cannot be nil")
	}
	return trajectory.ParseGranularity(req.Granularity)
}
