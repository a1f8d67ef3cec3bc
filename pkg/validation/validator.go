// Package validation checks inbound scenario payloads before they reach the
// simulation pipeline, and provides a fluent validator for configuration
// structs.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
)

var (
	// validate is a singleton validator instance
	validate *validator.Validate

	// Validation constants
	MaxNodes           = 10000
	MaxEdges           = 100000
	MaxNodeIDLength    = 100
	MaxDescription     = 500
	MaxScenarioName    = 200
	MaxRationaleLength = 2000
	MaxHorizonYears    = 50.0

	// nodeIDPattern keeps ids usable as map keys, file names, and labels.
	nodeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.\-]*$`)
)

func init() {
	validate = validator.New()
}

// ScenarioNode is one node of an inbound dependency-graph payload.
type ScenarioNode struct {
	ID          string  `json:"id" yaml:"id" validate:"required,max=100"`
	Description string  `json:"description" yaml:"description" validate:"max=500"`
	Domain      string  `json:"domain" yaml:"domain" validate:"required"`
	Magnitude   float64 `json:"magnitude" yaml:"magnitude" validate:"gte=0,lte=1"`
}

// ScenarioEdge is one directed dependency of an inbound payload.
type ScenarioEdge struct {
	Source string  `json:"source" yaml:"source" validate:"required"`
	Target string  `json:"target" yaml:"target" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
	Delay  float64 `json:"delay" yaml:"delay" validate:"gte=0"`
	Domain string  `json:"domain" yaml:"domain" validate:"required"`
}

// ScenarioRequest is a complete what-if scenario submission: a dependency
// graph plus the breach node to trigger.
type ScenarioRequest struct {
	Name        string         `json:"name" yaml:"name" validate:"required,max=200"`
	Description string         `json:"description" yaml:"description" validate:"max=500"`
	Breach      string         `json:"breach" yaml:"breach" validate:"required"`
	Horizons    []float64      `json:"horizons" yaml:"horizons" validate:"required,min=1"`
	Granularity string         `json:"granularity" yaml:"granularity" validate:"required"`
	Nodes       []ScenarioNode `json:"nodes" yaml:"nodes" validate:"required,min=1,dive"`
	Edges       []ScenarioEdge `json:"edges" yaml:"edges" validate:"omitempty,dive"`
}

// ValidateScenarioRequest validates a scenario submission
func ValidateScenarioRequest(req *ScenarioRequest) error {
	if req == nil {
		return errors.New("scenario request cannot be nil")
	}

	// Validate using struct tags
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	if len(req.Nodes) > MaxNodes {
		return fmt.Errorf("Nodes: maximum %d nodes allowed, got %d", MaxNodes, len(req.Nodes))
	}
	if len(req.Edges) > MaxEdges {
		return fmt.Errorf("Edges: maximum %d edges allowed, got %d", MaxEdges, len(req.Edges))
	}

	ids := make(map[string]struct{}, len(req.Nodes))
	for i, node := range req.Nodes {
		if !nodeIDPattern.MatchString(node.ID) {
			return fmt.Errorf("Nodes: id %q at index %d contains invalid characters", node.ID, i)
		}
		if _, dup := ids[node.ID]; dup {
			return fmt.Errorf("Nodes: duplicate id %q at index %d", node.ID, i)
		}
		ids[node.ID] = struct{}{}
		if _, err := cascade.ParseDomain(node.Domain); err != nil {
			return fmt.Errorf("Nodes: node %q: %w", node.ID, err)
		}
	}

	for i, edge := range req.Edges {
		if _, ok := ids[edge.Source]; !ok {
			return fmt.Errorf("Edges: edge at index %d references unknown source %q", i, edge.Source)
		}
		if _, ok := ids[edge.Target]; !ok {
			return fmt.Errorf("Edges: edge at index %d references unknown target %q", i, edge.Target)
		}
		if _, err := cascade.ParseDomain(edge.Domain); err != nil {
			return fmt.Errorf("Edges: edge at index %d: %w", i, err)
		}
	}

	if _, ok := ids[req.Breach]; !ok {
		return fmt.Errorf("Breach: node %q is not part of the graph", req.Breach)
	}

	for i, horizon := range req.Horizons {
		if horizon <= 0 {
			return fmt.Errorf("Horizons: horizon at index %d must be positive, got %.3f", i, horizon)
		}
		if horizon > MaxHorizonYears {
			return fmt.Errorf("Horizons: horizon at index %d exceeds maximum of %.0f years", i, MaxHorizonYears)
		}
	}

	switch req.Granularity {
	case "monthly", "quarterly", "yearly":
	default:
		return fmt.Errorf("Granularity: %q must be one of [monthly quarterly yearly]", req.Granularity)
	}

	return nil
}

// ValidateAdjustmentRationale validates free-text expert rationale
func ValidateAdjustmentRationale(rationale string) error {
	if rationale == "" {
		return errors.New("rationale cannot be empty")
	}
	if len(rationale) > MaxRationaleLength {
		return fmt.Errorf("rationale exceeds maximum length of %d characters", MaxRationaleLength)
	}
	return nil
}

// ValidateNodeID validates a single node identifier
func ValidateNodeID(id string) error {
	if id == "" {
		return errors.New("node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return fmt.Errorf("node id '%s' exceeds maximum length of %d characters", id, MaxNodeIDLength)
	}
	if !nodeIDPattern.MatchString(id) {
		return fmt.Errorf("node id '%s' is invalid (must start alphanumeric, followed by alphanumeric, underscore, dot, or dash)", id)
	}
	return nil
}

// ValidateStruct runs tag-based validation on any annotated struct
func ValidateStruct(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationError(err)
	}
	return nil
}

// formatValidationError converts validator errors to a more user-friendly format
func formatValidationError(err error) error {
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Field()
		tag := e.Tag()
		param := e.Param()

		switch tag {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "max":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, param)
		case "lte":
			return fmt.Errorf("%s: must not exceed %s", field, param)
		case "gt":
			return fmt.Errorf("%s: must be greater than %s", field, param)
		case "lt":
			return fmt.Errorf("%s: must be less than %s", field, param)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, tag)
		}
	}

	return err
}
