// Package config loads analysis configuration and scenario definitions from
// YAML. Omitted keys keep the engine defaults; a file is rejected whenever
// any engine it describes could not be constructed from it.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-cascade/pkg/cascade"
	"github.com/dd0wney/cluso-cascade/pkg/detect"
	"github.com/dd0wney/cluso-cascade/pkg/scoring"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
	"github.com/dd0wney/cluso-cascade/pkg/uncertainty"
	"github.com/dd0wney/cluso-cascade/pkg/validation"
)

// InteractionOverride replaces one cell of the cross-domain weight table.
type InteractionOverride struct {
	From   string  `json:"from" yaml:"from" validate:"required"`
	To     string  `json:"to" yaml:"to" validate:"required"`
	Weight float64 `json:"weight" yaml:"weight" validate:"gte=0,lte=1"`
}

// CascadeConfig tunes breach propagation. DomainDelays entries override the
// per-domain defaults; unlisted domains keep theirs.
type CascadeConfig struct {
	DampeningFactor      float64               `json:"dampening_factor" yaml:"dampening_factor" validate:"gte=0,lte=1"`
	SaturationThreshold  float64               `json:"saturation_threshold" yaml:"saturation_threshold" validate:"gt=0"`
	MinimumMagnitude     float64               `json:"minimum_magnitude" yaml:"minimum_magnitude" validate:"gte=0,lt=1"`
	MaxWaves             int                   `json:"max_waves" yaml:"max_waves" validate:"gte=0"`
	FeedbackLoopLimit    int                   `json:"feedback_loop_limit" yaml:"feedback_loop_limit" validate:"gte=0"`
	DomainDelays         map[string]float64    `json:"domain_delays" yaml:"domain_delays" validate:"omitempty,dive,gte=0"`
	InteractionOverrides []InteractionOverride `json:"interaction_overrides" yaml:"interaction_overrides" validate:"omitempty,dive"`
}

// TrajectoryConfig tunes state-variable projection.
type TrajectoryConfig struct {
	ConfidenceLevel         float64 `json:"confidence_level" yaml:"confidence_level" validate:"gte=0,lt=1"`
	MonteCarloSamples       int     `json:"monte_carlo_samples" yaml:"monte_carlo_samples" validate:"gte=0"`
	BranchMonteCarloSamples int     `json:"branch_monte_carlo_samples" yaml:"branch_monte_carlo_samples" validate:"gte=0"`
	NoiseStd                float64 `json:"noise_std" yaml:"noise_std" validate:"gte=0"`
	Seed                    int64   `json:"seed" yaml:"seed"`
}

// UncertaintyConfig tunes the statistical engine and its confidence decay.
type UncertaintyConfig struct {
	ConfidenceLevel float64 `json:"confidence_level" yaml:"confidence_level" validate:"gte=0,lt=1"`
	InitialCI       float64 `json:"initial_ci" yaml:"initial_ci" validate:"gte=0,lte=1"`
	TargetCI        float64 `json:"target_ci" yaml:"target_ci" validate:"gte=0,lte=1"`
	DecayHorizon    float64 `json:"decay_horizon" yaml:"decay_horizon" validate:"gte=0"`
	Seed            int64   `json:"seed" yaml:"seed"`
}

// DetectionConfig tunes decision-point and inflection-point detection.
type DetectionConfig struct {
	LookaheadWindow      int                `json:"lookahead_window" yaml:"lookahead_window" validate:"gte=0"`
	SensitivityThreshold float64            `json:"sensitivity_threshold" yaml:"sensitivity_threshold" validate:"gte=0,lte=1"`
	MinCriticality       float64            `json:"min_criticality" yaml:"min_criticality" validate:"gte=0,lte=1"`
	MaxDecisionPoints    int                `json:"max_decision_points" yaml:"max_decision_points" validate:"gte=0"`
	DerivativeThreshold  float64            `json:"derivative_threshold" yaml:"derivative_threshold" validate:"gte=0"`
	ThresholdCrossings   map[string]float64 `json:"threshold_crossings" yaml:"threshold_crossings"`
}

// ScoringConfig tunes factor weighting and bootstrap estimation.
type ScoringConfig struct {
	SeverityWeights    map[string]float64 `json:"severity_weights" yaml:"severity_weights" validate:"omitempty,dive,gte=0,lte=1"`
	ProbabilityWeights map[string]float64 `json:"probability_weights" yaml:"probability_weights" validate:"omitempty,dive,gte=0,lte=1"`
	ConfidenceLevel    float64            `json:"confidence_level" yaml:"confidence_level" validate:"gte=0,lt=1"`
	BootstrapSamples   int                `json:"bootstrap_samples" yaml:"bootstrap_samples" validate:"gte=0"`
	Seed               int64              `json:"seed" yaml:"seed"`
}

// AnalysisConfig is the complete tunable surface of the analysis pipeline.
type AnalysisConfig struct {
	Cascade     CascadeConfig     `json:"cascade" yaml:"cascade"`
	Trajectory  TrajectoryConfig  `json:"trajectory" yaml:"trajectory"`
	Uncertainty UncertaintyConfig `json:"uncertainty" yaml:"uncertainty"`
	Detection   DetectionConfig   `json:"detection" yaml:"detection"`
	Scoring     ScoringConfig     `json:"scoring" yaml:"scoring"`
}

// Default returns a config mirroring every engine default.
func Default() *AnalysisConfig {
	cas := cascade.DefaultOptions()
	delays := make(map[string]float64, len(cas.DomainDelays))
	for domain, delay := range cas.DomainDelays {
		delays[domain.String()] = delay
	}
	traj := trajectory.DefaultOptions()
	unc := uncertainty.DefaultOptions()
	decision := detect.DefaultDecisionOptions()
	inflection := detect.DefaultInflectionOptions()
	score := scoring.DefaultOptions()

	return &AnalysisConfig{
		Cascade: CascadeConfig{
			DampeningFactor:     cas.DampeningFactor,
			SaturationThreshold: cas.SaturationThreshold,
			MinimumMagnitude:    cas.MinimumMagnitude,
			MaxWaves:            cas.MaxWaves,
			FeedbackLoopLimit:   cas.FeedbackLoopLimit,
			DomainDelays:        delays,
		},
		Trajectory: TrajectoryConfig{
			ConfidenceLevel:         traj.ConfidenceLevel,
			MonteCarloSamples:       traj.MonteCarloSamples,
			BranchMonteCarloSamples: traj.BranchMonteCarloSamples,
			NoiseStd:                traj.NoiseStd,
		},
		Uncertainty: UncertaintyConfig{
			ConfidenceLevel: unc.ConfidenceLevel,
			InitialCI:       unc.Decay.InitialCI,
			TargetCI:        unc.Decay.TargetCI,
			DecayHorizon:    unc.Decay.Horizon,
		},
		Detection: DetectionConfig{
			LookaheadWindow:      decision.LookaheadWindow,
			SensitivityThreshold: decision.SensitivityThreshold,
			MinCriticality:       decision.MinCriticality,
			MaxDecisionPoints:    decision.MaxDecisionPoints,
			DerivativeThreshold:  inflection.DerivativeThreshold,
			ThresholdCrossings:   inflection.Crossings,
		},
		Scoring: ScoringConfig{
			SeverityWeights:    score.SeverityWeights,
			ProbabilityWeights: score.ProbabilityWeights,
			ConfidenceLevel:    score.ConfidenceLevel,
			BootstrapSamples:   score.BootstrapSamples,
		},
	}
}

// Load reads, parses, and validates a YAML config file.
func Load(path string) (*AnalysisConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse unmarshals YAML over the defaults and validates the result. Keys
// absent from the document keep their default values; maps merge over them.
func Parse(data []byte) (*AnalysisConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the tagged field ranges, then proves each section usable
// by building its engine options (and, where cheap, the engine itself).
func (c *AnalysisConfig) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}

	cv := validation.NewConfigValidator("analysis config")
	cv.Custom("cascade", func() error {
		_, err := c.CascadeOptions()
		return err
	})
	cv.Custom("trajectory", func() error {
		opts, err := c.TrajectoryOptions()
		if err != nil {
			return err
		}
		_, err = trajectory.NewEngine(opts)
		return err
	})
	cv.Custom("uncertainty", func() error {
		_, err := uncertainty.NewEngine(c.UncertaintyOptions())
		return err
	})
	cv.Custom("detection", func() error {
		if _, err := detect.NewDecisionPointDetector(c.DecisionOptions()); err != nil {
			return err
		}
		_, err := detect.NewInflectionPointDetector(c.InflectionOptions())
		return err
	})
	cv.Custom("scoring", func() error {
		_, err := scoring.NewEngine(c.ScoringOptions())
		return err
	})
	return cv.Validate()
}

// CascadeOptions maps the cascade section onto simulator options, overlaying
// domain-delay and interaction-weight overrides on the default tables.
func (c *AnalysisConfig) CascadeOptions() (cascade.Options, error) {
	opts := cascade.Options{
		DampeningFactor:     c.Cascade.DampeningFactor,
		SaturationThreshold: c.Cascade.SaturationThreshold,
		MinimumMagnitude:    c.Cascade.MinimumMagnitude,
		MaxWaves:            c.Cascade.MaxWaves,
		FeedbackLoopLimit:   c.Cascade.FeedbackLoopLimit,
		DomainDelays:        cascade.DefaultDomainDelays(),
		Interactions:        cascade.DefaultInteractionWeights(),
	}

	for name, delay := range c.Cascade.DomainDelays {
		domain, err := cascade.ParseDomain(name)
		if err != nil {
			return cascade.Options{}, fmt.Errorf("domain delay: %w", err)
		}
		opts.DomainDelays[domain] = delay
	}

	for _, o := range c.Cascade.InteractionOverrides {
		from, err := cascade.ParseDomain(o.From)
		if err != nil {
			return cascade.Options{}, fmt.Errorf("interaction override: %w", err)
		}
		to, err := cascade.ParseDomain(o.To)
		if err != nil {
			return cascade.Options{}, fmt.Errorf("interaction override: %w", err)
		}
		if err := opts.Interactions.Set(from, to, o.Weight); err != nil {
			return cascade.Options{}, err
		}
	}

	return opts, nil
}

// TrajectoryOptions maps the trajectory section onto engine options, with
// the cascade section nested inside.
func (c *AnalysisConfig) TrajectoryOptions() (trajectory.Options, error) {
	cas, err := c.CascadeOptions()
	if err != nil {
		return trajectory.Options{}, err
	}
	return trajectory.Options{
		ConfidenceLevel:         c.Trajectory.ConfidenceLevel,
		Seed:                    c.Trajectory.Seed,
		MonteCarloSamples:       c.Trajectory.MonteCarloSamples,
		BranchMonteCarloSamples: c.Trajectory.BranchMonteCarloSamples,
		NoiseStd:                c.Trajectory.NoiseStd,
		Cascade:                 cas,
	}, nil
}

// UncertaintyOptions maps the uncertainty section onto engine options. A
// zero confidence level or an all-zero decay block keeps the defaults.
func (c *AnalysisConfig) UncertaintyOptions() uncertainty.Options {
	opts := uncertainty.Options{
		ConfidenceLevel: c.Uncertainty.ConfidenceLevel,
		Seed:            c.Uncertainty.Seed,
		Decay: uncertainty.DecayParams{
			InitialCI: c.Uncertainty.InitialCI,
			TargetCI:  c.Uncertainty.TargetCI,
			Horizon:   c.Uncertainty.DecayHorizon,
		},
	}
	if opts.ConfidenceLevel == 0 {
		opts.ConfidenceLevel = uncertainty.DefaultOptions().ConfidenceLevel
	}
	return opts
}

// DecisionOptions maps the detection section onto decision-point options.
func (c *AnalysisConfig) DecisionOptions() detect.DecisionOptions {
	return detect.DecisionOptions{
		LookaheadWindow:      c.Detection.LookaheadWindow,
		SensitivityThreshold: c.Detection.SensitivityThreshold,
		MinCriticality:       c.Detection.MinCriticality,
		MaxDecisionPoints:    c.Detection.MaxDecisionPoints,
	}
}

// InflectionOptions maps the detection section onto inflection-point
// options. The crossings map is copied so detectors never alias the config.
func (c *AnalysisConfig) InflectionOptions() detect.InflectionOptions {
	opts := detect.InflectionOptions{DerivativeThreshold: c.Detection.DerivativeThreshold}
	if c.Detection.ThresholdCrossings != nil {
		opts.Crossings = make(map[string]float64, len(c.Detection.ThresholdCrossings))
		for name, threshold := range c.Detection.ThresholdCrossings {
			opts.Crossings[name] = threshold
		}
	}
	return opts
}

// ScoringOptions maps the scoring section onto engine options. Nil weight
// maps keep the engine defaults.
func (c *AnalysisConfig) ScoringOptions() scoring.Options {
	return scoring.Options{
		SeverityWeights:    scoring.Weights(copyWeights(c.Scoring.SeverityWeights)),
		ProbabilityWeights: scoring.Weights(copyWeights(c.Scoring.ProbabilityWeights)),
		ConfidenceLevel:    c.Scoring.ConfidenceLevel,
		BootstrapSamples:   c.Scoring.BootstrapSamples,
		Seed:               c.Scoring.Seed,
	}
}

func copyWeights(w map[string]float64) map[string]float64 {
	if w == nil {
		return nil
	}
	out := make(map[string]float64, len(w))
	for name, weight := range w {
		out[name] = weight
	}
	return out
}
