package uncertainty

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Common sentinel errors
var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrEmptyInput    = errors.New("empty input")
)

// Options configures an Engine.
type Options struct {
	// ConfidenceLevel is the two-sided interval level in (0,1), e.g. 0.95.
	ConfidenceLevel float64
	// Seed fixes the random source for reproducible runs; 0 draws a
	// time-based seed per call.
	Seed int64
	// Decay parameterizes the confidence-decay function.
	Decay DecayParams
}

// DecayParams models the widening of uncertainty with projection distance.
type DecayParams struct {
	InitialCI float64
	TargetCI  float64
	Horizon   float64
}

// DefaultDecayParams returns the standard decay curve: 0.95 confidence now,
// 0.60 at a five-year horizon.
func DefaultDecayParams() DecayParams {
	return DecayParams{InitialCI: 0.95, TargetCI: 0.60, Horizon: 5.0}
}

// DefaultOptions returns the standard engine configuration.
func DefaultOptions() Options {
	return Options{
		ConfidenceLevel: 0.95,
		Decay:           DefaultDecayParams(),
	}
}

// Engine provides Monte Carlo and bootstrap statistical primitives. It is
// stateless per call: every operation draws its own random source, so a
// single Engine may be shared across goroutines.
type Engine struct {
	opts Options
}

// NewEngine validates the options and creates an engine.
func NewEngine(opts Options) (*Engine, error) {
	if opts.ConfidenceLevel <= 0 || opts.ConfidenceLevel >= 1 {
		return nil, fmt.Errorf("%w: confidence level %.3f outside (0,1)", ErrInvalidConfig, opts.ConfidenceLevel)
	}
	if opts.Decay == (DecayParams{}) {
		opts.Decay = DefaultDecayParams()
	}
	if opts.Decay.InitialCI <= 0 || opts.Decay.TargetCI <= 0 || opts.Decay.TargetCI > opts.Decay.InitialCI {
		return nil, fmt.Errorf("%w: decay requires 0 < target <= initial", ErrInvalidConfig)
	}
	if opts.Decay.Horizon <= 0 {
		return nil, fmt.Errorf("%w: decay horizon %.3f must be positive", ErrInvalidConfig, opts.Decay.Horizon)
	}
	return &Engine{opts: opts}, nil
}

// Options returns the engine's effective options.
func (e *Engine) Options() Options {
	return e.opts
}

// newRand returns a fresh random source, seeded from the options or, when
// no seed is configured, from the clock.
func (e *Engine) newRand() *rand.Rand {
	seed := e.opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// ConfidenceInterval is a two-sided interval at a stated confidence level.
type ConfidenceInterval struct {
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
	Level  float64 `json:"level"`
	Center float64 `json:"center"`
}

// Contains reports whether v falls inside the interval.
func (ci ConfidenceInterval) Contains(v float64) bool {
	return v >= ci.Lower && v <= ci.Upper
}

// Width returns the interval width.
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}
