package scoring

import (
	"fmt"
	"math"
	"time"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/metrics"
)

// minAdjustmentsForSuggestions is how many expert adjustments must exist
// before weight-correction guidance is offered.
const minAdjustmentsForSuggestions = 10

// tendencyTolerance is the mean-delta band treated as well calibrated.
const tendencyTolerance = 0.01

// Calibration tendency labels per dimension.
const (
	TendencyOverestimates  = "overestimates"
	TendencyUnderestimates = "underestimates"
	TendencyCalibrated     = "calibrated"
)

// Adjustment is one expert correction of a scored outcome.
type Adjustment struct {
	OriginalSeverity    float64   `json:"original_severity"`
	AdjustedSeverity    float64   `json:"adjusted_severity"`
	OriginalProbability float64   `json:"original_probability"`
	AdjustedProbability float64   `json:"adjusted_probability"`
	SeverityDelta       float64   `json:"severity_delta"`
	ProbabilityDelta    float64   `json:"probability_delta"`
	Rationale           string    `json:"rationale"`
	RecordedAt          time.Time `json:"recorded_at"`
}

// CalibratorOptions configures a Calibrator.
type CalibratorOptions struct {
	Logger  logging.Logger
	Metrics *metrics.Registry
}

// Calibrator keeps an append-only log of expert adjustments and derives
// aggregate bias statistics from it. It is not safe for concurrent use;
// callers feeding it from several goroutines must serialize access.
type Calibrator struct {
	adjustments []Adjustment
	logger      logging.Logger
	metrics     *metrics.Registry
}

// NewCalibrator creates an empty calibrator.
func NewCalibrator(opts CalibratorOptions) *Calibrator {
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Calibrator{
		logger:  logger.With(logging.Component("calibration")),
		metrics: opts.Metrics,
	}
}

// RecordAdjustment appends one expert correction. Scores on both sides must
// lie in [0,1].
func (c *Calibrator) RecordAdjustment(originalSeverity, adjustedSeverity, originalProbability, adjustedProbability float64, rationale string) (Adjustment, error) {
	for _, v := range []float64{originalSeverity, adjustedSeverity, originalProbability, adjustedProbability} {
		if v < 0 || v > 1 {
			return Adjustment{}, fmt.Errorf("%w: adjustment score %.4f outside [0,1]", ErrInvalidInput, v)
		}
	}

	adj := Adjustment{
		OriginalSeverity:    originalSeverity,
		AdjustedSeverity:    adjustedSeverity,
		OriginalProbability: originalProbability,
		AdjustedProbability: adjustedProbability,
		SeverityDelta:       adjustedSeverity - originalSeverity,
		ProbabilityDelta:    adjustedProbability - originalProbability,
		Rationale:           rationale,
		RecordedAt:          time.Now().UTC(),
	}
	c.adjustments = append(c.adjustments, adj)

	if c.metrics != nil {
		c.metrics.RecordCalibrationAdjustment()
	}
	c.logger.Info("adjustment recorded",
		logging.Float64("severity_delta", adj.SeverityDelta),
		logging.Float64("probability_delta", adj.ProbabilityDelta),
		logging.Count(len(c.adjustments)),
	)
	return adj, nil
}

// Adjustments returns a copy of the log in recording order.
func (c *Calibrator) Adjustments() []Adjustment {
	out := make([]Adjustment, len(c.adjustments))
	copy(out, c.adjustments)
	return out
}

// Statistics aggregates the adjustment log per dimension.
type Statistics struct {
	Count                int     `json:"count"`
	MeanSeverityDelta    float64 `json:"mean_severity_delta"`
	MeanProbabilityDelta float64 `json:"mean_probability_delta"`
	SeverityTendency     string  `json:"severity_tendency"`
	ProbabilityTendency  string  `json:"probability_tendency"`
}

// Statistics reports mean deltas and the over/under-estimation tendency for
// each dimension. It fails when no adjustments have been recorded yet.
func (c *Calibrator) Statistics() (*Statistics, error) {
	if len(c.adjustments) == 0 {
		return nil, ErrNoAdjustments
	}

	var severitySum, probabilitySum float64
	for _, adj := range c.adjustments {
		severitySum += adj.SeverityDelta
		probabilitySum += adj.ProbabilityDelta
	}
	n := float64(len(c.adjustments))
	meanSeverity := severitySum / n
	meanProbability := probabilitySum / n

	return &Statistics{
		Count:                len(c.adjustments),
		MeanSeverityDelta:    meanSeverity,
		MeanProbabilityDelta: meanProbability,
		SeverityTendency:     tendency(meanSeverity),
		ProbabilityTendency:  tendency(meanProbability),
	}, nil
}

// tendency labels a mean delta: experts adjusting scores downward means the
// engine overestimates that dimension.
func tendency(meanDelta float64) string {
	switch {
	case meanDelta < -tendencyTolerance:
		return TendencyOverestimates
	case meanDelta > tendencyTolerance:
		return TendencyUnderestimates
	default:
		return TendencyCalibrated
	}
}

// WeightCorrection is directional weight-tuning guidance for one dimension.
// It is advisory output; nothing applies it automatically.
type WeightCorrection struct {
	Dimension string  `json:"dimension"`
	Direction string  `json:"direction"`
	MeanDelta float64 `json:"mean_delta"`
	Guidance  string  `json:"guidance"`
}

// SuggestWeightCorrections derives directional guidance from the adjustment
// log. It requires at least ten recorded adjustments; dimensions within the
// calibrated band produce no suggestion.
func (c *Calibrator) SuggestWeightCorrections() ([]WeightCorrection, error) {
	if len(c.adjustments) < minAdjustmentsForSuggestions {
		return nil, fmt.Errorf("%w: have %d adjustments, need %d",
			ErrInsufficientData, len(c.adjustments), minAdjustmentsForSuggestions)
	}

	stats, err := c.Statistics()
	if err != nil {
		return nil, err
	}

	var corrections []WeightCorrection
	if corr, ok := correction("severity", stats.MeanSeverityDelta); ok {
		corrections = append(corrections, corr)
	}
	if corr, ok := correction("probability", stats.MeanProbabilityDelta); ok {
		corrections = append(corrections, corr)
	}

	if c.metrics != nil {
		shift := math.Max(math.Abs(stats.MeanSeverityDelta), math.Abs(stats.MeanProbabilityDelta))
		c.metrics.SetCalibrationSuggestedShift(shift)
	}
	c.logger.Info("weight corrections suggested", logging.Count(len(corrections)))
	return corrections, nil
}

func correction(dimension string, meanDelta float64) (WeightCorrection, bool) {
	label := tendency(meanDelta)
	if label == TendencyCalibrated {
		return WeightCorrection{}, false
	}
	direction := "decrease"
	if label == TendencyUnderestimates {
		direction = "increase"
	}
	return WeightCorrection{
		Dimension: dimension,
		Direction: direction,
		MeanDelta: meanDelta,
		Guidance: fmt.Sprintf("experts shift %s by %+.3f on average; %s the weights on its dominant factors",
			dimension, meanDelta, direction),
	}, true
}
