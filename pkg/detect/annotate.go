package detect

import (
	"fmt"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/metrics"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

// AnnotatorOptions bundles both detector configurations with the ambient
// logging and metrics hooks.
type AnnotatorOptions struct {
	Decision   DecisionOptions
	Inflection InflectionOptions
	Logger     logging.Logger
	Metrics    *metrics.Registry
}

// Annotator runs both detectors over a trajectory baseline and writes the
// results back onto the trajectory.
type Annotator struct {
	decisions   *DecisionPointDetector
	inflections *InflectionPointDetector
	logger      logging.Logger
	metrics     *metrics.Registry
}

// NewAnnotator validates both detector configurations and creates an
// annotator. Zero-valued options take the package defaults.
func NewAnnotator(opts AnnotatorOptions) (*Annotator, error) {
	decisions, err := NewDecisionPointDetector(opts.Decision)
	if err != nil {
		return nil, err
	}
	inflections, err := NewInflectionPointDetector(opts.Inflection)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Annotator{
		decisions:   decisions,
		inflections: inflections,
		logger:      logger.With(logging.Component("detect")),
		metrics:     opts.Metrics,
	}, nil
}

// Annotate detects decision and inflection points on the baseline, stores
// them on the trajectory, and back-references each one from the point it
// was found at. Existing annotations are replaced.
func (a *Annotator) Annotate(traj *trajectory.Trajectory) error {
	if traj == nil {
		return fmt.Errorf("%w: trajectory is nil", ErrInvalidInput)
	}

	for i := range traj.Baseline {
		traj.Baseline[i].DecisionRef = nil
		traj.Baseline[i].InflectionRef = nil
	}

	traj.DecisionPoints = a.decisions.Detect(traj.Baseline)
	traj.InflectionPoints = a.inflections.Detect(traj.Baseline)

	for ordinal := range traj.DecisionPoints {
		ref := ordinal
		traj.Baseline[traj.DecisionPoints[ordinal].Index].DecisionRef = &ref
	}
	for ordinal := range traj.InflectionPoints {
		idx := traj.InflectionPoints[ordinal].Index
		if traj.Baseline[idx].InflectionRef != nil {
			continue
		}
		ref := ordinal
		traj.Baseline[idx].InflectionRef = &ref
	}

	if a.metrics != nil {
		a.metrics.RecordDetection(len(traj.DecisionPoints), len(traj.InflectionPoints))
	}
	a.logger.Info("trajectory annotated",
		logging.TrajectoryID(traj.ID),
		logging.Int("decision_points", len(traj.DecisionPoints)),
		logging.Int("inflection_points", len(traj.InflectionPoints)),
	)
	return nil
}
