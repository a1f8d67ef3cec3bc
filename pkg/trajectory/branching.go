package trajectory

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
)

// GenerateBranches forks one alternative future per action from the given
// baseline index. Each branch shares the baseline prefix by value, then
// re-projects the remainder with the action's impact modifier scaling every
// subsequent cascade impact. Branch bounds use a reduced Monte Carlo sample
// count. The branches are appended to the trajectory and returned.
func (e *Engine) GenerateBranches(traj *Trajectory, forkIndex int, actions []AlternativePathway) ([]Branch, error) {
	if traj == nil || len(traj.Baseline) == 0 {
		return nil, fmt.Errorf("%w: empty trajectory", ErrInvalidInput)
	}
	if forkIndex < 0 || forkIndex >= len(traj.Baseline) {
		return nil, fmt.Errorf("%w: index %d with %d baseline points", ErrNoForkPoint, forkIndex, len(traj.Baseline))
	}
	if len(actions) == 0 {
		return nil, fmt.Errorf("%w: no alternative actions", ErrInvalidInput)
	}
	if len(traj.Metadata.WaveImpacts) != len(traj.Baseline) {
		return nil, fmt.Errorf("%w: impact schedule does not match baseline", ErrInvalidInput)
	}
	for _, a := range actions {
		if a.ImpactModifier < 0 {
			return nil, fmt.Errorf("%w: impact modifier %.3f must be non-negative", ErrInvalidInput, a.ImpactModifier)
		}
		if a.Probability < 0 || a.Probability > 1 {
			return nil, fmt.Errorf("%w: probability %.3f outside [0,1]", ErrInvalidInput, a.Probability)
		}
	}

	branches := make([]Branch, 0, len(actions))
	for _, action := range actions {
		branch, err := e.projectBranch(traj, forkIndex, action)
		if err != nil {
			return nil, err
		}
		branches = append(branches, branch)
	}

	traj.Branches = append(traj.Branches, branches...)
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordBranches(len(branches))
	}
	e.logger.Info("branches generated",
		logging.TrajectoryID(traj.ID),
		logging.Count(len(branches)),
	)
	return branches, nil
}

func (e *Engine) projectBranch(traj *Trajectory, forkIndex int, action AlternativePathway) (Branch, error) {
	n := len(traj.Baseline)
	points := make([]Point, 0, n)
	points = append(points, traj.Baseline[:forkIndex+1]...)

	scaled := make([]float64, 0, n-forkIndex-1)
	state := traj.Baseline[forkIndex].State
	for i := forkIndex + 1; i < n; i++ {
		t := traj.Baseline[i].Timestamp
		impact := traj.Metadata.WaveImpacts[i] * action.ImpactModifier
		if impact > 0 {
			state = state.applyImpact(impact, decayFactor(t))
		}
		scaled = append(scaled, impact)
		points = append(points, Point{
			Timestamp:  t,
			State:      state,
			WaveNumber: traj.Baseline[i].WaveNumber,
		})
	}

	if suffix := points[forkIndex+1:]; len(suffix) > 0 {
		initial := traj.Baseline[forkIndex].State.PrimaryMetric
		if err := e.boundPoints(suffix, initial, scaled, e.opts.BranchMonteCarloSamples, "branch"); err != nil {
			return Branch{}, err
		}
	}

	return Branch{
		ID:          uuid.NewString(),
		ForkIndex:   forkIndex,
		Action:      action.Action,
		Probability: action.Probability,
		Points:      points,
	}, nil
}
