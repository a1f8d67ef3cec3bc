package trajectory

import (
	"errors"
	"math"
	"testing"
)

func projectedTrajectory(t *testing.T, e *Engine) *Trajectory {
	t.Helper()
	traj, err := e.Project(BreachCondition{NodeID: "A"}, twoNodeGraph(t), []float64{2.0}, GranularityQuarterly, nil)
	if err != nil {
		t.Fatalf("project failed: %v", err)
	}
	return traj
}

func TestGenerateBranches(t *testing.T) {
	e := seededEngine(t)
	traj := projectedTrajectory(t, e)

	actions := []AlternativePathway{
		{Action: "mitigate", ImpactModifier: 0.5, Probability: 0.6, CostTier: "high", Timeframe: "immediate"},
		{Action: "no action", ImpactModifier: 1.0, Probability: 0.8, CostTier: "none", Timeframe: "none"},
	}

	branches, err := e.GenerateBranches(traj, 0, actions)
	if err != nil {
		t.Fatalf("generate branches failed: %v", err)
	}
	if len(branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(branches))
	}
	if len(traj.Branches) != 2 {
		t.Errorf("trajectory should carry the appended branches, got %d", len(traj.Branches))
	}

	mitigation, noAction := branches[0], branches[1]
	if mitigation.ID == "" || mitigation.ID == noAction.ID {
		t.Error("branches need distinct ids")
	}
	if mitigation.ForkIndex != 0 || mitigation.Probability != 0.6 {
		t.Errorf("mitigation branch = %+v", mitigation)
	}
	if len(mitigation.Points) != len(traj.Baseline) {
		t.Fatalf("branch has %d points, want %d", len(mitigation.Points), len(traj.Baseline))
	}

	// Shared prefix by value
	if mitigation.Points[0].State != traj.Baseline[0].State {
		t.Error("branch prefix should equal the baseline prefix")
	}

	// Halved impact keeps the primary metric off its floor where the
	// baseline bottoms out
	want := 0.25 - 0.28*math.Exp(-0.025)*multPrimary
	if got := mitigation.Points[1].State.PrimaryMetric; math.Abs(got-want) > 1e-9 {
		t.Errorf("mitigated primary = %v, want %v", got, want)
	}
	if base := traj.Baseline[1].State.PrimaryMetric; base != 0 {
		t.Fatalf("baseline primary = %v, expected the floor", base)
	}

	// Modifier 1.0 reproduces the baseline path exactly
	for i := range noAction.Points {
		if noAction.Points[i].State != traj.Baseline[i].State {
			t.Errorf("no-action branch diverged at point %d", i)
		}
	}

	// Branch suffix carries its own bounds
	for i := 1; i < len(mitigation.Points); i++ {
		b := mitigation.Points[i].Bounds
		if b.Lower > b.Upper {
			t.Errorf("branch point %d bounds out of order: %+v", i, b)
		}
	}
}

func TestGenerateBranches_ForkAtLastPoint(t *testing.T) {
	e := seededEngine(t)
	traj := projectedTrajectory(t, e)

	branches, err := e.GenerateBranches(traj, len(traj.Baseline)-1, []AlternativePathway{
		{Action: "late mitigation", ImpactModifier: 0.5, Probability: 0.5},
	})
	if err != nil {
		t.Fatalf("generate branches failed: %v", err)
	}
	if got := len(branches[0].Points); got != len(traj.Baseline) {
		t.Errorf("late fork branch has %d points, want the full baseline %d", got, len(traj.Baseline))
	}
}

func TestGenerateBranches_Validation(t *testing.T) {
	e := seededEngine(t)
	traj := projectedTrajectory(t, e)
	ok := []AlternativePathway{{Action: "x", ImpactModifier: 0.5, Probability: 0.5}}

	if _, err := e.GenerateBranches(nil, 0, ok); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("nil trajectory error = %v", err)
	}
	if _, err := e.GenerateBranches(traj, -1, ok); !errors.Is(err, ErrNoForkPoint) {
		t.Errorf("negative fork error = %v", err)
	}
	if _, err := e.GenerateBranches(traj, len(traj.Baseline), ok); !errors.Is(err, ErrNoForkPoint) {
		t.Errorf("out-of-range fork error = %v", err)
	}
	if _, err := e.GenerateBranches(traj, 0, nil); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("no actions error = %v", err)
	}
	if _, err := e.GenerateBranches(traj, 0, []AlternativePathway{{Action: "x", ImpactModifier: -1, Probability: 0.5}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("negative modifier error = %v", err)
	}
	if _, err := e.GenerateBranches(traj, 0, []AlternativePathway{{Action: "x", ImpactModifier: 0.5, Probability: 1.5}}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("bad probability error = %v", err)
	}

	stale := &Trajectory{
		Baseline: make([]Point, 3),
		Metadata: Metadata{WaveImpacts: make([]float64, 1)},
	}
	if _, err := e.GenerateBranches(stale, 0, ok); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("schedule mismatch error = %v", err)
	}
}
