package detect

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-cascade/pkg/logging"
	"github.com/dd0wney/cluso-cascade/pkg/metrics"
	"github.com/dd0wney/cluso-cascade/pkg/trajectory"
)

func newTestAnnotator(t *testing.T) *Annotator {
	t.Helper()
	annotator, err := NewAnnotator(AnnotatorOptions{
		Logger:  logging.NewNopLogger(),
		Metrics: metrics.NewRegistry(),
	})
	if err != nil {
		t.Fatalf("NewAnnotator: %v", err)
	}
	return annotator
}

func TestAnnotate(t *testing.T) {
	annotator := newTestAnnotator(t)
	traj := &trajectory.Trajectory{
		ID:       "traj-annotate",
		Baseline: seriesPoints(volatileSeries(), 0.8),
	}

	if err := annotator.Annotate(traj); err != nil {
		t.Fatalf("Annotate: %v", err)
	}

	if len(traj.DecisionPoints) != 1 {
		t.Fatalf("expected 1 decision point, got %d", len(traj.DecisionPoints))
	}
	// Three trend reversals plus five crossings of the 0.5 primary
	// threshold.
	if len(traj.InflectionPoints) != 8 {
		t.Fatalf("expected 8 inflection points, got %d", len(traj.InflectionPoints))
	}

	if ref := traj.Baseline[0].DecisionRef; ref == nil || *ref != 0 {
		t.Fatalf("expected decision ref 0 at point 0, got %v", ref)
	}
	if ref := traj.Baseline[1].InflectionRef; ref == nil || *ref != 0 {
		t.Fatalf("expected inflection ref 0 at point 1, got %v", ref)
	}
	// Point 2 carries both a reversal and a crossing; the first in
	// timestamp order keeps the back-reference.
	if ref := traj.Baseline[2].InflectionRef; ref == nil || *ref != 1 {
		t.Fatalf("expected inflection ref 1 at point 2, got %v", ref)
	}
	if traj.InflectionPoints[1].Type != trajectory.InflectionReversal {
		t.Fatalf("expected reversal first at point 2, got %s", traj.InflectionPoints[1].Type)
	}
}

func TestAnnotate_Reannotation(t *testing.T) {
	annotator := newTestAnnotator(t)
	traj := &trajectory.Trajectory{
		ID:       "traj-reannotate",
		Baseline: seriesPoints(volatileSeries(), 0.8),
	}

	if err := annotator.Annotate(traj); err != nil {
		t.Fatalf("first Annotate: %v", err)
	}
	decisions, inflections := len(traj.DecisionPoints), len(traj.InflectionPoints)

	if err := annotator.Annotate(traj); err != nil {
		t.Fatalf("second Annotate: %v", err)
	}
	if len(traj.DecisionPoints) != decisions || len(traj.InflectionPoints) != inflections {
		t.Fatalf("re-annotation changed counts: %d/%d then %d/%d",
			decisions, inflections, len(traj.DecisionPoints), len(traj.InflectionPoints))
	}
	if ref := traj.Baseline[2].InflectionRef; ref == nil || *ref != 1 {
		t.Fatalf("re-annotation corrupted refs: %v", ref)
	}
}

func TestAnnotate_NilTrajectory(t *testing.T) {
	annotator := newTestAnnotator(t)
	if err := annotator.Annotate(nil); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAnnotate_EmptyBaseline(t *testing.T) {
	annotator := newTestAnnotator(t)
	traj := &trajectory.Trajectory{ID: "traj-empty"}
	if err := annotator.Annotate(traj); err != nil {
		t.Fatalf("Annotate: %v", err)
	}
	if len(traj.DecisionPoints) != 0 || len(traj.InflectionPoints) != 0 {
		t.Fatal("empty baseline must yield no annotations")
	}
}
