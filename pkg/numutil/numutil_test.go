package numutil

import (
	"math"
	"testing"
)

func TestClamp(t *testing.T) {
	if got := Clamp(1.5, 0.0, 1.0); got != 1.0 {
		t.Errorf("Clamp(1.5, 0, 1) = %v, want 1.0", got)
	}
	if got := Clamp(-0.3, 0.0, 1.0); got != 0.0 {
		t.Errorf("Clamp(-0.3, 0, 1) = %v, want 0.0", got)
	}
	if got := Clamp(0.42, 0.0, 1.0); got != 0.42 {
		t.Errorf("Clamp(0.42, 0, 1) = %v, want 0.42", got)
	}
	// gdp_impact style range
	if got := Clamp(-1.7, -1.0, 1.0); got != -1.0 {
		t.Errorf("Clamp(-1.7, -1, 1) = %v, want -1.0", got)
	}
}

func TestMean_Variance(t *testing.T) {
	data := []float64{2, 4, 4, 4, 5, 5, 7, 9}

	if got := Mean(data); got != 5.0 {
		t.Errorf("Mean = %v, want 5.0", got)
	}

	// Sample variance of the canonical dataset is 32/7
	want := 32.0 / 7.0
	if got := Variance(data); math.Abs(got-want) > 1e-9 {
		t.Errorf("Variance = %v, want %v", got, want)
	}

	if got := PopulationVariance(data); math.Abs(got-4.0) > 1e-9 {
		t.Errorf("PopulationVariance = %v, want 4.0", got)
	}
}

func TestMean_Empty(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Mean(nil) = %v, want 0", got)
	}
	if got := Variance([]float64{1.0}); got != 0 {
		t.Errorf("Variance(single) = %v, want 0", got)
	}
}

func TestPercentile(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	if got := Percentile(data, 0); got != 1 {
		t.Errorf("P0 = %v, want 1", got)
	}
	if got := Percentile(data, 100); got != 10 {
		t.Errorf("P100 = %v, want 10", got)
	}
	if got := Percentile(data, 50); got != 6 {
		t.Errorf("P50 = %v, want 6", got)
	}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
}

func TestDiff(t *testing.T) {
	got := Diff([]float64{1, 3, 6, 10})
	want := []float64{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Diff length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Diff[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if Diff([]float64{1}) != nil {
		t.Error("Diff of single value should be nil")
	}
}

func TestNormalCDF(t *testing.T) {
	if got := NormalCDF(0); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("NormalCDF(0) = %v, want 0.5", got)
	}
	// ~97.7% of mass lies below +2 sigma
	if got := NormalCDF(2.0); math.Abs(got-0.9772) > 1e-3 {
		t.Errorf("NormalCDF(2) = %v, want ~0.9772", got)
	}
}

func TestZScore(t *testing.T) {
	if got := ZScore(0.975); math.Abs(got-1.96) > 0.01 {
		t.Errorf("ZScore(0.975) = %v, want ~1.96", got)
	}
	if got := ZScore(0.5); math.Abs(got) > 1e-12 {
		t.Errorf("ZScore(0.5) = %v, want 0", got)
	}
}
