package numutil

import (
	"math"
	"sort"

	"golang.org/x/exp/constraints"
)

// Clamp restricts v to the inclusive range [lo, hi]
func Clamp[T constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean computes the arithmetic mean of data.
// Returns 0 for empty input.
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Variance computes the sample variance of data (n-1 denominator).
// Returns 0 for fewer than two values.
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(data)-1)
}

// PopulationVariance computes the variance with an n denominator.
// Used where the data is the entire population of interest (e.g. a
// fixed lookahead window), not a sample from a larger one.
func PopulationVariance(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	m := Mean(data)
	sum := 0.0
	for _, v := range data {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(data))
}

// StdDev computes the sample standard deviation of data
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Percentile returns the p-th percentile (0-100) of data using the
// nearest-rank method on a sorted copy. Returns 0 for empty input.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	idx := int(p / 100 * float64(len(sorted)))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// Diff returns the consecutive first differences of data
// (data[i+1] - data[i]). Returns nil for fewer than two values.
func Diff(data []float64) []float64 {
	if len(data) < 2 {
		return nil
	}
	out := make([]float64, len(data)-1)
	for i := 1; i < len(data); i++ {
		out[i-1] = data[i] - data[i-1]
	}
	return out
}

// NormalCDF computes the standard normal cumulative distribution at x
func NormalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// ZScore returns the standard normal quantile for probability p.
// For example, ZScore(0.975) is approximately 1.96.
func ZScore(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
