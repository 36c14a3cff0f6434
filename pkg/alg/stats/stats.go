// Package stats provides core statistical functions for numerical analysis.
// All standard deviation calculations use population stddev (÷n, not ÷(n−1)).
package stats

import (
	"cmp"
	"math"
)

// Mean returns the arithmetic mean of values.
// Returns 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64

	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// MeanStdDev returns the arithmetic mean and population standard deviation.
// Returns (0, 0) for an empty slice.
func MeanStdDev(values []float64) (mean, stddev float64) {
	count := len(values)
	if count == 0 {
		return 0, 0
	}

	mean = Mean(values)

	var sumSq float64

	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}

	return mean, math.Sqrt(sumSq / float64(count))
}

// Entropy returns the Shannon entropy in bits of the distribution described
// by counts. Zero counts contribute nothing. Returns 0 when all counts are zero.
func Entropy(counts []int) float64 {
	return EntropyOver(counts, Sum(counts))
}

// EntropyOver is Entropy with each probability taken as c/total rather than
// c/Sum(counts). Mass outside counts lowers the result. Returns 0 when total <= 0.
func EntropyOver(counts []int, total int) float64 {
	if total <= 0 {
		return 0
	}

	var h float64

	for _, c := range counts {
		if c <= 0 {
			continue
		}

		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}

	return h
}

// Clamp restricts val to the range [lo, hi].
func Clamp[T cmp.Ordered](val, lo, hi T) T {
	return max(lo, min(val, hi))
}

// Sum returns the sum of all elements in values.
// Returns the zero value of T for an empty slice.
func Sum[T cmp.Ordered](values []T) T {
	var total T

	for _, v := range values {
		total += v
	}

	return total
}

// Float64s converts integer samples to float64 for use with Mean and MeanStdDev.
func Float64s(values []int) []float64 {
	out := make([]float64, len(values))

	for i, v := range values {
		out[i] = float64(v)
	}

	return out
}
