package common

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Statistical helpers shared by the analyzers, backed by gonum.

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the population variance. Tempo confidence is
// defined on the population form, so the gonum sample variance is rescaled.
func Variance(data []float64) float64 {
	n := len(data)
	if n < 2 {
		return 0.0
	}
	return stat.Variance(data, nil) * float64(n-1) / float64(n)
}

// Percentile calculates the p-th percentile (p between 0 and 1) by linear
// interpolation between closest ranks, (n-1)*p. gonum's LinInterp uses the
// n*p definition, which biases LRA low on short inputs.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 || p < 0 || p > 1 {
		return 0.0
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := min(lo+1, len(sorted)-1)
	frac := pos - float64(lo)

	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// Median returns the middle value, averaging the two central values for
// even lengths.
func Median(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0.0
	}

	sorted := slices.Clone(data)
	slices.Sort(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return 0.5 * (sorted[n/2-1] + sorted[n/2])
}

// MaxAbs returns the largest absolute value in data.
func MaxAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	return peak
}

// PowerToDB converts power values to decibels relative to ref, flooring
// at amin and limiting the dynamic range to topDB below the maximum when
// topDB > 0.
func PowerToDB(power []float64, ref, amin, topDB float64) []float64 {
	out := make([]float64, len(power))
	refDB := 10 * math.Log10(math.Max(amin, ref))
	for i, p := range power {
		out[i] = 10*math.Log10(math.Max(amin, p)) - refDB
	}

	if topDB > 0 && len(out) > 0 {
		floor := floats.Max(out) - topDB
		for i := range out {
			if out[i] < floor {
				out[i] = floor
			}
		}
	}
	return out
}

// ParabolicPeak refines the position of a local maximum at index i using
// the two neighbors. It returns the fractional offset in [-0.5, 0.5].
func ParabolicPeak(data []float64, i int) float64 {
	if i <= 0 || i >= len(data)-1 {
		return 0
	}

	a, b, c := data[i-1], data[i], data[i+1]
	denom := a - 2*b + c
	if denom == 0 {
		return 0
	}

	offset := 0.5 * (a - c) / denom
	return Clamp(offset, -0.5, 0.5)
}

// ArgMax returns the index of the largest value, or -1 for empty input.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
