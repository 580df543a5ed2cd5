// Package chroma reduces audio to pitch class profiles.
package chroma

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// PitchClasses is the size of a chroma vector.
const PitchClasses = 12

// Fold sums CQT bins into pitch classes. Bin k belongs to semitone
// round(k / binsPerSemitone).
func Fold(bins []float64, binsPerOctave int) []float64 {
	chroma := make([]float64, PitchClasses)
	perSemitone := float64(binsPerOctave) / PitchClasses
	for k, v := range bins {
		pc := int(math.Round(float64(k)/perSemitone)) % PitchClasses
		chroma[pc] += v
	}
	return chroma
}

// NormalizeMax scales v in place so its largest value is 1. All-zero
// vectors are left alone.
func NormalizeMax(v []float64) []float64 {
	if len(v) == 0 {
		return v
	}
	if m := floats.Max(v); m > 0 {
		floats.Scale(1/m, v)
	}
	return v
}

// NormalizeSum returns v / (sum(v) + 1e-6).
func NormalizeSum(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(1/(floats.Sum(v)+1e-6), out)
	return out
}

// Average returns the per-pitch-class mean over frames.
func Average(frames [][]float64) []float64 {
	avg := make([]float64, PitchClasses)
	if len(frames) == 0 {
		return avg
	}
	for _, f := range frames {
		floats.Add(avg, f)
	}
	floats.Scale(1/float64(len(frames)), avg)
	return avg
}

// Profile is the time-averaged, L1-normalized chromagram.
func Profile(frames [][]float64) []float64 {
	return NormalizeSum(Average(frames))
}
