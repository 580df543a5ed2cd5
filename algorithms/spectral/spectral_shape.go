package spectral

import "gonum.org/v1/gonum/floats"

// DefaultRolloffThreshold is the fraction of energy below the rolloff point
const DefaultRolloffThreshold = 0.85

// Centroid returns the magnitude-weighted mean frequency of a one-sided
// magnitude spectrum, 0 for an empty or silent one.
func Centroid(spectrum []float64, sampleRate int) float64 {
	if len(spectrum) < 2 {
		return 0
	}

	total := floats.Sum(spectrum)
	if total == 0 {
		return 0
	}
	return floats.Dot(BinFrequencies((len(spectrum)-1)*2, sampleRate), spectrum) / total
}

// Rolloff returns the lowest bin frequency below which fraction of the
// spectral energy (squared magnitude) lies.
func Rolloff(spectrum []float64, sampleRate int, fraction float64) float64 {
	if len(spectrum) < 2 {
		return 0
	}

	energy := make([]float64, len(spectrum))
	floats.MulTo(energy, spectrum, spectrum)
	floats.CumSum(energy, energy)

	total := energy[len(energy)-1]
	if total == 0 {
		return 0
	}

	freqs := BinFrequencies((len(spectrum)-1)*2, sampleRate)
	for i, e := range energy {
		if e >= fraction*total {
			return freqs[i]
		}
	}
	return freqs[len(freqs)-1]
}
