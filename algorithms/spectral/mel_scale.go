package spectral

import (
	"math"
)

// MelScale provides mel frequency conversion and filter banks
type MelScale struct{}

// NewMelScale creates a new mel scale converter
func NewMelScale() *MelScale {
	return &MelScale{}
}

// HzToMel converts frequency in Hz to mel scale
func (ms *MelScale) HzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHz converts mel scale to frequency in Hz
func (ms *MelScale) MelToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// CreateMelFilterBank creates a bank of triangular filters evenly spaced
// on the mel scale between lowFreq and highFreq. Weights are evaluated at
// the exact bin frequencies and each filter is area normalized, so narrow
// low-frequency filters are not lost to bin rounding.
func (ms *MelScale) CreateMelFilterBank(numFilters int, fftSize int, sampleRate int, lowFreq, highFreq float64) [][]float64 {
	if numFilters <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil
	}

	nyquist := float64(sampleRate) / 2
	if highFreq <= 0 || highFreq > nyquist {
		highFreq = nyquist
	}

	lowMel := ms.HzToMel(lowFreq)
	highMel := ms.HzToMel(highFreq)

	hzPoints := make([]float64, numFilters+2)
	melStep := (highMel - lowMel) / float64(numFilters+1)
	for i := range hzPoints {
		hzPoints[i] = ms.MelToHz(lowMel + float64(i)*melStep)
	}

	binFreqs := BinFrequencies(fftSize, sampleRate)

	filterBank := make([][]float64, numFilters)
	for m := range filterBank {
		left, center, right := hzPoints[m], hzPoints[m+1], hzPoints[m+2]
		norm := 2.0 / (right - left)

		filter := make([]float64, len(binFreqs))
		for k, f := range binFreqs {
			rising := (f - left) / (center - left)
			falling := (right - f) / (right - center)
			w := math.Min(rising, falling)
			if w > 0 {
				filter[k] = w * norm
			}
		}
		filterBank[m] = filter
	}

	return filterBank
}

// ApplyFilterBank applies mel filter bank to power spectrum
func (ms *MelScale) ApplyFilterBank(powerSpectrum []float64, filterBank [][]float64) []float64 {
	if len(filterBank) == 0 || len(powerSpectrum) == 0 {
		return []float64{}
	}

	melSpectrum := make([]float64, len(filterBank))

	for i, filter := range filterBank {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(powerSpectrum); j++ {
			sum += powerSpectrum[j] * filter[j]
		}
		melSpectrum[i] = sum
	}

	return melSpectrum
}

// PowerMelSpectrogram converts a magnitude spectrogram (time x bins) into a
// mel power spectrogram (time x filters).
func (ms *MelScale) PowerMelSpectrogram(spectrogram [][]float64, filterBank [][]float64) [][]float64 {
	melSpectrogram := make([][]float64, len(spectrogram))
	power := make([]float64, 0)

	for t, frame := range spectrogram {
		power = power[:0]
		for _, mag := range frame {
			power = append(power, mag*mag)
		}
		melSpectrogram[t] = ms.ApplyFilterBank(power, filterBank)
	}

	return melSpectrogram
}
