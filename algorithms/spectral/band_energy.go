package spectral

import "math"

// BandEnergy measures the magnitude RMS of one frequency range across a
// whole spectrogram. Bins whose center frequency lies in [minHz, maxHz]
// (inclusive on both ends) contribute.
type BandEnergy struct {
	MinHz float64
	MaxHz float64
}

// BandStats is the result of a band measurement
type BandStats struct {
	RMS     float64
	NumBins int
}

// Compute returns the RMS over every selected bin of every frame. A band
// with no bins in range reports zero RMS and NumBins 0.
func (b BandEnergy) Compute(spectrogram [][]float64, freqs []float64) BandStats {
	selected := make([]int, 0)
	for k, f := range freqs {
		if f >= b.MinHz && f <= b.MaxHz {
			selected = append(selected, k)
		}
	}

	if len(selected) == 0 || len(spectrogram) == 0 {
		return BandStats{NumBins: len(selected)}
	}

	sumSquares := 0.0
	count := 0
	for _, frame := range spectrogram {
		for _, k := range selected {
			if k < len(frame) {
				sumSquares += frame[k] * frame[k]
				count++
			}
		}
	}

	if count == 0 {
		return BandStats{NumBins: len(selected)}
	}

	return BandStats{
		RMS:     math.Sqrt(sumSquares / float64(count)),
		NumBins: len(selected),
	}
}
