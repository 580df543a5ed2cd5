package spectral

import (
	"math"

	"github.com/RyanBlaney/mixref/algorithms/common"
)

// SpectralFlux measures frame-to-frame spectral increase. Per-bin rises
// are half-wave rectified and reduced with the median, which keeps a few
// dominant bands from swamping the envelope.
type SpectralFlux struct {
	lag int
}

// NewSpectralFlux creates a flux calculator comparing each frame with the
// one lag frames before it.
func NewSpectralFlux(lag int) *SpectralFlux {
	return &SpectralFlux{lag: max(1, lag)}
}

// Compute calculates the rectified flux of a spectrogram (time x bins).
// The result has one value per frame; the first lag frames are zero so
// the envelope stays aligned with the spectrogram.
func (sf *SpectralFlux) Compute(spectrogram [][]float64) []float64 {
	flux := make([]float64, len(spectrogram))
	if len(spectrogram) <= sf.lag {
		return flux
	}

	var diffs []float64
	for t := sf.lag; t < len(spectrogram); t++ {
		cur, prev := spectrogram[t], spectrogram[t-sf.lag]

		diffs = diffs[:0]
		for f := 0; f < len(cur) && f < len(prev); f++ {
			diffs = append(diffs, math.Max(0, cur[f]-prev[f]))
		}
		if len(diffs) > 0 {
			flux[t] = common.Median(diffs)
		}
	}

	return flux
}
