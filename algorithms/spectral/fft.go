package spectral

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT computes forward transforms of real frames. Any length is accepted;
// go-dsp switches to Bluestein when the size is not a power of two.
type FFT struct{}

func NewFFT() *FFT { return &FFT{} }

// Compute returns the full complex spectrum of x.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// Magnitudes returns |X[k]| for the first n bins.
func Magnitudes(spectrum []complex128, n int) []float64 {
	n = min(n, len(spectrum))
	mags := make([]float64, n)
	for i := range n {
		mags[i] = cmplx.Abs(spectrum[i])
	}
	return mags
}

// BinFrequencies returns the center frequency of each one-sided bin for an
// FFT of size fftSize, k*sr/fftSize.
func BinFrequencies(fftSize, sampleRate int) []float64 {
	n := fftSize/2 + 1
	freqs := make([]float64, n)
	for k := range n {
		freqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}
	return freqs
}
