package stats

import (
	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/mjibson/go-dsp/fft"
)

// AutoCorrelation computes the linear (non-circular) autocorrelation of a
// signal up to maxLag via the Wiener-Khinchin theorem: zero-pad to at
// least twice the length, take |FFT|^2, inverse transform.
//
// References:
// - Rabiner, L., Schafer, R. (1978). "Digital Processing of Speech Signals"
type AutoCorrelation struct {
	maxLag int
}

// NewAutoCorrelation creates an autocorrelation calculator. maxLag <= 0
// means all lags.
func NewAutoCorrelation(maxLag int) *AutoCorrelation {
	return &AutoCorrelation{maxLag: maxLag}
}

// Compute returns r[0..maxLag] (unnormalized).
func (ac *AutoCorrelation) Compute(signal []float64) []float64 {
	n := len(signal)
	if n == 0 {
		return []float64{}
	}

	maxLag := ac.maxLag
	if maxLag <= 0 || maxLag >= n {
		maxLag = n - 1
	}

	size := common.NextPowerOfTwo(2 * n)
	buf := make([]complex128, size)
	for i, v := range signal {
		buf[i] = complex(v, 0)
	}

	spectrum := fft.FFT(buf)
	for i, c := range spectrum {
		spectrum[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}

	r := fft.IFFT(spectrum)

	out := make([]float64, maxLag+1)
	for lag := range out {
		out[lag] = real(r[lag])
	}
	return out
}

// ComputeNormalized returns the autocorrelation divided by r[0], so lag 0
// is 1. A zero-energy signal returns all zeros.
func (ac *AutoCorrelation) ComputeNormalized(signal []float64) []float64 {
	r := ac.Compute(signal)
	if len(r) == 0 || r[0] <= 0 {
		return make([]float64, len(r))
	}

	r0 := r[0]
	for i := range r {
		r[i] /= r0
	}
	return r
}
