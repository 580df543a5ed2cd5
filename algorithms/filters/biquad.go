package filters

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Biquad is a second-order IIR section designed with the formulas from
// Robert Bristow-Johnson's "Cookbook formulae for audio EQ biquad filter
// coefficients".
// Reference: https://webaudio.github.io/Audio-EQ-Cookbook/audio-eq-cookbook.html
//
// Coefficients are normalized by a0. State is kept in transposed direct
// form II, which behaves well for the low cutoff of the K-weighting high
// pass.
type Biquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	z1, z2 float64
}

// NewBiquad creates a section from raw coefficients, normalizing by a0.
func NewBiquad(b0, b1, b2, a0, a1, a2 float64) (*Biquad, error) {
	if a0 == 0 {
		return nil, fmt.Errorf("biquad a0 must be non-zero")
	}
	return &Biquad{
		b0: b0 / a0,
		b1: b1 / a0,
		b2: b2 / a0,
		a1: a1 / a0,
		a2: a2 / a0,
	}, nil
}

func cookbookParams(sampleRate int, freq, q float64) (cosW0, alpha float64, err error) {
	if sampleRate <= 0 {
		return 0, 0, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if freq <= 0 || q <= 0 {
		return 0, 0, fmt.Errorf("frequency and Q must be positive")
	}

	w0 := 2.0 * math.Pi * freq / float64(sampleRate)
	// Prevent numerical issues at Nyquist
	if w0 >= math.Pi {
		w0 = math.Pi * 0.99
	}

	return math.Cos(w0), math.Sin(w0) / (2.0 * q), nil
}

// NewHighShelf designs a high shelf with gainDB above freq.
func NewHighShelf(sampleRate int, freq, gainDB, q float64) (*Biquad, error) {
	cosW0, alpha, err := cookbookParams(sampleRate, freq, q)
	if err != nil {
		return nil, err
	}

	a := math.Pow(10, gainDB/40)
	sqrtA := math.Sqrt(a)

	return NewBiquad(
		a*((a+1)+(a-1)*cosW0+2*sqrtA*alpha),
		-2*a*((a-1)+(a+1)*cosW0),
		a*((a+1)+(a-1)*cosW0-2*sqrtA*alpha),
		(a+1)-(a-1)*cosW0+2*sqrtA*alpha,
		2*((a-1)-(a+1)*cosW0),
		(a+1)-(a-1)*cosW0-2*sqrtA*alpha,
	)
}

// NewHighPass designs a second-order high pass at freq.
func NewHighPass(sampleRate int, freq, q float64) (*Biquad, error) {
	cosW0, alpha, err := cookbookParams(sampleRate, freq, q)
	if err != nil {
		return nil, err
	}

	return NewBiquad(
		(1+cosW0)/2,
		-(1 + cosW0),
		(1+cosW0)/2,
		1+alpha,
		-2*cosW0,
		1-alpha,
	)
}

// Process filters a single sample.
func (b *Biquad) Process(x float64) float64 {
	y := b.b0*x + b.z1
	b.z1 = b.b1*x - b.a1*y + b.z2
	b.z2 = b.b2*x - b.a2*y
	return y
}

// ProcessBuffer filters input into a new slice.
func (b *Biquad) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = b.Process(sample)
	}
	return output
}

// Reset clears the filter state.
func (b *Biquad) Reset() {
	b.z1, b.z2 = 0, 0
}

// Clone returns a section with the same coefficients and cleared state.
func (b *Biquad) Clone() *Biquad {
	c := *b
	c.Reset()
	return &c
}

// FrequencyResponse returns the complex response at frequency.
//
// H(e^jw) = (b0 + b1*e^-jw + b2*e^-j2w) / (1 + a1*e^-jw + a2*e^-j2w)
func (b *Biquad) FrequencyResponse(frequency float64, sampleRate int) complex128 {
	w := 2.0 * math.Pi * frequency / float64(sampleRate)
	z1 := cmplx.Exp(complex(0, -w))
	z2 := z1 * z1

	num := complex(b.b0, 0) + complex(b.b1, 0)*z1 + complex(b.b2, 0)*z2
	den := 1 + complex(b.a1, 0)*z1 + complex(b.a2, 0)*z2
	return num / den
}

// MagnitudeDB returns the gain in dB at frequency.
func (b *Biquad) MagnitudeDB(frequency float64, sampleRate int) float64 {
	return 20 * math.Log10(cmplx.Abs(b.FrequencyResponse(frequency, sampleRate)))
}
