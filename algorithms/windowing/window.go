// Package windowing provides the analysis windows used by the STFT,
// the constant-Q kernels and the true-peak interpolator.
package windowing

import "fmt"

// Window is a precomputed tapering function of fixed length.
type Window struct {
	kind         string
	coefficients []float64
}

// New returns a periodic window by name. Kaiser windows use DefaultKaiserBeta.
func New(name string, size int) (*Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}

	switch name {
	case "hann", "hanning", "":
		return NewHann(size, false), nil
	case "kaiser":
		return NewKaiser(size, DefaultKaiserBeta, false), nil
	default:
		return nil, fmt.Errorf("unknown window type %q", name)
	}
}

// build evaluates shape at x = i/denominator for every index. Periodic
// windows divide by the size, symmetric ones by size-1.
func build(kind string, size int, symmetric bool, shape func(x float64) float64) *Window {
	w := &Window{kind: kind, coefficients: make([]float64, size)}
	if size == 1 {
		w.coefficients[0] = 1
		return w
	}

	denominator := float64(size)
	if symmetric {
		denominator = float64(size - 1)
	}
	for i := range w.coefficients {
		w.coefficients[i] = shape(float64(i) / denominator)
	}
	return w
}

// Apply returns a windowed copy of signal, or nil when the lengths differ.
func (w *Window) Apply(signal []float64) []float64 {
	if len(signal) != len(w.coefficients) {
		return nil
	}

	windowed := make([]float64, len(signal))
	for i, c := range w.coefficients {
		windowed[i] = signal[i] * c
	}
	return windowed
}

func (w *Window) ApplyInPlace(signal []float64) error {
	if len(signal) != len(w.coefficients) {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), len(w.coefficients))
	}

	for i, c := range w.coefficients {
		signal[i] *= c
	}
	return nil
}

// Coefficients returns a copy of the window.
func (w *Window) Coefficients() []float64 {
	out := make([]float64, len(w.coefficients))
	copy(out, w.coefficients)
	return out
}

func (w *Window) Len() int { return len(w.coefficients) }

func (w *Window) Kind() string { return w.kind }

// Sum returns the sum of the coefficients, the gain a windowed DC
// signal picks up.
func (w *Window) Sum() float64 {
	sum := 0.0
	for _, c := range w.coefficients {
		sum += c
	}
	return sum
}
