package windowing

import "math"

// NewHann creates a Hann window. Spectral analysis uses the periodic form
// (symmetric=false); kernel design uses the symmetric one.
func NewHann(size int, symmetric bool) *Window {
	return build("hann", size, symmetric, func(x float64) float64 {
		return 0.5 * (1 - math.Cos(2*math.Pi*x))
	})
}
