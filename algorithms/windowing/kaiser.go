package windowing

import "math"

// DefaultKaiserBeta gives roughly 80 dB of sidelobe attenuation.
const DefaultKaiserBeta = 8.0

// NewKaiser creates a Kaiser window with shape parameter beta.
func NewKaiser(size int, beta float64, symmetric bool) *Window {
	i0Beta := BesselI0(beta)
	return build("kaiser", size, symmetric, func(x float64) float64 {
		arg := 2*x - 1
		return BesselI0(beta*math.Sqrt(math.Max(0, 1-arg*arg))) / i0Beta
	})
}

// BesselI0 computes the zero-order modified Bessel function of the first
// kind by its power series.
func BesselI0(x float64) float64 {
	sum, term := 1.0, 1.0
	half := x / 2
	for k := 1; k < 50; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < 1e-12*sum {
			break
		}
	}
	return sum
}
