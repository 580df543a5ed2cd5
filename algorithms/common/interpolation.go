package common

// InterpolationType selects how fractional sample positions are read
type InterpolationType int

const (
	Linear InterpolationType = iota
	Cubic
)

// Interpolator reads a sampled signal at fractional positions. Positions
// outside [0, len-1] are clamped to the edge samples.
type Interpolator struct {
	method InterpolationType
}

func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{method: method}
}

// Interpolate returns data evaluated at the fractional index pos.
func (interp *Interpolator) Interpolate(data []float64, pos float64) float64 {
	n := len(data)
	switch {
	case n == 0:
		return 0
	case pos <= 0:
		return data[0]
	case pos >= float64(n-1):
		return data[n-1]
	}

	i := int(pos)
	t := pos - float64(i)

	if interp.method == Cubic && n >= 4 {
		return catmullRom(clampedAt(data, i-1), data[i], data[i+1], clampedAt(data, i+2), t)
	}
	return data[i] + t*(data[i+1]-data[i])
}

// ResampleSignal reads signal on the grid of targetRate. The output has
// round(len * targetRate / srcRate) samples; a rate that is not
// positive returns the input untouched.
func (interp *Interpolator) ResampleSignal(signal []float64, srcRate, targetRate int) []float64 {
	if len(signal) == 0 || srcRate <= 0 || targetRate <= 0 {
		return signal
	}
	if srcRate == targetRate {
		return append([]float64(nil), signal...)
	}

	step := float64(srcRate) / float64(targetRate)
	outLen := int(float64(len(signal))/step + 0.5)

	out := make([]float64, max(0, outLen))
	for k := range out {
		out[k] = interp.Interpolate(signal, float64(k)*step)
	}
	return out
}

// catmullRom evaluates the spline segment between p1 and p2 at t in [0, 1).
func catmullRom(p0, p1, p2, p3, t float64) float64 {
	m1 := 0.5 * (p2 - p0)
	m2 := 0.5 * (p3 - p1)

	t2 := t * t
	t3 := t2 * t

	return (2*t3-3*t2+1)*p1 +
		(t3-2*t2+t)*m1 +
		(-2*t3+3*t2)*p2 +
		(t3-t2)*m2
}

func clampedAt(data []float64, k int) float64 {
	return data[min(max(k, 0), len(data)-1)]
}
