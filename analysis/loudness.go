// Package analysis measures loudness, tempo, key and spectral balance of a
// decoded waveform and compares a track against a reference.
package analysis

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/filters"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

// Gating parameters from ITU-R BS.1770-4 and EBU Tech 3342.
const (
	MomentaryBlockSeconds = 0.4
	ShortTermSeconds      = 3.0
	GateStepSeconds       = 0.1

	AbsoluteGateLUFS  = -70.0
	RelativeGateLU    = -10.0
	LRARelativeGateLU = -20.0
	LRALowPercentile  = 0.10
	LRAHighPercentile = 0.95
	loudnessOffset    = -0.691
	surroundGain      = 1.41
)

// LoudnessResult holds EBU R128 measurements. Silence reports negative
// infinity for every level.
type LoudnessResult struct {
	IntegratedLUFS   float64 `json:"integrated_lufs"`
	TruePeakDB       float64 `json:"true_peak_db"`
	LoudnessRangeLU  float64 `json:"loudness_range_lu"`
	ShortTermMaxLUFS float64 `json:"short_term_max_lufs"`
	ShortTermMinLUFS float64 `json:"short_term_min_lufs"`
}

// CalculateLUFS measures integrated loudness, true peak and loudness range.
func CalculateLUFS(w audio.Waveform) (LoudnessResult, error) {
	if err := w.Validate(); err != nil {
		return LoudnessResult{}, fmt.Errorf("calculating loudness: %w", err)
	}

	logger := logging.WithFields(logging.Fields{"component": "loudness"})

	sr := w.SampleRate()
	channels := w.Channels()

	// cumulative energy of each K-weighted channel, so any window's mean
	// square is a subtraction
	kweight, err := filters.NewKWeighting(sr)
	if err != nil {
		return LoudnessResult{}, fmt.Errorf("designing K-weighting: %w", err)
	}
	energy := make([][]float64, len(channels))
	for c, ch := range channels {
		energy[c] = cumulativeEnergy(kweight.Clone().ProcessBuffer(ch))
	}
	gains := channelGains(len(channels))

	step := max(1, int(math.Round(GateStepSeconds*float64(sr))))
	momentary := windowPowers(energy, gains, int(math.Round(MomentaryBlockSeconds*float64(sr))), step)
	shortTerm := windowPowers(energy, gains, int(math.Round(ShortTermSeconds*float64(sr))), step)

	integrated := gatedLoudness(momentary, RelativeGateLU)
	lra, stMax, stMin := loudnessRange(shortTerm)

	result := LoudnessResult{
		IntegratedLUFS:   integrated,
		TruePeakDB:       filters.TruePeakDB(channels, sr),
		LoudnessRangeLU:  lra,
		ShortTermMaxLUFS: stMax,
		ShortTermMinLUFS: stMin,
	}

	logger.Debug("loudness measured", logging.Fields{
		"blocks":     len(momentary),
		"short_term": len(shortTerm),
		"lufs":       result.IntegratedLUFS,
		"peak":       result.TruePeakDB,
	})

	return result, nil
}

// channelGains weights the fourth and fifth channel (the surrounds of a
// five channel layout) by 1.41.
func channelGains(n int) []float64 {
	g := make([]float64, n)
	for c := range g {
		g[c] = 1
		if c == 3 || c == 4 {
			g[c] = surroundGain
		}
	}
	return g
}

func cumulativeEnergy(x []float64) []float64 {
	cum := make([]float64, len(x)+1)
	for i, v := range x {
		cum[i+1] = cum[i] + v*v
	}
	return cum
}

// windowPowers returns the channel-weighted mean square of every window.
// A signal shorter than one window is measured as a single window.
func windowPowers(energy [][]float64, gains []float64, size, step int) []float64 {
	n := len(energy[0]) - 1
	if size <= 0 || n <= size {
		return []float64{weightedPower(energy, gains, 0, n)}
	}

	var powers []float64
	for start := 0; start+size <= n; start += step {
		powers = append(powers, weightedPower(energy, gains, start, start+size))
	}
	return powers
}

func weightedPower(energy [][]float64, gains []float64, start, end int) float64 {
	if end <= start {
		return 0
	}
	sum := 0.0
	for c, cum := range energy {
		sum += gains[c] * (cum[end] - cum[start]) / float64(end-start)
	}
	return sum
}

func powerToLUFS(p float64) float64 {
	if p <= 0 {
		return math.Inf(-1)
	}
	return loudnessOffset + 10*math.Log10(p)
}

// gatedLoudness applies the absolute gate, then a relative gate of
// relativeLU below the loudness of what survived, and returns the loudness
// of the mean power of the remaining blocks.
func gatedLoudness(powers []float64, relativeLU float64) float64 {
	gated := absoluteGate(powers)
	if len(gated) == 0 {
		return math.Inf(-1)
	}

	threshold := powerToLUFS(common.Mean(gated)) + relativeLU

	sum, count := 0.0, 0
	for _, p := range gated {
		if powerToLUFS(p) > threshold {
			sum += p
			count++
		}
	}
	if count == 0 {
		return math.Inf(-1)
	}
	return powerToLUFS(sum / float64(count))
}

func absoluteGate(powers []float64) []float64 {
	var out []float64
	for _, p := range powers {
		if powerToLUFS(p) > AbsoluteGateLUFS {
			out = append(out, p)
		}
	}
	return out
}

// loudnessRange implements EBU Tech 3342 over short-term powers. It also
// returns the extremes of the absolutely gated short-term loudness.
func loudnessRange(powers []float64) (lra, maxLUFS, minLUFS float64) {
	gated := absoluteGate(powers)
	if len(gated) == 0 {
		return 0, math.Inf(-1), math.Inf(-1)
	}

	maxLUFS, minLUFS = math.Inf(-1), math.Inf(1)
	for _, p := range gated {
		l := powerToLUFS(p)
		maxLUFS = math.Max(maxLUFS, l)
		minLUFS = math.Min(minLUFS, l)
	}

	threshold := powerToLUFS(common.Mean(gated)) + LRARelativeGateLU

	var levels []float64
	for _, p := range gated {
		if l := powerToLUFS(p); l > threshold {
			levels = append(levels, l)
		}
	}
	if len(levels) == 0 {
		return 0, maxLUFS, minLUFS
	}

	lra = common.Percentile(levels, LRAHighPercentile) - common.Percentile(levels, LRALowPercentile)
	return lra, maxLUFS, minLUFS
}
