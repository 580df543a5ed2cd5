package temporal

import (
	"math"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/stats"
	"github.com/RyanBlaney/mixref/algorithms/windowing"
	"github.com/RyanBlaney/mixref/logging"
)

// TempoConfig parameterizes the periodicity search
type TempoConfig struct {
	// ACSize is the autocorrelation window length in seconds
	ACSize float64 `json:"ac_size"`
	// StdBPM is the standard deviation of the tempo prior in octaves
	StdBPM   float64 `json:"std_bpm"`
	MinTempo float64 `json:"min_tempo"`
	MaxTempo float64 `json:"max_tempo"`
}

// DefaultTempoConfig returns the settings used for dance music.
func DefaultTempoConfig() TempoConfig {
	return TempoConfig{
		ACSize:   8.0,
		StdBPM:   1.0,
		MinTempo: 30,
		MaxTempo: 320,
	}
}

// TempoEstimation picks the dominant beat period of an onset envelope
type TempoEstimation struct {
	config TempoConfig
	logger logging.Logger
}

// NewTempoEstimation creates a new tempo estimator
func NewTempoEstimation(config TempoConfig) *TempoEstimation {
	return &TempoEstimation{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "tempo_estimation"}),
	}
}

// Tempogram returns the autocorrelation of the envelope averaged over
// Hann-windowed segments of ACSize seconds (hop a quarter window). Each
// segment is normalized by its lag-0 value before averaging, so loud and
// quiet passages weigh the same.
func (te *TempoEstimation) Tempogram(envelope []float64, frameRate float64) []float64 {
	winLength := max(2, int(math.Round(te.config.ACSize*frameRate)))
	if len(envelope) < winLength {
		winLength = len(envelope)
	}
	if winLength < 2 {
		return nil
	}

	window := windowing.NewHann(winLength, false)
	ac := stats.NewAutoCorrelation(winLength - 1)

	hop := max(1, winLength/4)
	sum := make([]float64, winLength)
	segments := 0

	for start := 0; start+winLength <= len(envelope); start += hop {
		segment := window.Apply(envelope[start : start+winLength])
		r := ac.ComputeNormalized(segment)
		if r[0] == 0 {
			continue
		}
		for lag, v := range r {
			sum[lag] += v
		}
		segments++
	}

	if segments == 0 {
		return make([]float64, winLength)
	}

	for lag := range sum {
		sum[lag] /= float64(segments)
	}
	return sum
}

// EstimateTempo returns the tempo in BPM of an onset envelope sampled at
// frameRate frames per second. Lags are scored by log1p(1e6*tempogram)
// plus a log-normal prior centered on startBPM; the best lag is refined by
// parabolic interpolation. An envelope without any onset energy yields 0.
func (te *TempoEstimation) EstimateTempo(envelope []float64, frameRate, startBPM float64) float64 {
	if len(envelope) < 2 || frameRate <= 0 || common.MaxAbs(envelope) == 0 {
		return 0
	}

	tg := te.Tempogram(envelope, frameRate)
	if len(tg) < 2 || tg[0] == 0 {
		return 0
	}

	if startBPM <= 0 {
		startBPM = 120
	}

	score := make([]float64, len(tg))
	for lag := range score {
		score[lag] = math.Inf(-1)
		if lag == 0 {
			continue
		}

		bpm := 60 * frameRate / float64(lag)
		if bpm > te.config.MaxTempo || bpm < te.config.MinTempo {
			continue
		}

		prior := -0.5 * math.Pow((math.Log2(bpm)-math.Log2(startBPM))/te.config.StdBPM, 2)
		score[lag] = math.Log1p(1e6*math.Max(0, tg[lag])) + prior
	}

	best := common.ArgMax(score)
	if best <= 0 || math.IsInf(score[best], -1) {
		return 0
	}

	lag := float64(best)
	if best > 0 && best < len(score)-1 && !math.IsInf(score[best-1], -1) && !math.IsInf(score[best+1], -1) {
		lag += common.ParabolicPeak(score, best)
	}

	bpm := 60 * frameRate / lag
	te.logger.Debug("tempo estimated", logging.Fields{
		"lag":       lag,
		"bpm":       bpm,
		"start_bpm": startBPM,
	})

	return bpm
}

// Confidence rates how rhythmic an envelope is: its variance over its mean,
// scaled by 1/10 and capped at 1. It is a heuristic, not a probability.
func Confidence(envelope []float64) float64 {
	if len(envelope) == 0 {
		return 0
	}

	mean := common.Mean(envelope)
	variance := common.Variance(envelope)
	return common.Clamp(variance/(mean+1e-6)/10.0, 0, 1)
}
