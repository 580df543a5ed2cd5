package temporal

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/spectral"
	"github.com/RyanBlaney/mixref/algorithms/windowing"
	"github.com/RyanBlaney/mixref/logging"
)

// OnsetConfig parameterizes the onset strength envelope
type OnsetConfig struct {
	WindowSize int     `json:"window_size"`
	HopSize    int     `json:"hop_size"`
	NumMels    int     `json:"num_mels"`
	TopDB      float64 `json:"top_db"`
}

// DefaultOnsetConfig matches the usual beat-tracking front end: 2048-point
// frames, 512 hop, 128 mel bands, 80 dB dynamic range.
func DefaultOnsetConfig() OnsetConfig {
	return OnsetConfig{
		WindowSize: 2048,
		HopSize:    512,
		NumMels:    128,
		TopDB:      80,
	}
}

// OnsetDetection computes a spectral-flux onset strength envelope from a
// log-power mel spectrogram
type OnsetDetection struct {
	config       OnsetConfig
	stft         *spectral.STFT
	melScale     *spectral.MelScale
	spectralFlux *spectral.SpectralFlux
	logger       logging.Logger
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection(config OnsetConfig) *OnsetDetection {
	return &OnsetDetection{
		config:       config,
		stft:         spectral.NewSTFT(),
		melScale:     spectral.NewMelScale(),
		spectralFlux: spectral.NewSpectralFlux(1),
		logger:       logging.WithFields(logging.Fields{"component": "onset_detection"}),
	}
}

// HopSize returns the envelope hop in samples
func (od *OnsetDetection) HopSize() int {
	return od.config.HopSize
}

// OnsetStrength returns one non-negative value per STFT frame: the median
// over mel bands of the rectified frame-to-frame increase in dB. The
// envelope is shifted by half a window so that values line up with the
// frame centers.
func (od *OnsetDetection) OnsetStrength(signal []float64, sampleRate int) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	cfg := od.config
	window := windowing.NewHann(cfg.WindowSize, false)
	stftResult, err := od.stft.ComputeCentered(signal, cfg.WindowSize, cfg.HopSize, sampleRate, window)
	if err != nil {
		return nil, fmt.Errorf("onset STFT: %w", err)
	}

	filterBank := od.melScale.CreateMelFilterBank(cfg.NumMels, cfg.WindowSize, sampleRate, 0, 0)
	melDB := toDB(od.melScale.PowerMelSpectrogram(stftResult.Magnitude, filterBank), cfg.TopDB)

	flux := od.spectralFlux.Compute(melDB)

	// frames are centered, so move the envelope by windowSize/(2*hop)
	shift := cfg.WindowSize / (2 * cfg.HopSize)
	envelope := make([]float64, len(flux))
	for t := range envelope {
		if src := t - shift; src >= 0 {
			envelope[t] = flux[src]
		}
	}

	od.logger.Debug("onset strength computed", logging.Fields{
		"frames": len(envelope),
		"mels":   cfg.NumMels,
	})

	return envelope, nil
}

// toDB converts a power spectrogram to dB (ref 1.0, amin 1e-10) and clamps
// it to topDB below the global maximum.
func toDB(power [][]float64, topDB float64) [][]float64 {
	out := make([][]float64, len(power))
	peak := math.Inf(-1)
	for t, frame := range power {
		out[t] = common.PowerToDB(frame, 1, 1e-10, 0)
		for _, v := range out[t] {
			peak = math.Max(peak, v)
		}
	}

	if topDB > 0 {
		floor := peak - topDB
		for _, frame := range out {
			for f := range frame {
				frame[f] = math.Max(frame[f], floor)
			}
		}
	}

	return out
}
