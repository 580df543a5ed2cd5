package analysis

import (
	"fmt"

	"github.com/RyanBlaney/mixref/algorithms/temporal"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

// DefaultStartBPM centers the tempo prior.
const DefaultStartBPM = 120.0

// TempoResult is a raw tempo estimate. Confidence is a rhythmicity score in
// [0, 1], not a probability.
type TempoResult struct {
	BPM           float64   `json:"bpm"`
	Confidence    float64   `json:"confidence"`
	OnsetStrength []float64 `json:"onset_strength,omitempty"`
}

// DetectBPM estimates the tempo of the mono mix. A non-positive startBPM
// uses DefaultStartBPM. Silence yields BPM 0 with confidence 0. The onset
// envelope is kept only when includeOnsetStrength is set.
func DetectBPM(w audio.Waveform, startBPM float64, includeOnsetStrength bool) (TempoResult, error) {
	if err := w.Validate(); err != nil {
		return TempoResult{}, fmt.Errorf("detecting tempo: %w", err)
	}
	if startBPM <= 0 {
		startBPM = DefaultStartBPM
	}

	od := temporal.NewOnsetDetection(temporal.DefaultOnsetConfig())
	envelope, err := od.OnsetStrength(w.Mono(), w.SampleRate())
	if err != nil {
		return TempoResult{}, fmt.Errorf("computing onset strength: %w", err)
	}

	frameRate := float64(w.SampleRate()) / float64(od.HopSize())
	te := temporal.NewTempoEstimation(temporal.DefaultTempoConfig())

	result := TempoResult{
		BPM:        te.EstimateTempo(envelope, frameRate, startBPM),
		Confidence: temporal.Confidence(envelope),
	}
	if includeOnsetStrength {
		result.OnsetStrength = envelope
	}

	logging.Debug("tempo detected", logging.Fields{
		"component":  "tempo",
		"bpm":        result.BPM,
		"confidence": result.Confidence,
	})

	return result, nil
}
