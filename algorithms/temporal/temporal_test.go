package temporal

import (
	"math"
	"testing"
)

// clickTrain places 100-sample pulses of 0.8 every beat.
func clickTrain(bpm float64, sampleRate int, seconds float64) []float64 {
	signal := make([]float64, int(float64(sampleRate)*seconds))
	interval := int(60 / bpm * float64(sampleRate))
	for i := 0; i+100 < len(signal); i += interval {
		for j := 0; j < 100; j++ {
			signal[i+j] = 0.8
		}
	}
	return signal
}

func TestOnsetStrengthShape(t *testing.T) {
	t.Parallel()

	sr := 22050
	signal := clickTrain(128, sr, 4)
	od := NewOnsetDetection(DefaultOnsetConfig())

	env, err := od.OnsetStrength(signal, sr)
	if err != nil {
		t.Fatalf("OnsetStrength() error = %v", err)
	}

	if want := 1 + len(signal)/od.HopSize(); len(env) != want {
		t.Errorf("frames = %d, want %d", len(env), want)
	}

	peak := 0.0
	for i, v := range env {
		if v < 0 {
			t.Fatalf("env[%d] = %v is negative", i, v)
		}
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		t.Error("click train produced a flat envelope")
	}
}

func TestOnsetStrengthEmpty(t *testing.T) {
	t.Parallel()

	if _, err := NewOnsetDetection(DefaultOnsetConfig()).OnsetStrength(nil, 44100); err == nil {
		t.Error("expected error for empty signal")
	}
}

func TestEstimateTempoClickTrains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sampleRate int
		bpm        float64
	}{
		{22050, 128},
		{22050, 120},
		{44100, 140},
	}

	for _, tt := range tests {
		signal := clickTrain(tt.bpm, tt.sampleRate, 8)
		od := NewOnsetDetection(DefaultOnsetConfig())
		env, err := od.OnsetStrength(signal, tt.sampleRate)
		if err != nil {
			t.Fatalf("OnsetStrength() error = %v", err)
		}

		frameRate := float64(tt.sampleRate) / float64(od.HopSize())
		got := NewTempoEstimation(DefaultTempoConfig()).EstimateTempo(env, frameRate, 120)
		if math.Abs(got-tt.bpm) > 3 {
			t.Errorf("sr=%d: tempo = %.2f, want %.0f +- 3", tt.sampleRate, got, tt.bpm)
		}
	}
}

func TestEstimateTempoSyntheticEnvelope(t *testing.T) {
	t.Parallel()

	// impulses every 40 frames at 80 frames/s = 120 BPM
	env := make([]float64, 800)
	for i := 0; i < len(env); i += 40 {
		env[i] = 1
		if i+1 < len(env) {
			env[i+1] = 0.5
		}
	}

	got := NewTempoEstimation(DefaultTempoConfig()).EstimateTempo(env, 80, 120)
	if math.Abs(got-120) > 1 {
		t.Errorf("tempo = %v, want 120", got)
	}
}

func TestEstimateTempoSilence(t *testing.T) {
	t.Parallel()

	te := NewTempoEstimation(DefaultTempoConfig())
	if got := te.EstimateTempo(make([]float64, 500), 86, 120); got != 0 {
		t.Errorf("silent envelope tempo = %v, want 0", got)
	}
	if got := te.EstimateTempo(nil, 86, 120); got != 0 {
		t.Errorf("empty envelope tempo = %v, want 0", got)
	}
}

func TestConfidence(t *testing.T) {
	t.Parallel()

	if got := Confidence(nil); got != 0 {
		t.Errorf("empty = %v", got)
	}
	if got := Confidence([]float64{2, 2, 2, 2}); got != 0 {
		t.Errorf("constant = %v, want 0", got)
	}

	// mean 0.25, population variance 0.1875: 0.1875/0.250001/10
	got := Confidence([]float64{1, 0, 0, 0})
	want := 0.1875 / (0.25 + 1e-6) / 10
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Confidence = %v, want %v", got, want)
	}

	spiky := make([]float64, 100)
	spiky[0] = 100
	if got := Confidence(spiky); got != 1 {
		t.Errorf("spiky = %v, want capped at 1", got)
	}
}
