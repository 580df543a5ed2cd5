package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/mixref/audio"
)

func TestDetectBPMClickTrain(t *testing.T) {
	t.Parallel()

	sr := 44100
	res, err := DetectBPM(mono(clickTrain(140, sr, 8), sr), 0, false)
	if err != nil {
		t.Fatalf("DetectBPM() error = %v", err)
	}

	if math.Abs(res.BPM-140) > 3 {
		t.Errorf("BPM = %.2f, want ~140", res.BPM)
	}
	if res.Confidence < 0.5 || res.Confidence > 1 {
		t.Errorf("confidence = %v, want a strong rhythmic score", res.Confidence)
	}
	if res.OnsetStrength != nil {
		t.Error("onset envelope returned without being requested")
	}
}

func TestDetectBPMStereoAndEnvelope(t *testing.T) {
	t.Parallel()

	sr := 22050
	clicks := clickTrain(128, sr, 8)
	res, err := DetectBPM(stereo(clicks, clicks, sr), DefaultStartBPM, true)
	if err != nil {
		t.Fatalf("DetectBPM() error = %v", err)
	}

	if math.Abs(res.BPM-128) > 3 {
		t.Errorf("BPM = %.2f, want ~128", res.BPM)
	}
	if want := 1 + len(clicks)/512; len(res.OnsetStrength) != want {
		t.Errorf("envelope frames = %d, want %d", len(res.OnsetStrength), want)
	}
	for i, v := range res.OnsetStrength {
		if v < 0 {
			t.Fatalf("envelope[%d] = %v is negative", i, v)
		}
	}
}

func TestDetectBPMSilence(t *testing.T) {
	t.Parallel()

	res, err := DetectBPM(mono(make([]float64, 22050*3), 22050), DefaultStartBPM, false)
	if err != nil {
		t.Fatalf("DetectBPM() error = %v", err)
	}
	if res.BPM != 0 || res.Confidence != 0 {
		t.Errorf("silence = %+v, want zero tempo and confidence", res)
	}
}

func TestDetectBPMInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := DetectBPM(mono(nil, 44100), DefaultStartBPM, false); !errors.Is(err, audio.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}
