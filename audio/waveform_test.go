package audio

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewMonoCopiesInput(t *testing.T) {
	t.Parallel()

	samples := []float64{0.1, 0.2, 0.3}
	w := NewMono(samples, 44100)
	samples[0] = 9

	if got := w.Channel(0)[0]; got != 0.1 {
		t.Errorf("waveform aliased caller slice: got %v", got)
	}

	ch := w.Channel(0)
	ch[1] = 9
	if got := w.Channel(0)[1]; got != 0.2 {
		t.Errorf("Channel() returned internal storage: got %v", got)
	}
}

func TestMonoAveragesChannels(t *testing.T) {
	t.Parallel()

	w, err := NewWaveform([][]float64{{1, 0, -1}, {0, 0, 1}}, 48000)
	if err != nil {
		t.Fatalf("NewWaveform() error = %v", err)
	}

	want := []float64{0.5, 0, 0}
	got := w.Mono()
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("Mono()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNewWaveformRejectsRaggedChannels(t *testing.T) {
	t.Parallel()

	_, err := NewWaveform([][]float64{{1, 2}, {1}}, 44100)
	if !errors.Is(err, ErrChannelLayout) || !errors.Is(err, ErrInvalidInput) {
		t.Errorf("NewWaveform() error = %v, want ErrChannelLayout", err)
	}
}

func TestFromFramesAndInterleaved(t *testing.T) {
	t.Parallel()

	frames := [][]float64{{1, 2}, {3, 4}, {5, 6}}
	w, err := FromFrames(frames, 44100)
	if err != nil {
		t.Fatalf("FromFrames() error = %v", err)
	}
	if w.NumChannels() != 2 || w.Len() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", w.NumChannels(), w.Len())
	}

	inter := w.Interleaved()
	want := []float64{1, 2, 3, 4, 5, 6}
	for i := range want {
		if inter[i] != want[i] {
			t.Fatalf("Interleaved() = %v, want %v", inter, want)
		}
	}

	back, err := FromInterleaved(append(inter, 7), 2, 44100)
	if err != nil {
		t.Fatalf("FromInterleaved() error = %v", err)
	}
	if back.Len() != 3 {
		t.Errorf("partial frame kept: Len() = %d", back.Len())
	}
	if got := back.Channel(1); got[2] != 6 {
		t.Errorf("channel 1 = %v", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		w    Waveform
		want error
	}{
		{"ok", NewMono([]float64{0}, 44100), nil},
		{"empty", NewMono(nil, 44100), ErrEmptyWaveform},
		{"zero rate", NewMono([]float64{0}, 0), ErrInvalidSampleRate},
		{"negative rate", NewMono([]float64{0}, -1), ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.w.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.want) || !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDuration(t *testing.T) {
	t.Parallel()

	w := NewMono(make([]float64, 22050), 44100)
	if got := w.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
}
