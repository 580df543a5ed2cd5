// Package audio holds the decoded waveform every analyzer consumes.
package audio

import (
	"fmt"
	"time"
)

// Waveform is an immutable block of decoded samples. Samples are stored
// channel-major and never handed out by reference, so analyzers can derive
// mono mixes or filtered copies without touching the caller's data.
type Waveform struct {
	channels   [][]float64
	sampleRate int
}

// NewMono wraps a single channel of samples.
func NewMono(samples []float64, sampleRate int) Waveform {
	return Waveform{
		channels:   [][]float64{cloneSamples(samples)},
		sampleRate: sampleRate,
	}
}

// NewWaveform builds a waveform from channel-major data (channels x samples).
// All channels must have the same length.
func NewWaveform(channels [][]float64, sampleRate int) (Waveform, error) {
	if len(channels) == 0 {
		return Waveform{sampleRate: sampleRate}, nil
	}

	n := len(channels[0])
	out := make([][]float64, len(channels))
	for c, ch := range channels {
		if len(ch) != n {
			return Waveform{}, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelLayout, c, len(ch), n)
		}
		out[c] = cloneSamples(ch)
	}

	return Waveform{channels: out, sampleRate: sampleRate}, nil
}

// FromFrames builds a waveform from frame-major data (samples x channels).
func FromFrames(frames [][]float64, sampleRate int) (Waveform, error) {
	if len(frames) == 0 {
		return Waveform{sampleRate: sampleRate}, nil
	}

	numChannels := len(frames[0])
	out := make([][]float64, numChannels)
	for c := range out {
		out[c] = make([]float64, len(frames))
	}

	for i, frame := range frames {
		if len(frame) != numChannels {
			return Waveform{}, fmt.Errorf("%w: frame %d has %d channels, want %d",
				ErrChannelLayout, i, len(frame), numChannels)
		}
		for c, v := range frame {
			out[c][i] = v
		}
	}

	return Waveform{channels: out, sampleRate: sampleRate}, nil
}

// FromInterleaved splits interleaved PCM into channels. A trailing partial
// frame is dropped.
func FromInterleaved(pcm []float64, numChannels, sampleRate int) (Waveform, error) {
	if numChannels <= 0 {
		return Waveform{}, fmt.Errorf("%w: channel count must be positive, got %d", ErrInvalidInput, numChannels)
	}

	n := len(pcm) / numChannels
	out := make([][]float64, numChannels)
	for c := range out {
		out[c] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		base := i * numChannels
		for c := 0; c < numChannels; c++ {
			out[c][i] = pcm[base+c]
		}
	}

	return Waveform{channels: out, sampleRate: sampleRate}, nil
}

func (w Waveform) SampleRate() int { return w.sampleRate }

func (w Waveform) NumChannels() int { return len(w.channels) }

// Len returns the number of samples per channel.
func (w Waveform) Len() int {
	if len(w.channels) == 0 {
		return 0
	}
	return len(w.channels[0])
}

func (w Waveform) IsEmpty() bool { return w.Len() == 0 }

func (w Waveform) Duration() time.Duration {
	if w.sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(w.Len()) / float64(w.sampleRate) * float64(time.Second))
}

// Channel returns a copy of channel i.
func (w Waveform) Channel(i int) []float64 {
	if i < 0 || i >= len(w.channels) {
		return nil
	}
	return cloneSamples(w.channels[i])
}

// Channels returns a copy of all channels.
func (w Waveform) Channels() [][]float64 {
	out := make([][]float64, len(w.channels))
	for c := range w.channels {
		out[c] = cloneSamples(w.channels[c])
	}
	return out
}

// Mono returns the channel average as a new slice.
func (w Waveform) Mono() []float64 {
	switch len(w.channels) {
	case 0:
		return nil
	case 1:
		return cloneSamples(w.channels[0])
	}

	n := w.Len()
	mono := make([]float64, n)
	inv := 1.0 / float64(len(w.channels))
	for _, ch := range w.channels {
		for i, v := range ch {
			mono[i] += v
		}
	}
	for i := range mono {
		mono[i] *= inv
	}
	return mono
}

// Interleaved returns the samples frame by frame.
func (w Waveform) Interleaved() []float64 {
	numChannels := len(w.channels)
	n := w.Len()
	out := make([]float64, n*numChannels)
	for c, ch := range w.channels {
		for i, v := range ch {
			out[i*numChannels+c] = v
		}
	}
	return out
}

// Validate reports whether the waveform can be analyzed.
func (w Waveform) Validate() error {
	if w.sampleRate <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSampleRate, w.sampleRate)
	}
	if w.IsEmpty() {
		return ErrEmptyWaveform
	}
	return nil
}

func cloneSamples(s []float64) []float64 {
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
