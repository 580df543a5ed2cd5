package analysis

import (
	"math"
	"math/rand"

	"github.com/RyanBlaney/mixref/audio"
)

func sine(freq, amplitude float64, sampleRate int, seconds float64) []float64 {
	out := make([]float64, int(float64(sampleRate)*seconds))
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func chord(sampleRate int, seconds float64, freqs ...float64) []float64 {
	out := make([]float64, int(float64(sampleRate)*seconds))
	for _, f := range freqs {
		for i, v := range sine(f, 0.25, sampleRate, seconds) {
			out[i] += v
		}
	}
	return out
}

// clickTrain places 100-sample pulses of 0.8 on every beat.
func clickTrain(bpm float64, sampleRate int, seconds float64) []float64 {
	out := make([]float64, int(float64(sampleRate)*seconds))
	interval := int(60 / bpm * float64(sampleRate))
	for i := 0; i+100 < len(out); i += interval {
		for j := range 100 {
			out[i+j] = 0.8
		}
	}
	return out
}

func whiteNoise(n int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()*2 - 1
	}
	return out
}

func mono(samples []float64, sampleRate int) audio.Waveform {
	return audio.NewMono(samples, sampleRate)
}

func stereo(left, right []float64, sampleRate int) audio.Waveform {
	w, err := audio.NewWaveform([][]float64{left, right}, sampleRate)
	if err != nil {
		panic(err)
	}
	return w
}
