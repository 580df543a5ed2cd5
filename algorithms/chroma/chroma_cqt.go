package chroma

import (
	"fmt"
	"math"
	"math/cmplx"
	"sync"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/spectral"
	"github.com/RyanBlaney/mixref/algorithms/windowing"
	"github.com/RyanBlaney/mixref/logging"
	"github.com/mjibson/go-dsp/fft"
)

const (
	// DefaultMinFreq is C2.
	DefaultMinFreq = 65.41

	DefaultOctaves       = 6
	DefaultBinsPerOctave = 36
	DefaultHopSize       = 4096

	// kernel spectra below this magnitude are dropped
	sparsityThreshold = 0.0054
)

// CQTConfig describes the constant-Q filter bank.
type CQTConfig struct {
	MinFreq       float64
	Octaves       int
	BinsPerOctave int
	HopSize       int
}

func DefaultCQTConfig() CQTConfig {
	return CQTConfig{
		MinFreq:       DefaultMinFreq,
		Octaves:       DefaultOctaves,
		BinsPerOctave: DefaultBinsPerOctave,
		HopSize:       DefaultHopSize,
	}
}

// Q returns the quality factor implied by the bin spacing.
func (c CQTConfig) Q() float64 {
	return 1.0 / (math.Pow(2, 1.0/float64(c.BinsPerOctave)) - 1)
}

type sparseKernel struct {
	index []int
	value []complex128
}

// ChromaCQT computes a constant-Q transform with the spectral kernel method
// (Brown and Puckette): every bin is a sparse dot product between the FFT of
// a frame and the precomputed spectrum of a Hann-windowed complex
// exponential.
//
// Unlike an STFT chromagram, resolution is finer at low frequencies, which
// keeps bass notes from smearing into neighbouring pitch classes.
type ChromaCQT struct {
	config     CQTConfig
	sampleRate int
	fftSize    int
	freqs      []float64
	kernels    []sparseKernel
	logger     logging.Logger
}

// NewChromaCQT builds the kernels for sampleRate. Bins above Nyquist are
// left out.
func NewChromaCQT(sampleRate int, config CQTConfig) (*ChromaCQT, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %d", sampleRate)
	}
	if config.MinFreq <= 0 || config.Octaves <= 0 || config.BinsPerOctave <= 0 || config.HopSize <= 0 {
		return nil, fmt.Errorf("invalid CQT config %+v", config)
	}

	nyquist := float64(sampleRate) / 2
	var freqs []float64
	for k := range config.Octaves * config.BinsPerOctave {
		f := config.MinFreq * math.Pow(2, float64(k)/float64(config.BinsPerOctave))
		if f >= nyquist {
			break
		}
		freqs = append(freqs, f)
	}
	if len(freqs) == 0 {
		return nil, fmt.Errorf("no CQT bins below Nyquist %.1f Hz", nyquist)
	}

	q := config.Q()
	longest := int(math.Ceil(q * float64(sampleRate) / freqs[0]))

	c := &ChromaCQT{
		config:     config,
		sampleRate: sampleRate,
		fftSize:    common.NextPowerOfTwo(longest),
		freqs:      freqs,
		kernels:    make([]sparseKernel, len(freqs)),
		logger:     logging.WithFields(logging.Fields{"component": "cqt"}),
	}

	c.parallel(len(freqs), func(k int) {
		c.kernels[k] = c.buildKernel(freqs[k], q)
	})

	c.logger.Debug("built CQT kernels", logging.Fields{
		"bins":     len(freqs),
		"fft_size": c.fftSize,
	})

	return c, nil
}

func (c *ChromaCQT) buildKernel(freq, q float64) sparseKernel {
	length := int(math.Ceil(q * float64(c.sampleRate) / freq))
	length = min(length, c.fftSize)
	win := windowing.NewHann(length, true).Coefficients()

	temporal := make([]complex128, c.fftSize)
	offset := (c.fftSize - length) / 2
	for n := range length {
		phase := 2 * math.Pi * q * float64(n) / float64(length)
		temporal[offset+n] = complex(win[n]/float64(length), 0) * cmplx.Exp(complex(0, phase))
	}

	spectrum := fft.FFT(temporal)

	var sk sparseKernel
	scale := complex(1/float64(c.fftSize), 0)
	for j, v := range spectrum {
		if cmplx.Abs(v) <= sparsityThreshold {
			continue
		}
		sk.index = append(sk.index, j)
		sk.value = append(sk.value, cmplx.Conj(v)*scale)
	}
	return sk
}

// Frequencies returns the center frequency of every bin.
func (c *ChromaCQT) Frequencies() []float64 {
	out := make([]float64, len(c.freqs))
	copy(out, c.freqs)
	return out
}

func (c *ChromaCQT) BinsPerOctave() int {
	return c.config.BinsPerOctave
}

// Transform returns CQT magnitudes, frames x bins. Frame t is centered on
// sample t*HopSize; the signal is zero padded at both ends.
func (c *ChromaCQT) Transform(signal []float64) ([][]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	hop := c.config.HopSize
	numFrames := 1 + len(signal)/hop
	half := c.fftSize / 2
	out := make([][]float64, numFrames)

	c.logger.Debug("computing CQT", logging.Fields{
		"frames": numFrames,
		"bins":   len(c.freqs),
	})

	c.parallel(numFrames, func(t int) {
		frame := make([]float64, c.fftSize)
		start := t*hop - half
		for i := range frame {
			if j := start + i; j >= 0 && j < len(signal) {
				frame[i] = signal[j]
			}
		}

		spectrum := fft.FFTReal(frame)
		mags := make([]float64, len(c.kernels))
		for k, kernel := range c.kernels {
			var acc complex128
			for i, j := range kernel.index {
				acc += spectrum[j] * kernel.value[i]
			}
			mags[k] = cmplx.Abs(acc)
		}
		out[t] = mags
	})

	return out, nil
}

// Chromagram folds the CQT into 12 pitch classes starting at the pitch
// class of MinFreq, one row per frame, each row scaled to a maximum of 1.
func (c *ChromaCQT) Chromagram(signal []float64) ([][]float64, error) {
	cqt, err := c.Transform(signal)
	if err != nil {
		return nil, err
	}

	chroma := make([][]float64, len(cqt))
	for t, frame := range cqt {
		chroma[t] = NormalizeMax(Fold(frame, c.config.BinsPerOctave))
	}
	return chroma, nil
}

// parallel runs fn for 0..n-1 on a pool sized like the STFT's.
func (c *ChromaCQT) parallel(n int, fn func(i int)) {
	jobs := make(chan int, n)
	for i := range n {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range spectral.WorkerCount(n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}
	wg.Wait()
}
