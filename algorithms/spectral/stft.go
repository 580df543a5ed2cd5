package spectral

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/RyanBlaney/mixref/logging"
)

// Window is the tapering function applied to each frame
type Window interface {
	ApplyInPlace(signal []float64) error
}

// STFT provides Short-Time Fourier Transform functionality
type STFT struct {
	fft    *FFT
	logger logging.Logger
}

// STFTResult holds the one-sided magnitude spectrogram. Only magnitudes are
// kept: every consumer works on |X| or |X|^2, and a full-length track
// already produces tens of megabytes of them.
type STFTResult struct {
	Magnitude      [][]float64 `json:"magnitude"` // Time x Frequency
	TimeFrames     int         `json:"time_frames"`
	FreqBins       int         `json:"freq_bins"`
	SampleRate     int         `json:"sample_rate"`
	WindowSize     int         `json:"window_size"`
	HopSize        int         `json:"hop_size"`
	FreqResolution float64     `json:"freq_resolution"` // Hz/bin
	TimeResolution float64     `json:"time_resolution"` // seconds/frame
}

// Frequencies returns the center frequency of each bin.
func (r *STFTResult) Frequencies() []float64 {
	return BinFrequencies(r.WindowSize, r.SampleRate)
}

// NewSTFT creates a new STFT calculator
func NewSTFT() *STFT {
	return &STFT{
		fft:    NewFFT(),
		logger: logging.WithFields(logging.Fields{"component": "stft"}),
	}
}

// ComputeCentered pads windowSize/2 zeros on both sides before framing so
// that frame t is centered on sample t*hopSize. Signals shorter than one
// window still produce at least one frame.
func (s *STFT) ComputeCentered(signal []float64, windowSize, hopSize, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	pad := windowSize / 2
	padded := make([]float64, len(signal)+2*pad)
	copy(padded[pad:], signal)
	if len(padded) < windowSize {
		padded = append(padded, make([]float64, windowSize-len(padded))...)
	}

	return s.ComputeWithWindow(padded, windowSize, hopSize, sampleRate, window)
}

// ComputeWithWindow computes the STFT of signal, fanning frames out to a
// worker pool. Each worker writes only its own rows of the result.
func (s *STFT) ComputeWithWindow(signal []float64, windowSize int, hopSize int, sampleRate int, window Window) (*STFTResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	if windowSize <= 0 {
		return nil, fmt.Errorf("window size must be positive")
	}

	if hopSize <= 0 {
		return nil, fmt.Errorf("hop size must be positive")
	}

	numFrames := (len(signal)-windowSize)/hopSize + 1
	if len(signal) < windowSize || numFrames <= 0 {
		return nil, fmt.Errorf("signal too short for given window size and hop size")
	}

	freqBins := windowSize/2 + 1

	magnitude := make([][]float64, numFrames)

	numWorkers := getOptimalWorkerCount(numFrames)
	s.logger.Debug("computing STFT", logging.Fields{
		"frames":  numFrames,
		"window":  windowSize,
		"hop":     hopSize,
		"workers": numWorkers,
	})

	jobs := make(chan int, numFrames)

	var wg sync.WaitGroup
	var windowErr error
	var errOnce sync.Once

	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			frameBuffer := make([]float64, windowSize)

			for frameIdx := range jobs {
				start := frameIdx * hopSize
				copy(frameBuffer, signal[start:start+windowSize])

				if window != nil {
					if err := window.ApplyInPlace(frameBuffer); err != nil {
						errOnce.Do(func() { windowErr = err })
						continue
					}
				}

				magnitude[frameIdx] = Magnitudes(s.fft.Compute(frameBuffer), freqBins)
			}
		}()
	}

	for frameIdx := range numFrames {
		jobs <- frameIdx
	}
	close(jobs)

	wg.Wait()

	if windowErr != nil {
		return nil, fmt.Errorf("applying window: %w", windowErr)
	}

	return &STFTResult{
		Magnitude:      magnitude,
		TimeFrames:     numFrames,
		FreqBins:       freqBins,
		SampleRate:     sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sampleRate),
	}, nil
}

// getOptimalWorkerCount determines the number of workers based on workload
func getOptimalWorkerCount(numFrames int) int {
	numCPU := runtime.NumCPU()

	// For small workloads, don't over-parallelize
	if numFrames < 100 {
		return max(1, min(numCPU/2, numFrames))
	}

	if numFrames < 1000 {
		return max(1, min(numCPU, 8))
	}

	return numCPU
}

// WorkerCount exposes the pool sizing used by the STFT so that other frame
// based transforms size their pools the same way.
func WorkerCount(numFrames int) int {
	return getOptimalWorkerCount(numFrames)
}
