package spectral

import (
	"math"
	"testing"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/windowing"
)

func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestSTFTCenteredFrameCount(t *testing.T) {
	t.Parallel()

	signal := sine(1000, 8000, 8000)
	res, err := NewSTFT().ComputeCentered(signal, 256, 64, 8000, windowing.NewHann(256, false))
	if err != nil {
		t.Fatalf("ComputeCentered() error = %v", err)
	}

	if res.TimeFrames != 1+len(signal)/64 {
		t.Errorf("TimeFrames = %d, want %d", res.TimeFrames, 1+len(signal)/64)
	}
	if res.FreqBins != 129 {
		t.Errorf("FreqBins = %d, want 129", res.FreqBins)
	}

	mid := res.Magnitude[res.TimeFrames/2]
	if got := common.ArgMax(mid); got != 32 {
		t.Errorf("peak bin = %d, want 32 (1 kHz)", got)
	}
	if got := res.Frequencies()[32]; got != 1000 {
		t.Errorf("bin 32 frequency = %v, want 1000", got)
	}
}

func TestSTFTShortSignalGetsOneFrame(t *testing.T) {
	t.Parallel()

	res, err := NewSTFT().ComputeCentered([]float64{1, 0, 0}, 2048, 512, 44100, nil)
	if err != nil {
		t.Fatalf("ComputeCentered() error = %v", err)
	}
	if res.TimeFrames < 1 {
		t.Errorf("TimeFrames = %d, want >= 1", res.TimeFrames)
	}
}

func TestSTFTErrors(t *testing.T) {
	t.Parallel()

	s := NewSTFT()
	if _, err := s.ComputeWithWindow(nil, 256, 64, 8000, nil); err == nil {
		t.Error("expected error for empty signal")
	}
	if _, err := s.ComputeWithWindow(make([]float64, 100), 256, 64, 8000, nil); err == nil {
		t.Error("expected error for signal shorter than window")
	}
	if _, err := s.ComputeWithWindow(make([]float64, 300), 256, 0, 8000, nil); err == nil {
		t.Error("expected error for zero hop")
	}
}

func TestBandEnergyInclusiveEdges(t *testing.T) {
	t.Parallel()

	freqs := []float64{0, 100, 200, 300}
	mags := [][]float64{{1, 2, 2, 4}, {1, 2, 2, 4}}

	got := BandEnergy{MinHz: 100, MaxHz: 200}.Compute(mags, freqs)
	if got.NumBins != 2 {
		t.Errorf("NumBins = %d, want 2", got.NumBins)
	}
	if math.Abs(got.RMS-2) > 1e-12 {
		t.Errorf("RMS = %v, want 2", got.RMS)
	}

	empty := BandEnergy{MinHz: 120, MaxHz: 180}.Compute(mags, freqs)
	if empty.NumBins != 0 || empty.RMS != 0 {
		t.Errorf("empty band = %+v", empty)
	}
}

func TestSpectralFluxRectifiedMedian(t *testing.T) {
	t.Parallel()

	mags := [][]float64{
		{0, 0, 0},
		{1, 2, -1},
		{1, 2, 5},
	}
	flux := NewSpectralFlux(1).Compute(mags)
	want := []float64{0, 1, 0}
	for i := range want {
		if math.Abs(flux[i]-want[i]) > 1e-12 {
			t.Errorf("flux[%d] = %v, want %v", i, flux[i], want[i])
		}
	}

	lag2 := NewSpectralFlux(2).Compute(mags)
	if lag2[1] != 0 || math.Abs(lag2[2]-2) > 1e-12 {
		t.Errorf("lag 2 flux = %v, want [0 0 2]", lag2)
	}
}

func TestMelFilterBankCoversBins(t *testing.T) {
	t.Parallel()

	ms := NewMelScale()
	bank := ms.CreateMelFilterBank(40, 2048, 22050, 0, 0)
	if len(bank) != 40 {
		t.Fatalf("filters = %d, want 40", len(bank))
	}
	for m, filter := range bank {
		if len(filter) != 1025 {
			t.Fatalf("filter %d has %d weights", m, len(filter))
		}
		sum := 0.0
		for _, w := range filter {
			if w < 0 {
				t.Fatalf("negative weight in filter %d", m)
			}
			sum += w
		}
		if sum == 0 {
			t.Errorf("filter %d is empty", m)
		}
	}

	if got := ms.MelToHz(ms.HzToMel(440)); math.Abs(got-440) > 1e-9 {
		t.Errorf("mel round trip = %v", got)
	}
}

func TestCentroidAndRolloff(t *testing.T) {
	t.Parallel()

	// 9 bins of an FFT of size 16 at 1600 Hz: 100 Hz per bin
	spectrum := make([]float64, 9)
	spectrum[2] = 1
	spectrum[6] = 1

	if got := Centroid(spectrum, 1600); math.Abs(got-400) > 1e-9 {
		t.Errorf("centroid = %v, want 400", got)
	}
	if got := Rolloff(spectrum, 1600, DefaultRolloffThreshold); got != 600 {
		t.Errorf("rolloff = %v, want 600", got)
	}
}
