package analysis

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/mixref/algorithms/spectral"
	"github.com/RyanBlaney/mixref/algorithms/windowing"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
	"gonum.org/v1/gonum/floats"
)

const (
	SpectralWindowSize = 2048
	SpectralHopSize    = 512

	// added before taking logs and ratios
	energyEpsilon = 1e-10
)

// FrequencyBand is a named frequency range, inclusive on both ends.
type FrequencyBand struct {
	Name  string  `json:"name"`
	MinHz float64 `json:"min_hz"`
	MaxHz float64 `json:"max_hz"`
}

var defaultBands = []FrequencyBand{
	{Name: "Sub", MinHz: 20, MaxHz: 60},
	{Name: "Low", MinHz: 60, MaxHz: 250},
	{Name: "Mid", MinHz: 250, MaxHz: 2000},
	{Name: "High", MinHz: 2000, MaxHz: 8000},
	{Name: "Air", MinHz: 8000, MaxHz: 20000},
}

// DefaultBands returns the five production bands.
func DefaultBands() []FrequencyBand {
	out := make([]FrequencyBand, len(defaultBands))
	copy(out, defaultBands)
	return out
}

// BandEnergy is one band's level and its share of the total energy.
type BandEnergy struct {
	BandName      string  `json:"band_name"`
	EnergyDB      float64 `json:"energy_db"`
	EnergyPercent float64 `json:"energy_percent"`
}

// SpectralResult lists bands in the order they were requested.
type SpectralResult struct {
	Bands         []BandEnergy `json:"bands"`
	TotalEnergyDB float64      `json:"total_energy_db"`
	CentroidHz    float64      `json:"centroid_hz"`
	RolloffHz     float64      `json:"rolloff_hz"`
}

// Band looks a band up by name.
func (r SpectralResult) Band(name string) (BandEnergy, bool) {
	for _, b := range r.Bands {
		if b.BandName == name {
			return b, true
		}
	}
	return BandEnergy{}, false
}

// AnalyzeSpectrum partitions the magnitude spectrogram of the mono mix into
// bands. Nil bands means DefaultBands. Each band's RMS is taken over all of
// its bins in all frames; its percentage is its squared RMS over the sum of
// squared RMS of every band.
func AnalyzeSpectrum(w audio.Waveform, bands []FrequencyBand) (SpectralResult, error) {
	if err := w.Validate(); err != nil {
		return SpectralResult{}, fmt.Errorf("analyzing spectrum: %w", err)
	}
	if bands == nil {
		bands = defaultBands
	}
	for _, b := range bands {
		if b.MinHz > b.MaxHz {
			return SpectralResult{}, fmt.Errorf("%w: band %q has min %.1f Hz above max %.1f Hz",
				audio.ErrInvalidInput, b.Name, b.MinHz, b.MaxHz)
		}
	}

	sr := w.SampleRate()
	stft, err := spectral.NewSTFT().ComputeCentered(w.Mono(), SpectralWindowSize, SpectralHopSize, sr,
		windowing.NewHann(SpectralWindowSize, false))
	if err != nil {
		return SpectralResult{}, fmt.Errorf("computing STFT: %w", err)
	}
	freqs := stft.Frequencies()

	rms := make([]float64, len(bands))
	total := 0.0
	for i, b := range bands {
		stats := spectral.BandEnergy{MinHz: b.MinHz, MaxHz: b.MaxHz}.Compute(stft.Magnitude, freqs)
		rms[i] = stats.RMS
		total += stats.RMS * stats.RMS
	}

	result := SpectralResult{
		Bands:         make([]BandEnergy, len(bands)),
		TotalEnergyDB: 20 * math.Log10(math.Sqrt(total)+energyEpsilon),
	}
	for i, b := range bands {
		share := 0.0
		if total > 0 {
			share = rms[i] * rms[i] / total * 100
		}
		result.Bands[i] = BandEnergy{
			BandName:      b.Name,
			EnergyDB:      20 * math.Log10(rms[i]+energyEpsilon),
			EnergyPercent: share,
		}
	}

	avg := averageSpectrum(stft.Magnitude)
	result.CentroidHz = spectral.Centroid(avg, sr)
	result.RolloffHz = spectral.Rolloff(avg, sr, spectral.DefaultRolloffThreshold)

	logging.Debug("spectrum analyzed", logging.Fields{
		"component": "spectral",
		"frames":    stft.TimeFrames,
		"bands":     len(bands),
	})

	return result, nil
}

func averageSpectrum(spectrogram [][]float64) []float64 {
	if len(spectrogram) == 0 {
		return nil
	}
	avg := make([]float64, len(spectrogram[0]))
	for _, frame := range spectrogram {
		floats.Add(avg, frame)
	}
	floats.Scale(1/float64(len(spectrogram)), avg)
	return avg
}

// CompareSpectralBalance returns a's band levels minus b's, in dB, for every
// band name present in both.
func CompareSpectralBalance(a, b SpectralResult) map[string]float64 {
	diffs := make(map[string]float64, len(a.Bands))
	for _, band := range a.Bands {
		if other, ok := b.Band(band.BandName); ok {
			diffs[band.BandName] = band.EnergyDB - other.EnergyDB
		}
	}
	return diffs
}
