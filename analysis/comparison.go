package analysis

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/mixref/algorithms/stats"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

// DefaultSignificanceThreshold is the band difference, in percentage
// points, at which a difference is flagged.
const DefaultSignificanceThreshold = 3.0

// ErrUnmatchedBand is returned when the reference has no band of the same
// name as a track band.
var ErrUnmatchedBand = errors.New("unmatched band")

// LoudnessComparison holds track minus reference differences. Positive
// means the track is louder, peaks higher or is more dynamic.
type LoudnessComparison struct {
	TrackLUFS      float64 `json:"track_lufs"`
	ReferenceLUFS  float64 `json:"reference_lufs"`
	LUFSDifference float64 `json:"lufs_difference"`
	TrackPeak      float64 `json:"track_peak"`
	ReferencePeak  float64 `json:"reference_peak"`
	PeakDifference float64 `json:"peak_difference"`
	TrackLRA       float64 `json:"track_lra"`
	ReferenceLRA   float64 `json:"reference_lra"`
	LRADifference  float64 `json:"lra_difference"`
}

// BandComparison compares the energy share of one band.
type BandComparison struct {
	BandName        string  `json:"band_name"`
	TrackEnergy     float64 `json:"track_energy"`
	ReferenceEnergy float64 `json:"reference_energy"`
	Difference      float64 `json:"difference"`
	IsSignificant   bool    `json:"is_significant"`
}

// SpectralComparison keeps the track's band order. Similarity is the
// cosine similarity of the two band distributions, 1 for identical balance.
type SpectralComparison struct {
	Bands      []BandComparison `json:"bands"`
	Similarity float64          `json:"similarity"`
}

// ComparisonResult is a full A/B comparison. Tempo and key fields are nil
// unless they were requested.
type ComparisonResult struct {
	TrackName     string             `json:"track_name"`
	ReferenceName string             `json:"reference_name"`
	Loudness      LoudnessComparison `json:"loudness"`
	Spectral      SpectralComparison `json:"spectral"`

	TrackBPM      *float64 `json:"track_bpm,omitempty"`
	ReferenceBPM  *float64 `json:"reference_bpm,omitempty"`
	BPMDifference *float64 `json:"bpm_difference,omitempty"`

	TrackKey     *KeyResult      `json:"track_key,omitempty"`
	ReferenceKey *KeyResult      `json:"reference_key,omitempty"`
	KeyRelation  KeyRelationKind `json:"key_relation,omitempty"`
}

// CompareOptions configures CompareTracks. Zero values select the
// defaults: names "Track" and "Reference", DefaultSignificanceThreshold and
// DefaultStartBPM.
type CompareOptions struct {
	TrackName             string
	ReferenceName         string
	IncludeBPM            bool
	IncludeKey            bool
	SignificanceThreshold float64
	StartBPM              float64
}

func (o CompareOptions) withDefaults() CompareOptions {
	if o.TrackName == "" {
		o.TrackName = "Track"
	}
	if o.ReferenceName == "" {
		o.ReferenceName = "Reference"
	}
	if o.SignificanceThreshold <= 0 {
		o.SignificanceThreshold = DefaultSignificanceThreshold
	}
	if o.StartBPM <= 0 {
		o.StartBPM = DefaultStartBPM
	}
	return o
}

// CompareLoudness subtracts the reference from the track.
func CompareLoudness(track, ref LoudnessResult) LoudnessComparison {
	return LoudnessComparison{
		TrackLUFS:      track.IntegratedLUFS,
		ReferenceLUFS:  ref.IntegratedLUFS,
		LUFSDifference: difference(track.IntegratedLUFS, ref.IntegratedLUFS),
		TrackPeak:      track.TruePeakDB,
		ReferencePeak:  ref.TruePeakDB,
		PeakDifference: difference(track.TruePeakDB, ref.TruePeakDB),
		TrackLRA:       track.LoudnessRangeLU,
		ReferenceLRA:   ref.LoudnessRangeLU,
		LRADifference:  difference(track.LoudnessRangeLU, ref.LoudnessRangeLU),
	}
}

// difference treats two equal infinities (two silent tracks) as no
// difference instead of NaN.
func difference(a, b float64) float64 {
	if math.IsInf(a, 0) && a == b {
		return 0
	}
	return a - b
}

// CompareSpectral compares energy percentages band by band, matching bands
// by name. A band is significant when the absolute difference reaches
// threshold percentage points.
func CompareSpectral(track, ref SpectralResult, threshold float64) (SpectralComparison, error) {
	out := SpectralComparison{Bands: make([]BandComparison, 0, len(track.Bands))}
	trackShares := make([]float64, 0, len(track.Bands))
	refShares := make([]float64, 0, len(track.Bands))
	for _, tb := range track.Bands {
		rb, ok := ref.Band(tb.BandName)
		if !ok {
			return SpectralComparison{}, fmt.Errorf("%w: %q missing from reference", ErrUnmatchedBand, tb.BandName)
		}

		diff := tb.EnergyPercent - rb.EnergyPercent
		out.Bands = append(out.Bands, BandComparison{
			BandName:        tb.BandName,
			TrackEnergy:     tb.EnergyPercent,
			ReferenceEnergy: rb.EnergyPercent,
			Difference:      diff,
			IsSignificant:   math.Abs(diff) >= threshold,
		})
		trackShares = append(trackShares, tb.EnergyPercent)
		refShares = append(refShares, rb.EnergyPercent)
	}
	out.Similarity = stats.CosineSimilarityFunc(trackShares, refShares)
	return out, nil
}

// trackAnalysis gathers every measurement taken on one waveform.
type trackAnalysis struct {
	loudness LoudnessResult
	spectral SpectralResult
	tempo    *TempoResult
	key      *KeyResult
}

func analyzeTrack(w audio.Waveform, opts CompareOptions) (trackAnalysis, error) {
	var a trackAnalysis
	var err error

	if a.loudness, err = CalculateLUFS(w); err != nil {
		return a, err
	}
	if a.spectral, err = AnalyzeSpectrum(w, nil); err != nil {
		return a, err
	}
	if opts.IncludeBPM {
		t, err := DetectBPM(w, opts.StartBPM, false)
		if err != nil {
			return a, err
		}
		a.tempo = &t
	}
	if opts.IncludeKey {
		k, err := DetectKey(w)
		if err != nil {
			return a, err
		}
		a.key = &k
	}
	return a, nil
}

// CompareTracks analyzes both waveforms concurrently and reports track minus
// reference differences. Both must share a positive sample rate.
func CompareTracks(track, ref audio.Waveform, opts CompareOptions) (*ComparisonResult, error) {
	if track.SampleRate() <= 0 || ref.SampleRate() <= 0 {
		return nil, fmt.Errorf("comparing tracks: %w: track %d Hz, reference %d Hz",
			audio.ErrInvalidSampleRate, track.SampleRate(), ref.SampleRate())
	}
	if track.SampleRate() != ref.SampleRate() {
		return nil, fmt.Errorf("comparing tracks: %w: track %d Hz, reference %d Hz",
			audio.ErrSampleRateMismatch, track.SampleRate(), ref.SampleRate())
	}

	opts = opts.withDefaults()
	logger := logging.WithFields(logging.Fields{"component": "comparison"})
	logger.Debug("comparing tracks", logging.Fields{
		"track":     opts.TrackName,
		"reference": opts.ReferenceName,
		"bpm":       opts.IncludeBPM,
		"key":       opts.IncludeKey,
	})

	var (
		wg               sync.WaitGroup
		trackRes, refRes trackAnalysis
		trackErr, refErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		trackRes, trackErr = analyzeTrack(track, opts)
	}()
	go func() {
		defer wg.Done()
		refRes, refErr = analyzeTrack(ref, opts)
	}()
	wg.Wait()

	if trackErr != nil {
		return nil, fmt.Errorf("analyzing %s: %w", opts.TrackName, trackErr)
	}
	if refErr != nil {
		return nil, fmt.Errorf("analyzing %s: %w", opts.ReferenceName, refErr)
	}

	spectralCmp, err := CompareSpectral(trackRes.spectral, refRes.spectral, opts.SignificanceThreshold)
	if err != nil {
		return nil, err
	}

	result := &ComparisonResult{
		TrackName:     opts.TrackName,
		ReferenceName: opts.ReferenceName,
		Loudness:      CompareLoudness(trackRes.loudness, refRes.loudness),
		Spectral:      spectralCmp,
	}

	if trackRes.tempo != nil && refRes.tempo != nil {
		tb, rb := trackRes.tempo.BPM, refRes.tempo.BPM
		diff := tb - rb
		result.TrackBPM, result.ReferenceBPM, result.BPMDifference = &tb, &rb, &diff
	}

	if trackRes.key != nil && refRes.key != nil {
		result.TrackKey, result.ReferenceKey = trackRes.key, refRes.key
		result.KeyRelation = KeyRelation(*trackRes.key, *refRes.key)
	}

	return result, nil
}
