// Package tonal estimates musical key from pitch class profiles.
package tonal

import (
	"fmt"
	"math"
	"strings"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/algorithms/stats"
)

// KeyMode represents major or minor mode
type KeyMode int

const (
	KeyModeMajor KeyMode = iota
	KeyModeMinor
)

func (m KeyMode) String() string {
	if m == KeyModeMinor {
		return "minor"
	}
	return "major"
}

// PitchNames uses flat spelling except for C# and F#.
var PitchNames = [12]string{"C", "C#", "D", "Eb", "E", "F", "F#", "G", "Ab", "A", "Bb", "B"}

// Krumhansl-Schmuckler probe tone profiles, tonic first.
var (
	majorProfile = []float64{6.35, 2.23, 3.48, 2.33, 4.38, 4.09, 2.52, 5.19, 2.39, 3.66, 2.29, 2.88}
	minorProfile = []float64{6.33, 2.68, 3.52, 5.38, 2.60, 3.53, 2.54, 4.75, 3.98, 2.69, 3.34, 3.17}
)

// enharmonic spellings accepted by ParseKey
var pitchAliases = map[string]int{
	"DB": 1, "D#": 3, "GB": 6, "G#": 8, "A#": 10,
}

// Key is a root pitch class and mode.
type Key struct {
	Root int
	Mode KeyMode
}

// String returns names like "Eb minor".
func (k Key) String() string {
	return PitchNames[k.Root] + " " + k.Mode.String()
}

// ParseKey parses "C major", "Eb minor" and sharp spellings such as
// "D# minor". Case is ignored.
func ParseKey(s string) (Key, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return Key{}, fmt.Errorf("invalid key %q", s)
	}

	root := -1
	note := strings.ToUpper(parts[0])
	for i, name := range PitchNames {
		if strings.ToUpper(name) == note {
			root = i
			break
		}
	}
	if root < 0 {
		r, ok := pitchAliases[note]
		if !ok {
			return Key{}, fmt.Errorf("invalid key root %q", parts[0])
		}
		root = r
	}

	switch strings.ToLower(parts[1]) {
	case "major", "maj":
		return Key{Root: root, Mode: KeyModeMajor}, nil
	case "minor", "min":
		return Key{Root: root, Mode: KeyModeMinor}, nil
	}
	return Key{}, fmt.Errorf("invalid key mode %q", parts[1])
}

// KeyCandidate is one of the 24 keys with its template correlation.
type KeyCandidate struct {
	Key   Key
	Score float64
}

// KeyEstimationResult holds the winning key and every candidate in
// evaluation order (C major, C minor, C# major, ...).
type KeyEstimationResult struct {
	Key        Key
	Score      float64
	Confidence float64
	Candidates []KeyCandidate
}

// KeyEstimator matches a chroma profile against rotated major and minor
// templates.
type KeyEstimator struct {
	correlate func(a, b []float64) float64
}

func NewKeyEstimator() *KeyEstimator {
	return &KeyEstimator{correlate: stats.PearsonCorrelationFunc}
}

// EstimateKey scores all 24 keys. For root r the chroma is rotated so r
// lands on index 0 before correlating. Non-finite scores count as 0 and the
// first of equal scores wins.
//
// Confidence is (best - second) / best when the best score is strictly
// higher than the runner-up, 0.5 otherwise, clamped to [0, 1].
func (ke *KeyEstimator) EstimateKey(chroma []float64) (KeyEstimationResult, error) {
	if len(chroma) != len(PitchNames) {
		return KeyEstimationResult{}, fmt.Errorf("chroma must have %d bins, got %d", len(PitchNames), len(chroma))
	}

	candidates := make([]KeyCandidate, 0, 24)
	for root := range PitchNames {
		rolled := stats.Roll(chroma, root)
		candidates = append(candidates,
			KeyCandidate{Key{root, KeyModeMajor}, finite(ke.correlate(rolled, majorProfile))},
			KeyCandidate{Key{root, KeyModeMinor}, finite(ke.correlate(rolled, minorProfile))},
		)
	}

	best := 0
	for i, c := range candidates {
		if c.Score > candidates[best].Score {
			best = i
		}
	}

	second := math.Inf(-1)
	for i, c := range candidates {
		if i != best && c.Score > second {
			second = c.Score
		}
	}

	top := candidates[best].Score
	confidence := 0.5
	if top > second {
		confidence = (top - second) / top
	}

	return KeyEstimationResult{
		Key:        candidates[best].Key,
		Score:      top,
		Confidence: common.Clamp(confidence, 0, 1),
		Candidates: candidates,
	}, nil
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
