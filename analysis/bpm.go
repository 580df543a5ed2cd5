package analysis

import (
	"fmt"
	"strings"
)

// DefaultHalfTimeThreshold is the tempo below which a detection is assumed
// to be half-time.
const DefaultHalfTimeThreshold = 100.0

// Genre selects a conventional tempo range.
type Genre string

const (
	GenreDnB     Genre = "dnb"
	GenreTechno  Genre = "techno"
	GenreHouse   Genre = "house"
	GenreDubstep Genre = "dubstep"
	GenreTrance  Genre = "trance"
)

// BPMRange is the conventional tempo band of a genre.
type BPMRange struct {
	MinBPM     float64 `json:"min_bpm"`
	MaxBPM     float64 `json:"max_bpm"`
	TypicalBPM float64 `json:"typical_bpm"`
}

// Contains reports whether bpm lies in [MinBPM, MaxBPM].
func (r BPMRange) Contains(bpm float64) bool {
	return bpm >= r.MinBPM && bpm <= r.MaxBPM
}

var genreRanges = map[Genre]BPMRange{
	GenreDnB:     {MinBPM: 160, MaxBPM: 180, TypicalBPM: 174},
	GenreTechno:  {MinBPM: 120, MaxBPM: 140, TypicalBPM: 130},
	GenreHouse:   {MinBPM: 118, MaxBPM: 128, TypicalBPM: 124},
	GenreDubstep: {MinBPM: 135, MaxBPM: 145, TypicalBPM: 140},
	GenreTrance:  {MinBPM: 125, MaxBPM: 145, TypicalBPM: 138},
}

var genreAliases = map[string]Genre{
	"drum-and-bass": GenreDnB,
	"drumandbass":   GenreDnB,
	"d&b":           GenreDnB,
}

// Genres lists the supported genres.
func Genres() []Genre {
	return []Genre{GenreDnB, GenreTechno, GenreHouse, GenreDubstep, GenreTrance}
}

// ParseGenre accepts a genre name in any case.
func ParseGenre(s string) (Genre, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if g := Genre(name); isKnownGenre(g) {
		return g, nil
	}
	if g, ok := genreAliases[name]; ok {
		return g, nil
	}
	return "", fmt.Errorf("unknown genre %q (want one of %v)", s, Genres())
}

func isKnownGenre(g Genre) bool {
	_, ok := genreRanges[g]
	return ok
}

// GenreRange returns the tempo band of g.
func GenreRange(g Genre) (BPMRange, bool) {
	r, ok := genreRanges[g]
	return r, ok
}

// IsInGenreRange reports whether bpm is conventional for g. Unknown genres
// contain nothing.
func IsInGenreRange(bpm float64, g Genre) bool {
	r, ok := genreRanges[g]
	return ok && r.Contains(bpm)
}

// CorrectedBPM is a tempo after octave-error correction. InGenreRange is
// nil when no genre was given.
type CorrectedBPM struct {
	OriginalBPM      float64 `json:"original_bpm"`
	CorrectedBPM     float64 `json:"corrected_bpm"`
	WasCorrected     bool    `json:"was_corrected"`
	CorrectionReason string  `json:"correction_reason,omitempty"`
	InGenreRange     *bool   `json:"in_genre_range,omitempty"`
	Genre            Genre   `json:"genre,omitempty"`
}

// CorrectBPM fixes half-time detections and checks the result against the
// genre's range. An empty or unknown genre skips the range checks.
//
// A value below halfTimeThreshold is doubled. With a genre, a doubled value
// outside the range is replaced by half the original when that fits;
// otherwise the original is restored if it is strictly closer to the
// genre's typical tempo.
func CorrectBPM(bpm float64, genre Genre, halfTimeThreshold float64) CorrectedBPM {
	res := CorrectedBPM{
		OriginalBPM:  bpm,
		CorrectedBPM: bpm,
	}

	if bpm < halfTimeThreshold {
		res.CorrectedBPM = bpm * 2
		res.WasCorrected = true
		res.CorrectionReason = fmt.Sprintf("Detected half-time: %.1f BPM doubled to %.1f BPM", bpm, res.CorrectedBPM)
	}

	r, ok := genreRanges[genre]
	if !ok {
		return res
	}
	res.Genre = genre

	if res.WasCorrected && !r.Contains(res.CorrectedBPM) {
		if halved := bpm / 2; r.Contains(halved) {
			res.CorrectedBPM = halved
			res.CorrectionReason = fmt.Sprintf("Detected double-time: %.1f BPM halved to %.1f BPM", bpm, halved)
		} else if distance(res.CorrectedBPM, r.TypicalBPM) > distance(bpm, r.TypicalBPM) {
			res.CorrectedBPM = bpm
			res.WasCorrected = false
			res.CorrectionReason = ""
		}
	}

	inRange := r.Contains(res.CorrectedBPM)
	res.InGenreRange = &inRange
	return res
}

func distance(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// TempoReading is either a RawTempo or a CorrectedTempo. The set is closed;
// switch on the concrete type.
type TempoReading interface {
	BPM() float64
	Confidence() float64
	isTempoReading()
}

// RawTempo is a detection reported as is.
type RawTempo struct {
	Tempo TempoResult `json:"tempo"`
}

func (r RawTempo) BPM() float64        { return r.Tempo.BPM }
func (r RawTempo) Confidence() float64 { return r.Tempo.Confidence }
func (RawTempo) isTempoReading()       {}

// CorrectedTempo is a detection that went through CorrectBPM.
type CorrectedTempo struct {
	Tempo      TempoResult  `json:"tempo"`
	Correction CorrectedBPM `json:"correction"`
}

func (c CorrectedTempo) BPM() float64        { return c.Correction.CorrectedBPM }
func (c CorrectedTempo) Confidence() float64 { return c.Tempo.Confidence }
func (CorrectedTempo) isTempoReading()       {}

// ResolveTempo applies genre correction when a genre is given and wraps
// the outcome.
func ResolveTempo(t TempoResult, genre Genre, halfTimeThreshold float64) TempoReading {
	if !isKnownGenre(genre) {
		return RawTempo{Tempo: t}
	}
	return CorrectedTempo{Tempo: t, Correction: CorrectBPM(t.BPM, genre, halfTimeThreshold)}
}
