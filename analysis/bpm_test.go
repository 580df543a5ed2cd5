package analysis

import (
	"testing"
)

func TestCorrectBPM(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bpm       float64
		genre     Genre
		threshold float64
		want      float64
		corrected bool
		reason    string
		inRange   *bool
	}{
		{
			name: "half-time dnb", bpm: 87, genre: GenreDnB, threshold: DefaultHalfTimeThreshold,
			want: 174, corrected: true, reason: "Detected half-time: 87.0 BPM doubled to 174.0 BPM", inRange: ptr(true),
		},
		{
			name: "canonical dnb", bpm: 174, genre: GenreDnB, threshold: DefaultHalfTimeThreshold,
			want: 174, inRange: ptr(true),
		},
		{
			name: "threshold is exclusive", bpm: 100, threshold: 100,
			want: 100,
		},
		{
			name: "no genre doubles", bpm: 64, threshold: DefaultHalfTimeThreshold,
			want: 128, corrected: true, reason: "Detected half-time: 64.0 BPM doubled to 128.0 BPM",
		},
		{
			name: "double-time", bpm: 340, genre: GenreDnB, threshold: 400,
			want: 170, corrected: true, reason: "Detected double-time: 340.0 BPM halved to 170.0 BPM", inRange: ptr(true),
		},
		{
			name: "original closer to typical", bpm: 150, genre: GenreDnB, threshold: 200,
			want: 150, inRange: ptr(false),
		},
		{
			name: "doubled kept when closer", bpm: 70, genre: GenreHouse, threshold: DefaultHalfTimeThreshold,
			want: 140, corrected: true, reason: "Detected half-time: 70.0 BPM doubled to 140.0 BPM", inRange: ptr(false),
		},
		{
			// |232-174| == |116-174|: equal distance keeps the doubled value
			name: "tie keeps doubled", bpm: 116, genre: GenreDnB, threshold: 120,
			want: 232, corrected: true, reason: "Detected half-time: 116.0 BPM doubled to 232.0 BPM", inRange: ptr(false),
		},
		{
			// above the threshold nothing is attempted, even far out of range
			name: "350 dnb untouched", bpm: 350, genre: GenreDnB, threshold: DefaultHalfTimeThreshold,
			want: 350, inRange: ptr(false),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CorrectBPM(tt.bpm, tt.genre, tt.threshold)

			if got.OriginalBPM != tt.bpm {
				t.Errorf("OriginalBPM = %v, want %v", got.OriginalBPM, tt.bpm)
			}
			if got.CorrectedBPM != tt.want {
				t.Errorf("CorrectedBPM = %v, want %v", got.CorrectedBPM, tt.want)
			}
			if got.WasCorrected != tt.corrected {
				t.Errorf("WasCorrected = %v, want %v", got.WasCorrected, tt.corrected)
			}
			if got.CorrectionReason != tt.reason {
				t.Errorf("CorrectionReason = %q, want %q", got.CorrectionReason, tt.reason)
			}
			switch {
			case tt.inRange == nil && got.InGenreRange != nil:
				t.Errorf("InGenreRange = %v, want nil", *got.InGenreRange)
			case tt.inRange != nil && (got.InGenreRange == nil || *got.InGenreRange != *tt.inRange):
				t.Errorf("InGenreRange = %v, want %v", got.InGenreRange, *tt.inRange)
			}
			if got.Genre != tt.genre {
				t.Errorf("Genre = %q, want %q", got.Genre, tt.genre)
			}
		})
	}
}

func TestCorrectBPMDoublesBelowThresholdForEveryGenre(t *testing.T) {
	t.Parallel()

	for _, g := range Genres() {
		r, _ := GenreRange(g)
		half := r.TypicalBPM / 2
		got := CorrectBPM(half, g, DefaultHalfTimeThreshold)
		if got.CorrectedBPM != r.TypicalBPM || !got.WasCorrected {
			t.Errorf("%s: CorrectBPM(%v) = %+v, want %v", g, half, got, r.TypicalBPM)
		}
	}
}

func TestGenreLookups(t *testing.T) {
	t.Parallel()

	if !IsInGenreRange(174, GenreDnB) || IsInGenreRange(120, GenreDnB) {
		t.Error("IsInGenreRange disagrees with the dnb range")
	}
	if !IsInGenreRange(118, GenreHouse) || !IsInGenreRange(128, GenreHouse) {
		t.Error("range bounds should be inclusive")
	}
	if IsInGenreRange(130, Genre("polka")) {
		t.Error("unknown genre should contain nothing")
	}

	r, ok := GenreRange(GenreTechno)
	if !ok || r.MinBPM != 120 || r.MaxBPM != 140 || r.TypicalBPM != 130 {
		t.Errorf("GenreRange(techno) = %+v, %v", r, ok)
	}

	for in, want := range map[string]Genre{"DnB": GenreDnB, " trance ": GenreTrance, "drum-and-bass": GenreDnB} {
		if got, err := ParseGenre(in); err != nil || got != want {
			t.Errorf("ParseGenre(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseGenre("polka"); err == nil {
		t.Error("ParseGenre accepted an unknown genre")
	}
}

func TestResolveTempo(t *testing.T) {
	t.Parallel()

	raw := TempoResult{BPM: 87, Confidence: 0.8}

	switch r := ResolveTempo(raw, "", DefaultHalfTimeThreshold).(type) {
	case RawTempo:
		if r.BPM() != 87 || r.Confidence() != 0.8 {
			t.Errorf("raw reading = %v/%v", r.BPM(), r.Confidence())
		}
	case CorrectedTempo:
		t.Error("no genre should give a raw reading")
	}

	switch r := ResolveTempo(raw, GenreDnB, DefaultHalfTimeThreshold).(type) {
	case RawTempo:
		t.Error("genre should give a corrected reading")
	case CorrectedTempo:
		if r.BPM() != 174 || !r.Correction.WasCorrected || r.Tempo.BPM != 87 {
			t.Errorf("corrected reading = %+v", r)
		}
	}
}

func ptr[T any](v T) *T { return &v }
