package analysis

import (
	"errors"
	"slices"
	"testing"

	"github.com/RyanBlaney/mixref/audio"
)

func TestDetectKeyTriads(t *testing.T) {
	t.Parallel()

	sr := 22050
	tests := []struct {
		name    string
		freqs   []float64
		key     string
		camelot string
	}{
		{"C major", []float64{261.63, 329.63, 392.00}, "C major", "8B"},
		{"A minor", []float64{220.00, 261.63, 329.63}, "A minor", "8A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			res, err := DetectKey(mono(chord(sr, 3, tt.freqs...), sr))
			if err != nil {
				t.Fatalf("DetectKey() error = %v", err)
			}
			if res.Key != tt.key || res.Camelot != tt.camelot {
				t.Errorf("DetectKey() = %s (%s), want %s (%s)", res.Key, res.Camelot, tt.key, tt.camelot)
			}
			if res.Confidence < 0 || res.Confidence > 1 {
				t.Errorf("confidence = %v", res.Confidence)
			}
		})
	}
}

func TestDetectKeyInvalidInput(t *testing.T) {
	t.Parallel()

	if _, err := DetectKey(mono(nil, 22050)); !errors.Is(err, audio.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestCompatibleKeys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"1B", []string{"1A", "12B", "2B"}},
		{"12A", []string{"12B", "11A", "1A"}},
		{"8B", []string{"8A", "7B", "9B"}},
		{"C major", []string{"8A", "7B", "9B"}},
		{"Eb minor", []string{"2B", "1A", "3A"}},
		{"not a key", []string{}},
		{"13B", []string{}},
		{"", []string{}},
	}

	for _, tt := range tests {
		got := CompatibleKeys(tt.in)
		if got == nil || !slices.Equal(got, tt.want) {
			t.Errorf("CompatibleKeys(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestCamelotCode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"Eb minor": "2A", "F# major": "2B", "b minor": "10A", "5a": "5A"} {
		got, err := CamelotCode(in)
		if err != nil || got != want {
			t.Errorf("CamelotCode(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := CamelotCode("Z major"); err == nil {
		t.Error("CamelotCode accepted an invalid key")
	}
}

func TestKeyRelationAndLabel(t *testing.T) {
	t.Parallel()

	cMaj := KeyResult{Key: "C major", Camelot: "8B"}
	aMin := KeyResult{Key: "A minor", Camelot: "8A"}
	gMaj := KeyResult{Key: "G major", Camelot: "9B"}
	fsMaj := KeyResult{Key: "F# major", Camelot: "2B"}

	tests := []struct {
		a, b KeyResult
		want KeyRelationKind
	}{
		{cMaj, cMaj, KeySame},
		{cMaj, aMin, KeyCompatible},
		{cMaj, gMaj, KeyCompatible},
		{cMaj, fsMaj, KeyClash},
		{cMaj, KeyResult{}, KeyClash},
	}
	for _, tt := range tests {
		if got := KeyRelation(tt.a, tt.b); got != tt.want {
			t.Errorf("KeyRelation(%s, %s) = %s, want %s", tt.a.Camelot, tt.b.Camelot, got, tt.want)
		}
	}

	if got := (KeyResult{Key: "Eb minor", Camelot: "2A"}).Label(); got != "Eb minor (2A)" {
		t.Errorf("Label() = %q", got)
	}
}
