package analysis

import "fmt"

// MaxSuggestions caps the advice list.
const MaxSuggestions = 5

const (
	loudnessGapLU   = 2.0
	peakWarningDBTP = -0.5
)

// SuggestionKind groups advice by what it is about.
type SuggestionKind string

const (
	SuggestLoudness SuggestionKind = "loudness"
	SuggestBand     SuggestionKind = "band"
	SuggestPeak     SuggestionKind = "peak"
)

// Suggestion is one piece of mixing advice.
type Suggestion struct {
	Kind    SuggestionKind `json:"kind"`
	Message string         `json:"message"`
}

var bandHints = map[string]string{
	"Sub":  "20-60 Hz",
	"Low":  "60-250 Hz",
	"Mid":  "250-2000 Hz",
	"High": "2-8 kHz",
	"Air":  "8-20 kHz",
}

func bandHint(name string) string {
	if h, ok := bandHints[name]; ok {
		return h
	}
	return "unknown"
}

// Suggestions turns a comparison into at most MaxSuggestions pieces of
// advice: a loudness gap over 2 dB, every significant band, and a track
// true peak above -0.5 dBTP, in that order.
func Suggestions(r *ComparisonResult) []Suggestion {
	if r == nil {
		return nil
	}

	var out []Suggestion

	switch diff := r.Loudness.LUFSDifference; {
	case diff < -loudnessGapLU:
		out = append(out, Suggestion{SuggestLoudness,
			fmt.Sprintf("Your track is %.1f dB quieter. Consider increasing gain or limiting.", -diff)})
	case diff > loudnessGapLU:
		out = append(out, Suggestion{SuggestLoudness,
			fmt.Sprintf("Your track is %.1f dB louder. May cause clipping or fatigue.", diff)})
	}

	for _, b := range r.Spectral.Bands {
		if !b.IsSignificant {
			continue
		}
		if b.Difference < 0 {
			out = append(out, Suggestion{SuggestBand,
				fmt.Sprintf("%s band is %.1f%% lower. Boost around %s.", b.BandName, -b.Difference, bandHint(b.BandName))})
		} else {
			out = append(out, Suggestion{SuggestBand,
				fmt.Sprintf("%s band is %.1f%% higher. Consider cutting around %s.", b.BandName, b.Difference, bandHint(b.BandName))})
		}
	}

	if peak := r.Loudness.TrackPeak; peak > peakWarningDBTP {
		out = append(out, Suggestion{SuggestPeak,
			fmt.Sprintf("True peak is %.1f dBTP (very close to 0dB). Risk of clipping on some systems.", peak)})
	}

	if len(out) > MaxSuggestions {
		out = out[:MaxSuggestions]
	}
	return out
}
