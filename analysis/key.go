package analysis

import (
	"fmt"

	"github.com/RyanBlaney/mixref/algorithms/chroma"
	"github.com/RyanBlaney/mixref/algorithms/tonal"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

// KeyResult is a detected key. Key uses flat spelling apart from C# and F#.
type KeyResult struct {
	Key        string  `json:"key"`
	Camelot    string  `json:"camelot"`
	Confidence float64 `json:"confidence"`
	Root       int     `json:"root"`
	Mode       string  `json:"mode"`
}

// Label formats the key with its wheel code, e.g. "Eb minor (2A)".
func (k KeyResult) Label() string {
	return fmt.Sprintf("%s (%s)", k.Key, k.Camelot)
}

// DetectKey correlates the averaged constant-Q chroma of the mono mix with
// the Krumhansl-Schmuckler major and minor profiles.
func DetectKey(w audio.Waveform) (KeyResult, error) {
	if err := w.Validate(); err != nil {
		return KeyResult{}, fmt.Errorf("detecting key: %w", err)
	}

	cqt, err := chroma.NewChromaCQT(w.SampleRate(), chroma.DefaultCQTConfig())
	if err != nil {
		return KeyResult{}, fmt.Errorf("building constant-Q transform: %w", err)
	}

	frames, err := cqt.Chromagram(w.Mono())
	if err != nil {
		return KeyResult{}, fmt.Errorf("computing chroma: %w", err)
	}

	est, err := tonal.NewKeyEstimator().EstimateKey(chroma.Profile(frames))
	if err != nil {
		return KeyResult{}, fmt.Errorf("estimating key: %w", err)
	}

	result := KeyResult{
		Key:        est.Key.String(),
		Camelot:    tonal.CamelotFor(est.Key).String(),
		Confidence: est.Confidence,
		Root:       est.Key.Root,
		Mode:       est.Key.Mode.String(),
	}

	logging.Debug("key detected", logging.Fields{
		"component":  "key",
		"key":        result.Key,
		"confidence": result.Confidence,
	})

	return result, nil
}

// CamelotCode converts a key name such as "A minor" to its wheel code.
// Codes are accepted too and returned normalized.
func CamelotCode(keyOrCamelot string) (string, error) {
	c, err := parseKeyOrCamelot(keyOrCamelot)
	if err != nil {
		return "", err
	}
	return c.String(), nil
}

// CompatibleKeys returns the Camelot codes that mix harmonically with the
// given key or code: the relative key, then one step down and one step up
// the wheel. Unparseable input gives an empty slice.
func CompatibleKeys(keyOrCamelot string) []string {
	c, err := parseKeyOrCamelot(keyOrCamelot)
	if err != nil {
		return []string{}
	}

	neighbours := c.Compatible()
	out := make([]string, len(neighbours))
	for i, n := range neighbours {
		out[i] = n.String()
	}
	return out
}

func parseKeyOrCamelot(s string) (tonal.Camelot, error) {
	if k, err := tonal.ParseKey(s); err == nil {
		return tonal.CamelotFor(k), nil
	}
	c, err := tonal.ParseCamelot(s)
	if err != nil {
		return tonal.Camelot{}, fmt.Errorf("%q is neither a key nor a camelot code", s)
	}
	return c, nil
}

// KeyRelationKind describes how two keys mix.
type KeyRelationKind string

const (
	KeySame       KeyRelationKind = "same"
	KeyCompatible KeyRelationKind = "compatible"
	KeyClash      KeyRelationKind = "clash"
)

// KeyRelation compares two detected keys on the Camelot wheel.
func KeyRelation(a, b KeyResult) KeyRelationKind {
	ca, errA := tonal.ParseCamelot(a.Camelot)
	cb, errB := tonal.ParseCamelot(b.Camelot)
	switch {
	case errA != nil || errB != nil:
		return KeyClash
	case ca == cb:
		return KeySame
	case ca.IsCompatible(cb):
		return KeyCompatible
	}
	return KeyClash
}
