package analysis

import (
	"math"
	"strings"
	"testing"
)

func TestPlatformTargets(t *testing.T) {
	t.Parallel()

	want := map[Platform]float64{
		PlatformSpotify: -14, PlatformAppleMusic: -16, PlatformYouTube: -14,
		PlatformTidal: -14, PlatformSoundCloud: -14, PlatformClub: -8,
	}
	for _, p := range Platforms() {
		tgt, ok := PlatformTarget(p)
		if !ok || tgt.TargetLUFS != want[p] {
			t.Errorf("PlatformTarget(%s) = %+v, %v", p, tgt, ok)
		}
	}

	for _, g := range Genres() {
		if _, ok := GenreTarget(g); !ok {
			t.Errorf("no loudness target for %s", g)
		}
	}
}

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Platform{"Spotify": PlatformSpotify, "apple": PlatformAppleMusic, "club": PlatformClub} {
		if got, err := ParsePlatform(in); err != nil || got != want {
			t.Errorf("ParsePlatform(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParsePlatform("radio"); err == nil {
		t.Error("ParsePlatform accepted an unknown platform")
	}
}

func TestCompareToTarget(t *testing.T) {
	t.Parallel()

	spotify, _ := PlatformTarget(PlatformSpotify)

	tests := []struct {
		lufs       float64
		acceptable bool
		contains   string
	}{
		{-14.2, true, "Perfect"},
		{-13.2, true, "Within tolerance"},
		{-10, false, "above"},
		{-20, false, "below"},
		{math.Inf(-1), false, "silent"},
	}

	for _, tt := range tests {
		got := CompareToTarget(tt.lufs, spotify)
		if got.IsAcceptable != tt.acceptable || !strings.Contains(got.Message, tt.contains) {
			t.Errorf("CompareToTarget(%v) = %+v", tt.lufs, got)
		}
	}

	if got := CompareToTarget(-10, spotify); got.Difference != 4 {
		t.Errorf("Difference = %v, want measured minus target", got.Difference)
	}
}
