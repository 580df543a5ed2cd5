package analysis

import (
	"fmt"
	"math"
	"strings"
)

// Platform is a distribution target with a loudness normalization level.
type Platform string

const (
	PlatformSpotify    Platform = "spotify"
	PlatformAppleMusic Platform = "apple_music"
	PlatformYouTube    Platform = "youtube"
	PlatformTidal      Platform = "tidal"
	PlatformSoundCloud Platform = "soundcloud"
	PlatformClub       Platform = "club"
)

// LoudnessTarget is an integrated loudness goal with an acceptable window.
type LoudnessTarget struct {
	Name        string  `json:"name"`
	TargetLUFS  float64 `json:"target_lufs"`
	Tolerance   float64 `json:"tolerance"`
	MaxTruePeak float64 `json:"max_true_peak"`
}

var platformTargets = map[Platform]LoudnessTarget{
	PlatformSpotify:    {Name: "spotify", TargetLUFS: -14, Tolerance: 1, MaxTruePeak: -1},
	PlatformAppleMusic: {Name: "apple_music", TargetLUFS: -16, Tolerance: 1, MaxTruePeak: -1},
	PlatformYouTube:    {Name: "youtube", TargetLUFS: -14, Tolerance: 1, MaxTruePeak: -1},
	PlatformTidal:      {Name: "tidal", TargetLUFS: -14, Tolerance: 1, MaxTruePeak: -1},
	PlatformSoundCloud: {Name: "soundcloud", TargetLUFS: -14, Tolerance: 1, MaxTruePeak: -1},
	PlatformClub:       {Name: "club", TargetLUFS: -8, Tolerance: 2, MaxTruePeak: -0.3},
}

var genreTargets = map[Genre]LoudnessTarget{
	GenreDnB:     {Name: "dnb", TargetLUFS: -8, Tolerance: 2, MaxTruePeak: -0.3},
	GenreTechno:  {Name: "techno", TargetLUFS: -9, Tolerance: 2, MaxTruePeak: -0.3},
	GenreHouse:   {Name: "house", TargetLUFS: -9, Tolerance: 2, MaxTruePeak: -0.3},
	GenreDubstep: {Name: "dubstep", TargetLUFS: -7, Tolerance: 2, MaxTruePeak: -0.3},
	GenreTrance:  {Name: "trance", TargetLUFS: -9, Tolerance: 2, MaxTruePeak: -0.3},
}

// Platforms lists the supported platforms.
func Platforms() []Platform {
	return []Platform{PlatformSpotify, PlatformAppleMusic, PlatformYouTube, PlatformTidal, PlatformSoundCloud, PlatformClub}
}

// ParsePlatform accepts a platform name in any case; "apple" and
// "apple-music" mean apple_music.
func ParsePlatform(s string) (Platform, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "apple", "apple-music", "applemusic":
		name = string(PlatformAppleMusic)
	}
	p := Platform(name)
	if _, ok := platformTargets[p]; !ok {
		return "", fmt.Errorf("unknown platform %q (want one of %v)", s, Platforms())
	}
	return p, nil
}

func PlatformTarget(p Platform) (LoudnessTarget, bool) {
	t, ok := platformTargets[p]
	return t, ok
}

func GenreTarget(g Genre) (LoudnessTarget, bool) {
	t, ok := genreTargets[g]
	return t, ok
}

// TargetComparison is a measured loudness judged against a target.
// Difference is measured minus target.
type TargetComparison struct {
	Target       LoudnessTarget `json:"target"`
	Difference   float64        `json:"difference"`
	IsAcceptable bool           `json:"is_acceptable"`
	Message      string         `json:"message"`
}

// CompareToTarget checks lufs against t. Anything within half an LU is
// reported as a perfect match.
func CompareToTarget(lufs float64, t LoudnessTarget) TargetComparison {
	diff := lufs - t.TargetLUFS
	cmp := TargetComparison{
		Target:       t,
		Difference:   diff,
		IsAcceptable: math.Abs(diff) <= t.Tolerance,
	}

	switch {
	case math.IsInf(lufs, -1):
		cmp.Difference = math.Inf(-1)
		cmp.Message = "Track is silent"
	case math.Abs(diff) <= 0.5:
		cmp.Message = fmt.Sprintf("Perfect! %.1f LUFS matches the %.1f LUFS target", lufs, t.TargetLUFS)
	case cmp.IsAcceptable:
		cmp.Message = fmt.Sprintf("Within tolerance: %+.1f LU from the %.1f LUFS target", diff, t.TargetLUFS)
	case diff > 0:
		cmp.Message = fmt.Sprintf("%.1f LU above the %.1f LUFS target; it will be turned down", diff, t.TargetLUFS)
	default:
		cmp.Message = fmt.Sprintf("%.1f LU below the %.1f LUFS target; it will sound quieter", -diff, t.TargetLUFS)
	}

	return cmp
}
