package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/RyanBlaney/mixref/analysis"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

func writeToneWAV(t *testing.T, name string, freq, amplitude float64) string {
	t.Helper()

	const sampleRate = 22050
	frames := 3 * sampleRate
	data := make([]int, 2*frames)
	for i := 0; i < frames; i++ {
		v := int(math.Round(32767 * amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate)))
		data[2*i], data[2*i+1] = v, v
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)
	buf := &goaudio.IntBuffer{
		Data:           data,
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: sampleRate},
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) string {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("mixref %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestWriteJSONReplacesInfinities(t *testing.T) {
	report := struct {
		Loudness analysis.LoudnessResult `json:"loudness"`
		Skipped  *float64                `json:"skipped,omitempty"`
		Name     string                  `json:"name"`
	}{
		Loudness: analysis.LoudnessResult{IntegratedLUFS: math.Inf(-1), TruePeakDB: -3.5},
		Name:     "silence.wav",
	}

	var buf bytes.Buffer
	if err := writeJSON(&buf, report); err != nil {
		t.Fatalf("writeJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	loud := decoded["loudness"].(map[string]any)
	if loud["integrated_lufs"] != nil {
		t.Errorf("integrated_lufs = %v, want null", loud["integrated_lufs"])
	}
	if loud["true_peak_db"] != -3.5 {
		t.Errorf("true_peak_db = %v", loud["true_peak_db"])
	}
	if _, ok := decoded["skipped"]; ok {
		t.Error("omitempty field was written")
	}

	// struct field order survives
	if i, j := strings.Index(buf.String(), "loudness"), strings.Index(buf.String(), "name"); i > j {
		t.Errorf("fields reordered:\n%s", buf.String())
	}
}

func TestFormatDifference(t *testing.T) {
	tests := []struct {
		diff      float64
		threshold float64
		want      string
	}{
		{0.05, 1, "match"},
		{-0.5, 1, "↓ -0.5 LUFS"},
		{2.5, 1, "↑ +2.5 LUFS"},
	}
	for _, tt := range tests {
		if got := formatDifference(tt.diff, "LUFS", tt.threshold); !strings.Contains(got, tt.want) {
			t.Errorf("formatDifference(%v) = %q, want %q", tt.diff, got, tt.want)
		}
	}

	if got := formatLevel(math.Inf(-1), "LUFS"); got != "-inf LUFS" {
		t.Errorf("formatLevel(-Inf) = %q", got)
	}
	if got := formatLevel(-7.25, ""); got != "-7.2" && got != "-7.3" {
		t.Errorf("formatLevel(-7.25) = %q", got)
	}
}

func TestAnalyzeWaveform(t *testing.T) {
	samples := make([]float64, 3*22050)
	for i := range samples {
		samples[i] = 0.5 * math.Sin(2*math.Pi*440*float64(i)/22050)
	}
	w := audio.NewMono(samples, 22050)

	report, err := analyzeWaveform("tone.wav", w, analysis.GenreDnB, analysis.PlatformSpotify)
	if err != nil {
		t.Fatalf("analyzeWaveform() error = %v", err)
	}

	if report.Correction == nil || report.Correction.Genre != analysis.GenreDnB {
		t.Errorf("Correction = %+v, want a DnB correction", report.Correction)
	}
	if len(report.Targets) != 2 {
		t.Fatalf("len(Targets) = %d, want platform and genre", len(report.Targets))
	}
	if report.Targets[0].Target.Name != "spotify" {
		t.Errorf("first target = %q", report.Targets[0].Target.Name)
	}
	if report.Key.Key != "A minor" && report.Key.Key != "A major" {
		t.Errorf("Key = %q, want an A key", report.Key.Key)
	}

	var out bytes.Buffer
	printAnalysis(&out, report)
	for _, want := range []string{"Integrated Loudness", "True Peak", "Tempo", "Key", "Sub", "Air", "Target: spotify"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}
}

func TestAnalyzeAndCompareCommands(t *testing.T) {
	track := writeToneWAV(t, "mix.wav", 220, 0.25)
	ref := writeToneWAV(t, "master.wav", 220, 0.7)

	out := execute(t, "analyze", track, "--json", "--platform", "club")
	var report map[string]any
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("analyze --json output is not JSON: %v\n%s", err, out)
	}
	if report["file"] != "mix.wav" || report["channels"] != 2.0 {
		t.Errorf("report header = %v %v", report["file"], report["channels"])
	}

	out = execute(t, "compare", track, ref, "--json")
	var cmp struct {
		Comparison  analysis.ComparisonResult `json:"comparison"`
		Suggestions []analysis.Suggestion     `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(out), &cmp); err != nil {
		t.Fatalf("compare --json output is not JSON: %v\n%s", err, out)
	}
	// 0.25 vs 0.7 amplitude is about 8.9 dB
	if d := cmp.Comparison.Loudness.LUFSDifference; d > -8 || d < -10 {
		t.Errorf("LUFSDifference = %v, want about -8.9", d)
	}
	if len(cmp.Suggestions) == 0 || cmp.Suggestions[0].Kind != analysis.SuggestLoudness {
		t.Errorf("Suggestions = %+v, want a loudness suggestion first", cmp.Suggestions)
	}

	compareJSON = false
	out = execute(t, "compare", track, ref)
	if !strings.Contains(out, "A/B Comparison: mix.wav vs master.wav") || !strings.Contains(out, "quieter") {
		t.Errorf("compare table output:\n%s", out)
	}

	out = execute(t, "version")
	if !strings.HasPrefix(out, "mixref ") {
		t.Errorf("version output = %q", out)
	}
}

func TestSetupTagsLogsWithCommand(t *testing.T) {
	var buf bytes.Buffer
	logOutput, debugMode = &buf, true
	t.Cleanup(func() {
		logOutput, debugMode = os.Stderr, false
		logging.SetGlobalLogger(nil)
	})

	c := &cobra.Command{Use: "analyze"}
	c.SetContext(context.Background())
	if err := setup(c, nil); err != nil {
		t.Fatalf("setup() error = %v", err)
	}

	logging.WithContext(c.Context()).Debug("decoded")
	if line := buf.String(); !strings.Contains(line, "[DEBUG] decoded command=analyze") {
		t.Errorf("log line = %q, want command field", line)
	}
}
