package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/mixref/analysis"
	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
	"github.com/RyanBlaney/mixref/transcode"
)

var (
	analyzeGenre    string
	analyzePlatform string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze FILE",
	Short: "Measure loudness, tempo, key and spectral balance",
	Long: `Analyze a single audio file.

With --genre the tempo is corrected for half/double time detection and the
loudness is compared to the genre's club target. With --platform the
loudness is compared to that streaming platform's normalization target.`,
	Example: `  mixref analyze my_track.wav --platform spotify
  mixref analyze club_banger.flac --genre dnb --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		genre, platform, err := analyzeTargets()
		if err != nil {
			return err
		}

		w, err := loadWaveform(args[0], settings.TargetSampleRate)
		if err != nil {
			return err
		}
		logging.WithContext(cmd.Context()).Debug("audio decoded", logging.Fields{
			"file":        args[0],
			"sample_rate": w.SampleRate(),
			"channels":    w.NumChannels(),
		})

		report, err := analyzeWaveform(filepath.Base(args[0]), w, genre, platform)
		if err != nil {
			return err
		}

		if analyzeJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printAnalysis(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeGenre, "genre", "g", "", "Genre for tempo correction and loudness target (dnb, techno, house, dubstep, trance)")
	analyzeCmd.Flags().StringVarP(&analyzePlatform, "platform", "p", "", "Streaming platform loudness target (spotify, youtube, apple_music, tidal, soundcloud, club)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output results as JSON")
}

// analyzeTargets resolves flags over the settings file.
func analyzeTargets() (analysis.Genre, analysis.Platform, error) {
	genre, err := settings.ParsedGenre()
	if err != nil {
		return "", "", err
	}
	if analyzeGenre != "" {
		if genre, err = analysis.ParseGenre(analyzeGenre); err != nil {
			return "", "", err
		}
	}

	platform, err := settings.ParsedPlatform()
	if err != nil {
		return "", "", err
	}
	if analyzePlatform != "" {
		if platform, err = analysis.ParsePlatform(analyzePlatform); err != nil {
			return "", "", err
		}
	}

	return genre, platform, nil
}

func loadWaveform(path string, sampleRate int) (audio.Waveform, error) {
	cfg := transcode.DefaultDecoderConfig()
	cfg.TargetSampleRate = sampleRate

	data, err := transcode.NewDecoder(cfg).DecodeFile(path)
	if err != nil {
		return audio.Waveform{}, err
	}
	return data.Waveform()
}

// analysisReport is everything analyze prints.
type analysisReport struct {
	File       string                      `json:"file"`
	SampleRate int                         `json:"sample_rate"`
	Channels   int                         `json:"channels"`
	Duration   float64                     `json:"duration_seconds"`
	Loudness   analysis.LoudnessResult     `json:"loudness"`
	Tempo      analysis.TempoResult        `json:"tempo"`
	Correction *analysis.CorrectedBPM      `json:"bpm_correction,omitempty"`
	Key        analysis.KeyResult          `json:"key"`
	Spectrum   analysis.SpectralResult     `json:"spectrum"`
	Targets    []analysis.TargetComparison `json:"targets,omitempty"`
}

// BPM is the corrected tempo when a genre was given.
func (r *analysisReport) BPM() float64 {
	if r.Correction != nil {
		return r.Correction.CorrectedBPM
	}
	return r.Tempo.BPM
}

func analyzeWaveform(name string, w audio.Waveform, genre analysis.Genre, platform analysis.Platform) (*analysisReport, error) {
	logger := logging.WithFields(logging.Fields{"component": "analyze", "file": name})

	report := &analysisReport{
		File:       name,
		SampleRate: w.SampleRate(),
		Channels:   w.NumChannels(),
		Duration:   w.Duration().Seconds(),
	}

	var err error
	logger.Debug("calculating loudness")
	if report.Loudness, err = analysis.CalculateLUFS(w); err != nil {
		return nil, err
	}

	logger.Debug("detecting tempo")
	tempo, err := analysis.DetectBPM(w, settings.StartBPM, false)
	if err != nil {
		return nil, err
	}
	switch reading := analysis.ResolveTempo(tempo, genre, settings.HalfTimeThreshold).(type) {
	case analysis.RawTempo:
		report.Tempo = reading.Tempo
	case analysis.CorrectedTempo:
		report.Tempo = reading.Tempo
		report.Correction = &reading.Correction
	}

	logger.Debug("detecting key")
	if report.Key, err = analysis.DetectKey(w); err != nil {
		return nil, err
	}

	logger.Debug("analyzing spectrum")
	if report.Spectrum, err = analysis.AnalyzeSpectrum(w, analysis.DefaultBands()); err != nil {
		return nil, err
	}

	if target, ok := analysis.PlatformTarget(platform); ok {
		report.Targets = append(report.Targets, analysis.CompareToTarget(report.Loudness.IntegratedLUFS, target))
	}
	if target, ok := analysis.GenreTarget(genre); ok {
		report.Targets = append(report.Targets, analysis.CompareToTarget(report.Loudness.IntegratedLUFS, target))
	}

	return report, nil
}

func printAnalysis(out io.Writer, r *analysisReport) {
	loud := r.Loudness
	loudness := section{
		{"Integrated Loudness", formatLevel(loud.IntegratedLUFS, "LUFS"), lufsStatus(loud.IntegratedLUFS)},
		{"True Peak", formatLevel(loud.TruePeakDB, "dBTP"), peakStatus(loud.TruePeakDB)},
		{"Loudness Range", fmt.Sprintf("%.1f LU", loud.LoudnessRangeLU), ""},
	}

	tempoStatus := gray.Render("low confidence")
	if r.Tempo.Confidence > 0.7 {
		tempoStatus = green.Render("confident")
	}
	if c := r.Correction; c != nil {
		switch {
		case c.InGenreRange != nil && !*c.InGenreRange:
			tempoStatus = yellow.Render("outside " + string(c.Genre) + " range")
		case c.WasCorrected:
			tempoStatus = cyan.Render(c.CorrectionReason)
		default:
			tempoStatus = green.Render("in range")
		}
	}

	keyStatus := gray.Render("low confidence")
	if r.Key.Confidence > 0.6 {
		keyStatus = green.Render("confident")
	}

	musical := section{
		{"Tempo", fmt.Sprintf("%.1f BPM", r.BPM()), tempoStatus},
		{"Key", r.Key.Label(), keyStatus},
	}

	var spectrum section
	for _, b := range r.Spectrum.Bands {
		spectrum = append(spectrum, []string{b.BandName, energyBar(b.BandName, b.EnergyPercent), fmt.Sprintf("%.1f%%", b.EnergyPercent)})
	}

	fmt.Fprintln(out, renderTable("Analysis: "+r.File, []string{"Metric", "Value", "Status"}, loudness, musical, spectrum))

	for _, t := range r.Targets {
		fmt.Fprintln(out)
		fmt.Fprintln(out, bold.Render("Target: "+t.Target.Name))
		switch {
		case t.IsAcceptable && t.Difference >= -0.5 && t.Difference <= 0.5:
			fmt.Fprintln(out, green.Render(t.Message))
		case t.IsAcceptable:
			fmt.Fprintln(out, cyan.Render(t.Message))
		default:
			fmt.Fprintln(out, yellow.Render(t.Message))
		}
		if peak := r.Loudness.TruePeakDB; peak > t.Target.MaxTruePeak {
			fmt.Fprintln(out, red.Render(fmt.Sprintf("True peak %.1f dBTP exceeds the %.1f dBTP ceiling", peak, t.Target.MaxTruePeak)))
		}
	}
}
