package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/mixref/analysis"
	"github.com/RyanBlaney/mixref/logging"
)

var (
	compareBPM       bool
	compareKey       bool
	compareJSON      bool
	compareThreshold float64
)

var compareCmd = &cobra.Command{
	Use:   "compare TRACK REFERENCE",
	Short: "Compare a track against a reference",
	Long: `Compare your track against a professional reference.

Loudness and spectral balance are always compared; tempo and key are
optional because they take longest. The reference is resampled to the
track's sample rate when they differ.`,
	Example: `  mixref compare my_mix.wav pro_reference.wav
  mixref compare my_mix.wav reference.mp3 --bpm --key --json`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		trackPath, refPath := args[0], args[1]

		track, err := loadWaveform(trackPath, settings.TargetSampleRate)
		if err != nil {
			return fmt.Errorf("loading track: %w", err)
		}
		ref, err := loadWaveform(refPath, track.SampleRate())
		if err != nil {
			return fmt.Errorf("loading reference: %w", err)
		}

		opts := settings.CompareOptions(filepath.Base(trackPath), filepath.Base(refPath))
		opts.IncludeBPM = opts.IncludeBPM || compareBPM
		opts.IncludeKey = opts.IncludeKey || compareKey
		if cmd.Flags().Changed("threshold") {
			opts.SignificanceThreshold = compareThreshold
		}

		logging.WithContext(cmd.Context()).Debug("comparing tracks", logging.Fields{
			"track":       opts.TrackName,
			"reference":   opts.ReferenceName,
			"sample_rate": track.SampleRate(),
		})

		result, err := analysis.CompareTracks(track, ref, opts)
		if err != nil {
			return err
		}
		report := compareReport{
			ComparisonResult: result,
			Suggestions:      analysis.Suggestions(result),
		}

		if compareJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printComparison(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	compareCmd.Flags().BoolVar(&compareBPM, "bpm", false, "Include tempo detection and comparison (slower)")
	compareCmd.Flags().BoolVar(&compareKey, "key", false, "Include key detection and comparison (slower)")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "Output results as JSON")
	compareCmd.Flags().Float64Var(&compareThreshold, "threshold", analysis.DefaultSignificanceThreshold, "Band difference in percentage points that counts as significant")
}

type compareReport struct {
	*analysis.ComparisonResult `json:"comparison"`
	Suggestions                []analysis.Suggestion `json:"suggestions"`
}

func printComparison(out io.Writer, r compareReport) {
	l := r.Loudness
	loudness := section{
		{"Integrated LUFS", formatLevel(l.TrackLUFS, ""), formatLevel(l.ReferenceLUFS, ""), formatDifference(l.LUFSDifference, "LUFS", 1)},
		{"True Peak", formatLevel(l.TrackPeak, ""), formatLevel(l.ReferencePeak, ""), formatDifference(l.PeakDifference, "dBTP", 1)},
		{"Loudness Range", fmt.Sprintf("%.1f", l.TrackLRA), fmt.Sprintf("%.1f", l.ReferenceLRA), formatDifference(l.LRADifference, "LU", 1)},
	}

	var spectral section
	for _, b := range r.Spectral.Bands {
		spectral = append(spectral, []string{
			b.BandName + " Band",
			fmt.Sprintf("%.1f%%", b.TrackEnergy),
			fmt.Sprintf("%.1f%%", b.ReferenceEnergy),
			formatBandDifference(b.Difference, b.IsSignificant),
		})
	}

	spectral = append(spectral, []string{"Balance Similarity", "", "", fmt.Sprintf("%.1f%%", 100*r.Spectral.Similarity)})

	sections := []section{loudness, spectral}
	if r.TrackBPM != nil && r.ReferenceBPM != nil && r.BPMDifference != nil {
		sections = append(sections, section{{
			"Tempo (BPM)",
			fmt.Sprintf("%.1f", *r.TrackBPM),
			fmt.Sprintf("%.1f", *r.ReferenceBPM),
			formatDifference(*r.BPMDifference, "BPM", 2),
		}})
	}
	if r.TrackKey != nil && r.ReferenceKey != nil {
		sections = append(sections, section{{
			"Musical Key",
			r.TrackKey.Label(),
			r.ReferenceKey.Label(),
			keyRelationLabel(r.KeyRelation),
		}})
	}

	title := fmt.Sprintf("A/B Comparison: %s vs %s", r.TrackName, r.ReferenceName)
	fmt.Fprintln(out, renderTable(title, []string{"Metric", "Your Track", "Reference", "Difference"}, sections...))

	if len(r.Suggestions) == 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, green.Render("Your mix is close to the reference."))
		return
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, bold.Render("Suggestions:"))
	for _, s := range r.Suggestions {
		fmt.Fprintf(out, "  %s %s\n", yellow.Render("•"), s.Message)
	}
}

func keyRelationLabel(k analysis.KeyRelationKind) string {
	switch k {
	case analysis.KeySame:
		return green.Render("same")
	case analysis.KeyCompatible:
		return cyan.Render("compatible")
	default:
		return yellow.Render("clash")
	}
}
