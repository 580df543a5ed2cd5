package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/mixref/analysis/config"
	"github.com/RyanBlaney/mixref/logging"
)

var (
	version    = "dev"
	debugMode  bool
	configPath string

	// settings is filled in by the root pre-run hook
	settings = config.DefaultAnalysisConfig()

	logOutput io.Writer = os.Stderr
)

// SetVersion sets the application version (called from main)
func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "mixref",
	Short: "Audio analysis for music producers",
	Long: `mixref measures a mix the way mastering engineers and DJs do.

It reports:
  - Integrated loudness, true peak and loudness range (EBU R128)
  - Tempo, with genre-aware half/double time correction
  - Musical key with its Camelot code
  - Energy across five frequency bands
  - A/B comparison against a reference track with mixing suggestions`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "JSON settings file")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(versionCmd)
}

// setup loads settings and routes logs to stderr so --json output on
// stdout stays clean.
func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		settings = loaded
	}

	colors := logOutput == io.Writer(os.Stderr) && logging.IsTerminal(os.Stderr)
	logger := logging.NewDefaultLoggerWithWriters(logOutput, logOutput, colors)

	level, err := logging.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if debugMode {
		level = logging.DebugLevel
	}
	logger.SetLevel(level)
	logging.SetGlobalLogger(logger)

	// every log line of a run is tagged with the subcommand
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.ContextWithFields(ctx, logging.Fields{"command": cmd.Name()}))

	return nil
}
