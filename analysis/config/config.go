// Package config holds the tunable settings of the analyze and compare
// commands.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/RyanBlaney/mixref/analysis"
	"github.com/RyanBlaney/mixref/logging"
)

// AnalysisConfig is loaded from JSON; fields missing from the file keep
// their defaults.
type AnalysisConfig struct {
	// Tempo
	StartBPM          float64 `json:"start_bpm"`
	HalfTimeThreshold float64 `json:"half_time_threshold"`
	Genre             string  `json:"genre,omitempty"`

	// Loudness targets
	Platform string `json:"platform,omitempty"`

	// Comparison
	SignificanceThreshold float64 `json:"significance_threshold"`
	IncludeBPM            bool    `json:"include_bpm"`
	IncludeKey            bool    `json:"include_key"`

	// Decoding, 0 keeps the file's rate
	TargetSampleRate int `json:"target_sample_rate"`

	LogLevel string `json:"log_level"`
}

// DefaultAnalysisConfig returns sensible defaults for dance music
func DefaultAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{
		StartBPM:              analysis.DefaultStartBPM,
		HalfTimeThreshold:     analysis.DefaultHalfTimeThreshold,
		SignificanceThreshold: analysis.DefaultSignificanceThreshold,
		IncludeBPM:            false, // tempo and key are the slow analyses
		IncludeKey:            false,
		TargetSampleRate:      0,
		LogLevel:              "info",
	}
}

// Load reads a JSON file over the defaults and validates the result.
func Load(path string) (*AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *AnalysisConfig) Validate() error {
	if c.StartBPM <= 0 {
		return fmt.Errorf("start_bpm must be positive, got %v", c.StartBPM)
	}
	if c.HalfTimeThreshold <= 0 {
		return fmt.Errorf("half_time_threshold must be positive, got %v", c.HalfTimeThreshold)
	}
	if c.SignificanceThreshold <= 0 {
		return fmt.Errorf("significance_threshold must be positive, got %v", c.SignificanceThreshold)
	}
	if c.TargetSampleRate < 0 {
		return fmt.Errorf("target_sample_rate must not be negative, got %d", c.TargetSampleRate)
	}
	if _, err := c.ParsedGenre(); err != nil {
		return err
	}
	if _, err := c.ParsedPlatform(); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParsedGenre returns "" when no genre is set.
func (c *AnalysisConfig) ParsedGenre() (analysis.Genre, error) {
	if c.Genre == "" {
		return "", nil
	}
	return analysis.ParseGenre(c.Genre)
}

// ParsedPlatform returns "" when no platform is set.
func (c *AnalysisConfig) ParsedPlatform() (analysis.Platform, error) {
	if c.Platform == "" {
		return "", nil
	}
	return analysis.ParsePlatform(c.Platform)
}

// CompareOptions builds the comparison settings for two named tracks.
func (c *AnalysisConfig) CompareOptions(trackName, referenceName string) analysis.CompareOptions {
	return analysis.CompareOptions{
		TrackName:             trackName,
		ReferenceName:         referenceName,
		IncludeBPM:            c.IncludeBPM,
		IncludeKey:            c.IncludeKey,
		SignificanceThreshold: c.SignificanceThreshold,
		StartBPM:              c.StartBPM,
	}
}
