// Package transcode loads audio files into waveforms.
package transcode

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/mixref/audio"
	"github.com/RyanBlaney/mixref/logging"
)

// AudioData represents decoded audio data
type AudioData struct {
	PCM        []float64     `json:"-"` // Interleaved samples in [-1, 1]
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
	Metadata   *FileMetadata `json:"metadata,omitempty"`
}

// FileMetadata describes where the samples came from
type FileMetadata struct {
	Path             string `json:"path"`
	Format           string `json:"format"`
	Codec            string `json:"codec,omitempty"`
	BitDepth         int    `json:"bit_depth,omitempty"`
	SourceSampleRate int    `json:"source_sample_rate"`
	Decoder          string `json:"decoder"` // "native" or "ffmpeg"
	Resampled        bool   `json:"resampled"`
}

// Waveform splits the interleaved PCM into a waveform.
func (a *AudioData) Waveform() (audio.Waveform, error) {
	return audio.FromInterleaved(a.PCM, a.Channels, a.SampleRate)
}

// DecoderConfig holds decoder configuration
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"` // 0 keeps the file's rate
	MaxDuration      time.Duration `json:"max_duration"`       // 0 means no limit
	FFmpegPath       string        `json:"ffmpeg_path"`
	FFprobePath      string        `json:"ffprobe_path"`
	Timeout          time.Duration `json:"timeout"` // Timeout for ffmpeg operations
	DisableFFmpeg    bool          `json:"disable_ffmpeg"`
}

// DefaultDecoderConfig returns default decoder configuration
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 0,
		MaxDuration:      0,
		FFmpegPath:       "ffmpeg",  // Assume in PATH
		FFprobePath:      "ffprobe", // Assume in PATH
		Timeout:          2 * time.Minute,
	}
}

// Decoder reads audio files, natively where a Go decoder exists and through
// ffmpeg otherwise.
type Decoder struct {
	config *DecoderConfig
	logger logging.Logger
}

// NewDecoder creates a new audio decoder
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "audio_decoder"}),
	}
}

// DecodeFile decodes an audio file and returns PCM data. The format is
// chosen by extension; unknown extensions and encodings the native decoders
// reject go through ffmpeg.
func (d *Decoder) DecodeFile(filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"function": "DecodeFile",
		"filename": filename,
	})

	format := formatFromPath(filename)
	logger.Debug("Starting audio file decode", logging.Fields{"format": format})

	var (
		data *AudioData
		err  error
	)
	if format != "" {
		data, err = d.decodeNative(filename, format)
		if err != nil && errors.Is(err, ErrUnsupportedEncoding) && !d.config.DisableFFmpeg {
			logger.Debug("Native decoder cannot read encoding, retrying with ffmpeg", logging.Fields{
				"error": err.Error(),
			})
			data, err = d.decodeFileWithFFmpeg(filename)
		}
	} else {
		if d.config.DisableFFmpeg {
			return nil, fmt.Errorf("%w: %s has no native decoder", ErrUnsupportedEncoding, filepath.Ext(filename))
		}
		data, err = d.decodeFileWithFFmpeg(filename)
	}
	if err != nil {
		logger.Error(err, "Failed to decode audio file")
		return nil, err
	}

	return d.finish(data, logger)
}

// DecodeReader decodes an in-memory file of a natively supported format
// ("wav", "aiff", "mp3" or "ogg").
func (d *Decoder) DecodeReader(r io.ReadSeeker, format string) (*AudioData, error) {
	data, err := decodeNativeReader(r, format)
	if err != nil {
		return nil, err
	}
	return d.finish(data, d.logger)
}

func (d *Decoder) decodeNative(filename, format string) (*AudioData, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	data, err := decodeNativeReader(f, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}
	data.Metadata.Path = filename
	return data, nil
}

// finish applies the duration limit and resampling shared by every decoder.
func (d *Decoder) finish(data *AudioData, logger logging.Logger) (*AudioData, error) {
	if data.Channels <= 0 || len(data.PCM) < data.Channels {
		return nil, ErrNoSamples
	}

	if d.config.MaxDuration > 0 {
		maxFrames := int(d.config.MaxDuration.Seconds() * float64(data.SampleRate))
		if maxFrames*data.Channels < len(data.PCM) {
			data.PCM = data.PCM[:maxFrames*data.Channels]
		}
	}

	if target := d.config.TargetSampleRate; target > 0 && target != data.SampleRate {
		w, err := data.Waveform()
		if err != nil {
			return nil, err
		}
		resampled, err := Resample(w, target)
		if err != nil {
			return nil, err
		}
		data.PCM = resampled.Interleaved()
		data.SampleRate = target
		if data.Metadata != nil {
			data.Metadata.Resampled = true
		}
	}

	frames := len(data.PCM) / data.Channels
	data.Duration = time.Duration(float64(frames) / float64(data.SampleRate) * float64(time.Second))

	logger.Debug("Audio decode completed", logging.Fields{
		"sample_rate": data.SampleRate,
		"channels":    data.Channels,
		"frames":      frames,
		"duration":    data.Duration.Seconds(),
	})

	return data, nil
}

// ValidateConfig validates the decoder configuration
func (d *Decoder) ValidateConfig() error {
	if d.config.TargetSampleRate < 0 {
		return fmt.Errorf("target sample rate must not be negative: %d", d.config.TargetSampleRate)
	}

	if d.config.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive: %v", d.config.Timeout)
	}

	if !d.config.DisableFFmpeg {
		if err := d.checkFFmpegAvailability(); err != nil {
			d.logger.Warn("ffmpeg not available, only native formats can be read", logging.Fields{
				"error": err.Error(),
			})
		}
	}

	return nil
}

// SupportedFormats lists the extensions read without ffmpeg.
func SupportedFormats() []string {
	return []string{".wav", ".wave", ".aif", ".aiff", ".aifc", ".mp3", ".ogg", ".oga"}
}

func formatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return "wav"
	case ".aif", ".aiff", ".aifc":
		return "aiff"
	case ".mp3":
		return "mp3"
	case ".ogg", ".oga":
		return "ogg"
	default:
		return ""
	}
}
