package transcode

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/RyanBlaney/mixref/logging"
)

// streamInfo describes the first audio stream reported by ffprobe
type streamInfo struct {
	SampleRate int
	Channels   int
	Codec      string
	Duration   float64
	Bitrate    int
}

// ffprobeStream mirrors the subset of `ffprobe -show_streams` we read.
// ffprobe prints numbers as strings.
type ffprobeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
}

const maxFFmpegChannels = 8

// runTool executes an external binary under the decoder timeout and
// returns its stdout. stderr is folded into the error on a non-zero exit.
func (d *Decoder) runTool(path string, args ...string) ([]byte, error) {
	ctx := context.Background()
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	out, err := exec.CommandContext(ctx, path, args...).Output()
	if err == nil {
		return out, nil
	}

	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s timed out after %s: %w", path, d.config.Timeout, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return nil, fmt.Errorf("%s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return nil, fmt.Errorf("%s: %w", path, err)
}

func (d *Decoder) probe(filename string) (*streamInfo, error) {
	out, err := d.runTool(d.config.FFprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		filename,
	)
	if err != nil {
		return nil, fmt.Errorf("probing %s: %w", filename, err)
	}
	return parseFFprobeOutput(out)
}

// parseFFprobeOutput validates the first stream of an ffprobe JSON report.
// A missing duration or bitrate is reported as zero.
func parseFFprobeOutput(data []byte) (*streamInfo, error) {
	var report struct {
		Streams []ffprobeStream `json:"streams"`
	}
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(report.Streams) == 0 {
		return nil, fmt.Errorf("%w: no audio stream", ErrInvalidFile)
	}

	s := report.Streams[0]
	if s.CodecType != "audio" {
		return nil, fmt.Errorf("%w: first stream is %q, not audio", ErrInvalidFile, s.CodecType)
	}

	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil || rate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %q", ErrInvalidFile, s.SampleRate)
	}
	if s.Channels <= 0 || s.Channels > maxFFmpegChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFile, s.Channels)
	}

	info := &streamInfo{
		SampleRate: rate,
		Channels:   s.Channels,
		Codec:      s.CodecName,
	}
	info.Duration, _ = strconv.ParseFloat(s.Duration, 64)
	info.Bitrate, _ = strconv.Atoi(s.BitRate)

	return info, nil
}

// decodeFileWithFFmpeg pipes the first audio stream out of ffmpeg as
// 64-bit float PCM at the stream's own rate and layout. Resampling is left
// to finish so every backend shares it.
func (d *Decoder) decodeFileWithFFmpeg(filename string) (*AudioData, error) {
	logger := d.logger.WithFields(logging.Fields{
		"backend":  "ffmpeg",
		"filename": filename,
	})

	info, err := d.probe(filename)
	if err != nil {
		return nil, err
	}

	logger.Debug("probed audio stream", logging.Fields{
		"sample_rate": info.SampleRate,
		"channels":    info.Channels,
		"codec":       info.Codec,
		"duration":    info.Duration,
		"bitrate":     info.Bitrate,
	})

	args := []string{
		"-v", "error",
		"-i", filename,
		"-map", "0:a:0",
		"-vn",
		"-f", "f64le",
		"-ac", strconv.Itoa(info.Channels),
		"-ar", strconv.Itoa(info.SampleRate),
	}
	if d.config.MaxDuration > 0 {
		args = append(args, "-t", strconv.FormatFloat(d.config.MaxDuration.Seconds(), 'f', 3, 64))
	}
	args = append(args, "pipe:1")

	started := time.Now()
	raw, err := d.runTool(d.config.FFmpegPath, args...)
	if err != nil {
		logger.Error(err, "ffmpeg decode failed")
		return nil, fmt.Errorf("decoding %s: %w", filename, err)
	}

	format := formatFromPath(filename)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	}

	pcm := bytesToFloat64(raw)
	logger.Debug("ffmpeg decode finished", logging.Fields{
		"samples": len(pcm),
		"elapsed": time.Since(started).String(),
	})

	return &AudioData{
		PCM:        pcm,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Metadata: &FileMetadata{
			Path:             filename,
			Format:           format,
			Codec:            info.Codec,
			SourceSampleRate: info.SampleRate,
			Decoder:          "ffmpeg",
		},
	}, nil
}

// bytesToFloat64 reads little-endian float64 samples. A trailing partial
// sample is ignored.
func bytesToFloat64(data []byte) []float64 {
	n := len(data) / 8
	if n == 0 {
		return nil
	}

	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
	}
	return samples
}

func (d *Decoder) checkFFmpegAvailability() error {
	for _, tool := range []string{d.config.FFmpegPath, d.config.FFprobePath} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found: %w", tool, err)
		}
	}
	return nil
}
