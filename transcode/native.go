package transcode

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/aiff"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

func decodeNativeReader(r io.ReadSeeker, format string) (*AudioData, error) {
	switch format {
	case "wav":
		return decodeWAV(r)
	case "aiff":
		return decodeAIFF(r)
	case "mp3":
		return decodeMP3(r)
	case "ogg":
		return decodeOgg(r)
	default:
		return nil, fmt.Errorf("%w: no native decoder for %q", ErrUnsupportedEncoding, format)
	}
}

func decodeWAV(r io.ReadSeeker) (*AudioData, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrInvalidFile)
	}

	// go-audio reads integer PCM only; float WAVs go to ffmpeg
	if dec.WavAudioFormat != wavFormatPCM && dec.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("%w: WAV format tag %d", ErrUnsupportedEncoding, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading WAV PCM: %w", err)
	}

	// 8-bit WAV is stored unsigned
	data, err := fromIntBuffer(buf, int(dec.BitDepth), dec.BitDepth == 8)
	if err != nil {
		return nil, err
	}
	data.Metadata.Format = "wav"
	data.Metadata.Codec = "pcm"
	return data, nil
}

func decodeAIFF(r io.ReadSeeker) (*AudioData, error) {
	dec := aiff.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: missing FORM/AIFF header", ErrInvalidFile)
	}
	dec.ReadInfo()

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading AIFF PCM: %w", err)
	}

	data, err := fromIntBuffer(buf, int(dec.BitDepth), false)
	if err != nil {
		return nil, err
	}
	data.Metadata.Format = "aiff"
	data.Metadata.Codec = "pcm"
	return data, nil
}

// fromIntBuffer scales integer PCM to [-1, 1).
func fromIntBuffer(buf *goaudio.IntBuffer, bitDepth int, unsigned bool) (*AudioData, error) {
	if buf == nil || buf.Format == nil {
		return nil, fmt.Errorf("%w: missing PCM format", ErrInvalidFile)
	}

	switch bitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedEncoding, bitDepth)
	}
	if buf.Format.NumChannels <= 0 || buf.Format.SampleRate <= 0 {
		return nil, fmt.Errorf("%w: %d channels at %d Hz", ErrInvalidFile, buf.Format.NumChannels, buf.Format.SampleRate)
	}

	fullScale := float64(int64(1) << (bitDepth - 1))
	offset := 0
	if unsigned {
		offset = 1 << (bitDepth - 1)
	}

	pcm := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		pcm[i] = float64(v-offset) / fullScale
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: buf.Format.SampleRate,
		Channels:   buf.Format.NumChannels,
		Metadata: &FileMetadata{
			BitDepth:         bitDepth,
			SourceSampleRate: buf.Format.SampleRate,
			Decoder:          "native",
		},
	}, nil
}

func decodeMP3(r io.Reader) (*AudioData, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("reading MP3 frames: %w", err)
	}

	// go-mp3 always emits 16-bit little-endian stereo
	const channels = 2
	n := len(raw) / 2
	pcm := make([]float64, n-n%channels)
	for i := range pcm {
		pcm[i] = float64(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768.0
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: dec.SampleRate(),
		Channels:   channels,
		Metadata: &FileMetadata{
			Format:           "mp3",
			Codec:            "mp3",
			BitDepth:         16,
			SourceSampleRate: dec.SampleRate(),
			Decoder:          "native",
		},
	}, nil
}

func decodeOgg(r io.Reader) (*AudioData, error) {
	samples, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}

	pcm := make([]float64, len(samples))
	for i, v := range samples {
		pcm[i] = float64(v)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: format.SampleRate,
		Channels:   format.Channels,
		Metadata: &FileMetadata{
			Format:           "ogg",
			Codec:            "vorbis",
			SourceSampleRate: format.SampleRate,
			Decoder:          "native",
		},
	}, nil
}
