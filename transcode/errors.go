package transcode

import (
	"errors"
	"fmt"

	"github.com/RyanBlaney/mixref/audio"
)

var (
	// ErrUnsupportedEncoding marks files whose container is recognised but
	// whose sample encoding the native decoders cannot read. DecodeFile
	// retries those with ffmpeg.
	ErrUnsupportedEncoding = errors.New("unsupported sample encoding")

	ErrInvalidFile = fmt.Errorf("%w: not a valid audio file", audio.ErrInvalidInput)
	ErrNoSamples   = fmt.Errorf("%w: no audio samples decoded", audio.ErrInvalidInput)
)
