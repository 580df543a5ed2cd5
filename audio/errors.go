package audio

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is the root of every input validation failure. Callers
// match it with errors.Is regardless of the more specific cause.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrEmptyWaveform      = fmt.Errorf("%w: empty waveform", ErrInvalidInput)
	ErrInvalidSampleRate  = fmt.Errorf("%w: sample rate must be positive", ErrInvalidInput)
	ErrSampleRateMismatch = fmt.Errorf("%w: sample rates differ", ErrInvalidInput)
	ErrChannelLayout      = fmt.Errorf("%w: channels have different lengths", ErrInvalidInput)
)
