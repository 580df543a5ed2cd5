package transcode

import (
	"fmt"

	"github.com/RyanBlaney/mixref/algorithms/common"
	"github.com/RyanBlaney/mixref/audio"
)

// Resample converts every channel of w to sampleRate with cubic
// interpolation. The duration is preserved to within one sample.
func Resample(w audio.Waveform, sampleRate int) (audio.Waveform, error) {
	if err := w.Validate(); err != nil {
		return audio.Waveform{}, err
	}
	if sampleRate <= 0 {
		return audio.Waveform{}, fmt.Errorf("%w: target %d", audio.ErrInvalidSampleRate, sampleRate)
	}
	if sampleRate == w.SampleRate() {
		return w, nil
	}

	interp := common.NewInterpolator(common.Cubic)
	channels := w.Channels()
	for c, ch := range channels {
		channels[c] = interp.ResampleSignal(ch, w.SampleRate(), sampleRate)
	}

	return audio.NewWaveform(channels, sampleRate)
}
