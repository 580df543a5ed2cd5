package filters

import "math"

// K-weighting pre-filter of ITU-R BS.1770-4. The two stages are designed
// for the actual sample rate rather than using the 48 kHz coefficient
// table, so any rate measures consistently.
const (
	KWeightingShelfFreq = 1500.0
	KWeightingShelfGain = 4.0
	KWeightingShelfQ    = 1 / math.Sqrt2
	KWeightingHPFFreq   = 38.0
	KWeightingHPFQ      = 0.5
)

// KWeighting cascades the high shelf (head effects) and the RLB high pass.
type KWeighting struct {
	shelf    *Biquad
	highpass *Biquad
}

// NewKWeighting designs the filter for sampleRate.
func NewKWeighting(sampleRate int) (*KWeighting, error) {
	shelf, err := NewHighShelf(sampleRate, KWeightingShelfFreq, KWeightingShelfGain, KWeightingShelfQ)
	if err != nil {
		return nil, err
	}

	highpass, err := NewHighPass(sampleRate, KWeightingHPFFreq, KWeightingHPFQ)
	if err != nil {
		return nil, err
	}

	return &KWeighting{shelf: shelf, highpass: highpass}, nil
}

// Process filters one sample through both stages.
func (k *KWeighting) Process(x float64) float64 {
	return k.highpass.Process(k.shelf.Process(x))
}

// ProcessBuffer filters input into a new slice. The filter state carries
// over between calls.
func (k *KWeighting) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = k.Process(x)
	}
	return output
}

// Reset clears both stages.
func (k *KWeighting) Reset() {
	k.shelf.Reset()
	k.highpass.Reset()
}

// Clone returns an independent filter for another channel.
func (k *KWeighting) Clone() *KWeighting {
	return &KWeighting{shelf: k.shelf.Clone(), highpass: k.highpass.Clone()}
}

// MagnitudeDB returns the combined gain at frequency.
func (k *KWeighting) MagnitudeDB(frequency float64, sampleRate int) float64 {
	return k.shelf.MagnitudeDB(frequency, sampleRate) + k.highpass.MagnitudeDB(frequency, sampleRate)
}
