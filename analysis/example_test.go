package analysis_test

import (
	"fmt"

	"github.com/RyanBlaney/mixref/analysis"
)

func ExampleCorrectBPM() {
	res := analysis.CorrectBPM(87, analysis.GenreDnB, analysis.DefaultHalfTimeThreshold)
	fmt.Println(res.CorrectedBPM, res.WasCorrected, *res.InGenreRange)
	fmt.Println(res.CorrectionReason)
	// Output:
	// 174 true true
	// Detected half-time: 87.0 BPM doubled to 174.0 BPM
}

func ExampleCompatibleKeys() {
	fmt.Println(analysis.CompatibleKeys("C major"))
	fmt.Println(analysis.CompatibleKeys("8A"))
	// Output:
	// [8A 7B 9B]
	// [8B 7A 9A]
}
