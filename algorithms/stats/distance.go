package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PearsonCorrelationFunc calculates the Pearson correlation coefficient.
// Constant or mismatched inputs, which leave the coefficient undefined,
// score 0 so callers can rank candidates without NaN checks.
func PearsonCorrelationFunc(a, b []float64) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}

	r := stat.Correlation(a, b, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// CosineSimilarityFunc calculates cosine similarity between two vectors
func CosineSimilarityFunc(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}

	return floats.Dot(a, b) / (normA * normB)
}

// Roll circularly shifts x left by k positions: out[i] = x[(i+k) mod n].
func Roll(x []float64, k int) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	k = ((k % n) + n) % n
	for i := range out {
		out[i] = x[(i+k)%n]
	}
	return out
}
