package stats

import (
	"math"
	"testing"
)

func TestPearsonCorrelationFunc(t *testing.T) {
	t.Parallel()

	a := []float64{1, 2, 3, 4}
	if got := PearsonCorrelationFunc(a, []float64{2, 4, 6, 8}); math.Abs(got-1) > 1e-12 {
		t.Errorf("perfect correlation = %v", got)
	}
	if got := PearsonCorrelationFunc(a, []float64{4, 3, 2, 1}); math.Abs(got+1) > 1e-12 {
		t.Errorf("perfect anti-correlation = %v", got)
	}
	if got := PearsonCorrelationFunc(a, []float64{1, 1, 1, 1}); got != 0 {
		t.Errorf("constant input = %v, want 0", got)
	}
	if got := PearsonCorrelationFunc(a, []float64{1}); got != 0 {
		t.Errorf("mismatched input = %v, want 0", got)
	}
}

func TestRoll(t *testing.T) {
	t.Parallel()

	x := []float64{0, 1, 2, 3}
	got := Roll(x, 1)
	want := []float64{1, 2, 3, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Roll(x, 1) = %v, want %v", got, want)
		}
	}
	if got := Roll(x, -1); got[0] != 3 {
		t.Errorf("Roll(x, -1) = %v", got)
	}
}

func TestAutoCorrelationMatchesDirect(t *testing.T) {
	t.Parallel()

	x := []float64{1, -2, 3, 0.5, -1, 2}
	got := NewAutoCorrelation(3).Compute(x)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}

	for lag := 0; lag <= 3; lag++ {
		want := 0.0
		for i := lag; i < len(x); i++ {
			want += x[i] * x[i-lag]
		}
		if math.Abs(got[lag]-want) > 1e-9 {
			t.Errorf("r[%d] = %v, want %v", lag, got[lag], want)
		}
	}
}

func TestAutoCorrelationPeriodic(t *testing.T) {
	t.Parallel()

	x := make([]float64, 400)
	for i := 0; i < len(x); i += 20 {
		x[i] = 1
	}

	r := NewAutoCorrelation(60).ComputeNormalized(x)
	if r[0] != 1 {
		t.Errorf("r[0] = %v, want 1", r[0])
	}
	if r[20] < 0.9 || r[10] > 1e-9 {
		t.Errorf("r[20] = %v, r[10] = %v", r[20], r[10])
	}
}
