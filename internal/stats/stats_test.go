package stats

import (
	"math"
	"testing"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMean(t *testing.T) {
	if got := Mean([]float64{1, 2, 3}); got != 2 {
		t.Fatalf("Mean = %v, want 2", got)
	}
	if got := Mean(nil); got != 0 {
		t.Fatalf("Mean(nil) = %v, want 0", got)
	}
}

func TestVarianceAndStd(t *testing.T) {
	x := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Variance(x); !almost(got, 4) {
		t.Fatalf("Variance = %v, want 4", got)
	}
	if got := Std(x); !almost(got, 2) {
		t.Fatalf("Std = %v, want 2", got)
	}
	if got := Std([]float64{5, 5, 5}); !almost(got, 0) {
		t.Fatalf("Std of constants = %v, want 0", got)
	}
}

func TestMedian(t *testing.T) {
	if got := Median([]float64{3, 1, 2}); got != 2 {
		t.Fatalf("odd median = %v, want 2", got)
	}
	if got := Median([]float64{4, 1, 2, 3}); got != 2.5 {
		t.Fatalf("even median = %v, want 2.5", got)
	}
	// The input stays unsorted.
	x := []float64{3, 1, 2}
	Median(x)
	if x[0] != 3 {
		t.Fatal("Median sorted its input")
	}
}

func TestQuantile(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	if got := Quantile(x, 0.5); got != 3 {
		t.Fatalf("q50 = %v, want 3", got)
	}
	if got := Quantile(x, 0.25); got != 2 {
		t.Fatalf("q25 = %v, want 2", got)
	}
	if got := Quantile(x, 0); got != 1 {
		t.Fatalf("q0 = %v, want 1", got)
	}
	if got := Quantile(x, 1); got != 5 {
		t.Fatalf("q100 = %v, want 5", got)
	}
	// Interpolation between ranks.
	if got := Quantile([]float64{1, 2}, 0.5); got != 1.5 {
		t.Fatalf("interpolated = %v, want 1.5", got)
	}
}

func TestIQRBounds(t *testing.T) {
	lower, upper := IQRBounds([]float64{1, 2, 3, 4, 5, 100}, 1.5)
	if lower >= 1 {
		t.Fatalf("lower = %v, want below the data minimum", lower)
	}
	if upper >= 100 || upper <= 5 {
		t.Fatalf("upper = %v, want between 5 and 100", upper)
	}
}
