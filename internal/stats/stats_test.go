package stats

import (
	"math"
	"testing"
)

func approx(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestComputeEmpty(t *testing.T) {
	got := ComputeWithCount(nil)

	if got.Count != 0 {
		t.Errorf("Count: got %d, want 0", got.Count)
	}
	if got.Mean != 0 || got.Std != 0 || got.CV != 0 || got.CILow != 0 || got.CIHigh != 0 {
		t.Errorf("empty input should yield the zero summary, got %+v", got)
	}
}

func TestComputeSingleSample(t *testing.T) {
	got := Compute([]float64{7.5})

	if got.Mean != 7.5 {
		t.Errorf("Mean: got %g, want 7.5", got.Mean)
	}
	if got.Std != 0 || got.CV != 0 {
		t.Errorf("single sample: std and cv should be 0, got %+v", got)
	}
	if got.CILow != 7.5 || got.CIHigh != 7.5 {
		t.Errorf("single sample: CI should collapse to the point, got [%g, %g]", got.CILow, got.CIHigh)
	}
}

func TestComputeKnownValues(t *testing.T) {
	// n=5, mean 14, population std sqrt(8), sample std sqrt(10),
	// sem sqrt(2), t(0.975, 4) = 2.776445.
	got := Compute([]float64{10, 12, 14, 16, 18})

	if !approx(got.Mean, 14, 1e-9) {
		t.Errorf("Mean: got %g, want 14", got.Mean)
	}
	if !approx(got.Std, math.Sqrt(8), 1e-9) {
		t.Errorf("Std: got %g, want %g", got.Std, math.Sqrt(8))
	}
	if !approx(got.CV, math.Sqrt(8)/14*100, 1e-9) {
		t.Errorf("CV: got %g, want %g", got.CV, math.Sqrt(8)/14*100)
	}

	wantMargin := 2.7764451 * math.Sqrt(2)
	if !approx(got.CILow, 14-wantMargin, 1e-3) || !approx(got.CIHigh, 14+wantMargin, 1e-3) {
		t.Errorf("CI: got [%g, %g], want [%g, %g]",
			got.CILow, got.CIHigh, 14-wantMargin, 14+wantMargin)
	}
}

func TestComputeZeroMean(t *testing.T) {
	// mean <= 0 defines CV as 0 rather than dividing by zero.
	got := Compute([]float64{0, 0, 0})

	if got.Mean != 0 || got.Std != 0 {
		t.Errorf("all-zero input: got mean %g std %g", got.Mean, got.Std)
	}
	if got.CV != 0 {
		t.Errorf("CV with zero mean: got %g, want 0", got.CV)
	}
	if got.CILow != 0 || got.CIHigh != 0 {
		t.Errorf("CI: got [%g, %g], want [0, 0]", got.CILow, got.CIHigh)
	}
}

func TestComputeIdenticalSamples(t *testing.T) {
	got := Compute([]float64{4.2, 4.2, 4.2, 4.2})

	if !approx(got.Mean, 4.2, 1e-9) || got.Std != 0 || got.CV != 0 {
		t.Errorf("identical samples: %+v", got)
	}
	if !approx(got.CILow, 4.2, 1e-9) || !approx(got.CIHigh, 4.2, 1e-9) {
		t.Errorf("identical samples: CI should be a point, got [%g, %g]", got.CILow, got.CIHigh)
	}
}

func TestComputeWithCount(t *testing.T) {
	got := ComputeWithCount([]float64{2, 4})

	if got.Count != 2 {
		t.Errorf("Count: got %d, want 2", got.Count)
	}
	if !approx(got.Mean, 3, 1e-9) {
		t.Errorf("Mean: got %g, want 3", got.Mean)
	}
	if !approx(got.Std, 1, 1e-9) {
		t.Errorf("Std: got %g, want 1 (population)", got.Std)
	}
}

func TestCIWidensWithSpread(t *testing.T) {
	narrow := Compute([]float64{10, 10.1, 9.9, 10.05, 9.95})
	wide := Compute([]float64{10, 14, 6, 12, 8})

	if (wide.CIHigh - wide.CILow) <= (narrow.CIHigh - narrow.CILow) {
		t.Errorf("wider spread should widen the CI: narrow [%g, %g], wide [%g, %g]",
			narrow.CILow, narrow.CIHigh, wide.CILow, wide.CIHigh)
	}
}
