// Package stats computes descriptive and inferential statistics over spot
// diameters.
package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// confidenceLevel is the two-sided coverage of the reported interval.
const confidenceLevel = 0.95

// Summary holds descriptive statistics for a set of diameters.
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"` // population standard deviation
	CV   float64 `json:"cv"`  // coefficient of variation, percent

	// 95% two-sided confidence interval for the mean. With one sample or
	// fewer it collapses to (Mean, Mean).
	CILow  float64 `json:"ci_low"`
	CIHigh float64 `json:"ci_high"`
}

// CountSummary is a Summary that also reports the sample count, the shape
// the result exporter consumes.
type CountSummary struct {
	Summary
	Count int `json:"count"`
}

// Compute summarizes the given diameters (already in physical units). It is
// defined for any finite input: an empty slice yields the zero Summary and
// a single sample yields a point interval. It never fails.
func Compute(diams []float64) Summary {
	n := len(diams)
	if n == 0 {
		return Summary{}
	}

	mean := stat.Mean(diams, nil)
	std := stat.PopStdDev(diams, nil)

	var cv float64
	if mean > 0 {
		cv = std / mean * 100
	}

	ciLow, ciHigh := mean, mean
	if n > 1 {
		// Standard error uses the sample (n-1) deviation, as the interval
		// estimates the mean from the sample.
		sem := stat.StdDev(diams, nil) / math.Sqrt(float64(n))
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}
		margin := t.Quantile(0.5 + confidenceLevel/2)
		ciLow = mean - margin*sem
		ciHigh = mean + margin*sem
	}

	return Summary{
		Mean:   mean,
		Std:    std,
		CV:     cv,
		CILow:  ciLow,
		CIHigh: ciHigh,
	}
}

// ComputeWithCount is Compute plus the sample count. With zero samples every
// field is zero and no division occurs.
func ComputeWithCount(diams []float64) CountSummary {
	return CountSummary{
		Summary: Compute(diams),
		Count:   len(diams),
	}
}
