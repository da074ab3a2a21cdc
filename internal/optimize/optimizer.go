// Package optimize searches threshold space for a cutoff that detects a
// target number of spots.
package optimize

import (
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
	"github.com/noelbenny111/laser-spot-analyzer/internal/preprocess"
	"github.com/noelbenny111/laser-spot-analyzer/internal/spot"
)

// DefaultMaxIterations bounds the search. log2(255) is under 8; the extra
// budget absorbs the non-monotonic stretches real images produce.
const DefaultMaxIterations = 12

// Status describes the search state reported to a progress callback.
type Status int

const (
	// StatusSearching means the current threshold missed the target count.
	StatusSearching Status = iota
	// StatusExactMatch means the current threshold hit the target exactly.
	StatusExactMatch
)

func (s Status) String() string {
	if s == StatusExactMatch {
		return "exact match"
	}
	return "searching"
}

// ProgressFunc receives one synchronous notification per evaluated
// threshold. A slow callback stalls the search; there is no timeout.
type ProgressFunc func(threshold, count int, status Status)

// Observation records one search iteration.
type Observation struct {
	Threshold int `json:"threshold"`
	Count     int `json:"count"`
	Distance  int `json:"distance"` // |count - target|
}

// Result is the outcome of a threshold search. It always carries the
// best-seen candidate, even when no threshold matched the target exactly.
type Result struct {
	Threshold  int           `json:"threshold"`
	SpotCount  int           `json:"spot_count"`
	Spots      []spot.Spot   `json:"spots"`
	History    []Observation `json:"history"`
	ExactMatch bool          `json:"exact_match"`
}

// Optimize searches [1,255] for a threshold at which the enhance → detect →
// filter pipeline yields targetCount spots. All parameters except the
// threshold are taken from cfg and held fixed. The spot count is only
// empirically monotonic-ish in the threshold, so this is a bounded
// midpoint search with best-seen tracking rather than a true bisection:
// each iteration evaluates the interval midpoint, keeps the candidate whose
// count is strictly closest to the target so far, and narrows toward the
// side the count indicates. Lower thresholds produce more and larger
// foreground regions on these images.
//
// maxIterations <= 0 selects DefaultMaxIterations. progress may be nil.
// Non-convergence is not an error; the returned Result has ExactMatch false
// and the closest candidate found. Only a pipeline failure (e.g. an invalid
// image) returns an error.
func Optimize(src gocv.Mat, targetCount int, cfg config.DetectionConfig,
	maxIterations int, progress ProgressFunc) (*Result, error) {

	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	log.Debug().
		Int("target", targetCount).
		Int("max_iterations", maxIterations).
		Msg("threshold search started")

	best := Result{Threshold: 128}
	bestDistance := abs(0 - targetCount)

	lo, hi := 1, 255
	for iter := 0; iter < maxIterations; iter++ {
		mid := (lo + hi) / 2

		spots, err := evaluate(src, cfg.WithThreshold(mid))
		if err != nil {
			return nil, err
		}
		count := len(spots)
		distance := abs(count - targetCount)

		best.History = append(best.History, Observation{
			Threshold: mid,
			Count:     count,
			Distance:  distance,
		})

		log.Debug().
			Int("iteration", iter+1).
			Int("threshold", mid).
			Int("count", count).
			Int("distance", distance).
			Msg("threshold evaluated")

		status := StatusSearching
		if count == targetCount {
			status = StatusExactMatch
		}
		if progress != nil {
			progress(mid, count, status)
		}

		// Strictly smaller only: on a tie the first candidate found wins.
		if distance < bestDistance {
			bestDistance = distance
			best.Threshold = mid
			best.SpotCount = count
			best.Spots = spots
		}

		if count == targetCount {
			best.ExactMatch = true
			break
		}

		if count < targetCount {
			// Too few spots: lower thresholds grow the foreground.
			hi = mid - 1
		} else {
			lo = mid + 1
		}

		if lo > hi {
			break
		}
	}

	log.Debug().
		Int("threshold", best.Threshold).
		Int("count", best.SpotCount).
		Bool("exact_match", best.ExactMatch).
		Msg("threshold search finished")

	return &best, nil
}

// evaluate runs the full pipeline at one threshold. Intermediate results
// are deliberately not cached across thresholds; every evaluation is
// independent.
func evaluate(src gocv.Mat, cfg config.DetectionConfig) ([]spot.Spot, error) {
	enhanced, err := preprocess.Enhance(src, cfg)
	if err != nil {
		return nil, err
	}
	defer enhanced.Close()

	spots, err := spot.Detect(enhanced, cfg)
	if err != nil {
		return nil, err
	}
	return spot.Largest(spots, cfg.MaxBlobs), nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
