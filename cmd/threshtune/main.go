// Command threshtune searches for the binarization threshold at which a
// micrograph yields a target number of spots, and optionally saves the
// discovered threshold into a parameter file.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
	"github.com/noelbenny111/laser-spot-analyzer/internal/imgio"
	"github.com/noelbenny111/laser-spot-analyzer/internal/optimize"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	target := flag.Int("target", 4, "Desired number of spots")
	material := flag.String("material", "glass", "Material preset: glass or aluminum")
	minDiam := flag.Float64("min-diam", 5, "Minimum spot diameter in pixels")
	maxDiam := flag.Float64("max-diam", 200, "Maximum spot diameter in pixels")
	maxSpots := flag.Int("max-spots", 8, "Keep at most this many spots per evaluation")
	maxIter := flag.Int("max-iter", optimize.DefaultMaxIterations, "Search iteration budget")
	saveParams := flag.String("save-params", "", "Save parameters with the discovered threshold to JSON")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *imagePath == "" {
		fmt.Println("Usage: threshtune -image <path> -target <count> [-material glass|aluminum]")
		os.Exit(1)
	}

	preset, err := config.PresetFor(*material)
	if err != nil {
		fatal(err)
	}
	cfg := preset.Apply(config.Defaults()).WithSizeRange(*minDiam, *maxDiam)
	cfg.MaxBlobs = *maxSpots
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	img, err := imgio.LoadGray(*imagePath)
	if err != nil {
		fatal(err)
	}
	defer img.Close()

	fmt.Printf("Loaded image: %dx%d pixels\n", img.Cols(), img.Rows())
	fmt.Printf("Searching for a threshold yielding %d spots (budget %d iterations)\n\n",
		*target, *maxIter)

	iteration := 0
	progress := func(threshold, count int, status optimize.Status) {
		iteration++
		fmt.Printf("Iteration %2d | Threshold: %3d | Spots: %2d | Target: %d | %s\n",
			iteration, threshold, count, *target, status)
	}

	result, err := optimize.Optimize(img, *target, cfg, *maxIter, progress)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("\nBest threshold: %d (%d spots", result.Threshold, result.SpotCount)
	if result.ExactMatch {
		fmt.Printf(", exact match)\n")
	} else {
		fmt.Printf(", closest to target %d)\n", *target)
	}

	fmt.Printf("\nSearch history:\n")
	fmt.Printf("%10s %8s %10s\n", "Threshold", "Spots", "Distance")
	for _, obs := range result.History {
		fmt.Printf("%10d %8d %10d\n", obs.Threshold, obs.Count, obs.Distance)
	}

	if *saveParams != "" {
		if err := cfg.WithThreshold(result.Threshold).Save(*saveParams); err != nil {
			fatal(err)
		}
		fmt.Printf("\nParameters with threshold %d saved to %s\n", result.Threshold, *saveParams)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
