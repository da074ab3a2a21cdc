// Command spotscan detects and sizes ablation spots on a single micrograph
// and prints diameter statistics.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
	"github.com/noelbenny111/laser-spot-analyzer/internal/imgio"
	"github.com/noelbenny111/laser-spot-analyzer/internal/preprocess"
	"github.com/noelbenny111/laser-spot-analyzer/internal/roi"
	"github.com/noelbenny111/laser-spot-analyzer/internal/spot"
	"github.com/noelbenny111/laser-spot-analyzer/internal/stats"
)

func main() {
	imagePath := flag.String("image", "", "Path to micrograph (TIFF, PNG, or JPEG)")
	material := flag.String("material", "glass", "Material preset: glass or aluminum")
	paramsPath := flag.String("params", "", "Load detection parameters from JSON (overrides preset)")
	saveParams := flag.String("save-params", "", "Save effective detection parameters to JSON")
	threshold := flag.Int("threshold", -1, "Binarization threshold 0-255 (-1 = config default)")
	minDiam := flag.Float64("min-diam", -1, "Minimum spot diameter in pixels (-1 = config default)")
	maxDiam := flag.Float64("max-diam", -1, "Maximum spot diameter in pixels (-1 = config default)")
	maxSpots := flag.Int("max-spots", -1, "Keep at most this many spots (-1 = config default)")
	roiSpec := flag.String("roi", "", "Crop region as x1,y1,x2,y2 before analysis")
	pixelSize := flag.Float64("pixel-size", 0, "Pixel size in um (0 = sidecar probe with fallback)")
	csvPath := flag.String("csv", "", "Write per-spot results to CSV")
	annotatePath := flag.String("annotate", "", "Write annotated overlay image")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *imagePath == "" {
		fmt.Println("Usage: spotscan -image <path> [-material glass|aluminum] [-threshold N] ...")
		os.Exit(1)
	}

	cfg, err := buildConfig(*material, *paramsPath)
	if err != nil {
		fatal(err)
	}
	if *threshold >= 0 {
		cfg.Threshold = *threshold
	}
	if *minDiam >= 0 {
		cfg.MinDiam = *minDiam
	}
	if *maxDiam >= 0 {
		cfg.MaxDiam = *maxDiam
	}
	if *maxSpots >= 0 {
		cfg.MaxBlobs = *maxSpots
	}
	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	if *saveParams != "" {
		if err := cfg.Save(*saveParams); err != nil {
			fatal(err)
		}
		fmt.Printf("Parameters saved to %s\n", *saveParams)
	}

	img, err := imgio.LoadGray(*imagePath)
	if err != nil {
		fatal(err)
	}
	defer img.Close()
	fmt.Printf("Loaded image: %dx%d pixels\n", img.Cols(), img.Rows())

	if *roiSpec != "" {
		region, err := roi.Parse(*roiSpec)
		if err != nil {
			fatal(err)
		}
		cropped, err := region.Crop(img)
		if err != nil {
			fatal(err)
		}
		img.Close()
		img = cropped
		fmt.Printf("Cropped to %s\n", region)
	}

	um := *pixelSize
	if um <= 0 {
		cache := imgio.NewScaleCache()
		um = cache.PixelSizeUM(*imagePath, imgio.SidecarProbe)
	}
	fmt.Printf("Pixel size: %.4f um\n", um)

	fmt.Printf("\nDetection parameters:\n")
	fmt.Printf("  CLAHE clip: %.1f  black-hat: %d  median: %d  invert: %v\n",
		cfg.ClaheClip, cfg.TophatKernel, cfg.MedianKernel, cfg.Invert)
	fmt.Printf("  Threshold: %d  closing iterations: %d\n", cfg.Threshold, cfg.MorphIter)
	fmt.Printf("  Size: %.1f - %.1f px  max spots: %d\n", cfg.MinDiam, cfg.MaxDiam, cfg.MaxBlobs)

	enhanced, err := preprocess.Enhance(img, cfg)
	if err != nil {
		fatal(err)
	}
	defer enhanced.Close()

	detected, err := spot.Detect(enhanced, cfg)
	if err != nil {
		fatal(err)
	}
	spots := spot.Largest(detected, cfg.MaxBlobs)

	fmt.Printf("\nDetected %d spots (%d before size ranking):\n", len(spots), len(detected))
	fmt.Printf("%-10s %10s %10s %10s %10s %8s\n", "ID", "X", "Y", "Diam(px)", "Diam(um)", "Fit")
	for _, s := range spots {
		fit := "ellipse"
		if s.Round() {
			fit = "circle"
		}
		fmt.Printf("%-10s %10.1f %10.1f %10.2f %10.3f %8s\n",
			s.ID, s.Center.X, s.Center.Y, s.DiamPx, s.DiamPhysical(um), fit)
	}

	summary := stats.ComputeWithCount(spot.DiametersPhysical(spots, um))
	fmt.Printf("\nDiameter statistics (um):\n")
	fmt.Printf("  count: %d\n", summary.Count)
	fmt.Printf("  mean:  %.3f\n", summary.Mean)
	fmt.Printf("  std:   %.3f\n", summary.Std)
	fmt.Printf("  cv:    %.1f%%\n", summary.CV)
	fmt.Printf("  95%% CI: [%.3f, %.3f]\n", summary.CILow, summary.CIHigh)

	if *csvPath != "" {
		if err := imgio.WriteCSV(*csvPath, spots, um, summary); err != nil {
			fatal(err)
		}
		fmt.Printf("\nResults written to %s\n", *csvPath)
	}

	if *annotatePath != "" {
		overlay := imgio.Annotate(enhanced, spots)
		defer overlay.Close()
		if err := imgio.SaveImage(*annotatePath, overlay); err != nil {
			fatal(err)
		}
		fmt.Printf("Overlay written to %s\n", *annotatePath)
	}
}

// buildConfig resolves the effective configuration: an explicit parameter
// file wins, otherwise defaults with the material preset applied.
func buildConfig(material, paramsPath string) (config.DetectionConfig, error) {
	if paramsPath != "" {
		return config.Load(paramsPath)
	}

	preset, err := config.PresetFor(material)
	if err != nil {
		return config.DetectionConfig{}, err
	}
	return preset.Apply(config.Defaults()), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
