package spot

import (
	"fmt"
	"image"
	"math"

	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
	"github.com/noelbenny111/laser-spot-analyzer/pkg/geometry"
)

// minContourArea is the noise floor in square pixels. Contours below it are
// thresholding artifacts, not spots.
const minContourArea = 20

// Detect segments an enhanced 8-bit image into candidate spots. It closes
// small gaps, binarizes at cfg.Threshold, walks the outer contours, and
// sizes each one: an ellipse fit when the contour has at least 5 boundary
// points (diameter = geometric mean of the axes), otherwise the minimum
// enclosing circle. Spots outside [cfg.MinDiam, cfg.MaxDiam] are rejected.
//
// A contour whose geometry fit fails is skipped with a warning; detection
// continues. Results are in contour discovery order, not sorted.
func Detect(enhanced gocv.Mat, cfg config.DetectionConfig) ([]Spot, error) {
	if enhanced.Empty() || enhanced.Total() == 0 {
		return nil, fmt.Errorf("empty image")
	}

	// Bridge pinholes and ragged edges inside a spot so one mark yields one
	// contour instead of a cluster of fragments.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Point{X: 3, Y: 3})
	defer kernel.Close()

	morph := gocv.NewMat()
	defer morph.Close()
	gocv.MorphologyExWithParams(enhanced, &morph, gocv.MorphClose, kernel,
		cfg.MorphIter, gocv.BorderConstant)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(morph, &mask, float32(cfg.Threshold), 255, gocv.ThresholdBinary)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var spots []Spot
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)

		if gocv.ContourArea(contour) < minContourArea {
			continue
		}

		s, err := measureContour(contour)
		if err != nil {
			log.Warn().Err(err).Int("contour", i).Msg("skipping contour: geometry fit failed")
			continue
		}

		if s.DiamPx < cfg.MinDiam || s.DiamPx > cfg.MaxDiam {
			continue
		}

		s.ID = fmt.Sprintf("spot-%03d", len(spots)+1)
		spots = append(spots, s)
	}

	return spots, nil
}

// measureContour derives a spot from one contour. Contours with >= 5
// boundary points get a full ellipse fit; smaller ones fall back to the
// minimum enclosing circle. OpenCV reports degenerate point configurations
// by panicking through cgo, so the fit is confined here and surfaced as an
// error for the caller to log and skip.
func measureContour(contour gocv.PointVector) (s Spot, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("geometry fit: %v", r)
		}
	}()

	if contour.Size() >= 5 {
		fit := gocv.FitEllipse(contour)
		major := float64(fit.Width)
		minor := float64(fit.Height)
		center := geometry.Point2D{X: float64(fit.Center.X), Y: float64(fit.Center.Y)}
		return Spot{
			Center: center,
			// Geometric mean of the axes: the diameter of the circle with
			// the same area as the fitted ellipse. The size-filter presets
			// are tuned against this convention.
			DiamPx: math.Sqrt(major * minor),
			Ellipse: &Ellipse{
				Center: center,
				Major:  major,
				Minor:  minor,
				Angle:  fit.Angle,
			},
		}, nil
	}

	x, y, radius := gocv.MinEnclosingCircle(contour)
	return Spot{
		Center: geometry.Point2D{X: float64(x), Y: float64(y)},
		DiamPx: 2 * float64(radius),
	}, nil
}
