// Package spot provides ablation-spot segmentation and sizing for enhanced
// micrographs.
package spot

import (
	"github.com/noelbenny111/laser-spot-analyzer/pkg/geometry"
)

// Ellipse describes a fitted ellipse in image coordinates. Axis lengths are
// full lengths (not semi-axes), angle is degrees.
type Ellipse struct {
	Center geometry.Point2D `json:"center"`
	Major  float64          `json:"major"`
	Minor  float64          `json:"minor"`
	Angle  float64          `json:"angle"`
}

// Spot represents one detected ablation mark.
type Spot struct {
	ID     string           `json:"id"`      // e.g. "spot-001", in discovery order
	Center geometry.Point2D `json:"center"`  // center in pixel coordinates
	DiamPx float64          `json:"diam_px"` // derived diameter in pixels

	// Ellipse holds the full fit when the contour had enough boundary points
	// for a stable ellipse. Nil when the minimum enclosing circle fallback
	// was used; Center and DiamPx describe that circle instead.
	Ellipse *Ellipse `json:"ellipse,omitempty"`
}

// Round returns true when the spot was sized by the circle fallback rather
// than an ellipse fit.
func (s Spot) Round() bool {
	return s.Ellipse == nil
}

// DiamPhysical converts the pixel diameter to physical units given the
// pixel size (e.g. micrometers per pixel).
func (s Spot) DiamPhysical(pixelSize float64) float64 {
	return s.DiamPx * pixelSize
}

// Diameters extracts the pixel diameters from a slice of spots.
func Diameters(spots []Spot) []float64 {
	diams := make([]float64, len(spots))
	for i, s := range spots {
		diams[i] = s.DiamPx
	}
	return diams
}

// DiametersPhysical extracts diameters scaled to physical units.
func DiametersPhysical(spots []Spot, pixelSize float64) []float64 {
	diams := make([]float64, len(spots))
	for i, s := range spots {
		diams[i] = s.DiamPhysical(pixelSize)
	}
	return diams
}
