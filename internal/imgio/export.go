package imgio

import (
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/noelbenny111/laser-spot-analyzer/internal/spot"
	"github.com/noelbenny111/laser-spot-analyzer/internal/stats"
)

// WriteCSV writes one row per spot plus a trailing summary row. Diameters
// are reported both in pixels and physical units; rounding is up to the
// consumer of the file, so values are written at full precision.
func WriteCSV(path string, spots []spot.Spot, pixelSizeUM float64, summary stats.CountSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"id", "x", "y", "diam_px", "diam_um"}); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	for _, s := range spots {
		row := []string{
			s.ID,
			fmtFloat(s.Center.X),
			fmtFloat(s.Center.Y),
			fmtFloat(s.DiamPx),
			fmtFloat(s.DiamPhysical(pixelSizeUM)),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}

	summaryRow := []string{
		"summary",
		"mean=" + fmtFloat(summary.Mean),
		"std=" + fmtFloat(summary.Std),
		"cv=" + fmtFloat(summary.CV),
		"count=" + strconv.Itoa(summary.Count),
	}
	if err := w.Write(summaryRow); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	w.Flush()
	return w.Error()
}

// Annotate returns a BGR copy of the grayscale image with every spot
// outlined: fitted ellipses where available, fallback circles otherwise.
// The caller must Close the returned Mat.
func Annotate(gray gocv.Mat, spots []spot.Spot) gocv.Mat {
	out := gocv.NewMat()
	gocv.CvtColor(gray, &out, gocv.ColorGrayToBGR)

	green := color.RGBA{G: 255}
	for _, s := range spots {
		if s.Ellipse != nil {
			center := image.Point{X: int(s.Ellipse.Center.X + 0.5), Y: int(s.Ellipse.Center.Y + 0.5)}
			axes := image.Point{X: int(s.Ellipse.Major/2 + 0.5), Y: int(s.Ellipse.Minor/2 + 0.5)}
			gocv.Ellipse(&out, center, axes, s.Ellipse.Angle, 0, 360, green, 2)
		} else {
			center := image.Point{X: int(s.Center.X + 0.5), Y: int(s.Center.Y + 0.5)}
			gocv.Circle(&out, center, int(s.DiamPx/2+0.5), green, 2)
		}
	}
	return out
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
