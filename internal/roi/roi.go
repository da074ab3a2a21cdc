// Package roi provides rectangular region-of-interest handling for
// micrograph crops. Drawing and interactive selection live in external
// tools; this package only carries the region value type they produce.
package roi

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// ROI is a rectangular region in image coordinates. (X1,Y1) is the top-left
// corner inclusive, (X2,Y2) the bottom-right exclusive. The JSON field
// names match the shape external selection tools persist.
type ROI struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns the region width in pixels.
func (r ROI) Width() int { return r.X2 - r.X1 }

// Height returns the region height in pixels.
func (r ROI) Height() int { return r.Y2 - r.Y1 }

// Validate checks the region against the dimensions of the target image.
func (r ROI) Validate(cols, rows int) error {
	if r.Width() <= 0 || r.Height() <= 0 {
		return fmt.Errorf("degenerate roi %s", r)
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > cols || r.Y2 > rows {
		return fmt.Errorf("roi %s outside image %dx%d", r, cols, rows)
	}
	return nil
}

// Crop returns an independent copy of the region from src. The source Mat
// is left untouched; the caller must Close the returned Mat.
func (r ROI) Crop(src gocv.Mat) (gocv.Mat, error) {
	if err := r.Validate(src.Cols(), src.Rows()); err != nil {
		return gocv.Mat{}, err
	}

	region := src.Region(image.Rect(r.X1, r.Y1, r.X2, r.Y2))
	defer region.Close()
	return region.Clone(), nil
}

func (r ROI) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d) %dx%dpx", r.X1, r.Y1, r.X2, r.Y2, r.Width(), r.Height())
}

// Parse reads an ROI from the "x1,y1,x2,y2" form used on command lines.
func Parse(s string) (ROI, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return ROI{}, fmt.Errorf("roi must be x1,y1,x2,y2, got %q", s)
	}

	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return ROI{}, fmt.Errorf("roi must be x1,y1,x2,y2, got %q", s)
		}
		vals[i] = v
	}
	return ROI{X1: vals[0], Y1: vals[1], X2: vals[2], Y2: vals[3]}, nil
}

// SplitColumns slices src into fixed-width vertical columns, one per degree
// label, walking the degree range downward from degStart to degEnd
// inclusive. Column i spans x = [i*width, (i+1)*width). Used when a single
// frame images a degree series side by side. Each returned Mat is an
// independent copy the caller must Close.
func SplitColumns(src gocv.Mat, degStart, degEnd, width int) (map[int]gocv.Mat, error) {
	if width <= 0 {
		return nil, fmt.Errorf("column width must be > 0, got %d", width)
	}
	if degEnd > degStart {
		return nil, fmt.Errorf("degree range must descend, got %d..%d", degStart, degEnd)
	}

	regions := make(map[int]gocv.Mat)
	for i, deg := 0, degStart; deg >= degEnd; i, deg = i+1, deg-1 {
		col := ROI{X1: i * width, Y1: 0, X2: (i + 1) * width, Y2: src.Rows()}
		m, err := col.Crop(src)
		if err != nil {
			for _, r := range regions {
				r.Close()
			}
			return nil, fmt.Errorf("column for %d degrees: %w", deg, err)
		}
		regions[deg] = m
	}
	return regions, nil
}
