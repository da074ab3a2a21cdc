package spot

import (
	"image"
	"image/color"
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
)

// disks draws filled bright disks on a black 8-bit background, simulating
// an enhanced image ready for thresholding.
func disks(rows, cols int, centers []image.Point, radii []int) gocv.Mat {
	m := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), rows, cols, gocv.MatTypeCV8U)
	for i, c := range centers {
		gocv.Circle(&m, c, radii[i], color.RGBA{R: 255, G: 255, B: 255}, -1)
	}
	return m
}

func TestDetectEmptyImage(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	if _, err := Detect(empty, config.Defaults()); err == nil {
		t.Error("expected error for empty image")
	}
}

func TestDetectBlankImage(t *testing.T) {
	blank := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8U)
	defer blank.Close()

	spots, err := Detect(blank, config.Defaults())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 0 {
		t.Errorf("blank image: got %d spots, want 0", len(spots))
	}
}

// Three well-separated disks of known radii must come back as three spots
// with diameters close to 12, 20 and 30 px, descending after ranking.
func TestDetectKnownDisks(t *testing.T) {
	img := disks(300, 300,
		[]image.Point{{X: 60, Y: 60}, {X: 200, Y: 80}, {X: 120, Y: 220}},
		[]int{6, 10, 15})
	defer img.Close()

	cfg := config.Defaults()
	detected, err := Detect(img, cfg)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	spots := Largest(detected, 8)

	if len(spots) != 3 {
		t.Fatalf("got %d spots, want 3", len(spots))
	}

	wantDiams := []float64{30, 20, 12}
	const tol = 2.5
	for i, want := range wantDiams {
		if math.Abs(spots[i].DiamPx-want) > tol {
			t.Errorf("spot %d: diam %.2f, want %.0f +/- %g", i, spots[i].DiamPx, want, tol)
		}
	}

	// Round disks have plenty of boundary points, so each spot should carry
	// a fitted ellipse with near-equal axes.
	for i, s := range spots {
		if s.Ellipse == nil {
			t.Errorf("spot %d: expected ellipse fit", i)
			continue
		}
		if math.Abs(s.Ellipse.Major-s.Ellipse.Minor) > 3 {
			t.Errorf("spot %d: axes %g x %g too eccentric for a disk",
				i, s.Ellipse.Major, s.Ellipse.Minor)
		}
	}
}

func TestDetectSizeGate(t *testing.T) {
	img := disks(300, 300,
		[]image.Point{{X: 60, Y: 60}, {X: 200, Y: 80}, {X: 120, Y: 220}},
		[]int{6, 10, 15})
	defer img.Close()

	cfg := config.Defaults().WithSizeRange(15, 25)
	spots, err := Detect(img, cfg)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	if len(spots) != 1 {
		t.Fatalf("size gate [15,25]: got %d spots, want 1", len(spots))
	}
	for _, s := range spots {
		if s.DiamPx < cfg.MinDiam || s.DiamPx > cfg.MaxDiam {
			t.Errorf("accepted spot diam %g outside [%g, %g]", s.DiamPx, cfg.MinDiam, cfg.MaxDiam)
		}
	}
}

func TestDetectAreaFloor(t *testing.T) {
	// A radius-2 dot covers ~12 px2, under the 20 px2 noise floor; it must
	// be dropped even with the size gate wide open.
	img := disks(100, 100, []image.Point{{X: 50, Y: 50}}, []int{2})
	defer img.Close()

	cfg := config.Defaults().WithSizeRange(0, 200)
	cfg.MorphIter = 1
	spots, err := Detect(img, cfg)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 0 {
		t.Errorf("sub-floor contour survived: %+v", spots)
	}
}

// An axis-aligned filled rectangle simplifies to its four corners, too few
// for an ellipse fit, so the minimum enclosing circle fallback applies and
// no ellipse is recorded.
func TestDetectCircleFallback(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8U)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(40, 40, 50, 50), color.RGBA{R: 255, G: 255, B: 255}, -1)

	cfg := config.Defaults()
	cfg.MorphIter = 1
	spots, err := Detect(img, cfg)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 1 {
		t.Fatalf("got %d spots, want 1", len(spots))
	}

	s := spots[0]
	if !s.Round() {
		t.Errorf("expected circle fallback, got ellipse %+v", s.Ellipse)
	}
	// Enclosing circle of a ~10x10 square: diameter near the diagonal.
	if s.DiamPx < 11 || s.DiamPx > 16 {
		t.Errorf("fallback diameter %.2f outside plausible range [11, 16]", s.DiamPx)
	}
}

func TestDetectThresholdExcludes(t *testing.T) {
	// A disk dimmer than the threshold contributes nothing.
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8U)
	defer img.Close()
	gocv.Circle(&img, image.Point{X: 50, Y: 50}, 10, color.RGBA{B: 80, G: 80, R: 80}, -1)

	spots, err := Detect(img, config.Defaults().WithThreshold(120))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 0 {
		t.Errorf("dim disk above threshold: got %d spots, want 0", len(spots))
	}

	spots, err = Detect(img, config.Defaults().WithThreshold(40))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 1 {
		t.Errorf("dim disk below threshold: got %d spots, want 1", len(spots))
	}
}

func TestDetectIDsFollowDiscoveryOrder(t *testing.T) {
	img := disks(300, 300,
		[]image.Point{{X: 60, Y: 60}, {X: 200, Y: 200}},
		[]int{8, 12})
	defer img.Close()

	spots, err := Detect(img, config.Defaults())
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(spots) != 2 {
		t.Fatalf("got %d spots, want 2", len(spots))
	}
	if spots[0].ID != "spot-001" || spots[1].ID != "spot-002" {
		t.Errorf("IDs not sequential: %q, %q", spots[0].ID, spots[1].ID)
	}
}
