// Package preprocess normalizes and enhances raw micrographs for spot
// detection.
package preprocess

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/noelbenny111/laser-spot-analyzer/internal/config"
)

// ErrInvalidImage is returned when the input image is empty or has no pixels.
var ErrInvalidImage = errors.New("invalid image: empty or no elements")

// claheTileGrid is the CLAHE tile layout. 8x8 keeps the equalization local
// enough to flatten illumination gradients without amplifying speckle.
var claheTileGrid = image.Point{X: 8, Y: 8}

// Enhance converts a raw grayscale micrograph into the 8-bit image the
// detector thresholds. The chain is: normalize to [0,255], optional
// inversion, CLAHE, black-hat against an elliptical background estimate,
// median blur. The source Mat is never modified; the caller owns the
// returned Mat and must Close it.
func Enhance(src gocv.Mat, cfg config.DetectionConfig) (gocv.Mat, error) {
	if src.Empty() || src.Total() == 0 {
		return gocv.Mat{}, ErrInvalidImage
	}

	img8, err := normalizeTo8Bit(src)
	if err != nil {
		return gocv.Mat{}, err
	}

	if cfg.Invert {
		gocv.BitwiseNot(img8, &img8)
	}

	// Flatten uneven illumination before background subtraction. The clip
	// limit bounds how much a mostly-flat tile can amplify its noise.
	clahe := gocv.NewCLAHEWithParams(cfg.ClaheClip, claheTileGrid)
	defer clahe.Close()
	clahe.Apply(img8, &img8)

	// Black-hat: closing minus original. Spots smaller than the kernel
	// survive as bright features against a locally estimated background,
	// regardless of any remaining brightness gradient.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse,
		image.Point{X: cfg.TophatKernel, Y: cfg.TophatKernel})
	defer kernel.Close()
	gocv.MorphologyEx(img8, &img8, gocv.MorphBlackhat, kernel)

	gocv.MedianBlur(img8, &img8, cfg.MedianKernel)

	return img8, nil
}

// normalizeTo8Bit scales the image into the 8-bit range by its maximum
// value. Images with no positive samples cannot be divided by their max;
// those fall back to a saturating multiply so an all-zero frame stays
// uniform instead of failing.
func normalizeTo8Bit(src gocv.Mat) (gocv.Mat, error) {
	work := gocv.NewMat()
	src.ConvertTo(&work, gocv.MatTypeCV32F)
	defer work.Close()

	_, maxVal, _, _ := gocv.MinMaxIdx(work)

	out := gocv.NewMat()
	if maxVal <= 0 {
		// ConvertToWithParams saturates into [0,255] on its own.
		work.ConvertToWithParams(&out, gocv.MatTypeCV8U, 255, 0)
	} else {
		work.ConvertToWithParams(&out, gocv.MatTypeCV8U, 255/maxVal, 0)
	}
	if out.Empty() {
		out.Close()
		return gocv.Mat{}, fmt.Errorf("normalization produced an empty image")
	}
	return out, nil
}
