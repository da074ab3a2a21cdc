// Package imgio loads micrographs, converts them for the analysis pipeline,
// and writes results back out. It owns everything with a filesystem side
// effect; the analysis packages stay purely in-memory.
package imgio

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	"golang.org/x/image/tiff"
)

// LoadGray reads a micrograph and returns it as a single-channel float32
// Mat. TIFF files are decoded directly so 16-bit microscope exports keep
// their full intensity range; other formats go through imaging, which also
// applies EXIF orientation on re-exported JPEGs. The caller must Close the
// returned Mat.
func LoadGray(path string) (gocv.Mat, error) {
	var (
		img image.Image
		err error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff":
		f, openErr := os.Open(path)
		if openErr != nil {
			return gocv.Mat{}, fmt.Errorf("failed to open image: %w", openErr)
		}
		defer f.Close()
		img, err = tiff.Decode(f)
	default:
		img, err = imaging.Open(path, imaging.AutoOrientation(true))
	}
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return GrayMatFromImage(img), nil
}

// GrayMatFromImage converts any Go image to a single-channel float32 Mat.
// Grayscale sources are copied sample-for-sample; color sources are reduced
// with the ITU-R 601 luminance weights.
func GrayMatFromImage(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32F)

	switch src := img.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				mat.SetFloatAt(y, x, float32(src.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
	case *image.Gray16:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				mat.SetFloatAt(y, x, float32(src.Gray16At(bounds.Min.X+x, bounds.Min.Y+y).Y))
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
				lum := 0.2989*float32(r>>8) + 0.5870*float32(g>>8) + 0.1140*float32(b>>8)
				mat.SetFloatAt(y, x, lum)
			}
		}
	}

	return mat
}

// SaveImage writes an image Mat to disk; the format follows the extension.
func SaveImage(path string, img gocv.Mat) error {
	if ok := gocv.IMWrite(path, img); !ok {
		return fmt.Errorf("failed to write image %s", path)
	}
	return nil
}
