package imgio

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// DefaultPixelSizeUM is assumed when no calibration is available for an
// image: the pixel pitch of the lab's 20x objective.
const DefaultPixelSizeUM = 0.34

// ProbeFunc resolves the pixel size in micrometers for one image path.
type ProbeFunc func(path string) (float64, error)

// ScaleCache memoizes per-image pixel calibration. Probing can mean parsing
// metadata or reading sidecar files, so results are cached per path. The
// cache is explicit and injected by callers; the analysis packages carry no
// cross-call state of their own.
type ScaleCache struct {
	mu     sync.Mutex
	byPath map[string]float64
}

// NewScaleCache creates an empty calibration cache.
func NewScaleCache() *ScaleCache {
	return &ScaleCache{byPath: make(map[string]float64)}
}

// PixelSizeUM returns the pixel size for the image at path, consulting the
// cache first and the probe on a miss. A failed probe logs a warning and
// falls back to DefaultPixelSizeUM; the fallback is cached too, so a broken
// sidecar is only reported once per path.
func (c *ScaleCache) PixelSizeUM(path string, probe ProbeFunc) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if size, ok := c.byPath[path]; ok {
		return size
	}

	size := DefaultPixelSizeUM
	if probe != nil {
		probed, err := probe(path)
		if err != nil {
			log.Warn().Err(err).Str("image", path).
				Float64("fallback_um", DefaultPixelSizeUM).
				Msg("pixel calibration unavailable")
		} else {
			size = probed
		}
	}

	c.byPath[path] = size
	return size
}

// sidecarScale is the shape of a "<image>.scale.json" calibration sidecar.
type sidecarScale struct {
	PixelSizeUM float64 `json:"pixel_size_um"`
}

// SidecarProbe reads the pixel size from a JSON sidecar next to the image.
func SidecarProbe(path string) (float64, error) {
	data, err := os.ReadFile(path + ".scale.json")
	if err != nil {
		return 0, err
	}

	var s sidecarScale
	if err := json.Unmarshal(data, &s); err != nil {
		return 0, fmt.Errorf("bad calibration sidecar: %w", err)
	}
	if s.PixelSizeUM <= 0 {
		return 0, fmt.Errorf("bad calibration sidecar: pixel_size_um = %g", s.PixelSizeUM)
	}
	return s.PixelSizeUM, nil
}
