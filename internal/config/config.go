// Package config holds detection parameters, material presets, and their
// JSON persistence.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// DetectionConfig bundles every parameter the analysis pipeline consumes.
// The JSON field names are the persisted on-disk shape shared with other
// tools and must not change.
type DetectionConfig struct {
	// Preprocessing
	ClaheClip    float64 `json:"clahe_clip"`    // CLAHE clip limit, > 0
	TophatKernel int     `json:"tophat_kernel"` // black-hat structuring element size, odd, >= 3
	MedianKernel int     `json:"median_kernel"` // median blur size, odd, >= 3
	Invert       bool    `json:"invert"`        // complement the 8-bit image before enhancement

	// Detection
	Threshold int     `json:"threshold"`  // binarization cutoff, 0-255
	MorphIter int     `json:"morph_iter"` // closing iterations before threshold, >= 1
	MinDiam   float64 `json:"min_diam"`   // smallest accepted diameter, pixels
	MaxDiam   float64 `json:"max_diam"`   // largest accepted diameter, pixels
	MaxBlobs  int     `json:"max_blobs"`  // keep at most this many spots, largest first
}

// Defaults returns the baseline detection configuration: glass preprocessing
// with the stock detection cutoffs.
func Defaults() DetectionConfig {
	cfg := DetectionConfig{
		Threshold: 120,
		MorphIter: 2,
		MinDiam:   5,
		MaxDiam:   200,
		MaxBlobs:  8,
	}
	return Glass.Apply(cfg)
}

// WithThreshold returns a copy of the config with the threshold replaced.
func (c DetectionConfig) WithThreshold(threshold int) DetectionConfig {
	c.Threshold = threshold
	return c
}

// WithSizeRange returns a copy of the config with custom diameter bounds in pixels.
func (c DetectionConfig) WithSizeRange(minDiam, maxDiam float64) DetectionConfig {
	c.MinDiam = minDiam
	c.MaxDiam = maxDiam
	return c
}

// Validate checks every field against its documented range.
func (c DetectionConfig) Validate() error {
	if c.ClaheClip <= 0 {
		return fmt.Errorf("clahe_clip must be > 0, got %g", c.ClaheClip)
	}
	if c.TophatKernel < 3 || c.TophatKernel%2 == 0 {
		return fmt.Errorf("tophat_kernel must be an odd integer >= 3, got %d", c.TophatKernel)
	}
	if c.MedianKernel < 3 || c.MedianKernel%2 == 0 {
		return fmt.Errorf("median_kernel must be an odd integer >= 3, got %d", c.MedianKernel)
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		return fmt.Errorf("threshold must be in [0,255], got %d", c.Threshold)
	}
	if c.MorphIter < 1 {
		return fmt.Errorf("morph_iter must be >= 1, got %d", c.MorphIter)
	}
	if c.MinDiam > c.MaxDiam {
		return fmt.Errorf("min_diam (%g) exceeds max_diam (%g)", c.MinDiam, c.MaxDiam)
	}
	if c.MaxBlobs < 0 {
		return fmt.Errorf("max_blobs must be >= 0, got %d", c.MaxBlobs)
	}
	return nil
}

// Load reads a DetectionConfig from a JSON file.
func Load(path string) (DetectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DetectionConfig{}, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg DetectionConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DetectionConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return DetectionConfig{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to a JSON file in the persisted flat shape.
func (c DetectionConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
