package config

import (
	"fmt"
	"sort"
)

// MaterialPreset supplies the preprocessing defaults for one sample
// material. Detection cutoffs are not part of a preset; callers overlay a
// preset onto a DetectionConfig and adjust from there.
type MaterialPreset struct {
	ClaheClip    float64 `json:"clahe_clip"`
	TophatKernel int     `json:"tophat_kernel"`
	MedianKernel int     `json:"median_kernel"`
	Invert       bool    `json:"invert"`

	// ScratchRemoval is declared and persisted for aluminum samples but not
	// consumed by any pipeline stage yet.
	ScratchRemoval bool `json:"scratch_removal"`
}

// Glass is tuned for ablation spots on coated glass: dark spots on a bright
// field, moderate background texture.
var Glass = MaterialPreset{
	ClaheClip:    2.0,
	TophatKernel: 15,
	MedianKernel: 3,
	Invert:       false,
}

// Aluminum is tuned for polished aluminum: bright spots, heavy polishing
// scratches, so a larger background estimate and an inverted input.
var Aluminum = MaterialPreset{
	ClaheClip:      2.0,
	TophatKernel:   25,
	MedianKernel:   3,
	Invert:         true,
	ScratchRemoval: true,
}

var presets = map[string]MaterialPreset{
	"glass":    Glass,
	"aluminum": Aluminum,
}

// PresetFor returns the preset registered under the given material label.
func PresetFor(material string) (MaterialPreset, error) {
	p, ok := presets[material]
	if !ok {
		return MaterialPreset{}, fmt.Errorf("unknown material %q (known: %v)", material, PresetNames())
	}
	return p, nil
}

// PresetNames returns the registered material labels in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply overlays the preset's preprocessing fields onto cfg and returns the
// result. Detection fields are left untouched.
func (p MaterialPreset) Apply(cfg DetectionConfig) DetectionConfig {
	cfg.ClaheClip = p.ClaheClip
	cfg.TophatKernel = p.TophatKernel
	cfg.MedianKernel = p.MedianKernel
	cfg.Invert = p.Invert
	return cfg
}
