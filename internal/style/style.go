// Package style holds the animation parameter presets.
package style

// Preset is a named bundle of animation parameters. Values are plain
// data, loaded once and read-only for the lifetime of the process.
type Preset struct {
	ID              string  `yaml:"id"`
	Name            string  `yaml:"name"`
	Description     string  `yaml:"description"`
	BaseHue         float64 `yaml:"base_hue"`         // degrees, 0-360
	HueCycle        float64 `yaml:"hue_cycle"`        // degrees swept over one run
	OverlayStrength float64 `yaml:"overlay_strength"` // 0-1
}

// builtin is the default catalog. The first entry is the default preset.
var builtin = []Preset{
	{
		ID:              "neon",
		Name:            "Neon Drift",
		Description:     "Electric magenta sliding into deep violet",
		BaseHue:         290,
		HueCycle:        70,
		OverlayStrength: 0.22,
	},
	{
		ID:              "sunset",
		Name:            "Sunset Run",
		Description:     "Warm orange fading through crimson",
		BaseHue:         18,
		HueCycle:        45,
		OverlayStrength: 0.18,
	},
	{
		ID:              "ocean",
		Name:            "Open Ocean",
		Description:     "Teal and azure with a slow swell",
		BaseHue:         190,
		HueCycle:        55,
		OverlayStrength: 0.25,
	},
	{
		ID:              "mono",
		Name:            "Graphite",
		Description:     "Near-monochrome slate, minimal motion",
		BaseHue:         220,
		HueCycle:        12,
		OverlayStrength: 0.10,
	},
	{
		ID:              "aurora",
		Name:            "Aurora",
		Description:     "Green to indigo with strong luminous waves",
		BaseHue:         140,
		HueCycle:        120,
		OverlayStrength: 0.30,
	},
}

// Catalog returns the built-in presets.
func Catalog() []Preset {
	out := make([]Preset, len(builtin))
	copy(out, builtin)
	return out
}

// Default returns the first catalog entry.
func Default() Preset {
	return builtin[0]
}

// Lookup returns the preset with the given id, or the default preset
// when the id is missing or unset.
func Lookup(id string) Preset {
	return LookupIn(builtin, id)
}

// LookupIn resolves an id against an explicit catalog with the same
// default-on-miss rule. The catalog must be non-empty.
func LookupIn(catalog []Preset, id string) Preset {
	if id != "" {
		for _, p := range catalog {
			if p.ID == id {
				return p
			}
		}
	}
	return catalog[0]
}
