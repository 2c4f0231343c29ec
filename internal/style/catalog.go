package style

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Version string   `yaml:"version"`
	Presets []Preset `yaml:"presets"`
}

// LoadCatalog reads a preset catalog from a YAML file. Out-of-range
// parameter values are clamped rather than rejected.
func LoadCatalog(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("catalog %s contains no presets", path)
	}

	for i := range file.Presets {
		clampPreset(&file.Presets[i])
	}
	return file.Presets, nil
}

// SaveCatalog writes a preset catalog to a YAML file.
func SaveCatalog(presets []Preset, path string) error {
	data, err := yaml.Marshal(catalogFile{Version: "1.0", Presets: presets})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func clampPreset(p *Preset) {
	p.BaseHue = math.Mod(p.BaseHue, 360)
	if p.BaseHue < 0 {
		p.BaseHue += 360
	}
	if p.HueCycle < 0 {
		p.HueCycle = 0
	}
	if p.OverlayStrength < 0 {
		p.OverlayStrength = 0
	}
	if p.OverlayStrength > 1 {
		p.OverlayStrength = 1
	}
}
