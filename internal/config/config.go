// Package config holds the hosting surface's run parameters.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Recommended duration bounds in seconds. Values outside the range are
// accepted with a warning from the hosting surface.
const (
	MinDuration = 4
	MaxDuration = 14
)

type Config struct {
	Script       string  `yaml:"script"`
	ScriptFile   string  `yaml:"script_file"`
	Output       string  `yaml:"output"`
	Duration     float64 `yaml:"duration"` // seconds
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	FPS          int     `yaml:"fps"`
	StyleID      string  `yaml:"style"`
	StyleCatalog string  `yaml:"style_catalog"` // optional YAML preset file
	ShareLink    string  `yaml:"share_link"`
	Quality      int     `yaml:"quality"`
	ShowStats    bool    `yaml:"show_stats"`
}

// Load reads a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects parameters the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("invalid resolution %dx%d", c.Width, c.Height)
	}
	if c.FPS < 0 {
		return fmt.Errorf("invalid fps %d", c.FPS)
	}
	if c.Quality < 0 {
		return fmt.Errorf("invalid quality %d", c.Quality)
	}
	return nil
}
