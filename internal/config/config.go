package config

import (
	"fmt"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andresmejia3/labelfix/internal/labels"
)

// MarkerStyle controls how keypoint markers are drawn. Immutable for the
// lifetime of a session.
type MarkerStyle struct {
	Color     string `yaml:"color"`
	Size      int    `yaml:"size"`
	Thickness int    `yaml:"thickness"`
}

// Config is the optional on-disk configuration. Positional CLI arguments
// override everything in here.
type Config struct {
	Marker MarkerStyle `yaml:"marker"`
}

// Default returns the built-in marker style: blue, size 40, thickness 2.
func Default() Config {
	return Config{Marker: MarkerStyle{Color: "blue", Size: 40, Thickness: 2}}
}

// Load reads a YAML config file. An empty path or a missing file yields the
// defaults; a file that exists but does not parse is a configuration error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv("LABELFIX_CONFIG")
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("%w: reading %s: %v", labels.ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: parsing %s: %v", labels.ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Marker.Validate()
}

// markerColors maps the accepted color names to their display values.
var markerColors = map[string]color.RGBA{
	"red":   {R: 255, A: 255},
	"green": {G: 255, A: 255},
	"blue":  {B: 255, A: 255},
}

// Validate checks the style against the accepted value ranges.
func (m MarkerStyle) Validate() error {
	if _, ok := markerColors[strings.ToLower(m.Color)]; !ok {
		return fmt.Errorf("%w: color must be red, green or blue, got %q", labels.ErrInvalidConfig, m.Color)
	}
	if m.Size <= 0 {
		return fmt.Errorf("%w: marker size must be positive, got %d", labels.ErrInvalidConfig, m.Size)
	}
	if m.Thickness <= 0 {
		return fmt.Errorf("%w: marker thickness must be positive, got %d", labels.ErrInvalidConfig, m.Thickness)
	}
	return nil
}

// RGBA resolves the color name. Validate must have passed first; unknown
// names fall back to blue.
func (m MarkerStyle) RGBA() color.RGBA {
	if c, ok := markerColors[strings.ToLower(m.Color)]; ok {
		return c
	}
	return markerColors["blue"]
}
