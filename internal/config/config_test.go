package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/labelfix/internal/labels"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with empty path failed: %v", err)
	}
	if cfg.Marker.Color != "blue" || cfg.Marker.Size != 40 || cfg.Marker.Thickness != 2 {
		t.Errorf("Unexpected defaults: %+v", cfg.Marker)
	}

	// A missing file is not an error, just defaults.
	cfg, err = Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load with missing file failed: %v", err)
	}
	if cfg.Marker.Size != 40 {
		t.Errorf("Expected default size 40, got %d", cfg.Marker.Size)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelfix.yaml")
	body := "marker:\n  color: red\n  size: 12\n  thickness: 3\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Marker.Color != "red" || cfg.Marker.Size != 12 || cfg.Marker.Thickness != 3 {
		t.Errorf("Unexpected config: %+v", cfg.Marker)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelfix.yaml")
	if err := os.WriteFile(path, []byte("marker:\n  color: purple\n  size: 12\n  thickness: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, labels.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for purple, got %v", err)
	}

	if err := os.WriteFile(path, []byte("marker: [not a map\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, labels.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for malformed YAML, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		style MarkerStyle
		ok    bool
	}{
		{"defaults", Default().Marker, true},
		{"uppercase color", MarkerStyle{Color: "RED", Size: 10, Thickness: 1}, true},
		{"bad color", MarkerStyle{Color: "purple", Size: 10, Thickness: 1}, false},
		{"zero size", MarkerStyle{Color: "blue", Size: 0, Thickness: 1}, false},
		{"negative thickness", MarkerStyle{Color: "blue", Size: 10, Thickness: -1}, false},
	}
	for _, c := range cases {
		err := c.style.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: unexpected error %v", c.name, err)
		}
		if !c.ok && !errors.Is(err, labels.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", c.name, err)
		}
	}
}

func TestRGBA(t *testing.T) {
	red := MarkerStyle{Color: "red"}.RGBA()
	if red.R != 255 || red.G != 0 || red.B != 0 {
		t.Errorf("red resolved to %+v", red)
	}
	// Unknown names fall back to blue rather than drawing invisible markers.
	fallback := MarkerStyle{Color: "unknown"}.RGBA()
	if fallback.B != 255 {
		t.Errorf("fallback resolved to %+v", fallback)
	}
}
