package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/andresmejia3/labelfix/internal/config"
	"github.com/andresmejia3/labelfix/internal/labels"
)

func TestResolveStyle(t *testing.T) {
	base := config.Default().Marker

	tests := []struct {
		name      string
		overrides []string
		want      config.MarkerStyle
		wantErr   error
	}{
		{
			name:      "no overrides keeps defaults",
			overrides: nil,
			want:      base,
		},
		{
			name:      "color only",
			overrides: []string{"red"},
			want:      config.MarkerStyle{Color: "red", Size: base.Size, Thickness: base.Thickness},
		},
		{
			name:      "color and size",
			overrides: []string{"green", "12"},
			want:      config.MarkerStyle{Color: "green", Size: 12, Thickness: base.Thickness},
		},
		{
			name:      "all three",
			overrides: []string{"blue", "8", "3"},
			want:      config.MarkerStyle{Color: "blue", Size: 8, Thickness: 3},
		},
		{
			name:      "unsupported color",
			overrides: []string{"purple"},
			wantErr:   labels.ErrInvalidConfig,
		},
		{
			name:      "non-numeric size",
			overrides: []string{"red", "big"},
			wantErr:   labels.ErrInvalidConfig,
		},
		{
			name:      "non-numeric thickness",
			overrides: []string{"red", "8", "thin"},
			wantErr:   labels.ErrInvalidConfig,
		},
		{
			name:      "zero size rejected",
			overrides: []string{"red", "0"},
			wantErr:   labels.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveStyle(base, tt.overrides)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("resolveStyle() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveStyle() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("resolveStyle() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckInputFiles(t *testing.T) {
	dir := t.TempDir()

	touch := func(name string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	labelPath := touch("session.h5")
	aviPath := touch("session.avi")
	mp4Path := touch("session.mp4")
	txtPath := touch("notes.txt")

	tests := []struct {
		name    string
		label   string
		video   string
		wantErr error
	}{
		{name: "valid avi pair", label: labelPath, video: aviPath},
		{name: "valid mp4 pair", label: labelPath, video: mp4Path},
		{name: "missing label file", label: filepath.Join(dir, "nope.h5"), video: aviPath, wantErr: labels.ErrMissingFile},
		{name: "missing video file", label: labelPath, video: filepath.Join(dir, "nope.avi"), wantErr: labels.ErrMissingFile},
		{name: "label wrong extension", label: txtPath, video: aviPath, wantErr: labels.ErrInvalidInput},
		{name: "video wrong extension", label: labelPath, video: txtPath, wantErr: labels.ErrInvalidInput},
		{name: "label is a directory", label: dir, video: aviPath, wantErr: labels.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkInputFiles(tt.label, tt.video)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("checkInputFiles() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("checkInputFiles() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
