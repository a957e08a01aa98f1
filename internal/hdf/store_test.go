package hdf

import (
	"errors"
	"path/filepath"
	"testing"

	"gonum.org/v1/hdf5"

	"github.com/andresmejia3/labelfix/internal/labels"
)

// newTestTable builds a 5-frame, 2-keypoint table with distinct values.
func newTestTable(t *testing.T) *labels.Table {
	t.Helper()
	tbl, err := labels.New([]string{"snout", "tailbase"}, 5)
	if err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 5; f++ {
		for k := 0; k < 2; k++ {
			p := labels.Point{
				X:          float64(f) + 0.25,
				Y:          float64(k*100) + 0.5,
				Likelihood: 0.2,
			}
			if err := tbl.Set(f, k, p); err != nil {
				t.Fatal(err)
			}
		}
	}
	return tbl
}

// TestRoundTrip verifies that Save followed by Load reproduces the table
// exactly, which is what lets a session resume a previous session's output.
// Requires libhdf5, so it is skipped in short mode.
func TestRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HDF5 integration test in short mode")
	}

	store := NewFileStore()
	tbl := newTestTable(t)
	path := filepath.Join(t.TempDir(), "labels_Fixed.h5")

	if err := store.Save(path, tbl); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.Frames() != tbl.Frames() {
		t.Fatalf("Frames = %d, want %d", got.Frames(), tbl.Frames())
	}
	gotKP, wantKP := got.Keypoints(), tbl.Keypoints()
	if len(gotKP) != len(wantKP) {
		t.Fatalf("Keypoints = %v, want %v", gotKP, wantKP)
	}
	for i := range wantKP {
		if gotKP[i] != wantKP[i] {
			t.Fatalf("Keypoints = %v, want %v", gotKP, wantKP)
		}
	}
	for f := 0; f < tbl.Frames(); f++ {
		for k := range wantKP {
			want, _ := tbl.At(f, k)
			have, _ := got.At(f, k)
			if have != want {
				t.Errorf("Entry (%d,%d) = %+v, want %+v", f, k, have, want)
			}
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HDF5 integration test in short mode")
	}

	_, err := NewFileStore().Load(filepath.Join(t.TempDir(), "absent.h5"))
	if !errors.Is(err, labels.ErrMissingFile) {
		t.Errorf("Expected ErrMissingFile, got %v", err)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HDF5 integration test in short mode")
	}

	// An empty HDF5 file has the expected container format but no keypoints.
	path := filepath.Join(t.TempDir(), "empty.h5")
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		t.Fatal(err)
	}
	f.Close()

	_, err = NewFileStore().Load(path)
	if !errors.Is(err, labels.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty container, got %v", err)
	}
}

// TestExportLayout checks the MATLAB export: 2-D X/Y/likelihood datasets of
// shape [frames, keypoints] whose entries match the table.
func TestExportLayout(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping HDF5 integration test in short mode")
	}

	store := NewFileStore()
	tbl, err := labels.New([]string{"a", "b"}, 3)
	if err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 3; f++ {
		for k := 0; k < 2; k++ {
			if err := tbl.Set(f, k, labels.Point{X: float64(10*f + k), Y: 1, Likelihood: 0.9}); err != nil {
				t.Fatal(err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "labels.mat")
	if err := store.Export(path, tbl); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		t.Fatalf("Reopening export failed: %v", err)
	}
	defer f.Close()

	ds, err := f.OpenDataset("X")
	if err != nil {
		t.Fatalf("Export is missing the X matrix: %v", err)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		t.Fatal(err)
	}
	if len(dims) != 2 || dims[0] != 3 || dims[1] != 2 {
		t.Fatalf("X dims = %v, want [3 2]", dims)
	}

	flat := make([]float64, 6)
	if err := ds.Read(&flat); err != nil {
		t.Fatal(err)
	}
	for f := 0; f < 3; f++ {
		for k := 0; k < 2; k++ {
			want, _ := tbl.At(f, k)
			if flat[f*2+k] != want.X {
				t.Errorf("X[%d,%d] = %v, want %v", f, k, flat[f*2+k], want.X)
			}
		}
	}

	// The export doubles as a loadable table thanks to the keypoint groups.
	back, err := store.Load(path)
	if err != nil {
		t.Fatalf("Loading export back failed: %v", err)
	}
	if back.Frames() != 3 || len(back.Keypoints()) != 2 {
		t.Errorf("Re-loaded export shape = %dx%d, want 3x2", back.Frames(), len(back.Keypoints()))
	}
}
