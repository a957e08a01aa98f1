package labels

import (
	"fmt"
	"sort"
)

// Point is one keypoint observation on one frame.
// Likelihood is the model's confidence in [0,1]; a manual correction is 1.0.
type Point struct {
	X          float64
	Y          float64
	Likelihood float64
}

// series holds the parallel per-frame sequences for a single keypoint,
// matching the on-disk layout (x, y, likelihood columns of equal length).
type series struct {
	x, y, likelihood []float64
}

// Table is the in-memory label table: every (frame, keypoint) pair has
// exactly one Point for the lifetime of a session. The keypoint set is fixed
// at construction and sorted by name, which also defines the column order of
// the MATLAB export.
type Table struct {
	keypoints []string
	index     map[string]int
	frames    int
	data      []series // one per keypoint, same order as keypoints
}

// New builds a zero-filled table for the given keypoint names and frame count.
func New(keypoints []string, frames int) (*Table, error) {
	if len(keypoints) == 0 {
		return nil, fmt.Errorf("%w: no keypoints", ErrInvalidInput)
	}
	if frames <= 0 {
		return nil, fmt.Errorf("%w: frame count must be positive, got %d", ErrInvalidInput, frames)
	}

	names := make([]string, len(keypoints))
	copy(names, keypoints)
	sort.Strings(names)

	index := make(map[string]int, len(names))
	for i, name := range names {
		if name == "" {
			return nil, fmt.Errorf("%w: empty keypoint name", ErrInvalidInput)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate keypoint %q", ErrInvalidInput, name)
		}
		index[name] = i
	}

	data := make([]series, len(names))
	for i := range data {
		data[i] = series{
			x:          make([]float64, frames),
			y:          make([]float64, frames),
			likelihood: make([]float64, frames),
		}
	}

	return &Table{keypoints: names, index: index, frames: frames, data: data}, nil
}

// Keypoints returns the fixed, sorted keypoint names.
func (t *Table) Keypoints() []string {
	out := make([]string, len(t.keypoints))
	copy(out, t.keypoints)
	return out
}

// Frames returns the number of frames in the table.
func (t *Table) Frames() int { return t.frames }

// At returns the point at (frame, keypoint index).
func (t *Table) At(frame, keypoint int) (Point, error) {
	if err := t.check(frame, keypoint); err != nil {
		return Point{}, err
	}
	s := t.data[keypoint]
	return Point{X: s.x[frame], Y: s.y[frame], Likelihood: s.likelihood[frame]}, nil
}

// Set overwrites the point at (frame, keypoint index). Entries are never
// removed, only overwritten.
func (t *Table) Set(frame, keypoint int, p Point) error {
	if err := t.check(frame, keypoint); err != nil {
		return err
	}
	s := t.data[keypoint]
	s.x[frame] = p.X
	s.y[frame] = p.Y
	s.likelihood[frame] = p.Likelihood
	return nil
}

// SetColumn fills the full per-frame series of one keypoint. Used by
// persistence backends while loading; lengths must match the frame count.
func (t *Table) SetColumn(name string, x, y, likelihood []float64) error {
	i, ok := t.index[name]
	if !ok {
		return fmt.Errorf("%w: unknown keypoint %q", ErrInvalidInput, name)
	}
	if len(x) != t.frames || len(y) != t.frames || len(likelihood) != t.frames {
		return fmt.Errorf("%w: keypoint %q series length mismatch (x=%d y=%d likelihood=%d, want %d)",
			ErrInvalidInput, name, len(x), len(y), len(likelihood), t.frames)
	}
	copy(t.data[i].x, x)
	copy(t.data[i].y, y)
	copy(t.data[i].likelihood, likelihood)
	return nil
}

// Column returns copies of the per-frame series for one keypoint.
func (t *Table) Column(name string) (x, y, likelihood []float64, err error) {
	i, ok := t.index[name]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: unknown keypoint %q", ErrInvalidInput, name)
	}
	x = append([]float64(nil), t.data[i].x...)
	y = append([]float64(nil), t.data[i].y...)
	likelihood = append([]float64(nil), t.data[i].likelihood...)
	return x, y, likelihood, nil
}

// Matrices converts the table into the MATLAB-structure layout: three
// [frame][keypoint] matrices with columns in keypoint order.
func (t *Table) Matrices() (x, y, likelihood [][]float64) {
	x = make([][]float64, t.frames)
	y = make([][]float64, t.frames)
	likelihood = make([][]float64, t.frames)
	for f := 0; f < t.frames; f++ {
		x[f] = make([]float64, len(t.keypoints))
		y[f] = make([]float64, len(t.keypoints))
		likelihood[f] = make([]float64, len(t.keypoints))
		for k := range t.keypoints {
			x[f][k] = t.data[k].x[f]
			y[f][k] = t.data[k].y[f]
			likelihood[f][k] = t.data[k].likelihood[f]
		}
	}
	return x, y, likelihood
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out, _ := New(t.keypoints, t.frames)
	for i, name := range t.keypoints {
		_ = out.SetColumn(name, t.data[i].x, t.data[i].y, t.data[i].likelihood)
	}
	return out
}

func (t *Table) check(frame, keypoint int) error {
	if frame < 0 || frame >= t.frames {
		return fmt.Errorf("frame index %d out of range [0,%d)", frame, t.frames)
	}
	if keypoint < 0 || keypoint >= len(t.keypoints) {
		return fmt.Errorf("keypoint index %d out of range [0,%d)", keypoint, len(t.keypoints))
	}
	return nil
}
