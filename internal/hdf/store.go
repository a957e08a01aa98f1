// Package hdf implements the label-table persistence backend on HDF5.
//
// Two layouts are produced:
//
//   - The structured table (input and "_Fixed" mirror): one group per
//     keypoint, each holding parallel 1-D float64 datasets x, y and
//     likelihood, one value per frame. Save followed by Load reproduces an
//     identical table, so a session's output can seed the next session.
//
//   - The MATLAB export: 2-D X, Y and likelihood datasets indexed
//     [frame, keypoint] (MATLAB v7.3-style HDF5 container), plus the same
//     per-keypoint groups so column identity survives without string
//     datasets. Column order is the table's sorted keypoint order.
package hdf

import (
	"fmt"
	"os"
	"sort"

	"gonum.org/v1/hdf5"

	"github.com/andresmejia3/labelfix/internal/labels"
)

const (
	dsX          = "x"
	dsY          = "y"
	dsLikelihood = "likelihood"
)

// FileStore reads and writes label tables as HDF5 files. It implements both
// labels.Store and labels.Exporter.
type FileStore struct{}

// NewFileStore returns the HDF5-backed persistence implementation.
func NewFileStore() *FileStore { return &FileStore{} }

// Load reads a structured label table. The file must contain at least one
// keypoint group, and every series must share one common frame count.
func (*FileStore) Load(path string) (*labels.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", labels.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, path, err)
	}

	f, err := hdf5.OpenFile(path, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", labels.ErrInvalidInput, path, err)
	}
	defer f.Close()

	root, err := f.OpenGroup("/")
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, path, err)
	}
	defer root.Close()

	n, err := root.NumObjects()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, path, err)
	}

	type column struct{ x, y, likelihood []float64 }
	cols := make(map[string]column)
	var names []string
	frames := -1

	for i := uint(0); i < n; i++ {
		name, err := root.ObjectNameByIndex(i)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, path, err)
		}

		g, err := root.OpenGroup(name)
		if err != nil {
			// Non-group members (e.g. the 2-D matrices of a .mat written by
			// this tool) are not keypoint columns; skip them.
			continue
		}

		var c column
		loadErr := func() error {
			defer g.Close()
			if c.x, err = readSeries(g, dsX); err != nil {
				return err
			}
			if c.y, err = readSeries(g, dsY); err != nil {
				return err
			}
			c.likelihood, err = readSeries(g, dsLikelihood)
			return err
		}()
		if loadErr != nil {
			return nil, fmt.Errorf("%w: keypoint %q in %s: %v", labels.ErrInvalidInput, name, path, loadErr)
		}

		if len(c.x) != len(c.y) || len(c.x) != len(c.likelihood) {
			return nil, fmt.Errorf("%w: keypoint %q series lengths disagree (x=%d y=%d likelihood=%d)",
				labels.ErrInvalidInput, name, len(c.x), len(c.y), len(c.likelihood))
		}
		if frames == -1 {
			frames = len(c.x)
		} else if len(c.x) != frames {
			return nil, fmt.Errorf("%w: keypoint %q has %d frames, expected %d",
				labels.ErrInvalidInput, name, len(c.x), frames)
		}

		cols[name] = c
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: %s contains no keypoint groups", labels.ErrInvalidInput, path)
	}
	sort.Strings(names)

	table, err := labels.New(names, frames)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		c := cols[name]
		if err := table.SetColumn(name, c.x, c.y, c.likelihood); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Save rewrites the full table at path, replacing any previous file. This is
// the incremental checkpoint written after every accepted edit.
func (*FileStore) Save(path string, t *labels.Table) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", labels.ErrPersistence, path, err)
	}
	defer f.Close()

	if err := writeColumns(f, t); err != nil {
		return fmt.Errorf("%w: writing %s: %v", labels.ErrPersistence, path, err)
	}
	return nil
}

// Export writes the MATLAB-structure layout. Produced once, at orderly
// termination, or by the convert subcommand.
func (*FileStore) Export(path string, t *labels.Table) error {
	f, err := hdf5.CreateFile(path, hdf5.F_ACC_TRUNC)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", labels.ErrPersistence, path, err)
	}
	defer f.Close()

	x, y, likelihood := t.Matrices()
	if err := writeMatrix(f, "X", x); err != nil {
		return fmt.Errorf("%w: writing %s: %v", labels.ErrPersistence, path, err)
	}
	if err := writeMatrix(f, "Y", y); err != nil {
		return fmt.Errorf("%w: writing %s: %v", labels.ErrPersistence, path, err)
	}
	if err := writeMatrix(f, "likelihood", likelihood); err != nil {
		return fmt.Errorf("%w: writing %s: %v", labels.ErrPersistence, path, err)
	}

	if err := writeColumns(f, t); err != nil {
		return fmt.Errorf("%w: writing %s: %v", labels.ErrPersistence, path, err)
	}
	return nil
}

// groupCreator abstracts *hdf5.File and *hdf5.Group so the column layout can
// be written at either level.
type groupCreator interface {
	CreateGroup(name string) (*hdf5.Group, error)
}

// datasetCreator is satisfied by both *hdf5.File and *hdf5.Group.
type datasetCreator interface {
	CreateDataset(name string, dtype *hdf5.Datatype, dspace *hdf5.Dataspace) (*hdf5.Dataset, error)
}

// writeColumns lays out one group per keypoint with x/y/likelihood series.
func writeColumns(dst groupCreator, t *labels.Table) error {
	for _, name := range t.Keypoints() {
		x, y, likelihood, err := t.Column(name)
		if err != nil {
			return err
		}

		g, err := dst.CreateGroup(name)
		if err != nil {
			return fmt.Errorf("group %q: %v", name, err)
		}
		err = func() error {
			defer g.Close()
			if err := writeSeries(g, dsX, x); err != nil {
				return err
			}
			if err := writeSeries(g, dsY, y); err != nil {
				return err
			}
			return writeSeries(g, dsLikelihood, likelihood)
		}()
		if err != nil {
			return fmt.Errorf("group %q: %v", name, err)
		}
	}
	return nil
}

func writeSeries(dst datasetCreator, name string, data []float64) error {
	space, err := hdf5.CreateSimpleDataspace([]uint{uint(len(data))}, nil)
	if err != nil {
		return err
	}
	defer space.Close()

	ds, err := dst.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	defer ds.Close()

	return ds.Write(&data)
}

// writeMatrix stores a [frames][keypoints] matrix as one row-major 2-D dataset.
func writeMatrix(dst datasetCreator, name string, m [][]float64) error {
	frames := len(m)
	if frames == 0 {
		return fmt.Errorf("matrix %q has no rows", name)
	}
	cols := len(m[0])

	flat := make([]float64, 0, frames*cols)
	for _, row := range m {
		flat = append(flat, row...)
	}

	space, err := hdf5.CreateSimpleDataspace([]uint{uint(frames), uint(cols)}, nil)
	if err != nil {
		return err
	}
	defer space.Close()

	ds, err := dst.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, space)
	if err != nil {
		return err
	}
	defer ds.Close()

	return ds.Write(&flat)
}

func readSeries(g *hdf5.Group, name string) ([]float64, error) {
	ds, err := g.OpenDataset(name)
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	defer ds.Close()

	space := ds.Space()
	defer space.Close()

	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	if len(dims) != 1 {
		return nil, fmt.Errorf("dataset %q: expected 1-D series, got %d dimensions", name, len(dims))
	}

	data := make([]float64, dims[0])
	if err := ds.Read(&data); err != nil {
		return nil, fmt.Errorf("dataset %q: %v", name, err)
	}
	return data, nil
}
