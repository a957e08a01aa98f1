package labels

// Store reads and writes the structured label-table file. The session only
// sees this interface, so the file backend stays swappable in tests.
type Store interface {
	// Load reads a full table from path.
	Load(path string) (*Table, error)
	// Save rewrites the table at path, making it the durable checkpoint.
	Save(path string, t *Table) error
}

// Exporter writes the one-shot MATLAB-structure export produced at clean
// termination.
type Exporter interface {
	Export(path string, t *Table) error
}
