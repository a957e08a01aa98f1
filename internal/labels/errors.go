package labels

import "errors"

// Error taxonomy shared by the CLI, the persistence backend, and the session.
// Callers wrap these with fmt.Errorf("%w: ...") so errors.Is works across layers.
var (
	// ErrMissingFile indicates an input path that does not exist.
	ErrMissingFile = errors.New("file does not exist")

	// ErrInvalidInput indicates a label file whose shape does not match the
	// expected per-frame/per-keypoint layout, or an unreadable input.
	ErrInvalidInput = errors.New("invalid label data")

	// ErrInvalidConfig indicates a bad marker color, size, or thickness.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrPersistence indicates a failed write during an incremental save or
	// the final export. Non-fatal during the edit loop: the session keeps the
	// edit in memory and retries on the next accepted edit.
	ErrPersistence = errors.New("persistence failure")
)
