package video

// Frame is an opaque handle to one decoded video frame. The display backend
// knows the concrete type; the session only moves handles around and closes
// them after rendering.
type Frame interface {
	Close()
}

// FrameSource is a random-access reader over a video's frames.
type FrameSource interface {
	// FrameCount reports how many frames can be read.
	FrameCount() int
	// Read decodes the frame at index (0-based).
	Read(index int) (Frame, error)
	// Close releases the underlying decoder.
	Close() error
}
