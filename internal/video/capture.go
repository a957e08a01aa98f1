package video

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
	"gocv.io/x/gocv"

	"github.com/andresmejia3/labelfix/internal/labels"
)

// MatFrame wraps a decoded OpenCV matrix. The display backend draws on it
// directly; the frame is re-read from the capture for every render, so the
// overlay never accumulates.
type MatFrame struct {
	Mat gocv.Mat
}

// Close releases the underlying matrix.
func (f *MatFrame) Close() { f.Mat.Close() }

// Capture is the gocv-backed FrameSource.
type Capture struct {
	cap    *gocv.VideoCapture
	frames int
}

// Open validates the path and opens the video for random-access reads.
func Open(path string) (*Capture, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", labels.ErrMissingFile, path)
		}
		return nil, fmt.Errorf("%w: %s: %v", labels.ErrInvalidInput, path, err)
	}

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening video %s: %v", labels.ErrInvalidInput, path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: video %s could not be decoded", labels.ErrInvalidInput, path)
	}

	c := &Capture{cap: cap}

	// 1. Fast Path: container metadata
	c.frames = int(cap.Get(gocv.VideoCaptureFrameCount))

	// 2. Slow Path: count by decoding (some containers report 0 or nonsense)
	if c.frames <= 0 {
		c.frames = c.countFrames()
	}
	if c.frames <= 0 {
		cap.Close()
		return nil, fmt.Errorf("%w: video %s has no readable frames", labels.ErrInvalidInput, path)
	}
	return c, nil
}

// countFrames walks the whole stream once. Slow for long videos, hence the
// spinner; the cursor is rewound afterwards.
func (c *Capture) countFrames() int {
	fmt.Fprintf(os.Stderr, "⏳ Frame count missing from metadata. Counting frames (this may take a moment)...\n")
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription("🎞️  Counting frames"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
	defer bar.Finish()

	mat := gocv.NewMat()
	defer mat.Close()

	count := 0
	for c.cap.Read(&mat) {
		count++
		bar.Add(1)
	}
	c.cap.Set(gocv.VideoCapturePosFrames, 0)
	return count
}

// FrameCount reports the number of readable frames.
func (c *Capture) FrameCount() int { return c.frames }

// Read seeks to index and decodes one frame.
func (c *Capture) Read(index int) (Frame, error) {
	if index < 0 || index >= c.frames {
		return nil, fmt.Errorf("frame index %d out of range [0,%d)", index, c.frames)
	}

	c.cap.Set(gocv.VideoCapturePosFrames, float64(index))

	mat := gocv.NewMat()
	if ok := c.cap.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("failed to decode frame %d", index)
	}
	return &MatFrame{Mat: mat}, nil
}

// Close releases the video handle. Safe to call more than once.
func (c *Capture) Close() error {
	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.cap = nil
	return err
}
