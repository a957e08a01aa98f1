package display

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/andresmejia3/labelfix/internal/video"
)

// OpenCV mouse event codes (cv::MouseEventTypes).
const (
	mouseEventMove        = 0
	mouseEventLButtonDown = 1
	mouseEventLButtonUp   = 4
)

// pollTimeoutMs bounds one WaitKey call. Key presses return immediately;
// pointer-only activity is picked up on the next tick, which is what makes
// paint-while-scrolling feel continuous.
const pollTimeoutMs = 30

// Window is the gocv-backed Canvas: a highgui window with Frame and Label
// trackbars and a mouse handler feeding the per-iteration pointer snapshot.
type Window struct {
	win      *gocv.Window
	frameBar *gocv.Trackbar
	labelBar *gocv.Trackbar

	// Pointer state written by the mouse handler. The handler runs while
	// Poll sits in WaitKey on this same goroutine, so no locking is needed.
	pointer Pointer
	clicked bool
	closed  bool
}

// NewWindow creates the editor window with sliders sized to the session's
// navigable ranges.
func NewWindow(name string, frameCount, labelCount int) (*Window, error) {
	if frameCount < 1 || labelCount < 1 {
		return nil, fmt.Errorf("window needs at least one frame and one keypoint, got %d/%d", frameCount, labelCount)
	}

	w := &Window{win: gocv.NewWindow(name)}
	w.labelBar = w.win.CreateTrackbar("Label", labelCount-1)
	w.frameBar = w.win.CreateTrackbar("Frame", frameCount-1)

	w.win.SetMouseHandler(func(event int, x int, y int, flags int, userdata interface{}) {
		switch event {
		case mouseEventLButtonDown:
			w.pointer.X, w.pointer.Y = float64(x), float64(y)
			w.pointer.Down = true
			w.clicked = true
		case mouseEventLButtonUp:
			w.pointer.Down = false
		case mouseEventMove:
			if w.pointer.Down {
				w.pointer.X, w.pointer.Y = float64(x), float64(y)
			}
		}
	}, nil)

	return w, nil
}

// Show draws the markers onto the frame and displays it. The frame is
// consumed: it was decoded for this render only.
func (w *Window) Show(f video.Frame, markers []Marker) error {
	mf, ok := f.(*video.MatFrame)
	if !ok {
		return fmt.Errorf("unsupported frame type %T", f)
	}
	if mf.Mat.Empty() {
		return fmt.Errorf("cannot display an empty frame")
	}

	for _, m := range markers {
		center := image.Pt(m.X, m.Y)
		radius := m.Size / 2
		if radius < 1 {
			radius = 1
		}

		// Thickness -1 fills the circle; the center is the keypoint position.
		gocv.Circle(&mf.Mat, center, radius, m.Color, -1)

		if m.Active {
			gocv.Circle(&mf.Mat, center, radius+m.Thickness*2, m.Color, m.Thickness)
			gocv.PutText(&mf.Mat, m.Label, image.Pt(30, 30), gocv.FontHersheySimplex, 1, m.Color, 2)
		}
	}

	w.win.IMShow(mf.Mat)
	return nil
}

// Poll waits up to pollTimeoutMs for a key event and returns the input
// snapshot. Mouse and trackbar events are processed by the toolkit during
// the wait.
func (w *Window) Poll() Input {
	key := w.win.WaitKey(pollTimeoutMs)

	in := Input{
		Key:      key,
		Pointer:  w.pointer,
		FramePos: w.frameBar.GetPos(),
		LabelPos: w.labelBar.GetPos(),
	}
	in.Pointer.Clicked = w.clicked
	w.clicked = false

	// The close control does not deliver a clean event on every backend;
	// polling visibility is the best available signal. ESC remains the only
	// guaranteed-clean exit.
	if w.win.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
		in.Closed = true
	}
	return in
}

// SetFramePos mirrors key navigation onto the frame slider.
func (w *Window) SetFramePos(pos int) { w.frameBar.SetPos(pos) }

// SetLabelPos mirrors keypoint cycling onto the label slider.
func (w *Window) SetLabelPos(pos int) { w.labelBar.SetPos(pos) }

// Close destroys the window. Safe to call more than once.
func (w *Window) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.win.Close()
}
