package display

import (
	"image/color"

	"github.com/andresmejia3/labelfix/internal/video"
)

// Navigation keys. ',' and '.' are deliberate: arrow-pad key codes differ
// between platforms and window backends, these two do not.
const (
	KeyNone      = -1
	KeyEscape    = 27
	KeyPrevFrame = 44 // ','
	KeyNextFrame = 46 // '.'
	KeyPrevLabel = 91 // '['
	KeyNextLabel = 93 // ']'
)

// Marker is one keypoint to draw. Coordinates are the circle center.
type Marker struct {
	X, Y      int
	Color     color.RGBA
	Size      int
	Thickness int
	// Active marks the keypoint currently targeted by pointer clicks; it is
	// drawn with an extra outline ring and its name as on-frame text.
	Active bool
	Label  string
}

// Pointer is the pointer snapshot taken once per poll iteration.
type Pointer struct {
	X, Y float64
	// Down is true while the left button is held (drives paint-while-scrolling).
	Down bool
	// Clicked is true if a left-button press happened since the last poll.
	Clicked bool
}

// Input is everything the session consumes per iteration: the last key, the
// pointer snapshot, the two slider positions, and whether the window was
// closed from the outside.
type Input struct {
	Key      int
	Pointer  Pointer
	FramePos int
	LabelPos int
	Closed   bool
}

// Canvas is the window/display capability: it shows an overlaid frame and
// delivers user input. One implementation drives a real window; tests feed
// synthetic input sequences through a fake.
type Canvas interface {
	// Show renders the frame with the given markers.
	Show(f video.Frame, markers []Marker) error
	// Poll blocks briefly for the next key/pointer event and returns one
	// consistent snapshot of the input state.
	Poll() Input
	// SetFramePos moves the frame slider to mirror key navigation.
	SetFramePos(pos int)
	// SetLabelPos moves the keypoint slider.
	SetLabelPos(pos int)
	// Close destroys the window. Safe to call more than once.
	Close() error
}
