// Package session drives the frame-by-frame review/edit loop: it owns the
// label table and the cursor, renders overlays through a Canvas, and keeps
// the on-disk mirror in sync with every accepted edit.
package session

import (
	"fmt"
	"math"
	"os"
	"sync/atomic"

	"github.com/andresmejia3/labelfix/internal/config"
	"github.com/andresmejia3/labelfix/internal/display"
	"github.com/andresmejia3/labelfix/internal/labels"
	"github.com/andresmejia3/labelfix/internal/video"
)

// Cursor is the current edit position: one frame, one active keypoint.
type Cursor struct {
	Frame int
	Label int
}

type phase int

const (
	phaseRunning phase = iota
	phaseExporting
	phaseClosed
)

// Params carries everything a session needs. All fields are required.
type Params struct {
	Table    *labels.Table
	Source   video.FrameSource
	Canvas   display.Canvas
	Store    labels.Store
	Exporter labels.Exporter
	Style    config.MarkerStyle

	// FixedPath is the incrementally-updated mirror; MATPath is the one-shot
	// MATLAB export written at termination.
	FixedPath string
	MATPath   string
}

// Session owns the label table, the video cursor, and the edit-to-disk
// synchronization. Single-goroutine by design: the loop blocks on Canvas.Poll
// and processes each input snapshot to completion.
type Session struct {
	table     *labels.Table
	keypoints []string
	source    video.FrameSource
	canvas    display.Canvas
	store     labels.Store
	exporter  labels.Exporter
	style     config.MarkerStyle

	fixedPath string
	matPath   string

	cursor     Cursor
	frameCount int // navigable range, clamped to min(table, video)

	// dirty: in-memory edits not yet on disk (a save failed).
	// edited: at least one edit was accepted this session.
	dirty  bool
	edited bool

	state       phase
	needsRedraw bool

	// stopRequested is the only field touched from another goroutine
	// (the signal handler); everything else stays single-goroutine.
	stopRequested atomic.Bool
}

// New validates the inputs and builds a session positioned at frame 0 with
// the first keypoint active. When the label file and the video disagree on
// frame count, the navigable range is clamped to the smaller of the two.
func New(p Params) (*Session, error) {
	if p.Table == nil || p.Source == nil || p.Canvas == nil || p.Store == nil || p.Exporter == nil {
		return nil, fmt.Errorf("%w: session is missing a dependency", labels.ErrInvalidInput)
	}
	if err := p.Style.Validate(); err != nil {
		return nil, err
	}

	frameCount := p.Table.Frames()
	if vc := p.Source.FrameCount(); vc != frameCount {
		if vc < frameCount {
			frameCount = vc
		}
		fmt.Fprintf(os.Stderr, "⚠️  Frame count mismatch: labels=%d video=%d. Clamping to %d.\n",
			p.Table.Frames(), p.Source.FrameCount(), frameCount)
	}
	if frameCount < 1 {
		return nil, fmt.Errorf("%w: no frames to edit", labels.ErrInvalidInput)
	}

	return &Session{
		table:       p.Table,
		keypoints:   p.Table.Keypoints(),
		source:      p.Source,
		canvas:      p.Canvas,
		store:       p.Store,
		exporter:    p.Exporter,
		style:       p.Style,
		fixedPath:   p.FixedPath,
		matPath:     p.MATPath,
		frameCount:  frameCount,
		needsRedraw: true,
	}, nil
}

// Cursor returns the current edit position.
func (s *Session) Cursor() Cursor { return s.cursor }

// FrameCount returns the navigable frame range after clamping.
func (s *Session) FrameCount() int { return s.frameCount }

// ActiveKeypoint returns the name of the keypoint targeted by clicks.
func (s *Session) ActiveKeypoint() string { return s.keypoints[s.cursor.Label] }

// Overlay computes the markers for the current frame. Pure: no side effects.
// Keypoints with NaN coordinates (not yet predicted) are omitted; the active
// keypoint is appended last so it draws on top.
func (s *Session) Overlay() []display.Marker {
	markers := make([]display.Marker, 0, len(s.keypoints))
	var active *display.Marker

	for k, name := range s.keypoints {
		p, err := s.table.At(s.cursor.Frame, k)
		if err != nil {
			continue
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}

		m := display.Marker{
			X:         int(math.Round(p.X)),
			Y:         int(math.Round(p.Y)),
			Color:     s.style.RGBA(),
			Size:      s.style.Size,
			Thickness: s.style.Thickness,
		}
		if k == s.cursor.Label {
			m.Active = true
			m.Label = name
			active = &m
			continue
		}
		markers = append(markers, m)
	}

	if active != nil {
		markers = append(markers, *active)
	}
	return markers
}

// ApplyEdit overwrites the active keypoint on the current frame with the
// clicked position at likelihood 1.0 (a manual correction is maximally
// confident), then synchronizes the mirror file. A failed write is returned
// but the in-memory edit is kept; the next accepted edit or Terminate will
// retry. Identical repeat edits (pointer held still) are no-ops.
func (s *Session) ApplyEdit(x, y float64) error {
	if s.state != phaseRunning {
		return fmt.Errorf("session is no longer accepting edits")
	}

	next := labels.Point{X: x, Y: y, Likelihood: 1.0}
	if cur, err := s.table.At(s.cursor.Frame, s.cursor.Label); err == nil && cur == next {
		return nil
	}

	if err := s.table.Set(s.cursor.Frame, s.cursor.Label, next); err != nil {
		return err
	}
	s.edited = true
	s.dirty = true
	s.needsRedraw = true

	return s.flush()
}

// flush rewrites the whole table to the mirror file. Whole-table granularity
// matches the durability contract: after it returns nil, the file reflects
// every accepted edit so far.
func (s *Session) flush() error {
	if err := s.store.Save(s.fixedPath, s.table); err != nil {
		return err
	}
	s.dirty = false
	return nil
}

// AdvanceFrame moves the cursor by delta, clamped to [0, frameCount-1].
// No-op at the boundaries: no wrap, no error.
func (s *Session) AdvanceFrame(delta int) {
	s.SetFrame(s.cursor.Frame + delta)
}

// SetFrame positions the cursor on an absolute frame index, clamped.
func (s *Session) SetFrame(index int) {
	if index < 0 {
		index = 0
	}
	if index > s.frameCount-1 {
		index = s.frameCount - 1
	}
	if index != s.cursor.Frame {
		s.cursor.Frame = index
		s.needsRedraw = true
	}
}

// CycleLabel advances the active keypoint through the fixed ordered set,
// wrapping around in both directions.
func (s *Session) CycleLabel(delta int) {
	n := len(s.keypoints)
	next := ((s.cursor.Label+delta)%n + n) % n
	if next != s.cursor.Label {
		s.cursor.Label = next
		s.needsRedraw = true
	}
}

// SetLabel positions the active keypoint absolutely (slider input), clamped.
func (s *Session) SetLabel(index int) {
	if index < 0 {
		index = 0
	}
	if index > len(s.keypoints)-1 {
		index = len(s.keypoints) - 1
	}
	if index != s.cursor.Label {
		s.cursor.Label = index
		s.needsRedraw = true
	}
}

// RequestStop asks the poll loop to terminate after the current iteration.
// Safe to call from another goroutine; used for SIGINT so an interrupted
// session still flushes and exports.
func (s *Session) RequestStop() {
	s.stopRequested.Store(true)
}

// Run drives the blocking poll loop until ESC, window close, or a stop
// request, then terminates. Each iteration: render (if anything changed),
// poll one input snapshot, handle it to completion.
func (s *Session) Run() error {
	for s.state == phaseRunning && !s.stopRequested.Load() {
		if s.needsRedraw {
			if err := s.render(); err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Render failed: %v\n", err)
			}
		}
		if s.Handle(s.canvas.Poll()) {
			break
		}
	}
	return s.Terminate()
}

// Handle processes one input snapshot and reports whether the session should
// terminate. Order matters: a held pointer paints the frame being left
// before navigation moves the cursor.
func (s *Session) Handle(in display.Input) (quit bool) {
	if s.state != phaseRunning {
		return true
	}
	if in.Closed {
		fmt.Fprintf(os.Stderr, "⚠️  Window closed externally. Flushing and exiting (use ESC for a guaranteed-clean exit).\n")
		return true
	}

	// 1. Pointer edit: click sets the point, a held button keeps painting
	// while the frame advances underneath it.
	if in.Pointer.Clicked || in.Pointer.Down {
		if err := s.ApplyEdit(in.Pointer.X, in.Pointer.Y); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Save failed, edit kept in memory (will retry on next edit): %v\n", err)
		}
	}

	// 2. Sliders: absolute positions, clamped into the navigable range.
	if in.FramePos != s.cursor.Frame {
		s.SetFrame(in.FramePos)
	}
	if in.LabelPos != s.cursor.Label {
		s.SetLabel(in.LabelPos)
	}

	// 3. Keys.
	switch in.Key {
	case display.KeyPrevFrame:
		s.AdvanceFrame(-1)
	case display.KeyNextFrame:
		s.AdvanceFrame(1)
	case display.KeyPrevLabel:
		s.CycleLabel(-1)
	case display.KeyNextLabel:
		s.CycleLabel(1)
	case display.KeyEscape:
		return true
	}
	return false
}

// render reads the current frame, overlays the markers, and mirrors the
// cursor onto the sliders.
func (s *Session) render() error {
	s.needsRedraw = false

	f, err := s.source.Read(s.cursor.Frame)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.canvas.Show(f, s.Overlay()); err != nil {
		return err
	}
	s.canvas.SetFramePos(s.cursor.Frame)
	s.canvas.SetLabelPos(s.cursor.Label)
	return nil
}

// Terminate flushes the mirror if needed, writes the MATLAB export, and
// releases the frame source and the canvas. Idempotent: a second call does
// nothing, so neither output file can be corrupted by double termination.
// Once entered, no further edits are accepted.
func (s *Session) Terminate() error {
	if s.state != phaseRunning {
		return nil
	}
	s.state = phaseExporting

	var firstErr error

	if s.dirty {
		if err := s.flush(); err != nil {
			firstErr = err
			fmt.Fprintf(os.Stderr, "⚠️  Final save failed, edits since the last successful write are lost: %v\n", err)
		}
	}
	if s.edited && !s.dirty {
		fmt.Fprintf(os.Stderr, "💾 Saved edited label file: %s\n", s.fixedPath)
	}

	if err := s.exporter.Export(s.matPath, s.table); err != nil {
		if firstErr == nil {
			firstErr = err
		}
		fmt.Fprintf(os.Stderr, "⚠️  MATLAB export failed: %v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "💾 Saved MATLAB label file: %s\n", s.matPath)
	}

	if err := s.canvas.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.source.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.state = phaseClosed
	return firstErr
}
