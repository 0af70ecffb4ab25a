// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/canvas2d/surface"
)

// commandBytes approximates the memory of one recorded command.
const commandBytes = 64

// Recorder captures drawing calls into a display list.
//
// Between BeginRecording and EndRecording every backend.Backend call is
// recorded; outside a session drawing calls are ignored. Drawing under a
// non-invertible transform is dropped at record time.
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	recording     bool

	commands []Command
	pool     *ResourcePool
	state    backend.State
}

var _ backend.Backend = (*Recorder)(nil)

// NewRecorder returns an idle recorder.
func NewRecorder() *Recorder {
	return &Recorder{state: backend.NewState()}
}

// BeginRecording starts a session for a width x height target. It returns
// false, leaving the recorder idle, when the dimensions are non-positive or
// exceed the device limits. Beginning while a session is active discards the
// pending commands.
func (r *Recorder) BeginRecording(width, height int) bool {
	if surface.CheckSize(width, height) != nil {
		r.reset()
		return false
	}
	r.reset()
	r.width, r.height = width, height
	r.recording = true
	return true
}

func (r *Recorder) reset() {
	r.recording = false
	r.width, r.height = 0, 0
	r.commands = make([]Command, 0, 64)
	r.pool = NewResourcePool()
	r.state = backend.NewState()
}

// Recording reports whether a session is active.
func (r *Recorder) Recording() bool { return r.recording }

// Empty reports whether no drawing command has been recorded in the
// current session. State commands alone do not count.
func (r *Recorder) Empty() bool {
	for _, c := range r.commands {
		switch c.Type() {
		case CmdSave, CmdRestore, CmdSetTransform, CmdClipRect:
		default:
			return false
		}
	}
	return true
}

// Len returns the number of commands recorded in the current session.
func (r *Recorder) Len() int { return len(r.commands) }

// EndRecording finalizes the session and returns its display list. The
// recorder is reset and can begin a new session. Returns nil if no session
// is active.
func (r *Recorder) EndRecording() *DisplayList {
	if !r.recording {
		return nil
	}
	list := newDisplayList(r.width, r.height, r.commands, r.pool)
	r.reset()
	return list
}

// Flush finalizes the pending commands like EndRecording but keeps the
// session open: the next list starts with commands re-establishing the
// current transform and clip stack.
func (r *Recorder) Flush() *DisplayList {
	if !r.recording {
		return nil
	}
	w, h := r.width, r.height
	st := r.state.Snapshot()
	list := r.EndRecording()
	r.BeginRecording(w, h)
	st.Apply(r)
	return list
}

// State returns a copy of the transform and clip stack.
func (r *Recorder) State() backend.State { return r.state.Snapshot() }

func (r *Recorder) record(c Command) {
	r.commands = append(r.commands, c)
}

// Size implements backend.Backend.
func (r *Recorder) Size() (int, int) { return r.width, r.height }

// Save implements backend.Backend.
func (r *Recorder) Save() {
	if !r.recording {
		return
	}
	r.state.Save()
	r.record(SaveCommand{})
}

// Restore implements backend.Backend. Nothing is recorded when the stack
// is empty.
func (r *Recorder) Restore() {
	if !r.recording || !r.state.Restore() {
		return
	}
	r.record(RestoreCommand{})
}

// SetTransform implements backend.Backend.
func (r *Recorder) SetTransform(m gg.Matrix) {
	if !r.recording {
		return
	}
	r.state.SetTransform(m)
	r.record(SetTransformCommand{Matrix: m})
}

// Transform implements backend.Backend.
func (r *Recorder) Transform() gg.Matrix { return r.state.Transform() }

// Invertible implements backend.Backend.
func (r *Recorder) Invertible() bool { return r.state.Invertible() }

// ClipRect implements backend.Backend.
func (r *Recorder) ClipRect(rect backend.Rect) {
	if !r.recording || !rect.Finite() || !r.state.AddClip(rect) {
		return
	}
	r.record(ClipRectCommand{Rect: rect.Canon()})
}

func (r *Recorder) drawable() bool {
	return r.recording && r.state.Invertible()
}

// recordPaint drops what the display list cannot reproduce: shadows are
// drawn by the raster backend only.
func recordPaint(p backend.Paint) backend.Paint {
	p.Shadow = backend.Shadow{}
	return p
}

// FillRect implements backend.Backend.
func (r *Recorder) FillRect(rect backend.Rect, p backend.Paint) {
	if !r.drawable() || !rect.Finite() || rect.Empty() {
		return
	}
	r.record(FillRectCommand{Rect: rect.Canon(), Paint: recordPaint(p)})
}

// StrokeRect implements backend.Backend.
func (r *Recorder) StrokeRect(rect backend.Rect, p backend.Paint) {
	if !r.drawable() || !rect.Finite() || (rect.W == 0 && rect.H == 0) {
		return
	}
	r.record(StrokeRectCommand{Rect: rect.Canon(), Paint: recordPaint(p)})
}

// ClearRect implements backend.Backend.
func (r *Recorder) ClearRect(rect backend.Rect) {
	if !r.drawable() || !rect.Finite() || rect.Empty() {
		return
	}
	r.record(ClearRectCommand{Rect: rect.Canon()})
}

// FillPath implements backend.Backend.
func (r *Recorder) FillPath(path *gg.Path, p backend.Paint) {
	if path == nil || !r.drawable() {
		return
	}
	r.record(FillPathCommand{Path: r.pool.AddPath(path), Paint: recordPaint(p)})
}

// StrokePath implements backend.Backend.
func (r *Recorder) StrokePath(path *gg.Path, p backend.Paint) {
	if path == nil || !r.drawable() {
		return
	}
	r.record(StrokePathCommand{Path: r.pool.AddPath(path), Paint: recordPaint(p)})
}

// DrawImage implements backend.Backend.
func (r *Recorder) DrawImage(img image.Image, dst backend.Rect, p backend.Paint) {
	if img == nil || img.Bounds().Empty() || !r.drawable() || !dst.Finite() || dst.Empty() {
		return
	}
	r.record(DrawImageCommand{Image: r.pool.AddImage(img), Dst: dst.Canon(), Paint: recordPaint(p)})
}

// DrawText implements backend.Backend.
func (r *Recorder) DrawText(s string, x, y float64, p backend.Paint) {
	if s == "" || p.Face == nil || !r.drawable() {
		return
	}
	r.record(DrawTextCommand{Text: s, X: x, Y: y, Paint: recordPaint(p)})
}

// PutImageData implements backend.Backend. Like the raster backend it is
// not subject to the transform, so it is recorded even while the transform
// is not invertible.
func (r *Recorder) PutImageData(img *image.NRGBA, dx, dy int) {
	if img == nil || img.Bounds().Empty() || !r.recording {
		return
	}
	r.record(PutImageDataCommand{Image: r.pool.AddImage(img), DX: dx, DY: dy})
}
