// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"image"
	"math"

	"github.com/gogpu/gg"
)

// Clip is one clip rectangle together with the transform that was current
// when it was applied.
type Clip struct {
	Rect      Rect
	Transform gg.Matrix
}

type frame struct {
	transform  gg.Matrix
	clips      []Clip
	invertible bool
}

// State is the save/restore stack of transform and clip shared by both
// backends. The zero value is not usable; call NewState.
type State struct {
	cur   frame
	stack []frame
}

// NewState returns a state with the identity transform and no clip.
func NewState() State {
	return State{cur: frame{transform: gg.Identity(), invertible: true}}
}

// Save pushes the current frame.
func (s *State) Save() {
	saved := s.cur
	saved.clips = append([]Clip(nil), s.cur.clips...)
	s.stack = append(s.stack, saved)
}

// Restore pops the last saved frame. It returns false, leaving the state
// untouched, when the stack is empty.
func (s *State) Restore() bool {
	n := len(s.stack)
	if n == 0 {
		return false
	}
	s.cur = s.stack[n-1]
	s.stack = s.stack[:n-1]
	return true
}

// Depth returns the number of saved frames.
func (s *State) Depth() int { return len(s.stack) }

// Transform returns the current transform.
func (s *State) Transform() gg.Matrix { return s.cur.transform }

// SetTransform replaces the current transform and recomputes the
// invertible flag.
func (s *State) SetTransform(m gg.Matrix) {
	s.cur.transform = m
	s.cur.invertible = Invertible(m)
}

// Invertible reports whether drawing is currently allowed.
func (s *State) Invertible() bool { return s.cur.invertible }

// AddClip intersects the clip with r under the current transform. Returns
// false when suppressed by a non-invertible transform.
func (s *State) AddClip(r Rect) bool {
	if !s.cur.invertible {
		return false
	}
	s.cur.clips = append(s.cur.clips, Clip{Rect: r.Canon(), Transform: s.cur.transform})
	return true
}

// Clips returns the clips of the current frame, oldest first.
func (s *State) Clips() []Clip {
	return append([]Clip(nil), s.cur.clips...)
}

// ClipBounds returns the device-space bounding box of the current clip
// intersected with the backing bounds.
func (s *State) ClipBounds(width, height int) image.Rectangle {
	b := image.Rect(0, 0, width, height)
	for _, c := range s.cur.clips {
		b = b.Intersect(DeviceBounds(c.Transform, c.Rect))
	}
	return b
}

// Snapshot returns a deep copy, used to carry state from one backend to
// another across a mode change.
func (s *State) Snapshot() State {
	out := State{cur: s.cur}
	out.cur.clips = append([]Clip(nil), s.cur.clips...)
	for _, f := range s.stack {
		f.clips = append([]Clip(nil), f.clips...)
		out.stack = append(out.stack, f)
	}
	return out
}

// Apply replays the state into b: one Save per saved frame, re-applying
// each frame's clips and transform, then the current frame.
func (s *State) Apply(b Backend) {
	frames := append(append([]frame(nil), s.stack...), s.cur)
	for i, f := range frames {
		if i > 0 {
			b.Save()
		}
		// Clips are cumulative, so only the clips added by this frame are
		// applied on top of the parent's.
		start := 0
		if i > 0 {
			start = len(frames[i-1].clips)
		}
		for _, c := range f.clips[start:] {
			b.SetTransform(c.Transform)
			b.ClipRect(c.Rect)
		}
		b.SetTransform(f.transform)
	}
}

// Invertible reports whether m has a finite, non-zero determinant.
func Invertible(m gg.Matrix) bool {
	det := m.A*m.E - m.B*m.D
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return false
	}
	for _, v := range [...]float64{m.A, m.B, m.C, m.D, m.E, m.F} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
