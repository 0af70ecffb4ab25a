// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/canvas2d/internal/logging"
	"github.com/gogpu/gg"
)

// Limits applied by New.
const (
	// MaxDimension is the largest width or height a surface may have.
	MaxDimension = 32767
	// MaxArea is the largest pixel count a surface may have.
	MaxArea = 32768 * 8192
)

var (
	// ErrInvalidSize is returned for non-positive dimensions.
	ErrInvalidSize = errors.New("surface: invalid size")
	// ErrTooLarge is returned when the dimensions exceed MaxDimension or MaxArea.
	ErrTooLarge = errors.New("surface: size exceeds limits")
)

// Surface is the raster drawing backend. Pixels live in a premultiplied
// gg.Pixmap and shapes are rasterized by a gg.Context bound to it.
//
// Surface is not safe for concurrent use. A surface used as a replay target
// is guarded by its owner's lock.
type Surface struct {
	pm    *gg.Pixmap
	dc    *gg.Context
	state backend.State
}

var _ backend.Backend = (*Surface)(nil)

// New allocates a transparent surface.
func New(width, height int) (*Surface, error) {
	if err := CheckSize(width, height); err != nil {
		return nil, err
	}
	pm := gg.NewPixmap(width, height)
	return &Surface{
		pm:    pm,
		dc:    gg.NewContextForPixmap(pm),
		state: backend.NewState(),
	}, nil
}

// CheckSize validates dimensions against the surface limits.
func CheckSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d height=%d", ErrInvalidSize, width, height)
	}
	if width > MaxDimension || height > MaxDimension || int64(width)*int64(height) > MaxArea {
		return fmt.Errorf("%w: width=%d height=%d", ErrTooLarge, width, height)
	}
	return nil
}

// Size returns the surface dimensions.
func (s *Surface) Size() (int, int) { return s.pm.Width(), s.pm.Height() }

// Bounds returns the device rectangle of the surface.
func (s *Surface) Bounds() image.Rectangle { return image.Rect(0, 0, s.pm.Width(), s.pm.Height()) }

// Pixmap returns the live pixel storage.
func (s *Surface) Pixmap() *gg.Pixmap { return s.pm }

// Close releases the drawing context.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// Save implements backend.Backend.
func (s *Surface) Save() {
	s.state.Save()
	s.dc.Push()
}

// Restore implements backend.Backend.
func (s *Surface) Restore() {
	if s.state.Restore() {
		s.dc.Pop()
	}
}

// SetTransform implements backend.Backend.
func (s *Surface) SetTransform(m gg.Matrix) {
	s.state.SetTransform(m)
	s.dc.SetTransform(m)
}

// Transform implements backend.Backend.
func (s *Surface) Transform() gg.Matrix { return s.state.Transform() }

// Invertible implements backend.Backend.
func (s *Surface) Invertible() bool { return s.state.Invertible() }

// State returns a copy of the transform and clip stack.
func (s *Surface) State() backend.State { return s.state.Snapshot() }

// ClipRect intersects the clip with the device bounding box of r.
func (s *Surface) ClipRect(r backend.Rect) {
	if !r.Finite() || !s.state.AddClip(r) {
		return
	}
	b := backend.DeviceBounds(s.state.Transform(), r)
	m := s.state.Transform()
	s.dc.SetTransform(gg.Identity())
	s.dc.ClipRect(float64(b.Min.X), float64(b.Min.Y), float64(b.Dx()), float64(b.Dy()))
	s.dc.SetTransform(m)
}

func (s *Surface) drawable(r backend.Rect) bool {
	return s.state.Invertible() && r.Finite() && !r.Empty()
}

// FillRect implements backend.Backend.
func (s *Surface) FillRect(r backend.Rect, p backend.Paint) {
	if !s.drawable(r) {
		return
	}
	s.fillPath(r.Canon().Path(), p)
}

// StrokeRect implements backend.Backend.
func (s *Surface) StrokeRect(r backend.Rect, p backend.Paint) {
	if !s.state.Invertible() || !r.Finite() || (r.W == 0 && r.H == 0) {
		return
	}
	s.strokePath(r.Canon().Path(), p)
}

// FillPath implements backend.Backend.
func (s *Surface) FillPath(path *gg.Path, p backend.Paint) {
	if path == nil || !s.state.Invertible() {
		return
	}
	s.fillPath(path, p)
}

// StrokePath implements backend.Backend.
func (s *Surface) StrokePath(path *gg.Path, p backend.Paint) {
	if path == nil || !s.state.Invertible() {
		return
	}
	s.strokePath(path, p)
}

func (s *Surface) fillPath(path *gg.Path, p backend.Paint) {
	s.withShadow(p, func(dst *Surface, c gg.RGBA) {
		dst.dc.SetRGBA(c.R, c.G, c.B, c.A)
		if err := dst.dc.FillPath(path); err != nil {
			logging.Logger().Warn("surface: fill failed", "err", err)
		}
	})
	s.pm.NotifyPixelsChanged()
}

func (s *Surface) strokePath(path *gg.Path, p backend.Paint) {
	width := p.LineWidth
	if width <= 0 {
		width = 1
	}
	s.withShadow(p, func(dst *Surface, c gg.RGBA) {
		dst.dc.SetRGBA(c.R, c.G, c.B, c.A)
		dst.dc.SetLineWidth(width)
		if err := dst.dc.StrokePath(path); err != nil {
			logging.Logger().Warn("surface: stroke failed", "err", err)
		}
	})
	s.pm.NotifyPixelsChanged()
}

// ClearRect sets every pixel whose center lies inside r, under the current
// transform and within the clip, to transparent black.
func (s *Surface) ClearRect(r backend.Rect) {
	if !s.drawable(r) {
		return
	}
	r = r.Canon()
	m := s.state.Transform()
	area := backend.DeviceBounds(m, r).Intersect(s.state.ClipBounds(s.Size()))
	if area.Empty() {
		return
	}
	inv := m.Invert()
	stride := s.pm.Width() * 4
	data := s.pm.Data()
	for y := area.Min.Y; y < area.Max.Y; y++ {
		row := data[y*stride:]
		for x := area.Min.X; x < area.Max.X; x++ {
			u := inv.TransformPoint(gg.Pt(float64(x)+0.5, float64(y)+0.5))
			if u.X < r.X || u.X >= r.X+r.W || u.Y < r.Y || u.Y >= r.Y+r.H {
				continue
			}
			clear(row[x*4 : x*4+4])
		}
	}
	s.pm.NotifyPixelsChanged()
}

// DrawImage paints img scaled into dst with source-over compositing.
// Integer-aligned unscaled paints copy pixels exactly; everything else is
// resampled bilinearly.
func (s *Surface) DrawImage(img image.Image, dst backend.Rect, p backend.Paint) {
	if img == nil || !s.drawable(dst) {
		return
	}
	dst = dst.Canon()
	sb := img.Bounds()
	if sb.Empty() {
		return
	}
	clip := s.state.ClipBounds(s.Size())
	m := s.state.Transform().
		Multiply(gg.Translate(dst.X, dst.Y)).
		Multiply(gg.Scale(dst.W/float64(sb.Dx()), dst.H/float64(sb.Dy()))).
		Multiply(gg.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))

	if p.Shadow.Active() {
		s.drawShadow(p.Shadow, func(scratch *Surface) {
			scratch.paintImage(img, m, clip)
		})
	}
	s.paintImage(img, m, clip)
	s.pm.NotifyPixelsChanged()
}

func (s *Surface) paintImage(img image.Image, m gg.Matrix, clip image.Rectangle) {
	view := s.view()
	sb := img.Bounds()
	if m.A == 1 && m.B == 0 && m.D == 0 && m.E == 1 && m.C == math.Trunc(m.C) && m.F == math.Trunc(m.F) {
		off := image.Pt(int(m.C), int(m.F))
		r := sb.Add(off).Intersect(clip)
		draw.Draw(view, r, img, r.Min.Sub(off), draw.Over)
		return
	}
	aff := f64.Aff3{m.A, m.B, m.C, m.D, m.E, m.F}
	draw.BiLinear.Transform(view, aff, img, sb, draw.Over, &draw.Options{DstMask: clip})
}

// DrawText draws s with its baseline at (x, y) using p.Face.
func (s *Surface) DrawText(str string, x, y float64, p backend.Paint) {
	if p.Face == nil || str == "" || !s.state.Invertible() {
		return
	}
	s.withShadow(p, func(dst *Surface, c gg.RGBA) {
		dst.dc.SetFont(p.Face)
		dst.dc.SetRGBA(c.R, c.G, c.B, c.A)
		dst.dc.DrawString(str, x, y)
	})
	s.pm.NotifyPixelsChanged()
}

// view aliases the pixmap storage as an *image.RGBA, which shares the
// premultiplied RGBA layout, so x/image/draw can take its fast paths.
func (s *Surface) view() *image.RGBA {
	return &image.RGBA{
		Pix:    s.pm.Data(),
		Stride: s.pm.Width() * 4,
		Rect:   s.Bounds(),
	}
}

// Snapshot returns an independent copy of the pixels.
func (s *Surface) Snapshot() *gg.Pixmap {
	out := gg.NewPixmap(s.pm.Width(), s.pm.Height())
	copy(out.Data(), s.pm.Data())
	out.NotifyPixelsChanged()
	return out
}
