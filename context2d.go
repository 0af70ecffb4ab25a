// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/canvas2d/backend"
)

// Context2D is the drawing API of a canvas. It keeps the paint state and
// forwards geometry to whichever backing store the canvas holds at the
// time of the call, so a mode switch is invisible to the caller.
//
// Calls on a canvas without storage are no-ops. Path coordinates are
// interpreted in the transform current when the path is filled or
// stroked.
type Context2D struct {
	c *Canvas

	fill      gg.RGBA
	stroke    gg.RGBA
	lineWidth float64
	shadow    backend.Shadow
	face      text.Face
	path      *gg.Path
}

func newContext2D(c *Canvas) *Context2D {
	x := &Context2D{c: c}
	x.reset()
	return x
}

// reset restores the initial paint state.
func (x *Context2D) reset() {
	x.fill = gg.RGBA{A: 1}
	x.stroke = gg.RGBA{A: 1}
	x.lineWidth = 1
	x.shadow = backend.Shadow{}
	x.path = gg.NewPath()
}

// Canvas returns the canvas the context draws on.
func (x *Context2D) Canvas() *Canvas { return x.c }

func (x *Context2D) backend() backend.Backend { return x.c.backing }

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

// Save pushes the transform and clip.
func (x *Context2D) Save() {
	if b := x.backend(); b != nil {
		b.Save()
	}
}

// Restore pops the transform and clip. Without a matching Save it does
// nothing.
func (x *Context2D) Restore() {
	if b := x.backend(); b != nil {
		b.Restore()
	}
}

// GetTransform returns the current transform.
func (x *Context2D) GetTransform() gg.Matrix {
	if b := x.backend(); b != nil {
		return b.Transform()
	}
	return gg.Identity()
}

func (x *Context2D) concat(m gg.Matrix) {
	if b := x.backend(); b != nil {
		b.SetTransform(b.Transform().Multiply(m))
	}
}

// Translate moves the origin.
func (x *Context2D) Translate(tx, ty float64) {
	if finite(tx, ty) {
		x.concat(gg.Translate(tx, ty))
	}
}

// Scale scales the user space.
func (x *Context2D) Scale(sx, sy float64) {
	if finite(sx, sy) {
		x.concat(gg.Scale(sx, sy))
	}
}

// Rotate rotates the user space by angle radians.
func (x *Context2D) Rotate(angle float64) {
	if finite(angle) {
		x.concat(gg.Rotate(angle))
	}
}

// Transform multiplies the current transform by the matrix
// [a c e; b d f; 0 0 1].
func (x *Context2D) Transform(a, b, c, d, e, f float64) {
	if finite(a, b, c, d, e, f) {
		x.concat(htmlMatrix(a, b, c, d, e, f))
	}
}

// SetTransform replaces the current transform with [a c e; b d f; 0 0 1].
func (x *Context2D) SetTransform(a, b, c, d, e, f float64) {
	if !finite(a, b, c, d, e, f) {
		return
	}
	if bk := x.backend(); bk != nil {
		bk.SetTransform(htmlMatrix(a, b, c, d, e, f))
	}
}

// ResetTransform sets the identity transform.
func (x *Context2D) ResetTransform() {
	if b := x.backend(); b != nil {
		b.SetTransform(gg.Identity())
	}
}

func htmlMatrix(a, b, c, d, e, f float64) gg.Matrix {
	return gg.Matrix{A: a, B: c, C: e, D: b, E: d, F: f}
}

// ClipRect intersects the clip with a rectangle.
func (x *Context2D) ClipRect(rx, ry, rw, rh float64) {
	if b := x.backend(); b != nil && finite(rx, ry, rw, rh) {
		b.ClipRect(backend.R(rx, ry, rw, rh))
	}
}

// --------------------------------------------------------------------------
// Paint state
// --------------------------------------------------------------------------

// SetFillColor sets the fill color.
func (x *Context2D) SetFillColor(c gg.RGBA) { x.fill = c }

// FillColor returns the fill color.
func (x *Context2D) FillColor() gg.RGBA { return x.fill }

// SetStrokeColor sets the stroke color.
func (x *Context2D) SetStrokeColor(c gg.RGBA) { x.stroke = c }

// StrokeColor returns the stroke color.
func (x *Context2D) StrokeColor() gg.RGBA { return x.stroke }

// SetLineWidth sets the stroke width. Zero, negative and non-finite
// values are ignored.
func (x *Context2D) SetLineWidth(w float64) {
	if w > 0 && !math.IsInf(w, 0) {
		x.lineWidth = w
	}
}

// LineWidth returns the stroke width.
func (x *Context2D) LineWidth() float64 { return x.lineWidth }

// SetFont sets the face used by FillText.
func (x *Context2D) SetFont(face text.Face) { x.face = face }

// SetShadow sets the shadow. A visible shadow cannot be recorded: a
// recording canvas switches back to raster first, keeping its content,
// and never records again. Negative blur and non-finite values are
// ignored.
func (x *Context2D) SetShadow(offsetX, offsetY, blur float64, c gg.RGBA) {
	if !finite(offsetX, offsetY, blur) || blur < 0 {
		return
	}
	s := backend.Shadow{OffsetX: offsetX, OffsetY: offsetY, Blur: blur, Color: c}
	if s.Active() {
		if x.c.IsRecording() {
			x.c.StopRecording(true)
		}
		x.c.DisableRecording()
	}
	x.shadow = s
}

// Shadow returns the shadow settings.
func (x *Context2D) Shadow() backend.Shadow { return x.shadow }

func (x *Context2D) paint(c gg.RGBA) backend.Paint {
	return backend.Paint{Color: c, LineWidth: x.lineWidth, Shadow: x.shadow, Face: x.face}
}

// --------------------------------------------------------------------------
// Drawing
// --------------------------------------------------------------------------

// FillRect fills a rectangle.
func (x *Context2D) FillRect(rx, ry, rw, rh float64) {
	b := x.backend()
	if b == nil || !finite(rx, ry, rw, rh) {
		return
	}
	r := backend.R(rx, ry, rw, rh)
	b.FillRect(r, x.paint(x.fill))
	x.damage(b, r, 0)
}

// StrokeRect strokes a rectangle outline.
func (x *Context2D) StrokeRect(rx, ry, rw, rh float64) {
	b := x.backend()
	if b == nil || !finite(rx, ry, rw, rh) {
		return
	}
	r := backend.R(rx, ry, rw, rh)
	b.StrokeRect(r, x.paint(x.stroke))
	x.damage(b, r, x.lineWidth/2)
}

// ClearRect sets the pixels of a rectangle to transparent black. A clear
// covering the whole canvas feeds the animation detector.
func (x *Context2D) ClearRect(rx, ry, rw, rh float64) {
	b := x.backend()
	if b == nil || !finite(rx, ry, rw, rh) {
		return
	}
	r := backend.R(rx, ry, rw, rh)
	b.ClearRect(r)
	if !b.Invertible() {
		return
	}
	dev := backend.DeviceBounds(b.Transform(), r)
	x.c.didDraw(dev)
	if x.coversCanvas(b, dev) {
		x.c.didClearAll()
	}
}

// coversCanvas reports whether a clear of the device rectangle dev wipes
// the whole canvas: no rotation or skew and no clip narrower than the
// canvas.
func (x *Context2D) coversCanvas(b backend.Backend, dev image.Rectangle) bool {
	m := b.Transform()
	if m.B != 0 || m.D != 0 || !x.c.Bounds().In(dev) {
		return false
	}
	if st, ok := b.(interface{ State() backend.State }); ok {
		s := st.State()
		return x.c.Bounds().In(s.ClipBounds(x.c.width, x.c.height))
	}
	return true
}

// BeginPath starts a new path.
func (x *Context2D) BeginPath() { x.path = gg.NewPath() }

// MoveTo starts a subpath.
func (x *Context2D) MoveTo(px, py float64) {
	if finite(px, py) {
		x.path.MoveTo(px, py)
	}
}

// LineTo adds a line to the current subpath.
func (x *Context2D) LineTo(px, py float64) {
	if !finite(px, py) {
		return
	}
	if !x.path.HasCurrentPoint() {
		x.path.MoveTo(px, py)
		return
	}
	x.path.LineTo(px, py)
}

// Rect adds a closed rectangle subpath.
func (x *Context2D) Rect(rx, ry, rw, rh float64) {
	if finite(rx, ry, rw, rh) {
		x.path.Rectangle(rx, ry, rw, rh)
	}
}

// Arc adds a circular arc from angle1 to angle2 radians.
func (x *Context2D) Arc(cx, cy, radius, angle1, angle2 float64) {
	if finite(cx, cy, radius, angle1, angle2) && radius >= 0 {
		x.path.Arc(cx, cy, radius, angle1, angle2)
	}
}

// ClosePath closes the current subpath.
func (x *Context2D) ClosePath() { x.path.Close() }

// Fill fills the current path.
func (x *Context2D) Fill() {
	b := x.backend()
	if b == nil || x.path.NumVerbs() == 0 {
		return
	}
	b.FillPath(x.path, x.paint(x.fill))
	x.damage(b, pathRect(x.path), 0)
}

// Stroke strokes the current path.
func (x *Context2D) Stroke() {
	b := x.backend()
	if b == nil || x.path.NumVerbs() == 0 {
		return
	}
	b.StrokePath(x.path, x.paint(x.stroke))
	x.damage(b, pathRect(x.path), x.lineWidth/2)
}

func pathRect(p *gg.Path) backend.Rect {
	r := p.Bounds()
	return backend.R(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
}

// DrawImage draws img at its natural size with the top-left corner at
// (dx, dy).
func (x *Context2D) DrawImage(img image.Image, dx, dy float64) {
	if img == nil {
		return
	}
	sb := img.Bounds()
	x.DrawImageScaled(img, dx, dy, float64(sb.Dx()), float64(sb.Dy()))
}

// DrawImageScaled draws img scaled into the rectangle (dx, dy, dw, dh).
func (x *Context2D) DrawImageScaled(img image.Image, dx, dy, dw, dh float64) {
	b := x.backend()
	if b == nil || img == nil || img.Bounds().Empty() || !finite(dx, dy, dw, dh) {
		return
	}
	r := backend.R(dx, dy, dw, dh)
	b.DrawImage(img, r, x.paint(gg.RGBA{A: 1}))
	x.damage(b, r, 0)
}

// FillText draws s with its baseline origin at (tx, ty). Without a font
// nothing is drawn.
func (x *Context2D) FillText(s string, tx, ty float64) {
	b := x.backend()
	if b == nil || x.face == nil || s == "" || !finite(tx, ty) {
		return
	}
	b.DrawText(s, tx, ty, x.paint(x.fill))
	m := x.face.Metrics()
	x.damage(b, backend.R(tx, ty-m.Ascent, x.face.Advance(s), m.Ascent+m.Descent), 1)
}

// GetImageData returns the unpremultiplied pixels of a device rectangle.
// Negative sizes extend left or up. Reading a tainted canvas fails with
// ErrSecurity. A recording canvas may switch back to raster, depending on
// Config.SwitchOnImageData.
func (x *Context2D) GetImageData(sx, sy, sw, sh int) (*image.NRGBA, error) {
	if sw == 0 || sh == 0 {
		return nil, ErrIndexSize
	}
	return x.c.imageData(image.Rect(sx, sy, sx+sw, sy+sh))
}

// PutImageData writes img with its top-left pixel at (dx, dy), ignoring
// the transform, the clip and the shadow.
func (x *Context2D) PutImageData(img *image.NRGBA, dx, dy int) {
	b := x.backend()
	if b == nil || img == nil {
		return
	}
	b.PutImageData(img, dx, dy)
	sb := img.Bounds()
	x.c.didDraw(image.Rect(dx, dy, dx+sb.Dx(), dy+sb.Dy()))
}

// damage reports the device area touched by drawing r, grown by pad in
// user space and by the shadow.
func (x *Context2D) damage(b backend.Backend, r backend.Rect, pad float64) {
	if !b.Invertible() {
		return
	}
	r = r.Canon()
	if pad > 0 {
		r = backend.R(r.X-pad, r.Y-pad, r.W+2*pad, r.H+2*pad)
	}
	dev := backend.DeviceBounds(b.Transform(), r).Inset(-1)
	if x.shadow.Active() {
		blur := backend.DeviceInt(math.Ceil(x.shadow.Blur))
		off := image.Pt(backend.DeviceInt(math.Round(x.shadow.OffsetX)), backend.DeviceInt(math.Round(x.shadow.OffsetY)))
		dev = dev.Union(dev.Add(off).Inset(-blur))
	}
	x.c.didDraw(dev)
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
