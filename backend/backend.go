// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend defines the drawing contract shared by the raster surface
// and the display-list recorder.
//
// Upper layers draw through a Backend without knowing which variant is
// active. The canvas selects the variant once, when it changes mode, so call
// sites never branch on the rendering mode.
package backend

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
)

// Backend is the uniform drawing contract. Coordinates are user-space and
// pass through the current transform, except PutImageData which addresses
// device pixels directly.
//
// Implementations suppress drawing and clipping while the current transform
// is not invertible.
type Backend interface {
	// Size returns the backing dimensions in device pixels.
	Size() (width, height int)

	// Save pushes the transform and clip state.
	Save()
	// Restore pops the state pushed by the matching Save. Restore on an
	// empty stack does nothing.
	Restore()

	SetTransform(m gg.Matrix)
	Transform() gg.Matrix
	Invertible() bool
	ClipRect(r Rect)

	FillRect(r Rect, p Paint)
	StrokeRect(r Rect, p Paint)
	// ClearRect sets the covered pixels to transparent black.
	ClearRect(r Rect)
	FillPath(path *gg.Path, p Paint)
	StrokePath(path *gg.Path, p Paint)
	// DrawImage paints img scaled into dst.
	DrawImage(img image.Image, dst Rect, p Paint)
	DrawText(s string, x, y float64, p Paint)
	// PutImageData replaces device pixels with the unmultiplied contents of
	// img, placed with its bounds origin at (dx, dy).
	PutImageData(img *image.NRGBA, dx, dy int)
}

// Rect is an axis-aligned rectangle in user space.
type Rect struct {
	X, Y, W, H float64
}

// R is shorthand for Rect{x, y, w, h}.
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// Canon returns r with non-negative width and height.
func (r Rect) Canon() Rect {
	if r.W < 0 {
		r.X, r.W = r.X+r.W, -r.W
	}
	if r.H < 0 {
		r.Y, r.H = r.Y+r.H, -r.H
	}
	return r
}

// Empty reports whether r covers no area.
func (r Rect) Empty() bool { return r.W == 0 || r.H == 0 }

// Finite reports whether every component is a finite number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Corners returns the four corners in drawing order.
func (r Rect) Corners() [4]gg.Point {
	return [4]gg.Point{
		gg.Pt(r.X, r.Y),
		gg.Pt(r.X+r.W, r.Y),
		gg.Pt(r.X+r.W, r.Y+r.H),
		gg.Pt(r.X, r.Y+r.H),
	}
}

// Path returns r as a closed gg path.
func (r Rect) Path() *gg.Path {
	p := gg.NewPath()
	c := r.Corners()
	p.MoveTo(c[0].X, c[0].Y)
	for _, pt := range c[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	p.Close()
	return p
}

// boundsEpsilon absorbs floating point noise from rotations so that exact
// multiples of 90 degrees do not grow the bounds by a pixel.
const boundsEpsilon = 1e-6

// MaxDeviceCoord bounds device-space integer coordinates. Larger finite
// values are clamped so that conversion to int stays defined and sums of
// coordinates cannot overflow.
const MaxDeviceCoord = 1 << 30

// DeviceInt converts a finite device-space value to int, clamped to
// [-MaxDeviceCoord, MaxDeviceCoord]. NaN converts to 0.
func DeviceInt(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > MaxDeviceCoord:
		return MaxDeviceCoord
	case v < -MaxDeviceCoord:
		return -MaxDeviceCoord
	}
	return int(v)
}

// DeviceBounds returns the integer device-space bounding box of r under m,
// rounded outwards and clamped to MaxDeviceCoord.
func DeviceBounds(m gg.Matrix, r Rect) image.Rectangle {
	r = r.Canon()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range r.Corners() {
		p := m.TransformPoint(c)
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	if math.IsNaN(minX) || math.IsNaN(minY) || math.IsInf(minX, 0) || math.IsInf(maxX, 0) ||
		math.IsInf(minY, 0) || math.IsInf(maxY, 0) {
		return image.Rectangle{}
	}
	return image.Rect(DeviceInt(math.Floor(minX+boundsEpsilon)), DeviceInt(math.Floor(minY+boundsEpsilon)),
		DeviceInt(math.Ceil(maxX-boundsEpsilon)), DeviceInt(math.Ceil(maxY-boundsEpsilon)))
}

// Paint carries the per-call drawing style.
type Paint struct {
	Color     gg.RGBA
	LineWidth float64
	Shadow    Shadow
	// Face is used by DrawText. A nil face draws nothing.
	Face text.Face
}

// Fill returns a paint with color c and default line width.
func Fill(c gg.RGBA) Paint {
	return Paint{Color: c, LineWidth: 1}
}

// Shadow describes a drop shadow drawn beneath a shape.
type Shadow struct {
	OffsetX, OffsetY float64
	Blur             float64
	Color            gg.RGBA
}

// Active reports whether the shadow would be visible. Shadows with a
// transparent color or with neither blur nor offset are not drawn.
func (s Shadow) Active() bool {
	return s.Color.A > 0 && (s.Blur > 0 || s.OffsetX != 0 || s.OffsetY != 0)
}
