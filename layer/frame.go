// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package layer

import (
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"golang.org/x/image/draw"

	"github.com/gogpu/canvas2d/internal/damage"
	"github.com/gogpu/canvas2d/texture"
)

// Frame is one layer snapshot. Exactly one of the bitmap or the texture
// record is set. Copies made with Clone share both.
type Frame struct {
	// Visible is the part of the canvas shown, in canvas space.
	Visible image.Rectangle
	// Offset is the layer position in compositor space.
	Offset image.Point
	// Bitmap is the raster copy of a software frame.
	Bitmap *gg.Pixmap
	// Dirty is the damaged area in layer space, where (0, 0) is
	// Visible.Min: a canvas rectangle r appears as r.Sub(Visible.Min),
	// clipped to the visible size. Compositor space is layer space plus
	// Offset. Ignored when FullInvalidate is set.
	Dirty damage.Region
	// FullInvalidate requests a repaint of the whole layer.
	FullInvalidate bool
	// Tiles marks the tiles to repaint on the software path.
	Tiles *damage.Tiles

	info *texture.Info
	up   *texture.Uploader
}

// Info returns the texture record of a texture frame, or nil.
func (f *Frame) Info() *texture.Info { return f.info }

// IsTexture reports whether the frame is presented from a texture.
func (f *Frame) IsTexture() bool { return f.info != nil }

// Clone returns a copy sharing the bitmap and texture record.
func (f *Frame) Clone() *Frame {
	c := &Frame{
		Visible:        f.Visible,
		Offset:         f.Offset,
		Bitmap:         f.Bitmap,
		Dirty:          *f.Dirty.Clone(),
		FullInvalidate: f.FullInvalidate,
		Tiles:          f.Tiles,
		up:             f.up,
	}
	if f.info != nil {
		c.info = f.info.Retain()
	}
	return c
}

// Release drops the frame's texture record reference. It is safe to call
// more than once.
func (f *Frame) Release() {
	if f.info != nil {
		f.info.Release()
		f.info = nil
	}
}

// Present draws the frame at its offset. Texture frames upload the newest
// replayed content first. Bitmap frames go through a temporary texture.
func (f *Frame) Present(d gpucontext.TextureDrawer) error {
	x, y := float32(f.Offset.X), float32(f.Offset.Y)
	if f.info != nil {
		tex, ready := f.info.DisplayTexture(f.up)
		if !ready || tex == nil {
			return ErrNotReady
		}
		return d.DrawTexture(tex, x, y)
	}
	if f.Bitmap == nil {
		return ErrNotReady
	}
	vis := f.Visible.Intersect(f.Bitmap.Bounds())
	if vis.Empty() {
		return ErrNotReady
	}
	tex, err := texture.NewUploader(d.TextureCreator(), 0).Upload(nil, vis.Dx(), vis.Dy(), f.pixels(vis))
	if err != nil {
		return err
	}
	defer texture.DestroyTexture(tex)
	return d.DrawTexture(tex, x, y)
}

// pixels returns the premultiplied RGBA bytes of vis, copying only when
// vis is a sub-rectangle.
func (f *Frame) pixels(vis image.Rectangle) []byte {
	if vis == f.Bitmap.Bounds() {
		return f.Bitmap.Data()
	}
	sub := image.NewRGBA(image.Rect(0, 0, vis.Dx(), vis.Dy()))
	draw.Draw(sub, sub.Bounds(), f.Bitmap, vis.Min, draw.Src)
	return sub.Pix
}

// Paint composites the dirty tiles of the frame into dst at the frame
// offset and returns the number of tiles painted. Texture frames are read
// back from the replayed handle.
func (f *Frame) Paint(dst draw.Image) int {
	if f.Tiles == nil {
		return 0
	}
	var src image.Image
	switch {
	case f.Bitmap != nil:
		src = f.Bitmap
	case f.info != nil:
		img, err := f.info.ReadPixels()
		if err != nil {
			return 0
		}
		src = img
	default:
		return 0
	}
	return f.Tiles.DrainDirty(func(r image.Rectangle) {
		draw.Draw(dst, r.Add(f.Offset), src, r.Min.Add(f.Visible.Min), draw.Src)
	})
}
