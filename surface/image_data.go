// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"

	"golang.org/x/image/draw"
)

// GetImageData returns the pixels of r, unpremultiplied. Pixels of r
// outside the surface are transparent black.
func (s *Surface) GetImageData(r image.Rectangle) *image.NRGBA {
	r = r.Canon()
	out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	in := r.Intersect(s.Bounds())
	if in.Empty() {
		return out
	}
	draw.Draw(out, in.Sub(r.Min), s.view(), in.Min, draw.Src)
	return out
}

// PutImageData implements backend.Backend. Transform, clip and shadows do
// not apply.
func (s *Surface) PutImageData(img *image.NRGBA, dx, dy int) {
	if img == nil {
		return
	}
	sb := img.Bounds()
	dr := image.Rectangle{Min: image.Pt(dx, dy), Max: image.Pt(dx+sb.Dx(), dy+sb.Dy())}
	in := dr.Intersect(s.Bounds())
	if in.Empty() {
		return
	}
	draw.Draw(s.view(), in, img, sb.Min.Add(in.Min.Sub(dr.Min)), draw.Src)
	s.pm.NotifyPixelsChanged()
}
