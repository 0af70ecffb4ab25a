// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"image"
	"math"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/gg"
)

// withShadow runs paint against s with the paint color, first rendering the
// shadow when p carries an active one.
func (s *Surface) withShadow(p backend.Paint, paint func(dst *Surface, c gg.RGBA)) {
	if p.Shadow.Active() {
		s.drawShadow(p.Shadow, func(scratch *Surface) {
			paint(scratch, gg.RGBA{A: 1})
		})
	}
	paint(s, p.Color)
}

// drawShadow renders a shape into an offscreen surface sharing the current
// transform and clip, blurs its alpha and composites it in the shadow color
// at the shadow offset. Offsets are device-space.
func (s *Surface) drawShadow(sh backend.Shadow, shape func(scratch *Surface)) {
	w, h := s.Size()
	scratch, err := New(w, h)
	if err != nil {
		return
	}
	defer scratch.Close()
	st := s.state.Snapshot()
	st.Apply(scratch)
	shape(scratch)

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	src := scratch.pm.Data()
	for i := range mask.Pix {
		mask.Pix[i] = src[i*4+3]
	}
	// A blur value maps to a gaussian with sigma blur/2; a box blur of
	// radius sigma approximates it.
	mask = blurAlpha(mask, backend.DeviceInt(math.Round(sh.Blur/2)))

	ox := backend.DeviceInt(math.Round(sh.OffsetX))
	oy := backend.DeviceInt(math.Round(sh.OffsetY))
	c := sh.Color
	data := s.pm.Data()
	stride := w * 4
	for y := 0; y < h; y++ {
		my := y - oy
		if my < 0 || my >= h {
			continue
		}
		for x := 0; x < w; x++ {
			mx := x - ox
			if mx < 0 || mx >= w {
				continue
			}
			cov := float64(mask.Pix[my*mask.Stride+mx]) / 255
			if cov == 0 {
				continue
			}
			a := c.A * cov
			i := y*stride + x*4
			inv := 1 - a
			data[i+0] = blendChannel(c.R*a, data[i+0], inv)
			data[i+1] = blendChannel(c.G*a, data[i+1], inv)
			data[i+2] = blendChannel(c.B*a, data[i+2], inv)
			data[i+3] = blendChannel(a, data[i+3], inv)
		}
	}
}

func blendChannel(src float64, dst uint8, inv float64) uint8 {
	v := src*255 + float64(dst)*inv
	return uint8(math.Min(255, math.Max(0, v+0.5)))
}

// blurAlpha applies a separable box blur using running sums per row and
// per column.
func blurAlpha(src *image.Alpha, radius int) *image.Alpha {
	if radius <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	tmp := image.NewAlpha(b)
	dst := image.NewAlpha(b)
	prefix := make([]int, max(w, h)+1)

	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride:]
		for x := 0; x < w; x++ {
			prefix[x+1] = prefix[x] + int(row[x])
		}
		for x := 0; x < w; x++ {
			lo, hi := max(0, x-radius), min(w, x+radius+1)
			tmp.Pix[y*tmp.Stride+x] = uint8((prefix[hi] - prefix[lo]) / (2*radius + 1))
		}
	}
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			prefix[y+1] = prefix[y] + int(tmp.Pix[y*tmp.Stride+x])
		}
		for y := 0; y < h; y++ {
			lo, hi := max(0, y-radius), min(h, y+radius+1)
			dst.Pix[y*dst.Stride+x] = uint8((prefix[hi] - prefix[lo]) / (2*radius + 1))
		}
	}
	return dst
}
