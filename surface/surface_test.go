// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/gg"
)

var red = gg.RGBA{R: 1, A: 1}

func pixel(t *testing.T, s *Surface, x, y int) color.NRGBA {
	t.Helper()
	img := s.GetImageData(image.Rect(x, y, x+1, y+1))
	return img.NRGBAAt(0, 0)
}

func newSurface(t *testing.T, w, h int) *Surface {
	t.Helper()
	s, err := New(w, h)
	if err != nil {
		t.Fatalf("New(%d, %d) error = %v", w, h, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNewLimits(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"default canvas", 300, 150, nil},
		{"zero width", 0, 10, ErrInvalidSize},
		{"negative height", 10, -1, ErrInvalidSize},
		{"dimension over limit", MaxDimension + 1, 1, ErrTooLarge},
		{"area over limit", 32767, 32767, ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSize(tt.w, tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckSize(%d, %d) = %v, want %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestFillRectFullSurface(t *testing.T) {
	s := newSurface(t, 300, 150)
	s.FillRect(backend.R(0, 0, 300, 150), backend.Fill(red))

	want := color.NRGBA{R: 255, A: 255}
	for _, pt := range []image.Point{{0, 0}, {299, 0}, {0, 149}, {299, 149}, {150, 75}} {
		if got := pixel(t, s, pt.X, pt.Y); got != want {
			t.Errorf("pixel %v = %v, want %v", pt, got, want)
		}
	}
}

func TestPutGetImageDataRoundTrip(t *testing.T) {
	s := newSurface(t, 4, 4)
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 255})
	src.SetNRGBA(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	s.PutImageData(src, 1, 1)

	got := s.GetImageData(image.Rect(1, 1, 3, 3))
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("opaque pixel = %v, want exact red", c)
	}
	c := got.NRGBAAt(1, 0)
	if c.A != 128 || absDiff(c.R, 200) > 2 || absDiff(c.G, 100) > 2 || absDiff(c.B, 50) > 2 {
		t.Errorf("translucent pixel = %v, want ~{200 100 50 128}", c)
	}
	if c := pixel(t, s, 0, 0); c.A != 0 {
		t.Errorf("pixel outside put area = %v, want transparent", c)
	}
}

func TestGetImageDataOutOfBounds(t *testing.T) {
	s := newSurface(t, 2, 2)
	s.FillRect(backend.R(0, 0, 2, 2), backend.Fill(red))
	img := s.GetImageData(image.Rect(-1, -1, 1, 1))
	if got := img.Bounds(); got != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v, want 2x2 at origin", got)
	}
	if c := img.NRGBAAt(0, 0); c.A != 0 {
		t.Errorf("outside pixel = %v, want transparent", c)
	}
	if c := img.NRGBAAt(1, 1); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("inside pixel = %v, want red", c)
	}
}

func TestClearRect(t *testing.T) {
	s := newSurface(t, 40, 40)
	s.FillRect(backend.R(0, 0, 40, 40), backend.Fill(red))
	s.ClearRect(backend.R(10, 10, 20, 20))

	if c := pixel(t, s, 15, 15); c.A != 0 {
		t.Errorf("cleared pixel = %v, want transparent", c)
	}
	if c := pixel(t, s, 5, 5); c.A != 255 {
		t.Errorf("untouched pixel = %v, want opaque", c)
	}
	if c := pixel(t, s, 30, 30); c.A != 255 {
		t.Errorf("pixel at right/bottom edge = %v, want opaque", c)
	}
}

func TestClearRectHonorsClip(t *testing.T) {
	s := newSurface(t, 20, 20)
	s.FillRect(backend.R(0, 0, 20, 20), backend.Fill(red))
	s.Save()
	s.ClipRect(backend.R(0, 0, 10, 20))
	s.ClearRect(backend.R(0, 0, 20, 20))
	s.Restore()

	if c := pixel(t, s, 5, 5); c.A != 0 {
		t.Errorf("pixel inside clip = %v, want cleared", c)
	}
	if c := pixel(t, s, 15, 5); c.A != 255 {
		t.Errorf("pixel outside clip = %v, want untouched", c)
	}
}

func TestClearRectTransformed(t *testing.T) {
	s := newSurface(t, 20, 20)
	s.FillRect(backend.R(0, 0, 20, 20), backend.Fill(red))
	s.SetTransform(gg.Translate(10, 0))
	s.ClearRect(backend.R(0, 0, 5, 5))
	if c := pixel(t, s, 12, 2); c.A != 0 {
		t.Errorf("translated clear missed pixel: %v", c)
	}
	if c := pixel(t, s, 2, 2); c.A != 255 {
		t.Errorf("pixel before translation = %v, want untouched", c)
	}
}

func TestNonInvertibleSuppressesDrawing(t *testing.T) {
	s := newSurface(t, 10, 10)
	s.Save()
	s.SetTransform(gg.Scale(0, 1))
	if s.Invertible() {
		t.Fatal("Invertible() = true for zero scale")
	}
	s.FillRect(backend.R(0, 0, 10, 10), backend.Fill(red))
	if c := pixel(t, s, 5, 5); c.A != 0 {
		t.Errorf("drawing under non-invertible transform changed pixel to %v", c)
	}
	s.Restore()
	s.FillRect(backend.R(0, 0, 10, 10), backend.Fill(red))
	if c := pixel(t, s, 5, 5); c.A != 255 {
		t.Errorf("drawing after restore = %v, want red", c)
	}
}

func TestRestoreOnEmptyStack(t *testing.T) {
	s := newSurface(t, 10, 10)
	s.SetTransform(gg.Translate(2, 3))
	s.Restore()
	if got := s.Transform(); got != gg.Translate(2, 3) {
		t.Errorf("Transform() = %v after empty Restore, want unchanged", got)
	}
}

func TestDrawImageExactCopy(t *testing.T) {
	s := newSurface(t, 10, 10)
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}
	src.SetNRGBA(1, 1, color.NRGBA{B: 255, A: 255})
	s.DrawImage(src, backend.R(3, 4, 2, 2), backend.Paint{})

	if c := pixel(t, s, 3, 4); c != (color.NRGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("pixel (3,4) = %v, want white", c)
	}
	if c := pixel(t, s, 4, 5); c != (color.NRGBA{B: 255, A: 255}) {
		t.Errorf("pixel (4,5) = %v, want blue", c)
	}
	if c := pixel(t, s, 5, 5); c.A != 0 {
		t.Errorf("pixel (5,5) = %v, want untouched", c)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := newSurface(t, 4, 4)
	s.FillRect(backend.R(0, 0, 4, 4), backend.Fill(red))
	snap := s.Snapshot()
	s.ClearRect(backend.R(0, 0, 4, 4))

	if got := snap.GetPixel(0, 0); got.A != 1 || got.R != 1 {
		t.Errorf("snapshot pixel = %+v, want red", got)
	}
	if c := pixel(t, s, 0, 0); c.A != 0 {
		t.Errorf("surface pixel = %v, want cleared", c)
	}
}

func TestShadowOffset(t *testing.T) {
	s := newSurface(t, 40, 40)
	p := backend.Fill(red)
	p.Shadow = backend.Shadow{OffsetX: 10, OffsetY: 10, Color: gg.RGBA{A: 1}}
	s.FillRect(backend.R(0, 0, 20, 20), p)

	if c := pixel(t, s, 5, 5); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("shape pixel = %v, want red over shadow", c)
	}
	if c := pixel(t, s, 25, 25); c != (color.NRGBA{A: 255}) {
		t.Errorf("shadow pixel = %v, want opaque black", c)
	}
	if c := pixel(t, s, 35, 35); c.A != 0 {
		t.Errorf("pixel past shadow = %v, want transparent", c)
	}
}

func TestBlurAlphaSpreads(t *testing.T) {
	m := image.NewAlpha(image.Rect(0, 0, 9, 9))
	m.SetAlpha(4, 4, color.Alpha{A: 255})
	out := blurAlpha(m, 1)
	if out.AlphaAt(4, 4).A == 255 {
		t.Error("center should lose intensity after blur")
	}
	if out.AlphaAt(5, 5).A == 0 {
		t.Error("neighbor should gain intensity after blur")
	}
	if out.AlphaAt(7, 7).A != 0 {
		t.Error("pixels beyond the radius should stay empty")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
