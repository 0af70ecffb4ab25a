// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gg"
)

func TestResourcePoolCopiesPaths(t *testing.T) {
	pool := NewResourcePool()
	p := gg.NewPath()
	p.Rectangle(0, 0, 10, 10)
	ref := pool.AddPath(p)

	p.Rectangle(50, 50, 10, 10)
	if got, want := pool.GetPath(ref).NumVerbs(), 5; got != want {
		t.Errorf("pooled path has %d verbs after caller mutation, want %d", got, want)
	}
	if pool.GetPath(PathRef(99)) != nil {
		t.Error("GetPath with out-of-range ref should return nil")
	}
	if pool.PathCount() != 1 {
		t.Errorf("PathCount() = %d, want 1", pool.PathCount())
	}
}

func TestResourcePoolCopiesImages(t *testing.T) {
	pool := NewResourcePool()
	img := image.NewNRGBA(image.Rect(5, 5, 7, 7))
	img.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 255})
	ref := pool.AddImage(img)

	img.SetNRGBA(5, 5, color.NRGBA{B: 255, A: 255})
	got := pool.GetImage(ref)
	if got.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("pooled image bounds = %v, want rebased 2x2", got.Bounds())
	}
	if c := got.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pooled pixel = %v, want the value at record time", c)
	}
	if pool.ByteSize() < 16 {
		t.Errorf("ByteSize() = %d, want at least the pixel bytes", pool.ByteSize())
	}
	if pool.GetImage(ImageRef(3)) != nil {
		t.Error("GetImage with out-of-range ref should return nil")
	}
}
