// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package damage

import (
	"image"
	"testing"
)

func TestRegionAdd(t *testing.T) {
	tests := []struct {
		name  string
		rects []image.Rectangle
		want  int
		bound image.Rectangle
	}{
		{"empty ignored", []image.Rectangle{{}}, 0, image.Rectangle{}},
		{"single", []image.Rectangle{image.Rect(0, 0, 10, 10)}, 1, image.Rect(0, 0, 10, 10)},
		{"contained skipped", []image.Rectangle{image.Rect(0, 0, 10, 10), image.Rect(2, 2, 5, 5)}, 1, image.Rect(0, 0, 10, 10)},
		{"covering replaces", []image.Rectangle{image.Rect(2, 2, 5, 5), image.Rect(6, 6, 8, 8), image.Rect(0, 0, 10, 10)}, 1, image.Rect(0, 0, 10, 10)},
		{"disjoint kept", []image.Rectangle{image.Rect(0, 0, 5, 5), image.Rect(20, 20, 30, 30)}, 2, image.Rect(0, 0, 30, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Region
			for _, r := range tt.rects {
				g.Add(r)
			}
			if got := len(g.Rects()); got != tt.want {
				t.Errorf("len(Rects()) = %d, want %d", got, tt.want)
			}
			if got := g.Bounds(); got != tt.bound {
				t.Errorf("Bounds() = %v, want %v", got, tt.bound)
			}
		})
	}
}

func TestRegionCollapses(t *testing.T) {
	var g Region
	for i := 0; i <= MaxRects; i++ {
		g.Add(image.Rect(i*10, 0, i*10+5, 5))
	}
	rects := g.Rects()
	if len(rects) != 1 {
		t.Fatalf("len(Rects()) = %d, want 1 after collapse", len(rects))
	}
	if want := image.Rect(0, 0, MaxRects*10+5, 5); rects[0] != want {
		t.Errorf("collapsed rect = %v, want %v", rects[0], want)
	}
}

func TestRegionAddRegionOffset(t *testing.T) {
	var src, dst Region
	src.Add(image.Rect(0, 0, 4, 4))
	dst.AddRegion(&src, image.Pt(10, 20))
	if got, want := dst.Bounds(), image.Rect(10, 20, 14, 24); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
	dst.Intersect(image.Rect(0, 0, 12, 22))
	if got, want := dst.Bounds(), image.Rect(10, 20, 12, 22); got != want {
		t.Errorf("after Intersect Bounds() = %v, want %v", got, want)
	}
	dst.Clear()
	if !dst.IsEmpty() {
		t.Error("Clear() should empty the region")
	}
}

func TestNewTilesInvalid(t *testing.T) {
	if NewTiles(0, 10, 8, 8) != nil {
		t.Error("NewTiles with zero width should return nil")
	}
	tl := NewTiles(300, 150, 0, 0)
	if x, y := tl.Grid(); x != 2 || y != 1 {
		t.Errorf("Grid() = %d,%d, want 2,1 with default tile size", x, y)
	}
}

func TestTilesMarkRect(t *testing.T) {
	tl := NewTiles(100, 100, 32, 32)
	tl.MarkRect(image.Rect(30, 30, 40, 40))
	if got := tl.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	for _, c := range [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
		if !tl.IsDirty(c[0], c[1]) {
			t.Errorf("tile %v should be dirty", c)
		}
	}
	if tl.IsDirty(2, 2) {
		t.Error("tile (2,2) should be clean")
	}

	tl.MarkRect(image.Rect(-50, -50, -1, -1))
	if got := tl.Count(); got != 4 {
		t.Errorf("outside rect changed Count() to %d", got)
	}
}

func TestTilesMarkAllAndDrain(t *testing.T) {
	tl := NewTiles(100, 40, 10, 10) // 10x4 = 40 tiles
	tl.MarkAll()
	if got := tl.Count(); got != 40 {
		t.Fatalf("Count() = %d, want 40", got)
	}

	var last image.Rectangle
	n := tl.DrainDirty(func(r image.Rectangle) { last = r })
	if n != 40 {
		t.Errorf("DrainDirty visited %d, want 40", n)
	}
	if want := image.Rect(90, 30, 100, 40); last != want {
		t.Errorf("last tile = %v, want %v", last, want)
	}
	if !tl.IsEmpty() {
		t.Error("grid should be clean after DrainDirty")
	}
}

func TestTilesPartialEdge(t *testing.T) {
	tl := NewTiles(50, 50, 32, 32)
	if got, want := tl.Bounds(1, 1), image.Rect(32, 32, 50, 50); got != want {
		t.Errorf("Bounds(1,1) = %v, want %v", got, want)
	}
	var g Region
	g.Add(image.Rect(40, 0, 45, 5))
	g.MarkTiles(tl)
	visited := 0
	tl.ForEachDirty(func(image.Rectangle) { visited++ })
	if visited != 1 || tl.Count() != 1 {
		t.Errorf("visited %d, Count %d, want 1 and 1", visited, tl.Count())
	}
}
