// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package damage accumulates dirty rectangles and maps them onto tile grids
// for incremental compositing.
package damage

import "image"

// MaxRects is the count above which a Region collapses its rectangles into
// their bounding box.
const MaxRects = 16

// Region is a union of dirty rectangles. The zero value is empty.
// Region is not safe for concurrent use.
type Region struct {
	rects []image.Rectangle
}

// Add unions r into the region. Rectangles already covered are skipped and
// rectangles covered by r are dropped.
func (g *Region) Add(r image.Rectangle) {
	r = r.Canon()
	if r.Empty() {
		return
	}
	for _, have := range g.rects {
		if r.In(have) {
			return
		}
	}
	kept := g.rects[:0]
	for _, have := range g.rects {
		if !have.In(r) {
			kept = append(kept, have)
		}
	}
	g.rects = append(kept, r)
	if len(g.rects) > MaxRects {
		g.rects = []image.Rectangle{g.Bounds()}
	}
}

// AddRegion unions every rectangle of o, translated by off.
func (g *Region) AddRegion(o *Region, off image.Point) {
	if o == nil {
		return
	}
	for _, r := range o.rects {
		g.Add(r.Add(off))
	}
}

// Bounds returns the bounding box of the region.
func (g *Region) Bounds() image.Rectangle {
	var u image.Rectangle
	for _, r := range g.rects {
		u = u.Union(r)
	}
	return u
}

// Rects returns a copy of the rectangles making up the region.
func (g *Region) Rects() []image.Rectangle {
	return append([]image.Rectangle(nil), g.rects...)
}

// IsEmpty reports whether nothing is dirty.
func (g *Region) IsEmpty() bool { return len(g.rects) == 0 }

// Clear empties the region.
func (g *Region) Clear() { g.rects = g.rects[:0] }

// Clone returns an independent copy.
func (g *Region) Clone() *Region {
	return &Region{rects: g.Rects()}
}

// Intersect clips every rectangle to clip, dropping the empty ones.
func (g *Region) Intersect(clip image.Rectangle) {
	kept := g.rects[:0]
	for _, r := range g.rects {
		if r = r.Intersect(clip); !r.Empty() {
			kept = append(kept, r)
		}
	}
	g.rects = kept
}

// MarkTiles marks every tile touched by the region.
func (g *Region) MarkTiles(t *Tiles) {
	if t == nil {
		return
	}
	for _, r := range g.rects {
		t.MarkRect(r)
	}
}
