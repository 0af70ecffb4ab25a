// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package damage

import (
	"image"
	"math/bits"
	"sync/atomic"
)

// Default tile size used by the software compositing path.
const (
	DefaultTileWidth  = 256
	DefaultTileHeight = 256
)

// Tiles tracks which tiles of a layer need repainting using an atomic
// bitmap, one bit per tile packed into uint64 words.
//
// All methods are safe for concurrent use. The compositor marks tiles from
// the owner goroutine and paints them from its own goroutine.
type Tiles struct {
	// Bit index = ty*tilesX + tx.
	words []atomic.Uint64

	width, height int
	tileW, tileH  int
	tilesX        int
	tilesY        int
}

// NewTiles creates a clean tile grid covering a width x height pixel area.
// Non-positive tile sizes fall back to the defaults. Returns nil for an
// empty area.
func NewTiles(width, height, tileW, tileH int) *Tiles {
	if width <= 0 || height <= 0 {
		return nil
	}
	if tileW <= 0 {
		tileW = DefaultTileWidth
	}
	if tileH <= 0 {
		tileH = DefaultTileHeight
	}
	tilesX := (width + tileW - 1) / tileW
	tilesY := (height + tileH - 1) / tileH
	return &Tiles{
		words:  make([]atomic.Uint64, (tilesX*tilesY+63)/64),
		width:  width,
		height: height,
		tileW:  tileW,
		tileH:  tileH,
		tilesX: tilesX,
		tilesY: tilesY,
	}
}

// Mark marks a single tile dirty. Out-of-range coordinates are ignored.
func (t *Tiles) Mark(tx, ty int) {
	if tx < 0 || tx >= t.tilesX || ty < 0 || ty >= t.tilesY {
		return
	}
	idx := ty*t.tilesX + tx
	t.words[idx/64].Or(1 << (idx & 63))
}

// MarkRect marks every tile intersecting the pixel rectangle r.
func (t *Tiles) MarkRect(r image.Rectangle) {
	r = r.Intersect(image.Rect(0, 0, t.width, t.height))
	if r.Empty() {
		return
	}
	tx1, ty1 := r.Min.X/t.tileW, r.Min.Y/t.tileH
	tx2, ty2 := (r.Max.X-1)/t.tileW, (r.Max.Y-1)/t.tileH
	for ty := ty1; ty <= ty2; ty++ {
		for tx := tx1; tx <= tx2; tx++ {
			t.Mark(tx, ty)
		}
	}
}

// MarkAll marks the whole grid dirty.
func (t *Tiles) MarkAll() {
	total := t.tilesX * t.tilesY
	full := total / 64
	for i := 0; i < full; i++ {
		t.words[i].Store(^uint64(0))
	}
	if rem := total % 64; rem > 0 {
		t.words[full].Store((uint64(1) << rem) - 1)
	}
}

// Clear marks every tile clean.
func (t *Tiles) Clear() {
	for i := range t.words {
		t.words[i].Store(0)
	}
}

// IsDirty reports whether tile (tx, ty) is dirty.
func (t *Tiles) IsDirty(tx, ty int) bool {
	if tx < 0 || tx >= t.tilesX || ty < 0 || ty >= t.tilesY {
		return false
	}
	idx := ty*t.tilesX + tx
	return t.words[idx/64].Load()&(1<<(idx&63)) != 0
}

// IsEmpty reports whether no tile is dirty.
func (t *Tiles) IsEmpty() bool {
	for i := range t.words {
		if t.words[i].Load() != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of dirty tiles.
func (t *Tiles) Count() int {
	n := 0
	for i := range t.words {
		n += bits.OnesCount64(t.words[i].Load())
	}
	return n
}

// Bounds returns the pixel rectangle covered by tile (tx, ty), clipped to
// the grid area.
func (t *Tiles) Bounds(tx, ty int) image.Rectangle {
	r := image.Rect(tx*t.tileW, ty*t.tileH, (tx+1)*t.tileW, (ty+1)*t.tileH)
	return r.Intersect(image.Rect(0, 0, t.width, t.height))
}

// ForEachDirty calls fn with the pixel bounds of each dirty tile in
// row-major order without clearing them.
func (t *Tiles) ForEachDirty(fn func(r image.Rectangle)) {
	t.visit(false, fn)
}

// DrainDirty calls fn for each dirty tile and clears the grid word by word.
// Returns the number of tiles visited.
func (t *Tiles) DrainDirty(fn func(r image.Rectangle)) int {
	return t.visit(true, fn)
}

func (t *Tiles) visit(clear bool, fn func(r image.Rectangle)) int {
	total := t.tilesX * t.tilesY
	n := 0
	for wi := range t.words {
		var word uint64
		if clear {
			word = t.words[wi].Swap(0)
		} else {
			word = t.words[wi].Load()
		}
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			idx := wi*64 + bit
			if idx >= total {
				break
			}
			if fn != nil {
				fn(t.Bounds(idx%t.tilesX, idx/t.tilesX))
			}
			n++
			word &^= 1 << bit
		}
	}
	return n
}

// Grid returns the tile counts horizontally and vertically.
func (t *Tiles) Grid() (tilesX, tilesY int) {
	return t.tilesX, t.tilesY
}
