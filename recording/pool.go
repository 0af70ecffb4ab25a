// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/gogpu/gg"
)

// ResourcePool stores the resources referenced by recorded commands. Each
// Add copies its argument, so a finalized list is immune to later changes
// made by the caller.
//
// ResourcePool is not safe for concurrent use.
type ResourcePool struct {
	paths  []*gg.Path
	images []*image.NRGBA
	bytes  int
}

// NewResourcePool creates an empty resource pool.
func NewResourcePool() *ResourcePool {
	return &ResourcePool{
		paths:  make([]*gg.Path, 0, 16),
		images: make([]*image.NRGBA, 0, 4),
	}
}

// AddPath stores a clone of path and returns its reference.
func (p *ResourcePool) AddPath(path *gg.Path) PathRef {
	cloned := path.Clone()
	p.paths = append(p.paths, cloned)
	p.bytes += len(cloned.Coords())*8 + len(cloned.Verbs())
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return PathRef(uint32(len(p.paths) - 1))
}

// GetPath returns the path for ref, or nil if ref is out of range.
func (p *ResourcePool) GetPath(ref PathRef) *gg.Path {
	if int(ref) >= len(p.paths) {
		return nil
	}
	return p.paths[ref]
}

// AddImage stores an unmultiplied copy of img and returns its reference.
func (p *ResourcePool) AddImage(img image.Image) ImageRef {
	b := img.Bounds()
	cp := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(cp, cp.Bounds(), img, b.Min, draw.Src)
	p.images = append(p.images, cp)
	p.bytes += len(cp.Pix)
	// #nosec G115 -- pool size is bounded by available memory, well under uint32 max
	return ImageRef(uint32(len(p.images) - 1))
}

// GetImage returns the image for ref, or nil if ref is out of range.
func (p *ResourcePool) GetImage(ref ImageRef) *image.NRGBA {
	if int(ref) >= len(p.images) {
		return nil
	}
	return p.images[ref]
}

// PathCount returns the number of pooled paths.
func (p *ResourcePool) PathCount() int { return len(p.paths) }

// ImageCount returns the number of pooled images.
func (p *ResourcePool) ImageCount() int { return len(p.images) }

// ByteSize approximates the memory held by the pool.
func (p *ResourcePool) ByteSize() int { return p.bytes }
