// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package layer bridges a canvas to a compositor.
//
// Each call to Layer.Snapshot produces an immutable Frame for the current
// compositing pass. A recording canvas hands its display list to the replay
// worker and the frame refers to the shared texture record; a raster canvas
// either uploads its pixels to a texture or, without hardware, contributes a
// bitmap copy together with the damaged region.
package layer

import (
	"errors"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/canvas2d/internal/damage"
	"github.com/gogpu/canvas2d/internal/logging"
	"github.com/gogpu/canvas2d/recording"
	"github.com/gogpu/canvas2d/texture"
	"github.com/gogpu/canvas2d/worker"
)

// ErrNotReady is returned by Frame.Present when there is nothing to draw yet.
var ErrNotReady = errors.New("layer: frame not ready")

// DefaultBacklogLimit is the pending replay volume, in bytes, above which a
// recording canvas is switched back to raster.
const DefaultBacklogLimit = 40 << 20

// Source is the canvas side of the bridge. All methods are called on the
// owner goroutine.
type Source interface {
	ID() int
	Size() (width, height int)
	IsRecording() bool
	IsAnimating() bool
	// Snapshot returns an independent copy of the raster pixels.
	Snapshot() (*gg.Pixmap, error)
	// TakeDisplayList returns the commands recorded since the last call,
	// or nil.
	TakeDisplayList() *recording.DisplayList
	StartRecording() bool
	StopRecording(preserve bool) bool
	DisableRecording()
}

// path is the representation the last frame was built from.
type path uint8

const (
	pathNone path = iota
	pathBitmap
	pathTexture
)

// Option configures a Layer.
type Option func(*Layer)

// WithTextureCreator enables the texture path. A nil creator means no
// hardware: frames carry bitmaps.
func WithTextureCreator(c gpucontext.TextureCreator, format gputypes.TextureFormat) Option {
	return func(l *Layer) {
		if c != nil {
			l.up = texture.NewUploader(c, format)
		}
	}
}

// WithBacklogLimit sets the pending replay volume that forces a recording
// canvas back to raster. Zero or less disables the check.
func WithBacklogLimit(bytes int) Option {
	return func(l *Layer) { l.backlog = bytes }
}

// WithTileSize sets the tile size of the software compositing path.
func WithTileSize(w, h int) Option {
	return func(l *Layer) { l.tileW, l.tileH = w, h }
}

// Layer is the compositor-side view of one canvas. It also receives the
// canvas change notifications.
//
// Layer is used from the owner goroutine only.
type Layer struct {
	src Source
	reg *texture.Registry
	w   *worker.Worker
	up  *texture.Uploader

	backlog      int
	tileW, tileH int

	visible    image.Rectangle
	visibleSet bool
	offset     image.Point

	info   *texture.Info
	damage damage.Region
	full   bool
	last   *Frame
	path   path
	closed bool
}

// New creates a layer for src. Register the returned layer as a canvas
// observer to receive change notifications.
func New(src Source, reg *texture.Registry, w *worker.Worker, opts ...Option) *Layer {
	l := &Layer{
		src:     src,
		reg:     reg,
		w:       w,
		backlog: DefaultBacklogLimit,
		tileW:   damage.DefaultTileWidth,
		tileH:   damage.DefaultTileHeight,
		full:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SetVisibleRect sets the part of the canvas shown by the layer.
func (l *Layer) SetVisibleRect(r image.Rectangle) {
	r = r.Canon()
	if l.visibleSet && r == l.visible {
		return
	}
	l.visible, l.visibleSet = r, true
	l.full = true
}

// SetOffset sets where the layer is drawn in compositor space.
func (l *Layer) SetOffset(p image.Point) { l.offset = p }

// VisibleRect returns the visible part of the canvas.
func (l *Layer) VisibleRect() image.Rectangle {
	w, h := l.src.Size()
	bounds := image.Rect(0, 0, w, h)
	if !l.visibleSet {
		return bounds
	}
	return l.visible.Intersect(bounds)
}

// Snapshot returns the frame for the current compositing pass, or nil
// after Close. The caller owns the frame and must Release it.
func (l *Layer) Snapshot() *Frame {
	if l.closed {
		return nil
	}
	if l.last != nil && l.unchanged() {
		return l.last.Clone()
	}

	var f *Frame
	if l.src.IsRecording() {
		f = l.recordingFrame()
	}
	if f == nil && l.up.Available() {
		f = l.textureFrame()
	}
	if f == nil {
		f = l.bitmapFrame()
	}
	if f == nil {
		return nil
	}

	if l.last != nil {
		l.last.Release()
	}
	l.last = f
	l.damage.Clear()
	l.full = false
	return f.Clone()
}

// unchanged reports whether the last frame can be reused as is.
func (l *Layer) unchanged() bool {
	if l.full || !l.damage.IsEmpty() {
		return false
	}
	want := pathBitmap
	if l.src.IsRecording() || l.up.Available() {
		want = pathTexture
	}
	return l.path == want
}

// setPath records the representation of the new frame. Switching between
// texture and bitmap invalidates everything.
func (l *Layer) setPath(p path) {
	if l.path != p {
		l.full = true
		logging.Logger().Debug("layer: path changed", "id", l.src.ID(), "from", l.path, "to", p)
	}
	l.path = p
}

func (l *Layer) infoRef() *texture.Info {
	if l.info == nil {
		l.info = l.reg.GetOrCreate(l.src.ID())
	}
	return l.info
}

// recordingFrame hands the newest display list to the worker. When the
// replay backlog is too large the canvas is switched back to raster and
// nil is returned so the caller falls back to the bitmap path.
func (l *Layer) recordingFrame() *Frame {
	info := l.infoRef()
	if list := l.src.TakeDisplayList(); list != nil {
		l.w.Schedule(worker.NewReplay(info, list))
		l.full = true
		if l.backlog > 0 && info.Pending()*list.ByteSize() > l.backlog {
			logging.Logger().Info("layer: replay backlog exceeded, switching to raster",
				"id", l.src.ID(), "pending", info.Pending(), "bytes", list.ByteSize())
			l.src.StopRecording(true)
			l.src.DisableRecording()
			return nil
		}
	}
	l.setPath(pathTexture)
	return l.newFrame(info, nil)
}

// textureFrame uploads the raster pixels. An animating canvas starts
// recording afterwards so that later frames take the replay path.
func (l *Layer) textureFrame() *Frame {
	pm, err := l.src.Snapshot()
	if err != nil || pm == nil {
		return nil
	}
	info := l.infoRef()
	if err := info.UploadPixels(l.up, pm.Width(), pm.Height(), pm.Data()); err != nil {
		logging.Logger().Warn("layer: raster upload failed", "id", l.src.ID(), "err", err)
		return nil
	}
	l.setPath(pathTexture)
	f := l.newFrame(info, nil)
	if l.src.IsAnimating() {
		l.src.StartRecording()
	}
	return f
}

// bitmapFrame copies the raster pixels and carries the damaged region
// translated into layer space.
func (l *Layer) bitmapFrame() *Frame {
	pm, err := l.src.Snapshot()
	if err != nil || pm == nil {
		return nil
	}
	l.setPath(pathBitmap)
	return l.newFrame(nil, pm)
}

func (l *Layer) newFrame(info *texture.Info, pm *gg.Pixmap) *Frame {
	vis := l.VisibleRect()
	f := &Frame{
		Visible:        vis,
		Offset:         l.offset,
		Bitmap:         pm,
		FullInvalidate: l.full,
		up:             l.up,
	}
	if info != nil {
		f.info = info.Retain()
	}
	if !l.full {
		f.Dirty.AddRegion(&l.damage, vis.Min.Mul(-1))
		f.Dirty.Intersect(image.Rect(0, 0, vis.Dx(), vis.Dy()))
	}
	if f.Tiles = damage.NewTiles(vis.Dx(), vis.Dy(), l.tileW, l.tileH); f.Tiles != nil {
		if f.FullInvalidate {
			f.Tiles.MarkAll()
		} else {
			f.Dirty.MarkTiles(f.Tiles)
		}
	}
	return f
}

// Close purges the canvas's queued operations, schedules destruction of
// the presented texture and drops the layer's resource reference. It is
// safe to call more than once.
func (l *Layer) Close() {
	if l.closed {
		return
	}
	l.closed = true
	id := l.src.ID()
	l.w.RemoveByIdentity(id)
	if l.last != nil {
		l.last.Release()
		l.last = nil
	}
	if l.info != nil {
		if tex := l.info.TakeTexture(); tex != nil {
			l.w.Schedule(worker.NewRemoveLayerTexture(id, tex))
		}
		l.info.Release()
		l.info = nil
	}
}

// CanvasResized invalidates the whole layer.
func (l *Layer) CanvasResized() { l.full = true }

// CanvasChanged adds dirty, in canvas space, to the pending damage.
func (l *Layer) CanvasChanged(dirty image.Rectangle) { l.damage.Add(dirty) }

// CanvasDestroyed closes the layer.
func (l *Layer) CanvasDestroyed() { l.Close() }

// CanvasInactive purges queued work for the canvas; the next frame is
// rebuilt from scratch.
func (l *Layer) CanvasInactive() {
	l.w.RemoveByIdentity(l.src.ID())
	l.full = true
}
