// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"image"
	"io"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"

	"github.com/gogpu/canvas2d/backend"
	"github.com/gogpu/canvas2d/recording"
	"github.com/gogpu/canvas2d/surface"
	"github.com/gogpu/canvas2d/texture"
	"github.com/gogpu/canvas2d/worker"
)

type contextKind uint8

const (
	contextNone contextKind = iota
	context2D
	context3D
)

// Canvas is a drawing target that switches between a raster surface and
// a display-list recorder.
//
// A canvas holds at most one backing store at a time: a *surface.Surface
// in Raster and Animating mode, a *recording.Recorder in Recording mode,
// or nothing when storage could not be allocated.
//
// Canvas is NOT safe for concurrent use. All calls, including those made
// by its compositor layer, happen on the owner goroutine.
type Canvas struct {
	e      *Engine
	id     int
	width  int
	height int

	mode    Mode
	kind    contextKind
	ctx     *Context2D
	backing backend.Backend

	// info is owned while recording.
	info *texture.Info

	recordingDisabled bool
	detector          *AnimationDetector

	dirty       image.Rectangle
	originClean bool
	destroyed   bool

	observers    map[int]Observer
	nextObserver int
}

// ID returns the canvas identity.
func (c *Canvas) ID() int { return c.id }

// Size returns the canvas dimensions.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

// Bounds returns the canvas rectangle.
func (c *Canvas) Bounds() image.Rectangle { return image.Rect(0, 0, c.width, c.height) }

// Mode returns the current mode.
func (c *Canvas) Mode() Mode { return c.mode }

// IsRecording reports whether the canvas records display lists.
func (c *Canvas) IsRecording() bool { return c.mode == ModeRecording }

// IsAnimating reports whether the canvas was detected as animating.
func (c *Canvas) IsAnimating() bool { return c.mode == ModeAnimating }

// IsDestroyed reports whether Destroy was called.
func (c *Canvas) IsDestroyed() bool { return c.destroyed }

// HasStorage reports whether a backing store exists.
func (c *Canvas) HasStorage() bool { return c.backing != nil }

// Detector returns the canvas animation detector.
func (c *Canvas) Detector() *AnimationDetector { return c.detector }

func (c *Canvas) surface() *surface.Surface {
	s, _ := c.backing.(*surface.Surface)
	return s
}

func (c *Canvas) recorder() *recording.Recorder {
	r, _ := c.backing.(*recording.Recorder)
	return r
}

// Context2D returns the 2D context, creating it and the backing store on
// first use. It returns nil after Context3D or Destroy.
func (c *Canvas) Context2D() *Context2D {
	if c.destroyed || c.kind == context3D {
		return nil
	}
	if c.ctx != nil {
		return c.ctx
	}
	c.kind = context2D
	c.ctx = newContext2D(c)
	mode := ModeRaster
	if c.recordingAllowed() && c.e.cfg.ForceRecording {
		mode = ModeRecording
	}
	c.allocate(mode)
	return c.ctx
}

// Context3D marks the canvas as 3D. 3D canvases never record and have no
// 2D backing store. It returns false when a 2D context exists.
func (c *Canvas) Context3D() bool {
	if c.destroyed || c.kind == context2D {
		return false
	}
	c.kind = context3D
	return true
}

func (c *Canvas) recordingAllowed() bool {
	return c.e.cfg.RecordingEnabled && !c.recordingDisabled && c.kind != context3D && !c.destroyed
}

// allocate creates the backing store for mode, falling back to raster
// when a recorder cannot be started. On failure the canvas is left without
// storage in Raster mode.
func (c *Canvas) allocate(mode Mode) {
	c.backing = nil
	c.mode = ModeRaster
	if !c.e.cfg.allows(c.width, c.height) {
		return
	}
	if mode == ModeRecording {
		r := recording.NewRecorder()
		if r.BeginRecording(c.width, c.height) {
			c.backing = r
			c.mode = ModeRecording
			c.info = c.e.reg.GetOrCreate(c.id)
			return
		}
	}
	s, err := surface.New(c.width, c.height)
	if err != nil {
		Logger().Warn("canvas2d: surface allocation failed", "id", c.id, "err", err)
		return
	}
	c.backing = s
}

// StartRecording switches a raster canvas to recording. The current
// pixels become the first recorded paint and the transform and clip stack
// carry over. It returns false when recording is not possible.
func (c *Canvas) StartRecording() bool {
	if c.mode == ModeRecording || !c.recordingAllowed() {
		return false
	}
	s := c.surface()
	if s == nil {
		return false
	}
	r := recording.NewRecorder()
	if !r.BeginRecording(c.width, c.height) {
		return false
	}
	r.PutImageData(s.GetImageData(s.Bounds()), 0, 0)
	st := s.State()
	st.Apply(r)
	_ = s.Close()

	c.backing = r
	c.mode = ModeRecording
	c.info = c.e.reg.GetOrCreate(c.id)
	Logger().Debug("canvas2d: recording started", "id", c.id)
	return true
}

// StopRecording switches a recording canvas back to raster. With preserve
// the recorded content is read back from the worker and becomes the first
// paint of the new surface. It returns false when not recording, when
// switching back is disabled, or when the readback failed; the canvas then
// keeps recording.
func (c *Canvas) StopRecording(preserve bool) bool {
	if c.mode != ModeRecording || c.e.cfg.DisableSwitchBack {
		return false
	}
	r := c.recorder()
	st := r.State()

	var pixels *image.NRGBA
	if preserve {
		img, err := c.readback()
		if err != nil {
			Logger().Warn("canvas2d: switch to raster aborted", "id", c.id, "err", err)
			return false
		}
		pixels = img
	}
	r.EndRecording()

	c.backing = nil
	c.mode = ModeRaster
	c.releaseInfo()
	if s, err := surface.New(c.width, c.height); err != nil {
		Logger().Warn("canvas2d: surface allocation failed", "id", c.id, "err", err)
	} else {
		if pixels != nil {
			s.PutImageData(pixels, 0, 0)
		}
		st.Apply(s)
		c.backing = s
	}
	Logger().Debug("canvas2d: recording stopped", "id", c.id, "preserve", preserve)
	c.notify(func(o Observer) { o.CanvasInactive() })
	return true
}

// readback flushes the recorder to the worker and waits for the replayed
// pixels.
func (c *Canvas) readback() (*image.NRGBA, error) {
	list := c.recorder().Flush()
	w := c.e.worker
	if list != nil {
		w.Schedule(worker.NewReplay(c.info, list))
	}
	pr := worker.NewPixelReader(c.info)
	w.Schedule(pr.Operation())
	return pr.Wait(c.e.cfg.ReadbackTimeout.Duration)
}

func (c *Canvas) releaseInfo() {
	if c.info != nil {
		c.info.Release()
		c.info = nil
	}
}

// DisableRecording permanently prevents recording. A recording canvas
// keeps recording until StopRecording.
func (c *Canvas) DisableRecording() {
	if !c.recordingDisabled {
		Logger().Debug("canvas2d: recording disabled", "id", c.id)
	}
	c.recordingDisabled = true
}

// RecordingDisabled reports whether DisableRecording was called.
func (c *Canvas) RecordingDisabled() bool { return c.recordingDisabled }

// TakeDisplayList returns the commands recorded since the last call and
// starts a new list carrying the current transform and clip stack. It
// returns nil when not recording or when nothing was drawn.
func (c *Canvas) TakeDisplayList() *recording.DisplayList {
	r := c.recorder()
	if r == nil || r.Empty() {
		return nil
	}
	return r.Flush()
}

// Snapshot returns an independent copy of the pixels. Recording canvases
// are read back synchronously. A canvas without storage yields a
// transparent pixmap; a 3D canvas has no 2D pixels and fails with
// ErrNoContext.
func (c *Canvas) Snapshot() (*gg.Pixmap, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if c.kind == context3D {
		return nil, ErrNoContext
	}
	switch {
	case c.surface() != nil:
		return c.surface().Snapshot(), nil
	case c.recorder() != nil:
		img, err := c.readback()
		if err != nil {
			return nil, err
		}
		pm := gg.NewPixmap(c.width, c.height)
		dst := &image.RGBA{Pix: pm.Data(), Stride: c.width * 4, Rect: pm.Bounds()}
		draw.Draw(dst, dst.Rect, img, image.Point{}, draw.Src)
		pm.NotifyPixelsChanged()
		return pm, nil
	}
	return gg.NewPixmap(c.width, c.height), nil
}

// imageData returns the unpremultiplied pixels of r.
func (c *Canvas) imageData(r image.Rectangle) (*image.NRGBA, error) {
	if c.destroyed {
		return nil, ErrDestroyed
	}
	if !c.originClean {
		return nil, ErrSecurity
	}
	if c.IsRecording() && c.e.cfg.SwitchOnImageData {
		c.StopRecording(true)
	}
	switch {
	case c.surface() != nil:
		return c.surface().GetImageData(r), nil
	case c.recorder() != nil:
		img, err := c.readback()
		if err != nil {
			return nil, err
		}
		out := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		draw.Draw(out, out.Rect, img, r.Min, draw.Src)
		return out, nil
	}
	return image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy())), nil
}

// EncodePNG writes the canvas content as PNG. Tainted canvases return
// ErrSecurity.
func (c *Canvas) EncodePNG(w io.Writer) error {
	if !c.originClean {
		return ErrSecurity
	}
	pm, err := c.Snapshot()
	if err != nil {
		return err
	}
	return pm.EncodePNG(w)
}

// Taint marks the canvas as holding cross-origin content.
func (c *Canvas) Taint() { c.originClean = false }

// OriginClean reports whether pixel readback is allowed.
func (c *Canvas) OriginClean() bool { return c.originClean }

// DirtyRect returns the union of areas drawn since the last
// ClearDirtyRect.
func (c *Canvas) DirtyRect() image.Rectangle { return c.dirty }

// ClearDirtyRect resets the dirty rectangle.
func (c *Canvas) ClearDirtyRect() { c.dirty = image.Rectangle{} }

// didDraw records r, in device space, as changed.
func (c *Canvas) didDraw(r image.Rectangle) {
	r = r.Intersect(c.Bounds())
	if r.Empty() {
		return
	}
	c.dirty = c.dirty.Union(r)
	c.notify(func(o Observer) { o.CanvasChanged(r) })
}

// didClearAll feeds the animation detector after a clear covering the
// whole canvas.
func (c *Canvas) didClearAll() {
	if c.mode != ModeRaster {
		return
	}
	c.detector.Count()
	if c.detector.IsAnimating() && c.recordingAllowed() {
		c.mode = ModeAnimating
		Logger().Info("canvas2d: canvas is animating", "id", c.id, "rate", c.detector.Rate())
	}
}

// SetSize recreates the storage at the new size. Content and context
// state are reset and queued worker operations for the canvas are purged.
// Zero or negative dimensions fall back to 300x150.
func (c *Canvas) SetSize(width, height int) {
	if c.destroyed {
		return
	}
	c.width, c.height = normalizeSize(width, height)
	mode := c.mode
	if mode == ModeAnimating {
		mode = ModeRaster
	}
	c.e.worker.RemoveByIdentity(c.id)
	c.dropStorage()
	c.detector.Reset()
	c.dirty = image.Rectangle{}
	if c.ctx != nil {
		c.ctx.reset()
		c.allocate(mode)
	}
	// A layer can keep the texture record, and with it the replay handle,
	// alive across the reset. The first list must wipe it.
	if r := c.recorder(); r != nil {
		r.ClearRect(backend.R(0, 0, float64(c.width), float64(c.height)))
	}
	c.notify(func(o Observer) { o.CanvasResized() })
}

func (c *Canvas) dropStorage() {
	switch b := c.backing.(type) {
	case *surface.Surface:
		_ = b.Close()
	case *recording.Recorder:
		b.EndRecording()
	}
	c.backing = nil
	c.mode = ModeRaster
	c.releaseInfo()
}

// Deactivate purges queued worker operations for the canvas and tells
// observers it no longer feeds textures.
func (c *Canvas) Deactivate() {
	if c.destroyed {
		return
	}
	c.e.worker.RemoveByIdentity(c.id)
	c.notify(func(o Observer) { o.CanvasInactive() })
}

// Destroy releases everything the canvas owns. It is idempotent.
func (c *Canvas) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	n := c.e.worker.RemoveByIdentity(c.id)
	c.notify(func(o Observer) { o.CanvasDestroyed() })
	c.observers = nil
	c.dropStorage()
	c.ctx = nil
	Logger().Debug("canvas2d: canvas destroyed", "id", c.id, "purged", n)
}
