// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package texture

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/canvas2d/internal/logging"
	"github.com/gogpu/canvas2d/recording"
	"github.com/gogpu/canvas2d/surface"
)

var (
	// ErrReleased is returned when the background handle has been torn down.
	ErrReleased = errors.New("texture: handle released")
	// ErrNoFrame is returned by ReadPixels before anything was replayed.
	ErrNoFrame = errors.New("texture: no frame replayed")
	// ErrNoCreator is returned by uploads without a texture creator.
	ErrNoCreator = errors.New("texture: no texture creator")
)

// textureDestroyer is implemented by GPU textures that hold resources.
type textureDestroyer interface {
	Destroy()
}

// Info is the shared resource record of one canvas identity.
//
// The owner goroutine presents through the main-side fields; the replay
// worker renders into the background handle. Each group has its own lock:
// the main side polls readiness every frame while the worker updates the
// handle once per replay. When both are needed the main lock is taken
// first.
type Info struct {
	id   int
	refs atomic.Int32
	reg  *Registry

	// Main side.
	texMu         sync.Mutex
	tex           gpucontext.Texture
	inited        bool
	drawingSeq    uint64
	hasNewerFrame bool

	// Background side.
	bgMu      sync.Mutex
	handle    *surface.Surface
	handleSeq uint64
	released  bool

	pending       atomic.Int32
	lastScheduled atomic.Uint64
}

// ID returns the resource identity.
func (i *Info) ID() int { return i.id }

// Refs returns the number of owning references.
func (i *Info) Refs() int { return int(i.refs.Load()) }

// Retain adds an owning reference.
func (i *Info) Retain() *Info {
	i.refs.Add(1)
	return i
}

// tryRetain adds a reference unless the count already dropped to zero.
func (i *Info) tryRetain() bool {
	for {
		n := i.refs.Load()
		if n <= 0 {
			return false
		}
		if i.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Release drops an owning reference. Dropping the last one removes the
// registry entry and hands the record to the registry's release hook.
func (i *Info) Release() {
	n := i.refs.Add(-1)
	switch {
	case n == 0:
		if i.reg != nil {
			i.reg.forget(i)
		}
	case n < 0:
		logging.Logger().Warn("texture: release of unowned info", "id", i.id)
	}
}

// --------------------------------------------------------------------------
// Background side
// --------------------------------------------------------------------------

// MarkScheduled records that a list with seq was queued for replay.
func (i *Info) MarkScheduled(seq uint64) {
	i.pending.Add(1)
	i.lastScheduled.Store(seq)
}

// Unschedule records that a queued list was dropped without replay.
func (i *Info) Unschedule() {
	i.pending.Add(-1)
}

// Pending returns the number of queued, not yet replayed lists.
func (i *Info) Pending() int { return int(i.pending.Load()) }

// LastScheduled returns the sequence number of the newest queued list.
func (i *Info) LastScheduled() uint64 { return i.lastScheduled.Load() }

// ReplayInto replays list into the background handle, allocating or
// resizing the handle to the list dimensions. On success the main side is
// told a newer frame exists. The list counts as no longer pending whatever
// the outcome.
func (i *Info) ReplayInto(list *recording.DisplayList) error {
	defer i.pending.Add(-1)

	i.bgMu.Lock()
	if i.released {
		i.bgMu.Unlock()
		return fmt.Errorf("%w: id=%d", ErrReleased, i.id)
	}
	w, h := list.Size()
	if i.handle == nil || !sameSize(i.handle, w, h) {
		s, err := surface.New(w, h)
		if err != nil {
			i.bgMu.Unlock()
			return fmt.Errorf("texture: allocate handle: %w", err)
		}
		if i.handle != nil {
			_ = i.handle.Close()
		}
		i.handle = s
	}
	if err := list.Replay(i.handle); err != nil {
		i.bgMu.Unlock()
		return err
	}
	i.handleSeq = list.Seq()
	i.bgMu.Unlock()

	i.texMu.Lock()
	i.hasNewerFrame = true
	i.texMu.Unlock()
	return nil
}

func sameSize(s *surface.Surface, w, h int) bool {
	sw, sh := s.Size()
	return sw == w && sh == h
}

// ReadPixels returns an unmultiplied copy of the background handle.
func (i *Info) ReadPixels() (*image.NRGBA, error) {
	i.bgMu.Lock()
	defer i.bgMu.Unlock()
	if i.released {
		return nil, fmt.Errorf("%w: id=%d", ErrReleased, i.id)
	}
	if i.handle == nil {
		return nil, fmt.Errorf("%w: id=%d", ErrNoFrame, i.id)
	}
	return i.handle.GetImageData(i.handle.Bounds()), nil
}

// HandleSeq returns the sequence of the last list replayed into the handle.
func (i *Info) HandleSeq() uint64 {
	i.bgMu.Lock()
	defer i.bgMu.Unlock()
	return i.handleSeq
}

// ReleaseHandle frees the background handle. Later replays are refused.
func (i *Info) ReleaseHandle() {
	i.bgMu.Lock()
	defer i.bgMu.Unlock()
	if i.handle != nil {
		_ = i.handle.Close()
		i.handle = nil
	}
	i.released = true
}

// --------------------------------------------------------------------------
// Main side
// --------------------------------------------------------------------------

// DisplayTexture returns the texture to present. When the worker produced
// a newer frame it is uploaded first and the drawing sequence advances. On
// upload failure the previous texture is returned and the frame stays
// pending. The boolean reports whether a texture is ready.
func (i *Info) DisplayTexture(up *Uploader) (gpucontext.Texture, bool) {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	if !i.hasNewerFrame {
		return i.tex, i.inited
	}

	i.bgMu.Lock()
	if i.handle == nil {
		i.bgMu.Unlock()
		return i.tex, i.inited
	}
	w, h := i.handle.Size()
	tex, err := up.Upload(i.tex, w, h, i.handle.Pixmap().Data())
	seq := i.handleSeq
	i.bgMu.Unlock()

	if err != nil {
		logging.Logger().Warn("texture: upload failed", "id", i.id, "err", err)
		return i.tex, i.inited
	}
	i.tex = tex
	i.inited = true
	i.drawingSeq = seq
	i.hasNewerFrame = false
	return i.tex, true
}

// UploadPixels uploads premultiplied RGBA pixels directly into the main
// texture. Used when a raster canvas is presented through the GPU.
func (i *Info) UploadPixels(up *Uploader, w, h int, data []byte) error {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	tex, err := up.Upload(i.tex, w, h, data)
	if err != nil {
		return err
	}
	i.tex = tex
	i.inited = true
	i.hasNewerFrame = false
	return nil
}

// Texture returns the current main texture and whether it is ready.
func (i *Info) Texture() (gpucontext.Texture, bool) {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	return i.tex, i.inited
}

// DrawingSeq returns the sequence of the frame last made presentable.
func (i *Info) DrawingSeq() uint64 {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	return i.drawingSeq
}

// HasNewerFrame reports whether the worker replayed a frame not yet
// uploaded.
func (i *Info) HasNewerFrame() bool {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	return i.hasNewerFrame
}

// TakeTexture detaches the main texture, leaving the record not ready.
// The caller becomes responsible for destroying it.
func (i *Info) TakeTexture() gpucontext.Texture {
	i.texMu.Lock()
	defer i.texMu.Unlock()
	tex := i.tex
	i.tex = nil
	i.inited = false
	return tex
}

// DestroyTexture destroys tex if it holds GPU resources.
func DestroyTexture(tex gpucontext.Texture) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}
