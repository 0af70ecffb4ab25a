// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package worker

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/canvas2d/internal/logging"
	"github.com/gogpu/canvas2d/recording"
	"github.com/gogpu/canvas2d/texture"
)

// Kind identifies an operation variant.
type Kind uint8

const (
	// KindReplay replays a display list into a canvas texture handle.
	KindReplay Kind = iota
	// KindRemoveLayerTexture destroys a compositor layer texture.
	KindRemoveLayerTexture
	// KindRemoveTextureHandle frees the background handle of a resource.
	KindRemoveTextureHandle
	// KindPixelRead reads back the texture handle for the owner.
	KindPixelRead
)

var kindNames = [...]string{
	KindReplay:              "ReplayDisplayList",
	KindRemoveLayerTexture:  "RemoveLayerTexture",
	KindRemoveTextureHandle: "RemoveTextureHandle",
	KindPixelRead:           "PixelRead",
}

// String returns the operation name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Operation is a unit of work for the worker.
//
// Exactly one of Run or Discard is called for every operation handed to
// Schedule. Both release whatever payload the operation owns.
type Operation interface {
	// ID returns the canvas identity the operation belongs to.
	ID() int
	// Kind returns the operation variant.
	Kind() Kind
	// Run executes the operation on the worker goroutine.
	Run() error
	// Discard frees the payload of an operation that will never run.
	Discard()
}

// replayOp replays one display list. It owns a reference to the resource
// record and the list itself.
type replayOp struct {
	info *texture.Info
	list *recording.DisplayList
}

// NewReplay returns an operation that replays list into the background
// handle of info. The operation takes its own reference to info and marks
// the list as scheduled.
func NewReplay(info *texture.Info, list *recording.DisplayList) Operation {
	info.Retain()
	info.MarkScheduled(list.Seq())
	return &replayOp{info: info, list: list}
}

func (o *replayOp) ID() int    { return o.info.ID() }
func (o *replayOp) Kind() Kind { return KindReplay }

func (o *replayOp) Run() error {
	defer o.info.Release()
	return o.info.ReplayInto(o.list)
}

func (o *replayOp) Discard() {
	o.info.Unschedule()
	o.info.Release()
}

// removeLayerTextureOp destroys a texture owned by a compositor layer.
type removeLayerTextureOp struct {
	id  int
	tex gpucontext.Texture
}

// NewRemoveLayerTexture returns an operation that destroys tex. A purged
// operation destroys the texture too; only the timing differs.
func NewRemoveLayerTexture(id int, tex gpucontext.Texture) Operation {
	return &removeLayerTextureOp{id: id, tex: tex}
}

func (o *removeLayerTextureOp) ID() int    { return o.id }
func (o *removeLayerTextureOp) Kind() Kind { return KindRemoveLayerTexture }

func (o *removeLayerTextureOp) Run() error {
	o.destroy()
	return nil
}

func (o *removeLayerTextureOp) Discard() { o.destroy() }

func (o *removeLayerTextureOp) destroy() {
	if o.tex == nil {
		return
	}
	texture.DestroyTexture(o.tex)
	o.tex = nil
}

// removeHandleOp frees the background handle of a released resource.
type removeHandleOp struct {
	info *texture.Info
}

// NewRemoveTextureHandle returns an operation that frees the background
// handle of info. It is scheduled once the last reference is gone, so it
// does not retain info.
func NewRemoveTextureHandle(info *texture.Info) Operation {
	return &removeHandleOp{info: info}
}

func (o *removeHandleOp) ID() int    { return o.info.ID() }
func (o *removeHandleOp) Kind() Kind { return KindRemoveTextureHandle }

func (o *removeHandleOp) Run() error {
	o.info.ReleaseHandle()
	logging.Logger().Debug("worker: texture handle released", "id", o.info.ID())
	return nil
}

// Discard still frees the handle; nothing else will.
func (o *removeHandleOp) Discard() { o.info.ReleaseHandle() }
