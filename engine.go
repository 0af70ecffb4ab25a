// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/canvas2d/layer"
	"github.com/gogpu/canvas2d/texture"
	"github.com/gogpu/canvas2d/worker"
)

// Default canvas size used for zero or negative dimensions.
const (
	DefaultWidth  = 300
	DefaultHeight = 150
)

// Engine owns what canvases share: the configuration, the texture
// registry and the replay worker.
//
// NewCanvas and Close are safe for concurrent use. Each canvas is used
// from its owner goroutine only.
type Engine struct {
	cfg    Config
	reg    *texture.Registry
	worker *worker.Worker
	clock  func() time.Time

	mu     sync.Mutex
	nextID int
	closed bool
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock sets the time source of the animation detectors.
func WithClock(clock func() time.Time) EngineOption {
	return func(e *Engine) { e.clock = clock }
}

// NewEngine validates cfg and starts the replay worker.
func NewEngine(cfg Config, opts ...EngineOption) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	e.worker = worker.New(worker.WithPolicy(worker.Policy{Defer: cfg.DeferredBatching}))
	e.reg = texture.NewRegistry(texture.WithReleaseFunc(e.releaseInfo))
	Logger().Info("canvas2d: engine started",
		"recording", cfg.RecordingEnabled, "force_recording", cfg.ForceRecording)
	return e, nil
}

// releaseInfo tears down the resources of a record that lost its last
// owner. GPU work happens on the worker.
func (e *Engine) releaseInfo(info *texture.Info) {
	if tex := info.TakeTexture(); tex != nil {
		e.worker.Schedule(worker.NewRemoveLayerTexture(info.ID(), tex))
	}
	e.worker.Schedule(worker.NewRemoveTextureHandle(info))
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Registry returns the shared texture registry.
func (e *Engine) Registry() *texture.Registry { return e.reg }

// Worker returns the replay worker.
func (e *Engine) Worker() *worker.Worker { return e.worker }

// NewCanvas creates a canvas without storage; the first Context2D call
// allocates it. Zero or negative dimensions fall back to 300x150.
// Oversized canvases are created but never get a backing store.
func (e *Engine) NewCanvas(width, height int) (*Canvas, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	e.nextID++
	id := e.nextID
	e.mu.Unlock()

	width, height = normalizeSize(width, height)
	c := &Canvas{
		e:           e,
		id:          id,
		width:       width,
		height:      height,
		originClean: true,
		detector:    NewAnimationDetector(e.cfg.AnimationThreshold, e.clock),
	}
	if !e.cfg.allows(width, height) {
		Logger().Warn("canvas2d: canvas too large, no backing store",
			"id", id, "width", width, "height", height)
	}
	return c, nil
}

// NewLayer creates a compositor layer for c and registers it as an
// observer. A nil creator selects the software path.
func (e *Engine) NewLayer(c *Canvas, creator gpucontext.TextureCreator, format gputypes.TextureFormat) *layer.Layer {
	l := layer.New(c, e.reg, e.worker,
		layer.WithTextureCreator(creator, format),
		layer.WithBacklogLimit(e.cfg.BacklogLimitBytes),
		layer.WithTileSize(e.cfg.TileWidth, e.cfg.TileHeight),
	)
	c.AddObserver(l)
	return l
}

// Close stops the worker. Canvases should be destroyed first; their
// queued operations are discarded.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()
	e.worker.Close()
	Logger().Info("canvas2d: engine closed", "stats", fmt.Sprintf("%+v", e.worker.Stats()))
}

func normalizeSize(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}
