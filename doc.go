// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package canvas2d provides an accelerated 2D canvas that records drawing
// into display lists, replays them on a background worker and composites
// the result.
//
// # Overview
//
// A Canvas is backed either by a software raster surface or by a
// display-list recorder, never both. The canvas moves between three modes:
//
//   - Raster: drawing goes straight into a gg pixmap.
//   - Recording: drawing is recorded; the compositor layer hands each
//     frame's display list to the replay worker, which renders it into the
//     texture shared through the registry.
//   - Animating: raster-backed, but cleared often enough that the
//     compositor promotes it to Recording on the next frame.
//
// Every transition keeps the visible content pixel-identical.
//
// # Quick Start
//
//	eng, _ := canvas2d.NewEngine(canvas2d.DefaultConfig())
//	defer eng.Close()
//
//	c, _ := eng.NewCanvas(300, 150)
//	defer c.Destroy()
//
//	ctx := c.Context2D()
//	ctx.SetFillColor(gg.RGBA{R: 1, A: 1})
//	ctx.FillRect(0, 0, 300, 150)
//
//	l := eng.NewLayer(c, nil, 0) // software compositing
//	f := l.Snapshot()
//	defer f.Release()
//	f.Paint(dst)
//
// # Threading
//
// A canvas, its context and its layer belong to one owner goroutine. The
// engine's worker goroutine runs replays and GPU teardown; the only place
// the owner blocks on it is a synchronous pixel readback (GetImageData or
// Snapshot of a recording canvas, and the switch back to raster).
//
// # Configuration
//
// Config is read from TOML with LoadConfig or ParseConfig; CANVAS2D_*
// environment variables override file values.
//
// # Logging
//
// Nothing is logged by default. SetLogger installs a log/slog logger that
// all sub-packages share.
package canvas2d
