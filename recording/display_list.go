// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/canvas2d/backend"
)

// ErrAlreadyReplayed is returned when a display list is replayed twice.
var ErrAlreadyReplayed = errors.New("recording: display list already replayed")

// lastSeq is the process-wide display list sequence counter.
var lastSeq atomic.Uint64

// DisplayList is a finalized, immutable recording. It is replayed exactly
// once; ownership passes to whoever replays it.
type DisplayList struct {
	seq           uint64
	width, height int
	commands      []Command
	pool          *ResourcePool
	bytes         int
	replayed      atomic.Bool
}

func newDisplayList(width, height int, commands []Command, pool *ResourcePool) *DisplayList {
	return &DisplayList{
		seq:      lastSeq.Add(1),
		width:    width,
		height:   height,
		commands: commands,
		pool:     pool,
		bytes:    len(commands)*commandBytes + pool.ByteSize(),
	}
}

// Seq returns the sequence number. Lists finalized later have larger
// numbers.
func (d *DisplayList) Seq() uint64 { return d.seq }

// Size returns the dimensions of the recording session.
func (d *DisplayList) Size() (width, height int) { return d.width, d.height }

// Len returns the number of commands.
func (d *DisplayList) Len() int { return len(d.commands) }

// ByteSize approximates the memory held by the list.
func (d *DisplayList) ByteSize() int { return d.bytes }

// Commands returns a copy of the recorded commands.
func (d *DisplayList) Commands() []Command {
	return append([]Command(nil), d.commands...)
}

// Replayed reports whether Replay has been called.
func (d *DisplayList) Replayed() bool { return d.replayed.Load() }

// Replay plays the commands into b. The target's transform and clip are
// restored afterwards, whatever save depth the list ends at. A second call
// returns ErrAlreadyReplayed without touching b.
func (d *DisplayList) Replay(b backend.Backend) error {
	if b == nil {
		return fmt.Errorf("recording: nil replay target for list %d", d.seq)
	}
	if !d.replayed.CompareAndSwap(false, true) {
		return fmt.Errorf("%w: seq=%d", ErrAlreadyReplayed, d.seq)
	}

	b.Save()
	depth := 0
	for _, cmd := range d.commands {
		switch c := cmd.(type) {
		case SaveCommand:
			b.Save()
			depth++
		case RestoreCommand:
			if depth > 0 {
				b.Restore()
				depth--
			}
		case SetTransformCommand:
			b.SetTransform(c.Matrix)
		case ClipRectCommand:
			b.ClipRect(c.Rect)
		case FillRectCommand:
			b.FillRect(c.Rect, c.Paint)
		case StrokeRectCommand:
			b.StrokeRect(c.Rect, c.Paint)
		case ClearRectCommand:
			b.ClearRect(c.Rect)
		case FillPathCommand:
			b.FillPath(d.pool.GetPath(c.Path), c.Paint)
		case StrokePathCommand:
			b.StrokePath(d.pool.GetPath(c.Path), c.Paint)
		case DrawImageCommand:
			if img := d.pool.GetImage(c.Image); img != nil {
				b.DrawImage(img, c.Dst, c.Paint)
			}
		case DrawTextCommand:
			b.DrawText(c.Text, c.X, c.Y, c.Paint)
		case PutImageDataCommand:
			b.PutImageData(d.pool.GetImage(c.Image), c.DX, c.DY)
		}
	}
	for ; depth > 0; depth-- {
		b.Restore()
	}
	b.Restore()
	return nil
}
