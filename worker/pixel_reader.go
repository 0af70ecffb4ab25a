// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package worker

import (
	"image"
	"sync"
	"time"

	"github.com/gogpu/canvas2d/texture"
)

// PixelReader reads back the background handle of a resource on the worker
// goroutine and hands the pixels to a waiting owner.
//
// Schedule the value returned by Operation, then call Wait.
type PixelReader struct {
	info *texture.Info

	mu       sync.Mutex
	cond     *sync.Cond
	done     bool
	timedOut bool
	img      *image.NRGBA
	err      error
}

// NewPixelReader returns a reader for info. The reader holds a reference
// to info until it runs or is discarded.
func NewPixelReader(info *texture.Info) *PixelReader {
	r := &PixelReader{info: info.Retain()}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Operation returns the schedulable operation of the reader.
func (r *PixelReader) Operation() Operation { return pixelReadOp{r} }

// Wait blocks until the read completes, is canceled, or timeout elapses.
// A timeout of zero or less waits forever.
func (r *PixelReader) Wait(timeout time.Duration) (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timedOut = false
	if timeout > 0 && !r.done {
		t := time.AfterFunc(timeout, func() {
			r.mu.Lock()
			r.timedOut = true
			r.mu.Unlock()
			r.cond.Broadcast()
		})
		defer t.Stop()
	}
	for !r.done && !r.timedOut {
		r.cond.Wait()
	}
	if !r.done {
		return nil, ErrTimeout
	}
	return r.img, r.err
}

// Done reports whether the read finished or was canceled.
func (r *PixelReader) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *PixelReader) finish(img *image.NRGBA, err error) {
	r.mu.Lock()
	if r.done {
		r.mu.Unlock()
		return
	}
	r.done = true
	r.img, r.err = img, err
	r.info.Release()
	r.mu.Unlock()
	r.cond.Broadcast()
}

type pixelReadOp struct{ r *PixelReader }

func (o pixelReadOp) ID() int    { return o.r.info.ID() }
func (o pixelReadOp) Kind() Kind { return KindPixelRead }

func (o pixelReadOp) Run() error {
	img, err := o.r.info.ReadPixels()
	o.r.finish(img, err)
	return err
}

func (o pixelReadOp) Discard() { o.r.finish(nil, ErrCanceled) }
