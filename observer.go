// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import "image"

// Observer receives canvas notifications on the owner goroutine.
// layer.Layer implements it.
type Observer interface {
	// CanvasResized is called after the backing store was recreated.
	CanvasResized()
	// CanvasChanged is called after a draw with the affected device area.
	CanvasChanged(dirty image.Rectangle)
	// CanvasDestroyed is called once, before registrations are cleared.
	CanvasDestroyed()
	// CanvasInactive is called when the canvas stops feeding textures.
	CanvasInactive()
}

// AddObserver registers o and returns a function removing it. The remove
// function is safe to call more than once.
func (c *Canvas) AddObserver(o Observer) (remove func()) {
	if c.destroyed || o == nil {
		return func() {}
	}
	if c.observers == nil {
		c.observers = make(map[int]Observer)
	}
	token := c.nextObserver
	c.nextObserver++
	c.observers[token] = o
	return func() { delete(c.observers, token) }
}

// Observers returns the number of registered observers.
func (c *Canvas) Observers() int { return len(c.observers) }

// notify calls fn for every observer. Observers may unregister while
// being notified.
func (c *Canvas) notify(fn func(Observer)) {
	if len(c.observers) == 0 {
		return
	}
	list := make([]Observer, 0, len(c.observers))
	for _, o := range c.observers {
		list = append(list, o)
	}
	for _, o := range list {
		fn(o)
	}
}
