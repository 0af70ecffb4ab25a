// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package texture manages the GPU resource record shared by a canvas, its
// compositor layer and the replay worker.
//
// A Registry maps a resource identity to at most one live Info. Entries are
// non-owning: callers of GetOrCreate own a reference each, and when the last
// one is released the entry disappears and the registry's release hook runs
// (the engine uses it to queue teardown of the background handle on the
// worker).
package texture

import (
	"sync"

	"github.com/gogpu/canvas2d/internal/logging"
)

// Registry is the identity-keyed set of resource records. All map mutation
// happens under one mutex.
type Registry struct {
	mu        sync.Mutex
	entries   map[int]*Info
	onRelease func(*Info)
}

// Option configures a Registry.
type Option func(*Registry)

// WithReleaseFunc sets the hook run after an Info loses its last owner. The
// hook runs outside the registry lock.
func WithReleaseFunc(fn func(*Info)) Option {
	return func(r *Registry) { r.onRelease = fn }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{entries: make(map[int]*Info)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// GetOrCreate returns the live record for id with one new reference owned
// by the caller, creating it if needed. A record whose last reference is
// being dropped concurrently is replaced by a fresh one.
func (r *Registry) GetOrCreate(id int) *Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	if info, ok := r.entries[id]; ok && info.tryRetain() {
		return info
	}
	info := &Info{id: id, reg: r}
	info.refs.Store(1)
	r.entries[id] = info
	logging.Logger().Debug("texture: info created", "id", id)
	return info
}

// Lookup returns the live record for id without taking a reference.
func (r *Registry) Lookup(id int) (*Info, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.entries[id]
	return info, ok
}

// Remove drops the entry for id. Owners keep their records; a later
// GetOrCreate creates a new one.
func (r *Registry) Remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, id)
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// forget removes info if it is still the entry for its id, then runs the
// release hook.
func (r *Registry) forget(info *Info) {
	r.mu.Lock()
	if cur, ok := r.entries[info.id]; ok && cur == info {
		delete(r.entries, info.id)
	}
	hook := r.onRelease
	r.mu.Unlock()

	logging.Logger().Debug("texture: info released", "id", info.id)
	if hook != nil {
		hook(info)
	}
}
