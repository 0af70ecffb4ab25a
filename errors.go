// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import "errors"

// Common errors returned by canvas operations.
var (
	// ErrSecurity is returned when reading pixels of a canvas tainted by
	// cross-origin content.
	ErrSecurity = errors.New("canvas2d: canvas is not origin-clean")

	// ErrDestroyed is returned by operations on a destroyed canvas.
	ErrDestroyed = errors.New("canvas2d: canvas destroyed")

	// ErrNoContext is returned when 2D pixels are requested from a canvas
	// holding a 3D context.
	ErrNoContext = errors.New("canvas2d: no 2d context")

	// ErrIndexSize is returned for zero-sized image data requests.
	ErrIndexSize = errors.New("canvas2d: index or size is zero")

	// ErrEngineClosed is returned by NewCanvas after Engine.Close.
	ErrEngineClosed = errors.New("canvas2d: engine closed")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("canvas2d: invalid config")
)
