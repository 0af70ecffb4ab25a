// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

// Mode is the backing representation of a 2D canvas.
type Mode uint8

const (
	// ModeRaster draws immediately into a software surface.
	ModeRaster Mode = iota
	// ModeRecording records display lists that the worker replays into a
	// texture.
	ModeRecording
	// ModeAnimating is raster-backed but was detected to redraw often;
	// the compositor promotes it to recording.
	ModeAnimating
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeRaster:
		return "Raster"
	case ModeRecording:
		return "Recording"
	case ModeAnimating:
		return "Animating"
	default:
		return "Unknown"
	}
}
