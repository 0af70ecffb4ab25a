// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package recording

import (
	"github.com/gogpu/gg"

	"github.com/gogpu/canvas2d/backend"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	// State commands
	CmdSave         CommandType = iota // Save current state
	CmdRestore                         // Restore previous state
	CmdSetTransform                    // Set transformation matrix
	CmdClipRect                        // Intersect clip with a rectangle

	// Drawing commands
	CmdFillRect     // Fill a rectangle
	CmdStrokeRect   // Stroke a rectangle
	CmdClearRect    // Clear a rectangle to transparent
	CmdFillPath     // Fill a path
	CmdStrokePath   // Stroke a path
	CmdDrawImage    // Draw a scaled image
	CmdDrawText     // Draw text at a baseline position
	CmdPutImageData // Replace device pixels
)

var commandTypeNames = [...]string{
	CmdSave:         "Save",
	CmdRestore:      "Restore",
	CmdSetTransform: "SetTransform",
	CmdClipRect:     "ClipRect",
	CmdFillRect:     "FillRect",
	CmdStrokeRect:   "StrokeRect",
	CmdClearRect:    "ClearRect",
	CmdFillPath:     "FillPath",
	CmdStrokePath:   "StrokePath",
	CmdDrawImage:    "DrawImage",
	CmdDrawText:     "DrawText",
	CmdPutImageData: "PutImageData",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is implemented by all command types.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType
}

// PathRef references a path in the resource pool.
type PathRef uint32

// ImageRef references an image in the resource pool.
type ImageRef uint32

// --------------------------------------------------------------------------
// State Commands
// --------------------------------------------------------------------------

// SaveCommand pushes the transform and clip state.
type SaveCommand struct{}

// Type implements Command.
func (SaveCommand) Type() CommandType { return CmdSave }

// RestoreCommand pops the state pushed by the matching SaveCommand.
type RestoreCommand struct{}

// Type implements Command.
func (RestoreCommand) Type() CommandType { return CmdRestore }

// SetTransformCommand replaces the current transformation matrix.
type SetTransformCommand struct {
	Matrix gg.Matrix
}

// Type implements Command.
func (SetTransformCommand) Type() CommandType { return CmdSetTransform }

// ClipRectCommand intersects the clip with a rectangle.
type ClipRectCommand struct {
	Rect backend.Rect
}

// Type implements Command.
func (ClipRectCommand) Type() CommandType { return CmdClipRect }

// --------------------------------------------------------------------------
// Drawing Commands
// --------------------------------------------------------------------------

// FillRectCommand fills a rectangle.
type FillRectCommand struct {
	Rect  backend.Rect
	Paint backend.Paint
}

// Type implements Command.
func (FillRectCommand) Type() CommandType { return CmdFillRect }

// StrokeRectCommand strokes a rectangle outline.
type StrokeRectCommand struct {
	Rect  backend.Rect
	Paint backend.Paint
}

// Type implements Command.
func (StrokeRectCommand) Type() CommandType { return CmdStrokeRect }

// ClearRectCommand clears a rectangle to transparent black.
type ClearRectCommand struct {
	Rect backend.Rect
}

// Type implements Command.
func (ClearRectCommand) Type() CommandType { return CmdClearRect }

// FillPathCommand fills a pooled path.
type FillPathCommand struct {
	Path  PathRef
	Paint backend.Paint
}

// Type implements Command.
func (FillPathCommand) Type() CommandType { return CmdFillPath }

// StrokePathCommand strokes a pooled path.
type StrokePathCommand struct {
	Path  PathRef
	Paint backend.Paint
}

// Type implements Command.
func (StrokePathCommand) Type() CommandType { return CmdStrokePath }

// DrawImageCommand paints a pooled image into a destination rectangle.
type DrawImageCommand struct {
	Image ImageRef
	Dst   backend.Rect
	Paint backend.Paint
}

// Type implements Command.
func (DrawImageCommand) Type() CommandType { return CmdDrawImage }

// DrawTextCommand draws text with its baseline at (X, Y).
type DrawTextCommand struct {
	Text  string
	X, Y  float64
	Paint backend.Paint
}

// Type implements Command.
func (DrawTextCommand) Type() CommandType { return CmdDrawText }

// PutImageDataCommand replaces device pixels with a pooled image.
type PutImageDataCommand struct {
	Image  ImageRef
	DX, DY int
}

// Type implements Command.
func (PutImageDataCommand) Type() CommandType { return CmdPutImageData }
