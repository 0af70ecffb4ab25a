// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package recording implements the display-list drawing backend of a canvas.
//
// A Recorder accepts the same backend.Backend drawing contract as the raster
// surface but touches no pixels: every call is captured as a typed command.
// Finalizing a recording yields an immutable DisplayList that is replayed
// exactly once into another backend, normally on the replay worker.
//
// # Architecture
//
// The package follows the Command pattern:
//
//   - Recorder: captures drawing calls as commands
//   - DisplayList: immutable commands plus resources, tagged with a sequence number
//   - backend.Backend: the replay target
//
// Mutable resources (paths, images) are copied into a ResourcePool when
// recorded, so later changes by the caller cannot leak into a finalized list.
//
// # Basic Usage
//
//	rec := recording.NewRecorder()
//	if !rec.BeginRecording(300, 150) {
//		return errTooLarge
//	}
//	rec.FillRect(backend.R(0, 0, 300, 150), backend.Fill(red))
//	list := rec.EndRecording()
//
//	s, _ := surface.New(300, 150)
//	if err := list.Replay(s); err != nil {
//		return err
//	}
//
// # Frames
//
// A canvas that keeps recording across frames calls Flush at each frame
// boundary. Flush finalizes the pending list and starts the next one with
// commands that re-establish the current transform and clip, so every list
// replays correctly on its own.
package recording
