// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package surface implements the raster drawing backend of a canvas.
//
// A Surface owns premultiplied pixel storage (a gg.Pixmap) and rasterizes
// through a gg.Context bound to it. On top of the backend.Backend drawing
// contract it offers unmultiplied pixel-rectangle access and snapshots:
//
//	s, err := surface.New(300, 150)
//	if err != nil {
//		return err
//	}
//	s.FillRect(backend.R(0, 0, 300, 150), backend.Fill(gg.RGBA{R: 1, A: 1}))
//	px := s.GetImageData(image.Rect(0, 0, 1, 1)) // px.Pix = [255 0 0 255]
//
// Unlike the recorder, the surface supports drop shadows. Shadows are drawn
// from the blurred alpha of the shape rendered offscreen.
package surface
