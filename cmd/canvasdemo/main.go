// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command canvasdemo animates a canvas, lets it switch to recording once
// the animation is detected and composites every frame through a layer.
package main

import (
	"flag"
	"image"
	"log"
	"log/slog"
	"math"
	"os"

	"github.com/gogpu/gg"

	"github.com/gogpu/canvas2d"
)

func main() {
	var (
		width   = flag.Int("width", 320, "canvas width")
		height  = flag.Int("height", 240, "canvas height")
		frames  = flag.Int("frames", 60, "number of frames")
		config  = flag.String("config", "", "TOML configuration file")
		output  = flag.String("output", "canvasdemo.png", "output file")
		verbose = flag.Bool("v", false, "log engine activity")
	)
	flag.Parse()

	if *verbose {
		canvas2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	cfg, err := canvas2d.LoadConfig(*config)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	eng, err := canvas2d.NewEngine(cfg)
	if err != nil {
		log.Fatalf("Failed to start engine: %v", err)
	}
	defer eng.Close()

	c, err := eng.NewCanvas(*width, *height)
	if err != nil {
		log.Fatalf("Failed to create canvas: %v", err)
	}
	defer c.Destroy()
	ctx := c.Context2D()
	if ctx == nil {
		log.Fatal("Canvas has no 2D context")
	}

	l := eng.NewLayer(c, nil, 0)
	screen := image.NewRGBA(image.Rect(0, 0, *width, *height))

	painted := 0
	for i := 0; i < *frames; i++ {
		drawFrame(ctx, *width, *height, i)
		if c.IsAnimating() {
			c.StartRecording()
		}
		if f := l.Snapshot(); f != nil {
			painted += f.Paint(screen)
			f.Release()
		}
	}

	out, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create output: %v", err)
	}
	defer out.Close()
	if err := c.EncodePNG(out); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	log.Printf("Saved %s (%dx%d), mode %v, %d tiles painted, worker %+v\n",
		*output, *width, *height, c.Mode(), painted, eng.Worker().Stats())
}

// drawFrame clears the canvas and draws orbiting discs for frame i.
func drawFrame(ctx *canvas2d.Context2D, w, h, i int) {
	fw, fh := float64(w), float64(h)
	ctx.ClearRect(0, 0, fw, fh)
	ctx.SetFillColor(gg.RGB(0.1, 0.12, 0.2))
	ctx.FillRect(0, 0, fw, fh)

	ctx.Save()
	ctx.Translate(fw/2, fh/2)
	ctx.Rotate(float64(i) * math.Pi / 30)
	for k := 0; k < 6; k++ {
		ctx.SetFillColor(gg.HSL(float64(k)/6*360, 0.7, 0.55))
		ctx.BeginPath()
		ctx.Arc(fh/3, 0, fh/12, 0, 2*math.Pi)
		ctx.Fill()
		ctx.Rotate(math.Pi / 3)
	}
	ctx.Restore()

	ctx.SetStrokeColor(gg.RGB(1, 1, 1))
	ctx.SetLineWidth(2)
	ctx.StrokeRect(4, 4, fw-8, fh-8)
}
