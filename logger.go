// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package canvas2d

import (
	"log/slog"

	"github.com/gogpu/canvas2d/internal/logging"
)

// SetLogger configures the logger for canvas2d and all its sub-packages.
// By default nothing is logged. Pass nil to restore the silent default.
//
// SetLogger is safe for concurrent use.
//
// Log levels used by canvas2d:
//   - [slog.LevelDebug]: queue and mode diagnostics
//   - [slog.LevelInfo]: lifecycle events (mode switches, backlog overflow)
//   - [slog.LevelWarn]: replay and upload failures, refused transitions
//
// Example:
//
//	canvas2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger. It is never nil.
func Logger() *slog.Logger {
	return logging.Logger()
}
