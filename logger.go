// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr3d

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/xr3d/shader"
	"github.com/gogpu/xr3d/xr"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for xr3d and its sub-packages.
// By default, xr3d produces no log output.
//
// SetLogger is safe for concurrent use. Pass nil to restore the default
// silent behavior.
//
// Log levels used by xr3d:
//   - [slog.LevelDebug]: per-variant shader compiles, swapchain details
//   - [slog.LevelInfo]: session lifecycle, runtime and system selection
//   - [slog.LevelWarn]: non-fatal issues (missing optional extensions,
//     reference space fallbacks, unreadable shader collections)
//
// Example:
//
//	xr3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	shader.SetLogger(l)
	xr.SetLogger(l)
}

// Logger returns the current logger used by xr3d.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}
