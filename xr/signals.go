// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"slices"

	"github.com/gogpu/xr3d/render"
	"github.com/gogpu/xr3d/xr/openxr"
)

// Signal is a one-way notification with payload T. Handlers run
// synchronously in connection order when the signal fires; a signal that
// fires with no handlers connected is lost.
type Signal[T any] struct {
	handlers []*signalHandler[T]
}

type signalHandler[T any] struct {
	fn func(T)
}

// Connect registers fn and returns a function that disconnects it.
func (s *Signal[T]) Connect(fn func(T)) (disconnect func()) {
	h := &signalHandler[T]{fn: fn}
	s.handlers = append(s.handlers, h)
	return func() {
		s.handlers = slices.DeleteFunc(s.handlers, func(x *signalHandler[T]) bool { return x == h })
	}
}

// Len returns the number of connected handlers.
func (s *Signal[T]) Len() int { return len(s.handlers) }

func (s *Signal[T]) emit(v T) {
	// Handlers may disconnect while we iterate.
	for _, h := range slices.Clone(s.handlers) {
		h.fn(v)
	}
}

// Signals groups the notifications a Manager sends to its collaborators.
type Signals struct {
	// ReferenceSpaceChanged fires with the new current space.
	ReferenceSpaceChanged Signal[openxr.ReferenceSpaceType]

	// SessionEnded fires once when the runtime asks the session to exit.
	SessionEnded Signal[EventOutcome]

	// FrameReady fires after the scene renderer filled a swapchain image,
	// before the image is released.
	FrameReady Signal[FrameReadyEvent]

	// OriginChanged fires when the scene origin is discovered (non-nil)
	// or lost (nil).
	OriginChanged Signal[*Origin]
}

// FrameReadyEvent is the payload of Signals.FrameReady.
type FrameReadyEvent struct {
	// View is the eye index, or -1 for a multiview render of all eyes.
	View   int
	Target render.RenderTarget
	Buffer render.ColorBuffer
}
