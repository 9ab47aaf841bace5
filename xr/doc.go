// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xr drives an OpenXR session and composes its frames.
//
// A Manager walks the runtime from instance creation to a running session,
// negotiates the application reference space, owns the swapchains and
// pumps runtime events. Each tick the frame compositor waits for the next
// display time, locates the eyes, hands one render target per eye (or a
// single array target with multiview) to a render.SceneRenderer and submits
// the resulting composition layers.
//
// The runtime itself is reached through the openxr.Runtime interface, so a
// loader binding, a remote runtime or the in-memory fake used by the tests
// can be plugged in.
//
// # Lifecycle
//
//	m := xr.New(runtime, graphics, xr.WithRenderer(renderer))
//	if err := m.Initialize(ctx); err != nil {
//		log.Fatal(err) // *xr.InitError with a human readable message
//	}
//	defer m.Teardown()
//	err := m.Run(ctx)
//
// Run polls events and renders until the session exits or ctx is
// canceled. Applications with their own loop call Tick instead.
//
// # Threading
//
// A Manager is not safe for concurrent use. All calls, including signal
// handlers, run on the goroutine that calls Tick or Run.
package xr
