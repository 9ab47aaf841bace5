// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"context"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xr3d/internal/fakexr"
	"github.com/gogpu/xr3d/xr/openxr"
)

// createNoopDevice creates a noop device and queue for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newTestManager returns a manager on rt backed by a noop HAL device. The
// manager is torn down when the test ends.
func newTestManager(t *testing.T, rt *fakexr.Runtime, opts ...Option) *Manager {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)
	m := New(rt, NewHALGraphics(device, queue), opts...)
	t.Cleanup(m.Teardown)
	return m
}

// startSession initializes m and lets the runtime move it to READY.
func startSession(t *testing.T, m *Manager, rt *fakexr.Runtime) {
	t.Helper()
	require.NoError(t, m.Initialize(context.Background()))
	rt.PushState(openxr.SessionStateReady)
	out := m.PollEvents()
	require.False(t, out.ShouldExit)
	require.True(t, m.IsSessionRunning())
}

// recorder collects signal payloads.
type recorder[T any] struct {
	got []T
}

func record[T any](s *Signal[T]) *recorder[T] {
	r := &recorder[T]{}
	s.Connect(func(v T) { r.got = append(r.got, v) })
	return r
}

// callIndex returns the position of the first call named name, or -1.
func callIndex(calls []string, name string) int {
	return slices.Index(calls, name)
}

// hookLog records InputManager and SpaceExtension callbacks.
type hookLog struct {
	log     []string
	events  []openxr.EventSpaceEvent
	initErr error
}

func (h *hookLog) Init(openxr.Instance, openxr.Session) error {
	h.log = append(h.log, "input.Init")
	return h.initErr
}
func (h *hookLog) PollActions() { h.log = append(h.log, "input.PollActions") }
func (h *hookLog) UpdatePoses(openxr.Time, openxr.Space) {
	h.log = append(h.log, "input.UpdatePoses")
}
func (h *hookLog) UpdateHandTracking(openxr.Time, openxr.Space, bool) {
	h.log = append(h.log, "input.UpdateHandTracking")
}
func (h *hookLog) Teardown() { h.log = append(h.log, "input.Teardown") }

// spaceHook is a SpaceExtension writing into a shared hookLog.
type spaceHook struct{ *hookLog }

func (s spaceHook) RequiredExtensions() []string { return []string{"XR_FB_spatial_entity"} }
func (s spaceHook) Initialize(openxr.Instance, openxr.Session) error {
	s.log = append(s.log, "space.Initialize")
	return nil
}
func (s spaceHook) HandleEvent(e openxr.EventSpaceEvent) {
	s.events = append(s.events, e)
}
func (s spaceHook) UpdateAnchors(openxr.Time, openxr.Space) {
	s.log = append(s.log, "space.UpdateAnchors")
}
func (s spaceHook) Teardown() { s.log = append(s.log, "space.Teardown") }
