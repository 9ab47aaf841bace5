// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for testing.
// Returns the device, queue, and a cleanup function.
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

// fakeSPIRV returns a minimal blob that passes the magic check.
func fakeSPIRV() []byte {
	b := binary.LittleEndian.AppendUint32(nil, spirvMagic)
	return binary.LittleEndian.AppendUint32(b, 0x00010300)
}

// stubBaker records its inputs and fails the stages listed in fail.
type stubBaker struct {
	mu      sync.Mutex
	calls   int
	sources []string
	fail    map[Stage]bool
	delay   time.Duration
}

func (b *stubBaker) Bake(stage Stage, source string) (Shader, error) {
	time.Sleep(b.delay)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	b.sources = append(b.sources, source)
	if b.fail[stage] {
		return Shader{}, errors.New("stub: syntax error")
	}
	return Shader{
		Stage:      stage,
		EntryPoint: stage.entryPoint(),
		Blobs:      map[Target][]byte{TargetSPIRV: fakeSPIRV()},
	}, nil
}

func (b *stubBaker) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// testEntry returns a two-stage collection entry with fake blobs.
func testEntry(key string, features Features) CollectionEntry {
	return CollectionEntry{
		Key:      key,
		Features: features,
		Shaders: []Shader{
			{Stage: StageVertex, EntryPoint: VertexEntryPoint, Blobs: map[Target][]byte{TargetSPIRV: fakeSPIRV()}},
			{Stage: StageFragment, EntryPoint: FragmentEntryPoint, Blobs: map[Target][]byte{
				TargetSPIRV: fakeSPIRV(),
				TargetGLSL:  []byte("#version 330 core\nvoid main() {}\n"),
			}},
		},
	}
}
