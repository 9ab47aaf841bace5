// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
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

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil {
		t.Error("NullDeviceHandle.Device() should return nil")
	}
	if handle.Queue() != nil {
		t.Error("NullDeviceHandle.Queue() should return nil")
	}
	if handle.Adapter() != nil {
		t.Error("NullDeviceHandle.Adapter() should return nil")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
	if info := handle.AdapterInfo(); info.Type != gpucontext.AdapterTypeUnknown || info.Name != "" {
		t.Errorf("NullDeviceHandle.AdapterInfo() = %+v, want unknown adapter", info)
	}
}

func TestHALDeviceHandleAdapterInfo(t *testing.T) {
	var handle DeviceHandle = &HALDeviceHandle{}
	if got := handle.AdapterInfo().Type; got != gpucontext.AdapterTypeUnknown {
		t.Errorf("AdapterInfo().Type without info = %v, want Unknown", got)
	}

	info := gpucontext.AdapterInfo{Name: "Noop Adapter", Type: gpucontext.AdapterTypeSoftware}
	handle = &HALDeviceHandle{Info: info}
	if got := handle.AdapterInfo(); got != info {
		t.Errorf("AdapterInfo() = %+v, want %+v", got, info)
	}
}

func TestHALDeviceNotProvider(t *testing.T) {
	_, _, err := HALDevice(NullDeviceHandle{})
	if !errors.Is(err, ErrNoHALDevice) {
		t.Errorf("HALDevice(NullDeviceHandle) error = %v, want ErrNoHALDevice", err)
	}
}

func TestHALDeviceHandle(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	handle := &HALDeviceHandle{HAL: device, HALQueue: queue, Format: gputypes.TextureFormatRGBA8Unorm}
	gotDevice, gotQueue, err := HALDevice(handle)
	if err != nil {
		t.Fatalf("HALDevice failed: %v", err)
	}
	if gotDevice != device {
		t.Error("HALDevice returned a different device")
	}
	if gotQueue != queue {
		t.Error("HALDevice returned a different queue")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormat() = %v, want RGBA8Unorm", handle.SurfaceFormat())
	}
}

func TestHALDeviceNilDevice(t *testing.T) {
	_, _, err := HALDevice(&HALDeviceHandle{})
	if err == nil {
		t.Fatal("HALDevice with nil device should fail")
	}
}
