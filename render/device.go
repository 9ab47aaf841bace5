// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoHALDevice is returned when a DeviceHandle does not expose HAL types.
var ErrNoHALDevice = errors.New("render: provider does not expose a HAL device")

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. gogpu.App) implements DeviceHandle and passes it to the XR
// manager, which shares the device for swapchain images and shader modules.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// halProvider is implemented by providers that also expose HAL objects.
type halProvider interface {
	HalDevice() any
	HalQueue() any
}

// HALDevice extracts the hal.Device and hal.Queue behind a provider.
// The provider must implement HalDevice() any and HalQueue() any.
func HALDevice(provider any) (hal.Device, hal.Queue, error) {
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, errors.New("render: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, errors.New("render: provider HalQueue is not hal.Queue")
	}
	return device, queue, nil
}

// HALDeviceHandle wraps a bare hal.Device and hal.Queue as a DeviceHandle.
// It is what tests and headless tools hand to the XR manager.
type HALDeviceHandle struct {
	HAL      hal.Device
	HALQueue hal.Queue
	Format   gputypes.TextureFormat

	// Info describes the adapter. Without a name the adapter type is
	// reported as unknown.
	Info gpucontext.AdapterInfo
}

// Device returns nil; HAL consumers use HalDevice.
func (h *HALDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil; HAL consumers use HalQueue.
func (h *HALDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (h *HALDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns Info, or an unknown adapter when Info is unset.
func (h *HALDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	if h.Info.Name == "" {
		return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
	}
	return h.Info
}

// SurfaceFormat returns the preferred color format.
func (h *HALDeviceHandle) SurfaceFormat() gputypes.TextureFormat { return h.Format }

// HalDevice returns the wrapped device.
func (h *HALDeviceHandle) HalDevice() any { return h.HAL }

// HalQueue returns the wrapped queue.
func (h *HALDeviceHandle) HalQueue() any { return h.HALQueue }

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for headless runs where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo reports an unknown adapter for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var (
	_ DeviceHandle = NullDeviceHandle{}
	_ DeviceHandle = (*HALDeviceHandle)(nil)
)
