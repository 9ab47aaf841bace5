// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the handoff between the XR frame compositor and
// the scene renderer.
//
// # Key Principle
//
// xr3d RECEIVES a GPU device from the host application, it does NOT create
// one. DeviceHandle is the gpucontext provider the host passes in; HALDevice
// unwraps it to the hal.Device used for swapchain images and shader modules.
//
// # Core Types
//
//   - RenderTarget: a color texture view plus the array layer range and
//     viewport the scene renderer draws into
//   - SceneRenderer: draws one eye (or every eye, for multiview) and returns
//     the resulting ColorBuffer
//   - PixmapTarget: CPU-backed image used for readback and frame capture
//
// A multiview RenderTarget spans one array layer per view; a per-eye target
// spans exactly one layer. The renderer never changes the layer range.
package render
