// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package openxr models the OpenXR API surface consumed by package xr.
//
// Handles are opaque 64-bit values, every call returns a Result, and
// structures carry only the fields the session manager reads or writes.
// The Runtime interface is the single boundary to a loader: production code
// binds it to a native loader, tests bind it to internal/fakexr.
//
// Extension entry points (passthrough, foveation, display refresh rate,
// color space) are part of Runtime. A runtime without the entry point
// returns ErrorFunctionUnsupported, matching a NULL xrGetInstanceProcAddr.
package openxr
