// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shaderkey encodes shader-affecting material and light properties
// into a fixed-size bit-packed key.
//
// A DefaultMaterialKey is ten 32-bit words plus the hash of the global
// shader feature set. DefaultMaterialKeyProperties describes which bits
// belong to which property: offsets are assigned once, in declaration
// order, and a property never straddles a 32-bit word boundary.
//
// # Key strings
//
// Keys convert to and from a human-readable form used as the shader cache
// key and inside precompiled shader collections:
//
//	hasLighting=true;lightCount=2;light0HasPosition=true;specularModel=Default;...
//
// False booleans are omitted. Nested properties (image maps, texture
// swizzles, vertex attributes) print every slot inside braces, leaving the
// slots that are off empty:
//
//	diffuseMap={enabled=true;;;;;identity=true}
//
// # Stability
//
// Reordering or resizing a property changes every offset after it and
// invalidates previously serialized keys. This is a versioning concern of
// the caller; nothing detects it at runtime.
//
// # Overflow
//
// Values wider than the property are truncated to the declared bit width
// without error: a 2-bit property set to 5 stores 1.
package shaderkey
