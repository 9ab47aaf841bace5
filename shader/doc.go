// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package shader compiles and caches shader variants.
//
// A variant is identified by a CacheKey: the key string of a material (see
// package shaderkey) plus the global Features word. Cache holds at most one
// compiled Pipeline per distinct CacheKey for its whole lifetime; there is
// no eviction, and Destroy releases every GPU object at once.
//
// Variants come from three places, tried in this order by GetOrCompile:
//
//  1. the in-memory cache
//  2. a precompiled collection file (see WriteCollection)
//  3. a Generator producing WGSL, baked with naga by a Baker
//
// A failed compile is remembered as an empty entry so the same variant is
// not rebuilt every frame.
//
// Pass command lists (Pass, Command, Executor) describe multi-pass effects
// as data: buffer allocation, target and shader binding, per-pass uniform
// overrides and draws.
package shader
