// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xr3d is the XR and shader infrastructure of a 3D scene renderer.
//
// # Overview
//
// xr3d drives an OpenXR session and composites stereo frames rendered by
// a scene renderer, and compiles material shader variants on demand.
//
//   - [github.com/gogpu/xr3d/shaderkey]: compact bitfield keys describing
//     material shader variants, with a stable text form.
//   - [github.com/gogpu/xr3d/shader]: the variant cache. Variants come from
//     the cache, a precompiled collection file or runtime compilation
//     with naga.
//   - [github.com/gogpu/xr3d/xr]: the session manager and frame
//     compositor (reference spaces, swapchains, passthrough, foveation,
//     frame capture).
//   - [github.com/gogpu/xr3d/render]: the scene renderer interface and a
//     software renderer.
//   - [github.com/gogpu/xr3d/particles]: particle system randomization.
//   - [github.com/gogpu/xr3d/config]: TOML and YAML configuration.
//
// # Quick Start
//
//	cfg, err := config.Load("xr3d.toml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx, err := xr3d.NewContext(xr3d.WithDevice(device), xr3d.WithConfig(cfg))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	opts, err := xr.OptionsFromConfig(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m := xr.New(runtime, xr.NewHALGraphics(device, queue), opts...)
//	if err := m.Initialize(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Teardown()
//	m.Run(context.Background())
//
// # Logging
//
// xr3d is silent by default. [SetLogger] installs a [log/slog] logger for
// this package and its sub-packages.
//
// # Offline baking
//
// The xr3dbake command precompiles material variants into the collection
// file the shader cache reads at startup.
package xr3d
