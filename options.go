// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr3d

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xr3d/config"
	"github.com/gogpu/xr3d/particles"
	"github.com/gogpu/xr3d/shader"
)

// Option configures a Context during creation.
//
// Example:
//
//	// Shader cache without a device, for offline baking
//	ctx, err := xr3d.NewContext()
//
//	// Shader cache creating GPU modules on device, tuned from a config file
//	ctx, err := xr3d.NewContext(xr3d.WithDevice(dev), xr3d.WithConfig(cfg))
type Option func(*options)

type options struct {
	device     hal.Device
	cache      *shader.Cache
	cacheOpts  []shader.CacheOption
	bakerOpts  []shader.BakerOption
	status     shader.StatusCallback
	cfg        *config.Config
	seed       uint64
	randomizer *particles.Randomizer
}

// WithDevice sets the device shader modules are created on. Without a
// device, pipelines carry baked blobs only.
func WithDevice(d hal.Device) Option {
	return func(o *options) {
		o.device = d
	}
}

// WithShaderCache uses an existing cache. The Context does not take
// ownership: Close leaves it alive.
func WithShaderCache(c *shader.Cache) Option {
	return func(o *options) {
		o.cache = c
	}
}

// WithCacheOptions appends options for the cache the Context creates.
// They are applied after the options derived from WithConfig.
func WithCacheOptions(opts ...shader.CacheOption) Option {
	return func(o *options) {
		o.cacheOpts = append(o.cacheOpts, opts...)
	}
}

// WithBakerOptions appends options for the baker of the owned cache.
func WithBakerOptions(opts ...shader.BakerOption) Option {
	return func(o *options) {
		o.bakerOpts = append(o.bakerOpts, opts...)
	}
}

// WithStatusCallback reports every baked stage of the owned cache.
func WithStatusCallback(cb shader.StatusCallback) Option {
	return func(o *options) {
		o.status = cb
	}
}

// WithConfig takes the shader cache directory, bake targets and
// validation switch from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithParticleSeed seeds the particle randomizer. The default seed is 0.
func WithParticleSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// WithRandomizer shares a particle randomizer between contexts.
func WithRandomizer(r *particles.Randomizer) Option {
	return func(o *options) {
		o.randomizer = r
	}
}
