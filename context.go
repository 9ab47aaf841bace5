// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr3d

import (
	"fmt"
	"sync"

	"github.com/gogpu/xr3d/particles"
	"github.com/gogpu/xr3d/shader"
)

// Context owns the per-process rendering state shared by the XR
// compositor and the renderers: the shader cache and the particle
// randomizer.
//
// Context methods are safe for concurrent use. The randomizer is not;
// particle systems on different goroutines need their own.
type Context struct {
	mu         sync.Mutex
	cache      *shader.Cache
	ownsCache  bool
	randomizer *particles.Randomizer
	closed     bool
}

// NewContext creates a Context. Unless WithShaderCache is given, a new
// shader cache is created and owned by the Context.
func NewContext(opts ...Option) (*Context, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	ctx := &Context{
		cache:      o.cache,
		randomizer: o.randomizer,
	}
	if ctx.cache == nil {
		cacheOpts, err := o.cacheOptions()
		if err != nil {
			return nil, err
		}
		ctx.cache = shader.NewCache(o.device, cacheOpts...)
		ctx.ownsCache = true
	}
	if ctx.randomizer == nil {
		ctx.randomizer = particles.NewRandomizer(o.seed)
	}
	Logger().Debug("xr3d context created", "owns_cache", ctx.ownsCache, "device", o.device != nil)
	return ctx, nil
}

func (o *options) cacheOptions() ([]shader.CacheOption, error) {
	baker, err := o.baker()
	if err != nil {
		return nil, err
	}
	cacheOpts := []shader.CacheOption{shader.WithBaker(baker)}
	if o.cfg != nil && o.cfg.Shader.CacheDir != "" {
		cacheOpts = append(cacheOpts, shader.WithCacheDir(o.cfg.Shader.CacheDir))
	}
	if o.status != nil {
		cacheOpts = append(cacheOpts, shader.WithStatusCallback(o.status))
	}
	return append(cacheOpts, o.cacheOpts...), nil
}

func (o *options) baker() (*shader.NagaBaker, error) {
	var bakerOpts []shader.BakerOption
	if o.cfg != nil {
		targets := make([]shader.Target, 0, len(o.cfg.Shader.Targets))
		for _, name := range o.cfg.Shader.Targets {
			t, err := shader.ParseTarget(name)
			if err != nil {
				return nil, fmt.Errorf("xr3d: %w", err)
			}
			targets = append(targets, t)
		}
		if len(targets) > 0 {
			bakerOpts = append(bakerOpts, shader.WithTargets(targets...))
		}
		bakerOpts = append(bakerOpts, shader.WithValidation(o.cfg.Shader.Validate))
	}
	return shader.NewBaker(append(bakerOpts, o.bakerOpts...)...), nil
}

// ShaderCache returns the shader cache, or nil after Close.
func (c *Context) ShaderCache() *shader.Cache {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.cache
}

// Randomizer returns the particle randomizer.
func (c *Context) Randomizer() *particles.Randomizer {
	return c.randomizer
}

// Close destroys the owned shader cache, releasing every shader module.
// A cache passed with WithShaderCache is left alone. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ownsCache {
		c.cache.Destroy()
	}
	return nil
}
