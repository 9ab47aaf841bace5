// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gogpu/wgpu/hal"
	"golang.org/x/sync/singleflight"

	"github.com/gogpu/xr3d/cache"
	"github.com/gogpu/xr3d/shaderkey"
)

// ErrCacheDestroyed is returned by operations on a destroyed Cache.
var ErrCacheDestroyed = errors.New("shader: cache destroyed")

// Names of the builtin shader folder and the application collection file.
const (
	resourceFolder = "res/rhishaders"
	collectionFile = "xr3dshaders.qsbc"
)

// ResourceFolder returns the folder builtin shaders are loaded from.
func ResourceFolder() string { return resourceFolder }

// CollectionFile returns the file name of the precompiled collection.
func CollectionFile() string { return collectionFile }

// BakeStatus is the outcome reported to a StatusCallback.
type BakeStatus uint8

// Bake outcomes.
const (
	StatusSuccess BakeStatus = iota
	StatusError
)

func (s BakeStatus) String() string {
	if s == StatusSuccess {
		return "success"
	}
	return "error"
}

// StatusCallback receives the result of every baked stage. errMsg is empty
// on success.
type StatusCallback func(key string, status BakeStatus, errMsg string, stage Stage)

var defaultStatusCallback atomic.Pointer[StatusCallback]

// SetStatusCallback installs the callback used by caches created without
// WithStatusCallback. Pass nil to remove it.
func SetStatusCallback(cb StatusCallback) {
	if cb == nil {
		defaultStatusCallback.Store(nil)
		return
	}
	defaultStatusCallback.Store(&cb)
}

// CacheStats reports cache activity.
type CacheStats struct {
	Len      int
	Hits     uint64
	Misses   uint64
	Compiles uint64
	Failures uint64
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithBaker replaces the default naga baker.
func WithBaker(b Baker) CacheOption {
	return func(c *Cache) {
		c.baker = b
	}
}

// WithStatusCallback sets the per-stage bake status callback.
func WithStatusCallback(cb StatusCallback) CacheOption {
	return func(c *Cache) {
		c.status = cb
	}
}

// WithCollection supplies the precompiled collection directly.
func WithCollection(col *Collection) CacheOption {
	return func(c *Cache) {
		c.collection = col
		c.collectionLoaded = true
	}
}

// WithCacheDir sets the directory holding CollectionFile(). The file is
// opened on first use.
func WithCacheDir(dir string) CacheOption {
	return func(c *Cache) {
		c.cacheDir = dir
	}
}

// WithBuiltinFS sets the file system holding builtin shaders under
// ResourceFolder().
func WithBuiltinFS(fsys fs.FS) CacheOption {
	return func(c *Cache) {
		c.builtin = fsys
	}
}

// Cache maps CacheKey to compiled pipelines for the lifetime of the
// owning context. It is safe for concurrent use.
type Cache struct {
	device hal.Device
	baker  Baker
	status StatusCallback

	store *cache.Sharded[CacheKey, *Pipeline]

	// flight coalesces concurrent builds of the same key.
	flight singleflight.Group

	builtin  fs.FS
	cacheDir string

	colMu            sync.Mutex
	collection       *Collection
	collectionLoaded bool

	compiles  atomic.Uint64
	failures  atomic.Uint64
	destroyed atomic.Bool
}

// NewCache creates an empty cache. device may be nil, in which case
// pipelines carry baked blobs but no GPU shader modules.
func NewCache(device hal.Device, opts ...CacheOption) *Cache {
	c := &Cache{
		device: device,
		store:  cache.NewSharded[CacheKey, *Pipeline](CacheKey.Hash),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baker == nil {
		c.baker = NewBaker()
	}
	if c.status == nil {
		if cb := defaultStatusCallback.Load(); cb != nil {
			c.status = *cb
		}
	}
	return c
}

// Pipeline looks up a variant without compiling it.
//
// The second result reports whether the key is known. A known key with a
// nil pipeline is a cached compile failure.
func (c *Cache) Pipeline(key string, features Features) (*Pipeline, bool) {
	return c.store.Get(NewCacheKey(key, features))
}

// Compile bakes vert and frag for the selected stages and inserts the
// result. If the key is already present the cached entry is returned
// without baking.
//
// Each stage source gets a preprocessor header naming the key and the
// state of every feature. The status callback is invoked once per baked
// stage. On failure the key is cached as failed and the returned error
// wraps ErrCompileFailed.
func (c *Cache) Compile(key, vert, frag string, features Features, stages StageFlags) (*Pipeline, error) {
	if c.destroyed.Load() {
		return nil, ErrCacheDestroyed
	}
	ck := NewCacheKey(key, features)
	if p, ok := c.store.Get(ck); ok {
		return cachedResult(ck, p)
	}
	return c.build(ck, func() (*Pipeline, error) {
		return c.bake(ck, Source{Vertex: vert, Fragment: frag}, stages)
	})
}

// build runs fn once per key among concurrent callers. Callers that joined
// an in-flight build share its result.
func (c *Cache) build(ck CacheKey, fn func() (*Pipeline, error)) (*Pipeline, error) {
	v, err, _ := c.flight.Do(flightKey(ck), func() (any, error) {
		if p, ok := c.store.Peek(ck); ok {
			return cachedResult(ck, p)
		}
		return fn()
	})
	p, _ := v.(*Pipeline)
	return p, err
}

func flightKey(ck CacheKey) string {
	return strconv.FormatUint(uint64(ck.Features), 16) + ":" + ck.Key
}

func (c *Cache) bake(ck CacheKey, src Source, stages StageFlags) (*Pipeline, error) {
	c.compiles.Add(1)
	var shaders []Shader
	var bakeErr error
	for s := range stageCount {
		if !stages.Has(s) {
			continue
		}
		sh, err := c.baker.Bake(s, preprocessorHeader(ck.Key, s, ck.Features)+src.Stage(s))
		if err != nil {
			c.report(ck.Key, StatusError, err.Error(), s)
			bakeErr = errors.Join(bakeErr, err)
			continue
		}
		c.report(ck.Key, StatusSuccess, "", s)
		shaders = append(shaders, sh)
	}
	if bakeErr != nil {
		return c.fail(ck, bakeErr)
	}
	return c.insert(ck, shaders)
}

// LoadGenerated builds the pipeline of a precompiled collection entry and
// inserts it under key.
func (c *Cache) LoadGenerated(key string, entry CollectionEntry) (*Pipeline, error) {
	if c.destroyed.Load() {
		return nil, ErrCacheDestroyed
	}
	ck := NewCacheKey(key, entry.Features)
	if p, ok := c.store.Get(ck); ok {
		return cachedResult(ck, p)
	}
	return c.build(ck, func() (*Pipeline, error) {
		if len(entry.Shaders) == 0 {
			return c.fail(ck, errors.New("collection entry has no stages"))
		}
		return c.insert(ck, entry.Shaders)
	})
}

// LoadBuiltin loads <ResourceFolder()>/<key>.qsb from the builtin file
// system. Builtin shaders are stored with no features.
func (c *Cache) LoadBuiltin(key string) (*Pipeline, error) {
	if c.destroyed.Load() {
		return nil, ErrCacheDestroyed
	}
	ck := NewCacheKey(key, 0)
	if p, ok := c.store.Get(ck); ok {
		return cachedResult(ck, p)
	}
	if c.builtin == nil {
		return nil, fmt.Errorf("%w: no builtin shader file system for %q", ErrCompileFailed, key)
	}

	return c.build(ck, func() (*Pipeline, error) {
		return c.loadBuiltin(ck)
	})
}

func (c *Cache) loadBuiltin(ck CacheKey) (*Pipeline, error) {
	name := path.Join(resourceFolder, ck.Key+".qsb")
	f, err := c.builtin.Open(name)
	if err != nil {
		return c.fail(ck, fmt.Errorf("open builtin shader: %w", err))
	}
	defer f.Close()

	col, err := ReadCollection(f)
	if err != nil {
		return c.fail(ck, fmt.Errorf("%s: %w", name, err))
	}
	entry, ok := col.Find(ck.Key, 0)
	if !ok && col.Len() > 0 {
		entry, ok = col.Entries()[0], true
	}
	if !ok {
		return c.fail(ck, fmt.Errorf("%s: empty", name))
	}
	return c.insert(ck, entry.Shaders)
}

// GetOrCompile returns the pipeline of a material variant, consulting the
// cache, then the precompiled collection, then gen. Repeated calls with
// the same key and features return the same *Pipeline.
func (c *Cache) GetOrCompile(props *shaderkey.DefaultMaterialKeyProperties, key *shaderkey.DefaultMaterialKey, features Features, gen Generator) (*Pipeline, error) {
	keyStr := MaterialCacheKey(props, key)
	if p, ok := c.Pipeline(keyStr, features); ok {
		return cachedResult(NewCacheKey(keyStr, features), p)
	}

	col, err := c.Collection()
	if err != nil {
		slogger().Warn("shader collection unavailable, compiling at runtime", "err", err)
	} else if entry, ok := col.Find(keyStr, features); ok {
		return c.LoadGenerated(keyStr, entry)
	}

	if c.destroyed.Load() {
		return nil, ErrCacheDestroyed
	}
	if gen == nil {
		gen = DefaultMaterialGenerator{}
	}
	ck := NewCacheKey(keyStr, features)
	return c.build(ck, func() (*Pipeline, error) {
		src, err := gen.Generate(key, props, features)
		if err != nil {
			c.compiles.Add(1)
			return c.fail(ck, err)
		}
		return c.bake(ck, src, AllStages)
	})
}

// Collection returns the precompiled collection, opening
// <cacheDir>/CollectionFile() on first use. Without a cache directory the
// collection is empty. A file that fails to parse is reported by the
// first call only; later calls return an empty collection.
func (c *Cache) Collection() (*Collection, error) {
	c.colMu.Lock()
	defer c.colMu.Unlock()
	if c.collectionLoaded {
		return c.collection, nil
	}
	if c.cacheDir == "" {
		c.collection, c.collectionLoaded = NewCollection(), true
		return c.collection, nil
	}
	col, err := OpenCollection(filepath.Join(c.cacheDir, collectionFile))
	// A corrupt file is reported once; later lookups see an empty collection.
	c.collectionLoaded = true
	if err != nil {
		c.collection = NewCollection()
		return nil, err
	}
	c.collection = col
	return col, nil
}

// Len returns the number of cached keys, failures included.
func (c *Cache) Len() int { return c.store.Len() }

// Stats returns cache counters.
func (c *Cache) Stats() CacheStats {
	s := c.store.Stats()
	return CacheStats{
		Len:      s.Len,
		Hits:     s.Hits,
		Misses:   s.Misses,
		Compiles: c.compiles.Load(),
		Failures: c.failures.Load(),
	}
}

// Destroy releases every shader module and empties the cache. Further
// compile and load calls return ErrCacheDestroyed. Destroy is idempotent.
func (c *Cache) Destroy() {
	if c.destroyed.Swap(true) {
		return
	}
	n := 0
	c.store.Range(func(_ CacheKey, p *Pipeline) bool {
		if p != nil {
			p.destroy(c.device)
			n++
		}
		return true
	})
	c.store.Clear()
	slogger().Debug("shader cache destroyed", "pipelines", n)
}

func (c *Cache) insert(ck CacheKey, shaders []Shader) (*Pipeline, error) {
	p, err := newPipeline(c.device, ck, shaders)
	if err != nil {
		return c.fail(ck, err)
	}
	stored, inserted := c.store.Insert(ck, p)
	if !inserted {
		p.destroy(c.device)
		return cachedResult(ck, stored)
	}
	slogger().Debug("shader variant cached", "hash", ck.HashString(), "features", ck.Features.String())
	return p, nil
}

func (c *Cache) fail(ck CacheKey, err error) (*Pipeline, error) {
	c.failures.Add(1)
	c.store.Insert(ck, nil)
	slogger().Warn("shader variant failed", "key", truncateKey(ck.Key), "features", ck.Features.String(), "err", err)
	if errors.Is(err, ErrCompileFailed) {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
}

func (c *Cache) report(key string, status BakeStatus, errMsg string, stage Stage) {
	if c.status != nil {
		c.status(key, status, errMsg, stage)
	}
}

func cachedResult(ck CacheKey, p *Pipeline) (*Pipeline, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: cached failure for %s", ErrCompileFailed, ck.HashString())
	}
	return p, nil
}

// preprocessorHeader names the key and stage and records the state of every
// feature as a define line. WGSL has no preprocessor, so the lines are
// comments; they still make each variant's source unique.
func preprocessorHeader(key string, stage Stage, features Features) string {
	var b strings.Builder
	b.WriteString("// key: ")
	b.WriteString(truncateKey(key))
	b.WriteString("\n// stage: ")
	b.WriteString(stage.String())
	b.WriteByte('\n')
	for i := range FeatureCount {
		f := FeatureFromIndex(i)
		b.WriteString("// #define ")
		b.WriteString(f.DefineString())
		if features.IsSet(f) {
			b.WriteString(" 1\n")
		} else {
			b.WriteString(" 0\n")
		}
	}
	return b.String()
}

// truncateKey shortens key strings for logs and headers.
func truncateKey(key string) string {
	const maxLen = 120
	if len(key) <= maxLen {
		return key
	}
	return key[:maxLen] + "..."
}
