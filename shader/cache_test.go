// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/gogpu/xr3d/shaderkey"
)

const testVert = "@vertex\nfn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }\n"
const testFrag = "@fragment\nfn fs_main() -> @location(0) vec4<f32> { return vec4<f32>(1.0); }\n"

func TestCachePipelineLookupOnly(t *testing.T) {
	baker := &stubBaker{}
	c := NewCache(nil, WithBaker(baker))
	defer c.Destroy()

	if p, ok := c.Pipeline("k", 0); ok || p != nil {
		t.Errorf("Pipeline on empty cache = (%v, %v), want (nil, false)", p, ok)
	}
	if baker.callCount() != 0 {
		t.Errorf("lookup baked %d stages, want 0", baker.callCount())
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after lookup, want 0", c.Len())
	}
}

func TestCacheCompileOncePerKey(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	baker := &stubBaker{}
	c := NewCache(device, WithBaker(baker))
	defer c.Destroy()

	var f Features
	f.Set(Ssao, true)

	p1, err := c.Compile("key", testVert, testFrag, f, AllStages)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if p1.Module(StageVertex) == nil || p1.Module(StageFragment) == nil {
		t.Error("expected shader modules for both stages")
	}
	if p1.Stages() != AllStages {
		t.Errorf("Stages() = %b, want %b", p1.Stages(), AllStages)
	}

	p2, err := c.Compile("key", testVert, testFrag, f, AllStages)
	if err != nil {
		t.Fatalf("second Compile: %v", err)
	}
	if p1 != p2 {
		t.Error("second Compile returned a different pipeline")
	}
	if baker.callCount() != 2 {
		t.Errorf("baked %d stages, want 2", baker.callCount())
	}

	got, ok := c.Pipeline("key", f)
	if !ok || got != p1 {
		t.Error("Pipeline did not return the compiled entry")
	}
	// Same string, different features: a distinct key.
	if _, ok := c.Pipeline("key", 0); ok {
		t.Error("lookup with other features hit")
	}
}

func TestCacheCompileFailureIsCached(t *testing.T) {
	baker := &stubBaker{fail: map[Stage]bool{StageFragment: true}}
	c := NewCache(nil, WithBaker(baker))
	defer c.Destroy()

	p, err := c.Compile("broken", testVert, testFrag, 0, AllStages)
	if p != nil || !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("Compile = (%v, %v), want (nil, ErrCompileFailed)", p, err)
	}

	p, ok := c.Pipeline("broken", 0)
	if !ok || p != nil {
		t.Errorf("Pipeline after failure = (%v, %v), want (nil, true)", p, ok)
	}

	calls := baker.callCount()
	if _, err := c.Compile("broken", testVert, testFrag, 0, AllStages); !errors.Is(err, ErrCompileFailed) {
		t.Errorf("second Compile error = %v, want ErrCompileFailed", err)
	}
	if baker.callCount() != calls {
		t.Error("failed variant was baked again")
	}

	s := c.Stats()
	if s.Compiles != 1 || s.Failures != 1 {
		t.Errorf("Stats = %+v, want 1 compile and 1 failure", s)
	}
}

func TestCacheStatusCallback(t *testing.T) {
	type report struct {
		key    string
		status BakeStatus
		msg    string
		stage  Stage
	}
	var reports []report
	cb := func(key string, status BakeStatus, msg string, stage Stage) {
		reports = append(reports, report{key, status, msg, stage})
	}

	baker := &stubBaker{fail: map[Stage]bool{StageFragment: true}}
	c := NewCache(nil, WithBaker(baker), WithStatusCallback(cb))
	defer c.Destroy()

	_, _ = c.Compile("k", testVert, testFrag, 0, AllStages)

	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	if reports[0].status != StatusSuccess || reports[0].stage != StageVertex || reports[0].msg != "" {
		t.Errorf("vertex report = %+v", reports[0])
	}
	if reports[1].status != StatusError || reports[1].stage != StageFragment || reports[1].msg == "" {
		t.Errorf("fragment report = %+v", reports[1])
	}
	if reports[0].key != "k" {
		t.Errorf("report key = %q, want k", reports[0].key)
	}
}

func TestCacheDefaultStatusCallback(t *testing.T) {
	n := 0
	SetStatusCallback(func(string, BakeStatus, string, Stage) { n++ })
	defer SetStatusCallback(nil)

	c := NewCache(nil, WithBaker(&stubBaker{}))
	defer c.Destroy()
	if _, err := c.Compile("k", testVert, testFrag, 0, VertexStage); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if n != 1 {
		t.Errorf("default callback called %d times, want 1", n)
	}
}

func TestCachePreprocessorHeader(t *testing.T) {
	baker := &stubBaker{}
	c := NewCache(nil, WithBaker(baker))
	defer c.Destroy()

	var f Features
	f.Set(LightProbe, true)
	if _, err := c.Compile("myKey", testVert, testFrag, f, VertexStage); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(baker.sources) != 1 {
		t.Fatalf("baked %d sources, want 1", len(baker.sources))
	}
	src := baker.sources[0]
	for _, want := range []string{
		"// key: myKey\n",
		"// #define QSSG_ENABLE_LIGHT_PROBE 1\n",
		"// #define QSSG_ENABLE_SSAO 0\n",
		testVert,
	} {
		if !strings.Contains(src, want) {
			t.Errorf("baked source missing %q", want)
		}
	}
	if got := strings.Count(src, "#define"); got != FeatureCount {
		t.Errorf("header has %d defines, want %d", got, FeatureCount)
	}
}

func TestCacheLoadGenerated(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	baker := &stubBaker{}
	c := NewCache(device, WithBaker(baker))
	defer c.Destroy()

	entry := testEntry("gen", 0)
	p, err := c.LoadGenerated("gen", entry)
	if err != nil {
		t.Fatalf("LoadGenerated: %v", err)
	}
	if got, ok := c.Pipeline("gen", 0); !ok || got != p {
		t.Error("generated pipeline not inserted")
	}
	if baker.callCount() != 0 {
		t.Error("LoadGenerated baked source")
	}

	if _, err := c.LoadGenerated("empty", CollectionEntry{Key: "empty"}); !errors.Is(err, ErrCompileFailed) {
		t.Errorf("LoadGenerated(no stages) error = %v, want ErrCompileFailed", err)
	}
}

func TestCacheLoadBuiltin(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCollection(&buf, []CollectionEntry{testEntry("blit", 0)}); err != nil {
		t.Fatalf("WriteCollection: %v", err)
	}
	fsys := fstest.MapFS{
		ResourceFolder() + "/blit.qsb": &fstest.MapFile{Data: buf.Bytes()},
	}

	c := NewCache(nil, WithBaker(&stubBaker{}), WithBuiltinFS(fsys))
	defer c.Destroy()

	p, err := c.LoadBuiltin("blit")
	if err != nil {
		t.Fatalf("LoadBuiltin: %v", err)
	}
	if p.Shader(StageFragment) == nil {
		t.Error("builtin pipeline missing fragment stage")
	}
	again, err := c.LoadBuiltin("blit")
	if err != nil || again != p {
		t.Errorf("second LoadBuiltin = (%p, %v), want cached %p", again, err, p)
	}

	if _, err := c.LoadBuiltin("missing"); !errors.Is(err, ErrCompileFailed) {
		t.Errorf("LoadBuiltin(missing) error = %v, want ErrCompileFailed", err)
	}
	if _, ok := c.Pipeline("missing", 0); !ok {
		t.Error("missing builtin not cached as failure")
	}
}

func TestCacheGetOrCompile(t *testing.T) {
	props := shaderkey.NewDefaultMaterialKeyProperties()
	var f Features
	f.Set(AcesTonemapping, true)
	key := shaderkey.NewDefaultMaterialKey(f.Hash())
	props.HasLighting.SetValue(&key.Data, true)
	props.LightCount.SetValue(&key.Data, 1)
	props.VertexAttributes.SetBit(&key.Data, shaderkey.AttrPosition, true)

	baker := &stubBaker{}
	c := NewCache(nil, WithBaker(baker))
	defer c.Destroy()

	gens := 0
	gen := GeneratorFunc(func(k *shaderkey.DefaultMaterialKey, p *shaderkey.DefaultMaterialKeyProperties, fs Features) (Source, error) {
		gens++
		return DefaultMaterialGenerator{}.Generate(k, p, fs)
	})

	p1, err := c.GetOrCompile(props, &key, f, gen)
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	p2, err := c.GetOrCompile(props, &key, f, gen)
	if err != nil {
		t.Fatalf("second GetOrCompile: %v", err)
	}
	if p1 != p2 {
		t.Error("GetOrCompile returned different pipelines for the same key")
	}
	if gens != 1 {
		t.Errorf("generator ran %d times, want 1", gens)
	}
	if got := p1.Key().Key; got != key.String(props) {
		t.Errorf("pipeline key = %q, want material key string", got)
	}
}

func TestCacheGetOrCompilePrefersCollection(t *testing.T) {
	props := shaderkey.NewDefaultMaterialKeyProperties()
	key := shaderkey.NewDefaultMaterialKey(0)
	props.VertexAttributes.SetBit(&key.Data, shaderkey.AttrPosition, true)
	keyStr := key.String(props)

	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, CollectionFile()))
	if err != nil {
		t.Fatal(err)
	}
	if err := WriteCollection(f, []CollectionEntry{testEntry(keyStr, 0)}); err != nil {
		t.Fatalf("WriteCollection: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	baker := &stubBaker{}
	c := NewCache(nil, WithBaker(baker), WithCacheDir(dir))
	defer c.Destroy()

	gen := GeneratorFunc(func(*shaderkey.DefaultMaterialKey, *shaderkey.DefaultMaterialKeyProperties, Features) (Source, error) {
		t.Error("generator called although the collection has the variant")
		return Source{}, nil
	})
	p, err := c.GetOrCompile(props, &key, 0, gen)
	if err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if baker.callCount() != 0 {
		t.Error("precompiled variant was baked")
	}
	if _, ok := p.Shader(StageFragment).Blob(TargetGLSL); !ok {
		t.Error("pipeline does not carry the collection blobs")
	}
}

func TestCacheGetOrCompileMissingCollection(t *testing.T) {
	props := shaderkey.NewDefaultMaterialKeyProperties()
	key := shaderkey.NewDefaultMaterialKey(0)
	props.VertexAttributes.SetBit(&key.Data, shaderkey.AttrPosition, true)

	baker := &stubBaker{}
	c := NewCache(nil, WithBaker(baker), WithCacheDir(t.TempDir()))
	defer c.Destroy()

	if _, err := c.GetOrCompile(props, &key, 0, nil); err != nil {
		t.Fatalf("GetOrCompile: %v", err)
	}
	if baker.callCount() != 2 {
		t.Errorf("baked %d stages, want 2", baker.callCount())
	}
}

func TestCacheDestroy(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	c := NewCache(device, WithBaker(&stubBaker{}))
	p, err := c.Compile("k", testVert, testFrag, 0, AllStages)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	c.Destroy()
	if c.Len() != 0 {
		t.Errorf("Len() after Destroy = %d, want 0", c.Len())
	}
	if p.Module(StageVertex) != nil {
		t.Error("shader module not released")
	}
	if _, err := c.Compile("k", testVert, testFrag, 0, AllStages); !errors.Is(err, ErrCacheDestroyed) {
		t.Errorf("Compile after Destroy error = %v, want ErrCacheDestroyed", err)
	}
	c.Destroy() // idempotent
}

func TestCacheStatsHitsAndMisses(t *testing.T) {
	c := NewCache(nil, WithBaker(&stubBaker{}))
	defer c.Destroy()

	c.Pipeline("a", 0)
	if _, err := c.Compile("a", testVert, testFrag, 0, AllStages); err != nil {
		t.Fatal(err)
	}
	c.Pipeline("a", 0)

	s := c.Stats()
	if s.Len != 1 {
		t.Errorf("Len = %d, want 1", s.Len)
	}
	if s.Hits != 1 {
		t.Errorf("Hits = %d, want 1", s.Hits)
	}
	// The lookup and the Compile probe both miss.
	if s.Misses != 2 {
		t.Errorf("Misses = %d, want 2", s.Misses)
	}
}

func TestCacheConcurrentCompileBakesOnce(t *testing.T) {
	baker := &stubBaker{delay: 20 * time.Millisecond}
	var reports atomic.Int32
	c := NewCache(nil, WithBaker(baker), WithStatusCallback(func(string, BakeStatus, string, Stage) {
		reports.Add(1)
	}))
	defer c.Destroy()

	const n = 8
	var wg sync.WaitGroup
	results := make([]*Pipeline, n)
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.Compile("k", testVert, testFrag, 0, AllStages)
		}()
	}
	wg.Wait()

	for i := range n {
		if errs[i] != nil {
			t.Fatalf("Compile %d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("Compile %d returned a different pipeline", i)
		}
	}
	if got := baker.callCount(); got != 2 {
		t.Errorf("baker called %d times, want 2 (one per stage)", got)
	}
	if got := reports.Load(); got != 2 {
		t.Errorf("status callback called %d times, want 2", got)
	}
	if got := c.Stats().Compiles; got != 1 {
		t.Errorf("Compiles = %d, want 1", got)
	}
}

func TestCacheConcurrentGetOrCompileBakesOnce(t *testing.T) {
	baker := &stubBaker{delay: 20 * time.Millisecond}
	c := NewCache(nil, WithBaker(baker))
	defer c.Destroy()

	props := shaderkey.NewDefaultMaterialKeyProperties()
	key := shaderkey.NewDefaultMaterialKey(0)
	props.VertexAttributes.SetBit(&key.Data, shaderkey.AttrPosition, true)

	var generated atomic.Int32
	gen := GeneratorFunc(func(k *shaderkey.DefaultMaterialKey, p *shaderkey.DefaultMaterialKeyProperties, f Features) (Source, error) {
		generated.Add(1)
		return DefaultMaterialGenerator{}.Generate(k, p, f)
	})

	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.GetOrCompile(props, &key, 0, gen); err != nil {
				t.Errorf("GetOrCompile: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := generated.Load(); got != 1 {
		t.Errorf("generator ran %d times, want 1", got)
	}
	if got := baker.callCount(); got != 2 {
		t.Errorf("baker called %d times, want 2", got)
	}
	if got := c.Stats().Compiles; got != 1 {
		t.Errorf("Compiles = %d, want 1", got)
	}
}

func TestCacheCorruptCollectionReadOnce(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, CollectionFile()), []byte("garbage"), 0o600); err != nil {
		t.Fatal(err)
	}
	c := NewCache(nil, WithBaker(&stubBaker{}), WithCacheDir(dir))
	defer c.Destroy()

	if _, err := c.Collection(); err == nil {
		t.Fatal("first Collection() of a corrupt file should fail")
	}
	// Fixing the file afterwards is not noticed: the failure is latched.
	var buf bytes.Buffer
	if err := WriteCollection(&buf, []CollectionEntry{testEntry("k", 0)}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, CollectionFile()), buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	col, err := c.Collection()
	if err != nil {
		t.Fatalf("second Collection() error = %v, want nil", err)
	}
	if col.Len() != 0 {
		t.Errorf("latched collection has %d entries, want 0", col.Len())
	}
}
