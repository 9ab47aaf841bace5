package cache

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewSharded(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	if c == nil {
		t.Fatal("NewSharded returned nil")
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestShardedGet(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	c.Insert("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	if _, ok := c.Get("nonexistent"); ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestShardedGetOrCreate(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	createCalled := 0

	val, created := c.GetOrCreate("key1", func() int {
		createCalled++
		return 100
	})
	if val != 100 || !created {
		t.Errorf("GetOrCreate = (%d, %v), want (100, true)", val, created)
	}

	val, created = c.GetOrCreate("key1", func() int {
		createCalled++
		return 200
	})
	if val != 100 || created {
		t.Errorf("GetOrCreate = (%d, %v), want (100, false)", val, created)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}
}

func TestShardedInsertKeepsFirst(t *testing.T) {
	c := NewSharded[string, int](StringHasher)

	if v, ok := c.Insert("k", 1); !ok || v != 1 {
		t.Errorf("first Insert = (%d, %v), want (1, true)", v, ok)
	}
	if v, ok := c.Insert("k", 2); ok || v != 1 {
		t.Errorf("second Insert = (%d, %v), want (1, false)", v, ok)
	}
}

func TestShardedNoEviction(t *testing.T) {
	c := NewSharded[uint64, int](Uint64Hasher)
	for i := range 5000 {
		c.Insert(uint64(i), i)
	}
	if c.Len() != 5000 {
		t.Errorf("Len() = %d, want 5000", c.Len())
	}
	for i := range 5000 {
		if _, ok := c.Get(uint64(i)); !ok {
			t.Fatalf("entry %d missing", i)
		}
	}
}

func TestShardedCollidingHashes(t *testing.T) {
	// Every key lands in the same shard; equality still separates them.
	c := NewSharded[string, string](func(string) uint64 { return 7 })
	c.Insert("a", "A")
	c.Insert("b", "B")

	if v, _ := c.Get("a"); v != "A" {
		t.Errorf("Get(a) = %q, want A", v)
	}
	if v, _ := c.Get("b"); v != "B" {
		t.Errorf("Get(b) = %q, want B", v)
	}
	lens := c.ShardLen()
	if lens[7] != 2 {
		t.Errorf("shard 7 len = %d, want 2", lens[7])
	}
}

func TestShardedRangeAndClear(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	for i := range 10 {
		c.Insert(strconv.Itoa(i), i)
	}

	sum := 0
	c.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 45 {
		t.Errorf("Range sum = %d, want 45", sum)
	}

	visited := 0
	c.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Errorf("Range visited %d entries after stop, want 1", visited)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
}

func TestShardedStats(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	c.Insert("key1", 1)

	c.Get("key1")
	c.Get("key1")
	c.Get("missing")

	stats := c.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	if stats.HitRate < 0.66 || stats.HitRate > 0.67 {
		t.Errorf("expected hit rate ~0.667, got %f", stats.HitRate)
	}

	c.ResetStats()
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("stats after reset = %+v", s)
	}
}

func TestShardedConcurrentGetOrCreate(t *testing.T) {
	c := NewSharded[int, int](func(i int) uint64 { return uint64(i) })
	var creates atomic.Int32

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := range 100 {
				c.GetOrCreate(i, func() int {
					creates.Add(1)
					return i * g
				})
			}
		}(g)
	}
	wg.Wait()

	if creates.Load() != 100 {
		t.Errorf("create ran %d times, want 100", creates.Load())
	}
	if c.Len() != 100 {
		t.Errorf("Len() = %d, want 100", c.Len())
	}
}

func TestShardedPeekKeepsStats(t *testing.T) {
	c := NewSharded[string, int](StringHasher)
	c.Insert("a", 1)

	if v, ok := c.Peek("a"); !ok || v != 1 {
		t.Errorf("Peek(a) = %d, %v; want 1, true", v, ok)
	}
	if _, ok := c.Peek("b"); ok {
		t.Error("Peek(b) found a missing key")
	}
	if s := c.Stats(); s.Hits != 0 || s.Misses != 0 {
		t.Errorf("Peek changed counters: hits=%d misses=%d", s.Hits, s.Misses)
	}
}

func TestMix64(t *testing.T) {
	if Mix64(0) != 0 {
		t.Errorf("Mix64(0) = %#x, want 0", Mix64(0))
	}
	seen := make(map[uint64]uint64, 1024)
	for i := range uint64(1024) {
		h := Mix64(i)
		if prev, dup := seen[h]; dup {
			t.Fatalf("Mix64(%d) == Mix64(%d)", i, prev)
		}
		seen[h] = i
	}
	if Mix64(1) == 1 {
		t.Error("Mix64 does not mix")
	}
}
