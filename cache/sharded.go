// Package cache provides a generic sharded map used as a process-lifetime
// cache for expensive-to-build objects such as compiled shader pipelines.
//
// Entries are never evicted. The key space of the intended users is finite
// and small, so the cache grows until Clear or until the owner is
// destroyed.
package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

// Default configuration constants.
const (
	// DefaultShardCount is the number of shards for reduced lock contention.
	// Must be a power of 2 for fast modulo via bitwise AND.
	DefaultShardCount = 16

	// shardMask is used for fast shard selection (DefaultShardCount - 1).
	shardMask = DefaultShardCount - 1
)

// Hasher is a function that computes a hash for a key.
// Used by Sharded for shard selection only; key equality is always checked
// by the underlying map, so collisions never return the wrong entry.
type Hasher[K any] func(K) uint64

// StringHasher computes FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself as the hash (identity hash).
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Mix64 is the splitmix64 finalizer. It is a bijection, so distinct inputs
// never map to the same output.
func Mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Sharded is a thread-safe, unbounded, sharded map with hit/miss counters.
type Sharded[K comparable, V any] struct {
	shards [DefaultShardCount]*shard[K, V]
	hasher Hasher[K]

	hits   atomic.Uint64
	misses atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Len     int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

// NewSharded creates an empty sharded map using hasher for shard selection.
func NewSharded[K comparable, V any](hasher Hasher[K]) *Sharded[K, V] {
	c := &Sharded[K, V]{hasher: hasher}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]V)}
	}
	return c
}

func (c *Sharded[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hasher(key)&shardMask]
}

// Get returns the value stored for key.
func (c *Sharded[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Peek returns the value stored for key without touching the counters.
func (c *Sharded[K, V]) Peek(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	return v, ok
}

// Contains reports whether key is present without touching the counters.
func (c *Sharded[K, V]) Contains(key K) bool {
	s := c.shardFor(key)
	s.mu.RLock()
	_, ok := s.entries[key]
	s.mu.RUnlock()
	return ok
}

// GetOrCreate returns the stored value or builds it with create.
//
// create runs with the shard lock held, so it is called at most once per
// key even under concurrent access. The second result reports whether
// create ran.
func (c *Sharded[K, V]) GetOrCreate(key K, create func() V) (V, bool) {
	s := c.shardFor(key)

	s.mu.RLock()
	v, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		c.hits.Add(1)
		return v, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring write lock
	if v, ok := s.entries[key]; ok {
		c.hits.Add(1)
		return v, false
	}
	c.misses.Add(1)
	v = create()
	s.entries[key] = v
	return v, true
}

// Insert stores value only when key is absent. It returns the value that
// ends up in the map and whether it was inserted.
func (c *Sharded[K, V]) Insert(key K, value V) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.entries[key]; ok {
		return existing, false
	}
	s.entries[key] = value
	return value, true
}

// Range calls fn for every entry until fn returns false. The map must not
// be modified from fn.
func (c *Sharded[K, V]) Range(fn func(K, V) bool) {
	for _, s := range c.shards {
		s.mu.RLock()
		for k, v := range s.entries {
			if !fn(k, v) {
				s.mu.RUnlock()
				return
			}
		}
		s.mu.RUnlock()
	}
}

// Clear removes all entries.
func (c *Sharded[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		s.entries = make(map[K]V)
		s.mu.Unlock()
	}
}

// Len returns the total number of entries across all shards.
func (c *Sharded[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.RLock()
		total += len(s.entries)
		s.mu.RUnlock()
	}
	return total
}

// ShardLen returns the number of entries in each shard.
// Useful for debugging load distribution.
func (c *Sharded[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, s := range c.shards {
		s.mu.RLock()
		lens[i] = len(s.entries)
		s.mu.RUnlock()
	}
	return lens
}

// Stats returns current cache statistics.
func (c *Sharded[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Len:     c.Len(),
		Hits:    hits,
		Misses:  misses,
		HitRate: hitRate,
	}
}

// ResetStats resets all statistics counters to zero.
func (c *Sharded[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
}
