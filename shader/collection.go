// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
)

// ErrBadCollection is returned when a collection file cannot be decoded.
var ErrBadCollection = errors.New("shader: bad collection file")

// Collection file layout (little endian):
//
//	magic   [4]byte "QSBC"
//	version uint16
//	count   uint32
//	entries:
//	  key      uint32 length + bytes
//	  features uint32
//	  stages   uint8
//	  per stage:
//	    stage      uint8
//	    entryPoint uint16 length + bytes
//	    targets    uint8
//	    per target: target uint8, blob uint32 length + bytes
const (
	collectionMagic   = "QSBC"
	collectionVersion = 1

	maxKeyLen  = 1 << 20
	maxBlobLen = 64 << 20
)

// CollectionEntry is one precompiled variant.
type CollectionEntry struct {
	Key      string
	Features Features
	Shaders  []Shader
}

// CacheKey returns the key the entry is stored under.
func (e *CollectionEntry) CacheKey() CacheKey { return NewCacheKey(e.Key, e.Features) }

// Collection is an in-memory set of precompiled variants, indexed by
// cache key. It is read-only after construction.
type Collection struct {
	entries []CollectionEntry
	index   map[CacheKey]int
}

// NewCollection indexes entries. A later entry with the same key replaces
// an earlier one.
func NewCollection(entries ...CollectionEntry) *Collection {
	c := &Collection{index: make(map[CacheKey]int, len(entries))}
	for _, e := range entries {
		if i, ok := c.index[e.CacheKey()]; ok {
			c.entries[i] = e
			continue
		}
		c.index[e.CacheKey()] = len(c.entries)
		c.entries = append(c.entries, e)
	}
	return c
}

// Find returns the entry for key and features.
func (c *Collection) Find(key string, features Features) (CollectionEntry, bool) {
	if c == nil {
		return CollectionEntry{}, false
	}
	i, ok := c.index[NewCacheKey(key, features)]
	if !ok {
		return CollectionEntry{}, false
	}
	return c.entries[i], true
}

// Entries returns the entries in file order.
func (c *Collection) Entries() []CollectionEntry {
	if c == nil {
		return nil
	}
	return c.entries
}

// Len returns the number of entries.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// OpenCollection reads the collection at path. A missing file is not an
// error: it yields an empty collection so callers fall back to runtime
// compilation.
func OpenCollection(path string) (*Collection, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		slogger().Debug("shader collection not found", "path", path)
		return NewCollection(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open shader collection: %w", err)
	}
	defer f.Close()

	c, err := ReadCollection(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slogger().Debug("shader collection loaded", "path", path, "entries", c.Len())
	return c, nil
}

// WriteCollection encodes entries. Blobs are written in target order so the
// output is deterministic.
func WriteCollection(w io.Writer, entries []CollectionEntry) error {
	cw := &collectionWriter{w: bufio.NewWriter(w)}
	cw.bytes([]byte(collectionMagic))
	cw.u16(collectionVersion)
	cw.u32(uint32(len(entries))) //nolint:gosec // entry count fits uint32
	for i := range entries {
		e := &entries[i]
		cw.str32(e.Key)
		cw.u32(uint32(e.Features))
		cw.u8(uint8(len(e.Shaders))) //nolint:gosec // at most stageCount
		for j := range e.Shaders {
			sh := &e.Shaders[j]
			cw.u8(uint8(sh.Stage))
			cw.u16(uint16(len(sh.EntryPoint))) //nolint:gosec // entry point names are short
			cw.bytes([]byte(sh.EntryPoint))

			targets := make([]Target, 0, len(sh.Blobs))
			for t := range sh.Blobs {
				targets = append(targets, t)
			}
			sort.Slice(targets, func(a, b int) bool { return targets[a] < targets[b] })
			cw.u8(uint8(len(targets))) //nolint:gosec // at most four targets
			for _, t := range targets {
				cw.u8(uint8(t))
				cw.u32(uint32(len(sh.Blobs[t]))) //nolint:gosec // bounded by maxBlobLen on read
				cw.bytes(sh.Blobs[t])
			}
		}
	}
	if cw.err != nil {
		return fmt.Errorf("write shader collection: %w", cw.err)
	}
	return cw.w.Flush()
}

// ReadCollection decodes a collection written by WriteCollection.
func ReadCollection(r io.Reader) (*Collection, error) {
	cr := &collectionReader{r: r}
	magic := cr.bytes(4)
	if cr.err == nil && string(magic) != collectionMagic {
		return nil, fmt.Errorf("%w: magic %q", ErrBadCollection, magic)
	}
	if v := cr.u16(); cr.err == nil && v != collectionVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadCollection, v)
	}
	count := cr.u32()

	var entries []CollectionEntry
	for i := uint32(0); i < count && cr.err == nil; i++ {
		var e CollectionEntry
		e.Key = string(cr.bytes(cr.len32(maxKeyLen)))
		e.Features = Features(cr.u32())
		n := int(cr.u8())
		if n > int(stageCount) {
			cr.fail("entry %q has %d stages", e.Key, n)
		}
		for j := 0; j < n && cr.err == nil; j++ {
			sh := Shader{Stage: Stage(cr.u8())}
			if sh.Stage >= stageCount {
				cr.fail("entry %q: invalid stage %d", e.Key, sh.Stage)
			}
			sh.EntryPoint = string(cr.bytes(int(cr.u16())))
			nt := int(cr.u8())
			sh.Blobs = make(map[Target][]byte, nt)
			for k := 0; k < nt && cr.err == nil; k++ {
				t := Target(cr.u8())
				if t > TargetHLSL {
					cr.fail("entry %q: invalid target %d", e.Key, t)
				}
				sh.Blobs[t] = cr.bytes(cr.len32(maxBlobLen))
			}
			e.Shaders = append(e.Shaders, sh)
		}
		entries = append(entries, e)
	}
	if cr.err != nil {
		return nil, cr.err
	}
	return NewCollection(entries...), nil
}

// collectionWriter latches the first write error.
type collectionWriter struct {
	w   *bufio.Writer
	err error
}

func (cw *collectionWriter) bytes(b []byte) {
	if cw.err == nil {
		_, cw.err = cw.w.Write(b)
	}
}

func (cw *collectionWriter) u8(v uint8) { cw.bytes([]byte{v}) }

func (cw *collectionWriter) u16(v uint16) {
	cw.bytes(binary.LittleEndian.AppendUint16(nil, v))
}

func (cw *collectionWriter) u32(v uint32) {
	cw.bytes(binary.LittleEndian.AppendUint32(nil, v))
}

func (cw *collectionWriter) str32(s string) {
	cw.u32(uint32(len(s))) //nolint:gosec // bounded by maxKeyLen on read
	cw.bytes([]byte(s))
}

// collectionReader latches the first read or format error. After an error
// every read returns zero values.
type collectionReader struct {
	r   io.Reader
	err error
}

func (cr *collectionReader) fail(format string, args ...any) {
	if cr.err == nil {
		cr.err = fmt.Errorf("%w: "+format, append([]any{ErrBadCollection}, args...)...)
	}
}

func (cr *collectionReader) bytes(n int) []byte {
	if cr.err != nil || n == 0 {
		return nil
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(cr.r, b); err != nil {
		cr.err = fmt.Errorf("%w: %w", ErrBadCollection, err)
		return nil
	}
	return b
}

func (cr *collectionReader) u8() uint8 {
	b := cr.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (cr *collectionReader) u16() uint16 {
	b := cr.bytes(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (cr *collectionReader) u32() uint32 {
	b := cr.bytes(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// len32 reads a length prefix and rejects values above limit.
func (cr *collectionReader) len32(limit int) int {
	n := cr.u32()
	if int64(n) > int64(limit) {
		cr.fail("length %d exceeds %d", n, limit)
		return 0
	}
	return int(n)
}
