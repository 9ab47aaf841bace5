// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderkey

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/xr3d/cache"
)

// Errors returned by key decoding.
var (
	// ErrInvalidLength is returned by FromBytes for input of the wrong size.
	ErrInvalidLength = errors.New("shaderkey: invalid key byte length")

	// ErrMalformedKey is returned by FromString for tokens it cannot decode.
	ErrMalformedKey = errors.New("shaderkey: malformed key string")
)

// ByteSize is the length of the binary key form.
const ByteSize = DataBufferSize * 4

// DefaultMaterialKey identifies one default-material shader variant.
//
// The zero value is a valid empty key. Keys are plain values: copy them
// freely, compare them with Equal.
type DefaultMaterialKey struct {
	Data           KeySet
	FeatureSetHash uint64
}

// NewDefaultMaterialKey returns an empty key bound to a feature set hash.
func NewDefaultMaterialKey(featureSetHash uint64) DefaultMaterialKey {
	return DefaultMaterialKey{FeatureSetHash: featureSetHash}
}

// Hash XORs a per-word hash of every word with the feature set hash.
// Equal keys hash equal; a single flipped bit always changes the result.
func (k *DefaultMaterialKey) Hash() uint64 {
	var h uint64
	for i, w := range k.Data {
		h ^= cache.Mix64(uint64(i)<<32 | uint64(w))
	}
	return h ^ k.FeatureSetHash
}

// Equal compares every word and the feature set hash.
func (k *DefaultMaterialKey) Equal(other *DefaultMaterialKey) bool {
	return k.Data == other.Data && k.FeatureSetHash == other.FeatureSetHash
}

// String serializes the key using the given layout.
//
// Each property contributes "name=value"; properties are joined with ';'
// and false booleans are left out entirely.
func (k *DefaultMaterialKey) String(props *DefaultMaterialKeyProperties) string {
	buf := make([]byte, 0, props.StringSizeHint*2)
	var tmp []byte
	props.VisitProperties(VisitorFunc(func(p Property) {
		tmp = p.appendString(tmp[:0], &k.Data)
		if len(tmp) == 0 {
			return
		}
		if len(buf) > 0 {
			buf = append(buf, ';')
		}
		buf = append(buf, tmp...)
	}))
	return string(buf)
}

// FromString decodes a key string produced by String into k.Data.
//
// k.Data is cleared first, so properties missing from s come back as
// their zero value; this is how false booleans round-trip. Unknown names
// are ignored so that keys written by a newer layout still load.
// FeatureSetHash is left untouched.
func (k *DefaultMaterialKey) FromString(props *DefaultMaterialKeyProperties, s string) error {
	values := make(map[string]string, len(props.Properties()))
	for _, tok := range splitTopLevel(s) {
		if tok == "" {
			continue
		}
		name, value, ok := strings.Cut(tok, "=")
		if !ok {
			return fmt.Errorf("%w: token %q", ErrMalformedKey, tok)
		}
		values[name] = value
	}

	k.Data = KeySet{}
	var firstErr error
	props.VisitProperties(VisitorFunc(func(p Property) {
		value, ok := values[p.Name()]
		if !ok {
			return
		}
		if err := p.parseValue(value, &k.Data); err != nil && firstErr == nil {
			firstErr = err
		}
	}))
	return firstErr
}

// splitTopLevel splits s on ';' outside of braces.
func splitTopLevel(s string) []string {
	var out []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

// ToBytes returns the little-endian word data. The feature set hash is
// not included.
func (k *DefaultMaterialKey) ToBytes() []byte {
	out := make([]byte, 0, ByteSize)
	for _, w := range k.Data {
		out = binary.LittleEndian.AppendUint32(out, w)
	}
	return out
}

// FromBytes loads word data written by ToBytes.
func (k *DefaultMaterialKey) FromBytes(b []byte) error {
	if len(b) != ByteSize {
		return fmt.Errorf("%w: got %d, want %d", ErrInvalidLength, len(b), ByteSize)
	}
	for i := range k.Data {
		k.Data[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return nil
}
