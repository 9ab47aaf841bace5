// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"crypto/sha1" //nolint:gosec // content-address, not security
	"encoding/hex"
	"strconv"

	"github.com/gogpu/xr3d/cache"
	"github.com/gogpu/xr3d/shaderkey"
)

// CacheKey identifies one shader variant: a material key string and the
// global feature set it was built for.
//
// CacheKey is comparable and is used directly as a map key; Hash only
// selects the cache shard.
type CacheKey struct {
	Key      string
	Features Features
}

// NewCacheKey returns the cache key for key and features.
func NewCacheKey(key string, features Features) CacheKey {
	return CacheKey{Key: key, Features: features}
}

// Hash combines the key string hash with the feature hash.
func (k CacheKey) Hash() uint64 {
	return cache.StringHasher(k.Key) ^ k.Features.Hash()
}

// HashString returns the lowercase hex SHA-1 of the decimal Hash. It is
// stable across processes and safe to use as a file name.
func (k CacheKey) HashString() string {
	sum := sha1.Sum(strconv.AppendUint(nil, k.Hash(), 10)) //nolint:gosec // content-address
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both the key strings and the features match.
func (k CacheKey) Equal(other CacheKey) bool {
	return k.Key == other.Key && k.Features == other.Features
}

// MaterialCacheKey returns the cache key string of a default material key.
func MaterialCacheKey(props *shaderkey.DefaultMaterialKeyProperties, key *shaderkey.DefaultMaterialKey) string {
	return key.String(props)
}
