// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/hex"
	"testing"

	"github.com/gogpu/xr3d/shaderkey"
)

func TestCacheKeyEqualAndHash(t *testing.T) {
	var f Features
	f.Set(Ssao, true)

	a := NewCacheKey("hasLighting=true", f)
	b := NewCacheKey("hasLighting=true", f)
	if !a.Equal(b) || a != b {
		t.Fatal("identical keys not equal")
	}
	if a.Hash() != b.Hash() {
		t.Error("identical keys hash differently")
	}

	c := NewCacheKey("hasLighting=true", 0)
	if a.Equal(c) {
		t.Error("keys with different features compare equal")
	}
	d := NewCacheKey("hasIbl=true", f)
	if a.Equal(d) {
		t.Error("keys with different strings compare equal")
	}
}

func TestCacheKeyHashString(t *testing.T) {
	k := NewCacheKey("hasLighting=true;lightCount=1", 0)
	s := k.HashString()
	if len(s) != 40 {
		t.Fatalf("HashString length = %d, want 40", len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Errorf("HashString %q is not hex: %v", s, err)
	}
	if s != k.HashString() {
		t.Error("HashString not deterministic")
	}
	if s == NewCacheKey("hasLighting=true;lightCount=2", 0).HashString() {
		t.Error("different keys produced the same HashString")
	}
}

func TestMaterialCacheKey(t *testing.T) {
	props := shaderkey.NewDefaultMaterialKeyProperties()
	var f Features
	f.Set(LinearTonemapping, true)
	key := shaderkey.NewDefaultMaterialKey(f.Hash())
	props.HasLighting.SetValue(&key.Data, true)

	got := MaterialCacheKey(props, &key)
	if got != key.String(props) {
		t.Errorf("MaterialCacheKey = %q, want key string", got)
	}
}
