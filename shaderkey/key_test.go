// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderkey

import (
	"errors"
	"strings"
	"testing"
)

func TestSetValueTruncates(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey

	// specularModel is 2 bits wide: 5 (0b101) stores 1.
	props.SpecularModel.setBits(&k.Data, 2, 5)
	if got := props.SpecularModel.SpecularModel(&k.Data); got != 1 {
		t.Errorf("2-bit value 5 stored as %d, want 1", got)
	}

	// lightCount is 4 bits wide: 17 stores 1.
	props.LightCount.SetValue(&k.Data, 17)
	if got := props.LightCount.Value(&k.Data); got != 1 {
		t.Errorf("4-bit value 17 stored as %d, want 1", got)
	}

	// boneCount is 16 bits wide.
	props.BoneCount.SetValue(&k.Data, 0x1ffff)
	if got := props.BoneCount.Value(&k.Data); got != 0xffff {
		t.Errorf("16-bit value 0x1ffff stored as %#x, want 0xffff", got)
	}
}

func TestSetValueDoesNotDisturbNeighbours(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey

	props.HasLighting.SetValue(&k.Data, true)
	props.HasIbl.SetValue(&k.Data, true)
	props.LightCount.SetValue(&k.Data, 0xff)
	props.LightFlags[0].SetValue(&k.Data, true)

	if got := props.LightCount.Value(&k.Data); got != 0xf {
		t.Errorf("LightCount = %d, want 15", got)
	}
	if !props.HasLighting.Value(&k.Data) || !props.HasIbl.Value(&k.Data) {
		t.Error("neighbouring booleans were cleared")
	}
	if !props.LightFlags[0].Value(&k.Data) {
		t.Error("light0HasPosition was cleared")
	}

	props.LightCount.SetValue(&k.Data, 3)
	if got := props.LightCount.Value(&k.Data); got != 3 {
		t.Errorf("LightCount = %d after overwrite, want 3", got)
	}
}

func TestFlagSetters(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey

	m := &props.ImageMaps[NormalMap]
	m.SetEnabled(&k.Data, true)
	m.SetInvertUV(&k.Data, true)
	m.SetIdentity(&k.Data, true)
	m.SetInvertUV(&k.Data, false)
	if !m.IsEnabled(&k.Data) || m.IsInvertUV(&k.Data) || !m.IsIdentity(&k.Data) {
		t.Errorf("normalMap flags wrong: enabled=%v invertUV=%v identity=%v",
			m.IsEnabled(&k.Data), m.IsInvertUV(&k.Data), m.IsIdentity(&k.Data))
	}

	sw := &props.TextureSwizzle[NormalMap]
	sw.SetSwizzleMode(&k.Data, L8A8toRG8, true)
	if !sw.IsSet(&k.Data, L8A8toRG8) || sw.IsSet(&k.Data, NoSwizzle) {
		t.Error("swizzle flags wrong")
	}

	va := &props.VertexAttributes
	va.SetBit(&k.Data, AttrJointAndWeight, true)
	if !va.Bit(&k.Data, AttrJointAndWeight) {
		t.Error("joint&weight not set")
	}
}

func TestKeyEqualAndHash(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	a := NewDefaultMaterialKey(42)
	b := NewDefaultMaterialKey(42)
	props.HasLighting.SetValue(&a.Data, true)
	props.HasLighting.SetValue(&b.Data, true)

	if !a.Equal(&b) {
		t.Fatal("identical keys not equal")
	}
	if a.Hash() != b.Hash() {
		t.Errorf("identical keys hash differently: %x vs %x", a.Hash(), b.Hash())
	}

	c := b
	c.FeatureSetHash = 43
	if a.Equal(&c) {
		t.Error("keys with different feature hash compare equal")
	}
	if a.Hash() == c.Hash() {
		t.Error("keys with different feature hash hash equal")
	}
}

func TestSingleBitFlipsChangeHash(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	base := NewDefaultMaterialKey(7)
	baseHash := base.Hash()

	for _, p := range props.Properties() {
		for b := uint32(0); b < p.BitWidth(); b++ {
			k := base
			bit := p.Offset() + b
			k.Data[bit/32] ^= 1 << (bit % 32)
			if k.Equal(&base) {
				t.Errorf("%s bit %d: flipped key equals base", p.Name(), b)
			}
			if k.Hash() == baseHash {
				t.Errorf("%s bit %d: flipped key hashes equal", p.Name(), b)
			}
		}
	}
}

func TestBytesRoundTrip(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	props.BoneCount.SetValue(&k.Data, 1234)
	props.UsesFloatJointIndices.SetValue(&k.Data, true)

	data := k.ToBytes()
	if len(data) != ByteSize {
		t.Fatalf("len(ToBytes()) = %d, want %d", len(data), ByteSize)
	}

	var out DefaultMaterialKey
	if err := out.FromBytes(data); err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if out.Data != k.Data {
		t.Errorf("FromBytes data = %v, want %v", out.Data, k.Data)
	}

	if err := out.FromBytes(data[:10]); !errors.Is(err, ErrInvalidLength) {
		t.Errorf("FromBytes(short) error = %v, want ErrInvalidLength", err)
	}
}

func TestStringOmitsFalseBooleans(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	props.HasIbl.SetValue(&k.Data, true)

	s := k.String(props)
	if strings.Contains(s, "hasLighting") {
		t.Errorf("false boolean serialized: %s", s)
	}
	if !strings.HasPrefix(s, "hasIbl=true;lightCount=0;") {
		t.Errorf("unexpected prefix: %.60s", s)
	}
	if strings.Contains(s, ";;light") || strings.HasPrefix(s, ";") {
		t.Errorf("empty separator left behind: %.80s", s)
	}
}

func TestStringNestedFormat(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	props.ImageMaps[DiffuseMap].SetEnabled(&k.Data, true)
	props.ImageMaps[DiffuseMap].SetIdentity(&k.Data, true)
	props.TextureChannels[RoughnessChannel].SetChannel(&k.Data, ChannelG)
	props.SpecularModel.SetSpecularModel(&k.Data, SpecularKGGX)
	props.AlphaMode.SetAlphaMode(&k.Data, AlphaBlend)

	s := k.String(props)
	for _, want := range []string{
		"diffuseMap={enabled=true;;;;;identity=true}",
		"diffuseMap_swizzle={;;;;}",
		"roughnessMap_channel=G",
		"opacityMap_channel=R",
		"specularModel=KGGX",
		"alphaMode=Blend",
		"vertexAttributes={;;;;;;;}",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("key string missing %q", want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	props.HasLighting.SetValue(&k.Data, true)
	props.LightCount.SetValue(&k.Data, 11)
	props.LightFlags[1].SetValue(&k.Data, true)
	props.LightFlags[10].SetValue(&k.Data, true)
	props.LightShadowFlags[14].SetValue(&k.Data, true)
	props.SpecularModel.SetSpecularModel(&k.Data, SpecularKGGX)
	props.ImageMaps[BaseColorMap].SetEnabled(&k.Data, true)
	props.ImageMaps[BaseColorMap].SetPremultiplied(&k.Data, true)
	props.TextureSwizzle[OcclusionMap].SetSwizzleMode(&k.Data, L16toR16, true)
	props.TextureChannels[TranslucencyChannel].SetChannel(&k.Data, ChannelA)
	props.BoneCount.SetValue(&k.Data, 65535)
	props.AlphaMode.SetAlphaMode(&k.Data, AlphaMask)
	props.VertexAttributes.SetBit(&k.Data, AttrPosition, true)
	props.VertexAttributes.SetBit(&k.Data, AttrJointAndWeight, true)
	props.UsesFloatJointIndices.SetValue(&k.Data, true)

	s := k.String(props)

	var out DefaultMaterialKey
	// Pre-fill to check that stale bits are cleared.
	for i := range out.Data {
		out.Data[i] = 0xffffffff
	}
	if err := out.FromString(props, s); err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if out.Data != k.Data {
		t.Errorf("round trip mismatch\n got %v\nwant %v\nstring %s", out.Data, k.Data, s)
	}
	if got := out.String(props); got != s {
		t.Errorf("re-serialized string differs:\n got %s\nwant %s", got, s)
	}
}

func TestFromStringPrefixNames(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	// light10HasPosition must not switch on light1HasPosition.
	if err := k.FromString(props, "light10HasPosition=true"); err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if props.LightFlags[1].Value(&k.Data) {
		t.Error("light1HasPosition set by light10HasPosition")
	}
	if !props.LightFlags[10].Value(&k.Data) {
		t.Error("light10HasPosition not set")
	}
}

func TestFromStringErrors(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	tests := []struct {
		name string
		in   string
	}{
		{"no equals", "hasLighting"},
		{"bad number", "lightCount=abc"},
		{"bad channel", "opacityMap_channel=Q"},
		{"bad nested", "diffuseMap=enabled"},
		{"bad enum", "alphaMode=Sometimes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k DefaultMaterialKey
			if err := k.FromString(props, tt.in); !errors.Is(err, ErrMalformedKey) {
				t.Errorf("FromString(%q) error = %v, want ErrMalformedKey", tt.in, err)
			}
		})
	}
}

func TestFromStringIgnoresUnknown(t *testing.T) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	if err := k.FromString(props, "futureFlag=true;hasIbl=true"); err != nil {
		t.Fatalf("FromString: %v", err)
	}
	if !props.HasIbl.Value(&k.Data) {
		t.Error("hasIbl not set")
	}
}

func BenchmarkKeyString(b *testing.B) {
	props := NewDefaultMaterialKeyProperties()
	var k DefaultMaterialKey
	props.HasLighting.SetValue(&k.Data, true)
	props.LightCount.SetValue(&k.Data, 4)
	b.ReportAllocs()
	for b.Loop() {
		_ = k.String(props)
	}
}
