// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import "testing"

// The numeric values are part of persisted cache keys.
func TestFeatureValuesPinned(t *testing.T) {
	tests := []struct {
		f    Feature
		want uint32
	}{
		{LightProbe, 0x100},
		{IblOrientation, 0x201},
		{Ssm, 0x402},
		{Ssao, 0x803},
		{DepthPass, 0x1004},
		{OrthoShadowPass, 0x2005},
		{CubeShadowPass, 0x4006},
		{LinearTonemapping, 0x8007},
		{AcesTonemapping, 0x10008},
		{HejlDawsonTonemapping, 0x20009},
		{FilmicTonemapping, 0x4000a},
		{RGBELightProbe, 0x8000b},
		{OpaqueDepthPrePass, 0x10000c},
		{ReflectionProbe, 0x20000d},
		{ReduceMaxNumLights, 0x40000e},
	}
	for i, tt := range tests {
		if uint32(tt.f) != tt.want {
			t.Errorf("%s = %#x, want %#x", tt.f, uint32(tt.f), tt.want)
		}
		if got := FeatureFromIndex(i); got != tt.f {
			t.Errorf("FeatureFromIndex(%d) = %#x, want %#x", i, uint32(got), uint32(tt.f))
		}
		if tt.f.Index() != i {
			t.Errorf("%s.Index() = %d, want %d", tt.f, tt.f.Index(), i)
		}
	}
}

func TestFeatureFromIndexPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FeatureFromIndex(FeatureCount) did not panic")
		}
	}()
	_ = FeatureFromIndex(FeatureCount)
}

func TestFeatureDefineString(t *testing.T) {
	tests := map[Feature]string{
		LightProbe:            "QSSG_ENABLE_LIGHT_PROBE",
		Ssao:                  "QSSG_ENABLE_SSAO",
		HejlDawsonTonemapping: "QSSG_ENABLE_HEJLDAWSON_TONEMAPPING",
		RGBELightProbe:        "QSSG_ENABLE_RGBE_LIGHT_PROBE",
		ReduceMaxNumLights:    "QSSG_REDUCE_MAX_NUM_LIGHTS",
	}
	for f, want := range tests {
		if got := f.DefineString(); got != want {
			t.Errorf("%s.DefineString() = %q, want %q", f, got, want)
		}
	}
}

func TestFeaturesSet(t *testing.T) {
	var fs Features
	if !fs.IsNull() {
		t.Fatal("zero Features not null")
	}

	fs.Set(Ssm, true)
	fs.Set(AcesTonemapping, true)
	if !fs.IsSet(Ssm) || !fs.IsSet(AcesTonemapping) {
		t.Error("set features not reported")
	}
	// Ssm and LightProbe share no flag bit even though Ssm's index is 2.
	if fs.IsSet(LightProbe) || fs.IsSet(IblOrientation) {
		t.Error("unset features reported as set")
	}
	if got := fs.String(); got != "Ssm|AcesTonemapping" {
		t.Errorf("String() = %q", got)
	}

	fs.Set(Ssm, false)
	if fs.IsSet(Ssm) {
		t.Error("Ssm still set after clear")
	}
	fs.Set(AcesTonemapping, false)
	if !fs.IsNull() {
		t.Errorf("Features = %#x after clearing all, want 0", uint32(fs))
	}
	if fs.String() != "none" {
		t.Errorf("String() = %q, want none", fs.String())
	}
}

func TestFeaturesHash(t *testing.T) {
	var a, b Features
	a.Set(Ssao, true)
	b.Set(Ssao, true)
	if a.Hash() != b.Hash() {
		t.Error("equal feature sets hash differently")
	}
	b.Set(DepthPass, true)
	if a.Hash() == b.Hash() {
		t.Error("different feature sets hash equal")
	}
}

func TestParseFeatures(t *testing.T) {
	var want Features
	want.Set(Ssao, true)
	want.Set(AcesTonemapping, true)

	for _, s := range []string{want.String(), "AcesTonemapping|Ssao", " Ssao | AcesTonemapping "} {
		got, err := ParseFeatures(s)
		if err != nil {
			t.Fatalf("ParseFeatures(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseFeatures(%q) = %v, want %v", s, got, want)
		}
	}
	for _, s := range []string{"", "none"} {
		if got, err := ParseFeatures(s); err != nil || !got.IsNull() {
			t.Errorf("ParseFeatures(%q) = %v, %v, want empty set", s, got, err)
		}
	}
	if _, err := ParseFeatures("Ssao|Bloom"); err == nil {
		t.Error("ParseFeatures with unknown name should fail")
	}
}
