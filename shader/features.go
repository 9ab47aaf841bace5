// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/xr3d/cache"
)

// Feature is one global shader feature toggle.
//
// The high bits hold the flag, the low byte holds the feature index:
// Feature i is (1 << (8+i)) + i. The order is part of every persisted
// cache key; reordering breaks precompiled collections.
type Feature uint32

// IndexMask extracts the feature index from a Feature.
const IndexMask Feature = 0xff

// Shader features.
const (
	LightProbe            Feature = (1 << 8) + 0
	IblOrientation        Feature = (1 << 9) + 1
	Ssm                   Feature = (1 << 10) + 2
	Ssao                  Feature = (1 << 11) + 3
	DepthPass             Feature = (1 << 12) + 4
	OrthoShadowPass       Feature = (1 << 13) + 5
	CubeShadowPass        Feature = (1 << 14) + 6
	LinearTonemapping     Feature = (1 << 15) + 7
	AcesTonemapping       Feature = (1 << 16) + 8
	HejlDawsonTonemapping Feature = (1 << 17) + 9
	FilmicTonemapping     Feature = (1 << 18) + 10
	RGBELightProbe        Feature = (1 << 19) + 11
	OpaqueDepthPrePass    Feature = (1 << 20) + 12
	ReflectionProbe       Feature = (1 << 21) + 13
	ReduceMaxNumLights    Feature = (1 << 22) + 14
)

// FeatureCount is the number of defined features.
const FeatureCount = 15

var featureNames = [FeatureCount]string{
	"LightProbe", "IblOrientation", "Ssm", "Ssao", "DepthPass",
	"OrthoShadowPass", "CubeShadowPass", "LinearTonemapping",
	"AcesTonemapping", "HejlDawsonTonemapping", "FilmicTonemapping",
	"RGBELightProbe", "OpaqueDepthPrePass", "ReflectionProbe",
	"ReduceMaxNumLights",
}

var featureDefines = [FeatureCount]string{
	"QSSG_ENABLE_LIGHT_PROBE",
	"QSSG_ENABLE_IBL_ORIENTATION",
	"QSSG_ENABLE_SSM",
	"QSSG_ENABLE_SSAO",
	"QSSG_ENABLE_DEPTH_PASS",
	"QSSG_ENABLE_ORTHO_SHADOW_PASS",
	"QSSG_ENABLE_CUBE_SHADOW_PASS",
	"QSSG_ENABLE_LINEAR_TONEMAPPING",
	"QSSG_ENABLE_ACES_TONEMAPPING",
	"QSSG_ENABLE_HEJLDAWSON_TONEMAPPING",
	"QSSG_ENABLE_FILMIC_TONEMAPPING",
	"QSSG_ENABLE_RGBE_LIGHT_PROBE",
	"QSSG_ENABLE_OPAQUE_DEPTH_PRE_PASS",
	"QSSG_ENABLE_REFLECTION_PROBE",
	"QSSG_REDUCE_MAX_NUM_LIGHTS",
}

// FeatureFromIndex returns the feature with index i.
// It panics if i is out of range.
func FeatureFromIndex(i int) Feature {
	if i < 0 || i >= FeatureCount {
		panic("shader: feature index out of range")
	}
	return Feature(1<<(8+i)) + Feature(i)
}

// Index returns the position of f in the feature list.
func (f Feature) Index() int { return int(f & IndexMask) }

// flag returns the bit f occupies in a Features word.
func (f Feature) flag() uint32 { return uint32(f &^ IndexMask) }

// String returns the feature name.
func (f Feature) String() string {
	if i := f.Index(); i < FeatureCount && FeatureFromIndex(i) == f {
		return featureNames[i]
	}
	return "Feature(?)"
}

// DefineString returns the preprocessor symbol controlling f in shader
// snippets, e.g. QSSG_ENABLE_LIGHT_PROBE.
func (f Feature) DefineString() string {
	if i := f.Index(); i < FeatureCount {
		return featureDefines[i]
	}
	return ""
}

// Features is the set of enabled global shader features.
// The zero value has every feature off.
type Features uint32

// Set switches f on or off.
func (fs *Features) Set(f Feature, on bool) {
	if on {
		*fs |= Features(f.flag())
	} else {
		*fs &^= Features(f.flag())
	}
}

// IsSet reports whether f is on.
func (fs Features) IsSet(f Feature) bool { return uint32(fs)&f.flag() != 0 }

// IsNull reports whether no feature is on.
func (fs Features) IsNull() bool { return fs == 0 }

// Hash returns a well-mixed 64-bit hash of the set.
func (fs Features) Hash() uint64 { return cache.Mix64(uint64(fs)) }

// String lists the enabled features separated by '|', or "none".
func (fs Features) String() string {
	if fs.IsNull() {
		return "none"
	}
	var b strings.Builder
	for i := range FeatureCount {
		f := FeatureFromIndex(i)
		if !fs.IsSet(f) {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('|')
		}
		b.WriteString(featureNames[i])
	}
	return b.String()
}

// ParseFeatures parses the '|' separated names printed by Features.String.
// "none" and the empty string are the empty set.
func ParseFeatures(s string) (Features, error) {
	var fs Features
	if s == "" || s == "none" {
		return fs, nil
	}
	for _, name := range strings.Split(s, "|") {
		i := slices.Index(featureNames[:], strings.TrimSpace(name))
		if i < 0 {
			return 0, fmt.Errorf("shader: unknown feature %q", name)
		}
		fs.Set(FeatureFromIndex(i), true)
	}
	return fs, nil
}
