// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderkey

import "fmt"

// LightCount is the maximum number of lights encoded in a key.
const LightCount = 15

// SingleChannelImageCount is the number of images sampled through a
// single selectable channel.
const SingleChannelImageCount = 5

// ImageMapName indexes the material texture slots.
type ImageMapName int

// Image map slots. Single-channel images come last.
const (
	DiffuseMap ImageMapName = iota
	EmissiveMap
	SpecularMap
	BaseColorMap
	BumpMap
	SpecularAmountMap
	NormalMap
	LightmapIndirect
	LightmapRadiosity
	LightmapShadow
	OpacityMap
	RoughnessMap
	MetalnessMap
	OcclusionMap
	TranslucencyMap

	ImageMapCount

	SingleChannelImagesFirst = OpacityMap
)

var imageMapNames = [ImageMapCount]string{
	"diffuseMap", "emissiveMap", "specularMap", "baseColorMap", "bumpMap",
	"specularAmountMap", "normalMap", "lightmapIndirect", "lightmapRadiosity",
	"lightmapShadow", "opacityMap", "roughnessMap", "metalnessMap",
	"occlusionMap", "translucencyMap",
}

// String returns the property name of the slot.
func (n ImageMapName) String() string {
	if n >= 0 && n < ImageMapCount {
		return imageMapNames[n]
	}
	return fmt.Sprintf("ImageMapName(%d)", int(n))
}

// ImageChannelName indexes the single-channel image selectors.
type ImageChannelName int

// Single-channel selectors, in the order of their image maps.
const (
	OpacityChannel ImageChannelName = iota
	RoughnessChannel
	MetalnessChannel
	OcclusionChannel
	TranslucencyChannel
)

// Visitor receives each property of a key layout in declaration order.
type Visitor interface {
	Visit(p Property)
}

// VisitorFunc adapts a function to Visitor.
type VisitorFunc func(p Property)

// Visit calls f(p).
func (f VisitorFunc) Visit(p Property) { f(p) }

// DefaultMaterialKeyProperties is the property layout of the default
// material shader key.
//
// The layout is built once by NewDefaultMaterialKeyProperties and is then
// read-only; share a single instance between all keys.
type DefaultMaterialKeyProperties struct {
	HasLighting         Boolean
	HasIbl              Boolean
	LightCount          Unsigned
	LightFlags          [LightCount]Boolean
	LightSpotFlags      [LightCount]Boolean
	LightAreaFlags      [LightCount]Boolean
	LightShadowFlags    [LightCount]Boolean
	SpecularEnabled     Boolean
	FresnelEnabled      Boolean
	VertexColorsEnabled Boolean
	SpecularModel       SpecularModelProperty
	ImageMaps           [ImageMapCount]ImageMap
	TextureSwizzle      [ImageMapCount]TextureSwizzle
	TextureChannels     [SingleChannelImageCount]TextureChannel
	BoneCount           Unsigned

	IsDoubleSided               Boolean
	OverridesPosition           Boolean
	UsesProjectionMatrix        Boolean
	UsesInverseProjectionMatrix Boolean
	UsesPointsTopology          Boolean
	UsesVarColor                Boolean
	AlphaMode                   AlphaModeProperty
	VertexAttributes            VertexAttribute
	UsesFloatJointIndices       Boolean

	// StringSizeHint is the sum of all property name lengths, used to
	// size key string buffers up front.
	StringSizeHint int

	// BitsUsed is the offset just past the last property.
	BitsUsed uint32

	props []Property
}

// NewDefaultMaterialKeyProperties builds the layout and assigns offsets.
//
// It panics if the declared properties do not fit in KeyBits, which can
// only happen when the layout itself is edited.
func NewDefaultMaterialKeyProperties() *DefaultMaterialKeyProperties {
	p := &DefaultMaterialKeyProperties{
		HasLighting:                 NewBoolean("hasLighting"),
		HasIbl:                      NewBoolean("hasIbl"),
		LightCount:                  NewUnsigned("lightCount", 4),
		SpecularEnabled:             NewBoolean("specularEnabled"),
		FresnelEnabled:              NewBoolean("fresnelEnabled"),
		VertexColorsEnabled:         NewBoolean("vertexColorsEnabled"),
		SpecularModel:               NewSpecularModel("specularModel"),
		BoneCount:                   NewUnsigned("boneCount", 16),
		IsDoubleSided:               NewBoolean("isDoubleSided"),
		OverridesPosition:           NewBoolean("overridesPosition"),
		UsesProjectionMatrix:        NewBoolean("usesProjectionMatrix"),
		UsesInverseProjectionMatrix: NewBoolean("usesInverseProjectionMatrix"),
		UsesPointsTopology:          NewBoolean("usesPointsTopology"),
		UsesVarColor:                NewBoolean("usesVarColor"),
		AlphaMode:                   NewAlphaMode("alphaMode"),
		VertexAttributes:            NewVertexAttribute("vertexAttributes"),
		UsesFloatJointIndices:       NewBoolean("usesFloatJointIndices"),
	}
	for i := range LightCount {
		p.LightFlags[i] = NewBoolean(fmt.Sprintf("light%dHasPosition", i))
		p.LightSpotFlags[i] = NewBoolean(fmt.Sprintf("light%dHasSpot", i))
		p.LightAreaFlags[i] = NewBoolean(fmt.Sprintf("light%dHasArea", i))
		p.LightShadowFlags[i] = NewBoolean(fmt.Sprintf("light%dHasShadow", i))
	}
	for i := range ImageMapCount {
		p.ImageMaps[i] = NewImageMap(imageMapNames[i])
		p.TextureSwizzle[i] = NewTextureSwizzle(imageMapNames[i] + "_swizzle")
	}
	for i := range SingleChannelImageCount {
		p.TextureChannels[i] = NewTextureChannel(imageMapNames[int(SingleChannelImagesFirst)+i] + "_channel")
	}

	p.collect()
	p.init()
	return p
}

// collect records the properties in declaration order. Offsets and key
// strings both depend on this order.
func (p *DefaultMaterialKeyProperties) collect() {
	add := func(prop Property) { p.props = append(p.props, prop) }

	add(&p.HasLighting)
	add(&p.HasIbl)
	add(&p.LightCount)
	for i := range p.LightFlags {
		add(&p.LightFlags[i])
	}
	for i := range p.LightSpotFlags {
		add(&p.LightSpotFlags[i])
	}
	for i := range p.LightAreaFlags {
		add(&p.LightAreaFlags[i])
	}
	for i := range p.LightShadowFlags {
		add(&p.LightShadowFlags[i])
	}
	add(&p.SpecularEnabled)
	add(&p.FresnelEnabled)
	add(&p.VertexColorsEnabled)
	add(&p.SpecularModel)
	for i := range p.ImageMaps {
		add(&p.ImageMaps[i])
		add(&p.TextureSwizzle[i])
	}
	for i := range p.TextureChannels {
		add(&p.TextureChannels[i])
	}
	add(&p.BoneCount)
	add(&p.IsDoubleSided)
	add(&p.OverridesPosition)
	add(&p.UsesProjectionMatrix)
	add(&p.UsesInverseProjectionMatrix)
	add(&p.UsesPointsTopology)
	add(&p.UsesVarColor)
	add(&p.AlphaMode)
	add(&p.VertexAttributes)
	add(&p.UsesFloatJointIndices)
}

// offsetVisitor assigns offsets in visiting order. A property that would
// cross a 32-bit word boundary starts at the next word instead; the rest
// of the current word is left unused.
type offsetVisitor struct {
	offset uint32
}

func (v *offsetVisitor) Visit(p Property) {
	bit := v.offset % 32
	if bit+p.BitWidth() > 32 {
		v.offset += 32 - bit
	}
	p.setOffset(v.offset)
	v.offset += p.BitWidth()
}

type stringSizeVisitor struct {
	size int
}

func (v *stringSizeVisitor) Visit(p Property) {
	v.size += len(p.Name())
}

func (p *DefaultMaterialKeyProperties) init() {
	var offsets offsetVisitor
	var sizes stringSizeVisitor
	p.VisitProperties(VisitorFunc(func(prop Property) {
		offsets.Visit(prop)
		sizes.Visit(prop)
	}))
	if offsets.offset > KeyBits {
		panic(fmt.Sprintf("shaderkey: layout needs %d bits, key holds %d", offsets.offset, KeyBits))
	}
	p.BitsUsed = offsets.offset
	p.StringSizeHint = sizes.size
}

// VisitProperties calls v.Visit for every property in declaration order.
func (p *DefaultMaterialKeyProperties) VisitProperties(v Visitor) {
	for _, prop := range p.props {
		v.Visit(prop)
	}
}

// Properties returns the properties in declaration order.
// The returned slice must not be modified.
func (p *DefaultMaterialKeyProperties) Properties() []Property {
	return p.props
}

// Lookup returns the property with the given key-string name.
func (p *DefaultMaterialKeyProperties) Lookup(name string) (Property, bool) {
	for _, prop := range p.props {
		if prop.Name() == name {
			return prop, true
		}
	}
	return nil, false
}
