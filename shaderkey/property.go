// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shaderkey

import (
	"fmt"
	"strconv"
	"strings"
)

// DataBufferSize is the number of 32-bit words in a key.
const DataBufferSize = 10

// KeyBits is the total capacity of a key in bits.
const KeyBits = DataBufferSize * 32

// KeySet is the raw word storage of a key.
type KeySet [DataBufferSize]uint32

// Property is one named field of a key.
//
// Offsets are assigned by DefaultMaterialKeyProperties during construction
// and never change afterwards.
type Property interface {
	// Name returns the property name used in key strings.
	Name() string

	// BitWidth returns the number of bits the property occupies.
	BitWidth() uint32

	// Offset returns the bit offset of the property inside the key.
	Offset() uint32

	setOffset(offset uint32)

	// appendString appends the "name=value" form, or nothing when the
	// property serializes to its sparse (omitted) form.
	appendString(dst []byte, ks *KeySet) []byte

	// parseValue decodes the text after "name=".
	parseValue(value string, ks *KeySet) error
}

// keyProperty holds the name and offset shared by all property kinds.
type keyProperty struct {
	name   string
	offset uint32
}

func (p *keyProperty) Name() string            { return p.name }
func (p *keyProperty) Offset() uint32          { return p.offset }
func (p *keyProperty) setOffset(offset uint32) { p.offset = offset }

func (p *keyProperty) idx() uint32 { return p.offset / 32 }
func (p *keyProperty) bit() uint32 { return p.offset % 32 }

// setBits masks value to width bits, clears the target bits and ORs the
// shifted value in. Excess bits are dropped silently.
func (p *keyProperty) setBits(ks *KeySet, width, value uint32) {
	limit := widthMask(width)
	value &= limit
	mask := limit << p.bit()
	target := &ks[p.idx()]
	*target &^= mask
	*target |= value << p.bit()
}

func (p *keyProperty) bits(ks *KeySet, width uint32) uint32 {
	return (ks[p.idx()] >> p.bit()) & widthMask(width)
}

func widthMask(width uint32) uint32 {
	return uint32(uint64(1)<<width - 1)
}

func (p *keyProperty) appendName(dst []byte) []byte {
	dst = append(dst, p.name...)
	return append(dst, '=')
}

// Boolean is a single-bit property.
type Boolean struct {
	keyProperty
}

// NewBoolean returns a boolean property with the given name.
func NewBoolean(name string) Boolean {
	return Boolean{keyProperty{name: name}}
}

// BitWidth returns 1.
func (p *Boolean) BitWidth() uint32 { return 1 }

// SetValue sets or clears the bit.
func (p *Boolean) SetValue(ks *KeySet, on bool) {
	var v uint32
	if on {
		v = 1
	}
	p.setBits(ks, 1, v)
}

// Value reports whether the bit is set.
func (p *Boolean) Value(ks *KeySet) bool {
	return p.bits(ks, 1) != 0
}

func (p *Boolean) appendString(dst []byte, ks *KeySet) []byte {
	if !p.Value(ks) {
		return dst
	}
	return append(p.appendName(dst), "true"...)
}

func (p *Boolean) parseValue(value string, ks *KeySet) error {
	p.SetValue(ks, value == "true")
	return nil
}

// Unsigned is an unsigned integer property of a fixed bit width.
type Unsigned struct {
	keyProperty
	width uint32
}

// NewUnsigned returns an unsigned property. Width must be in [1, 31].
func NewUnsigned(name string, width uint32) Unsigned {
	if width == 0 || width > 31 {
		panic(fmt.Sprintf("shaderkey: invalid bit width %d for %q", width, name))
	}
	return Unsigned{keyProperty: keyProperty{name: name}, width: width}
}

// BitWidth returns the declared width.
func (p *Unsigned) BitWidth() uint32 { return p.width }

// SetValue stores value truncated to the property width.
func (p *Unsigned) SetValue(ks *KeySet, value uint32) { p.setBits(ks, p.width, value) }

// Value returns the stored value.
func (p *Unsigned) Value(ks *KeySet) uint32 { return p.bits(ks, p.width) }

func (p *Unsigned) appendString(dst []byte, ks *KeySet) []byte {
	return strconv.AppendUint(p.appendName(dst), uint64(p.Value(ks)), 10)
}

func (p *Unsigned) parseValue(value string, ks *KeySet) error {
	v, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %s=%s", ErrMalformedKey, p.name, value)
	}
	p.SetValue(ks, uint32(v))
	return nil
}

// TextureChannelBits selects which channel of a single-channel image is sampled.
type TextureChannelBits uint32

// Texture channels.
const (
	ChannelR TextureChannelBits = iota
	ChannelG
	ChannelB
	ChannelA
)

var textureChannelNames = [...]string{"R", "G", "B", "A"}

// String returns the channel letter.
func (c TextureChannelBits) String() string {
	if int(c) < len(textureChannelNames) {
		return textureChannelNames[c]
	}
	return strconv.Itoa(int(c))
}

// TextureChannel is a 2-bit channel selector.
type TextureChannel struct {
	keyProperty
}

// NewTextureChannel returns a texture channel property.
func NewTextureChannel(name string) TextureChannel {
	return TextureChannel{keyProperty{name: name}}
}

// BitWidth returns 2.
func (p *TextureChannel) BitWidth() uint32 { return 2 }

// SetChannel stores the channel.
func (p *TextureChannel) SetChannel(ks *KeySet, c TextureChannelBits) { p.setBits(ks, 2, uint32(c)) }

// Channel returns the stored channel.
func (p *TextureChannel) Channel(ks *KeySet) TextureChannelBits {
	return TextureChannelBits(p.bits(ks, 2))
}

func (p *TextureChannel) appendString(dst []byte, ks *KeySet) []byte {
	return append(p.appendName(dst), p.Channel(ks).String()...)
}

func (p *TextureChannel) parseValue(value string, ks *KeySet) error {
	for i, n := range textureChannelNames {
		if value == n {
			p.SetChannel(ks, TextureChannelBits(i))
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%s", ErrMalformedKey, p.name, value)
}

// flagSet is a property whose bits are individually named flags, printed
// as a brace-enclosed list of slots.
type flagSet struct {
	keyProperty
	slots []string
}

func (p *flagSet) BitWidth() uint32 { return uint32(len(p.slots)) }

func (p *flagSet) flag(ks *KeySet, bit uint32) bool {
	return p.bits(ks, p.BitWidth())&bit != 0
}

func (p *flagSet) setFlag(ks *KeySet, bit uint32, on bool) {
	v := p.bits(ks, p.BitWidth())
	if on {
		v |= bit
	} else {
		v &^= bit
	}
	p.setBits(ks, p.BitWidth(), v)
}

func (p *flagSet) appendString(dst []byte, ks *KeySet) []byte {
	dst = p.appendName(dst)
	dst = append(dst, '{')
	v := p.bits(ks, p.BitWidth())
	for i, slot := range p.slots {
		if i > 0 {
			dst = append(dst, ';')
		}
		if v&(1<<uint(i)) != 0 {
			dst = append(dst, slot...)
			dst = append(dst, "=true"...)
		}
	}
	return append(dst, '}')
}

func (p *flagSet) parseValue(value string, ks *KeySet) error {
	if len(value) < 2 || value[0] != '{' || value[len(value)-1] != '}' {
		return fmt.Errorf("%w: %s=%s", ErrMalformedKey, p.name, value)
	}
	var v uint32
	for _, item := range strings.Split(value[1:len(value)-1], ";") {
		if item == "" {
			continue
		}
		name, val, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("%w: %s slot %q", ErrMalformedKey, p.name, item)
		}
		for i, slot := range p.slots {
			if slot == name && val == "true" {
				v |= 1 << uint(i)
			}
		}
	}
	p.setBits(ks, p.BitWidth(), v)
	return nil
}

// ImageMapBits are the flags of an image map property.
type ImageMapBits uint32

// Image map flags.
const (
	ImageEnabled ImageMapBits = 1 << iota
	ImageEnvMap
	ImageLightProbe
	ImageInvertUV
	ImagePremultiplied
	ImageIdentity
)

// ImageMap is a 6-bit property describing one material texture slot.
type ImageMap struct {
	flagSet
}

// NewImageMap returns an image map property.
func NewImageMap(name string) ImageMap {
	return ImageMap{flagSet{
		keyProperty: keyProperty{name: name},
		slots:       []string{"enabled", "envMap", "lightProbe", "invertUV", "premultiplied", "identity"},
	}}
}

// Bit reports whether the flag is set.
func (p *ImageMap) Bit(ks *KeySet, b ImageMapBits) bool { return p.flag(ks, uint32(b)) }

// SetBit sets or clears the flag.
func (p *ImageMap) SetBit(ks *KeySet, b ImageMapBits, on bool) { p.setFlag(ks, uint32(b), on) }

func (p *ImageMap) IsEnabled(ks *KeySet) bool            { return p.Bit(ks, ImageEnabled) }
func (p *ImageMap) SetEnabled(ks *KeySet, on bool)       { p.SetBit(ks, ImageEnabled, on) }
func (p *ImageMap) IsEnvMap(ks *KeySet) bool             { return p.Bit(ks, ImageEnvMap) }
func (p *ImageMap) SetEnvMap(ks *KeySet, on bool)        { p.SetBit(ks, ImageEnvMap, on) }
func (p *ImageMap) IsLightProbe(ks *KeySet) bool         { return p.Bit(ks, ImageLightProbe) }
func (p *ImageMap) SetLightProbe(ks *KeySet, on bool)    { p.SetBit(ks, ImageLightProbe, on) }
func (p *ImageMap) IsInvertUV(ks *KeySet) bool           { return p.Bit(ks, ImageInvertUV) }
func (p *ImageMap) SetInvertUV(ks *KeySet, on bool)      { p.SetBit(ks, ImageInvertUV, on) }
func (p *ImageMap) IsPremultiplied(ks *KeySet) bool      { return p.Bit(ks, ImagePremultiplied) }
func (p *ImageMap) SetPremultiplied(ks *KeySet, on bool) { p.SetBit(ks, ImagePremultiplied, on) }
func (p *ImageMap) IsIdentity(ks *KeySet) bool           { return p.Bit(ks, ImageIdentity) }
func (p *ImageMap) SetIdentity(ks *KeySet, on bool)      { p.SetBit(ks, ImageIdentity, on) }

// SwizzleMode is a texture swizzle applied when sampling legacy formats.
type SwizzleMode uint32

// Texture swizzle flags.
const (
	NoSwizzle SwizzleMode = 1 << iota
	L8toR8
	A8toR8
	L8A8toRG8
	L16toR16
)

// TextureSwizzle is a 5-bit property with one flag per swizzle mode.
type TextureSwizzle struct {
	flagSet
}

// NewTextureSwizzle returns a texture swizzle property.
func NewTextureSwizzle(name string) TextureSwizzle {
	return TextureSwizzle{flagSet{
		keyProperty: keyProperty{name: name},
		slots:       []string{"noswizzle", "l8swizzle", "a8swizzle", "l8a8swizzle", "l16swizzle"},
	}}
}

// IsSet reports whether the swizzle mode flag is set.
func (p *TextureSwizzle) IsSet(ks *KeySet, m SwizzleMode) bool { return p.flag(ks, uint32(m)) }

// SetSwizzleMode sets or clears the flag for m.
func (p *TextureSwizzle) SetSwizzleMode(ks *KeySet, m SwizzleMode, on bool) {
	p.setFlag(ks, uint32(m), on)
}

// VertexAttributeBits are the flags of the vertex attribute property.
type VertexAttributeBits uint32

// Vertex attributes.
const (
	AttrPosition VertexAttributeBits = 1 << iota
	AttrNormal
	AttrTexCoord0
	AttrTexCoord1
	AttrTangent
	AttrBinormal
	AttrColor
	AttrJointAndWeight
)

// VertexAttribute is an 8-bit property with one flag per vertex input.
type VertexAttribute struct {
	flagSet
}

// NewVertexAttribute returns a vertex attribute property.
func NewVertexAttribute(name string) VertexAttribute {
	return VertexAttribute{flagSet{
		keyProperty: keyProperty{name: name},
		slots: []string{
			"position", "normal", "texcoord0", "texcoord1",
			"tangent", "binormal", "color", "joint&weight",
		},
	}}
}

// Bit reports whether the attribute is present.
func (p *VertexAttribute) Bit(ks *KeySet, b VertexAttributeBits) bool { return p.flag(ks, uint32(b)) }

// SetBit sets or clears the attribute.
func (p *VertexAttribute) SetBit(ks *KeySet, b VertexAttributeBits, on bool) {
	p.setFlag(ks, uint32(b), on)
}

// namedEnum is a 2-bit property printed by value name.
type namedEnum struct {
	keyProperty
	names []string
}

func (p *namedEnum) BitWidth() uint32 { return 2 }

func (p *namedEnum) appendString(dst []byte, ks *KeySet) []byte {
	v := p.bits(ks, 2)
	dst = p.appendName(dst)
	if int(v) < len(p.names) {
		return append(dst, p.names[v]...)
	}
	return strconv.AppendUint(dst, uint64(v), 10)
}

func (p *namedEnum) parseValue(value string, ks *KeySet) error {
	for i, n := range p.names {
		if n == value {
			p.setBits(ks, 2, uint32(i))
			return nil
		}
	}
	if v, err := strconv.ParseUint(value, 10, 32); err == nil {
		p.setBits(ks, 2, uint32(v))
		return nil
	}
	return fmt.Errorf("%w: %s=%s", ErrMalformedKey, p.name, value)
}

// SpecularModel selects the specular BRDF.
type SpecularModel uint32

// Specular models.
const (
	SpecularDefault SpecularModel = iota
	SpecularKGGX
)

// SpecularModelProperty is the 2-bit specular model selector.
type SpecularModelProperty struct {
	namedEnum
}

// NewSpecularModel returns a specular model property.
func NewSpecularModel(name string) SpecularModelProperty {
	return SpecularModelProperty{namedEnum{keyProperty: keyProperty{name: name}, names: []string{"Default", "KGGX"}}}
}

// SetSpecularModel stores m.
func (p *SpecularModelProperty) SetSpecularModel(ks *KeySet, m SpecularModel) {
	p.setBits(ks, 2, uint32(m))
}

// SpecularModel returns the stored model.
func (p *SpecularModelProperty) SpecularModel(ks *KeySet) SpecularModel {
	return SpecularModel(p.bits(ks, 2))
}

// AlphaMode selects how material alpha is applied.
type AlphaMode uint32

// Alpha modes.
const (
	AlphaDefault AlphaMode = iota
	AlphaMask
	AlphaBlend
	AlphaOpaque
)

// AlphaModeProperty is the 2-bit alpha mode selector.
type AlphaModeProperty struct {
	namedEnum
}

// NewAlphaMode returns an alpha mode property.
func NewAlphaMode(name string) AlphaModeProperty {
	return AlphaModeProperty{namedEnum{
		keyProperty: keyProperty{name: name},
		names:       []string{"Default", "Mask", "Blend", "Opaque"},
	}}
}

// SetAlphaMode stores m.
func (p *AlphaModeProperty) SetAlphaMode(ks *KeySet, m AlphaMode) { p.setBits(ks, 2, uint32(m)) }

// AlphaMode returns the stored mode.
func (p *AlphaModeProperty) AlphaMode(ks *KeySet) AlphaMode { return AlphaMode(p.bits(ks, 2)) }

// Compile-time interface checks.
var (
	_ Property = (*Boolean)(nil)
	_ Property = (*Unsigned)(nil)
	_ Property = (*TextureChannel)(nil)
	_ Property = (*ImageMap)(nil)
	_ Property = (*TextureSwizzle)(nil)
	_ Property = (*VertexAttribute)(nil)
	_ Property = (*SpecularModelProperty)(nil)
	_ Property = (*AlphaModeProperty)(nil)
)
