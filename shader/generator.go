// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"fmt"
	"strings"

	"github.com/gogpu/xr3d/shaderkey"
)

// Source is the generated WGSL of a variant, one string per stage.
type Source struct {
	Vertex   string
	Fragment string
}

// Stage returns the source of s.
func (s Source) Stage(st Stage) string {
	if st == StageVertex {
		return s.Vertex
	}
	return s.Fragment
}

// Generator produces shader source for a material key.
type Generator interface {
	Generate(key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties, features Features) (Source, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties, features Features) (Source, error)

// Generate calls f.
func (f GeneratorFunc) Generate(key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties, features Features) (Source, error) {
	return f(key, props, features)
}

// maxLightsReduced is the light limit under ReduceMaxNumLights.
const maxLightsReduced = 7

// DefaultMaterialGenerator writes a compact WGSL default material.
//
// The vertex inputs follow the vertexAttributes flags of the key, the
// fragment stage runs one diffuse (and optionally specular) term per
// enabled light, and the tonemapper is picked from the features.
type DefaultMaterialGenerator struct{}

var _ Generator = DefaultMaterialGenerator{}

// Generate implements Generator.
func (DefaultMaterialGenerator) Generate(key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties, features Features) (Source, error) {
	ks := &key.Data
	if !props.VertexAttributes.Bit(ks, shaderkey.AttrPosition) {
		return Source{}, fmt.Errorf("%w: material key has no position attribute", ErrCompileFailed)
	}

	var vs, fs strings.Builder
	writeCommon(&vs)
	writeVertex(&vs, key, props)
	writeCommon(&fs)
	writeFragment(&fs, key, props, features)
	return Source{Vertex: vs.String(), Fragment: fs.String()}, nil
}

func writeCommon(b *strings.Builder) {
	b.WriteString(`struct Camera {
    view_proj: mat4x4<f32>,
    model: mat4x4<f32>,
    camera_pos: vec4<f32>,
}

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) world_pos: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
    @location(3) color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> camera: Camera;

`)
}

func writeVertex(b *strings.Builder, key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties) {
	ks := &key.Data
	va := &props.VertexAttributes
	hasNormal := va.Bit(ks, shaderkey.AttrNormal)
	hasUV := va.Bit(ks, shaderkey.AttrTexCoord0)
	hasColor := va.Bit(ks, shaderkey.AttrColor) && props.VertexColorsEnabled.Value(ks)

	b.WriteString("@vertex\nfn vs_main(@location(0) position: vec3<f32>")
	if hasNormal {
		b.WriteString(", @location(1) normal: vec3<f32>")
	}
	if hasUV {
		b.WriteString(", @location(2) texcoord0: vec2<f32>")
	}
	if hasColor {
		b.WriteString(", @location(3) color: vec4<f32>")
	}
	b.WriteString(`) -> VertexOutput {
    var out: VertexOutput;
    let world = camera.model * vec4<f32>(position, 1.0);
    out.position = camera.view_proj * world;
    out.world_pos = world.xyz;
`)
	if hasNormal {
		b.WriteString("    out.normal = (camera.model * vec4<f32>(normal, 0.0)).xyz;\n")
	} else {
		b.WriteString("    out.normal = vec3<f32>(0.0, 0.0, 1.0);\n")
	}
	if hasUV {
		if props.ImageMaps[shaderkey.BaseColorMap].IsInvertUV(ks) {
			b.WriteString("    out.uv = vec2<f32>(texcoord0.x, 1.0 - texcoord0.y);\n")
		} else {
			b.WriteString("    out.uv = texcoord0;\n")
		}
	} else {
		b.WriteString("    out.uv = vec2<f32>(0.0, 0.0);\n")
	}
	if hasColor {
		b.WriteString("    out.color = color;\n")
	} else {
		b.WriteString("    out.color = vec4<f32>(1.0, 1.0, 1.0, 1.0);\n")
	}
	b.WriteString("    return out;\n}\n")
}

func writeFragment(b *strings.Builder, key *shaderkey.DefaultMaterialKey, props *shaderkey.DefaultMaterialKeyProperties, features Features) {
	ks := &key.Data
	b.WriteString(`struct Light {
    position: vec4<f32>,
    direction: vec4<f32>,
    color: vec4<f32>,
}

struct Material {
    base_color: vec4<f32>,
    specular: vec4<f32>,
    emissive: vec4<f32>,
    alpha_cutoff: vec4<f32>,
}

struct Lights {
    items: array<Light, 15>,
}

@group(0) @binding(1) var<uniform> material: Material;
@group(0) @binding(2) var<uniform> lights: Lights;

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    var color = material.base_color * in.color;
`)

	lightCount := 0
	if props.HasLighting.Value(ks) {
		lightCount = int(props.LightCount.Value(ks))
		if features.IsSet(ReduceMaxNumLights) && lightCount > maxLightsReduced {
			lightCount = maxLightsReduced
		}
	}
	if lightCount > 0 {
		specular := props.SpecularEnabled.Value(ks)
		b.WriteString(`    let n = normalize(in.normal);
    let v = normalize(camera.camera_pos.xyz - in.world_pos);
    var lit = material.emissive.rgb;
`)
		for i := range lightCount {
			fmt.Fprintf(b, "    let light%d = lights.items[%d];\n", i, i)
			if props.LightFlags[i].Value(ks) {
				fmt.Fprintf(b, "    let l%d = normalize(light%d.position.xyz - in.world_pos);\n", i, i)
			} else {
				fmt.Fprintf(b, "    let l%d = normalize(-light%d.direction.xyz);\n", i, i)
			}
			fmt.Fprintf(b, "    var a%d = 1.0;\n", i)
			if props.LightSpotFlags[i].Value(ks) {
				fmt.Fprintf(b, "    a%d = smoothstep(light%d.position.w, 1.0, dot(-l%d, normalize(light%d.direction.xyz)));\n", i, i, i, i)
			}
			fmt.Fprintf(b, "    lit = lit + light%d.color.rgb * max(dot(n, l%d), 0.0) * a%d;\n", i, i, i)
			if specular {
				fmt.Fprintf(b, "    let h%d = normalize(l%d + v);\n", i, i)
				fmt.Fprintf(b, "    lit = lit + material.specular.rgb * pow(max(dot(n, h%d), 0.0), material.specular.w) * a%d;\n", i, i)
			}
		}
		b.WriteString("    color = vec4<f32>(color.rgb * lit, color.a);\n")
	}

	switch props.AlphaMode.AlphaMode(ks) {
	case shaderkey.AlphaOpaque:
		b.WriteString("    color.a = 1.0;\n")
	case shaderkey.AlphaMask:
		b.WriteString("    color.a = select(0.0, 1.0, color.a >= material.alpha_cutoff.x);\n")
	}

	writeTonemap(b, features)
	b.WriteString("    return color;\n}\n")
}

func writeTonemap(b *strings.Builder, features Features) {
	switch {
	case features.IsSet(AcesTonemapping):
		b.WriteString(`    let x = color.rgb;
    let mapped = clamp((x * (2.51 * x + vec3<f32>(0.03))) / (x * (2.43 * x + vec3<f32>(0.59)) + vec3<f32>(0.14)), vec3<f32>(0.0), vec3<f32>(1.0));
    color = vec4<f32>(mapped, color.a);
`)
	case features.IsSet(HejlDawsonTonemapping):
		b.WriteString(`    let x = max(vec3<f32>(0.0), color.rgb - vec3<f32>(0.004));
    let mapped = (x * (6.2 * x + vec3<f32>(0.5))) / (x * (6.2 * x + vec3<f32>(1.7)) + vec3<f32>(0.06));
    color = vec4<f32>(pow(mapped, vec3<f32>(2.2)), color.a);
`)
	case features.IsSet(FilmicTonemapping):
		b.WriteString(`    let x = color.rgb;
    let mapped = x / (x + vec3<f32>(1.0));
    color = vec4<f32>(mapped, color.a);
`)
	case features.IsSet(LinearTonemapping):
		b.WriteString("    color = vec4<f32>(clamp(color.rgb, vec3<f32>(0.0), vec3<f32>(1.0)), color.a);\n")
	}
}
