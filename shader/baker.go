// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/hlsl"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/msl"
	"github.com/gogpu/naga/spirv"
)

// ErrCompileFailed is returned when a variant could not be baked or its
// GPU objects could not be created. Cached failures return it too.
var ErrCompileFailed = errors.New("shader: compile failed")

// Stage is a programmable pipeline stage.
type Stage uint8

// Shader stages.
const (
	StageVertex Stage = iota
	StageFragment

	stageCount
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", uint8(s))
	}
}

// Entry point names used by generated shaders.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

func (s Stage) entryPoint() string {
	if s == StageVertex {
		return VertexEntryPoint
	}
	return FragmentEntryPoint
}

// StageFlags selects the stages a pipeline is built with.
type StageFlags uint8

// Stage selections.
const (
	VertexStage   StageFlags = 1 << StageVertex
	FragmentStage StageFlags = 1 << StageFragment

	AllStages = VertexStage | FragmentStage
)

// Has reports whether s is selected.
func (f StageFlags) Has(s Stage) bool { return f&(1<<s) != 0 }

// Target is a shader binary or source format.
type Target uint8

// Bake targets.
const (
	TargetSPIRV Target = iota
	TargetGLSL
	TargetMSL
	TargetHLSL
)

func (t Target) String() string {
	switch t {
	case TargetSPIRV:
		return "spirv"
	case TargetGLSL:
		return "glsl"
	case TargetMSL:
		return "msl"
	case TargetHLSL:
		return "hlsl"
	default:
		return fmt.Sprintf("Target(%d)", uint8(t))
	}
}

// ParseTarget parses the names printed by Target.String.
func ParseTarget(s string) (Target, error) {
	for t := TargetSPIRV; t <= TargetHLSL; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("shader: unknown target %q", s)
}

// Shader is one baked stage: the entry point and a blob per target.
type Shader struct {
	Stage      Stage
	EntryPoint string
	Blobs      map[Target][]byte
}

// Blob returns the blob for t.
func (s *Shader) Blob(t Target) ([]byte, bool) {
	b, ok := s.Blobs[t]
	return b, ok
}

// Baker turns stage source into a baked Shader.
type Baker interface {
	Bake(stage Stage, source string) (Shader, error)
}

// NagaBaker bakes WGSL with naga.
type NagaBaker struct {
	targets      []Target
	spirvVersion spirv.Version
	glslVersion  glsl.Version
	validate     bool
}

// BakerOption configures a NagaBaker.
type BakerOption func(*NagaBaker)

// WithTargets selects the output formats. The default is SPIR-V only.
func WithTargets(targets ...Target) BakerOption {
	return func(b *NagaBaker) {
		b.targets = append([]Target(nil), targets...)
	}
}

// WithGLSLVersion selects the GLSL dialect, e.g. glsl.VersionES300.
func WithGLSLVersion(v glsl.Version) BakerOption {
	return func(b *NagaBaker) {
		b.glslVersion = v
	}
}

// WithValidation turns IR validation on or off. It is on by default.
func WithValidation(on bool) BakerOption {
	return func(b *NagaBaker) {
		b.validate = on
	}
}

// NewBaker returns a naga baker.
func NewBaker(opts ...BakerOption) *NagaBaker {
	def := naga.DefaultOptions()
	b := &NagaBaker{
		targets:      []Target{TargetSPIRV},
		spirvVersion: def.SPIRVVersion,
		glslVersion:  glsl.Version330,
		validate:     def.Validate,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Targets returns the configured output formats.
func (b *NagaBaker) Targets() []Target { return b.targets }

// Bake parses, lowers and optionally validates source once, then emits
// every configured target.
func (b *NagaBaker) Bake(stage Stage, source string) (Shader, error) {
	out := Shader{
		Stage:      stage,
		EntryPoint: stage.entryPoint(),
		Blobs:      make(map[Target][]byte, len(b.targets)),
	}

	ast, err := naga.Parse(source)
	if err != nil {
		return out, fmt.Errorf("%s stage: %w", stage, err)
	}
	module, err := naga.LowerWithSource(ast, source)
	if err != nil {
		return out, fmt.Errorf("%s stage: lowering: %w", stage, err)
	}
	if b.validate {
		verrs, err := naga.Validate(module)
		if err != nil {
			return out, fmt.Errorf("%s stage: validation: %w", stage, err)
		}
		if len(verrs) > 0 {
			return out, fmt.Errorf("%s stage: validation failed: %w", stage, &verrs[0])
		}
	}

	for _, t := range b.targets {
		blob, err := b.emit(t, module, out.EntryPoint)
		if err != nil {
			return out, fmt.Errorf("%s stage: %s: %w", stage, t, err)
		}
		out.Blobs[t] = blob
	}
	return out, nil
}

func (b *NagaBaker) emit(t Target, module *ir.Module, entryPoint string) ([]byte, error) {
	switch t {
	case TargetSPIRV:
		return naga.GenerateSPIRV(module, spirv.Options{Version: b.spirvVersion})
	case TargetGLSL:
		opts := glsl.DefaultOptions()
		opts.LangVersion = b.glslVersion
		opts.EntryPoint = entryPoint
		code, _, err := glsl.Compile(module, opts)
		return []byte(code), err
	case TargetMSL:
		code, _, err := msl.Compile(module, msl.DefaultOptions())
		return []byte(code), err
	case TargetHLSL:
		code, _, err := hlsl.Compile(module, hlsl.DefaultOptions())
		return []byte(code), err
	default:
		return nil, fmt.Errorf("unsupported target %d", uint8(t))
	}
}
