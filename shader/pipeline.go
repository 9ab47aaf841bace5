// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// Pipeline is a compiled shader variant: the baked stages and, when the
// cache owns a device, one shader module per stage.
type Pipeline struct {
	key     CacheKey
	stages  StageFlags
	shaders [stageCount]*Shader
	modules [stageCount]hal.ShaderModule
}

// Key returns the cache key the pipeline was built for.
func (p *Pipeline) Key() CacheKey { return p.key }

// Stages returns the stages present in the pipeline.
func (p *Pipeline) Stages() StageFlags { return p.stages }

// Shader returns the baked stage, or nil if the stage is absent.
func (p *Pipeline) Shader(s Stage) *Shader {
	if s >= stageCount {
		return nil
	}
	return p.shaders[s]
}

// Module returns the GPU shader module of a stage. It is nil when the
// cache has no device.
func (p *Pipeline) Module(s Stage) hal.ShaderModule {
	if s >= stageCount {
		return nil
	}
	return p.modules[s]
}

// newPipeline creates shader modules for the baked stages. On error every
// module created so far is destroyed.
func newPipeline(device hal.Device, key CacheKey, shaders []Shader) (*Pipeline, error) {
	p := &Pipeline{key: key}
	for i := range shaders {
		sh := &shaders[i]
		if sh.Stage >= stageCount {
			return nil, fmt.Errorf("%w: invalid stage %d", ErrCompileFailed, sh.Stage)
		}
		p.shaders[sh.Stage] = sh
		p.stages |= 1 << sh.Stage
	}
	if device == nil {
		return p, nil
	}

	for s := range stageCount {
		sh := p.shaders[s]
		if sh == nil {
			continue
		}
		src, err := moduleSource(sh)
		if err != nil {
			p.destroy(device)
			return nil, fmt.Errorf("%s stage: %w", s, err)
		}
		mod, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
			Label:  fmt.Sprintf("shader_%s_%s", key.HashString()[:12], s),
			Source: src,
		})
		if err != nil {
			p.destroy(device)
			return nil, fmt.Errorf("create %s shader module: %w", s, err)
		}
		p.modules[s] = mod
	}
	return p, nil
}

// moduleSource picks the SPIR-V blob of a baked stage.
func moduleSource(sh *Shader) (hal.ShaderSource, error) {
	blob, ok := sh.Blob(TargetSPIRV)
	if !ok {
		return hal.ShaderSource{}, fmt.Errorf("%w: no SPIR-V blob", ErrCompileFailed)
	}
	words, err := spirvWords(blob)
	if err != nil {
		return hal.ShaderSource{}, err
	}
	return hal.ShaderSource{SPIRV: words}, nil
}

// spirvWords converts little-endian SPIR-V bytes to words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b) < 4 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: SPIR-V length %d", ErrCompileFailed, len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if words[0] != spirvMagic {
		return nil, fmt.Errorf("%w: bad SPIR-V magic 0x%08x", ErrCompileFailed, words[0])
	}
	return words, nil
}

func (p *Pipeline) destroy(device hal.Device) {
	if device == nil {
		return
	}
	for s := range p.modules {
		if p.modules[s] != nil {
			device.DestroyShaderModule(p.modules[s])
			p.modules[s] = nil
		}
	}
}
