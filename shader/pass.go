// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"fmt"
	"maps"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrUnknownCommand is returned when a pass holds a command kind the
// executor has no handler for.
var ErrUnknownCommand = errors.New("shader: unknown pass command")

// CommandKind tags a pass command.
type CommandKind uint8

// Pass command kinds.
const (
	CmdAllocateBuffer CommandKind = iota
	CmdBindTarget
	CmdBindShader
	CmdBufferInput
	CmdSetUniformValue
	CmdRender
)

func (k CommandKind) String() string {
	switch k {
	case CmdAllocateBuffer:
		return "AllocateBuffer"
	case CmdBindTarget:
		return "BindTarget"
	case CmdBindShader:
		return "BindShader"
	case CmdBufferInput:
		return "BufferInput"
	case CmdSetUniformValue:
		return "SetUniformValue"
	case CmdRender:
		return "Render"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// Command is one step of a pass.
type Command interface {
	Kind() CommandKind
}

// AllocateBuffer creates a named intermediate color buffer sized relative
// to the output.
type AllocateBuffer struct {
	Name           string
	Format         gputypes.TextureFormat
	SizeMultiplier float32
}

// BindTarget makes a buffer the render target. An empty name binds the
// pass output.
type BindTarget struct {
	Name string
}

// BindShader selects the pipeline used by following Render commands.
type BindShader struct {
	Key      string
	Features Features
}

// BufferInput exposes a buffer to the shader under a parameter name. An
// empty buffer name refers to the pass input.
type BufferInput struct {
	Buffer string
	Param  string
}

// SetUniformValue overrides a uniform for the rest of the current pass.
type SetUniformValue struct {
	Name  string
	Value any
}

// Render draws with the bound shader into the bound target.
type Render struct {
	NeedsClear bool
}

// Kind implements Command.
func (AllocateBuffer) Kind() CommandKind  { return CmdAllocateBuffer }
func (BindTarget) Kind() CommandKind      { return CmdBindTarget }
func (BindShader) Kind() CommandKind      { return CmdBindShader }
func (BufferInput) Kind() CommandKind     { return CmdBufferInput }
func (SetUniformValue) Kind() CommandKind { return CmdSetUniformValue }
func (Render) Kind() CommandKind          { return CmdRender }

// Pass is an ordered command list writing to Output. An empty Output is
// the final color target.
type Pass struct {
	Output   string
	Commands []Command
}

// Buffer is an intermediate color buffer owned by an Executor.
type Buffer struct {
	Name    string
	Format  gputypes.TextureFormat
	Width   uint32
	Height  uint32
	Texture hal.Texture
	View    hal.TextureView
}

// PassState is the state visible to command handlers while one pass runs.
type PassState struct {
	Pass     *Pass
	Width    uint32
	Height   uint32
	Target   *Buffer
	Pipeline *Pipeline
	Inputs   map[string]*Buffer
	Uniforms map[string]any
	Draws    int
}

// Uniform returns the effective value of a uniform in this pass.
func (s *PassState) Uniform(name string) (any, bool) {
	v, ok := s.Uniforms[name]
	return v, ok
}

// handlerFunc runs one command.
type handlerFunc func(*PassState, Command) error

// DrawFunc performs the draw of a Render command.
type DrawFunc func(state *PassState, cmd Render) error

// Executor runs passes. Buffers persist across passes and runs until
// Destroy; uniform overrides last for one pass only.
type Executor struct {
	device   hal.Device
	cache    *Cache
	draw     DrawFunc
	handlers map[CommandKind]handlerFunc

	buffers  map[string]*Buffer
	uniforms map[string]any
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithDevice allocates intermediate buffers as GPU textures.
func WithDevice(device hal.Device) ExecutorOption {
	return func(e *Executor) {
		e.device = device
	}
}

// WithDraw sets the function that performs Render commands.
func WithDraw(fn DrawFunc) ExecutorOption {
	return func(e *Executor) {
		e.draw = fn
	}
}

// NewExecutor returns an executor resolving BindShader through c.
func NewExecutor(c *Cache, opts ...ExecutorOption) *Executor {
	e := &Executor{
		cache:    c,
		buffers:  make(map[string]*Buffer),
		uniforms: make(map[string]any),
	}
	e.handlers = map[CommandKind]handlerFunc{
		CmdAllocateBuffer:  e.allocateBuffer,
		CmdBindTarget:      e.bindTarget,
		CmdBindShader:      e.bindShader,
		CmdBufferInput:     e.bufferInput,
		CmdSetUniformValue: setUniformValue,
		CmdRender:          e.render,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetUniform sets the base value of a uniform. Passes start from these
// values.
func (e *Executor) SetUniform(name string, value any) { e.uniforms[name] = value }

// Uniform returns the base value of a uniform.
func (e *Executor) Uniform(name string) (any, bool) {
	v, ok := e.uniforms[name]
	return v, ok
}

// Buffer returns an allocated buffer.
func (e *Executor) Buffer(name string) (*Buffer, bool) {
	b, ok := e.buffers[name]
	return b, ok
}

// Run executes passes in order against an output of width x height. The
// first failing command stops the run.
func (e *Executor) Run(passes []Pass, width, height uint32) error {
	for i := range passes {
		state := &PassState{
			Pass:     &passes[i],
			Width:    width,
			Height:   height,
			Inputs:   make(map[string]*Buffer),
			Uniforms: maps.Clone(e.uniforms),
		}
		if passes[i].Output != "" {
			out, ok := e.buffers[passes[i].Output]
			if !ok {
				return fmt.Errorf("pass %d: output buffer %q not allocated", i, passes[i].Output)
			}
			state.Target = out
		}
		for j, cmd := range passes[i].Commands {
			h, ok := e.handlers[cmd.Kind()]
			if !ok {
				return fmt.Errorf("pass %d command %d: %w: %s", i, j, ErrUnknownCommand, cmd.Kind())
			}
			if err := h(state, cmd); err != nil {
				return fmt.Errorf("pass %d command %d (%s): %w", i, j, cmd.Kind(), err)
			}
		}
	}
	return nil
}

// Destroy releases every allocated buffer.
func (e *Executor) Destroy() {
	for name, b := range e.buffers {
		e.releaseBuffer(b)
		delete(e.buffers, name)
	}
}

func (e *Executor) allocateBuffer(s *PassState, cmd Command) error {
	c := cmd.(AllocateBuffer)
	if c.Name == "" {
		return errors.New("allocate buffer: empty name")
	}
	mult := c.SizeMultiplier
	if mult <= 0 {
		mult = 1
	}
	w := max(uint32(float32(s.Width)*mult), 1)
	h := max(uint32(float32(s.Height)*mult), 1)

	if b, ok := e.buffers[c.Name]; ok {
		if b.Width == w && b.Height == h && b.Format == c.Format {
			return nil
		}
		e.releaseBuffer(b)
	}

	b := &Buffer{Name: c.Name, Format: c.Format, Width: w, Height: h}
	if e.device != nil {
		tex, err := e.device.CreateTexture(&hal.TextureDescriptor{
			Label:         "pass_buffer_" + c.Name,
			Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        c.Format,
			Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
		})
		if err != nil {
			return fmt.Errorf("allocate buffer %q: %w", c.Name, err)
		}
		view, err := e.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:           "pass_buffer_" + c.Name + "_view",
			Format:          c.Format,
			Dimension:       gputypes.TextureViewDimension2D,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: 1,
		})
		if err != nil {
			e.device.DestroyTexture(tex)
			return fmt.Errorf("allocate buffer %q view: %w", c.Name, err)
		}
		b.Texture, b.View = tex, view
	}
	e.buffers[c.Name] = b
	return nil
}

func (e *Executor) releaseBuffer(b *Buffer) {
	if e.device == nil {
		return
	}
	if b.View != nil {
		e.device.DestroyTextureView(b.View)
		b.View = nil
	}
	if b.Texture != nil {
		e.device.DestroyTexture(b.Texture)
		b.Texture = nil
	}
}

func (e *Executor) bindTarget(s *PassState, cmd Command) error {
	c := cmd.(BindTarget)
	if c.Name == "" {
		s.Target = nil
		return nil
	}
	b, ok := e.buffers[c.Name]
	if !ok {
		return fmt.Errorf("bind target: buffer %q not allocated", c.Name)
	}
	s.Target = b
	return nil
}

func (e *Executor) bindShader(s *PassState, cmd Command) error {
	c := cmd.(BindShader)
	if e.cache == nil {
		return errors.New("bind shader: executor has no shader cache")
	}
	if p, ok := e.cache.Pipeline(c.Key, c.Features); ok {
		if p == nil {
			return fmt.Errorf("bind shader %q: %w", c.Key, ErrCompileFailed)
		}
		s.Pipeline = p
		return nil
	}
	p, err := e.cache.LoadBuiltin(c.Key)
	if err != nil {
		return fmt.Errorf("bind shader %q: %w", c.Key, err)
	}
	s.Pipeline = p
	return nil
}

func (e *Executor) bufferInput(s *PassState, cmd Command) error {
	c := cmd.(BufferInput)
	if c.Param == "" {
		return errors.New("buffer input: empty parameter name")
	}
	if c.Buffer == "" {
		s.Inputs[c.Param] = nil
		return nil
	}
	b, ok := e.buffers[c.Buffer]
	if !ok {
		return fmt.Errorf("buffer input %q: buffer %q not allocated", c.Param, c.Buffer)
	}
	s.Inputs[c.Param] = b
	return nil
}

func setUniformValue(s *PassState, cmd Command) error {
	c := cmd.(SetUniformValue)
	if c.Name == "" {
		return errors.New("set uniform: empty name")
	}
	s.Uniforms[c.Name] = c.Value
	return nil
}

func (e *Executor) render(s *PassState, cmd Command) error {
	if s.Pipeline == nil {
		return errors.New("render: no shader bound")
	}
	s.Draws++
	if e.draw == nil {
		return nil
	}
	return e.draw(s, cmd.(Render))
}
