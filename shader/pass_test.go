// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package shader

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

// unknownCommand has a kind no handler is registered for.
type unknownCommand struct{}

func (unknownCommand) Kind() CommandKind { return CommandKind(200) }

func newTestExecutor(t *testing.T, opts ...ExecutorOption) (*Executor, *Cache) {
	t.Helper()
	c := NewCache(nil, WithBaker(&stubBaker{}))
	if _, err := c.Compile("blur", testVert, testFrag, 0, AllStages); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	e := NewExecutor(c, opts...)
	t.Cleanup(func() {
		e.Destroy()
		c.Destroy()
	})
	return e, c
}

func TestExecutorUniformOverridesArePerPass(t *testing.T) {
	var seen []any
	e, _ := newTestExecutor(t, WithDraw(func(s *PassState, _ Render) error {
		v, _ := s.Uniform("radius")
		seen = append(seen, v)
		return nil
	}))
	e.SetUniform("radius", 1.0)

	passes := []Pass{
		{Commands: []Command{
			BindShader{Key: "blur"},
			SetUniformValue{Name: "radius", Value: 4.0},
			Render{},
		}},
		{Commands: []Command{
			BindShader{Key: "blur"},
			Render{},
		}},
	}
	if err := e.Run(passes, 64, 64); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(seen) != 2 || seen[0] != 4.0 || seen[1] != 1.0 {
		t.Errorf("radius per pass = %v, want [4 1]", seen)
	}
	if v, _ := e.Uniform("radius"); v != 1.0 {
		t.Errorf("base uniform changed to %v", v)
	}
}

func TestExecutorBuffersAndInputs(t *testing.T) {
	device, _, cleanup := createNoopDevice(t)
	defer cleanup()

	var state *PassState
	e, _ := newTestExecutor(t, WithDevice(device), WithDraw(func(s *PassState, _ Render) error {
		state = s
		return nil
	}))

	passes := []Pass{
		{Commands: []Command{
			AllocateBuffer{Name: "half", Format: gputypes.TextureFormatRGBA8Unorm, SizeMultiplier: 0.5},
		}},
		{Output: "half", Commands: []Command{
			BindShader{Key: "blur"},
			BufferInput{Param: "source"},
			Render{},
		}},
		{Commands: []Command{
			BindTarget{},
			BindShader{Key: "blur"},
			BufferInput{Buffer: "half", Param: "blurred"},
			Render{},
		}},
	}
	if err := e.Run(passes, 100, 60); err != nil {
		t.Fatalf("Run: %v", err)
	}

	b, ok := e.Buffer("half")
	if !ok {
		t.Fatal("buffer half not allocated")
	}
	if b.Width != 50 || b.Height != 30 {
		t.Errorf("buffer size = %dx%d, want 50x30", b.Width, b.Height)
	}
	if b.Texture == nil || b.View == nil {
		t.Error("buffer has no GPU texture")
	}
	if state.Target != nil {
		t.Error("final pass should target the output")
	}
	if state.Inputs["blurred"] != b {
		t.Error("buffer input not bound")
	}

	e.Destroy()
	if b.Texture != nil {
		t.Error("texture not released by Destroy")
	}
}

func TestExecutorErrors(t *testing.T) {
	tests := []struct {
		name string
		cmds []Command
		want error
	}{
		{"unknown command", []Command{unknownCommand{}}, ErrUnknownCommand},
		{"render without shader", []Command{Render{}}, nil},
		{"missing target", []Command{BindTarget{Name: "nope"}}, nil},
		{"missing builtin shader", []Command{BindShader{Key: "nope"}}, ErrCompileFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestExecutor(t)
			err := e.Run([]Pass{{Commands: tt.cmds}}, 8, 8)
			if err == nil {
				t.Fatal("Run succeeded, want error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Run error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExecutorOutputMustExist(t *testing.T) {
	e, _ := newTestExecutor(t)
	if err := e.Run([]Pass{{Output: "nope"}}, 8, 8); err == nil {
		t.Error("Run with unallocated output succeeded")
	}
}

func TestExecutorDrawCount(t *testing.T) {
	var draws int
	e, _ := newTestExecutor(t, WithDraw(func(s *PassState, _ Render) error {
		draws = s.Draws
		return nil
	}))
	err := e.Run([]Pass{{Commands: []Command{BindShader{Key: "blur"}, Render{}, Render{NeedsClear: true}}}}, 8, 8)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if draws != 2 {
		t.Errorf("Draws = %d, want 2", draws)
	}
}
