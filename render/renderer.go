// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// EyeView is the camera of one eye for the current frame.
type EyeView struct {
	// Index is the view index (0 = left, 1 = right for stereo).
	Index int

	// View is the world-to-eye matrix.
	View mgl32.Mat4

	// Projection is the eye projection built from the runtime FOV.
	Projection mgl32.Mat4

	// Position is the eye position in scene units.
	Position mgl32.Vec3
}

// Frame is everything a SceneRenderer needs to draw one swapchain image.
type Frame struct {
	Target RenderTarget

	// Views holds every eye for multiview targets and exactly one eye
	// otherwise.
	Views []EyeView

	// Time is the animation clock; Delta is the advance applied this frame.
	Time  time.Duration
	Delta time.Duration

	// DisplayTime is the runtime's predicted display time in nanoseconds.
	DisplayTime int64
}

// ColorBuffer is the result of rendering a frame.
//
// Layers holds one CPU image per array layer when the renderer produced
// CPU pixels; GPU renderers leave it empty and the pixels stay in
// Target.Texture.
type ColorBuffer struct {
	Target *RenderTarget
	Layers []*PixmapTarget
}

// HasPixels reports whether CPU pixels are available.
func (b ColorBuffer) HasPixels() bool { return len(b.Layers) > 0 }

// SceneRenderer draws a frame into its render target.
//
// The XR compositor calls RenderFrame once per swapchain image between
// wait and release. Renderers must not change the array layer range of
// the target.
//
// Thread Safety: SceneRenderers are called from the compositor goroutine
// only.
type SceneRenderer interface {
	RenderFrame(frame *Frame) (ColorBuffer, error)
}

// RendererFunc adapts a function to SceneRenderer.
type RendererFunc func(frame *Frame) (ColorBuffer, error)

// RenderFrame calls f.
func (f RendererFunc) RenderFrame(frame *Frame) (ColorBuffer, error) { return f(frame) }

// RendererCapabilities describes the features supported by a renderer.
type RendererCapabilities struct {
	// IsGPU indicates if this is a GPU-accelerated renderer.
	IsGPU bool

	// SupportsMultiview indicates the renderer can draw every eye into
	// one layered target.
	SupportsMultiview bool

	// MaxTextureSize is the maximum texture dimension (0 = unlimited).
	MaxTextureSize int
}

// CapableRenderer is an optional interface for renderers that can
// report their capabilities.
type CapableRenderer interface {
	SceneRenderer

	// Capabilities returns the renderer's capabilities.
	Capabilities() RendererCapabilities
}

// SoftwareRenderer clears the viewport of every layer to a color in CPU
// memory. Headless runs and tests use it in place of a GPU scene renderer.
type SoftwareRenderer struct {
	ClearColor color.Color

	// Draw, when set, runs after the clear for every layer.
	Draw func(layer *PixmapTarget, eye EyeView, frame *Frame) error

	layers []*PixmapTarget
}

// NewSoftwareRenderer returns a renderer clearing to c.
func NewSoftwareRenderer(c color.Color) *SoftwareRenderer {
	return &SoftwareRenderer{ClearColor: c}
}

// RenderFrame implements SceneRenderer.
func (r *SoftwareRenderer) RenderFrame(frame *Frame) (ColorBuffer, error) {
	if frame == nil {
		return ColorBuffer{}, errors.New("render: nil frame")
	}
	t := &frame.Target
	if err := t.Validate(); err != nil {
		return ColorBuffer{}, err
	}
	if len(frame.Views) == 0 {
		return ColorBuffer{}, errors.New("render: frame has no views")
	}
	if t.IsMultiview() && len(frame.Views) != int(t.LayerCount) {
		return ColorBuffer{}, fmt.Errorf("render: %d views for %d layers", len(frame.Views), t.LayerCount)
	}

	r.ensureLayers(int(t.LayerCount), int(t.Width), int(t.Height))
	bg := r.ClearColor
	if bg == nil {
		bg = color.Black
	}
	for i := range int(t.LayerCount) {
		layer := r.layers[i]
		layer.Fill(t.Viewport.Rect(), bg)
		if r.Draw == nil {
			continue
		}
		eye := frame.Views[min(i, len(frame.Views)-1)]
		if err := r.Draw(layer, eye, frame); err != nil {
			return ColorBuffer{}, fmt.Errorf("render layer %d: %w", i, err)
		}
	}
	return ColorBuffer{Target: t, Layers: r.layers[:t.LayerCount]}, nil
}

// Capabilities implements CapableRenderer.
func (r *SoftwareRenderer) Capabilities() RendererCapabilities {
	return RendererCapabilities{SupportsMultiview: true}
}

// ensureLayers keeps layer images across frames and reallocates them only
// when the target size changes.
func (r *SoftwareRenderer) ensureLayers(n, width, height int) {
	if len(r.layers) > 0 && (r.layers[0].Width() != width || r.layers[0].Height() != height) {
		r.layers = r.layers[:0]
	}
	for len(r.layers) < n {
		r.layers = append(r.layers, NewPixmapTarget(width, height))
	}
}

var _ CapableRenderer = (*SoftwareRenderer)(nil)
