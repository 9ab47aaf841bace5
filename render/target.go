// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrInvalidTarget is returned by RenderTarget.Validate.
var ErrInvalidTarget = errors.New("render: invalid render target")

// Viewport is a pixel rectangle inside a render target.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Empty reports whether the viewport covers no pixels.
func (v Viewport) Empty() bool { return v.Width <= 0 || v.Height <= 0 }

// Rect returns the viewport as an image rectangle.
func (v Viewport) Rect() image.Rectangle {
	return image.Rect(v.X, v.Y, v.X+v.Width, v.Y+v.Height)
}

// RenderTarget describes the swapchain image a scene renderer draws into.
//
// The XR compositor owns the texture; the renderer only writes to it.
// For multiview, LayerCount equals the view count and the renderer draws
// every eye into its own array layer in one pass. For per-eye rendering
// LayerCount is 1 and BaseArrayLayer is always 0 (one swapchain per eye).
type RenderTarget struct {
	Texture hal.Texture
	View    hal.TextureView
	Format  gputypes.TextureFormat

	Width  uint32
	Height uint32

	BaseArrayLayer uint32
	LayerCount     uint32
	SampleCount    uint32

	Viewport Viewport
}

// IsMultiview reports whether the target spans more than one array layer.
func (t *RenderTarget) IsMultiview() bool { return t.LayerCount > 1 }

// Validate checks the target dimensions and its viewport.
func (t *RenderTarget) Validate() error {
	switch {
	case t.Width == 0 || t.Height == 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalidTarget, t.Width, t.Height)
	case t.LayerCount == 0:
		return fmt.Errorf("%w: no array layers", ErrInvalidTarget)
	case t.Viewport.Empty():
		return fmt.Errorf("%w: empty viewport", ErrInvalidTarget)
	}
	bounds := image.Rect(0, 0, int(t.Width), int(t.Height))
	if !t.Viewport.Rect().In(bounds) {
		return fmt.Errorf("%w: viewport %v outside %v", ErrInvalidTarget, t.Viewport.Rect(), bounds)
	}
	return nil
}

// PixmapTarget is a CPU-backed color image, one per array layer of a
// render target. Software renderers draw into it and frame capture reads
// it back.
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA { return t.img }

// Fill sets every pixel of r (clipped to the image) to c.
func (t *PixmapTarget) Fill(r image.Rectangle, c color.Color) {
	rgba := color.RGBAModel.Convert(c).(color.RGBA)
	r = r.Intersect(t.img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			t.img.SetRGBA(x, y, rgba)
		}
	}
}

// Clear fills the entire target with the given color.
func (t *PixmapTarget) Clear(c color.Color) { t.Fill(t.img.Bounds(), c) }

// SetPixel sets a single pixel at the given coordinates.
func (t *PixmapTarget) SetPixel(x, y int, c color.Color) { t.img.Set(x, y, c) }

// GetPixel returns the color at the given coordinates.
func (t *PixmapTarget) GetPixel(x, y int) color.Color { return t.img.At(x, y) }
