// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewPixmapTarget(t *testing.T) {
	target := NewPixmapTarget(100, 50)

	if target.Width() != 100 {
		t.Errorf("Width() = %d, want 100", target.Width())
	}
	if target.Height() != 50 {
		t.Errorf("Height() = %d, want 50", target.Height())
	}
	if len(target.Image().Pix) != 100*50*4 {
		t.Errorf("len(Pix) = %d, want %d", len(target.Image().Pix), 100*50*4)
	}
}

func TestPixmapTargetFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 4))
	target := NewPixmapTargetFromImage(img)
	if target.Image() != img {
		t.Error("NewPixmapTargetFromImage should share the image")
	}
}

func TestPixmapTargetFill(t *testing.T) {
	target := NewPixmapTarget(10, 10)
	red := color.RGBA{R: 255, A: 255}
	target.Fill(image.Rect(2, 2, 4, 4), red)

	if got := target.GetPixel(3, 3); got != red {
		t.Errorf("GetPixel(3, 3) = %v, want %v", got, red)
	}
	if got := target.GetPixel(4, 4); got != (color.RGBA{}) {
		t.Errorf("GetPixel(4, 4) = %v, want transparent", got)
	}

	// Clipped to bounds.
	target.Fill(image.Rect(-5, -5, 100, 1), red)
	if got := target.GetPixel(9, 0); got != red {
		t.Errorf("GetPixel(9, 0) = %v, want %v", got, red)
	}
}

func TestPixmapTargetClear(t *testing.T) {
	target := NewPixmapTarget(4, 4)
	target.Clear(color.White)
	for y := range 4 {
		for x := range 4 {
			if got := target.GetPixel(x, y); got != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("GetPixel(%d, %d) = %v, want white", x, y, got)
			}
		}
	}
}

func TestRenderTargetValidate(t *testing.T) {
	valid := RenderTarget{
		Width: 64, Height: 32, LayerCount: 1,
		Viewport: Viewport{Width: 64, Height: 32},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	tests := []struct {
		name   string
		modify func(*RenderTarget)
	}{
		{"zero width", func(r *RenderTarget) { r.Width = 0 }},
		{"no layers", func(r *RenderTarget) { r.LayerCount = 0 }},
		{"empty viewport", func(r *RenderTarget) { r.Viewport.Width = 0 }},
		{"viewport outside", func(r *RenderTarget) { r.Viewport.X = 10 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := valid
			tt.modify(&rt)
			if err := rt.Validate(); !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("Validate() = %v, want ErrInvalidTarget", err)
			}
		})
	}
}

func TestRenderTargetIsMultiview(t *testing.T) {
	rt := RenderTarget{LayerCount: 1}
	if rt.IsMultiview() {
		t.Error("single layer target should not be multiview")
	}
	rt.LayerCount = 2
	if !rt.IsMultiview() {
		t.Error("two layer target should be multiview")
	}
}
