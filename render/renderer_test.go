// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image/color"
	"testing"
)

func testFrame(layers uint32, views int) *Frame {
	f := &Frame{
		Target: RenderTarget{
			Width: 16, Height: 8, LayerCount: layers,
			Viewport: Viewport{X: 4, Y: 0, Width: 8, Height: 8},
		},
	}
	for i := range views {
		f.Views = append(f.Views, EyeView{Index: i})
	}
	return f
}

func TestSoftwareRendererClearsViewport(t *testing.T) {
	green := color.RGBA{G: 255, A: 255}
	r := NewSoftwareRenderer(green)

	buf, err := r.RenderFrame(testFrame(1, 1))
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !buf.HasPixels() || len(buf.Layers) != 1 {
		t.Fatalf("Layers = %d, want 1", len(buf.Layers))
	}
	layer := buf.Layers[0]
	if got := layer.GetPixel(5, 5); got != green {
		t.Errorf("inside viewport = %v, want %v", got, green)
	}
	if got := layer.GetPixel(0, 0); got != (color.RGBA{}) {
		t.Errorf("outside viewport = %v, want untouched", got)
	}
}

func TestSoftwareRendererMultiview(t *testing.T) {
	var drawn []int
	r := NewSoftwareRenderer(nil)
	r.Draw = func(_ *PixmapTarget, eye EyeView, _ *Frame) error {
		drawn = append(drawn, eye.Index)
		return nil
	}

	buf, err := r.RenderFrame(testFrame(2, 2))
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if len(buf.Layers) != 2 {
		t.Fatalf("Layers = %d, want 2", len(buf.Layers))
	}
	if len(drawn) != 2 || drawn[0] != 0 || drawn[1] != 1 {
		t.Errorf("drawn eyes = %v, want [0 1]", drawn)
	}
	if got := buf.Layers[1].GetPixel(6, 1); got != (color.RGBA{A: 255}) {
		t.Errorf("default clear = %v, want opaque black", got)
	}
}

func TestSoftwareRendererReusesLayers(t *testing.T) {
	r := NewSoftwareRenderer(color.White)
	a, err := r.RenderFrame(testFrame(1, 1))
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	b, err := r.RenderFrame(testFrame(1, 1))
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if a.Layers[0] != b.Layers[0] {
		t.Error("layer images should be reused for the same size")
	}
}

func TestSoftwareRendererErrors(t *testing.T) {
	r := NewSoftwareRenderer(color.White)

	if _, err := r.RenderFrame(nil); err == nil {
		t.Error("nil frame should fail")
	}
	if _, err := r.RenderFrame(testFrame(1, 0)); err == nil {
		t.Error("frame without views should fail")
	}
	if _, err := r.RenderFrame(testFrame(2, 1)); err == nil {
		t.Error("multiview frame with fewer views than layers should fail")
	}
	bad := testFrame(1, 1)
	bad.Target.Width = 0
	if _, err := r.RenderFrame(bad); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("RenderFrame(zero width) = %v, want ErrInvalidTarget", err)
	}

	wantErr := errors.New("boom")
	r.Draw = func(*PixmapTarget, EyeView, *Frame) error { return wantErr }
	if _, err := r.RenderFrame(testFrame(1, 1)); !errors.Is(err, wantErr) {
		t.Errorf("RenderFrame with failing Draw = %v, want %v", err, wantErr)
	}
}

func TestRendererFunc(t *testing.T) {
	called := false
	var r SceneRenderer = RendererFunc(func(*Frame) (ColorBuffer, error) {
		called = true
		return ColorBuffer{}, nil
	})
	if _, err := r.RenderFrame(testFrame(1, 1)); err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if !called {
		t.Error("RendererFunc was not called")
	}
}
