// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xr3d/render"
	"github.com/gogpu/xr3d/xr/openxr"
)

// Graphics binds a GPU API to the session: it provides the session create
// chain, picks a swapchain format and turns swapchain images into render
// targets.
type Graphics interface {
	// ExtensionName is the instance extension the binding needs.
	ExtensionName() string

	// Setup checks the runtime requirements and returns the graphics
	// binding passed to CreateSession.
	Setup(req openxr.GraphicsRequirements) (openxr.GraphicsBinding, error)

	// ColorSwapchainFormat picks a format from the runtime's list, in
	// runtime preference order.
	ColorSwapchainFormat(formats []int64) (int64, bool)

	// AllocateSwapchainImages prepares GPU resources for the images of sc.
	AllocateSwapchainImages(sc openxr.Swapchain, info *openxr.SwapchainCreateInfo, images []openxr.SwapchainImage) error

	// RenderTarget returns the target for image index of the swapchain
	// named in sub. arraySize is the number of layers to address.
	RenderTarget(sub openxr.SwapchainSubImage, image uint32, samples, arraySize int) (render.RenderTarget, error)

	// ReleaseSwapchainImages frees what AllocateSwapchainImages created.
	ReleaseSwapchainImages(sc openxr.Swapchain)
}

// Vulkan formats accepted for color swapchains.
const (
	vkFormatR8G8B8A8Unorm int64 = 37
	vkFormatR8G8B8A8SRGB  int64 = 43
	vkFormatB8G8R8A8Unorm int64 = 44
	vkFormatB8G8R8A8SRGB  int64 = 50
)

var vkColorFormats = map[int64]gputypes.TextureFormat{
	vkFormatR8G8B8A8Unorm: gputypes.TextureFormatRGBA8Unorm,
	vkFormatR8G8B8A8SRGB:  gputypes.TextureFormatRGBA8UnormSrgb,
	vkFormatB8G8R8A8Unorm: gputypes.TextureFormatBGRA8Unorm,
	vkFormatB8G8R8A8SRGB:  gputypes.TextureFormatBGRA8UnormSrgb,
}

// TextureFormat returns the gputypes format of a Vulkan swapchain format.
func TextureFormat(vkFormat int64) (gputypes.TextureFormat, bool) {
	f, ok := vkColorFormats[vkFormat]
	return f, ok
}

// VulkanBinding is the session create chain of HALGraphics.
type VulkanBinding struct {
	Device hal.Device
	Queue  hal.Queue
}

// ExtensionName implements openxr.GraphicsBinding.
func (VulkanBinding) ExtensionName() string { return openxr.ExtVulkanEnable2 }

// HALGraphics renders into wgpu HAL textures, one per swapchain image.
type HALGraphics struct {
	device hal.Device
	queue  hal.Queue

	requirements openxr.GraphicsRequirements
	chains       map[openxr.Swapchain]*halSwapchain
}

type halSwapchain struct {
	format   gputypes.TextureFormat
	textures []hal.Texture
	views    []hal.TextureView
}

// NewHALGraphics returns a binding for device.
func NewHALGraphics(device hal.Device, queue hal.Queue) *HALGraphics {
	return &HALGraphics{
		device: device,
		queue:  queue,
		chains: make(map[openxr.Swapchain]*halSwapchain),
	}
}

// NewHALGraphicsFromProvider extracts the HAL device from a gpucontext
// device provider, as the host application shares it.
func NewHALGraphicsFromProvider(provider render.DeviceHandle) (*HALGraphics, error) {
	device, queue, err := render.HALDevice(provider)
	if err != nil {
		return nil, err
	}
	return NewHALGraphics(device, queue), nil
}

// ExtensionName implements Graphics.
func (g *HALGraphics) ExtensionName() string { return openxr.ExtVulkanEnable2 }

// Setup implements Graphics.
func (g *HALGraphics) Setup(req openxr.GraphicsRequirements) (openxr.GraphicsBinding, error) {
	if g.device == nil {
		return nil, render.ErrNoHALDevice
	}
	g.requirements = req
	slogger().Debug("xr: graphics requirements",
		"min", req.MinAPIVersionSupported, "max", req.MaxAPIVersionSupported)
	return VulkanBinding{Device: g.device, Queue: g.queue}, nil
}

// Requirements returns what the runtime reported during Setup.
func (g *HALGraphics) Requirements() openxr.GraphicsRequirements { return g.requirements }

// ColorSwapchainFormat implements Graphics.
func (g *HALGraphics) ColorSwapchainFormat(formats []int64) (int64, bool) {
	for _, f := range formats {
		if _, ok := vkColorFormats[f]; ok {
			return f, true
		}
	}
	return 0, false
}

// AllocateSwapchainImages implements Graphics.
func (g *HALGraphics) AllocateSwapchainImages(sc openxr.Swapchain, info *openxr.SwapchainCreateInfo, images []openxr.SwapchainImage) error {
	format, ok := vkColorFormats[info.Format]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoSwapchainFormat, info.Format)
	}
	usage := gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc
	if info.UsageFlags&openxr.SwapchainUsageSampled != 0 {
		usage |= gputypes.TextureUsageTextureBinding
	}
	viewDim := gputypes.TextureViewDimension2D
	if info.ArraySize > 1 {
		viewDim = gputypes.TextureViewDimension2DArray
	}

	chain := &halSwapchain{format: format}
	g.chains[sc] = chain
	for i := range images {
		tex, err := g.device.CreateTexture(&hal.TextureDescriptor{
			Label: fmt.Sprintf("xr_swapchain_%d_image_%d", sc, i),
			Size: hal.Extent3D{
				Width:              info.Width,
				Height:             info.Height,
				DepthOrArrayLayers: max(info.ArraySize, 1),
			},
			MipLevelCount: max(info.MipCount, 1),
			SampleCount:   max(info.SampleCount, 1),
			Dimension:     gputypes.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			g.ReleaseSwapchainImages(sc)
			return fmt.Errorf("create swapchain texture %d: %w", i, err)
		}
		chain.textures = append(chain.textures, tex)

		view, err := g.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:           fmt.Sprintf("xr_swapchain_%d_view_%d", sc, i),
			Format:          format,
			Dimension:       viewDim,
			Aspect:          gputypes.TextureAspectAll,
			MipLevelCount:   1,
			ArrayLayerCount: max(info.ArraySize, 1),
		})
		if err != nil {
			g.ReleaseSwapchainImages(sc)
			return fmt.Errorf("create swapchain texture view %d: %w", i, err)
		}
		chain.views = append(chain.views, view)
	}
	return nil
}

// RenderTarget implements Graphics.
func (g *HALGraphics) RenderTarget(sub openxr.SwapchainSubImage, image uint32, samples, arraySize int) (render.RenderTarget, error) {
	chain, ok := g.chains[sub.Swapchain]
	if !ok || int(image) >= len(chain.textures) {
		return render.RenderTarget{}, fmt.Errorf("xr: no image %d for swapchain %d", image, sub.Swapchain)
	}
	ext := sub.ImageRect.Extent
	off := sub.ImageRect.Offset
	return render.RenderTarget{
		Texture:        chain.textures[image],
		View:           chain.views[image],
		Format:         chain.format,
		Width:          uint32(off.X + ext.Width),  //nolint:gosec // rects are non-negative
		Height:         uint32(off.Y + ext.Height), //nolint:gosec // rects are non-negative
		BaseArrayLayer: sub.ImageArrayIndex,
		LayerCount:     uint32(max(arraySize, 1)), //nolint:gosec // small
		SampleCount:    uint32(max(samples, 1)),   //nolint:gosec // small
		Viewport: render.Viewport{
			X:      int(off.X),
			Y:      int(off.Y),
			Width:  int(ext.Width),
			Height: int(ext.Height),
		},
	}, nil
}

// ReleaseSwapchainImages implements Graphics.
func (g *HALGraphics) ReleaseSwapchainImages(sc openxr.Swapchain) {
	chain, ok := g.chains[sc]
	if !ok {
		return
	}
	for _, v := range chain.views {
		g.device.DestroyTextureView(v)
	}
	for _, t := range chain.textures {
		g.device.DestroyTexture(t)
	}
	delete(g.chains, sc)
}

var _ Graphics = (*HALGraphics)(nil)
