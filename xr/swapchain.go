// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"

	"github.com/gogpu/xr3d/xr/openxr"
)

// swapchain tracks one runtime swapchain and its acquire/wait/release
// cycle.
type swapchain struct {
	handle    openxr.Swapchain
	width     uint32
	height    uint32
	arraySize uint32
	images    []openxr.SwapchainImage

	acquired bool
	waited   bool
	index    uint32
}

func (sc *swapchain) acquire(rt openxr.Runtime) (uint32, error) {
	if sc.acquired {
		return 0, ErrImageAlreadyAcquired
	}
	idx, res := rt.AcquireSwapchainImage(sc.handle)
	if res.Failed() {
		return 0, resultError("xrAcquireSwapchainImage", res)
	}
	sc.acquired = true
	sc.waited = false
	sc.index = idx
	return idx, nil
}

func (sc *swapchain) wait(rt openxr.Runtime) error {
	if !sc.acquired {
		return ErrNoImageAcquired
	}
	if res := rt.WaitSwapchainImage(sc.handle, openxr.InfiniteDuration); res.Failed() {
		return resultError("xrWaitSwapchainImage", res)
	}
	sc.waited = true
	return nil
}

func (sc *swapchain) release(rt openxr.Runtime) error {
	if !sc.acquired {
		return ErrNoImageAcquired
	}
	sc.acquired = false
	sc.waited = false
	if res := rt.ReleaseSwapchainImage(sc.handle); res.Failed() {
		return resultError("xrReleaseSwapchainImage", res)
	}
	return nil
}

// IsMultiview reports whether the swapchains were created for multiview
// rendering. The strategy cannot change while swapchains exist.
func (m *Manager) IsMultiview() bool { return m.multiview }

// SetMultiview selects the swapchain strategy used by the next
// Initialize. It returns false when swapchains already exist.
func (m *Manager) SetMultiview(on bool) bool {
	if len(m.swapchains) > 0 {
		return on == m.multiview
	}
	m.multiview = on
	return true
}

// SwapchainCount returns the number of swapchains.
func (m *Manager) SwapchainCount() int { return len(m.swapchains) }

// Swapchain returns the handle of swapchain i.
func (m *Manager) Swapchain(i int) openxr.Swapchain { return m.swapchains[i].handle }

// ColorSwapchainFormat returns the runtime format chosen for the color
// swapchains.
func (m *Manager) ColorSwapchainFormat() int64 { return m.colorFormat }

// ViewCount returns the number of views of the view configuration.
func (m *Manager) ViewCount() int { return len(m.configViews) }

// AcquireSwapchainImage acquires and waits for the next image of swapchain
// i. It is exported for renderers that drive swapchains themselves.
func (m *Manager) AcquireSwapchainImage(i int) (uint32, error) {
	if i < 0 || i >= len(m.swapchains) {
		return 0, ErrNotInitialized
	}
	sc := m.swapchains[i]
	idx, err := sc.acquire(m.rt)
	if err != nil {
		return 0, err
	}
	if err := sc.wait(m.rt); err != nil {
		_ = sc.release(m.rt)
		return 0, err
	}
	return idx, nil
}

// ReleaseSwapchainImage releases the image acquired on swapchain i.
func (m *Manager) ReleaseSwapchainImage(i int) error {
	if i < 0 || i >= len(m.swapchains) {
		return ErrNotInitialized
	}
	return m.swapchains[i].release(m.rt)
}

func (m *Manager) createSwapchains() error {
	props, res := m.rt.GetSystemProperties(m.instance, m.system)
	if m.check("xrGetSystemProperties", res) {
		m.systemProps = props
	}

	views, res := m.rt.EnumerateViewConfigurationViews(m.instance, m.system, m.viewConfigType)
	if res.Failed() {
		return m.initError("xrEnumerateViewConfigurationViews", res)
	}
	if len(views) == 0 {
		return &InitError{Call: msgNoSwapchainImage, Err: ErrViewCountMismatch, Locale: m.opts.locale}
	}
	m.configViews = views
	viewCount := len(views)
	m.views = make([]openxr.View, viewCount)
	m.projectionViews = make([]openxr.CompositionLayerProjectionView, viewCount)

	formats, res := m.rt.EnumerateSwapchainFormats(m.session)
	if res.Failed() {
		return m.initError("xrEnumerateSwapchainFormats", res)
	}
	format, ok := m.graphics.ColorSwapchainFormat(formats)
	if !ok {
		return &InitError{Call: msgNoSwapchainImage, Err: ErrNoSwapchainFormat, Locale: m.opts.locale}
	}
	m.colorFormat = format
	slogger().Debug("xr: swapchain format", "format", format, "available", formats)

	view := views[0]
	info := openxr.SwapchainCreateInfo{
		UsageFlags:  openxr.SwapchainUsageSampled | openxr.SwapchainUsageColorAttachment,
		Format:      format,
		SampleCount: 1,
		Width:       view.RecommendedImageRectWidth,
		Height:      view.RecommendedImageRectHeight,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	}
	chains := 1
	if m.multiview {
		info.UsageFlags |= openxr.SwapchainUsageMutableFormat
		info.ArraySize = uint32(viewCount) //nolint:gosec // view count is small
	} else {
		chains = viewCount
	}

	for i := range chains {
		if err := m.createSwapchain(&info); err != nil {
			return err
		}
		slogger().Debug("xr: swapchain created", "index", i,
			"width", info.Width, "height", info.Height, "arraySize", info.ArraySize)
	}

	for i := range m.projectionViews {
		sc := m.swapchains[0]
		if !m.multiview {
			sc = m.swapchains[i]
		}
		m.projectionViews[i].SubImage = openxr.SwapchainSubImage{
			Swapchain: sc.handle,
			ImageRect: openxr.Rect2Di{
				Extent: openxr.Extent2Di{Width: int32(sc.width), Height: int32(sc.height)}, //nolint:gosec // bounded by runtime limits
			},
		}
		if m.multiview {
			m.projectionViews[i].SubImage.ImageArrayIndex = uint32(i) //nolint:gosec // view count is small
		}
	}

	if m.IsExtensionEnabled(openxr.ExtFoveationFB) && m.IsExtensionEnabled(openxr.ExtFoveationConfigFB) {
		m.setupFoveation()
	} else {
		slogger().Debug("xr: foveation extensions not available")
	}
	return nil
}

func (m *Manager) createSwapchain(info *openxr.SwapchainCreateInfo) error {
	handle, res := m.rt.CreateSwapchain(m.session, info)
	if res.Failed() {
		return m.initError("xrCreateSwapchain", res)
	}
	sc := &swapchain{
		handle:    handle,
		width:     info.Width,
		height:    info.Height,
		arraySize: info.ArraySize,
	}
	m.swapchains = append(m.swapchains, sc)

	images, res := m.rt.EnumerateSwapchainImages(handle)
	if res.Failed() {
		return m.initError("xrEnumerateSwapchainImages", res)
	}
	sc.images = images
	if err := m.graphics.AllocateSwapchainImages(handle, info, images); err != nil {
		return &InitError{Call: msgNoSwapchainImage, Err: fmt.Errorf("swapchain %d: %w", handle, err), Locale: m.opts.locale}
	}
	return nil
}

func (m *Manager) destroySwapchains() {
	for _, sc := range m.swapchains {
		m.graphics.ReleaseSwapchainImages(sc.handle)
		m.check("xrDestroySwapchain", m.rt.DestroySwapchain(sc.handle))
	}
	m.swapchains = nil
	m.configViews = nil
	m.views = nil
	m.projectionViews = nil
}
