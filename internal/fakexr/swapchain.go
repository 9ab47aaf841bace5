// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fakexr

import (
	"slices"

	"github.com/gogpu/xr3d/xr/openxr"
)

// EnumerateSwapchainFormats implements openxr.Runtime.
func (r *Runtime) EnumerateSwapchainFormats(openxr.Session) ([]int64, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateSwapchainFormats"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.Formats), openxr.Success
}

// CreateSwapchain implements openxr.Runtime.
func (r *Runtime) CreateSwapchain(_ openxr.Session, info *openxr.SwapchainCreateInfo) (openxr.Swapchain, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateSwapchain"); res.Failed() {
		return 0, res
	}
	if !slices.Contains(r.Formats, info.Format) {
		return 0, openxr.ErrorSwapchainFormatUnsupported
	}
	sc := openxr.Swapchain(r.newHandle("swapchain"))
	st := &swapchainState{info: *info}
	for range r.ImagesPerChain {
		st.images = append(st.images, openxr.SwapchainImage{Image: 0x1000 + r.nextHandle*16 + uint64(len(st.images))})
	}
	r.swapchains[sc] = st
	return sc, openxr.Success
}

// DestroySwapchain implements openxr.Runtime.
func (r *Runtime) DestroySwapchain(sc openxr.Swapchain) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroySwapchain"); res.Failed() {
		return res
	}
	return r.destroy(uint64(sc), "swapchain")
}

// EnumerateSwapchainImages implements openxr.Runtime.
func (r *Runtime) EnumerateSwapchainImages(sc openxr.Swapchain) ([]openxr.SwapchainImage, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateSwapchainImages"); res.Failed() {
		return nil, res
	}
	st, ok := r.swapchains[sc]
	if !ok {
		return nil, openxr.ErrorHandleInvalid
	}
	return slices.Clone(st.images), openxr.Success
}

// AcquireSwapchainImage implements openxr.Runtime. Images are handed out
// round robin; acquiring twice without a release is a call order error.
func (r *Runtime) AcquireSwapchainImage(sc openxr.Swapchain) (uint32, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrAcquireSwapchainImage"); res.Failed() {
		return 0, res
	}
	st, ok := r.swapchains[sc]
	if !ok {
		return 0, openxr.ErrorHandleInvalid
	}
	if st.acquired {
		return 0, openxr.ErrorCallOrderInvalid
	}
	st.acquired = true
	idx := st.next % uint32(len(st.images)) //nolint:gosec // image count is small
	st.next++
	return idx, openxr.Success
}

// WaitSwapchainImage implements openxr.Runtime.
func (r *Runtime) WaitSwapchainImage(sc openxr.Swapchain, _ openxr.Duration) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrWaitSwapchainImage"); res.Failed() {
		return res
	}
	st, ok := r.swapchains[sc]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	if !st.acquired || st.waited {
		return openxr.ErrorCallOrderInvalid
	}
	st.waited = true
	return openxr.Success
}

// ReleaseSwapchainImage implements openxr.Runtime.
func (r *Runtime) ReleaseSwapchainImage(sc openxr.Swapchain) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrReleaseSwapchainImage"); res.Failed() {
		return res
	}
	st, ok := r.swapchains[sc]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	if !st.waited {
		return openxr.ErrorCallOrderInvalid
	}
	st.acquired, st.waited = false, false
	return openxr.Success
}

// WaitFrame implements openxr.Runtime.
func (r *Runtime) WaitFrame(openxr.Session) (openxr.FrameState, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrWaitFrame"); res.Failed() {
		return openxr.FrameState{}, res
	}
	if len(r.frameTimes) > 0 {
		r.time = r.frameTimes[0]
		r.frameTimes = r.frameTimes[1:]
	} else {
		r.time += openxr.Time(r.DisplayPeriod)
	}
	return openxr.FrameState{
		PredictedDisplayTime:   r.time,
		PredictedDisplayPeriod: r.DisplayPeriod,
		ShouldRender:           r.ShouldRender,
	}, openxr.Success
}

// BeginFrame implements openxr.Runtime.
func (r *Runtime) BeginFrame(openxr.Session) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.call("xrBeginFrame")
}

// EndFrame implements openxr.Runtime.
func (r *Runtime) EndFrame(_ openxr.Session, info *openxr.FrameEndInfo) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEndFrame"); res.Failed() {
		return res
	}
	frame := *info
	frame.Layers = slices.Clone(info.Layers)
	r.frames = append(r.frames, frame)
	return openxr.Success
}
