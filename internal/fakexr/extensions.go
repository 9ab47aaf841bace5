// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fakexr

import (
	"slices"

	"github.com/gogpu/xr3d/xr/openxr"
)

// EnumerateColorSpaces implements openxr.Runtime.
func (r *Runtime) EnumerateColorSpaces(openxr.Session) ([]openxr.ColorSpace, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateColorSpacesFB"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.ColorSpaces), openxr.Success
}

// SetColorSpace implements openxr.Runtime.
func (r *Runtime) SetColorSpace(_ openxr.Session, cs openxr.ColorSpace) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrSetColorSpaceFB"); res.Failed() {
		return res
	}
	r.colorSpace = cs
	return openxr.Success
}

// EnumerateDisplayRefreshRates implements openxr.Runtime.
func (r *Runtime) EnumerateDisplayRefreshRates(openxr.Session) ([]float32, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateDisplayRefreshRatesFB"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.RefreshRates), openxr.Success
}

// GetDisplayRefreshRate implements openxr.Runtime.
func (r *Runtime) GetDisplayRefreshRate(openxr.Session) (float32, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetDisplayRefreshRateFB"); res.Failed() {
		return 0, res
	}
	return r.refreshRate, openxr.Success
}

// RequestDisplayRefreshRate implements openxr.Runtime. Zero selects the
// system default (the first advertised rate).
func (r *Runtime) RequestDisplayRefreshRate(_ openxr.Session, rate float32) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrRequestDisplayRefreshRateFB"); res.Failed() {
		return res
	}
	if rate == 0 {
		if len(r.RefreshRates) > 0 {
			r.refreshRate = r.RefreshRates[0]
		}
		return openxr.Success
	}
	if !slices.Contains(r.RefreshRates, rate) {
		return openxr.ErrorValidationFailure
	}
	r.refreshRate = rate
	return openxr.Success
}

// CreateFoveationProfile implements openxr.Runtime.
func (r *Runtime) CreateFoveationProfile(openxr.Session, openxr.FoveationLevel, float32, bool) (openxr.FoveationProfile, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateFoveationProfileFB"); res.Failed() {
		return 0, res
	}
	return openxr.FoveationProfile(r.newHandle("foveationProfile")), openxr.Success
}

// DestroyFoveationProfile implements openxr.Runtime.
func (r *Runtime) DestroyFoveationProfile(p openxr.FoveationProfile) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroyFoveationProfileFB"); res.Failed() {
		return res
	}
	return r.destroy(uint64(p), "foveationProfile")
}

// UpdateSwapchainFoveation implements openxr.Runtime.
func (r *Runtime) UpdateSwapchainFoveation(sc openxr.Swapchain, _ openxr.FoveationProfile) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrUpdateSwapchainFB"); res.Failed() {
		return res
	}
	st, ok := r.swapchains[sc]
	if !ok {
		return openxr.ErrorHandleInvalid
	}
	st.foveated = true
	return openxr.Success
}

// CreatePassthrough implements openxr.Runtime.
func (r *Runtime) CreatePassthrough(_ openxr.Session, flags openxr.PassthroughFlags) (openxr.PassthroughFeature, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreatePassthroughFB"); res.Failed() {
		return 0, res
	}
	if flags == 0 {
		return 0, openxr.ErrorValidationFailure
	}
	r.passthroughActive = flags&openxr.PassthroughIsRunningAtCreation != 0
	return openxr.PassthroughFeature(r.newHandle("passthrough")), openxr.Success
}

// DestroyPassthrough implements openxr.Runtime.
func (r *Runtime) DestroyPassthrough(f openxr.PassthroughFeature) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroyPassthroughFB"); res.Failed() {
		return res
	}
	r.passthroughActive = false
	return r.destroy(uint64(f), "passthrough")
}

// PassthroughStart implements openxr.Runtime.
func (r *Runtime) PassthroughStart(openxr.PassthroughFeature) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrPassthroughStartFB"); res.Failed() {
		return res
	}
	r.passthroughActive = true
	return openxr.Success
}

// PassthroughPause implements openxr.Runtime.
func (r *Runtime) PassthroughPause(openxr.PassthroughFeature) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrPassthroughPauseFB"); res.Failed() {
		return res
	}
	r.passthroughActive = false
	return openxr.Success
}

// CreatePassthroughLayer implements openxr.Runtime.
func (r *Runtime) CreatePassthroughLayer(_ openxr.Session, info *openxr.PassthroughLayerCreateInfo) (openxr.PassthroughLayer, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreatePassthroughLayerFB"); res.Failed() {
		return 0, res
	}
	if r.live[uint64(info.Passthrough)] != "passthrough" {
		return 0, openxr.ErrorHandleInvalid
	}
	r.layerActive = info.Flags&openxr.PassthroughIsRunningAtCreation != 0
	return openxr.PassthroughLayer(r.newHandle("passthroughLayer")), openxr.Success
}

// DestroyPassthroughLayer implements openxr.Runtime.
func (r *Runtime) DestroyPassthroughLayer(l openxr.PassthroughLayer) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroyPassthroughLayerFB"); res.Failed() {
		return res
	}
	r.layerActive = false
	return r.destroy(uint64(l), "passthroughLayer")
}

// PassthroughLayerPause implements openxr.Runtime.
func (r *Runtime) PassthroughLayerPause(openxr.PassthroughLayer) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrPassthroughLayerPauseFB"); res.Failed() {
		return res
	}
	r.layerActive = false
	return openxr.Success
}

// PassthroughLayerResume implements openxr.Runtime.
func (r *Runtime) PassthroughLayerResume(openxr.PassthroughLayer) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrPassthroughLayerResumeFB"); res.Failed() {
		return res
	}
	r.layerActive = true
	return openxr.Success
}
