// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"slices"

	"github.com/gogpu/xr3d/config"
	"github.com/gogpu/xr3d/xr/openxr"
)

// IsPassthroughSupported reports whether the runtime and the system offer
// camera passthrough.
func (m *Manager) IsPassthroughSupported() bool { return m.passthroughSupported }

// IsPassthroughEnabled reports whether passthrough was requested.
func (m *Manager) IsPassthroughEnabled() bool { return m.passthroughEnabled }

// SetPassthroughEnabled turns camera passthrough on or off. Without
// runtime support the request is remembered but has no effect.
func (m *Manager) SetPassthroughEnabled(on bool) {
	if m.passthroughEnabled == on {
		return
	}
	m.passthroughEnabled = on
	if m.session != 0 {
		m.applyPassthrough(on)
	}
}

func (m *Manager) applyPassthrough(on bool) {
	if !m.passthroughSupported {
		slogger().Debug("xr: passthrough not supported")
		return
	}
	if on {
		if m.passthroughFeature == 0 {
			m.createPassthrough()
		} else {
			m.check("xrPassthroughStartFB", m.rt.PassthroughStart(m.passthroughFeature))
		}
		if m.passthroughLayer == 0 {
			if err := m.createPassthroughLayer(); err != nil {
				slogger().Warn("xr: passthrough layer", "err", err)
			}
		} else {
			m.check("xrPassthroughLayerResumeFB", m.rt.PassthroughLayerResume(m.passthroughLayer))
		}
		return
	}
	if m.passthroughLayer != 0 {
		m.check("xrPassthroughLayerPauseFB", m.rt.PassthroughLayerPause(m.passthroughLayer))
	}
	if m.passthroughFeature != 0 {
		m.check("xrPassthroughPauseFB", m.rt.PassthroughPause(m.passthroughFeature))
	}
}

func (m *Manager) createPassthrough() {
	feature, res := m.rt.CreatePassthrough(m.session, openxr.PassthroughIsRunningAtCreation)
	if !m.check("xrCreatePassthroughFB", res) {
		return
	}
	m.passthroughFeature = feature
}

func (m *Manager) createPassthroughLayer() error {
	if m.passthroughFeature == 0 {
		m.createPassthrough()
		if m.passthroughFeature == 0 {
			return resultError("xrCreatePassthroughFB", openxr.ErrorRuntimeFailure)
		}
	}
	layer, res := m.rt.CreatePassthroughLayer(m.session, &openxr.PassthroughLayerCreateInfo{
		Passthrough: m.passthroughFeature,
		Flags:       openxr.PassthroughIsRunningAtCreation,
		Purpose:     openxr.PassthroughLayerPurposeReconstruction,
	})
	if res.Failed() {
		return resultError("xrCreatePassthroughLayerFB", res)
	}
	m.passthroughLayer = layer
	return nil
}

// SetSamples sets the MSAA sample count of later render targets.
func (m *Manager) SetSamples(n int) { m.samples = max(n, 1) }

// Samples returns the MSAA sample count of the render targets.
func (m *Manager) Samples() int { return m.samples }

// setupFoveation applies the configured fixed foveation to every
// swapchain.
func (m *Manager) setupFoveation() {
	for _, sc := range m.swapchains {
		profile, res := m.rt.CreateFoveationProfile(m.session, m.opts.foveation, 0, false)
		if res == openxr.ErrorFunctionUnsupported {
			slogger().Debug("xr: foveation functions unavailable")
			return
		}
		if !m.check("xrCreateFoveationProfileFB", res) {
			return
		}
		m.check("xrUpdateSwapchainFB", m.rt.UpdateSwapchainFoveation(sc.handle, profile))
		m.check("xrDestroyFoveationProfileFB", m.rt.DestroyFoveationProfile(profile))
	}
}

func (m *Manager) setupColorSpace() {
	spaces, res := m.rt.EnumerateColorSpaces(m.session)
	if res == openxr.ErrorFunctionUnsupported {
		slogger().Debug("xr: color space functions unavailable")
		return
	}
	if !m.check("xrEnumerateColorSpacesFB", res) {
		return
	}
	slogger().Debug("xr: color spaces", "available", spaces)
	if !slices.Contains(spaces, openxr.ColorSpaceQuest) {
		return
	}
	m.check("xrSetColorSpaceFB", m.rt.SetColorSpace(m.session, openxr.ColorSpaceQuest))
}

func (m *Manager) setupRefreshRate() {
	rates, res := m.rt.EnumerateDisplayRefreshRates(m.session)
	if res == openxr.ErrorFunctionUnsupported {
		slogger().Debug("xr: display refresh rate functions unavailable")
		return
	}
	if !m.check("xrEnumerateDisplayRefreshRatesFB", res) {
		return
	}
	if current, res := m.rt.GetDisplayRefreshRate(m.session); res.Succeeded() {
		slogger().Debug("xr: display refresh rates", "available", rates, "current", current)
	}
	rate := m.opts.refreshRate
	if rate != 0 && !slices.Contains(rates, rate) {
		slogger().Warn("xr: refresh rate not offered, using system default", "requested", rate)
		rate = 0
	}
	m.check("xrRequestDisplayRefreshRateFB", m.rt.RequestDisplayRefreshRate(m.session, rate))
}

// ApplyConfig applies the settings that can change while the session runs:
// the reference space, passthrough and the sample count. Other fields need
// a new Initialize.
func (m *Manager) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.XR.ReferenceSpace != "" {
		t, err := openxr.ParseReferenceSpace(cfg.XR.ReferenceSpace)
		if err != nil {
			return err
		}
		m.SetRequestedReferenceSpace(t)
	}
	m.SetPassthroughEnabled(cfg.XR.Passthrough)
	if cfg.XR.Samples > 0 {
		m.SetSamples(cfg.XR.Samples)
	}
	return nil
}
