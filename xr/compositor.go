// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"
	"slices"

	"github.com/gogpu/xr3d/render"
	"github.com/gogpu/xr3d/xr/openxr"
)

// FrameResult describes one RenderFrame for diagnostics. Per-frame
// failures never stop the loop; the first one is kept in Err.
type FrameResult struct {
	DisplayTime  openxr.Time
	ShouldRender bool

	// Rendered is set when the projection layer was submitted.
	Rendered bool
	// Layers is the number of submitted composition layers.
	Layers    int
	BlendMode openxr.EnvironmentBlendMode

	Err error
}

// projectionLayerFlags are set on every projection layer.
const projectionLayerFlags = openxr.LayerBlendTextureSourceAlpha |
	openxr.LayerCorrectChromaticAberration |
	openxr.LayerUnpremultipliedAlpha

// RenderFrame waits for the next display time, renders the views when
// the runtime asks for it and submits the frame.
func (m *Manager) RenderFrame() FrameResult {
	var result FrameResult
	if !m.state.HasSession() {
		result.Err = ErrNotInitialized
		return result
	}
	fail := func(err error) {
		slogger().Warn("xr: frame", "err", err)
		if result.Err == nil {
			result.Err = err
		}
	}

	state, res := m.rt.WaitFrame(m.session)
	if res.Failed() {
		fail(resultError("xrWaitFrame", res))
		return result
	}
	result.DisplayTime = state.PredictedDisplayTime
	result.ShouldRender = state.ShouldRender

	if res := m.rt.BeginFrame(m.session); res.Failed() {
		fail(resultError("xrBeginFrame", res))
		return result
	}

	layers := make([]openxr.CompositionLayer, 0, 2)
	passthrough := m.passthroughSupported && m.passthroughEnabled
	if passthrough {
		if m.passthroughLayer == 0 {
			if err := m.createPassthroughLayer(); err != nil {
				fail(err)
			}
		}
		if m.passthroughLayer != 0 {
			layers = append(layers, &openxr.CompositionLayerPassthrough{
				Flags:       openxr.LayerBlendTextureSourceAlpha,
				LayerHandle: m.passthroughLayer,
			})
		}
	}

	if state.ShouldRender {
		layer, err := m.renderLayer(state)
		if err != nil {
			fail(err)
		} else {
			layers = append(layers, layer)
			result.Rendered = true
		}
	}

	result.BlendMode = m.blendMode
	if passthrough {
		result.BlendMode = openxr.BlendModeOpaque
	}
	res = m.rt.EndFrame(m.session, &openxr.FrameEndInfo{
		DisplayTime:          state.PredictedDisplayTime,
		EnvironmentBlendMode: result.BlendMode,
		Layers:               layers,
	})
	if res.Failed() {
		fail(resultError("xrEndFrame", res))
		result.Rendered = false
		return result
	}
	result.Layers = len(layers)
	m.frameIndex++
	return result
}

// renderLayer locates the views, renders every swapchain image and
// returns the projection layer.
func (m *Manager) renderLayer(state openxr.FrameState) (*openxr.CompositionLayerProjection, error) {
	t := state.PredictedDisplayTime
	m.updateAppSpace(t)

	_, views, res := m.rt.LocateViews(m.session, &openxr.ViewLocateInfo{
		ViewConfigurationType: m.viewConfigType,
		DisplayTime:           t,
		Space:                 m.appSpace,
	})
	if !res.Unqualified() {
		slogger().Debug("xr: xrLocateViews returned qualified result", "result", res)
		return nil, resultError("xrLocateViews", res)
	}
	if len(views) != len(m.configViews) {
		return nil, fmt.Errorf("%w: %d located, %d configured", ErrViewCountMismatch, len(views), len(m.configViews))
	}
	copy(m.views, views)

	m.checkOrigin()
	origin := m.activeOrigin()

	loc, res := m.rt.LocateSpace(m.viewSpace, m.appSpace, t)
	if res.Succeeded() && loc.Flags&openxr.SpaceLocationPositionValid != 0 {
		origin.setHead(loc.Pose)
	} else {
		slogger().Debug("xr: head pose unavailable", "result", res)
	}

	if m.inputReady {
		m.opts.input.UpdatePoses(t, m.appSpace)
		if m.handTracking {
			m.opts.input.UpdateHandTracking(t, m.appSpace, m.handTrackingAim)
		}
	}
	if m.spaceExtReady {
		m.opts.spaceExt.UpdateAnchors(t, m.appSpace)
	}

	m.clock.Advance(t, state.PredictedDisplayPeriod)

	if m.opts.capture != nil {
		m.opts.capture.BeginFrame(m.frameIndex)
	}
	var err error
	if m.multiview {
		err = m.renderMultiview(state, origin)
	} else {
		err = m.renderPerEye(state, origin)
	}
	if err != nil {
		return nil, err
	}

	return &openxr.CompositionLayerProjection{
		Flags: projectionLayerFlags,
		Space: m.appSpace,
		Views: slices.Clone(m.projectionViews),
	}, nil
}

func (m *Manager) renderMultiview(state openxr.FrameState, origin *Origin) error {
	sc := m.swapchains[0]
	image, err := sc.acquire(m.rt)
	if err != nil {
		return err
	}
	if err := sc.wait(m.rt); err != nil {
		_ = sc.release(m.rt)
		return err
	}

	eyes := make([]render.EyeView, len(m.views))
	for i, v := range m.views {
		m.projectionViews[i].Pose = v.Pose
		m.projectionViews[i].Fov = v.Fov
		origin.updateEye(i, v)
		eyes[i] = origin.EyeView(i)
	}

	// All layers share the extent of the first sub-image.
	renderErr := m.doRender(-1, m.projectionViews[0].SubImage, image, eyes, state)
	if err := sc.release(m.rt); err != nil {
		return err
	}
	return renderErr
}

func (m *Manager) renderPerEye(state openxr.FrameState, origin *Origin) error {
	for i, v := range m.views {
		sc := m.swapchains[i]
		image, err := sc.acquire(m.rt)
		if err != nil {
			return err
		}
		if err := sc.wait(m.rt); err != nil {
			_ = sc.release(m.rt)
			return err
		}

		pv := &m.projectionViews[i]
		pv.SubImage.Swapchain = sc.handle
		pv.SubImage.ImageArrayIndex = 0
		pv.Pose = v.Pose
		pv.Fov = v.Fov
		origin.updateEye(i, v)

		renderErr := m.doRender(i, pv.SubImage, image, []render.EyeView{origin.EyeView(i)}, state)
		if err := sc.release(m.rt); err != nil {
			return err
		}
		if renderErr != nil {
			return renderErr
		}
	}
	return nil
}

// doRender hands the target to the scene renderer and announces the
// finished color buffer. view is -1 for multiview.
func (m *Manager) doRender(view int, sub openxr.SwapchainSubImage, image uint32, eyes []render.EyeView, state openxr.FrameState) error {
	arraySize := 1
	if m.multiview {
		arraySize = int(m.swapchains[0].arraySize)
	}
	target, err := m.graphics.RenderTarget(sub, image, m.samples, arraySize)
	if err != nil {
		return fmt.Errorf("render target: %w", err)
	}

	frame := &render.Frame{
		Target:      target,
		Views:       eyes,
		Time:        m.clock.Elapsed(),
		Delta:       m.clock.Step(),
		DisplayTime: int64(state.PredictedDisplayTime),
	}
	buf := render.ColorBuffer{Target: &frame.Target}
	if m.opts.renderer != nil {
		buf, err = m.opts.renderer.RenderFrame(frame)
		if err != nil {
			return fmt.Errorf("render view %d: %w", view, err)
		}
	}

	m.Signals.FrameReady.emit(FrameReadyEvent{View: view, Target: target, Buffer: buf})
	if m.opts.capture != nil {
		if err := m.opts.capture.Capture(view, buf); err != nil {
			slogger().Warn("xr: frame capture failed", "err", err)
		}
	}
	return nil
}
