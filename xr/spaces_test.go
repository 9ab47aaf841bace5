// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/xr3d/internal/fakexr"
	"github.com/gogpu/xr3d/xr/openxr"
)

func TestAppSpaceRequestedAvailable(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceStage))
	changed := record(&m.Signals.ReferenceSpaceChanged)
	require.NoError(t, m.Initialize(context.Background()))

	assert.Equal(t, openxr.ReferenceSpaceStage, m.ReferenceSpace())
	assert.False(t, m.IsEmulatingLocalFloor())
	assert.Equal(t, []openxr.ReferenceSpaceType{openxr.ReferenceSpaceStage}, changed.got)
	assert.ElementsMatch(t, rt.ReferenceSpaces, m.AvailableReferenceSpaces())

	kind, _, ok := rt.SpaceType(m.AppSpace())
	require.True(t, ok)
	assert.Equal(t, openxr.ReferenceSpaceStage, kind)
	kind, _, ok = rt.SpaceType(m.ViewSpace())
	require.True(t, ok)
	assert.Equal(t, openxr.ReferenceSpaceView, kind)
}

func TestAppSpaceFallsBackToLocal(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceUnboundedMSFT))
	changed := record(&m.Signals.ReferenceSpaceChanged)
	startSession(t, m, rt)

	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.RequestedReferenceSpace())
	assert.Equal(t, []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocal}, changed.got)

	// The settled request is not retried on later frames.
	before := rt.CallCount("xrCreateReferenceSpace")
	for range 3 {
		_, res := m.Tick()
		require.NoError(t, res.Err)
	}
	assert.Equal(t, before, rt.CallCount("xrCreateReferenceSpace"))
	assert.Len(t, changed.got, 1)
}

func TestEmulatedLocalFloor(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceLocalFloor))
	changed := record(&m.Signals.ReferenceSpaceChanged)
	startSession(t, m, rt)

	// Until the first frame the app space is plain LOCAL and nothing is
	// announced.
	assert.True(t, m.IsEmulatingLocalFloor())
	assert.True(t, m.IsFloorResetPending())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())
	assert.Empty(t, changed.got)

	_, res := m.Tick()
	require.NoError(t, res.Err)

	assert.False(t, m.IsFloorResetPending())
	assert.True(t, m.IsEmulatingLocalFloor())
	assert.Equal(t, openxr.ReferenceSpaceLocalFloor, m.ReferenceSpace())
	assert.Equal(t, []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocalFloor}, changed.got)

	kind, offset, ok := rt.SpaceType(m.AppSpace())
	require.True(t, ok)
	assert.Equal(t, openxr.ReferenceSpaceLocal, kind)
	assert.InDelta(t, rt.StageHeight, offset.Position.Y(), 1e-5)

	// Scratch LOCAL and STAGE spaces are gone; app and view space remain.
	assert.Equal(t, 2, rt.Live()["space"])

	_, res = m.Tick()
	require.NoError(t, res.Err)
	assert.Len(t, changed.got, 1)
}

func TestEmulatedLocalFloorLocateFailure(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceLocalFloor))
	changed := record(&m.Signals.ReferenceSpaceChanged)
	startSession(t, m, rt)
	rt.Fail("xrLocateSpace", openxr.ErrorRuntimeFailure)

	_, res := m.Tick()
	require.NoError(t, res.Err)

	assert.False(t, m.IsFloorResetPending())
	assert.False(t, m.IsEmulatingLocalFloor())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.RequestedReferenceSpace())
	assert.Equal(t, []openxr.ReferenceSpaceType{openxr.ReferenceSpaceLocal}, changed.got)
	assert.Equal(t, 2, rt.Live()["space"])

	// No retry on later frames.
	creates := rt.CallCount("xrCreateReferenceSpace")
	_, res = m.Tick()
	require.NoError(t, res.Err)
	assert.Equal(t, creates, rt.CallCount("xrCreateReferenceSpace"))
	assert.Len(t, changed.got, 1)
}

func TestEmulatedLocalFloorWithoutStage(t *testing.T) {
	rt := fakexr.New()
	rt.ReferenceSpaces = []openxr.ReferenceSpaceType{openxr.ReferenceSpaceView, openxr.ReferenceSpaceLocal}
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceLocalFloor))
	require.NoError(t, m.Initialize(context.Background()))

	assert.False(t, m.IsEmulatingLocalFloor())
	assert.False(t, m.IsFloorResetPending())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())
}

func TestNativeLocalFloor(t *testing.T) {
	rt := fakexr.New()
	rt.ReferenceSpaces = append(rt.ReferenceSpaces, openxr.ReferenceSpaceLocalFloor)
	m := newTestManager(t, rt, WithReferenceSpace(openxr.ReferenceSpaceLocalFloor))
	require.NoError(t, m.Initialize(context.Background()))

	assert.False(t, m.IsEmulatingLocalFloor())
	assert.Equal(t, openxr.ReferenceSpaceLocalFloor, m.ReferenceSpace())
}

func TestRequestedReferenceSpaceChange(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt)
	changed := record(&m.Signals.ReferenceSpaceChanged)
	startSession(t, m, rt)

	m.SetRequestedReferenceSpace(openxr.ReferenceSpaceStage)
	// Nothing changes until the next rendered frame.
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())

	_, res := m.Tick()
	require.NoError(t, res.Err)
	assert.Equal(t, openxr.ReferenceSpaceStage, m.ReferenceSpace())
	assert.Equal(t, []openxr.ReferenceSpaceType{
		openxr.ReferenceSpaceLocal,
		openxr.ReferenceSpaceStage,
	}, changed.got)
	assert.Equal(t, 2, rt.Live()["space"])

	frames := rt.Frames()
	require.NotEmpty(t, frames)
	last := frames[len(frames)-1]
	require.Len(t, last.Layers, 1)
	proj, ok := last.Layers[0].(*openxr.CompositionLayerProjection)
	require.True(t, ok)
	assert.Equal(t, m.AppSpace(), proj.Space)
}

func TestRequestedReferenceSpaceFailureReverts(t *testing.T) {
	rt := fakexr.New()
	m := newTestManager(t, rt)
	changed := record(&m.Signals.ReferenceSpaceChanged)
	startSession(t, m, rt)
	app := m.AppSpace()

	rt.Fail("xrCreateReferenceSpace", openxr.ErrorRuntimeFailure)
	m.SetRequestedReferenceSpace(openxr.ReferenceSpaceStage)
	_, res := m.Tick()
	require.NoError(t, res.Err)

	assert.Equal(t, openxr.ReferenceSpaceLocal, m.ReferenceSpace())
	assert.Equal(t, openxr.ReferenceSpaceLocal, m.RequestedReferenceSpace())
	assert.Equal(t, app, m.AppSpace())
	assert.Len(t, changed.got, 1)
}
