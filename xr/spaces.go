// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"slices"

	"github.com/gogpu/xr3d/xr/openxr"
)

func (m *Manager) checkReferenceSpaces() {
	spaces, res := m.rt.EnumerateReferenceSpaces(m.session)
	if !m.check("xrEnumerateReferenceSpaces", res) {
		spaces = nil
	}
	m.availableSpaces = spaces
	slogger().Debug("xr: available reference spaces", "count", len(spaces), "spaces", spaces)
}

func (m *Manager) isReferenceSpaceAvailable(t openxr.ReferenceSpaceType) bool {
	return slices.Contains(m.availableSpaces, t)
}

// AvailableReferenceSpaces returns the spaces the runtime advertised.
func (m *Manager) AvailableReferenceSpaces() []openxr.ReferenceSpaceType {
	return slices.Clone(m.availableSpaces)
}

// SetRequestedReferenceSpace asks for a new application space. The app
// space is rebuilt at the start of the next rendered frame.
func (m *Manager) SetRequestedReferenceSpace(t openxr.ReferenceSpaceType) {
	m.requestedSpace = t
}

// RequestedReferenceSpace returns the last requested space.
func (m *Manager) RequestedReferenceSpace() openxr.ReferenceSpaceType { return m.requestedSpace }

// ReferenceSpace returns the space the app space currently uses. While a
// LOCAL_FLOOR emulation is pending this is LOCAL.
func (m *Manager) ReferenceSpace() openxr.ReferenceSpaceType { return m.referenceSpace }

// IsEmulatingLocalFloor reports whether LOCAL_FLOOR is synthesized from
// LOCAL and the STAGE floor height.
func (m *Manager) IsEmulatingLocalFloor() bool { return m.emulatingLocalFloor }

// IsFloorResetPending reports whether the emulated floor still waits for
// its first tracked frame.
func (m *Manager) IsFloorResetPending() bool { return m.floorResetPending }

// AppSpace returns the application space handle.
func (m *Manager) AppSpace() openxr.Space { return m.appSpace }

// ViewSpace returns the head space handle.
func (m *Manager) ViewSpace() openxr.Space { return m.viewSpace }

// setupAppSpace creates the app space for the requested reference space,
// falling back to LOCAL. A LOCAL_FLOOR request on a runtime with only STAGE
// starts the emulation; the change signal is then deferred until the
// floor height is known.
func (m *Manager) setupAppSpace() error {
	var next openxr.ReferenceSpaceType
	m.emulatingLocalFloor = false

	switch {
	case m.isReferenceSpaceAvailable(m.requestedSpace):
		next = m.requestedSpace
	case m.requestedSpace == openxr.ReferenceSpaceLocalFloor &&
		m.isReferenceSpaceAvailable(openxr.ReferenceSpaceStage):
		m.emulatingLocalFloor = true
		m.floorResetPending = true
		next = openxr.ReferenceSpaceLocal
	default:
		slogger().Warn("xr: requested reference space is not available",
			"requested", m.requestedSpace, "using", openxr.ReferenceSpaceLocal)
		next = openxr.ReferenceSpaceLocal
		// Settle the request so later frames do not retry it.
		m.requestedSpace = next
	}

	space, res := m.rt.CreateReferenceSpace(m.session, next, openxr.IdentityPose())
	if res.Failed() {
		slogger().Warn("xr: failed to create app space", "space", next, "result", res)
		return m.initError("xrCreateReferenceSpace", res)
	}
	if m.appSpace != 0 {
		m.check("xrDestroySpace", m.rt.DestroySpace(m.appSpace))
	}
	m.appSpace = space
	m.referenceSpace = next

	if !m.floorResetPending {
		m.Signals.ReferenceSpaceChanged.emit(m.referenceSpace)
	}
	return nil
}

func (m *Manager) setupViewSpace() error {
	space, res := m.rt.CreateReferenceSpace(m.session, openxr.ReferenceSpaceView, openxr.IdentityPose())
	if res.Failed() {
		slogger().Warn("xr: failed to create view space", "result", res)
		return m.initError("xrCreateReferenceSpace", res)
	}
	if m.viewSpace != 0 {
		m.check("xrDestroySpace", m.rt.DestroySpace(m.viewSpace))
	}
	m.viewSpace = space
	return nil
}

// updateAppSpace reconciles the app space with the request before views
// are located.
func (m *Manager) updateAppSpace(displayTime openxr.Time) {
	if m.requestedSpace != m.referenceSpace && !m.floorResetPending {
		if err := m.setupAppSpace(); err != nil {
			slogger().Warn("xr: setting requested reference space failed",
				"requested", m.requestedSpace, "current", m.referenceSpace)
			m.requestedSpace = m.referenceSpace
			return
		}
	}

	if m.floorResetPending {
		if !m.resetEmulatedFloorHeight(displayTime) {
			// Give up on the emulation; LOCAL is already in place.
			m.emulatingLocalFloor = false
			m.requestedSpace = openxr.ReferenceSpaceLocal
			m.Signals.ReferenceSpaceChanged.emit(m.referenceSpace)
		}
	}
}

// resetEmulatedFloorHeight moves the LOCAL app space down to the STAGE
// floor. It runs once; failure leaves the LOCAL app space in place.
func (m *Manager) resetEmulatedFloorHeight(displayTime openxr.Time) bool {
	m.floorResetPending = false

	local, res := m.rt.CreateReferenceSpace(m.session, openxr.ReferenceSpaceLocal, openxr.IdentityPose())
	if res.Failed() {
		slogger().Warn("xr: failed to create local space for emulated local floor", "result", res)
		return false
	}
	defer m.rt.DestroySpace(local) //nolint:errcheck // scratch space

	stage, res := m.rt.CreateReferenceSpace(m.session, openxr.ReferenceSpaceStage, openxr.IdentityPose())
	if res.Failed() {
		slogger().Warn("xr: failed to create stage space for emulated local floor", "result", res)
		return false
	}
	defer m.rt.DestroySpace(stage) //nolint:errcheck // scratch space

	loc, res := m.rt.LocateSpace(stage, local, displayTime)
	if res.Failed() {
		slogger().Warn("xr: failed to locate stage in local space for emulated local floor", "result", res)
		return false
	}

	pose := openxr.IdentityPose()
	pose.Position[1] = loc.Pose.Position.Y()
	space, res := m.rt.CreateReferenceSpace(m.session, openxr.ReferenceSpaceLocal, pose)
	if res.Failed() {
		slogger().Warn("xr: failed to recreate emulated local floor space", "result", res)
		return false
	}

	m.check("xrDestroySpace", m.rt.DestroySpace(m.appSpace))
	m.appSpace = space
	m.referenceSpace = openxr.ReferenceSpaceLocalFloor
	slogger().Debug("xr: emulated local floor", "floorY", pose.Position.Y())
	m.Signals.ReferenceSpaceChanged.emit(m.referenceSpace)
	return true
}
