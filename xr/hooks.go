// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import "github.com/gogpu/xr3d/xr/openxr"

// InputManager receives controller and hand tracking work from the
// frame loop. Implementations bind their action sets in Init and release
// them in Teardown.
type InputManager interface {
	Init(instance openxr.Instance, session openxr.Session) error
	PollActions()
	UpdatePoses(displayTime openxr.Time, appSpace openxr.Space)
	UpdateHandTracking(displayTime openxr.Time, appSpace openxr.Space, aimExtension bool)
	Teardown()
}

// SpaceExtension implements spatial anchors and scene capture on top of
// the session.
type SpaceExtension interface {
	// RequiredExtensions lists instance extensions to enable when the
	// runtime offers them.
	RequiredExtensions() []string
	Initialize(instance openxr.Instance, session openxr.Session) error
	HandleEvent(e openxr.EventSpaceEvent)
	UpdateAnchors(displayTime openxr.Time, appSpace openxr.Space)
	Teardown()
}

// OriginFinder locates the XR origin node in the application scene.
type OriginFinder interface {
	// FindOrigin returns the scene origin, or nil when the scene has none.
	FindOrigin() *Origin
}

// OriginFinderFunc adapts a function to OriginFinder.
type OriginFinderFunc func() *Origin

// FindOrigin implements OriginFinder.
func (f OriginFinderFunc) FindOrigin() *Origin { return f() }
