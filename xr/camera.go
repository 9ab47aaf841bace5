// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/xr3d/render"
	"github.com/gogpu/xr3d/xr/openxr"
)

// SceneUnitsPerMeter converts runtime poses (metres) to scene units
// (centimetres).
const SceneUnitsPerMeter = 100

// Default clip planes of eye cameras, in scene units.
const (
	DefaultNearPlane = 1
	DefaultFarPlane  = 10000
)

// Camera is a position and orientation in scene units.
type Camera struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

// Transform returns the camera-to-scene matrix.
func (c *Camera) Transform() mgl32.Mat4 {
	p := c.Position
	return mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(c.Rotation.Normalize().Mat4())
}

func (c *Camera) setPose(pose openxr.Posef) {
	c.Position = pose.Position.Mul(SceneUnitsPerMeter)
	c.Rotation = pose.Orientation
}

// EyeCamera is the camera of one view.
type EyeCamera struct {
	Camera
	Fov       openxr.Fov
	NearPlane float32
	FarPlane  float32
}

// Projection returns the asymmetric projection for the eye FOV with a
// [0, 1] depth range.
func (c *EyeCamera) Projection() mgl32.Mat4 {
	return ProjectionFromFov(c.Fov, c.NearPlane, c.FarPlane)
}

// View returns the scene-to-eye matrix.
func (c *EyeCamera) View() mgl32.Mat4 { return c.Transform().Inv() }

// ProjectionFromFov builds a right-handed off-axis projection matrix from
// the four FOV half-angles.
func ProjectionFromFov(fov openxr.Fov, near, far float32) mgl32.Mat4 {
	tanLeft := math32.Tan(fov.AngleLeft)
	tanRight := math32.Tan(fov.AngleRight)
	tanDown := math32.Tan(fov.AngleDown)
	tanUp := math32.Tan(fov.AngleUp)

	tanWidth := tanRight - tanLeft
	tanHeight := tanUp - tanDown

	var m mgl32.Mat4
	m[0] = 2 / tanWidth
	m[5] = 2 / tanHeight
	m[8] = (tanRight + tanLeft) / tanWidth
	m[9] = (tanUp + tanDown) / tanHeight
	m[10] = -far / (far - near)
	m[11] = -1
	m[14] = -(far * near) / (far - near)
	return m
}

// Origin is the XR origin node of the scene: the head camera and one eye
// camera per view, all relative to Position.
type Origin struct {
	// Position is the origin in scene units; tracked poses are added to it.
	Position mgl32.Vec3

	// Camera follows the head.
	Camera Camera

	Eyes []EyeCamera

	NearPlane float32
	FarPlane  float32

	destroyed bool
}

// NewOrigin returns an origin at the scene origin with default clip
// planes.
func NewOrigin() *Origin {
	return &Origin{
		Camera:    Camera{Rotation: mgl32.QuatIdent()},
		NearPlane: DefaultNearPlane,
		FarPlane:  DefaultFarPlane,
	}
}

// Destroy detaches the origin from the scene. The manager reports the
// loss on the next frame.
func (o *Origin) Destroy() { o.destroyed = true }

// Destroyed reports whether Destroy was called.
func (o *Origin) Destroyed() bool { return o.destroyed }

func (o *Origin) setHead(pose openxr.Posef) {
	o.Camera.setPose(pose)
	o.Camera.Position = o.Camera.Position.Add(o.Position)
}

// updateEye sets eye i from a located view, growing Eyes as needed.
func (o *Origin) updateEye(i int, view openxr.View) {
	for len(o.Eyes) <= i {
		o.Eyes = append(o.Eyes, EyeCamera{Camera: Camera{Rotation: mgl32.QuatIdent()}})
	}
	eye := &o.Eyes[i]
	eye.setPose(view.Pose)
	eye.Position = eye.Position.Add(o.Position)
	eye.Fov = view.Fov
	eye.NearPlane = o.NearPlane
	eye.FarPlane = o.FarPlane
}

// EyeView returns eye i in the form scene renderers consume.
func (o *Origin) EyeView(i int) render.EyeView {
	eye := &o.Eyes[i]
	return render.EyeView{
		Index:      i,
		View:       eye.View(),
		Projection: eye.Projection(),
		Position:   eye.Position,
	}
}

// Origin returns the scene origin, or nil when none was found.
func (m *Manager) Origin() *Origin { return m.origin }

// activeOrigin returns the scene origin or, without one, a detached
// origin so eye cameras can still be computed.
func (m *Manager) activeOrigin() *Origin {
	if m.origin != nil {
		return m.origin
	}
	return m.fallbackOrigin
}

// checkOrigin looks for the scene origin and reports discovery and loss.
func (m *Manager) checkOrigin() {
	if m.origin != nil && m.origin.Destroyed() {
		m.origin = nil
		m.Signals.OriginChanged.emit(nil)
	}
	if m.origin != nil || m.opts.scene == nil {
		return
	}
	if o := m.opts.scene.FindOrigin(); o != nil && !o.Destroyed() {
		m.origin = o
		m.Signals.OriginChanged.emit(o)
	}
}
