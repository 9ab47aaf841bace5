// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package fakexr

import (
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/xr3d/xr/openxr"
)

// EnumerateAPILayerProperties implements openxr.Runtime.
func (r *Runtime) EnumerateAPILayerProperties() ([]openxr.APILayerProperties, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateApiLayerProperties"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.Layers), openxr.Success
}

// EnumerateInstanceExtensionProperties implements openxr.Runtime. Layers
// provide no extensions of their own.
func (r *Runtime) EnumerateInstanceExtensionProperties(layerName string) ([]openxr.ExtensionProperties, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateInstanceExtensionProperties"); res.Failed() {
		return nil, res
	}
	if layerName != "" {
		return nil, openxr.Success
	}
	return slices.Clone(r.Extensions), openxr.Success
}

// CreateInstance implements openxr.Runtime. Unknown extensions fail with
// ErrorExtensionNotPresent.
func (r *Runtime) CreateInstance(info *openxr.InstanceCreateInfo) (openxr.Instance, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateInstance"); res.Failed() {
		return 0, res
	}
	for _, ext := range info.Extensions {
		if !openxr.HasExtension(r.Extensions, ext) {
			return 0, openxr.ErrorExtensionNotPresent
		}
	}
	for _, layer := range info.EnabledLayers {
		if !openxr.HasAPILayer(r.Layers, layer) {
			return 0, openxr.ErrorAPILayerNotPresent
		}
	}
	r.instance = openxr.Instance(r.newHandle("instance"))
	return r.instance, openxr.Success
}

// DestroyInstance implements openxr.Runtime.
func (r *Runtime) DestroyInstance(instance openxr.Instance) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroyInstance"); res.Failed() {
		return res
	}
	return r.destroy(uint64(instance), "instance")
}

// GetInstanceProperties implements openxr.Runtime.
func (r *Runtime) GetInstanceProperties(openxr.Instance) (openxr.InstanceProperties, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetInstanceProperties"); res.Failed() {
		return openxr.InstanceProperties{}, res
	}
	return openxr.InstanceProperties{RuntimeName: r.Name, RuntimeVersion: r.Version}, openxr.Success
}

// PollEvent implements openxr.Runtime.
func (r *Runtime) PollEvent(openxr.Instance) (openxr.Event, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrPollEvent"); res.Failed() {
		return nil, res
	}
	if len(r.events) == 0 {
		return nil, openxr.EventUnavailable
	}
	e := r.events[0]
	r.events = r.events[1:]
	return e, openxr.Success
}

// CreateDebugMessenger implements openxr.Runtime.
func (r *Runtime) CreateDebugMessenger(_ openxr.Instance, info *openxr.DebugMessengerCreateInfo) (openxr.DebugMessenger, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateDebugUtilsMessengerEXT"); res.Failed() {
		return 0, res
	}
	r.debugCallback = info.Callback
	return openxr.DebugMessenger(r.newHandle("debugMessenger")), openxr.Success
}

// DestroyDebugMessenger implements openxr.Runtime.
func (r *Runtime) DestroyDebugMessenger(m openxr.DebugMessenger) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroyDebugUtilsMessengerEXT"); res.Failed() {
		return res
	}
	r.debugCallback = nil
	return r.destroy(uint64(m), "debugMessenger")
}

// GetSystem implements openxr.Runtime.
func (r *Runtime) GetSystem(_ openxr.Instance, formFactor openxr.FormFactor) (openxr.SystemID, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetSystem"); res.Failed() {
		return 0, res
	}
	if formFactor != openxr.FormFactorHeadMountedDisplay {
		return 0, openxr.ErrorFormFactorUnsupported
	}
	return 1, openxr.Success
}

// GetSystemProperties implements openxr.Runtime.
func (r *Runtime) GetSystemProperties(_ openxr.Instance, system openxr.SystemID) (openxr.SystemProperties, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetSystemProperties"); res.Failed() {
		return openxr.SystemProperties{}, res
	}
	props := r.System
	props.SystemID = system
	return props, openxr.Success
}

// EnumerateViewConfigurations implements openxr.Runtime.
func (r *Runtime) EnumerateViewConfigurations(openxr.Instance, openxr.SystemID) ([]openxr.ViewConfigurationType, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateViewConfigurations"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.ViewConfigs), openxr.Success
}

// GetViewConfigurationProperties implements openxr.Runtime.
func (r *Runtime) GetViewConfigurationProperties(_ openxr.Instance, _ openxr.SystemID, vc openxr.ViewConfigurationType) (openxr.ViewConfigurationProperties, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetViewConfigurationProperties"); res.Failed() {
		return openxr.ViewConfigurationProperties{}, res
	}
	return openxr.ViewConfigurationProperties{ViewConfigurationType: vc}, openxr.Success
}

// EnumerateViewConfigurationViews implements openxr.Runtime.
func (r *Runtime) EnumerateViewConfigurationViews(_ openxr.Instance, _ openxr.SystemID, vc openxr.ViewConfigurationType) ([]openxr.ViewConfigurationView, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateViewConfigurationViews"); res.Failed() {
		return nil, res
	}
	if !slices.Contains(r.ViewConfigs, vc) {
		return nil, openxr.ErrorViewConfigurationTypeUnsupported
	}
	return slices.Clone(r.ConfigViews), openxr.Success
}

// EnumerateEnvironmentBlendModes implements openxr.Runtime.
func (r *Runtime) EnumerateEnvironmentBlendModes(openxr.Instance, openxr.SystemID, openxr.ViewConfigurationType) ([]openxr.EnvironmentBlendMode, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateEnvironmentBlendModes"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.BlendModes), openxr.Success
}

// GetGraphicsRequirements implements openxr.Runtime.
func (r *Runtime) GetGraphicsRequirements(openxr.Instance, openxr.SystemID) (openxr.GraphicsRequirements, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrGetVulkanGraphicsRequirements2KHR"); res.Failed() {
		return openxr.GraphicsRequirements{}, res
	}
	return openxr.GraphicsRequirements{
		MinAPIVersionSupported: openxr.MakeVersion(1, 0, 0),
		MaxAPIVersionSupported: openxr.MakeVersion(1, 3, 0),
	}, openxr.Success
}

// CreateSession implements openxr.Runtime.
func (r *Runtime) CreateSession(_ openxr.Instance, info *openxr.SessionCreateInfo) (openxr.Session, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateSession"); res.Failed() {
		return 0, res
	}
	if info.Binding == nil {
		return 0, openxr.ErrorGraphicsDeviceInvalid
	}
	r.session = openxr.Session(r.newHandle("session"))
	return r.session, openxr.Success
}

// DestroySession implements openxr.Runtime.
func (r *Runtime) DestroySession(session openxr.Session) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroySession"); res.Failed() {
		return res
	}
	r.sessionRunning = false
	return r.destroy(uint64(session), "session")
}

// BeginSession implements openxr.Runtime.
func (r *Runtime) BeginSession(openxr.Session, openxr.ViewConfigurationType) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrBeginSession"); res.Failed() {
		return res
	}
	if r.sessionRunning {
		return openxr.ErrorSessionRunning
	}
	r.sessionRunning = true
	return openxr.Success
}

// EndSession implements openxr.Runtime.
func (r *Runtime) EndSession(openxr.Session) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEndSession"); res.Failed() {
		return res
	}
	if !r.sessionRunning {
		return openxr.ErrorSessionNotRunning
	}
	r.sessionRunning = false
	return openxr.Success
}

// EnumerateReferenceSpaces implements openxr.Runtime.
func (r *Runtime) EnumerateReferenceSpaces(openxr.Session) ([]openxr.ReferenceSpaceType, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrEnumerateReferenceSpaces"); res.Failed() {
		return nil, res
	}
	return slices.Clone(r.ReferenceSpaces), openxr.Success
}

// CreateReferenceSpace implements openxr.Runtime.
func (r *Runtime) CreateReferenceSpace(_ openxr.Session, kind openxr.ReferenceSpaceType, pose openxr.Posef) (openxr.Space, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrCreateReferenceSpace"); res.Failed() {
		return 0, res
	}
	if !slices.Contains(r.ReferenceSpaces, kind) {
		return 0, openxr.ErrorReferenceSpaceUnsupported
	}
	s := openxr.Space(r.newHandle("space"))
	r.spaces[s] = spaceInfo{kind: kind, offset: pose}
	return s, openxr.Success
}

// DestroySpace implements openxr.Runtime.
func (r *Runtime) DestroySpace(space openxr.Space) openxr.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrDestroySpace"); res.Failed() {
		return res
	}
	delete(r.spaces, space)
	return r.destroy(uint64(space), "space")
}

// SpaceType returns the reference space type a live space was created
// with, and its offset pose.
func (r *Runtime) SpaceType(space openxr.Space) (openxr.ReferenceSpaceType, openxr.Posef, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	info, ok := r.spaces[space]
	return info.kind, info.offset, ok
}

// LocateSpace implements openxr.Runtime.
func (r *Runtime) LocateSpace(space, base openxr.Space, _ openxr.Time) (openxr.SpaceLocation, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrLocateSpace"); res.Failed() {
		return openxr.SpaceLocation{}, res
	}
	si, ok1 := r.spaces[space]
	bi, ok2 := r.spaces[base]
	if !ok1 || !ok2 {
		return openxr.SpaceLocation{}, openxr.ErrorHandleInvalid
	}
	m := r.worldPose(bi).Inv().Mul4(r.worldPose(si))
	return openxr.SpaceLocation{
		Flags: openxr.SpaceLocationOrientationValid | openxr.SpaceLocationPositionValid |
			openxr.SpaceLocationOrientationTracked | openxr.SpaceLocationPositionTracked,
		Pose: poseFromMat4(m),
	}, openxr.Success
}

// LocateViews implements openxr.Runtime. Eyes are offset by ±EyeOffset
// along the head X axis.
func (r *Runtime) LocateViews(_ openxr.Session, info *openxr.ViewLocateInfo) (openxr.ViewStateFlags, []openxr.View, openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res := r.call("xrLocateViews"); res.Failed() {
		return 0, nil, res
	}
	bi, ok := r.spaces[info.Space]
	if !ok {
		return 0, nil, openxr.ErrorHandleInvalid
	}
	headInBase := r.worldPose(bi).Inv().Mul4(r.HeadPose.Mat4())
	views := make([]openxr.View, len(r.ConfigViews))
	for i := range views {
		x := r.EyeOffset
		if i == 0 {
			x = -x
		}
		m := headInBase.Mul4(mgl32.Translate3D(x, 0, 0))
		views[i] = openxr.View{Pose: poseFromMat4(m), Fov: r.Fov}
	}
	flags := openxr.ViewStateOrientationValid | openxr.ViewStatePositionValid |
		openxr.ViewStateOrientationTracked | openxr.ViewStatePositionTracked
	return flags, views, openxr.Success
}
