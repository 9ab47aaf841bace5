// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package openxr

// Runtime is the OpenXR loader as seen by the session manager. Each method
// maps to one API call; enumeration methods fold the two-call idiom into
// one.
//
// Methods for extension entry points return ErrorFunctionUnsupported when
// the runtime does not provide them.
type Runtime interface {
	// Instance

	EnumerateAPILayerProperties() ([]APILayerProperties, Result)
	EnumerateInstanceExtensionProperties(layerName string) ([]ExtensionProperties, Result)
	CreateInstance(info *InstanceCreateInfo) (Instance, Result)
	DestroyInstance(instance Instance) Result
	GetInstanceProperties(instance Instance) (InstanceProperties, Result)
	PollEvent(instance Instance) (Event, Result)

	// XR_EXT_debug_utils

	CreateDebugMessenger(instance Instance, info *DebugMessengerCreateInfo) (DebugMessenger, Result)
	DestroyDebugMessenger(messenger DebugMessenger) Result

	// System

	GetSystem(instance Instance, formFactor FormFactor) (SystemID, Result)
	GetSystemProperties(instance Instance, system SystemID) (SystemProperties, Result)
	EnumerateViewConfigurations(instance Instance, system SystemID) ([]ViewConfigurationType, Result)
	GetViewConfigurationProperties(instance Instance, system SystemID, viewConfig ViewConfigurationType) (ViewConfigurationProperties, Result)
	EnumerateViewConfigurationViews(instance Instance, system SystemID, viewConfig ViewConfigurationType) ([]ViewConfigurationView, Result)
	EnumerateEnvironmentBlendModes(instance Instance, system SystemID, viewConfig ViewConfigurationType) ([]EnvironmentBlendMode, Result)
	GetGraphicsRequirements(instance Instance, system SystemID) (GraphicsRequirements, Result)

	// Session

	CreateSession(instance Instance, info *SessionCreateInfo) (Session, Result)
	DestroySession(session Session) Result
	BeginSession(session Session, viewConfig ViewConfigurationType) Result
	EndSession(session Session) Result

	// Spaces

	EnumerateReferenceSpaces(session Session) ([]ReferenceSpaceType, Result)
	CreateReferenceSpace(session Session, spaceType ReferenceSpaceType, poseInReferenceSpace Posef) (Space, Result)
	DestroySpace(space Space) Result
	LocateSpace(space, baseSpace Space, time Time) (SpaceLocation, Result)
	LocateViews(session Session, info *ViewLocateInfo) (ViewStateFlags, []View, Result)

	// Swapchains

	EnumerateSwapchainFormats(session Session) ([]int64, Result)
	CreateSwapchain(session Session, info *SwapchainCreateInfo) (Swapchain, Result)
	DestroySwapchain(swapchain Swapchain) Result
	EnumerateSwapchainImages(swapchain Swapchain) ([]SwapchainImage, Result)
	AcquireSwapchainImage(swapchain Swapchain) (uint32, Result)
	WaitSwapchainImage(swapchain Swapchain, timeout Duration) Result
	ReleaseSwapchainImage(swapchain Swapchain) Result

	// Frame loop

	WaitFrame(session Session) (FrameState, Result)
	BeginFrame(session Session) Result
	EndFrame(session Session, info *FrameEndInfo) Result

	// XR_FB_color_space

	EnumerateColorSpaces(session Session) ([]ColorSpace, Result)
	SetColorSpace(session Session, colorSpace ColorSpace) Result

	// XR_FB_display_refresh_rate

	EnumerateDisplayRefreshRates(session Session) ([]float32, Result)
	GetDisplayRefreshRate(session Session) (float32, Result)
	RequestDisplayRefreshRate(session Session, rate float32) Result

	// XR_FB_foveation

	CreateFoveationProfile(session Session, level FoveationLevel, verticalOffset float32, dynamic bool) (FoveationProfile, Result)
	DestroyFoveationProfile(profile FoveationProfile) Result
	UpdateSwapchainFoveation(swapchain Swapchain, profile FoveationProfile) Result

	// XR_FB_passthrough

	CreatePassthrough(session Session, flags PassthroughFlags) (PassthroughFeature, Result)
	DestroyPassthrough(feature PassthroughFeature) Result
	PassthroughStart(feature PassthroughFeature) Result
	PassthroughPause(feature PassthroughFeature) Result
	CreatePassthroughLayer(session Session, info *PassthroughLayerCreateInfo) (PassthroughLayer, Result)
	DestroyPassthroughLayer(layer PassthroughLayer) Result
	PassthroughLayerPause(layer PassthroughLayer) Result
	PassthroughLayerResume(layer PassthroughLayer) Result
}

// HasExtension reports whether name is in props.
func HasExtension(props []ExtensionProperties, name string) bool {
	_, ok := ExtensionVersion(props, name)
	return ok
}

// ExtensionVersion returns the version the runtime reports for extension name.
func ExtensionVersion(props []ExtensionProperties, name string) (uint32, bool) {
	for _, p := range props {
		if p.Name == name {
			return p.Version, true
		}
	}
	return 0, false
}

// HasAPILayer reports whether name is in props.
func HasAPILayer(props []APILayerProperties, name string) bool {
	for _, p := range props {
		if p.Name == name {
			return true
		}
	}
	return false
}
