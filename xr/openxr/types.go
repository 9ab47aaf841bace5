// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package openxr

import "fmt"

// Handles. The zero value is XR_NULL_HANDLE.
type (
	Instance           uint64
	Session            uint64
	Space              uint64
	Swapchain          uint64
	DebugMessenger     uint64
	PassthroughFeature uint64
	PassthroughLayer   uint64
	FoveationProfile   uint64
	SystemID           uint64
)

// Time is an XrTime in nanoseconds; Duration is an XrDuration.
type (
	Time     int64
	Duration int64
)

// InfiniteDuration is XR_INFINITE_DURATION.
const InfiniteDuration Duration = 0x7fffffffffffffff

// Version is a packed XrVersion (16 bit major, 16 bit minor, 32 bit patch).
type Version uint64

// MakeVersion packs a version.
func MakeVersion(major, minor, patch uint32) Version {
	return Version(uint64(major&0xffff)<<48 | uint64(minor&0xffff)<<32 | uint64(patch))
}

// Major returns the major component.
func (v Version) Major() uint32 { return uint32(v >> 48 & 0xffff) }

// Minor returns the minor component.
func (v Version) Minor() uint32 { return uint32(v >> 32 & 0xffff) }

// Patch returns the patch component.
func (v Version) Patch() uint32 { return uint32(v & 0xffffffff) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}

// CurrentAPIVersion is the API version requested at instance creation.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

// FormFactor selects the system kind.
type FormFactor int32

// Form factors.
const (
	FormFactorHeadMountedDisplay FormFactor = 1
	FormFactorHandheldDisplay    FormFactor = 2
)

func (f FormFactor) String() string {
	switch f {
	case FormFactorHeadMountedDisplay:
		return "XR_FORM_FACTOR_HEAD_MOUNTED_DISPLAY"
	case FormFactorHandheldDisplay:
		return "XR_FORM_FACTOR_HANDHELD_DISPLAY"
	default:
		return fmt.Sprintf("XrFormFactor(%d)", int32(f))
	}
}

// ViewConfigurationType selects the view layout.
type ViewConfigurationType int32

// View configuration types.
const (
	ViewConfigurationPrimaryMono   ViewConfigurationType = 1
	ViewConfigurationPrimaryStereo ViewConfigurationType = 2
)

func (t ViewConfigurationType) String() string {
	switch t {
	case ViewConfigurationPrimaryMono:
		return "XR_VIEW_CONFIGURATION_TYPE_PRIMARY_MONO"
	case ViewConfigurationPrimaryStereo:
		return "XR_VIEW_CONFIGURATION_TYPE_PRIMARY_STEREO"
	default:
		return fmt.Sprintf("XrViewConfigurationType(%d)", int32(t))
	}
}

// EnvironmentBlendMode is how rendered layers blend with the real world.
type EnvironmentBlendMode int32

// Environment blend modes.
const (
	BlendModeOpaque     EnvironmentBlendMode = 1
	BlendModeAdditive   EnvironmentBlendMode = 2
	BlendModeAlphaBlend EnvironmentBlendMode = 3
)

func (m EnvironmentBlendMode) String() string {
	switch m {
	case BlendModeOpaque:
		return "XR_ENVIRONMENT_BLEND_MODE_OPAQUE"
	case BlendModeAdditive:
		return "XR_ENVIRONMENT_BLEND_MODE_ADDITIVE"
	case BlendModeAlphaBlend:
		return "XR_ENVIRONMENT_BLEND_MODE_ALPHA_BLEND"
	default:
		return fmt.Sprintf("XrEnvironmentBlendMode(%d)", int32(m))
	}
}

// ReferenceSpaceType identifies a reference space.
type ReferenceSpaceType int32

// Reference space types.
const (
	ReferenceSpaceView          ReferenceSpaceType = 1
	ReferenceSpaceLocal         ReferenceSpaceType = 2
	ReferenceSpaceStage         ReferenceSpaceType = 3
	ReferenceSpaceUnboundedMSFT ReferenceSpaceType = 1000038000
	ReferenceSpaceLocalFloor    ReferenceSpaceType = 1000426000
)

var referenceSpaceNames = map[ReferenceSpaceType]string{
	ReferenceSpaceView:          "XR_REFERENCE_SPACE_TYPE_VIEW",
	ReferenceSpaceLocal:         "XR_REFERENCE_SPACE_TYPE_LOCAL",
	ReferenceSpaceStage:         "XR_REFERENCE_SPACE_TYPE_STAGE",
	ReferenceSpaceUnboundedMSFT: "XR_REFERENCE_SPACE_TYPE_UNBOUNDED_MSFT",
	ReferenceSpaceLocalFloor:    "XR_REFERENCE_SPACE_TYPE_LOCAL_FLOOR_EXT",
}

func (t ReferenceSpaceType) String() string {
	if s, ok := referenceSpaceNames[t]; ok {
		return s
	}
	return fmt.Sprintf("XrReferenceSpaceType(%d)", int32(t))
}

// ParseReferenceSpace accepts the short names used in configuration:
// view, local, stage, local-floor and unbounded.
func ParseReferenceSpace(s string) (ReferenceSpaceType, error) {
	switch s {
	case "view":
		return ReferenceSpaceView, nil
	case "local":
		return ReferenceSpaceLocal, nil
	case "stage":
		return ReferenceSpaceStage, nil
	case "local-floor", "local_floor", "localfloor":
		return ReferenceSpaceLocalFloor, nil
	case "unbounded":
		return ReferenceSpaceUnboundedMSFT, nil
	}
	for t, name := range referenceSpaceNames {
		if s == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("openxr: unknown reference space %q", s)
}

// SessionState is an XrSessionState.
type SessionState int32

// Session states.
const (
	SessionStateUnknown      SessionState = 0
	SessionStateIdle         SessionState = 1
	SessionStateReady        SessionState = 2
	SessionStateSynchronized SessionState = 3
	SessionStateVisible      SessionState = 4
	SessionStateFocused      SessionState = 5
	SessionStateStopping     SessionState = 6
	SessionStateLossPending  SessionState = 7
	SessionStateExiting      SessionState = 8
)

func (s SessionState) String() string {
	switch s {
	case SessionStateUnknown:
		return "XR_SESSION_STATE_UNKNOWN"
	case SessionStateIdle:
		return "XR_SESSION_STATE_IDLE"
	case SessionStateReady:
		return "XR_SESSION_STATE_READY"
	case SessionStateSynchronized:
		return "XR_SESSION_STATE_SYNCHRONIZED"
	case SessionStateVisible:
		return "XR_SESSION_STATE_VISIBLE"
	case SessionStateFocused:
		return "XR_SESSION_STATE_FOCUSED"
	case SessionStateStopping:
		return "XR_SESSION_STATE_STOPPING"
	case SessionStateLossPending:
		return "XR_SESSION_STATE_LOSS_PENDING"
	case SessionStateExiting:
		return "XR_SESSION_STATE_EXITING"
	default:
		return fmt.Sprintf("XrSessionState(%d)", int32(s))
	}
}

// ColorSpace is an XrColorSpaceFB.
type ColorSpace int32

// Color spaces.
const (
	ColorSpaceUnmanaged ColorSpace = 0
	ColorSpaceRec2020   ColorSpace = 1
	ColorSpaceRec709    ColorSpace = 2
	ColorSpaceRiftCV1   ColorSpace = 3
	ColorSpaceRiftS     ColorSpace = 4
	ColorSpaceQuest     ColorSpace = 5
	ColorSpaceP3        ColorSpace = 6
	ColorSpaceAdobeRGB  ColorSpace = 7
)

// FoveationLevel is an XrFoveationLevelFB.
type FoveationLevel int32

// Foveation levels.
const (
	FoveationLevelNone   FoveationLevel = 0
	FoveationLevelLow    FoveationLevel = 1
	FoveationLevelMedium FoveationLevel = 2
	FoveationLevelHigh   FoveationLevel = 3
)

// SwapchainUsageFlags is XrSwapchainUsageFlags.
type SwapchainUsageFlags uint64

// Swapchain usage bits.
const (
	SwapchainUsageColorAttachment SwapchainUsageFlags = 0x01
	SwapchainUsageTransferSrc     SwapchainUsageFlags = 0x04
	SwapchainUsageTransferDst     SwapchainUsageFlags = 0x08
	SwapchainUsageSampled         SwapchainUsageFlags = 0x20
	SwapchainUsageMutableFormat   SwapchainUsageFlags = 0x40
)

// CompositionLayerFlags is XrCompositionLayerFlags.
type CompositionLayerFlags uint64

// Composition layer bits.
const (
	LayerCorrectChromaticAberration CompositionLayerFlags = 0x01
	LayerBlendTextureSourceAlpha    CompositionLayerFlags = 0x02
	LayerUnpremultipliedAlpha       CompositionLayerFlags = 0x04
)

// PassthroughFlags is XrPassthroughFlagsFB.
type PassthroughFlags uint64

// PassthroughIsRunningAtCreation starts the feature or layer immediately.
const PassthroughIsRunningAtCreation PassthroughFlags = 0x01

// PassthroughLayerPurpose is XrPassthroughLayerPurposeFB.
type PassthroughLayerPurpose int32

// PassthroughLayerPurposeReconstruction is the full camera reconstruction.
const PassthroughLayerPurposeReconstruction PassthroughLayerPurpose = 0

// DebugSeverity is XrDebugUtilsMessageSeverityFlagsEXT.
type DebugSeverity uint64

// Debug severities.
const (
	DebugSeverityVerbose DebugSeverity = 0x0001
	DebugSeverityInfo    DebugSeverity = 0x0010
	DebugSeverityWarning DebugSeverity = 0x0100
	DebugSeverityError   DebugSeverity = 0x1000
)

// DebugMessageType is XrDebugUtilsMessageTypeFlagsEXT.
type DebugMessageType uint64

// Debug message types.
const (
	DebugTypeGeneral     DebugMessageType = 0x1
	DebugTypeValidation  DebugMessageType = 0x2
	DebugTypePerformance DebugMessageType = 0x4
	DebugTypeConformance DebugMessageType = 0x8
)

// Extension names the session manager enables when present.
const (
	ExtDebugUtils             = "XR_EXT_debug_utils"
	ExtPerformanceSettings    = "XR_EXT_performance_settings"
	ExtHandTracking           = "XR_EXT_hand_tracking"
	ExtHandTrackingAimFB      = "XR_FB_hand_tracking_aim"
	ExtHandInteractionMSFT    = "XR_MSFT_hand_interaction"
	ExtPassthroughFB          = "XR_FB_passthrough"
	ExtTriangleMeshFB         = "XR_FB_triangle_mesh"
	ExtDisplayRefreshRateFB   = "XR_FB_display_refresh_rate"
	ExtColorSpaceFB           = "XR_FB_color_space"
	ExtSwapchainUpdateStateFB = "XR_FB_swapchain_update_state"
	ExtFoveationFB            = "XR_FB_foveation"
	ExtFoveationConfigFB      = "XR_FB_foveation_configuration"
	ExtLocalFloor             = "XR_EXT_local_floor"
	ExtVulkanEnable2          = "XR_KHR_vulkan_enable2"

	LayerCoreValidation = "XR_APILAYER_LUNARG_core_validation"
)
