// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package openxr

import "github.com/go-gl/mathgl/mgl32"

// Posef is a rigid transform: orientation then position, in metres.
type Posef struct {
	Orientation mgl32.Quat
	Position    mgl32.Vec3
}

// IdentityPose returns the identity transform.
func IdentityPose() Posef {
	return Posef{Orientation: mgl32.QuatIdent()}
}

// Mat4 returns the pose as a column-major transform matrix.
func (p Posef) Mat4() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position.X(), p.Position.Y(), p.Position.Z()).Mul4(p.Orientation.Normalize().Mat4())
}

// Fov holds the four half-angles of a view frustum, in radians.
// AngleLeft and AngleDown are typically negative.
type Fov struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// View is a located eye.
type View struct {
	Pose Posef
	Fov  Fov
}

// ViewStateFlags is XrViewStateFlags.
type ViewStateFlags uint64

// View state bits.
const (
	ViewStateOrientationValid   ViewStateFlags = 0x1
	ViewStatePositionValid      ViewStateFlags = 0x2
	ViewStateOrientationTracked ViewStateFlags = 0x4
	ViewStatePositionTracked    ViewStateFlags = 0x8
)

// ViewLocateInfo is the input of LocateViews.
type ViewLocateInfo struct {
	ViewConfigurationType ViewConfigurationType
	DisplayTime           Time
	Space                 Space
}

// FrameState is the output of WaitFrame.
type FrameState struct {
	PredictedDisplayTime   Time
	PredictedDisplayPeriod Duration
	ShouldRender           bool
}

// SpaceLocationFlags is XrSpaceLocationFlags.
type SpaceLocationFlags uint64

// Space location bits.
const (
	SpaceLocationOrientationValid   SpaceLocationFlags = 0x1
	SpaceLocationPositionValid      SpaceLocationFlags = 0x2
	SpaceLocationOrientationTracked SpaceLocationFlags = 0x4
	SpaceLocationPositionTracked    SpaceLocationFlags = 0x8
)

// SpaceLocation is the output of LocateSpace.
type SpaceLocation struct {
	Flags SpaceLocationFlags
	Pose  Posef
}

// ExtensionProperties describes an instance extension.
type ExtensionProperties struct {
	Name    string
	Version uint32
}

// APILayerProperties describes an API layer.
type APILayerProperties struct {
	Name         string
	SpecVersion  Version
	LayerVersion uint32
	Description  string
}

// ApplicationInfo identifies the application to the runtime.
type ApplicationInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         Version
}

// InstanceCreateInfo is the input of CreateInstance.
type InstanceCreateInfo struct {
	ApplicationInfo ApplicationInfo
	EnabledLayers   []string
	Extensions      []string
}

// InstanceProperties is the output of GetInstanceProperties.
type InstanceProperties struct {
	RuntimeName    string
	RuntimeVersion Version
}

// DebugMessage is delivered to a debug messenger callback.
type DebugMessage struct {
	Severity     DebugSeverity
	Type         DebugMessageType
	FunctionName string
	Message      string
}

// DebugMessengerCreateInfo is the input of CreateDebugMessenger.
type DebugMessengerCreateInfo struct {
	Severities DebugSeverity
	Types      DebugMessageType
	Callback   func(DebugMessage)
}

// SystemGraphicsProperties are the swapchain limits of a system.
type SystemGraphicsProperties struct {
	MaxSwapchainImageWidth  uint32
	MaxSwapchainImageHeight uint32
	MaxLayerCount           uint32
}

// SystemTrackingProperties reports the tracking capabilities of a system.
type SystemTrackingProperties struct {
	OrientationTracking bool
	PositionTracking    bool
}

// SystemProperties is the output of GetSystemProperties, including the
// hand tracking and passthrough extension structs.
type SystemProperties struct {
	SystemID             SystemID
	VendorID             uint32
	SystemName           string
	Graphics             SystemGraphicsProperties
	Tracking             SystemTrackingProperties
	SupportsHandTracking bool
	SupportsPassthrough  bool
}

// ViewConfigurationProperties is the output of
// GetViewConfigurationProperties.
type ViewConfigurationProperties struct {
	ViewConfigurationType ViewConfigurationType
	FovMutable            bool
}

// ViewConfigurationView holds the recommended and maximum image sizes of
// one view.
type ViewConfigurationView struct {
	RecommendedImageRectWidth       uint32
	MaxImageRectWidth               uint32
	RecommendedImageRectHeight      uint32
	MaxImageRectHeight              uint32
	RecommendedSwapchainSampleCount uint32
	MaxSwapchainSampleCount         uint32
}

// GraphicsRequirements is the graphics API version range a runtime accepts.
type GraphicsRequirements struct {
	MinAPIVersionSupported Version
	MaxAPIVersionSupported Version
}

// GraphicsBinding is the graphics API specific session create chain.
// The runtime inspects its concrete type.
type GraphicsBinding interface {
	ExtensionName() string
}

// SessionCreateInfo is the input of CreateSession.
type SessionCreateInfo struct {
	SystemID SystemID
	Binding  GraphicsBinding
}

// SwapchainCreateInfo is the input of CreateSwapchain.
type SwapchainCreateInfo struct {
	UsageFlags  SwapchainUsageFlags
	Format      int64
	SampleCount uint32
	Width       uint32
	Height      uint32
	FaceCount   uint32
	ArraySize   uint32
	MipCount    uint32
}

// SwapchainImage is a runtime owned image. Image is the native handle
// (VkImage, GL texture name, ...).
type SwapchainImage struct {
	Image uint64
}

// Offset2Di is an integer offset.
type Offset2Di struct{ X, Y int32 }

// Extent2Di is an integer size.
type Extent2Di struct{ Width, Height int32 }

// Rect2Di is an integer rectangle.
type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}

// SwapchainSubImage addresses a rectangle of one array layer.
type SwapchainSubImage struct {
	Swapchain       Swapchain
	ImageRect       Rect2Di
	ImageArrayIndex uint32
}

// CompositionLayerProjectionView is one eye of a projection layer.
type CompositionLayerProjectionView struct {
	Pose     Posef
	Fov      Fov
	SubImage SwapchainSubImage
}

// CompositionLayer is a layer submitted with EndFrame.
type CompositionLayer interface {
	compositionLayer()
}

// CompositionLayerProjection is the projected stereo view.
type CompositionLayerProjection struct {
	Flags CompositionLayerFlags
	Space Space
	Views []CompositionLayerProjectionView
}

// CompositionLayerPassthrough shows the camera passthrough.
type CompositionLayerPassthrough struct {
	Flags       CompositionLayerFlags
	Space       Space
	LayerHandle PassthroughLayer
}

func (*CompositionLayerProjection) compositionLayer()  {}
func (*CompositionLayerPassthrough) compositionLayer() {}

// FrameEndInfo is the input of EndFrame.
type FrameEndInfo struct {
	DisplayTime          Time
	EnvironmentBlendMode EnvironmentBlendMode
	Layers               []CompositionLayer
}

// PassthroughLayerCreateInfo is the input of CreatePassthroughLayer.
type PassthroughLayerCreateInfo struct {
	Passthrough PassthroughFeature
	Flags       PassthroughFlags
	Purpose     PassthroughLayerPurpose
}
