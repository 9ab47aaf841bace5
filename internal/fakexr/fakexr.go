// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package fakexr provides a scriptable in-memory openxr.Runtime.
//
// The fake models one head mounted display with a stereo view
// configuration. LOCAL space is the world origin, STAGE sits StageHeight
// metres below it and VIEW follows HeadPose. Calls are recorded by their
// OpenXR name ("xrCreateSession", ...) and can be made to fail or to report
// a missing extension function.
package fakexr

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/xr3d/xr/openxr"
)

// Swapchain formats (Vulkan VkFormat values) offered by default.
const (
	FormatRGBA8Unorm int64 = 37
	FormatRGBA8SRGB  int64 = 43
	FormatBGRA8Unorm int64 = 44
	FormatBGRA8SRGB  int64 = 50
)

type spaceInfo struct {
	kind   openxr.ReferenceSpaceType
	offset openxr.Posef
}

type swapchainState struct {
	info     openxr.SwapchainCreateInfo
	images   []openxr.SwapchainImage
	next     uint32
	acquired bool
	waited   bool
	foveated bool
}

// Runtime is a fake OpenXR runtime. Exported fields configure it and must
// be set before the first call.
type Runtime struct {
	Name    string
	Version openxr.Version

	Extensions      []openxr.ExtensionProperties
	Layers          []openxr.APILayerProperties
	System          openxr.SystemProperties
	ViewConfigs     []openxr.ViewConfigurationType
	ConfigViews     []openxr.ViewConfigurationView
	BlendModes      []openxr.EnvironmentBlendMode
	ReferenceSpaces []openxr.ReferenceSpaceType
	Formats         []int64
	ImagesPerChain  int
	ColorSpaces     []openxr.ColorSpace
	RefreshRates    []float32

	// StageHeight is the Y of the STAGE origin in LOCAL space.
	StageHeight float32
	// HeadPose is the VIEW space pose in LOCAL space.
	HeadPose openxr.Posef
	// EyeOffset is half the interpupillary distance in metres.
	EyeOffset float32
	Fov       openxr.Fov

	DisplayPeriod openxr.Duration
	ShouldRender  bool

	mu          sync.Mutex
	calls       []string
	failures    map[string]openxr.Result
	unsupported map[string]bool
	events      []openxr.Event
	frameTimes  []openxr.Time

	nextHandle uint64
	live       map[uint64]string
	spaces     map[openxr.Space]spaceInfo
	swapchains map[openxr.Swapchain]*swapchainState
	frames     []openxr.FrameEndInfo
	time       openxr.Time

	instance       openxr.Instance
	session        openxr.Session
	sessionRunning bool
	debugCallback  func(openxr.DebugMessage)

	colorSpace        openxr.ColorSpace
	refreshRate       float32
	passthroughActive bool
	layerActive       bool
}

var _ openxr.Runtime = (*Runtime)(nil)

// New returns a runtime describing a stereo headset with every optional
// extension the session manager knows about.
func New() *Runtime {
	view := openxr.ViewConfigurationView{
		RecommendedImageRectWidth:       64,
		MaxImageRectWidth:               128,
		RecommendedImageRectHeight:      48,
		MaxImageRectHeight:              96,
		RecommendedSwapchainSampleCount: 1,
		MaxSwapchainSampleCount:         4,
	}
	return &Runtime{
		Name:    "Fake XR Runtime",
		Version: openxr.MakeVersion(1, 2, 3),
		Extensions: []openxr.ExtensionProperties{
			{Name: openxr.ExtVulkanEnable2, Version: 2},
			{Name: openxr.ExtDebugUtils, Version: 5},
			{Name: openxr.ExtPerformanceSettings, Version: 4},
			{Name: openxr.ExtHandTracking, Version: 4},
			{Name: openxr.ExtPassthroughFB, Version: 3},
			{Name: openxr.ExtDisplayRefreshRateFB, Version: 1},
			{Name: openxr.ExtColorSpaceFB, Version: 3},
			{Name: openxr.ExtSwapchainUpdateStateFB, Version: 3},
			{Name: openxr.ExtFoveationFB, Version: 1},
			{Name: openxr.ExtFoveationConfigFB, Version: 1},
		},
		Layers: []openxr.APILayerProperties{
			{Name: openxr.LayerCoreValidation, SpecVersion: openxr.CurrentAPIVersion, LayerVersion: 1},
		},
		System: openxr.SystemProperties{
			VendorID:   0x2833,
			SystemName: "Fake HMD",
			Graphics: openxr.SystemGraphicsProperties{
				MaxSwapchainImageWidth:  4096,
				MaxSwapchainImageHeight: 4096,
				MaxLayerCount:           16,
			},
			Tracking:             openxr.SystemTrackingProperties{OrientationTracking: true, PositionTracking: true},
			SupportsHandTracking: true,
			SupportsPassthrough:  true,
		},
		ViewConfigs:     []openxr.ViewConfigurationType{openxr.ViewConfigurationPrimaryStereo},
		ConfigViews:     []openxr.ViewConfigurationView{view, view},
		BlendModes:      []openxr.EnvironmentBlendMode{openxr.BlendModeOpaque, openxr.BlendModeAlphaBlend},
		ReferenceSpaces: []openxr.ReferenceSpaceType{openxr.ReferenceSpaceView, openxr.ReferenceSpaceLocal, openxr.ReferenceSpaceStage},
		Formats:         []int64{FormatRGBA8SRGB, FormatRGBA8Unorm, FormatBGRA8SRGB},
		ImagesPerChain:  3,
		ColorSpaces:     []openxr.ColorSpace{openxr.ColorSpaceRec2020, openxr.ColorSpaceRec709, openxr.ColorSpaceQuest},
		RefreshRates:    []float32{72, 90, 120},
		StageHeight:     -1.6,
		HeadPose:        openxr.Posef{Orientation: mgl32.QuatIdent(), Position: mgl32.Vec3{0, 0.1, 0}},
		EyeOffset:       0.032,
		Fov:             openxr.Fov{AngleLeft: -0.8, AngleRight: 0.8, AngleUp: 0.7, AngleDown: -0.7},
		DisplayPeriod:   11_111_111,
		ShouldRender:    true,

		failures:    make(map[string]openxr.Result),
		unsupported: make(map[string]bool),
		live:        make(map[uint64]string),
		spaces:      make(map[openxr.Space]spaceInfo),
		swapchains:  make(map[openxr.Swapchain]*swapchainState),
		refreshRate: 72,
	}
}

// Fail makes every later call named name return res.
func (r *Runtime) Fail(name string, res openxr.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures[name] = res
}

// Recover removes a failure installed with Fail.
func (r *Runtime) Recover(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, name)
}

// Unsupport makes the extension function name unavailable.
func (r *Runtime) Unsupport(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unsupported[name] = true
}

// RemoveExtension drops an extension from the advertised list.
func (r *Runtime) RemoveExtension(name string) {
	r.Extensions = slices.DeleteFunc(r.Extensions, func(p openxr.ExtensionProperties) bool {
		return p.Name == name
	})
}

// PushEvent queues events for PollEvent.
func (r *Runtime) PushEvent(events ...openxr.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

// PushState queues a session state change for the current session.
func (r *Runtime) PushState(states ...openxr.SessionState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range states {
		r.events = append(r.events, openxr.EventSessionStateChanged{Session: r.session, State: s, Time: r.time})
	}
}

// ScriptFrameTimes sets the predicted display times returned by the next
// WaitFrame calls. After the script runs out, time advances by
// DisplayPeriod.
func (r *Runtime) ScriptFrameTimes(times ...openxr.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frameTimes = append(r.frameTimes, times...)
}

// EmitDebug delivers msg to the registered debug messenger.
func (r *Runtime) EmitDebug(msg openxr.DebugMessage) {
	r.mu.Lock()
	cb := r.debugCallback
	r.mu.Unlock()
	if cb != nil {
		cb(msg)
	}
}

// Calls returns the recorded call names in order.
func (r *Runtime) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.calls)
}

// CallCount returns how many times name was called.
func (r *Runtime) CallCount(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c == name {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (r *Runtime) ResetCalls() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

// Live returns the number of live handles per kind ("space", ...).
func (r *Runtime) Live() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := make(map[string]int)
	for _, kind := range r.live {
		m[kind]++
	}
	return m
}

// Frames returns every EndFrame submission.
func (r *Runtime) Frames() []openxr.FrameEndInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.frames)
}

// SessionRunning reports whether BeginSession succeeded without a later
// EndSession.
func (r *Runtime) SessionRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessionRunning
}

// Session returns the current session handle.
func (r *Runtime) Session() openxr.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// SwapchainFoveated reports whether a foveation profile was applied to sc.
func (r *Runtime) SwapchainFoveated(sc openxr.Swapchain) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.swapchains[sc]
	return ok && st.foveated
}

// SwapchainInfos returns the create infos of live swapchains.
func (r *Runtime) SwapchainInfos() []openxr.SwapchainCreateInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	var infos []openxr.SwapchainCreateInfo
	for h, st := range r.swapchains {
		if _, ok := r.live[uint64(h)]; ok {
			infos = append(infos, st.info)
		}
	}
	return infos
}

// ColorSpace returns the color space set by SetColorSpace.
func (r *Runtime) ColorSpace() openxr.ColorSpace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.colorSpace
}

// PassthroughRunning reports whether both the passthrough feature and its
// layer are running.
func (r *Runtime) PassthroughRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passthroughActive && r.layerActive
}

// call records name and returns the scripted result. r.mu must be held.
func (r *Runtime) call(name string) openxr.Result {
	r.calls = append(r.calls, name)
	if r.unsupported[name] {
		return openxr.ErrorFunctionUnsupported
	}
	if res, ok := r.failures[name]; ok {
		return res
	}
	return openxr.Success
}

func (r *Runtime) newHandle(kind string) uint64 {
	r.nextHandle++
	r.live[r.nextHandle] = kind
	return r.nextHandle
}

func (r *Runtime) destroy(h uint64, kind string) openxr.Result {
	if r.live[h] != kind {
		return openxr.ErrorHandleInvalid
	}
	delete(r.live, h)
	return openxr.Success
}

// worldPose returns the pose of a space relative to LOCAL.
func (r *Runtime) worldPose(info spaceInfo) mgl32.Mat4 {
	var origin mgl32.Mat4
	switch info.kind {
	case openxr.ReferenceSpaceStage:
		origin = mgl32.Translate3D(0, r.StageHeight, 0)
	case openxr.ReferenceSpaceView:
		origin = r.HeadPose.Mat4()
	default:
		origin = mgl32.Ident4()
	}
	return origin.Mul4(info.offset.Mat4())
}

func poseFromMat4(m mgl32.Mat4) openxr.Posef {
	return openxr.Posef{
		Orientation: mgl32.Mat4ToQuat(m),
		Position:    m.Col(3).Vec3(),
	}
}
