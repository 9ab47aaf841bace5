// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gogpu/xr3d/xr/openxr"
)

// Manager owns an OpenXR instance and session and runs the frame loop.
// Create it with New, then call Initialize.
type Manager struct {
	rt       openxr.Runtime
	graphics Graphics
	opts     options

	// Signals are fired from Tick, RenderFrame and the space setters.
	Signals Signals

	state       State
	errorString string

	// Instance
	availableExtensions []openxr.ExtensionProperties
	availableLayers     []openxr.APILayerProperties
	enabledExtensions   []string
	enabledLayers       []string
	instance            openxr.Instance
	instanceProps       openxr.InstanceProperties
	debugMessenger      openxr.DebugMessenger

	// System
	system          openxr.SystemID
	systemProps     openxr.SystemProperties
	viewConfigType  openxr.ViewConfigurationType
	blendMode       openxr.EnvironmentBlendMode
	handTracking    bool
	handTrackingAim bool

	// Session
	binding        openxr.GraphicsBinding
	session        openxr.Session
	sessionRunning bool
	inputReady     bool
	spaceExtReady  bool

	// Reference spaces
	availableSpaces     []openxr.ReferenceSpaceType
	requestedSpace      openxr.ReferenceSpaceType
	referenceSpace      openxr.ReferenceSpaceType
	appSpace            openxr.Space
	viewSpace           openxr.Space
	emulatingLocalFloor bool
	floorResetPending   bool

	// Swapchains
	multiview       bool
	samples         int
	colorFormat     int64
	configViews     []openxr.ViewConfigurationView
	views           []openxr.View
	projectionViews []openxr.CompositionLayerProjectionView
	swapchains      []*swapchain

	// Passthrough
	passthroughSupported bool
	passthroughEnabled   bool
	passthroughFeature   openxr.PassthroughFeature
	passthroughLayer     openxr.PassthroughLayer

	// Frame loop
	origin         *Origin
	fallbackOrigin *Origin
	clock          AnimationClock
	frameIndex     uint64
}

// New returns a manager for rt that renders through graphics.
func New(rt openxr.Runtime, graphics Graphics, opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		rt:                 rt,
		graphics:           graphics,
		opts:               o,
		requestedSpace:     o.referenceSpace,
		referenceSpace:     openxr.ReferenceSpaceLocal,
		viewConfigType:     openxr.ViewConfigurationPrimaryStereo,
		blendMode:          o.blendMode,
		multiview:          o.multiview,
		samples:            max(o.samples, 1),
		passthroughEnabled: o.passthrough,
		fallbackOrigin:     NewOrigin(),
	}
}

// State returns the lifecycle state.
func (m *Manager) State() State { return m.state }

// ErrorString returns the message of the last failed Initialize.
func (m *Manager) ErrorString() string { return m.errorString }

// Instance returns the instance handle, or 0 before Initialize.
func (m *Manager) Instance() openxr.Instance { return m.instance }

// Session returns the session handle, or 0 before Initialize.
func (m *Manager) Session() openxr.Session { return m.session }

// IsSessionRunning reports whether the runtime began the session.
func (m *Manager) IsSessionRunning() bool { return m.sessionRunning }

// RuntimeName returns the runtime name reported by the instance.
func (m *Manager) RuntimeName() string { return m.instanceProps.RuntimeName }

// RuntimeVersion returns the runtime version reported by the instance.
func (m *Manager) RuntimeVersion() openxr.Version { return m.instanceProps.RuntimeVersion }

// SystemProperties returns the properties of the acquired system.
func (m *Manager) SystemProperties() openxr.SystemProperties { return m.systemProps }

// EnabledExtensions returns the instance extensions that were enabled.
func (m *Manager) EnabledExtensions() []string { return slices.Clone(m.enabledExtensions) }

// EnabledLayers returns the API layers that were enabled.
func (m *Manager) EnabledLayers() []string { return slices.Clone(m.enabledLayers) }

// IsExtensionEnabled reports whether name was enabled on the instance.
func (m *Manager) IsExtensionEnabled(name string) bool {
	return slices.Contains(m.enabledExtensions, name)
}

// BlendMode returns the environment blend mode used without passthrough.
func (m *Manager) BlendMode() openxr.EnvironmentBlendMode { return m.blendMode }

// Initialize creates the instance, session, spaces and swapchains. On
// failure it releases whatever was created and returns an *InitError,
// whose message is also kept in ErrorString.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.state != StateIdle {
		return ErrAlreadyInitialized
	}
	if m.graphics == nil {
		return ErrNoGraphics
	}
	if err := m.initialize(ctx); err != nil {
		m.errorString = err.Error()
		slogger().Error("xr: initialization failed", "err", err)
		m.Teardown()
		return err
	}
	m.errorString = ""
	return nil
}

func (m *Manager) initialize(ctx context.Context) error {
	steps := []func() error{
		m.checkExtensions,
		m.createInstance,
		m.checkInstance,
		m.initializeSystem,
		m.setupGraphics,
		m.createSession,
		m.setupOptionalFeatures,
		m.setupSpaces,
		m.createSwapchains,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return &InitError{Call: "initialize", Err: err, Locale: m.opts.locale}
		}
		if err := step(); err != nil {
			return err
		}
	}
	if m.passthroughEnabled {
		m.applyPassthrough(true)
	}
	return nil
}

// initError builds the error for a failed runtime call.
func (m *Manager) initError(call string, res openxr.Result) *InitError {
	return &InitError{
		Call:           call,
		RuntimeName:    m.instanceProps.RuntimeName,
		RuntimeVersion: m.instanceProps.RuntimeVersion,
		Result:         res,
		Locale:         m.opts.locale,
	}
}

func (m *Manager) checkExtensions() error {
	layers, res := m.rt.EnumerateAPILayerProperties()
	if res.Failed() {
		return m.initError("xrEnumerateApiLayerProperties", res)
	}
	m.availableLayers = layers
	for _, l := range layers {
		slogger().Debug("xr: api layer", "name", l.Name, "spec", l.SpecVersion, "version", l.LayerVersion)
	}

	exts, res := m.rt.EnumerateInstanceExtensionProperties("")
	if res.Failed() {
		return m.initError("xrEnumerateInstanceExtensionProperties", res)
	}
	m.availableExtensions = exts
	for _, e := range exts {
		slogger().Debug("xr: instance extension", "name", e.Name, "version", e.Version)
	}
	return nil
}

func (m *Manager) hasExtension(name string) bool {
	return openxr.HasExtension(m.availableExtensions, name)
}

func (m *Manager) createInstance() error {
	graphicsExt := m.graphics.ExtensionName()
	if !m.hasExtension(graphicsExt) {
		return &InitError{
			Call:   "xrCreateInstance",
			Result: openxr.ErrorExtensionNotPresent,
			Locale: m.opts.locale,
		}
	}

	m.enabledExtensions = []string{graphicsExt}
	optional := []string{
		openxr.ExtDebugUtils,
		openxr.ExtPerformanceSettings,
		openxr.ExtHandTracking,
		openxr.ExtHandTrackingAimFB,
		openxr.ExtHandInteractionMSFT,
		openxr.ExtPassthroughFB,
		openxr.ExtTriangleMeshFB,
		openxr.ExtDisplayRefreshRateFB,
		openxr.ExtColorSpaceFB,
		openxr.ExtSwapchainUpdateStateFB,
		openxr.ExtFoveationFB,
		openxr.ExtFoveationConfigFB,
		openxr.ExtLocalFloor,
	}
	if m.opts.spaceExt != nil {
		optional = append(optional, m.opts.spaceExt.RequiredExtensions()...)
	}
	for _, ext := range optional {
		if m.hasExtension(ext) && !slices.Contains(m.enabledExtensions, ext) {
			m.enabledExtensions = append(m.enabledExtensions, ext)
		}
	}

	m.enabledLayers = nil
	if m.opts.debug {
		if openxr.HasAPILayer(m.availableLayers, openxr.LayerCoreValidation) {
			m.enabledLayers = append(m.enabledLayers, openxr.LayerCoreValidation)
		} else {
			slogger().Debug("xr: validation layer not available")
		}
	}

	instance, res := m.rt.CreateInstance(&openxr.InstanceCreateInfo{
		ApplicationInfo: openxr.ApplicationInfo{
			ApplicationName:    m.opts.appName,
			ApplicationVersion: 1,
			EngineName:         "xr3d",
			EngineVersion:      1,
			APIVersion:         openxr.CurrentAPIVersion,
		},
		EnabledLayers: m.enabledLayers,
		Extensions:    m.enabledExtensions,
	})
	if res.Failed() {
		return m.initError("xrCreateInstance", res)
	}
	m.instance = instance
	m.state = StateInstanceCreated
	return nil
}

func (m *Manager) checkInstance() error {
	props, res := m.rt.GetInstanceProperties(m.instance)
	if res.Failed() {
		return m.initError("xrGetInstanceProperties", res)
	}
	m.instanceProps = props
	slogger().Info("xr: instance created",
		"runtime", props.RuntimeName, "version", props.RuntimeVersion)

	if m.opts.debug && m.IsExtensionEnabled(openxr.ExtDebugUtils) {
		m.setupDebugMessenger()
	}
	return nil
}

func (m *Manager) setupDebugMessenger() {
	messenger, res := m.rt.CreateDebugMessenger(m.instance, &openxr.DebugMessengerCreateInfo{
		Severities: openxr.DebugSeverityWarning | openxr.DebugSeverityError,
		Types: openxr.DebugTypeGeneral | openxr.DebugTypeValidation |
			openxr.DebugTypePerformance | openxr.DebugTypeConformance,
		Callback: logDebugMessage,
	})
	if res.Failed() {
		slogger().Warn("xr: debug messenger unavailable", "result", res)
		return
	}
	m.debugMessenger = messenger
}

func logDebugMessage(msg openxr.DebugMessage) {
	level := slog.LevelDebug
	switch {
	case msg.Severity&openxr.DebugSeverityError != 0:
		level = slog.LevelError
	case msg.Severity&openxr.DebugSeverityWarning != 0:
		level = slog.LevelWarn
	case msg.Severity&openxr.DebugSeverityInfo != 0:
		level = slog.LevelInfo
	}
	slogger().Log(context.Background(), level, "xr: runtime message",
		"function", msg.FunctionName, "message", msg.Message)
}

func (m *Manager) initializeSystem() error {
	system, res := m.rt.GetSystem(m.instance, openxr.FormFactorHeadMountedDisplay)
	if res.Failed() {
		return m.initError("xrGetSystem", res)
	}
	m.system = system
	m.state = StateSystemAcquired

	props, res := m.rt.GetSystemProperties(m.instance, system)
	if res.Failed() {
		slogger().Warn("xr: system properties unavailable", "result", res)
	} else {
		m.systemProps = props
		slogger().Debug("xr: system", "name", props.SystemName, "vendor", props.VendorID,
			"maxWidth", props.Graphics.MaxSwapchainImageWidth,
			"maxHeight", props.Graphics.MaxSwapchainImageHeight,
			"maxLayers", props.Graphics.MaxLayerCount)
	}
	m.handTracking = m.IsExtensionEnabled(openxr.ExtHandTracking) && props.SupportsHandTracking
	m.handTrackingAim = m.handTracking && m.IsExtensionEnabled(openxr.ExtHandTrackingAimFB)
	m.passthroughSupported = m.IsExtensionEnabled(openxr.ExtPassthroughFB) && props.SupportsPassthrough

	if err := m.checkViewConfiguration(); err != nil {
		return err
	}
	m.checkBlendModes()
	return nil
}

func (m *Manager) checkViewConfiguration() error {
	types, res := m.rt.EnumerateViewConfigurations(m.instance, m.system)
	if res.Failed() {
		return m.initError("xrEnumerateViewConfigurations", res)
	}
	if !slices.Contains(types, m.viewConfigType) {
		return m.initError("xrEnumerateViewConfigurations", openxr.ErrorViewConfigurationTypeUnsupported)
	}
	props, res := m.rt.GetViewConfigurationProperties(m.instance, m.system, m.viewConfigType)
	if res.Succeeded() {
		slogger().Debug("xr: view configuration", "type", props.ViewConfigurationType, "fovMutable", props.FovMutable)
	}
	return nil
}

func (m *Manager) checkBlendModes() {
	modes, res := m.rt.EnumerateEnvironmentBlendModes(m.instance, m.system, m.viewConfigType)
	if res.Failed() || len(modes) == 0 {
		slogger().Warn("xr: no environment blend modes", "result", res)
		return
	}
	if !slices.Contains(modes, m.blendMode) {
		slogger().Warn("xr: blend mode not supported, using runtime default",
			"requested", m.blendMode, "using", modes[0])
		m.blendMode = modes[0]
	}
}

func (m *Manager) setupGraphics() error {
	req, res := m.rt.GetGraphicsRequirements(m.instance, m.system)
	if res.Failed() {
		return m.initError("xrGetGraphicsRequirements", res)
	}
	binding, err := m.graphics.Setup(req)
	if err != nil {
		return &InitError{Call: msgGraphicsFailed, Err: err, Locale: m.opts.locale}
	}
	m.state = StateGraphicsReady
	m.binding = binding
	return nil
}

func (m *Manager) createSession() error {
	session, res := m.rt.CreateSession(m.instance, &openxr.SessionCreateInfo{
		SystemID: m.system,
		Binding:  m.binding,
	})
	if res.Failed() {
		return m.initError("xrCreateSession", res)
	}
	m.session = session
	m.state = StateSessionCreated
	return nil
}

// setupOptionalFeatures configures the color space, the display refresh
// rate and the space extension. Failures only disable the feature.
func (m *Manager) setupOptionalFeatures() error {
	if m.IsExtensionEnabled(openxr.ExtColorSpaceFB) {
		m.setupColorSpace()
	} else {
		slogger().Debug("xr: color space extension not available")
	}
	if m.IsExtensionEnabled(openxr.ExtDisplayRefreshRateFB) {
		m.setupRefreshRate()
	} else {
		slogger().Debug("xr: display refresh rate extension not available")
	}
	if ext := m.opts.spaceExt; ext != nil {
		if err := ext.Initialize(m.instance, m.session); err != nil {
			slogger().Warn("xr: space extension disabled", "err", err)
		} else {
			m.spaceExtReady = true
		}
	}
	return nil
}

func (m *Manager) setupSpaces() error {
	m.checkReferenceSpaces()
	if im := m.opts.input; im != nil {
		if err := im.Init(m.instance, m.session); err != nil {
			slogger().Warn("xr: input manager disabled", "err", err)
		} else {
			m.inputReady = true
		}
	}
	if err := m.setupAppSpace(); err != nil {
		return err
	}
	return m.setupViewSpace()
}

// Teardown destroys everything Initialize created, in reverse order.
// It is safe to call more than once.
func (m *Manager) Teardown() {
	if m.inputReady {
		m.opts.input.Teardown()
		m.inputReady = false
	}
	if m.spaceExtReady {
		m.opts.spaceExt.Teardown()
		m.spaceExtReady = false
	}
	if m.passthroughLayer != 0 {
		m.check("xrDestroyPassthroughLayerFB", m.rt.DestroyPassthroughLayer(m.passthroughLayer))
		m.passthroughLayer = 0
	}
	if m.passthroughFeature != 0 {
		m.check("xrDestroyPassthroughFB", m.rt.DestroyPassthrough(m.passthroughFeature))
		m.passthroughFeature = 0
	}
	m.destroySwapchains()
	if m.appSpace != 0 {
		m.check("xrDestroySpace", m.rt.DestroySpace(m.appSpace))
		m.appSpace = 0
	}
	if m.viewSpace != 0 {
		m.check("xrDestroySpace", m.rt.DestroySpace(m.viewSpace))
		m.viewSpace = 0
	}
	if m.session != 0 {
		m.check("xrDestroySession", m.rt.DestroySession(m.session))
		m.session = 0
	}
	if m.debugMessenger != 0 {
		m.check("xrDestroyDebugUtilsMessengerEXT", m.rt.DestroyDebugMessenger(m.debugMessenger))
		m.debugMessenger = 0
	}
	if m.instance != 0 {
		m.check("xrDestroyInstance", m.rt.DestroyInstance(m.instance))
		m.instance = 0
	}

	m.state = StateIdle
	m.sessionRunning = false
	m.binding = nil
	m.availableSpaces = nil
	m.emulatingLocalFloor = false
	m.floorResetPending = false
	m.referenceSpace = openxr.ReferenceSpaceLocal
	m.clock = AnimationClock{}
}

// check logs a failed call that cannot be acted upon and reports whether
// it succeeded.
func (m *Manager) check(call string, res openxr.Result) bool {
	if res.Failed() {
		slogger().Warn("xr: call failed", "call", call, "result", res)
		return false
	}
	return true
}

// resultError wraps a failed result with the call name.
func resultError(call string, res openxr.Result) error {
	return fmt.Errorf("%s: %w", call, res)
}

// IsResult reports whether err carries the runtime result res.
func IsResult(err error, res openxr.Result) bool {
	var r openxr.Result
	return errors.As(err, &r) && r == res
}
