// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/gogpu/xr3d/config"
	"github.com/gogpu/xr3d/render"
	"github.com/gogpu/xr3d/xr/openxr"
)

type options struct {
	appName        string
	multiview      bool
	referenceSpace openxr.ReferenceSpaceType
	passthrough    bool
	samples        int
	debug          bool
	blendMode      openxr.EnvironmentBlendMode
	foveation      openxr.FoveationLevel
	refreshRate    float32
	locale         language.Tag

	renderer render.SceneRenderer
	input    InputManager
	spaceExt SpaceExtension
	scene    OriginFinder
	capture  *FrameCapture
}

func defaultOptions() options {
	return options{
		appName:        "xr3d",
		referenceSpace: openxr.ReferenceSpaceLocal,
		samples:        1,
		blendMode:      openxr.BlendModeOpaque,
		foveation:      openxr.FoveationLevelHigh,
		locale:         language.English,
	}
}

// Option configures a Manager.
type Option func(*options)

// WithApplicationName sets the application name reported to the runtime.
func WithApplicationName(name string) Option {
	return func(o *options) { o.appName = name }
}

// WithMultiview renders all eyes into one array swapchain. The choice is
// fixed when the swapchains are created.
func WithMultiview(on bool) Option {
	return func(o *options) { o.multiview = on }
}

// WithReferenceSpace sets the requested application reference space.
// The default is LOCAL.
func WithReferenceSpace(t openxr.ReferenceSpaceType) Option {
	return func(o *options) { o.referenceSpace = t }
}

// WithPassthrough enables camera passthrough when the runtime supports it.
func WithPassthrough(on bool) Option {
	return func(o *options) { o.passthrough = on }
}

// WithSamples sets the MSAA sample count of the render targets.
func WithSamples(n int) Option {
	return func(o *options) { o.samples = n }
}

// WithDebug enables the debug messenger and the core validation layer.
func WithDebug(on bool) Option {
	return func(o *options) { o.debug = on }
}

// WithBlendMode sets the environment blend mode used while passthrough is
// off.
func WithBlendMode(m openxr.EnvironmentBlendMode) Option {
	return func(o *options) { o.blendMode = m }
}

// WithFoveation sets the fixed foveation level applied to the swapchains.
func WithFoveation(level openxr.FoveationLevel) Option {
	return func(o *options) { o.foveation = level }
}

// WithRefreshRate requests a display refresh rate. Zero keeps the system
// default.
func WithRefreshRate(hz float32) Option {
	return func(o *options) { o.refreshRate = hz }
}

// WithLocale selects the language of InitError messages.
func WithLocale(tag language.Tag) Option {
	return func(o *options) { o.locale = tag }
}

// WithRenderer sets the scene renderer that fills the swapchain images.
func WithRenderer(r render.SceneRenderer) Option {
	return func(o *options) { o.renderer = r }
}

// WithInputManager installs the controller input hook.
func WithInputManager(im InputManager) Option {
	return func(o *options) { o.input = im }
}

// WithSpaceExtension installs the spatial anchor hook.
func WithSpaceExtension(ext SpaceExtension) Option {
	return func(o *options) { o.spaceExt = ext }
}

// WithScene sets where the manager looks for the XR origin.
func WithScene(scene OriginFinder) Option {
	return func(o *options) { o.scene = scene }
}

// WithCapture writes rendered eye images through c.
func WithCapture(c *FrameCapture) Option {
	return func(o *options) { o.capture = c }
}

// OptionsFromConfig converts a loaded configuration into options.
func OptionsFromConfig(cfg *config.Config) ([]Option, error) {
	opts := []Option{
		WithApplicationName(cfg.XR.ApplicationName),
		WithMultiview(cfg.XR.Multiview),
		WithPassthrough(cfg.XR.Passthrough),
		WithDebug(cfg.Debug),
		WithFoveation(openxr.FoveationLevel(cfg.XR.FoveationLevel)),
		WithRefreshRate(cfg.XR.RefreshRate),
	}
	if cfg.XR.Samples > 0 {
		opts = append(opts, WithSamples(cfg.XR.Samples))
	}
	if cfg.XR.ReferenceSpace != "" {
		t, err := openxr.ParseReferenceSpace(cfg.XR.ReferenceSpace)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithReferenceSpace(t))
	}
	if cfg.XR.BlendMode != "" {
		m, err := parseBlendMode(cfg.XR.BlendMode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithBlendMode(m))
	}
	if cfg.Locale != "" {
		tag, err := language.Parse(cfg.Locale)
		if err != nil {
			return nil, fmt.Errorf("xr: locale: %w", err)
		}
		opts = append(opts, WithLocale(tag))
	}
	if cfg.Capture.Dir != "" {
		opts = append(opts, WithCapture(NewFrameCapture(cfg.Capture.Dir, cfg.Capture.Frames)))
	}
	return opts, nil
}

func parseBlendMode(s string) (openxr.EnvironmentBlendMode, error) {
	switch s {
	case "opaque":
		return openxr.BlendModeOpaque, nil
	case "additive":
		return openxr.BlendModeAdditive, nil
	case "alpha-blend":
		return openxr.BlendModeAlphaBlend, nil
	default:
		return 0, fmt.Errorf("xr: unknown blend mode %q", s)
	}
}
