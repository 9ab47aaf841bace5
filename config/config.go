// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads xr3d settings from TOML or YAML files and the
// environment, and watches a file for live changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// Config is the complete xr3d configuration.
type Config struct {
	// Debug enables the XR debug messenger and validation layer.
	Debug bool `toml:"debug" yaml:"debug"`

	// Locale selects the language of user-visible error messages (BCP 47).
	Locale string `toml:"locale" yaml:"locale"`

	XR      XR      `toml:"xr" yaml:"xr"`
	Shader  Shader  `toml:"shader" yaml:"shader"`
	Capture Capture `toml:"capture" yaml:"capture"`
}

// XR configures the session manager.
type XR struct {
	ApplicationName string `toml:"application_name" yaml:"application_name"`

	// Multiview renders both eyes into one array swapchain.
	Multiview bool `toml:"multiview" yaml:"multiview"`

	// ReferenceSpace is one of view, local, stage, local-floor, unbounded.
	ReferenceSpace string `toml:"reference_space" yaml:"reference_space"`

	Passthrough bool `toml:"passthrough" yaml:"passthrough"`

	// Samples is the MSAA sample count of the render targets.
	Samples int `toml:"samples" yaml:"samples"`

	// BlendMode is one of opaque, additive, alpha-blend.
	BlendMode string `toml:"blend_mode" yaml:"blend_mode"`

	// FoveationLevel is 0 (none) to 3 (high).
	FoveationLevel int `toml:"foveation_level" yaml:"foveation_level"`

	// RefreshRate is requested from the display; 0 keeps the system default.
	RefreshRate float32 `toml:"refresh_rate" yaml:"refresh_rate"`
}

// Shader configures the shader cache.
type Shader struct {
	// CacheDir holds the precompiled collection file.
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`

	// Targets lists bake targets: spirv, glsl, msl, hlsl.
	Targets []string `toml:"targets" yaml:"targets"`

	Validate bool `toml:"validate" yaml:"validate"`
}

// Capture configures eye image capture.
type Capture struct {
	// Dir receives TIFF files; empty disables capture.
	Dir string `toml:"dir" yaml:"dir"`

	// Frames limits the number of captured frames; 0 means one.
	Frames int `toml:"frames" yaml:"frames"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Locale: "en",
		XR: XR{
			ApplicationName: "xr3d",
			ReferenceSpace:  "local",
			Samples:         1,
			BlendMode:       "opaque",
		},
		Shader: Shader{
			Targets:  []string{"spirv"},
			Validate: true,
		},
	}
}

// Load reads path over the defaults and applies environment overrides.
// The format is chosen by extension: .toml, .yaml or .yml.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg := Default()
	if err := Decode(cfg, data, Format(path)); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// FileFormat is a configuration file syntax.
type FileFormat int

// File formats.
const (
	FormatUnknown FileFormat = iota
	FormatTOML
	FormatYAML
)

// Format returns the file format implied by the extension of path.
func Format(path string) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatUnknown
	}
}

// Decode unmarshals data into cfg. Unknown keys are rejected.
func Decode(cfg *Config, data []byte, format FileFormat) error {
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	default:
		return ErrUnknownFormat
	}
}

// Encode marshals cfg in format.
func Encode(cfg *Config, format FileFormat) ([]byte, error) {
	switch format {
	case FormatTOML:
		return toml.Marshal(cfg)
	case FormatYAML:
		return yaml.Marshal(cfg)
	default:
		return nil, ErrUnknownFormat
	}
}

// Environment variables read by ApplyEnv.
const (
	EnvMultiview      = "XR3D_MULTIVIEW"
	EnvDebug          = "XR3D_DEBUG"
	EnvShaderCacheDir = "XR3D_SHADER_CACHE_DIR"
	EnvReferenceSpace = "XR3D_REFERENCE_SPACE"
	EnvPassthrough    = "XR3D_PASSTHROUGH"
	EnvCaptureDir     = "XR3D_CAPTURE_DIR"
	EnvLocale         = "XR3D_LOCALE"
)

// ApplyEnv overrides fields from environment variables found by lookup
// (normally os.LookupEnv). Boolean variables accept strconv.ParseBool
// syntax and plain integers, where any non-zero value is true.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	boolVar := func(name string, dst *bool) {
		v, ok := lookup(name)
		if !ok {
			return
		}
		b, err := parseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = b
	}
	stringVar := func(name string, dst *string) {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}

	boolVar(EnvMultiview, &c.XR.Multiview)
	boolVar(EnvDebug, &c.Debug)
	boolVar(EnvPassthrough, &c.XR.Passthrough)
	stringVar(EnvShaderCacheDir, &c.Shader.CacheDir)
	stringVar(EnvReferenceSpace, &c.XR.ReferenceSpace)
	stringVar(EnvCaptureDir, &c.Capture.Dir)
	stringVar(EnvLocale, &c.Locale)
	return errors.Join(errs...)
}

func parseBool(s string) (bool, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0, nil
	}
	return strconv.ParseBool(s)
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.XR.ReferenceSpace {
	case "", "view", "local", "stage", "local-floor", "unbounded":
	default:
		errs = append(errs, fmt.Errorf("xr.reference_space: unknown value %q", c.XR.ReferenceSpace))
	}
	switch c.XR.BlendMode {
	case "", "opaque", "additive", "alpha-blend":
	default:
		errs = append(errs, fmt.Errorf("xr.blend_mode: unknown value %q", c.XR.BlendMode))
	}
	if c.XR.Samples < 0 || c.XR.Samples > 16 {
		errs = append(errs, fmt.Errorf("xr.samples: %d out of range [0, 16]", c.XR.Samples))
	}
	if c.XR.FoveationLevel < 0 || c.XR.FoveationLevel > 3 {
		errs = append(errs, fmt.Errorf("xr.foveation_level: %d out of range [0, 3]", c.XR.FoveationLevel))
	}
	if c.Capture.Frames < 0 {
		errs = append(errs, fmt.Errorf("capture.frames: %d is negative", c.Capture.Frames))
	}
	for _, t := range c.Shader.Targets {
		switch t {
		case "spirv", "glsl", "msl", "hlsl":
		default:
			errs = append(errs, fmt.Errorf("shader.targets: unknown target %q", t))
		}
	}
	return errors.Join(errs...)
}
