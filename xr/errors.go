// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/xr3d/xr/openxr"
)

var (
	// ErrNotInitialized is returned by operations that need a session.
	ErrNotInitialized = errors.New("xr: manager not initialized")

	// ErrAlreadyInitialized is returned by a second Initialize.
	ErrAlreadyInitialized = errors.New("xr: manager already initialized")

	// ErrImageAlreadyAcquired is returned when a swapchain image is
	// acquired before the previous one was released.
	ErrImageAlreadyAcquired = errors.New("xr: swapchain image already acquired")

	// ErrNoImageAcquired is returned by wait or release without acquire.
	ErrNoImageAcquired = errors.New("xr: no swapchain image acquired")

	// ErrNoGraphics is returned when the manager has no graphics binding.
	ErrNoGraphics = errors.New("xr: no graphics binding")

	// ErrNoSwapchainFormat is returned when none of the runtime formats is
	// usable by the graphics binding.
	ErrNoSwapchainFormat = errors.New("xr: no supported swapchain format")

	// ErrViewCountMismatch is returned when the runtime locates a different
	// number of views than were configured.
	ErrViewCountMismatch = errors.New("xr: located view count does not match configuration")
)

// Message keys of the user-visible initialization errors.
const (
	msgCallFailed       = "%s for runtime %s %s failed with %s."
	msgFormFactorHint   = "The OpenXR runtime has no connection to the headset; check if connection is active and functional."
	msgGraphicsFailed   = "Failed to set up 3D API integration"
	msgNoSwapchainImage = "Failed to create swapchains"
)

func init() {
	de := language.German
	_ = message.SetString(de, msgCallFailed, "%s für Laufzeit %s %s fehlgeschlagen mit %s.")
	_ = message.SetString(de, msgFormFactorHint, "Die OpenXR-Laufzeit hat keine Verbindung zum Headset; prüfen Sie, ob die Verbindung aktiv und funktionsfähig ist.")
	_ = message.SetString(de, msgGraphicsFailed, "Einrichtung der 3D-API-Integration fehlgeschlagen")
	_ = message.SetString(de, msgNoSwapchainImage, "Erstellen der Swapchains fehlgeschlagen")
}

// InitError describes a fatal failure of Manager.Initialize. Error
// returns a single descriptive line suitable for an error dialog,
// translated into Locale when a catalog entry exists.
type InitError struct {
	// Call is the failed operation, e.g. "xrCreateSession".
	Call string

	RuntimeName    string
	RuntimeVersion openxr.Version

	// Result is the runtime result, or Success when Err carries the cause.
	Result openxr.Result
	Err    error

	Locale language.Tag
}

func (e *InitError) Error() string {
	p := message.NewPrinter(e.Locale)
	if e.Result == openxr.Success && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.callText(p), e.Err)
	}
	runtime := e.RuntimeName
	if runtime == "" {
		runtime = "<unknown>"
	}
	s := p.Sprintf(msgCallFailed, e.Call, runtime, e.RuntimeVersion, e.Result)
	if e.Result == openxr.ErrorFormFactorUnavailable {
		s += "\n" + p.Sprintf(msgFormFactorHint)
	}
	return s
}

// Unwrap returns the runtime result or the underlying error, so that
// errors.Is(err, openxr.ErrorFormFactorUnavailable) works.
func (e *InitError) Unwrap() error {
	if e.Result != openxr.Success {
		return e.Result
	}
	return e.Err
}

func (e *InitError) callText(p *message.Printer) string {
	switch e.Call {
	case msgGraphicsFailed:
		return p.Sprintf(msgGraphicsFailed)
	case msgNoSwapchainImage:
		return p.Sprintf(msgNoSwapchainImage)
	default:
		return e.Call
	}
}
