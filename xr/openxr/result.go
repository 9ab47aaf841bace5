// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package openxr

import "fmt"

// Result is an XrResult code. Non-negative values are successes.
// Result implements error so failures can be wrapped and matched with
// errors.Is.
type Result int32

// Result codes.
const (
	Success                               Result = 0
	TimeoutExpired                        Result = 1
	SessionLossPending                    Result = 3
	EventUnavailable                      Result = 4
	SpaceBoundsUnavailable                Result = 7
	SessionNotFocused                     Result = 8
	FrameDiscarded                        Result = 9
	ErrorValidationFailure                Result = -1
	ErrorRuntimeFailure                   Result = -2
	ErrorOutOfMemory                      Result = -3
	ErrorAPIVersionUnsupported            Result = -4
	ErrorInitializationFailed             Result = -6
	ErrorFunctionUnsupported              Result = -7
	ErrorFeatureUnsupported               Result = -8
	ErrorExtensionNotPresent              Result = -9
	ErrorLimitReached                     Result = -10
	ErrorSizeInsufficient                 Result = -11
	ErrorHandleInvalid                    Result = -12
	ErrorInstanceLost                     Result = -13
	ErrorSessionRunning                   Result = -14
	ErrorSessionNotRunning                Result = -16
	ErrorSessionLost                      Result = -17
	ErrorSystemInvalid                    Result = -18
	ErrorPathInvalid                      Result = -19
	ErrorSwapchainRectInvalid             Result = -25
	ErrorSwapchainFormatUnsupported       Result = -26
	ErrorSessionNotReady                  Result = -28
	ErrorSessionNotStopping               Result = -29
	ErrorReferenceSpaceUnsupported        Result = -31
	ErrorFormFactorUnsupported            Result = -34
	ErrorFormFactorUnavailable            Result = -35
	ErrorAPILayerNotPresent               Result = -36
	ErrorCallOrderInvalid                 Result = -37
	ErrorGraphicsDeviceInvalid            Result = -38
	ErrorPoseInvalid                      Result = -39
	ErrorViewConfigurationTypeUnsupported Result = -41
	ErrorEnvironmentBlendModeUnsupported  Result = -42
)

var resultNames = map[Result]string{
	Success:                               "XR_SUCCESS",
	TimeoutExpired:                        "XR_TIMEOUT_EXPIRED",
	SessionLossPending:                    "XR_SESSION_LOSS_PENDING",
	EventUnavailable:                      "XR_EVENT_UNAVAILABLE",
	SpaceBoundsUnavailable:                "XR_SPACE_BOUNDS_UNAVAILABLE",
	SessionNotFocused:                     "XR_SESSION_NOT_FOCUSED",
	FrameDiscarded:                        "XR_FRAME_DISCARDED",
	ErrorValidationFailure:                "XR_ERROR_VALIDATION_FAILURE",
	ErrorRuntimeFailure:                   "XR_ERROR_RUNTIME_FAILURE",
	ErrorOutOfMemory:                      "XR_ERROR_OUT_OF_MEMORY",
	ErrorAPIVersionUnsupported:            "XR_ERROR_API_VERSION_UNSUPPORTED",
	ErrorInitializationFailed:             "XR_ERROR_INITIALIZATION_FAILED",
	ErrorFunctionUnsupported:              "XR_ERROR_FUNCTION_UNSUPPORTED",
	ErrorFeatureUnsupported:               "XR_ERROR_FEATURE_UNSUPPORTED",
	ErrorExtensionNotPresent:              "XR_ERROR_EXTENSION_NOT_PRESENT",
	ErrorLimitReached:                     "XR_ERROR_LIMIT_REACHED",
	ErrorSizeInsufficient:                 "XR_ERROR_SIZE_INSUFFICIENT",
	ErrorHandleInvalid:                    "XR_ERROR_HANDLE_INVALID",
	ErrorInstanceLost:                     "XR_ERROR_INSTANCE_LOST",
	ErrorSessionRunning:                   "XR_ERROR_SESSION_RUNNING",
	ErrorSessionNotRunning:                "XR_ERROR_SESSION_NOT_RUNNING",
	ErrorSessionLost:                      "XR_ERROR_SESSION_LOST",
	ErrorSystemInvalid:                    "XR_ERROR_SYSTEM_INVALID",
	ErrorPathInvalid:                      "XR_ERROR_PATH_INVALID",
	ErrorSwapchainRectInvalid:             "XR_ERROR_SWAPCHAIN_RECT_INVALID",
	ErrorSwapchainFormatUnsupported:       "XR_ERROR_SWAPCHAIN_FORMAT_UNSUPPORTED",
	ErrorSessionNotReady:                  "XR_ERROR_SESSION_NOT_READY",
	ErrorSessionNotStopping:               "XR_ERROR_SESSION_NOT_STOPPING",
	ErrorReferenceSpaceUnsupported:        "XR_ERROR_REFERENCE_SPACE_UNSUPPORTED",
	ErrorFormFactorUnsupported:            "XR_ERROR_FORM_FACTOR_UNSUPPORTED",
	ErrorFormFactorUnavailable:            "XR_ERROR_FORM_FACTOR_UNAVAILABLE",
	ErrorAPILayerNotPresent:               "XR_ERROR_API_LAYER_NOT_PRESENT",
	ErrorCallOrderInvalid:                 "XR_ERROR_CALL_ORDER_INVALID",
	ErrorGraphicsDeviceInvalid:            "XR_ERROR_GRAPHICS_DEVICE_INVALID",
	ErrorPoseInvalid:                      "XR_ERROR_POSE_INVALID",
	ErrorViewConfigurationTypeUnsupported: "XR_ERROR_VIEW_CONFIGURATION_TYPE_UNSUPPORTED",
	ErrorEnvironmentBlendModeUnsupported:  "XR_ERROR_ENVIRONMENT_BLEND_MODE_UNSUPPORTED",
}

// Succeeded reports whether r is a success code (XR_SUCCEEDED).
func (r Result) Succeeded() bool { return r >= 0 }

// Failed reports whether r is an error code (XR_FAILED).
func (r Result) Failed() bool { return r < 0 }

// Unqualified reports whether r is exactly Success (XR_UNQUALIFIED_SUCCESS).
func (r Result) Unqualified() bool { return r == Success }

// String returns the XR_* name of r.
func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	if r < 0 {
		return fmt.Sprintf("XR_UNKNOWN_FAILURE_%d", int32(r))
	}
	return fmt.Sprintf("XR_UNKNOWN_SUCCESS_%d", int32(r))
}

// Error implements error.
func (r Result) Error() string { return r.String() }
