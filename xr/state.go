// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"fmt"

	"github.com/gogpu/xr3d/xr/openxr"
)

// State is the lifecycle state of a Manager. The first five states are
// walked by Initialize; the rest mirror the runtime session state.
type State int

// Manager states.
const (
	StateIdle State = iota
	StateInstanceCreated
	StateSystemAcquired
	StateGraphicsReady
	StateSessionCreated
	StateReady
	StateSynchronized
	StateVisible
	StateFocused
	StateStopping
	StateExiting
	StateLossPending
)

var stateNames = [...]string{
	StateIdle:            "Idle",
	StateInstanceCreated: "InstanceCreated",
	StateSystemAcquired:  "SystemAcquired",
	StateGraphicsReady:   "GraphicsReady",
	StateSessionCreated:  "SessionCreated",
	StateReady:           "Ready",
	StateSynchronized:    "Synchronized",
	StateVisible:         "Visible",
	StateFocused:         "Focused",
	StateStopping:        "Stopping",
	StateExiting:         "Exiting",
	StateLossPending:     "LossPending",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// HasSession reports whether a session handle exists in state s.
func (s State) HasSession() bool { return s >= StateSessionCreated }

// stateFromSession maps a runtime session state to a manager state.
// Idle and Unknown map to StateSessionCreated.
func stateFromSession(s openxr.SessionState) State {
	switch s {
	case openxr.SessionStateReady:
		return StateReady
	case openxr.SessionStateSynchronized:
		return StateSynchronized
	case openxr.SessionStateVisible:
		return StateVisible
	case openxr.SessionStateFocused:
		return StateFocused
	case openxr.SessionStateStopping:
		return StateStopping
	case openxr.SessionStateExiting:
		return StateExiting
	case openxr.SessionStateLossPending:
		return StateLossPending
	default:
		return StateSessionCreated
	}
}
