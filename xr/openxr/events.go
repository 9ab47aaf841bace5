// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package openxr

// Event is an event record returned by PollEvent.
type Event interface {
	eventType() string
}

// EventInstanceLossPending announces that the instance will be lost.
type EventInstanceLossPending struct {
	LossTime Time
}

// EventSessionStateChanged reports a session state transition.
type EventSessionStateChanged struct {
	Session Session
	State   SessionState
	Time    Time
}

// EventsLost reports that the event queue overflowed.
type EventsLost struct {
	LostEventCount uint32
}

// EventReferenceSpaceChangePending announces a recentering.
type EventReferenceSpaceChangePending struct {
	Session             Session
	ReferenceSpaceType  ReferenceSpaceType
	ChangeTime          Time
	PoseValid           bool
	PoseInPreviousSpace Posef
}

// EventInteractionProfileChanged reports a controller profile change.
type EventInteractionProfileChanged struct {
	Session Session
}

// SpaceEventKind distinguishes the spatial entity events.
type SpaceEventKind int

// Spatial entity event kinds.
const (
	SpaceSetStatusComplete SpaceEventKind = iota
	SpaceQueryResultsAvailable
	SpaceQueryComplete
	SceneCaptureComplete
)

// EventSpaceEvent carries a spatial entity event for the space extension.
type EventSpaceEvent struct {
	Kind      SpaceEventKind
	RequestID uint64
	Result    Result
}

func (EventInstanceLossPending) eventType() string         { return "InstanceLossPending" }
func (EventSessionStateChanged) eventType() string         { return "SessionStateChanged" }
func (EventsLost) eventType() string                       { return "EventsLost" }
func (EventReferenceSpaceChangePending) eventType() string { return "ReferenceSpaceChangePending" }
func (EventInteractionProfileChanged) eventType() string   { return "InteractionProfileChanged" }
func (EventSpaceEvent) eventType() string                  { return "SpaceEvent" }

// EventName returns a short name for logging.
func EventName(e Event) string {
	if e == nil {
		return "<nil>"
	}
	return e.eventType()
}
