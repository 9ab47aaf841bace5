// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"context"
	"time"

	"github.com/gogpu/xr3d/xr/openxr"
)

// EventOutcome tells the caller of PollEvents what to do with the loop.
type EventOutcome struct {
	// ShouldExit ends the frame loop; the session must be torn down.
	ShouldExit bool
	// ShouldRestart asks for a new Initialize after the teardown.
	ShouldRestart bool
}

// PollEvents drains the runtime event queue without blocking and applies
// the session state transitions.
func (m *Manager) PollEvents() EventOutcome {
	var out EventOutcome
	if m.instance == 0 {
		return out
	}
	for {
		ev, res := m.rt.PollEvent(m.instance)
		if res == openxr.EventUnavailable {
			return out
		}
		if res.Failed() {
			slogger().Warn("xr: xrPollEvent failed", "result", res)
			return out
		}

		switch e := ev.(type) {
		case openxr.EventInstanceLossPending:
			slogger().Warn("xr: instance loss pending", "lossTime", e.LossTime)
			return EventOutcome{ShouldExit: true, ShouldRestart: true}
		case openxr.EventSessionStateChanged:
			m.handleSessionStateChanged(e, &out)
		case openxr.EventsLost:
			slogger().Debug("xr: events lost", "count", e.LostEventCount)
		case openxr.EventSpaceEvent:
			if m.spaceExtReady {
				m.opts.spaceExt.HandleEvent(e)
			}
		default:
			slogger().Debug("xr: ignoring event", "type", openxr.EventName(ev))
		}
	}
}

func (m *Manager) handleSessionStateChanged(e openxr.EventSessionStateChanged, out *EventOutcome) {
	slogger().Info("xr: session state changed",
		"from", m.state, "to", stateFromSession(e.State), "time", e.Time)
	if e.Session != 0 && e.Session != m.session {
		slogger().Debug("xr: state change for unknown session ignored", "session", e.Session)
		return
	}
	m.state = stateFromSession(e.State)

	switch e.State {
	case openxr.SessionStateReady:
		if m.session == 0 {
			return
		}
		if m.check("xrBeginSession", m.rt.BeginSession(m.session, m.viewConfigType)) {
			m.sessionRunning = true
		}
	case openxr.SessionStateStopping:
		m.sessionRunning = false
		m.check("xrEndSession", m.rt.EndSession(m.session))
	case openxr.SessionStateExiting:
		out.ShouldExit = true
		out.ShouldRestart = false
	case openxr.SessionStateLossPending:
		out.ShouldExit = true
		out.ShouldRestart = true
	}
}

// Tick processes pending runtime events and, while the session runs,
// renders one frame. SessionEnded fires when the runtime asks to exit.
func (m *Manager) Tick() (EventOutcome, FrameResult) {
	out := m.PollEvents()
	if out.ShouldExit {
		m.Signals.SessionEnded.emit(out)
		return out, FrameResult{}
	}
	if !m.sessionRunning {
		return out, FrameResult{}
	}
	if m.inputReady {
		m.opts.input.PollActions()
	}
	return out, m.RenderFrame()
}

// idlePoll is how often Run polls events while the session is not
// running. A running session is paced by xrWaitFrame instead.
const idlePoll = 10 * time.Millisecond

// Run ticks until the session exits or ctx is canceled. It returns the
// final outcome and ctx.Err() when canceled.
func (m *Manager) Run(ctx context.Context) (EventOutcome, error) {
	if !m.state.HasSession() {
		return EventOutcome{}, ErrNotInitialized
	}
	idle := time.NewTicker(idlePoll)
	defer idle.Stop()
	for {
		if err := ctx.Err(); err != nil {
			return EventOutcome{}, err
		}
		out, _ := m.Tick()
		if out.ShouldExit {
			return out, nil
		}
		if m.sessionRunning {
			continue
		}
		select {
		case <-ctx.Done():
			return EventOutcome{}, ctx.Err()
		case <-idle.C:
		}
	}
}
