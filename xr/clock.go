// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xr

import (
	"time"

	"github.com/gogpu/xr3d/xr/openxr"
)

// AnimationClock is the scene animation time driven by predicted display
// times. Each frame advances it by the time since the previous frame,
// capped at the display period so a stall does not make animations jump.
type AnimationClock struct {
	previous openxr.Time
	elapsed  time.Duration
	step     time.Duration
}

// Advance moves the clock to displayTime and returns the step. The first
// call only sets the step to the period; there is no previous frame to
// measure from.
func (c *AnimationClock) Advance(displayTime openxr.Time, period openxr.Duration) time.Duration {
	p := time.Duration(period)
	if c.previous == 0 {
		c.step = p
	} else {
		c.step = min(time.Duration(displayTime-c.previous), p)
		c.elapsed += c.step
	}
	c.previous = displayTime
	return c.step
}

// Elapsed returns the accumulated animation time.
func (c *AnimationClock) Elapsed() time.Duration { return c.elapsed }

// Step returns the last step.
func (c *AnimationClock) Step() time.Duration { return c.step }

// Clock returns the manager's animation clock.
func (m *Manager) Clock() *AnimationClock { return &m.clock }
