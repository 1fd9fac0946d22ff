// Package button turns noisy physical button samples into clean
// activate/deactivate edges.
//
// The input line picks up spurious single-sample pulses, so one press is
// never trusted on its own: only two press samples inside the confirmation
// window toggle the state. The transitions live in one explicit state
// machine so the noise-rejection rule stays auditable.
package button

import (
	"fmt"
	"time"
)

// Edge is a clean logical transition emitted by the debouncer.
type Edge uint8

const (
	// EdgeNone means the sample changed nothing.
	EdgeNone Edge = iota
	// EdgeActivate means the display should turn on.
	EdgeActivate
	// EdgeDeactivate means the display should turn off.
	EdgeDeactivate
)

func (e Edge) String() string {
	switch e {
	case EdgeNone:
		return "none"
	case EdgeActivate:
		return "activate"
	case EdgeDeactivate:
		return "deactivate"
	default:
		return fmt.Sprintf("Edge(%d)", e)
	}
}

// State is the debouncer's position in the press protocol.
type State uint8

const (
	// StateIdle means the display is off and no press is pending.
	StateIdle State = iota
	// StateArmed means one press was seen while off; a second press
	// inside the window confirms it.
	StateArmed
	// StateActive means the display is on and no press is pending.
	StateActive
	// StateActiveArmed means one press was seen while on.
	StateActiveArmed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArmed:
		return "armed"
	case StateActive:
		return "active"
	case StateActiveArmed:
		return "active-armed"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// Debouncer consumes raw press samples and emits edges. It is not safe for
// concurrent use; the sampling loop owns it.
type Debouncer struct {
	state   State
	window  time.Duration
	armedAt time.Time
}

// NewDebouncer creates a Debouncer with the given confirmation window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// State reports the current state, expiring a stale armed press first.
func (d *Debouncer) State(now time.Time) State {
	d.expire(now)
	return d.state
}

// Active reports whether the debouncer considers the display on.
func (d *Debouncer) Active(now time.Time) bool {
	s := d.State(now)
	return s == StateActive || s == StateActiveArmed
}

// Sample feeds one raw sample taken at the given instant. pressed is false
// for malformed or empty samples, which are ignored. The returned edge is
// EdgeNone except on the second press of a confirmed pair.
func (d *Debouncer) Sample(pressed bool, at time.Time) Edge {
	d.expire(at)

	if !pressed {
		return EdgeNone
	}

	switch d.state {
	case StateIdle:
		d.state = StateArmed
		d.armedAt = at
		return EdgeNone

	case StateArmed:
		d.state = StateActive
		return EdgeActivate

	case StateActive:
		d.state = StateActiveArmed
		d.armedAt = at
		return EdgeNone

	case StateActiveArmed:
		d.state = StateIdle
		return EdgeDeactivate
	}

	return EdgeNone
}

// Reset forces the debouncer back to idle. The supervisor uses it when the
// display is switched off by something other than the button, such as the
// inactivity timeout or a dead child process.
func (d *Debouncer) Reset() {
	d.state = StateIdle
}

// expire drops a pending press whose confirmation window has passed. A lone
// pulse is noise; it must never toggle anything.
func (d *Debouncer) expire(now time.Time) {
	if now.Sub(d.armedAt) <= d.window {
		return
	}
	switch d.state {
	case StateArmed:
		d.state = StateIdle
	case StateActiveArmed:
		d.state = StateActive
	}
}
