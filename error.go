// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"encoding/json"
	"errors"
)

// Library-level errors returned to callers of the builder and monitor
// APIs. Callers classify a returned error with errors.Is against these
// sentinels rather than matching on error strings.
var (
	// ErrNotFound is returned when a tag has no registered monitor or deadline.
	ErrNotFound = errors.New("healthmon: not found")

	// ErrInUse is returned by DeadlineMonitor.GetDeadline when a deadline
	// token has already been handed out and not yet released.
	ErrInUse = errors.New("healthmon: already in use")

	// ErrAlreadyExists is returned when a builder operation would silently
	// collide with an existing registration in a context that forbids it.
	ErrAlreadyExists = errors.New("healthmon: already exists")

	// ErrInvalidArgument is returned for malformed configuration: an
	// inverted TimeRange, an unknown transition endpoint, or a cycle ratio
	// that does not divide evenly.
	ErrInvalidArgument = errors.New("healthmon: invalid argument")

	// ErrWrongState is returned when an operation is attempted in a state
	// that forbids it: starting a HealthMonitor with un-taken monitors,
	// building with zero monitors, building a LogicMonitor with zero
	// transitions.
	ErrWrongState = errors.New("healthmon: wrong state")

	// ErrFailed is returned by Deadline.Start when the token's underlying
	// state is latched as already failed (a prior underrun) or is still
	// running, which includes a missed window that was never cleared.
	ErrFailed = errors.New("healthmon: failed")

	// ErrInvalidState is returned by LogicMonitor.Transition and
	// LogicMonitor.State once the monitor's current state has latched as
	// invalid: a transition named a state outside the declared set.
	ErrInvalidState = errors.New("healthmon: invalid state")

	// ErrInvalidTransition is returned by LogicMonitor.Transition when
	// the requested (current, new) pair is not a declared edge.
	ErrInvalidTransition = errors.New("healthmon: invalid transition")
)

// Kind classifies an evaluation-time fault reported to a worker's error
// callback or WorkerListener. Evaluation faults are never returned to an
// application caller (spec for this package says observations go to the
// worker only); Kind is how a listener distinguishes them without a type
// switch over three different fault structs.
type Kind uint8

const (
	// KindTooEarly indicates a deadline or heartbeat was observed before
	// its allowed window opened.
	KindTooEarly Kind = iota + 1

	// KindTooLate indicates a deadline or heartbeat was observed after its
	// allowed window closed, or a heartbeat never arrived in time.
	KindTooLate

	// KindMultipleHeartbeats indicates more than one heartbeat arrived
	// within a single evaluation cycle.
	KindMultipleHeartbeats

	// KindInvalidState indicates a LogicMonitor transition named a state
	// outside its allowed set.
	KindInvalidState

	// KindInvalidTransition indicates a LogicMonitor transition named a
	// pair of known states that is not a declared edge.
	KindInvalidTransition
)

func (k Kind) String() string {
	switch k {
	case KindTooEarly:
		return "too-early"
	case KindTooLate:
		return "too-late"
	case KindMultipleHeartbeats:
		return "multiple-heartbeats"
	case KindInvalidState:
		return "invalid-state"
	case KindInvalidTransition:
		return "invalid-transition"
	default:
		return "unknown"
	}
}

// MarshalJSON renders a Kind by its name rather than its numeric value.
func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// MonitorFault is a single evaluation-time observation emitted by a
// monitor during a worker cycle: which monitor, and what went wrong.
type MonitorFault struct {
	Tag  MonitorTag
	Kind Kind
}

func (f MonitorFault) Error() string {
	return "healthmon: " + f.Tag.String() + ": " + f.Kind.String()
}
