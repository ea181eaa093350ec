// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

// MonitorTag, DeadlineTag, and StateTag are stable, hashable identifiers
// created from strings. Each is its own type so that a tag meant for one
// kind of lookup cannot be accidentally passed where a different kind is
// expected. Go string equality and hashing are already defined over byte
// content, so unlike a systems language with pointer-sized tag words, no
// interning or leaked-allocation trick is needed here: these are plain
// string kinds.

// MonitorTag identifies a registered monitor (deadline, heartbeat, or
// logic) within a HealthMonitor.
type MonitorTag string

// String returns the tag's underlying text.
func (t MonitorTag) String() string { return string(t) }

// DeadlineTag identifies a registered deadline template within a
// DeadlineMonitor.
type DeadlineTag string

// String returns the tag's underlying text.
func (t DeadlineTag) String() string { return string(t) }

// StateTag identifies a state within a LogicMonitor's state machine.
type StateTag string

// String returns the tag's underlying text.
func (t StateTag) String() string { return string(t) }
