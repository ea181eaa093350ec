// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

// Allocator is an opaque seam carried over from the C-ABI surface this
// package's design is derived from, where monitor construction threads a
// caller-supplied allocator through every fixed-capacity container. Go's
// garbage collector makes the seam unnecessary for memory management, but
// the type is kept so a HealthMonitorBuilder's construction-time options
// read the same way across ports of this design: WithAllocator only
// records the value on the built HealthMonitor, and nothing reads it.
type Allocator interface{}

// NoopAllocator is the default Allocator used when none is supplied.
type NoopAllocator struct{}
