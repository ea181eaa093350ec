// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"fmt"
	"time"
)

// TimeRange is an inclusive [Min,Max] duration window. A TimeRange is
// immutable once constructed.
type TimeRange struct {
	Min time.Duration
	Max time.Duration
}

// NewTimeRange constructs a TimeRange, enforcing Min <= Max. Violating the
// invariant is a programming error in the caller's configuration and is
// rejected with an error rather than a panic, so that builder code can
// surface it uniformly with the rest of this package's InvalidArgument
// failures.
func NewTimeRange(min, max time.Duration) (TimeRange, error) {
	if min > max {
		return TimeRange{}, fmt.Errorf("%w: time range min (%s) must be <= max (%s)", ErrInvalidArgument, min, max)
	}

	return TimeRange{Min: min, Max: max}, nil
}

func (r TimeRange) String() string {
	return fmt.Sprintf("[%s,%s]", r.Min, r.Max)
}

// durationToMillis truncates a Duration into the u32-width millisecond
// timestamps used throughout the packed monitor states. Runtimes are
// assumed to stay below the ~49-day ceiling this width implies.
func durationToMillis(d time.Duration) uint32 {
	return uint32(d.Milliseconds())
}
