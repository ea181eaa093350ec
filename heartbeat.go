// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"fmt"
	"time"
)

// HeartbeatMonitorBuilder configures a HeartbeatMonitor's allowed window
// before producing it.
type HeartbeatMonitorBuilder struct {
	rng TimeRange
}

// NewHeartbeatMonitorBuilder returns a HeartbeatMonitorBuilder that
// expects a heartbeat within the given window of each other.
func NewHeartbeatMonitorBuilder(r TimeRange) *HeartbeatMonitorBuilder {
	return &HeartbeatMonitorBuilder{rng: r}
}

// Build finalizes the HeartbeatMonitor. internalProcessingCycle is the
// worker's evaluation interval; the window's Min must be more than half
// of it, or a beat could be silently skipped between two evaluations.
// Violating that ratio is rejected with ErrInvalidArgument.
func (b *HeartbeatMonitorBuilder) Build(tag MonitorTag, internalProcessingCycle time.Duration) (*HeartbeatMonitor, error) {
	if 2*b.rng.Min <= internalProcessingCycle {
		return nil, fmt.Errorf(
			"%w: heartbeat monitor %q window min (%s) must be more than half the internal processing cycle (%s)",
			ErrInvalidArgument, tag, b.rng.Min, internalProcessingCycle,
		)
	}

	return &HeartbeatMonitor{
		tag:   tag,
		rng:   b.rng,
		epoch: time.Now(),
		now:   time.Now,
		state: newHeartbeatState(),
	}, nil
}

// HeartbeatMonitor watches for a single periodic heartbeat arriving
// within a configured window of the previous one.
type HeartbeatMonitor struct {
	tag   MonitorTag
	rng   TimeRange
	epoch time.Time
	now   now
	state *heartbeatState
}

func (m *HeartbeatMonitor) elapsedMs() uint32 {
	return durationToMillis(m.now().Sub(m.epoch))
}

// Heartbeat records that a beat occurred now. Heartbeat is safe to call
// from any goroutine, including concurrently with itself; multiple beats
// within a single evaluation cycle are reported by the next evaluate call
// as KindMultipleHeartbeats.
func (m *HeartbeatMonitor) Heartbeat() {
	nowMs := m.elapsedMs()
	m.state.update(func(s heartbeatSnapshot) (heartbeatSnapshot, bool) {
		offset := nowMs - s.startTimestampMs()
		return s.withBeatOffset(offset), true
	})
}

// evaluate implements monitorEvaluator. hmonStart is accepted for
// interface symmetry with monitors that share the HealthMonitor's clock
// origin; this monitor's own epoch, fixed at Build time, is sufficient
// since every offset it stores is already relative to that epoch.
func (m *HeartbeatMonitor) evaluate(_ time.Time, onError onErrorFunc) {
	nowMs := m.elapsedMs()
	snap := m.state.load()

	var startMs, heartbeatMs uint32
	if snap.postInit() {
		startMs = snap.startTimestampMs()
		heartbeatMs = startMs + snap.beatOffsetMs()
	} else {
		startMs = 0
		heartbeatMs = snap.beatOffsetMs()
	}

	minMs := startMs + durationToMillis(m.rng.Min)
	maxMs := startMs + durationToMillis(m.rng.Max)

	switch snap.counter() {
	case 0:
		if nowMs > maxMs {
			onError(m.tag, KindTooLate)
		}

	case 1:
		switch {
		case heartbeatMs < minMs:
			onError(m.tag, KindTooEarly)

		case heartbeatMs > maxMs:
			onError(m.tag, KindTooLate)

		default:
			m.state.update(func(s heartbeatSnapshot) (heartbeatSnapshot, bool) {
				if s != snap {
					return s, false
				}

				return newHeartbeatSnapshot(heartbeatMs), true
			})
		}

	default:
		onError(m.tag, KindMultipleHeartbeats)
	}
}
