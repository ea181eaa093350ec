// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"fmt"
	"sync/atomic"
	"time"
)

// deadlineSlot is one registered deadline template within a DeadlineMonitor:
// its configured window and its live, lock-free status.
type deadlineSlot struct {
	tag   DeadlineTag
	rng   TimeRange
	state *deadlineState
	taken atomic.Bool
}

// DeadlineMonitorBuilder registers deadline templates before producing an
// immutable DeadlineMonitor.
type DeadlineMonitorBuilder struct {
	tags  []DeadlineTag
	slots map[DeadlineTag]*deadlineSlot
	err   error
}

// NewDeadlineMonitorBuilder returns an empty DeadlineMonitorBuilder.
func NewDeadlineMonitorBuilder() *DeadlineMonitorBuilder {
	return &DeadlineMonitorBuilder{slots: make(map[DeadlineTag]*deadlineSlot)}
}

// AddDeadline registers a deadline template identified by tag, with the
// given allowed window. Calling AddDeadline twice with the same tag is
// rejected at Build time with ErrAlreadyExists.
func (b *DeadlineMonitorBuilder) AddDeadline(tag DeadlineTag, r TimeRange) *DeadlineMonitorBuilder {
	if b.err != nil {
		return b
	}

	if _, exists := b.slots[tag]; exists {
		b.err = fmt.Errorf("%w: deadline tag %q already registered", ErrAlreadyExists, tag)
		return b
	}

	b.slots[tag] = &deadlineSlot{tag: tag, rng: r, state: newDeadlineState()}
	b.tags = append(b.tags, tag)
	return b
}

// Build finalizes the DeadlineMonitor for the given owning monitor tag. A
// DeadlineMonitor with zero registered deadlines is rejected with
// ErrWrongState, since it could never evaluate to anything.
func (b *DeadlineMonitorBuilder) Build(tag MonitorTag) (*DeadlineMonitor, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.tags) == 0 {
		return nil, fmt.Errorf("%w: deadline monitor %q has no registered deadlines", ErrWrongState, tag)
	}

	return &DeadlineMonitor{
		tag:   tag,
		epoch: time.Now(),
		now:   time.Now,
		slots: b.slots,
		tags:  b.tags,
	}, nil
}

// DeadlineMonitor tracks a fixed set of deadline templates, each of which
// can be claimed exactly once as a live Deadline token.
type DeadlineMonitor struct {
	tag   MonitorTag
	epoch time.Time
	now   now
	slots map[DeadlineTag]*deadlineSlot
	tags  []DeadlineTag
}

func (m *DeadlineMonitor) elapsedMs() uint32 {
	return durationToMillis(m.now().Sub(m.epoch))
}

// GetDeadline claims the deadline registered under tag, returning a token
// the caller uses to start and stop deadline windows. GetDeadline returns
// ErrNotFound if tag was never registered, or ErrInUse if it has already
// been claimed.
func (m *DeadlineMonitor) GetDeadline(tag DeadlineTag) (*Deadline, error) {
	slot, ok := m.slots[tag]
	if !ok {
		return nil, fmt.Errorf("%w: deadline tag %q", ErrNotFound, tag)
	}

	if !slot.taken.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w: deadline tag %q", ErrInUse, tag)
	}

	return &Deadline{monitor: m, tag: tag, slot: slot}, nil
}

// evaluate implements monitorEvaluator. Every slot whose state is latched
// underrun reports KindTooEarly every cycle; every slot that is running
// and past its target timestamp reports KindTooLate every cycle. Neither
// observation clears the underlying state, and Deadline.Start refuses to
// re-arm a slot in either state, so both are reported from then on.
func (m *DeadlineMonitor) evaluate(_ time.Time, onError onErrorFunc) {
	nowMs := m.elapsedMs()
	for _, tag := range m.tags {
		snap := m.slots[tag].state.load()
		switch {
		case snap.isUnderrun():
			onError(m.tag, KindTooEarly)
		case snap.isRunning() && nowMs > snap.timestampMs():
			onError(m.tag, KindTooLate)
		}
	}
}

// Deadline is a single-owner token for one registered deadline template.
// Go has no move semantics or destructors, so the single-owner contract
// is advisory: callers must not share a *Deadline across goroutines that
// might both call Start, and must call Release if they intend to let
// another caller reclaim the tag via DeadlineMonitor.GetDeadline.
type Deadline struct {
	monitor *DeadlineMonitor
	tag     DeadlineTag
	slot    *deadlineSlot
}

// Release returns this deadline's tag so a later GetDeadline call can
// reclaim it. Release does not stop a running deadline window.
func (d *Deadline) Release() {
	d.slot.taken.Store(false)
}

// Start arms the deadline: it must be stopped before elapsed time exceeds
// the configured Max, and not before elapsed time reaches Min. Start
// fails with ErrFailed if the deadline is already running (including a
// missed window that Stop left in place) or has latched an underrun;
// neither condition is ever cleared.
func (d *Deadline) Start() (*DeadlineHandle, error) {
	nowMs := d.monitor.elapsedMs()
	maxMs := durationToMillis(d.slot.rng.Max)

	_, _, changed := d.slot.state.update(func(s deadlineSnapshot) (deadlineSnapshot, bool) {
		if s.isRunning() || s.isUnderrun() {
			return s, false
		}

		return packDeadlineSnapshot(deadlineRunning, nowMs+maxMs), true
	})

	if !changed {
		return nil, fmt.Errorf("%w: deadline %q already failed", ErrFailed, d.tag)
	}

	return &DeadlineHandle{deadline: d}, nil
}

func (d *Deadline) stop() {
	nowMs := d.monitor.elapsedMs()
	minMs := durationToMillis(d.slot.rng.Min)
	maxMs := durationToMillis(d.slot.rng.Max)

	d.slot.state.update(func(s deadlineSnapshot) (deadlineSnapshot, bool) {
		expected := s.timestampMs()
		if expected < nowMs {
			// already overdue: leave the running snapshot untouched so
			// the worker's next evaluate() reports the miss.
			return s, false
		}

		startTime := expected - maxMs
		earliestTime := startTime + minMs
		if nowMs < earliestTime {
			return packDeadlineSnapshot(deadlineUnderrun, expected), true
		}

		return newDeadlineSnapshot(), true
	})
}

// DeadlineHandle is returned by Deadline.Start and represents one armed
// deadline window. Stop is idempotent: only the first call has any
// effect.
type DeadlineHandle struct {
	deadline *Deadline
	stopped  bool
}

// Stop reports that the work this deadline was guarding has completed.
// Stopping before the window's Min duration has elapsed latches an
// underrun fault; stopping after Max has elapsed has no effect (the
// snapshot stays running, so evaluate reports the miss every cycle).
func (h *DeadlineHandle) Stop() {
	if h.stopped {
		return
	}

	h.stopped = true
	h.deadline.stop()
}
