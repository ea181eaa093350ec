// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
)

func hashStateTag(s StateTag) uint64 {
	return xxhash.Sum64String(string(s))
}

type transitionEdge struct {
	from, to StateTag
}

// LogicMonitorBuilder declares a finite state machine's states and its
// legal edges before producing an immutable LogicMonitor.
type LogicMonitorBuilder struct {
	initial     StateTag
	states      []StateTag
	stateSet    map[StateTag]bool
	transitions map[transitionEdge]bool
	order       []transitionEdge
}

// NewLogicMonitorBuilder returns a builder whose state machine starts in
// initial. initial is implicitly added to the declared state set.
func NewLogicMonitorBuilder(initial StateTag) *LogicMonitorBuilder {
	b := &LogicMonitorBuilder{
		initial:     initial,
		stateSet:    make(map[StateTag]bool),
		transitions: make(map[transitionEdge]bool),
	}
	b.addState(initial)
	return b
}

func (b *LogicMonitorBuilder) addState(s StateTag) {
	if b.stateSet[s] {
		return
	}

	b.stateSet[s] = true
	b.states = append(b.states, s)
}

// AddState declares an additional reachable state. Declaring the same
// state twice is a no-op.
func (b *LogicMonitorBuilder) AddState(s StateTag) *LogicMonitorBuilder {
	b.addState(s)
	return b
}

// AddTransition declares a legal edge from one state to another. Self
// loops are legal only if declared explicitly. Declaring the same edge
// twice is a no-op.
func (b *LogicMonitorBuilder) AddTransition(from, to StateTag) *LogicMonitorBuilder {
	edge := transitionEdge{from, to}
	if b.transitions[edge] {
		return b
	}

	b.transitions[edge] = true
	b.order = append(b.order, edge)
	return b
}

// Build finalizes the LogicMonitor. A monitor with zero declared
// transitions is rejected with ErrWrongState, since it could never
// legally leave its initial state. A transition naming a state outside
// the declared set is rejected with ErrInvalidArgument.
func (b *LogicMonitorBuilder) Build(tag MonitorTag) (*LogicMonitor, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: logic monitor %q declares no transitions", ErrWrongState, tag)
	}

	for _, edge := range b.order {
		if !b.stateSet[edge.from] {
			return nil, fmt.Errorf("%w: logic monitor %q transition references undeclared state %q", ErrInvalidArgument, tag, edge.from)
		}

		if !b.stateSet[edge.to] {
			return nil, fmt.Errorf("%w: logic monitor %q transition references undeclared state %q", ErrInvalidArgument, tag, edge.to)
		}
	}

	m := &LogicMonitor{
		tag:         tag,
		states:      append([]StateTag(nil), b.states...),
		allowed:     make(map[StateTag]bool, len(b.states)),
		transitions: make(map[transitionEdge]bool, len(b.order)),
	}

	for _, s := range b.states {
		m.allowed[s] = true
	}

	for edge := range b.transitions {
		m.transitions[edge] = true
	}

	m.current.Store(hashStateTag(b.initial))
	return m, nil
}

// LogicMonitor tracks a finite state machine's current state, latching a
// permanent fault the first time it observes an invalid state or an
// undeclared transition. Once latched, the monitor never recovers: a
// fresh LogicMonitor is the only way to clear the fault.
type LogicMonitor struct {
	tag         MonitorTag
	states      []StateTag
	allowed     map[StateTag]bool
	transitions map[transitionEdge]bool

	current atomic.Uint64
	latch   atomic.Uint32 // 0 = ok, else a Kind value
}

func (m *LogicMonitor) resolve(hash uint64) (StateTag, bool) {
	for _, s := range m.states {
		if hashStateTag(s) == hash {
			return s, true
		}
	}

	return "", false
}

// State returns the monitor's current state, or an error if the monitor
// has latched a fault.
func (m *LogicMonitor) State() (StateTag, error) {
	if k := Kind(m.latch.Load()); k != 0 {
		return "", m.latchedError(k)
	}

	s, ok := m.resolve(m.current.Load())
	if !ok {
		// unreachable absent a bug: current is only ever written from a
		// value already present in m.states.
		m.latch.Store(uint32(KindInvalidState))
		return "", ErrInvalidState
	}

	return s, nil
}

func (m *LogicMonitor) latchedError(k Kind) error {
	if k == KindInvalidTransition {
		return ErrInvalidTransition
	}

	return ErrInvalidState
}

// Transition attempts to move the state machine to newState. It fails,
// latching the monitor permanently, if newState is not a declared state
// (ErrInvalidState) or if (current, newState) is not a declared edge
// (ErrInvalidTransition). A latched monitor rejects every subsequent
// Transition with its original error.
func (m *LogicMonitor) Transition(newState StateTag) (StateTag, error) {
	current, err := m.State()
	if err != nil {
		return "", err
	}

	if !m.allowed[newState] {
		m.latch.Store(uint32(KindInvalidState))
		return "", ErrInvalidState
	}

	if !m.transitions[transitionEdge{current, newState}] {
		m.latch.Store(uint32(KindInvalidTransition))
		return "", ErrInvalidTransition
	}

	m.current.Store(hashStateTag(newState))
	return newState, nil
}

// evaluate implements monitorEvaluator. A latched fault is reported every
// cycle; evaluate never clears it.
func (m *LogicMonitor) evaluate(_ time.Time, onError onErrorFunc) {
	if k := Kind(m.latch.Load()); k != 0 {
		onError(m.tag, k)
	}
}
