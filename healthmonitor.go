// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	defaultInternalProcessingCycle = 100 * time.Millisecond
	defaultSupervisorAPICycle      = time.Second
)

// monitorSlot tracks one registered monitor's tri-state lifecycle:
// registered-but-available, or taken by a caller and ready to be folded
// into the worker's evaluation handles once Start is called.
type monitorSlot struct {
	tag     MonitorTag
	taken   bool
	monitor monitorEvaluator
}

// HealthMonitorBuilder registers deadline, heartbeat, and logic monitors
// under distinct MonitorTags before producing an immutable HealthMonitor.
type HealthMonitorBuilder struct {
	order               []MonitorTag
	deadlineBuilders    map[MonitorTag]*DeadlineMonitorBuilder
	heartbeatBuilders   map[MonitorTag]*HeartbeatMonitorBuilder
	logicBuilders       map[MonitorTag]*LogicMonitorBuilder
	supervisorAPICycle  time.Duration
	internalCycle       time.Duration
	client              SupervisorAPIClient
	listener            WorkerListener
	allocator           Allocator
	metadata            map[MonitorTag]Metadata
	err                 error
}

// NewHealthMonitorBuilder returns an empty HealthMonitorBuilder.
func NewHealthMonitorBuilder() *HealthMonitorBuilder {
	return &HealthMonitorBuilder{
		deadlineBuilders:  make(map[MonitorTag]*DeadlineMonitorBuilder),
		heartbeatBuilders: make(map[MonitorTag]*HeartbeatMonitorBuilder),
		logicBuilders:     make(map[MonitorTag]*LogicMonitorBuilder),
	}
}

func (b *HealthMonitorBuilder) reserve(tag MonitorTag) bool {
	if b.deadlineBuilders[tag] != nil || b.heartbeatBuilders[tag] != nil || b.logicBuilders[tag] != nil {
		b.err = fmt.Errorf("%w: monitor tag %q already registered", ErrAlreadyExists, tag)
		return false
	}

	b.order = append(b.order, tag)
	return true
}

// AddDeadlineMonitor registers a DeadlineMonitorBuilder under tag.
func (b *HealthMonitorBuilder) AddDeadlineMonitor(tag MonitorTag, d *DeadlineMonitorBuilder) *HealthMonitorBuilder {
	if b.err != nil {
		return b
	}

	if b.reserve(tag) {
		b.deadlineBuilders[tag] = d
	}

	return b
}

// AddHeartbeatMonitor registers a HeartbeatMonitorBuilder under tag.
func (b *HealthMonitorBuilder) AddHeartbeatMonitor(tag MonitorTag, h *HeartbeatMonitorBuilder) *HealthMonitorBuilder {
	if b.err != nil {
		return b
	}

	if b.reserve(tag) {
		b.heartbeatBuilders[tag] = h
	}

	return b
}

// AddLogicMonitor registers a LogicMonitorBuilder under tag.
func (b *HealthMonitorBuilder) AddLogicMonitor(tag MonitorTag, l *LogicMonitorBuilder) *HealthMonitorBuilder {
	if b.err != nil {
		return b
	}

	if b.reserve(tag) {
		b.logicBuilders[tag] = l
	}

	return b
}

// WithInternalProcessingCycle sets the worker's evaluation interval.
// Defaults to 100ms.
func (b *HealthMonitorBuilder) WithInternalProcessingCycle(d time.Duration) *HealthMonitorBuilder {
	b.internalCycle = d
	return b
}

// WithSupervisorAPICycle sets the minimum interval between liveness
// notifications on clean cycles. Defaults to one second.
func (b *HealthMonitorBuilder) WithSupervisorAPICycle(d time.Duration) *HealthMonitorBuilder {
	b.supervisorAPICycle = d
	return b
}

// WithSupervisorAPIClient sets the client notified on clean evaluation
// cycles. Defaults to a StubSupervisorAPIClient that only logs.
func (b *HealthMonitorBuilder) WithSupervisorAPIClient(c SupervisorAPIClient) *HealthMonitorBuilder {
	b.client = c
	return b
}

// WithListener registers a WorkerListener invoked once per evaluation
// cycle, in addition to the HealthMonitor's own internal status tracking.
func (b *HealthMonitorBuilder) WithListener(l WorkerListener) *HealthMonitorBuilder {
	b.listener = l
	return b
}

// WithAllocator records an Allocator for this HealthMonitor. See the
// Allocator type for why this is otherwise a no-op in Go.
func (b *HealthMonitorBuilder) WithAllocator(a Allocator) *HealthMonitorBuilder {
	b.allocator = a
	return b
}

// WithMetadata attaches diagnostic Metadata to a registered monitor tag,
// surfaced later by HealthMonitor.Metadata. It is not part of a
// StatusSnapshot. It has no effect on evaluation: it exists purely so operators reading a
// status dump can tell, say, which subsystem or host a given monitor tag
// belongs to.
func (b *HealthMonitorBuilder) WithMetadata(tag MonitorTag, md Metadata) *HealthMonitorBuilder {
	if b.metadata == nil {
		b.metadata = make(map[MonitorTag]Metadata)
	}

	b.metadata[tag] = md
	return b
}

// Build finalizes every registered monitor and the HealthMonitor that
// owns them. Registering zero monitors is rejected with ErrWrongState; a
// supervisor API cycle that is not a whole multiple of the internal
// processing cycle (after defaults are applied) is rejected with
// ErrInvalidArgument.
func (b *HealthMonitorBuilder) Build() (*HealthMonitor, error) {
	if b.err != nil {
		return nil, b.err
	}

	if len(b.order) == 0 {
		return nil, fmt.Errorf("%w: health monitor has no registered monitors", ErrWrongState)
	}

	internalCycle := b.internalCycle
	if internalCycle <= 0 {
		internalCycle = defaultInternalProcessingCycle
	}

	supervisorAPICycle := b.supervisorAPICycle
	if supervisorAPICycle <= 0 {
		supervisorAPICycle = defaultSupervisorAPICycle
	}

	if supervisorAPICycle%internalCycle != 0 {
		return nil, fmt.Errorf(
			"%w: supervisor API cycle (%s) must be a multiple of the internal processing cycle (%s)",
			ErrInvalidArgument, supervisorAPICycle, internalCycle,
		)
	}

	slots := make(map[MonitorTag]*monitorSlot, len(b.order))
	for _, tag := range b.order {
		var (
			eval monitorEvaluator
			err  error
		)

		switch {
		case b.deadlineBuilders[tag] != nil:
			eval, err = b.deadlineBuilders[tag].Build(tag)

		case b.heartbeatBuilders[tag] != nil:
			eval, err = b.heartbeatBuilders[tag].Build(tag, internalCycle)

		case b.logicBuilders[tag] != nil:
			eval, err = b.logicBuilders[tag].Build(tag)
		}

		if err != nil {
			return nil, err
		}

		slots[tag] = &monitorSlot{tag: tag, monitor: eval}
	}

	client := b.client
	if client == nil {
		client = StubSupervisorAPIClient{Logger: defaultLogger}
	}

	return &HealthMonitor{
		order:              b.order,
		slots:              slots,
		internalCycle:      internalCycle,
		supervisorAPICycle: supervisorAPICycle,
		client:             client,
		listener:           b.listener,
		allocator:          b.allocator,
		metadata:           b.metadata,
		tracker:            &statusTracker{faults: make(map[MonitorTag]MonitorFault)},
	}, nil
}

// StatusSnapshot is the last fault observed per monitor tag, and the time
// of the most recent evaluation cycle. A tag absent from Faults has no
// outstanding fault as of LastCycle.
type StatusSnapshot struct {
	Faults    map[MonitorTag]MonitorFault `json:"faults"`
	LastCycle time.Time                   `json:"lastCycle"`
}

// statusTracker is the HealthMonitor's always-present WorkerListener: it
// remembers the last fault per tag so StatusSnapshot/Handler can answer
// without coordinating with the worker goroutine.
type statusTracker struct {
	mu        sync.Mutex
	lastCycle time.Time
	faults    map[MonitorTag]MonitorFault
}

func (t *statusTracker) OnWorkerCycle(e WorkerCycleEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastCycle = e.Time
	for _, f := range e.Faults {
		t.faults[f.Tag] = f
	}
}

func (t *statusTracker) snapshot() StatusSnapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	faults := make(map[MonitorTag]MonitorFault, len(t.faults))
	for k, v := range t.faults {
		faults[k] = v
	}

	return StatusSnapshot{Faults: faults, LastCycle: t.lastCycle}
}

// HealthMonitor owns a fixed set of registered monitors and the
// background worker that evaluates them.
type HealthMonitor struct {
	order              []MonitorTag
	slots              map[MonitorTag]*monitorSlot
	internalCycle      time.Duration
	supervisorAPICycle time.Duration
	client             SupervisorAPIClient
	listener           WorkerListener
	allocator          Allocator
	metadata           map[MonitorTag]Metadata
	tracker            *statusTracker

	mu      sync.Mutex
	started bool
	worker  *worker
}

// GetDeadlineMonitor claims the DeadlineMonitor registered under tag. It
// returns ErrNotFound if tag was never registered, ErrInUse if it has
// already been claimed, or ErrInvalidArgument if tag names a monitor of
// a different kind. A failed type check does not consume the slot.
func (m *HealthMonitor) GetDeadlineMonitor(tag MonitorTag) (*DeadlineMonitor, error) {
	v, err := m.take(tag, func(e monitorEvaluator) bool { _, ok := e.(*DeadlineMonitor); return ok })
	if err != nil {
		return nil, err
	}

	return v.(*DeadlineMonitor), nil
}

// GetHeartbeatMonitor claims the HeartbeatMonitor registered under tag.
func (m *HealthMonitor) GetHeartbeatMonitor(tag MonitorTag) (*HeartbeatMonitor, error) {
	v, err := m.take(tag, func(e monitorEvaluator) bool { _, ok := e.(*HeartbeatMonitor); return ok })
	if err != nil {
		return nil, err
	}

	return v.(*HeartbeatMonitor), nil
}

// GetLogicMonitor claims the LogicMonitor registered under tag.
func (m *HealthMonitor) GetLogicMonitor(tag MonitorTag) (*LogicMonitor, error) {
	v, err := m.take(tag, func(e monitorEvaluator) bool { _, ok := e.(*LogicMonitor); return ok })
	if err != nil {
		return nil, err
	}

	return v.(*LogicMonitor), nil
}

// take validates and claims the slot registered under tag in one locked
// step, so a wrong-kind probe (Get a heartbeat monitor by a deadline
// monitor's tag) neither takes the slot nor races a concurrent correct
// Get.
func (m *HealthMonitor) take(tag MonitorTag, isKind func(monitorEvaluator) bool) (monitorEvaluator, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot, ok := m.slots[tag]
	if !ok {
		return nil, fmt.Errorf("%w: monitor tag %q", ErrNotFound, tag)
	}

	if slot.taken {
		return nil, fmt.Errorf("%w: monitor tag %q", ErrInUse, tag)
	}

	if !isKind(slot.monitor) {
		return nil, fmt.Errorf("%w: monitor tag %q is a different monitor kind", ErrInvalidArgument, tag)
	}

	slot.taken = true
	return slot.monitor, nil
}

// Start launches the background worker. Start fails with ErrWrongState
// if any registered monitor has not yet been taken by a caller: an
// untaken monitor can never be driven (no Deadline/Heartbeat/Transition
// calls reach it), so evaluating it would be meaningless.
func (m *HealthMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return fmt.Errorf("%w: health monitor already started", ErrWrongState)
	}

	handles := make([]monitorEvalHandle, 0, len(m.order))
	for _, tag := range m.order {
		slot := m.slots[tag]
		if !slot.taken {
			return fmt.Errorf("%w: monitor tag %q was registered but never taken", ErrWrongState, tag)
		}

		handles = append(handles, monitorEvalHandle{tag: tag, eval: slot.monitor})
	}

	listeners := WorkerListeners{m.tracker}
	if m.listener != nil {
		listeners = append(listeners, m.listener)
	}

	w := newWorker(handles, time.Now(), m.internalCycle, m.supervisorAPICycle, m.client, listeners)
	m.worker = w
	m.started = true

	go w.run(ctx)
	return nil
}

// Close stops the background worker and waits for it to exit. Close is
// safe to call even if Start was never called.
func (m *HealthMonitor) Close() error {
	m.mu.Lock()
	w := m.worker
	m.mu.Unlock()

	if w != nil {
		w.stop()
	}

	return nil
}

// StatusSnapshot returns the last fault observed per monitor tag and the
// time of the most recent evaluation cycle.
func (m *HealthMonitor) StatusSnapshot() StatusSnapshot {
	return m.tracker.snapshot()
}

// Metadata returns the diagnostic Metadata attached to tag via
// HealthMonitorBuilder.WithMetadata, if any.
func (m *HealthMonitor) Metadata(tag MonitorTag) (Metadata, bool) {
	md, ok := m.metadata[tag]
	return md, ok
}
