// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import "time"

// WorkerCycleEvent describes the outcome of a single worker evaluation
// cycle: every fault any monitor reported this cycle, and whether the
// cycle was the one that caused the worker to stop.
//
// An event is dispatched even when Faults is empty, so a listener can
// track liveness of the worker loop itself, not just its failures.
type WorkerCycleEvent struct {
	// Time is when this cycle ran, in the worker's own clock.
	Time time.Time

	// Faults holds every MonitorFault reported by any monitor during
	// this cycle, in evaluation order. Faults is never nil, but may be
	// empty.
	Faults []MonitorFault

	// Stopping is true when this cycle's faults caused the worker to
	// stop its loop. A worker reports at most one Stopping cycle.
	Stopping bool
}

// WorkerListener is a sink for WorkerCycleEvents.
type WorkerListener interface {
	// OnWorkerCycle receives a WorkerCycleEvent. This method must not
	// panic or block: it runs synchronously on the worker goroutine, in
	// between evaluating monitors and sleeping for the next cycle.
	OnWorkerCycle(WorkerCycleEvent)
}

// WorkerListenerFunc adapts a plain function to a WorkerListener.
type WorkerListenerFunc func(WorkerCycleEvent)

// OnWorkerCycle implements WorkerListener.
func (f WorkerListenerFunc) OnWorkerCycle(e WorkerCycleEvent) { f(e) }

// WorkerListeners is an aggregate WorkerListener.
type WorkerListeners []WorkerListener

// OnWorkerCycle dispatches the given event to each listener in this
// aggregate, in order.
func (wls WorkerListeners) OnWorkerCycle(e WorkerCycleEvent) {
	for _, l := range wls {
		l.OnWorkerCycle(e)
	}
}
