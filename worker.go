// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"context"
	"sync"
	"time"
)

// worker drives the evaluation loop for a HealthMonitor's taken monitors.
// It runs on its own goroutine until either the owning HealthMonitor is
// closed, or a cycle reports any fault at all: a faulted cycle stops the
// worker permanently, it does not merely skip that cycle's notification.
type worker struct {
	handles                 []monitorEvalHandle
	hmonStart               time.Time
	internalProcessingCycle time.Duration
	supervisorAPICycle      time.Duration
	client                  SupervisorAPIClient
	listener                WorkerListener

	now      now
	newTimer newTimer

	lastNotify time.Time

	stopOnce  sync.Once
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

func newWorker(
	handles []monitorEvalHandle,
	hmonStart time.Time,
	internalProcessingCycle, supervisorAPICycle time.Duration,
	client SupervisorAPIClient,
	listener WorkerListener,
) *worker {
	return &worker{
		handles:                 handles,
		hmonStart:               hmonStart,
		internalProcessingCycle: internalProcessingCycle,
		supervisorAPICycle:      supervisorAPICycle,
		client:                  client,
		listener:                listener,
		now:                     time.Now,
		newTimer:                defaultNewTimer,
		stopCh:                  make(chan struct{}),
		stoppedCh:               make(chan struct{}),
	}
}

// run executes the evaluation loop until stop is called, ctx is
// cancelled, or a cycle reports a fault. It is meant to be launched on
// its own goroutine.
func (w *worker) run(ctx context.Context) {
	defer close(w.stoppedCh)

	w.lastNotify = w.now()

	for {
		cycleStart := w.now()
		if !w.runCycle(ctx) {
			defaultLogger.Info("healthmon: worker stopping after faulted evaluation cycle")
			return
		}

		sleepFor := w.internalProcessingCycle - w.now().Sub(cycleStart)
		if sleepFor < 0 {
			sleepFor = 0
		}

		timerC, stopTimer := w.newTimer(sleepFor)
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case <-w.stopCh:
			stopTimer()
			return

		case <-timerC:
		}
	}
}

// runCycle evaluates every taken monitor once, dispatches the resulting
// WorkerCycleEvent to the configured listener, and notifies the
// supervisor if the cycle was clean and the notification cycle has
// elapsed. It returns false when the worker should stop.
func (w *worker) runCycle(ctx context.Context) bool {
	faults := []MonitorFault{}
	onError := func(tag MonitorTag, k Kind) {
		faults = append(faults, MonitorFault{Tag: tag, Kind: k})
	}

	for _, h := range w.handles {
		h.evaluate(w.hmonStart, onError)
	}

	hasError := len(faults) > 0
	if !hasError && w.client != nil && w.now().Sub(w.lastNotify) > w.supervisorAPICycle {
		if err := w.client.NotifyAlive(ctx); err != nil {
			defaultLogger.WithError(err).Warn("healthmon: supervisor liveness notification failed")
		}

		w.lastNotify = w.now()
	}

	if w.listener != nil {
		w.listener.OnWorkerCycle(WorkerCycleEvent{
			Time:     w.now(),
			Faults:   faults,
			Stopping: hasError,
		})
	}

	return !hasError
}

// stop signals the worker to exit and blocks until its goroutine has
// returned. stop is idempotent.
func (w *worker) stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
	<-w.stoppedCh
}
