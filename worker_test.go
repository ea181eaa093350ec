// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/xmidt-org/chronon"
)

type fakeEvaluator struct {
	kind Kind // zero means no fault
}

func (e fakeEvaluator) evaluate(_ time.Time, onError onErrorFunc) {
	if e.kind != 0 {
		onError("monitor", e.kind)
	}
}

type recordingListener struct {
	events []WorkerCycleEvent
}

func (l *recordingListener) OnWorkerCycle(e WorkerCycleEvent) {
	l.events = append(l.events, e)
}

type countingClient struct {
	calls int
}

func (c *countingClient) NotifyAlive(context.Context) error {
	c.calls++
	return nil
}

type WorkerTestSuite struct {
	suite.Suite
}

func (suite *WorkerTestSuite) TestCleanCycleNotifiesAfterSupervisorCycle() {
	client := &countingClient{}
	w := newWorker(
		[]monitorEvalHandle{{tag: "monitor", eval: fakeEvaluator{}}},
		time.Now(),
		10*time.Millisecond,
		0, // notify every cycle once lastNotify is stale
		client,
		nil,
	)
	w.lastNotify = time.Now().Add(-time.Hour)

	ok := w.runCycle(context.Background())
	suite.True(ok)
	suite.Equal(1, client.calls)
}

func (suite *WorkerTestSuite) TestFaultedCycleStopsAndSkipsNotification() {
	client := &countingClient{}
	listener := &recordingListener{}
	w := newWorker(
		[]monitorEvalHandle{{tag: "monitor", eval: fakeEvaluator{kind: KindTooLate}}},
		time.Now(),
		10*time.Millisecond,
		0,
		client,
		listener,
	)
	w.lastNotify = time.Now().Add(-time.Hour)

	ok := w.runCycle(context.Background())
	suite.False(ok)
	suite.Equal(0, client.calls)
	suite.Require().Len(listener.events, 1)
	suite.True(listener.events[0].Stopping)
	suite.Equal([]MonitorFault{{Tag: "monitor", Kind: KindTooLate}}, listener.events[0].Faults)
}

func (suite *WorkerTestSuite) TestRunStopsPermanentlyOnFirstFault() {
	listener := &recordingListener{}
	w := newWorker(
		[]monitorEvalHandle{{tag: "monitor", eval: fakeEvaluator{kind: KindTooLate}}},
		time.Now(),
		time.Millisecond,
		time.Hour,
		nil,
		listener,
	)

	done := make(chan struct{})
	go func() {
		w.run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		suite.Fail("worker did not stop after a faulted cycle")
	}

	suite.Len(listener.events, 1)
}

func (suite *WorkerTestSuite) TestStopIsIdempotentAndUnblocksRun() {
	w := newWorker(nil, time.Now(), time.Hour, time.Hour, nil, nil)

	done := make(chan struct{})
	go func() {
		w.run(context.Background())
		close(done)
	}()

	w.stop()
	w.stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		suite.Fail("worker did not stop when asked")
	}
}

func (suite *WorkerTestSuite) TestNotificationRespectsSupervisorCycleOnFakeClock() {
	clock := chronon.NewFakeClock(time.Now())
	client := &countingClient{}

	w := newWorker(
		[]monitorEvalHandle{{tag: "monitor", eval: fakeEvaluator{}}},
		clock.Now(),
		10*time.Millisecond,
		time.Second,
		client,
		nil,
	)
	w.now = clock.Now
	w.newTimer = fakeTimer(clock)
	w.lastNotify = clock.Now()

	// still within the supervisor cycle: no notification yet.
	clock.Add(500 * time.Millisecond)
	suite.True(w.runCycle(context.Background()))
	suite.Equal(0, client.calls)

	// past the supervisor cycle: notify, and reset the window.
	clock.Add(600 * time.Millisecond)
	suite.True(w.runCycle(context.Background()))
	suite.Equal(1, client.calls)
}

func TestWorker(t *testing.T) {
	suite.Run(t, new(WorkerTestSuite))
}
