// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type ListenerTestSuite struct {
	suite.Suite
}

func (suite *ListenerTestSuite) TestWorkerListenerFunc() {
	var got WorkerCycleEvent
	var l WorkerListener = WorkerListenerFunc(func(e WorkerCycleEvent) { got = e })

	want := WorkerCycleEvent{Time: time.Now(), Faults: []MonitorFault{{Tag: "a", Kind: KindTooLate}}}
	l.OnWorkerCycle(want)
	suite.Equal(want, got)
}

func (suite *ListenerTestSuite) TestWorkerListenersDispatchesToAll() {
	var calls []int
	l1 := WorkerListenerFunc(func(WorkerCycleEvent) { calls = append(calls, 1) })
	l2 := WorkerListenerFunc(func(WorkerCycleEvent) { calls = append(calls, 2) })

	agg := WorkerListeners{l1, l2}
	agg.OnWorkerCycle(WorkerCycleEvent{})

	suite.Equal([]int{1, 2}, calls)
}

func TestListener(t *testing.T) {
	suite.Run(t, new(ListenerTestSuite))
}
