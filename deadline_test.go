// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type DeadlineTestSuite struct {
	suite.Suite

	epoch   time.Time
	current time.Time
}

func (suite *DeadlineTestSuite) SetupTest() {
	suite.epoch = time.Now()
	suite.current = suite.epoch
}

func (suite *DeadlineTestSuite) advance(d time.Duration) {
	suite.current = suite.current.Add(d)
}

func (suite *DeadlineTestSuite) newMonitor(tag DeadlineTag, r TimeRange) *DeadlineMonitor {
	m, err := NewDeadlineMonitorBuilder().AddDeadline(tag, r).Build("monitor")
	suite.Require().NoError(err)
	m.epoch = suite.epoch
	m.now = func() time.Time { return suite.current }
	return m
}

func (suite *DeadlineTestSuite) TestGetDeadlineUnknownTag() {
	m := suite.newMonitor("a", TimeRange{Min: 10 * time.Millisecond, Max: 100 * time.Millisecond})
	_, err := m.GetDeadline("nosuch")
	suite.ErrorIs(err, ErrNotFound)
}

func (suite *DeadlineTestSuite) TestGetDeadlineTwiceFails() {
	m := suite.newMonitor("a", TimeRange{Min: 10 * time.Millisecond, Max: 100 * time.Millisecond})
	d1, err := m.GetDeadline("a")
	suite.Require().NoError(err)
	suite.Require().NotNil(d1)

	_, err = m.GetDeadline("a")
	suite.ErrorIs(err, ErrInUse)

	d1.Release()
	d2, err := m.GetDeadline("a")
	suite.Require().NoError(err)
	suite.Require().NotNil(d2)
}

func (suite *DeadlineTestSuite) TestStartStopWithinWindowReportsNothing() {
	m := suite.newMonitor("a", TimeRange{Min: 10 * time.Millisecond, Max: 100 * time.Millisecond})
	d, err := m.GetDeadline("a")
	suite.Require().NoError(err)

	h, err := d.Start()
	suite.Require().NoError(err)

	suite.advance(50 * time.Millisecond)
	h.Stop()

	var faults []Kind
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	suite.Empty(faults)
}

func (suite *DeadlineTestSuite) TestStopTooEarlyLatchesUnderrun() {
	m := suite.newMonitor("a", TimeRange{Min: 50 * time.Millisecond, Max: 100 * time.Millisecond})
	d, err := m.GetDeadline("a")
	suite.Require().NoError(err)

	h, err := d.Start()
	suite.Require().NoError(err)

	suite.advance(5 * time.Millisecond)
	h.Stop()

	var faults []Kind
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	suite.Equal([]Kind{KindTooEarly}, faults)

	// the latch persists across further evaluations
	faults = nil
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	suite.Equal([]Kind{KindTooEarly}, faults)
}

func (suite *DeadlineTestSuite) TestMissedDeadlineReportsTooLateEveryCycle() {
	m := suite.newMonitor("a", TimeRange{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond})
	d, err := m.GetDeadline("a")
	suite.Require().NoError(err)

	_, err = d.Start()
	suite.Require().NoError(err)

	suite.advance(100 * time.Millisecond)

	var faults []Kind
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	suite.Equal([]Kind{KindTooLate}, faults)

	faults = nil
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	suite.Equal([]Kind{KindTooLate}, faults)
}

func (suite *DeadlineTestSuite) TestStartAfterFailureIsRejected() {
	m := suite.newMonitor("a", TimeRange{Min: 10 * time.Millisecond, Max: 50 * time.Millisecond})
	d, err := m.GetDeadline("a")
	suite.Require().NoError(err)

	_, err = d.Start()
	suite.Require().NoError(err)

	suite.advance(100 * time.Millisecond)
	m.evaluate(time.Time{}, func(_ MonitorTag, _ Kind) {})

	_, err = d.Start()
	suite.ErrorIs(err, ErrFailed)
}

func (suite *DeadlineTestSuite) TestBuildWithNoDeadlinesFails() {
	_, err := NewDeadlineMonitorBuilder().Build("monitor")
	suite.ErrorIs(err, ErrWrongState)
}

func (suite *DeadlineTestSuite) TestDuplicateDeadlineTagFails() {
	_, err := NewDeadlineMonitorBuilder().
		AddDeadline("a", TimeRange{Min: time.Millisecond, Max: 2 * time.Millisecond}).
		AddDeadline("a", TimeRange{Min: time.Millisecond, Max: 2 * time.Millisecond}).
		Build("monitor")
	suite.ErrorIs(err, ErrAlreadyExists)
}

func TestDeadline(t *testing.T) {
	suite.Run(t, new(DeadlineTestSuite))
}
