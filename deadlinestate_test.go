// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeadlineStateTestSuite struct {
	suite.Suite
}

func (suite *DeadlineStateTestSuite) TestDefaultIsStopped() {
	s := newDeadlineSnapshot()
	suite.True(s.isStopped())
	suite.False(s.isRunning())
	suite.False(s.isUnderrun())
}

func (suite *DeadlineStateTestSuite) TestPackUnpackTimestamp() {
	s := packDeadlineSnapshot(deadlineRunning, 123456)
	suite.True(s.isRunning())
	suite.Equal(uint32(123456), s.timestampMs())
}

func (suite *DeadlineStateTestSuite) TestUpdateAppliesChange() {
	d := newDeadlineState()
	old, next, changed := d.update(func(s deadlineSnapshot) (deadlineSnapshot, bool) {
		return packDeadlineSnapshot(deadlineRunning, 42), true
	})

	suite.True(changed)
	suite.True(old.isStopped())
	suite.True(next.isRunning())
	suite.Equal(uint32(42), d.load().timestampMs())
}

func (suite *DeadlineStateTestSuite) TestUpdateCanDecline() {
	d := newDeadlineState()
	_, _, changed := d.update(func(s deadlineSnapshot) (deadlineSnapshot, bool) {
		return s, false
	})

	suite.False(changed)
	suite.True(d.load().isStopped())
}

func TestDeadlineState(t *testing.T) {
	suite.Run(t, new(DeadlineStateTestSuite))
}
