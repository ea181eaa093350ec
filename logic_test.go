// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LogicTestSuite struct {
	suite.Suite
}

func (suite *LogicTestSuite) build() *LogicMonitor {
	m, err := NewLogicMonitorBuilder("idle").
		AddState("running").
		AddState("stopped").
		AddTransition("idle", "running").
		AddTransition("running", "stopped").
		AddTransition("stopped", "idle").
		Build("logic")
	suite.Require().NoError(err)
	return m
}

func (suite *LogicTestSuite) TestInitialState() {
	m := suite.build()
	s, err := m.State()
	suite.Require().NoError(err)
	suite.Equal(StateTag("idle"), s)
}

func (suite *LogicTestSuite) TestValidTransitionSucceeds() {
	m := suite.build()
	s, err := m.Transition("running")
	suite.Require().NoError(err)
	suite.Equal(StateTag("running"), s)

	s, err = m.State()
	suite.Require().NoError(err)
	suite.Equal(StateTag("running"), s)
}

func (suite *LogicTestSuite) TestSelfLoopRequiresDeclaration() {
	m := suite.build()
	_, err := m.Transition("idle")
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *LogicTestSuite) TestUnknownStateLatchesInvalidState() {
	m := suite.build()
	_, err := m.Transition("nosuch")
	suite.ErrorIs(err, ErrInvalidState)

	// the latch is permanent: even a previously valid transition now fails
	_, err = m.Transition("running")
	suite.ErrorIs(err, ErrInvalidState)

	_, err = m.State()
	suite.ErrorIs(err, ErrInvalidState)
}

func (suite *LogicTestSuite) TestUndeclaredEdgeLatchesInvalidTransition() {
	m := suite.build()
	_, err := m.Transition("stopped")
	suite.ErrorIs(err, ErrInvalidTransition)

	_, err = m.Transition("running")
	suite.ErrorIs(err, ErrInvalidTransition)
}

func (suite *LogicTestSuite) TestEvaluateReportsLatchedFaultEveryCycle() {
	m := suite.build()
	_, _ = m.Transition("nosuch")

	var faults []Kind
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })
	m.evaluate(time.Time{}, func(_ MonitorTag, k Kind) { faults = append(faults, k) })

	suite.Equal([]Kind{KindInvalidState, KindInvalidState}, faults)
}

func (suite *LogicTestSuite) TestBuildWithNoTransitionsFails() {
	_, err := NewLogicMonitorBuilder("idle").Build("logic")
	suite.ErrorIs(err, ErrWrongState)
}

func (suite *LogicTestSuite) TestBuildWithUnknownTransitionEndpointFails() {
	_, err := NewLogicMonitorBuilder("idle").
		AddTransition("idle", "nosuch").
		Build("logic")
	suite.ErrorIs(err, ErrInvalidArgument)
}

func TestLogic(t *testing.T) {
	suite.Run(t, new(LogicTestSuite))
}
