// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import "time"

// onErrorFunc receives one evaluation-time fault from a monitor.
type onErrorFunc func(MonitorTag, Kind)

// monitorEvaluator is the common evaluation surface every registered
// monitor kind exposes to the worker. hmonStart is the HealthMonitor's own
// start time; the deadline, heartbeat, and logic monitors all measure time
// from their own epoch and ignore it.
type monitorEvaluator interface {
	evaluate(hmonStart time.Time, onError onErrorFunc)
}

// monitorEvalHandle is a type-erased evaluator handle collected by
// HealthMonitor.Start once every registered monitor has been taken. It
// exists so the worker can hold a single homogeneous slice across the
// three heterogeneous monitor kinds.
type monitorEvalHandle struct {
	tag  MonitorTag
	eval monitorEvaluator
}

func (h monitorEvalHandle) evaluate(hmonStart time.Time, onError onErrorFunc) {
	h.eval.evaluate(hmonStart, onError)
}
