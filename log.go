// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import "github.com/sirupsen/logrus"

// defaultLogger is the package-wide logger used by the worker and by the
// StubSupervisorAPIClient that HealthMonitorBuilder.Build installs when no
// client is configured. Applications that
// embed healthmon alongside their own structured logging should call
// SetLogger once during startup.
var defaultLogger = logrus.StandardLogger()

// SetLogger replaces the package-wide fallback logger. It is meant to be
// called once, during process startup, before any HealthMonitor is built.
func SetLogger(l *logrus.Logger) {
	if l == nil {
		return
	}

	defaultLogger = l
}
