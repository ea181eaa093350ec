// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package healthmon

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// SupervisorAPIClient notifies an external supervisor process that this
// process is alive. Implementations must return promptly: NotifyAlive
// runs on the worker goroutine, between evaluation cycles.
type SupervisorAPIClient interface {
	NotifyAlive(ctx context.Context) error
}

// supervisorAPIClientFunc adapts a function to a SupervisorAPIClient.
type supervisorAPIClientFunc func(context.Context) error

func (f supervisorAPIClientFunc) NotifyAlive(ctx context.Context) error { return f(ctx) }

// AsSupervisorAPIClient adapts fn to a SupervisorAPIClient. fn may have
// any of the following shapes:
//
//	func()
//	func() error
//	func(context.Context)
//	func(context.Context) error
//
// AsSupervisorAPIClient panics if fn does not have one of these shapes;
// it is meant to be called during program setup with a statically known
// function, not with a value of unknown provenance.
func AsSupervisorAPIClient(fn any) SupervisorAPIClient {
	if c, ok := fn.(SupervisorAPIClient); ok {
		return c
	}

	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("healthmon: AsSupervisorAPIClient: %T is not a function", fn))
	}

	takesContext := t.NumIn() == 1 && t.In(0) == reflect.TypeOf((*context.Context)(nil)).Elem()
	returnsError := t.NumOut() == 1 && t.Out(0) == reflect.TypeOf((*error)(nil)).Elem()

	switch {
	case t.NumIn() == 0 && t.NumOut() == 0:
		return supervisorAPIClientFunc(func(context.Context) error {
			v.Call(nil)
			return nil
		})

	case t.NumIn() == 0 && returnsError:
		return supervisorAPIClientFunc(func(context.Context) error {
			out := v.Call(nil)
			return errorFromReflect(out[0])
		})

	case takesContext && t.NumOut() == 0:
		return supervisorAPIClientFunc(func(ctx context.Context) error {
			v.Call([]reflect.Value{reflect.ValueOf(ctx)})
			return nil
		})

	case takesContext && returnsError:
		return supervisorAPIClientFunc(func(ctx context.Context) error {
			out := v.Call([]reflect.Value{reflect.ValueOf(ctx)})
			return errorFromReflect(out[0])
		})

	default:
		panic(fmt.Sprintf("healthmon: AsSupervisorAPIClient: unsupported function signature %s", t))
	}
}

func errorFromReflect(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}

	return v.Interface().(error)
}

// StubSupervisorAPIClient is a SupervisorAPIClient that only logs, for use
// when no real supervisor process is present: local development, or a
// HealthMonitor embedded in a test binary.
type StubSupervisorAPIClient struct {
	Logger *logrus.Logger
}

// NotifyAlive logs at debug level and always succeeds.
func (s StubSupervisorAPIClient) NotifyAlive(_ context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	logger.Debug("healthmon: notifying supervisor of liveness (stub)")
	return nil
}

// HTTPSupervisorAPIClient notifies a supervisor process over HTTP,
// retrying transient failures with exponential backoff.
type HTTPSupervisorAPIClient struct {
	client *retryablehttp.Client
	url    string
}

// NewHTTPSupervisorAPIClient returns a client that POSTs to url on every
// NotifyAlive call, retrying up to the client's configured retry count.
func NewHTTPSupervisorAPIClient(url string, logger *logrus.Logger) *HTTPSupervisorAPIClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 50 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if logger != nil {
		client.Logger = logger
	}

	return &HTTPSupervisorAPIClient{client: client, url: url}
}

// NotifyAlive POSTs an empty liveness notification to the configured URL.
func (c *HTTPSupervisorAPIClient) NotifyAlive(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.url, nil)
	if err != nil {
		return fmt.Errorf("healthmon: building supervisor notification request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("healthmon: notifying supervisor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("healthmon: supervisor returned status %d", resp.StatusCode)
	}

	return nil
}
