// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Command healthmondemo runs a small supervised application that drives a
// deadline, a heartbeat, and a logic monitor against a simulated periodic
// workload, mirroring the shape of a process that a supervisor expects to
// hear from on a fixed cadence.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	healthmon "github.com/qorix-group/healthmon"
)

// deadlineMin and deadlineMax bound the simulated workload's duration,
// mirroring the fixed 50-150ms window the Rust demo measures delay
// against.
const (
	deadlineMin = 50 * time.Millisecond
	deadlineMax = 150 * time.Millisecond

	stateIdle    healthmon.StateTag = "idle"
	stateRunning healthmon.StateTag = "running"
)

func newRootCmd() *cobra.Command {
	var (
		delay time.Duration
		cycle time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthmondemo",
		Short: "Runs a supervised application driving deadline, heartbeat, and logic monitors",
		RunE: func(cmd *cobra.Command, args []string) error {
			delay = viper.GetDuration("delay")
			cycle = viper.GetDuration("cycle")
			return run(cmd.Context(), delay, cycle)
		},
	}

	cmd.Flags().Duration("delay", 50*time.Millisecond, "duration of the simulated workload, bounded by the workload deadline window")
	cmd.Flags().Duration("cycle", 20*time.Millisecond, "worker internal processing cycle")
	_ = viper.BindPFlag("delay", cmd.Flags().Lookup("delay"))
	_ = viper.BindPFlag("cycle", cmd.Flags().Lookup("cycle"))
	viper.SetEnvPrefix("healthmondemo")
	viper.AutomaticEnv()

	return cmd
}

func run(ctx context.Context, delay, cycle time.Duration) error {
	logger := logrus.StandardLogger()
	healthmon.SetLogger(logger)

	hm, err := healthmon.NewHealthMonitorBuilder().
		AddDeadlineMonitor("workload", healthmon.NewDeadlineMonitorBuilder().
			AddDeadline("cycle-work", healthmon.TimeRange{Min: deadlineMin, Max: deadlineMax})).
		AddHeartbeatMonitor("checkpoints", healthmon.NewHeartbeatMonitorBuilder(
			healthmon.TimeRange{Min: delay / 2, Max: delay * 4},
		)).
		AddLogicMonitor("lifecycle", healthmon.NewLogicMonitorBuilder(stateIdle).
			AddState(stateRunning).
			AddTransition(stateIdle, stateRunning).
			AddTransition(stateRunning, stateIdle)).
		WithInternalProcessingCycle(cycle).
		WithListener(healthmon.WorkerListenerFunc(func(e healthmon.WorkerCycleEvent) {
			for _, f := range e.Faults {
				logger.WithField("monitor", f.Tag).Warn(f.Error())
			}
		})).
		Build()
	if err != nil {
		return err
	}

	deadlineMon, err := hm.GetDeadlineMonitor("workload")
	if err != nil {
		return err
	}

	workload, err := deadlineMon.GetDeadline("cycle-work")
	if err != nil {
		return err
	}

	heartbeat, err := hm.GetHeartbeatMonitor("checkpoints")
	if err != nil {
		return err
	}

	lifecycle, err := hm.GetLogicMonitor("lifecycle")
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := hm.Start(ctx); err != nil {
		return err
	}
	defer hm.Close()

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("healthmondemo: shutting down")
			return nil

		case <-timer.C:
			if _, err := lifecycle.Transition(stateRunning); err != nil {
				logger.WithError(err).Warn("healthmondemo: lifecycle transition failed")
			}

			handle, err := workload.Start()
			if err != nil {
				logger.WithError(err).Warn("healthmondemo: workload deadline failed to start")
			}

			time.Sleep(delay)

			if handle != nil {
				handle.Stop()
			}

			heartbeat.Heartbeat()

			if _, err := lifecycle.Transition(stateIdle); err != nil {
				logger.WithError(err).Warn("healthmondemo: lifecycle transition failed")
			}

			timer.Reset(delay)
		}
	}
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
