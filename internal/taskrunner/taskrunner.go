// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-backend.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package taskrunner runs daxd's background jobs (currently only the
// periodic retention flush) on a gocron scheduler, the same
// library and Start/Shutdown shape the teacher's task manager uses for
// its own cron-driven maintenance work.
package taskrunner

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/opendax/daxd/pkg/log"
)

var scheduler gocron.Scheduler

// Start creates the scheduler and registers every configured periodic
// job, then starts it. flushInterval of zero disables the retention
// flush job entirely (e.g. when no retention file is configured).
func Start(flushInterval time.Duration, flush func()) error {
	var err error
	scheduler, err = gocron.NewScheduler()
	if err != nil {
		return err
	}

	if flushInterval > 0 && flush != nil {
		_, err := scheduler.NewJob(
			gocron.DurationJob(flushInterval),
			gocron.NewTask(func() {
				log.Minorf("[TASKRUNNER] running scheduled retention flush")
				flush()
			}),
		)
		if err != nil {
			return err
		}
	}

	scheduler.Start()
	return nil
}

// Shutdown stops the scheduler, blocking until in-flight jobs finish.
func Shutdown() {
	if scheduler != nil {
		if err := scheduler.Shutdown(); err != nil {
			log.Errorf("[TASKRUNNER] scheduler shutdown: %s", err.Error())
		}
	}
}
