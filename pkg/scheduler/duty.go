/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
)

// Duty is a periodic job with its own concurrency guard. A trigger that
// finds the previous run still executing is dropped, never queued.
type Duty struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context)
	running  atomic.Bool
	skipped  atomic.Int64
	log      logger.Logger
}

func newDuty(name string, interval time.Duration, run func(ctx context.Context), log logger.Logger) *Duty {
	return &Duty{name: name, interval: interval, run: run, log: log}
}

func (d *Duty) Name() string {
	return d.name
}

// Trigger runs the duty unless a run is already in progress. It reports
// whether the duty ran.
func (d *Duty) Trigger(ctx context.Context) bool {
	if !d.running.CompareAndSwap(false, true) {
		d.skipped.Add(1)
		telemetry.DutySkips.WithLabelValues(d.name).Inc()
		d.log.Debug().Str("duty", d.name).Msg("Previous run still in progress, skipping tick")

		return false
	}

	defer d.running.Store(false)

	start := time.Now()
	d.run(ctx)

	telemetry.DutyRuns.WithLabelValues(d.name).Inc()
	telemetry.DutyDuration.WithLabelValues(d.name).Observe(time.Since(start).Seconds())

	return true
}

// Running reports whether a run is in progress.
func (d *Duty) Running() bool {
	return d.running.Load()
}

// Skipped reports how many triggers were dropped.
func (d *Duty) Skipped() int64 {
	return d.skipped.Load()
}

// loop triggers the duty on every tick until ctx ends. Each run gets its
// own goroutine so a slow run shows up as skipped ticks.
func (d *Duty) loop(ctx context.Context, immediate bool) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	var runs sync.WaitGroup
	defer runs.Wait()

	fire := func() {
		runs.Add(1)

		go func() {
			defer runs.Done()
			d.Trigger(ctx)
		}()
	}

	if immediate {
		fire()
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fire()
		}
	}
}
