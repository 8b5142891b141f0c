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

// Package scheduler runs the periodic duties of the monitor: collection,
// evaluation, stale sweeps, compaction, retention and realtime sessions.
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mfreeman451/routeradar/pkg/alerts"
	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/realtime"
	"golang.org/x/sync/errgroup"
)

const (
	DutyCollect   = "collect"
	DutyEvaluate  = "evaluate"
	DutySweep     = "sweep"
	DutyCompact   = "compact"
	DutyRetention = "retention"
	DutyRealtime  = "realtime"
)

// Scheduler owns every duty and the realtime sessions.
type Scheduler struct {
	cfg     *config.Config
	db      db.Service
	alerts  *alerts.Manager
	store   *realtime.Store
	rates   *device.CounterCache
	factory device.Factory
	prober  *device.Prober
	now     func() time.Time
	log     logger.Logger

	locks    deviceLocks
	duties   map[string]*Duty
	sessions *sessionSet

	compactMu     sync.Mutex
	lastCompacted time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
	mu      sync.Mutex
}

// Option configures a Scheduler.
type Option func(*Scheduler)

func WithFactory(f device.Factory) Option {
	return func(s *Scheduler) { s.factory = f }
}

func WithProber(p *device.Prober) Option {
	return func(s *Scheduler) { s.prober = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// New builds a scheduler. cfg must already be validated.
func New(cfg *config.Config, store db.Service, manager *alerts.Manager, rt *realtime.Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		db:     store,
		alerts: manager,
		store:  rt,
		rates:  device.NewCounterCache(),
		now:    time.Now,
		log:    logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.factory == nil {
		s.factory = device.NewFactory(time.Duration(cfg.ProtocolTimeout))
	}

	if s.prober == nil {
		s.prober = device.NewProber(time.Duration(cfg.ReachabilityTimeout))
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.sessions = newSessionSet()
	s.duties = map[string]*Duty{
		DutyCollect:   newDuty(DutyCollect, time.Duration(cfg.CollectInterval), s.collect, s.log),
		DutyEvaluate:  newDuty(DutyEvaluate, time.Duration(cfg.EvaluateInterval), s.evaluate, s.log),
		DutySweep:     newDuty(DutySweep, time.Duration(cfg.StaleSweepInterval), s.sweep, s.log),
		DutyCompact:   newDuty(DutyCompact, time.Duration(cfg.CompactionInterval), s.compact, s.log),
		DutyRetention: newDuty(DutyRetention, time.Duration(cfg.RetentionInterval), s.retention, s.log),
	}

	return s
}

// Duty returns a periodic duty by name, or nil.
func (s *Scheduler) Duty(name string) *Duty {
	return s.duties[name]
}

// Rates exposes the shared counter cache.
func (s *Scheduler) Rates() *device.CounterCache {
	return s.rates
}

// Start launches every duty loop and returns. Collection runs once right
// away; the other duties wait for their first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return errAlreadyStarted
	}

	s.started = true

	s.log.Info().
		Dur("collect_interval", time.Duration(s.cfg.CollectInterval)).
		Dur("evaluate_interval", time.Duration(s.cfg.EvaluateInterval)).
		Int("max_concurrency", s.cfg.MaxConcurrency).
		Msg("Starting scheduler")

	for _, d := range s.duties {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			d.loop(s.ctx, d.name == DutyCollect)
		}()
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		select {
		case <-ctx.Done():
			s.cancel()
		case <-s.ctx.Done():
		}
	}()

	return nil
}

// Stop cancels every duty and realtime session and waits for them to
// finish, or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	s.sessions.stopAll()

	done := make(chan struct{})

	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("Scheduler stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fanOut runs fn for every device with at most MaxConcurrency in flight.
// fn never fails, so one device cannot cancel its siblings.
func (s *Scheduler) fanOut(ctx context.Context, devices []models.Device, fn func(context.Context, *models.Device)) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.MaxConcurrency)

	for i := range devices {
		dev := &devices[i]

		g.Go(func() error {
			fn(gctx, dev)

			return nil
		})
	}

	_ = g.Wait()
}

func (s *Scheduler) newClient(dev *models.Device, creds models.Credentials) *device.Client {
	return device.NewClient(dev, creds, s.rates,
		device.WithFactory(s.factory),
		device.WithProber(s.prober),
		device.WithClock(s.now),
		device.WithLogger(s.log),
	)
}

// credentials resolves the login for dev. SNMP devices authenticate with
// their community string and may have no stored login.
func (s *Scheduler) credentials(ctx context.Context, dev *models.Device, method models.ConnectionMethod) (models.Credentials, error) {
	creds, err := s.db.GetCredentials(ctx, dev.ID)
	if err != nil {
		if errors.Is(err, db.ErrNoCredentials) && method == models.MethodSNMP {
			return models.Credentials{}, nil
		}

		return models.Credentials{}, err
	}

	return creds, nil
}

// deviceLocks hands out one mutex per device so a fetch and the writes
// that follow it never interleave with another duty's for the same device.
type deviceLocks struct {
	m sync.Map
}

func (l *deviceLocks) lock(deviceID int64) func() {
	v, _ := l.m.LoadOrStore(deviceID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
