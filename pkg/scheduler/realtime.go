package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
)

// Subscriber receives realtime traffic pushes for the devices it
// subscribed to.
type Subscriber interface {
	ID() string
	Send(msg *models.RealtimeMessage) error
}

type session struct {
	deviceID int64
	subs     map[string]Subscriber
	ctx      context.Context
	cancel   context.CancelFunc
}

func (s *session) snapshot() []Subscriber {
	out := make([]Subscriber, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}

	return out
}

// sessionSet is the reference-counted set of live sessions, one per device.
type sessionSet struct {
	mu       sync.Mutex
	byDevice map[int64]*session
	stopped  bool
}

func newSessionSet() *sessionSet {
	return &sessionSet{byDevice: make(map[int64]*session)}
}

// join adds sub to an existing session and reports whether one existed.
func (ss *sessionSet) join(deviceID int64, sub Subscriber) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sess, ok := ss.byDevice[deviceID]
	if ok {
		sess.subs[sub.ID()] = sub
	}

	return ok
}

// install registers sess and calls start under the set's lock, so a
// concurrent stopAll either sees the session or refuses it. When another
// subscriber raced it in, sub joins the winner and install returns false.
func (ss *sessionSet) install(sess *session, sub Subscriber, start func()) (bool, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.stopped {
		return false, context.Canceled
	}

	if err := sess.ctx.Err(); err != nil {
		return false, err
	}

	if existing, ok := ss.byDevice[sess.deviceID]; ok {
		existing.subs[sub.ID()] = sub

		return false, nil
	}

	sess.subs[sub.ID()] = sub
	ss.byDevice[sess.deviceID] = sess
	telemetry.LiveSessions.Inc()
	start()

	return true, nil
}

func (ss *sessionSet) leave(deviceID int64, subID string) bool {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sess, ok := ss.byDevice[deviceID]
	if !ok {
		return false
	}

	if _, ok := sess.subs[subID]; !ok {
		return false
	}

	delete(sess.subs, subID)

	if len(sess.subs) == 0 {
		sess.cancel()
		delete(ss.byDevice, deviceID)
		telemetry.LiveSessions.Dec()
	}

	return true
}

func (ss *sessionSet) devicesOf(subID string) []int64 {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	var ids []int64

	for id, sess := range ss.byDevice {
		if _, ok := sess.subs[subID]; ok {
			ids = append(ids, id)
		}
	}

	return ids
}

func (ss *sessionSet) subscribers(deviceID int64) []Subscriber {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	sess, ok := ss.byDevice[deviceID]
	if !ok {
		return nil
	}

	return sess.snapshot()
}

func (ss *sessionSet) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return len(ss.byDevice)
}

func (ss *sessionSet) stopAll() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.stopped = true

	for id, sess := range ss.byDevice {
		sess.cancel()
		delete(ss.byDevice, id)
		telemetry.LiveSessions.Dec()
	}
}

// Subscribe adds sub to the realtime session of deviceID, activating the
// session when sub is the first subscriber. Activation loads the device
// and, when it has no connection method yet, runs discovery once and
// persists the result.
func (s *Scheduler) Subscribe(ctx context.Context, deviceID int64, sub Subscriber) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	if s.sessions.join(deviceID, sub) {
		return nil
	}

	dev, client, err := s.activate(ctx, deviceID)
	if err != nil {
		return err
	}

	sessCtx, cancel := context.WithCancel(s.ctx)
	sess := &session{deviceID: deviceID, subs: make(map[string]Subscriber), ctx: sessCtx, cancel: cancel}

	installed, err := s.sessions.install(sess, sub, func() {
		s.wg.Add(1)

		go func() {
			defer s.wg.Done()
			s.runSession(sessCtx, dev, client)
		}()
	})
	if !installed {
		cancel()

		return err
	}

	s.log.Info().Int64("device_id", deviceID).Str("method", string(dev.Method)).Msg("Realtime session started")

	return nil
}

// Unsubscribe removes sub from a device's session. The session stops when
// its last subscriber leaves.
func (s *Scheduler) Unsubscribe(deviceID int64, subID string) bool {
	left := s.sessions.leave(deviceID, subID)
	if left && s.sessions.subscribers(deviceID) == nil {
		s.log.Info().Int64("device_id", deviceID).Msg("Realtime session stopped")
	}

	return left
}

// UnsubscribeAll drops every subscription held by subID and returns how
// many there were.
func (s *Scheduler) UnsubscribeAll(subID string) int {
	n := 0

	for _, id := range s.sessions.devicesOf(subID) {
		if s.Unsubscribe(id, subID) {
			n++
		}
	}

	return n
}

// Sessions returns the number of live realtime sessions.
func (s *Scheduler) Sessions() int {
	return s.sessions.len()
}

// Subscribers returns how many subscribers a device's session has.
func (s *Scheduler) Subscribers(deviceID int64) int {
	return len(s.sessions.subscribers(deviceID))
}

func (s *Scheduler) activate(ctx context.Context, deviceID int64) (*models.Device, *device.Client, error) {
	dev, err := s.db.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}

	// Credentials are resolved once for the whole session. Discovery may
	// still find an SNMP path when no login is stored.
	creds, err := s.credentials(ctx, dev, dev.Method)
	if err != nil && (dev.Method != models.MethodUnset || !errors.Is(err, db.ErrNoCredentials)) {
		return nil, nil, fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}

	client := s.newClient(dev, creds)

	if dev.Method == models.MethodUnset {
		disc := client.Discover(ctx)
		if !disc.OK() {
			return nil, nil, ErrNoRealtimeMethod
		}

		if err := s.db.UpdateConnectionMethod(ctx, dev.ID, disc.Method); err != nil {
			s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to persist connection method")
		}

		dev.Method = disc.Method
	}

	return dev, client, nil
}

func (s *Scheduler) runSession(ctx context.Context, dev *models.Device, client *device.Client) {
	interval := time.Duration(s.cfg.RealtimeInterval)

	duty := newDuty(DutyRealtime, interval, func(ctx context.Context) {
		s.realtimeTick(ctx, dev, client)
	}, s.log)

	duty.loop(ctx, true)
}

func (s *Scheduler) realtimeTick(ctx context.Context, dev *models.Device, client *device.Client) {
	unlock := s.locks.lock(dev.ID)
	res, err := client.FetchStats(ctx, dev.Method)
	unlock()

	telemetry.FetchResult(string(dev.Method), err)

	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn().Err(err).Int64("device_id", dev.ID).Msg("Realtime fetch failed")
		}

		return
	}

	for i := range res.Interfaces {
		s.store.Append(res.Interfaces[i].Sample, false)
	}

	msg := &models.RealtimeMessage{
		Type:     models.MessageRealtimeTraffic,
		DeviceID: dev.ID,
		Data:     make([]models.TrafficSample, 0, len(res.Interfaces)*s.cfg.RealtimePushSamples),
	}

	for i := range res.Interfaces {
		msg.Data = append(msg.Data, s.store.Recent(dev.ID, res.Interfaces[i].Info.Name, s.cfg.RealtimePushSamples)...)
	}

	for _, sub := range s.sessions.subscribers(dev.ID) {
		if err := sub.Send(msg); err != nil {
			s.log.Debug().Err(err).Str("subscriber", sub.ID()).Int64("device_id", dev.ID).Msg("Realtime push failed")
		}
	}
}
