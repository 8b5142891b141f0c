package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
)

// Outcome reports what an observation did.
type Outcome int

const (
	// OutcomeNone means nothing changed: the condition is favorable with no
	// open alert, or it already fired.
	OutcomeNone Outcome = iota
	// OutcomePending means the condition is unfavorable but not yet confirmed.
	OutcomePending
	OutcomeOpened
	OutcomeCleared
)

func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeOpened:
		return "opened"
	case OutcomeCleared:
		return "cleared"
	default:
		return "none"
	}
}

// Condition is one observed alertable condition.
type Condition struct {
	Kind      models.AlertKind
	Device    *models.Device
	Interface *models.MonitoredInterface // nil for device conditions

	CurrentBps   float64
	ThresholdBps float64
}

// Key returns the condition key shared by the violation counter and the
// alert.
func (c *Condition) Key() string {
	if c.Kind == models.KindDeviceUnreachable || c.Interface == nil {
		return models.ConditionKey(c.Kind, c.Device.ID)
	}

	return models.ConditionKey(c.Kind, c.Interface.ID)
}

func (c *Condition) message() string {
	switch c.Kind {
	case models.KindDeviceUnreachable:
		return fmt.Sprintf("Device %s (%s) is unreachable", c.Device.Name, c.Device.Address)
	case models.KindInterfaceDown:
		return fmt.Sprintf("Interface %s on %s is down", c.Interface.Name, c.Device.Name)
	case models.KindTrafficLow:
		return fmt.Sprintf("Traffic on %s/%s is %.0f B/s, below the %.0f B/s threshold",
			c.Device.Name, c.Interface.Name, c.CurrentBps, c.ThresholdBps)
	default:
		return string(c.Kind)
	}
}

// Manager turns observations into alerts. An alert opens only after the
// confirmation threshold of consecutive unfavorable observations, and at
// most one unacknowledged alert exists per condition key.
type Manager struct {
	db        db.Service
	notifier  Notifier
	tracker   *Tracker
	threshold int
	now       func() time.Time
	log       logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logger.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

func NewManager(store db.Service, notifier Notifier, threshold int, opts ...ManagerOption) *Manager {
	if threshold < 1 {
		threshold = 1
	}

	m := &Manager{
		db:        store,
		notifier:  notifier,
		tracker:   NewTracker(),
		threshold: threshold,
		now:       time.Now,
		log:       logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Tracker exposes the violation counters.
func (m *Manager) Tracker() *Tracker {
	return m.tracker
}

// Observe records one evaluation of cond.
func (m *Manager) Observe(ctx context.Context, cond *Condition, favorable bool) (Outcome, error) {
	if favorable {
		return m.clear(ctx, cond)
	}

	key := cond.Key()

	count := m.tracker.Increment(key, m.now())
	if count < m.threshold {
		return OutcomePending, nil
	}

	if count > m.threshold {
		return OutcomeNone, nil
	}

	open, err := m.db.GetOpenAlert(ctx, key)
	if err != nil {
		m.tracker.Decrement(key)

		return OutcomeNone, fmt.Errorf("get open alert %s: %w", key, err)
	}

	if open != nil {
		return OutcomeNone, nil
	}

	alert := &models.Alert{
		ConditionKey:      key,
		Kind:              cond.Kind,
		DeviceID:          cond.Device.ID,
		Severity:          SeverityFor(cond.Kind, cond.CurrentBps, cond.ThresholdBps),
		Message:           cond.message(),
		CurrentTrafficBps: cond.CurrentBps,
		ThresholdBps:      cond.ThresholdBps,
		CreatedAt:         m.now(),
	}

	if cond.Interface != nil {
		alert.InterfaceID = cond.Interface.ID
		alert.InterfaceName = cond.Interface.Name
	}

	id, err := m.db.CreateAlert(ctx, alert)
	if err != nil {
		if errors.Is(err, db.ErrAlertOpen) {
			return OutcomeNone, nil
		}

		m.tracker.Decrement(key)

		return OutcomeNone, fmt.Errorf("create alert %s: %w", key, err)
	}

	alert.ID = id

	m.log.Info().
		Str("condition", key).
		Str("severity", string(alert.Severity)).
		Int64("alert_id", alert.ID).
		Msg("Alert opened")

	m.notify(ctx, alert)

	return OutcomeOpened, nil
}

func (m *Manager) clear(ctx context.Context, cond *Condition) (Outcome, error) {
	key := cond.Key()
	m.tracker.Clear(key)

	open, err := m.db.GetOpenAlert(ctx, key)
	if err != nil {
		return OutcomeNone, fmt.Errorf("get open alert %s: %w", key, err)
	}

	if open == nil {
		return OutcomeNone, nil
	}

	if err := m.db.AcknowledgeAlert(ctx, open.ID, models.SystemActor, m.now()); err != nil {
		return OutcomeNone, fmt.Errorf("acknowledge alert %d: %w", open.ID, err)
	}

	m.log.Info().
		Str("condition", key).
		Int64("alert_id", open.ID).
		Msg("Alert cleared")

	return OutcomeCleared, nil
}

// notify delivers to the device owner and assigned users. Delivery is
// best effort; failures are logged.
func (m *Manager) notify(ctx context.Context, alert *models.Alert) {
	if m.notifier == nil {
		return
	}

	recipients, err := m.db.ListDeviceRecipients(ctx, alert.DeviceID)
	if err != nil {
		m.log.Error().Err(err).Int64("device_id", alert.DeviceID).Msg("Failed to list alert recipients")

		return
	}

	for _, userID := range recipients {
		if err := m.notifier.Deliver(ctx, userID, alert); err != nil {
			m.log.Warn().Err(err).Int64("user_id", userID).Int64("alert_id", alert.ID).Msg("Alert delivery failed")
		}
	}
}

// Reset drops the counter for key without touching alerts.
func (m *Manager) Reset(key string) {
	m.tracker.Clear(key)
}

// SweepStale drops counters untouched for maxAge and returns how many.
func (m *Manager) SweepStale(maxAge time.Duration) int {
	return m.tracker.Sweep(m.now().Add(-maxAge))
}
