package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errDisk = errors.New("disk full")

func trafficCondition(current float64) *Condition {
	return &Condition{
		Kind:         models.KindTrafficLow,
		Device:       &models.Device{ID: 1, Name: "edge-1", Address: "192.0.2.1", OwnerID: 10},
		Interface:    &models.MonitoredInterface{ID: 42, DeviceID: 1, Name: "ether1", MinTotalBps: 1_000_000},
		CurrentBps:   current,
		ThresholdBps: 1_000_000,
	}
}

func TestConditionKey(t *testing.T) {
	c := trafficCondition(0)
	assert.Equal(t, "traffic_low:42", c.Key())

	c.Kind = models.KindInterfaceDown
	assert.Equal(t, "interface_down:42", c.Key())

	c = &Condition{Kind: models.KindDeviceUnreachable, Device: &models.Device{ID: 7}}
	assert.Equal(t, "device_unreachable:7", c.Key())
}

func TestManagerTrafficScenario(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := db.NewMockService(ctrl)
	notifier := NewMockNotifier(ctrl)

	m := NewManager(store, notifier, 5, WithLogger(logger.NewTestLogger()))

	low := trafficCondition(500_000)

	for i := 0; i < 4; i++ {
		outcome, err := m.Observe(ctx, low, false)
		require.NoError(t, err)
		assert.Equal(t, OutcomePending, outcome)
	}

	var created *models.Alert

	store.EXPECT().GetOpenAlert(gomock.Any(), "traffic_low:42").Return(nil, nil)
	store.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, a *models.Alert) (int64, error) {
			created = a
			return 99, nil
		})
	store.EXPECT().ListDeviceRecipients(gomock.Any(), int64(1)).Return([]int64{10, 20}, nil)
	notifier.EXPECT().Deliver(gomock.Any(), int64(10), gomock.Any()).Return(nil)
	notifier.EXPECT().Deliver(gomock.Any(), int64(20), gomock.Any()).Return(errors.New("smtp down"))

	outcome, err := m.Observe(ctx, low, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOpened, outcome)

	require.NotNil(t, created)
	assert.Equal(t, int64(99), created.ID)
	assert.Equal(t, models.SeverityWarning, created.Severity)
	assert.InDelta(t, 500_000.0, created.CurrentTrafficBps, 0)
	assert.InDelta(t, 1_000_000.0, created.ThresholdBps, 0)
	assert.Equal(t, "ether1", created.InterfaceName)
	assert.Equal(t, int64(42), created.InterfaceID)

	// A sixth unfavorable tick opens nothing and touches no storage.
	outcome, err = m.Observe(ctx, low, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)

	store.EXPECT().GetOpenAlert(gomock.Any(), "traffic_low:42").Return(&models.Alert{ID: 99}, nil)
	store.EXPECT().AcknowledgeAlert(gomock.Any(), int64(99), models.SystemActor, gomock.Any()).Return(nil)

	outcome, err = m.Observe(ctx, trafficCondition(1_200_000), true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCleared, outcome)
	assert.Zero(t, m.Tracker().Count("traffic_low:42"))
}

func TestManagerRetriesAfterCreateFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	store := db.NewMockService(ctrl)

	m := NewManager(store, nil, 2, WithLogger(logger.NewTestLogger()))
	cond := &Condition{Kind: models.KindDeviceUnreachable, Device: &models.Device{ID: 3, Name: "core"}}

	outcome, err := m.Observe(ctx, cond, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomePending, outcome)

	gomock.InOrder(
		store.EXPECT().GetOpenAlert(gomock.Any(), "device_unreachable:3").Return(nil, nil),
		store.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Return(int64(0), errDisk),
		store.EXPECT().GetOpenAlert(gomock.Any(), "device_unreachable:3").Return(nil, nil),
		store.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Return(int64(5), nil),
	)

	_, err = m.Observe(ctx, cond, false)
	require.ErrorIs(t, err, errDisk)
	assert.Equal(t, 1, m.Tracker().Count(cond.Key()))

	outcome, err = m.Observe(ctx, cond, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeOpened, outcome)
}

func TestManagerKeepsExistingOpenAlert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := db.NewMockService(ctrl)
	m := NewManager(store, nil, 1, WithLogger(logger.NewTestLogger()))

	cond := &Condition{
		Kind:      models.KindInterfaceDown,
		Device:    &models.Device{ID: 1, Name: "edge-1"},
		Interface: &models.MonitoredInterface{ID: 8, Name: "ether2"},
	}

	store.EXPECT().GetOpenAlert(gomock.Any(), "interface_down:8").Return(&models.Alert{ID: 4}, nil)

	outcome, err := m.Observe(context.Background(), cond, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
}

func TestManagerCreateRaceIsNotAnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := db.NewMockService(ctrl)
	m := NewManager(store, nil, 1, WithLogger(logger.NewTestLogger()))
	cond := &Condition{Kind: models.KindDeviceUnreachable, Device: &models.Device{ID: 2}}

	store.EXPECT().GetOpenAlert(gomock.Any(), gomock.Any()).Return(nil, nil)
	store.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Return(int64(0), db.ErrAlertOpen)

	outcome, err := m.Observe(context.Background(), cond, false)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Equal(t, 1, m.Tracker().Count(cond.Key()))
}

func TestManagerFavorableWithoutAlert(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := db.NewMockService(ctrl)
	m := NewManager(store, nil, 5, WithLogger(logger.NewTestLogger()))
	cond := &Condition{Kind: models.KindDeviceUnreachable, Device: &models.Device{ID: 2}}

	_, _ = m.Observe(context.Background(), cond, false)

	store.EXPECT().GetOpenAlert(gomock.Any(), "device_unreachable:2").Return(nil, nil)

	outcome, err := m.Observe(context.Background(), cond, true)
	require.NoError(t, err)
	assert.Equal(t, OutcomeNone, outcome)
	assert.Zero(t, m.Tracker().Count(cond.Key()))
}

func TestManagerResetAndSweep(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewManager(nil, nil, 5, WithClock(func() time.Time { return now }), WithLogger(logger.NewTestLogger()))

	cond := trafficCondition(0)
	_, _ = m.Observe(context.Background(), cond, false)
	assert.Equal(t, 1, m.Tracker().Count(cond.Key()))

	m.Reset(cond.Key())
	assert.Zero(t, m.Tracker().Count(cond.Key()))

	_, _ = m.Observe(context.Background(), cond, false)

	now = now.Add(11 * time.Minute)
	assert.Equal(t, 1, m.SweepStale(10*time.Minute))
}
