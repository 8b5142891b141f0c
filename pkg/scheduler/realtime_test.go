package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingSubscriber struct {
	id       string
	mu       sync.Mutex
	messages []*models.RealtimeMessage
	received chan struct{}
	once     sync.Once
}

func newRecordingSubscriber(id string) *recordingSubscriber {
	return &recordingSubscriber{id: id, received: make(chan struct{})}
}

func (r *recordingSubscriber) ID() string { return r.id }

func (r *recordingSubscriber) Send(msg *models.RealtimeMessage) error {
	r.mu.Lock()
	r.messages = append(r.messages, msg)
	r.mu.Unlock()

	r.once.Do(func() { close(r.received) })

	return nil
}

func (r *recordingSubscriber) wait(t *testing.T) *models.RealtimeMessage {
	t.Helper()

	select {
	case <-r.received:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no realtime push received")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.messages[0]
}

func expectRealtimeFetches(ctrl *gomock.Controller, factory *device.MockFactory, method models.ConnectionMethod) {
	proto := device.NewMockProtocol(ctrl)

	factory.EXPECT().Open(gomock.Any(), method, gomock.Any(), gomock.Any()).Return(proto, nil).AnyTimes()
	proto.EXPECT().ListInterfaces(gomock.Any()).Return([]models.InterfaceInfo{
		{Name: "ether1", Running: true, RxBytes: 100, TxBytes: 100},
		{Name: "<l2tp-out1>", Running: true},
	}, nil).AnyTimes()
	proto.EXPECT().Close().Return(nil).AnyTimes()
}

func TestRealtimeSessionsAreReferenceCounted(t *testing.T) {
	h := newHarness(t, testConfig(t))
	ctrl := gomock.NewController(t)
	dev := routerDevice()

	h.db.EXPECT().GetDevice(gomock.Any(), int64(1)).Return(&dev, nil).Times(1)
	h.db.EXPECT().GetCredentials(gomock.Any(), int64(1)).Return(adminCreds, nil).Times(1)
	expectRealtimeFetches(ctrl, h.factory, models.MethodNative)

	ctx := context.Background()
	alice := newRecordingSubscriber("alice")
	bob := newRecordingSubscriber("bob")

	require.NoError(t, h.sched.Subscribe(ctx, 1, alice))
	require.NoError(t, h.sched.Subscribe(ctx, 1, bob))
	assert.Equal(t, 1, h.sched.Sessions())
	assert.Equal(t, 2, h.sched.Subscribers(1))

	msg := alice.wait(t)
	assert.Equal(t, models.MessageRealtimeTraffic, msg.Type)
	assert.Equal(t, int64(1), msg.DeviceID)
	require.NotEmpty(t, msg.Data)

	for _, s := range msg.Data {
		assert.Equal(t, "ether1", s.Interface)
	}

	// Realtime samples are not durable, so compaction can pick them.
	assert.NotEmpty(t, h.store.Since(1, "ether1", t0.Add(-time.Second)))

	assert.True(t, h.sched.Unsubscribe(1, "alice"))
	assert.False(t, h.sched.Unsubscribe(1, "alice"))
	assert.Equal(t, 1, h.sched.Sessions())

	assert.Equal(t, 1, h.sched.UnsubscribeAll("bob"))
	assert.Equal(t, 0, h.sched.Sessions())

	stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	require.NoError(t, h.sched.Stop(stopCtx))
}

func TestRealtimeActivationDiscoversOnce(t *testing.T) {
	h := newHarness(t, testConfig(t))
	ctrl := gomock.NewController(t)
	dev := routerDevice()
	dev.Method = models.MethodUnset

	identity := device.NewMockProtocol(ctrl)

	h.db.EXPECT().GetDevice(gomock.Any(), int64(1)).Return(&dev, nil)
	h.db.EXPECT().GetCredentials(gomock.Any(), int64(1)).Return(adminCreds, nil)

	gomock.InOrder(
		h.factory.EXPECT().Open(gomock.Any(), models.MethodNative, gomock.Any(), adminCreds).Return(identity, nil),
		h.db.EXPECT().UpdateConnectionMethod(gomock.Any(), int64(1), models.MethodNative).Return(nil),
	)
	identity.EXPECT().Identity(gomock.Any()).Return("edge-1", nil)
	identity.EXPECT().Close().Return(nil)
	expectRealtimeFetches(ctrl, h.factory, models.MethodNative)

	sub := newRecordingSubscriber("carol")
	require.NoError(t, h.sched.Subscribe(context.Background(), 1, sub))
	sub.wait(t)

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, h.sched.Stop(stopCtx))
	assert.Equal(t, 0, h.sched.Sessions())
}

func TestRealtimeActivationFailure(t *testing.T) {
	h := newHarness(t, testConfig(t))

	h.db.EXPECT().GetDevice(gomock.Any(), int64(5)).Return(nil, db.ErrNotFound)

	err := h.sched.Subscribe(context.Background(), 5, newRecordingSubscriber("dave"))
	require.ErrorIs(t, err, ErrDeviceAccess)
	assert.Equal(t, 0, h.sched.Sessions())

	dev := routerDevice()
	dev.Method = models.MethodUnset

	h.db.EXPECT().GetDevice(gomock.Any(), int64(1)).Return(&dev, nil)
	h.db.EXPECT().GetCredentials(gomock.Any(), int64(1)).Return(models.Credentials{}, db.ErrNoCredentials)
	h.factory.EXPECT().Open(gomock.Any(), models.MethodNative, gomock.Any(), gomock.Any()).Return(nil, errTimeout)

	err = h.sched.Subscribe(context.Background(), 1, newRecordingSubscriber("dave"))
	require.ErrorIs(t, err, ErrNoRealtimeMethod)
	assert.Equal(t, 0, h.sched.Sessions())

	// Only a missing login is tolerated before discovery; a store failure
	// must not fall through to an anonymous attempt.
	h.db.EXPECT().GetDevice(gomock.Any(), int64(1)).Return(&dev, nil)
	h.db.EXPECT().GetCredentials(gomock.Any(), int64(1)).
		Return(models.Credentials{}, errors.New("cipher: message authentication failed"))

	err = h.sched.Subscribe(context.Background(), 1, newRecordingSubscriber("dave"))
	require.ErrorIs(t, err, ErrDeviceAccess)
	assert.Equal(t, 0, h.sched.Sessions())
}

func TestSubscribeDuringStopLeavesNoSession(t *testing.T) {
	h := newHarness(t, testConfig(t))
	dev := routerDevice()

	entered := make(chan struct{})
	release := make(chan struct{})

	h.db.EXPECT().GetDevice(gomock.Any(), int64(1)).DoAndReturn(
		func(context.Context, int64) (*models.Device, error) {
			close(entered)
			<-release

			return &dev, nil
		})
	h.db.EXPECT().GetCredentials(gomock.Any(), int64(1)).Return(adminCreds, nil)

	before := testutil.ToFloat64(telemetry.LiveSessions)

	errCh := make(chan error, 1)

	go func() {
		errCh <- h.sched.Subscribe(context.Background(), 1, newRecordingSubscriber("erin"))
	}()

	<-entered

	stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.NoError(t, h.sched.Stop(stopCtx))
	close(release)

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		require.FailNow(t, "subscribe did not return")
	}

	assert.Equal(t, 0, h.sched.Sessions())
	assert.Equal(t, before, testutil.ToFloat64(telemetry.LiveSessions))
}
