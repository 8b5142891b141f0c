package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func dialWS(t *testing.T, f *fixture) (*websocket.Conn, func()) {
	t.Helper()

	srv := httptest.NewServer(f.server.Handler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return conn, func() {
		_ = conn.Close()
		srv.Close()
	}
}

func readStatus(t *testing.T, conn *websocket.Conn) models.StatusMessage {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var msg models.StatusMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

// expectDisconnect waits for the server side of the connection to drop
// its subscriptions.
func expectDisconnect(f *fixture) chan struct{} {
	done := make(chan struct{})

	f.monitor.EXPECT().UnsubscribeAll(gomock.Any()).DoAndReturn(func(string) int {
		close(done)

		return 0
	})

	return done
}

func waitClosed(t *testing.T, done chan struct{}) {
	t.Helper()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "connection not cleaned up")
	}
}

func TestWebSocketSession(t *testing.T) {
	f := newFixture(t, nil)
	closed := expectDisconnect(f)

	conn, cleanup := dialWS(t, f)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageAuth, Token: ownerToken}))
	assert.Equal(t, models.MessageAuthOK, readStatus(t, conn).Type)

	subscribed := make(chan string, 1)

	f.db.EXPECT().ListDeviceRecipients(gomock.Any(), int64(1)).Return([]int64{10}, nil)
	f.monitor.EXPECT().Subscribe(gomock.Any(), int64(1), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ int64, sub scheduler.Subscriber) error {
			subscribed <- sub.ID()

			return nil
		})

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStartRealtime, DeviceID: 1}))

	status := readStatus(t, conn)
	assert.Equal(t, models.MessageStatus, status.Type)
	assert.Equal(t, models.StatusStarted, status.Status)
	assert.Equal(t, int64(1), status.DeviceID)

	subscriberID := <-subscribed
	assert.NotEmpty(t, subscriberID)

	f.monitor.EXPECT().Unsubscribe(int64(1), subscriberID).Return(true)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStopRealtime, DeviceID: 1}))
	assert.Equal(t, models.StatusStopped, readStatus(t, conn).Status)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: "reboot"}))
	assert.Equal(t, models.MessageError, readStatus(t, conn).Type)

	_ = conn.Close()
	waitClosed(t, closed)
}

func TestWebSocketAuthFailure(t *testing.T) {
	f := newFixture(t, nil)
	closed := expectDisconnect(f)

	conn, cleanup := dialWS(t, f)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageAuth, Token: "nope"}))

	msg := readStatus(t, conn)
	assert.Equal(t, models.MessageError, msg.Type)
	assert.Equal(t, "authentication failed", msg.Message)

	waitClosed(t, closed)
}

func TestWebSocketRequiresAuthFirst(t *testing.T) {
	f := newFixture(t, nil)
	closed := expectDisconnect(f)

	conn, cleanup := dialWS(t, f)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStartRealtime, DeviceID: 1}))
	assert.Equal(t, models.MessageError, readStatus(t, conn).Type)

	waitClosed(t, closed)
}

func TestWebSocketStartDenied(t *testing.T) {
	f := newFixture(t, nil)
	closed := expectDisconnect(f)

	conn, cleanup := dialWS(t, f)
	defer cleanup()

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageAuth, Token: strangerToken}))
	assert.Equal(t, models.MessageAuthOK, readStatus(t, conn).Type)

	f.db.EXPECT().ListDeviceRecipients(gomock.Any(), int64(1)).Return([]int64{10}, nil)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStartRealtime, DeviceID: 1}))

	status := readStatus(t, conn)
	assert.Equal(t, models.StatusError, status.Status)
	assert.Equal(t, "Access denied", status.Message)

	_ = conn.Close()
	waitClosed(t, closed)
}

func TestWebSocketControlRateLimit(t *testing.T) {
	auth := NewMockAuthenticator(gomock.NewController(t))
	f := newFixture(t, auth)
	f.server.controlRate = 0.001
	f.server.controlBurst = 1

	closed := expectDisconnect(f)

	conn, cleanup := dialWS(t, f)
	defer cleanup()

	auth.EXPECT().Authenticate(gomock.Any(), "tok").Return(int64(10), nil)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageAuth, Token: "tok"}))
	assert.Equal(t, models.MessageAuthOK, readStatus(t, conn).Type)

	f.monitor.EXPECT().Unsubscribe(int64(3), gomock.Any()).Return(false)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStopRealtime, DeviceID: 3}))
	assert.Equal(t, models.StatusStopped, readStatus(t, conn).Status)

	require.NoError(t, conn.WriteJSON(models.ClientMessage{Type: models.MessageStopRealtime, DeviceID: 3}))

	status := readStatus(t, conn)
	assert.Equal(t, models.StatusError, status.Status)
	assert.Equal(t, "rate limited", status.Message)

	_ = conn.Close()
	waitClosed(t, closed)
}
