package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/scheduler"
	"golang.org/x/time/rate"
)

const (
	authTimeout     = 10 * time.Second
	writeWait       = 5 * time.Second
	maxMessageBytes = 4096
)

// wsClient is one authenticated websocket connection. It implements
// scheduler.Subscriber.
type wsClient struct {
	id      string
	userID  int64
	conn    *websocket.Conn
	writeMu sync.Mutex
	limiter *rate.Limiter
	log     logger.Logger
}

func (c *wsClient) ID() string {
	return c.id
}

func (c *wsClient) Send(msg *models.RealtimeMessage) error {
	return c.writeJSON(msg)
}

func (c *wsClient) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return c.conn.WriteJSON(v)
}

func (c *wsClient) status(status string, deviceID int64, message string) {
	msg := models.StatusMessage{Type: models.MessageStatus, Status: status, DeviceID: deviceID, Message: message}

	if err := c.writeJSON(msg); err != nil {
		c.log.Debug().Err(err).Str("conn_id", c.id).Msg("Failed to send status")
	}
}

func (c *wsClient) fail(message string) {
	if err := c.writeJSON(models.StatusMessage{Type: models.MessageError, Message: message}); err != nil {
		c.log.Debug().Err(err).Str("conn_id", c.id).Msg("Failed to send error")
	}
}

func (s *Server) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if slices.Contains(s.cors.AllowedOrigins, "*") || slices.Contains(s.cors.AllowedOrigins, origin) {
		return true
	}

	s.log.Warn().Str("origin", origin).Msg("Rejected websocket origin")

	return false
}

// handleWebSocket serves the realtime push channel. The first message
// must authenticate the connection; every later message starts or stops a
// realtime session.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to websocket")

		return
	}

	client := &wsClient{
		id:      uuid.NewString(),
		conn:    conn,
		limiter: rate.NewLimiter(s.controlRate, max(s.controlBurst, 1)),
		log:     s.log,
	}

	defer func() {
		dropped := s.monitor.UnsubscribeAll(client.id)

		s.log.Debug().
			Str("conn_id", client.id).
			Int("subscriptions", dropped).
			Msg("Websocket connection closed")

		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageBytes)

	ctx := r.Context()

	if !s.authenticateConnection(ctx, client) {
		return
	}

	s.log.Info().Str("conn_id", client.id).Int64("user_id", client.userID).Msg("Websocket connection authenticated")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("conn_id", client.id).Msg("Websocket read failed")
			}

			return
		}

		var msg models.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.fail("invalid message")

			continue
		}

		s.handleControl(ctx, client, &msg)
	}
}

func (s *Server) authenticateConnection(ctx context.Context, client *wsClient) bool {
	if err := client.conn.SetReadDeadline(time.Now().Add(authTimeout)); err != nil {
		return false
	}

	var msg models.ClientMessage
	if err := client.conn.ReadJSON(&msg); err != nil {
		client.fail("authentication required")

		return false
	}

	if msg.Type != models.MessageAuth {
		client.fail("authentication required")

		return false
	}

	userID, err := s.auth.Authenticate(ctx, msg.Token)
	if err != nil {
		client.fail("authentication failed")

		return false
	}

	client.userID = userID

	if err := client.conn.SetReadDeadline(time.Time{}); err != nil {
		return false
	}

	return client.writeJSON(models.StatusMessage{Type: models.MessageAuthOK}) == nil
}

func (s *Server) handleControl(ctx context.Context, client *wsClient, msg *models.ClientMessage) {
	switch msg.Type {
	case models.MessageStartRealtime, models.MessageStopRealtime:
	default:
		client.fail("unknown message type")

		return
	}

	if !client.limiter.Allow() {
		client.status(models.StatusError, msg.DeviceID, "rate limited")

		return
	}

	if msg.Type == models.MessageStopRealtime {
		s.monitor.Unsubscribe(msg.DeviceID, client.id)
		client.status(models.StatusStopped, msg.DeviceID, "")

		return
	}

	if err := s.authorize(ctx, client.userID, msg.DeviceID); err != nil {
		text, _ := accessStatus(err)
		client.status(models.StatusError, msg.DeviceID, text)

		return
	}

	if err := s.monitor.Subscribe(ctx, msg.DeviceID, client); err != nil {
		s.log.Warn().Err(err).Int64("device_id", msg.DeviceID).Str("conn_id", client.id).Msg("Failed to start realtime session")

		text := "failed to start realtime polling"

		switch {
		case errors.Is(err, scheduler.ErrNoRealtimeMethod):
			text = err.Error()
		case errors.Is(err, context.Canceled):
			text = "shutting down"
		}

		client.status(models.StatusError, msg.DeviceID, text)

		return
	}

	client.status(models.StatusStarted, msg.DeviceID, "")
}
