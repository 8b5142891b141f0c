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

// Package api exposes the HTTP API and the realtime push channel.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/db"
	httpx "github.com/mfreeman451/routeradar/pkg/http"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/realtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 60 * time.Second
	defaultRealtimeLimit     = 100
	defaultControlRate       = 5
	defaultControlBurst      = 10
)

// Server routes the HTTP API.
type Server struct {
	router  *mux.Router
	db      db.Service
	monitor Monitor
	traffic TrafficSource
	store   *realtime.Store
	auth    Authenticator
	cors    config.CORSConfig
	log     logger.Logger

	upgrader      websocket.Upgrader
	controlRate   rate.Limit
	controlBurst  int
	realtimeLimit int
}

func WithLogger(l logger.Logger) func(*Server) {
	return func(s *Server) { s.log = l }
}

func WithCORS(cors config.CORSConfig) func(*Server) {
	return func(s *Server) { s.cors = cors }
}

// WithControlRate limits start/stop messages per websocket connection.
func WithControlRate(perSecond float64, burst int) func(*Server) {
	return func(s *Server) {
		s.controlRate = rate.Limit(perSecond)
		s.controlBurst = burst
	}
}

// WithRealtimeLimit sets the default number of samples returned per
// interface by the realtime snapshot endpoint.
func WithRealtimeLimit(n int) func(*Server) {
	return func(s *Server) { s.realtimeLimit = n }
}

func NewServer(
	store db.Service, monitor Monitor, source TrafficSource, rt *realtime.Store, auth Authenticator,
	options ...func(*Server),
) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		db:            store,
		monitor:       monitor,
		traffic:       source,
		store:         rt,
		auth:          auth,
		log:           logger.GetLogger(),
		controlRate:   defaultControlRate,
		controlBurst:  defaultControlBurst,
		realtimeLimit: defaultRealtimeLimit,
	}

	for _, o := range options {
		o(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkWebSocketOrigin,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return httpx.CommonMiddleware(next, s.cors, s.log)
	})

	s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	s.router.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(s.authenticationMiddleware)

	protected.HandleFunc("/devices/{id}/traffic", s.getTraffic).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id}/realtime", s.getRealtime).Methods(http.MethodGet)
	protected.HandleFunc("/devices/{id}/test", s.testConnection).Methods(http.MethodPost)
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// HTTPServer wraps the handler in an http.Server listening on addr. No
// write timeout is set so websocket connections can stay open.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Message: message, Status: statusCode}); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}
