package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/traffic"
)

// TrafficResponse is the body of the historical traffic endpoint.
type TrafficResponse struct {
	DeviceID      int64                  `json:"device_id"`
	Interface     string                 `json:"interface,omitempty"`
	Start         time.Time              `json:"start"`
	End           time.Time              `json:"end"`
	BucketSeconds int64                  `json:"bucket_seconds"`
	Cached        bool                   `json:"cached"`
	Samples       []models.TrafficSample `json:"samples"`
}

// RealtimeResponse is the body of the realtime snapshot endpoint.
type RealtimeResponse struct {
	DeviceID int64                             `json:"device_id"`
	Series   map[string][]models.TrafficSample `json:"series"`
}

// AttemptResult is one protocol tried by a connection test.
type AttemptResult struct {
	Method   models.ConnectionMethod `json:"method"`
	Identity string                  `json:"identity,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

// ConnectionTestResponse is the body of the connection test endpoint.
type ConnectionTestResponse struct {
	DeviceID int64                   `json:"device_id"`
	OK       bool                    `json:"ok"`
	Method   models.ConnectionMethod `json:"method,omitempty"`
	Identity string                  `json:"identity,omitempty"`
	Attempts []AttemptResult         `json:"attempts"`
}

func deviceIDFromRequest(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidDeviceID
	}

	return id, nil
}

// authorizedDevice resolves the device id in the path and checks the
// caller may see it. On failure the response has been written.
func (s *Server) authorizedDevice(w http.ResponseWriter, r *http.Request) (int64, bool) {
	deviceID, err := deviceIDFromRequest(r)
	if err != nil {
		writeError(w, "Invalid device id", http.StatusBadRequest)

		return 0, false
	}

	userID, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)

		return 0, false
	}

	if err := s.authorize(r.Context(), userID, deviceID); err != nil {
		msg, status := accessStatus(err)
		if status == http.StatusInternalServerError {
			s.log.Error().Err(err).Int64("device_id", deviceID).Msg("Failed to check device access")
		}

		writeError(w, msg, status)

		return 0, false
	}

	return deviceID, true
}

// parseTimeRange reads RFC3339 start and end parameters. The range
// defaults to the last 24 hours.
func parseTimeRange(query url.Values, now time.Time) (start, end time.Time, err error) {
	start = now.Add(-24 * time.Hour)
	end = now

	if v := query.Get("start"); v != "" {
		if start, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start: %w", errInvalidTime, err)
		}
	}

	if v := query.Get("end"); v != "" {
		if end, err = time.Parse(time.RFC3339, v); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end: %w", errInvalidTime, err)
		}
	}

	return start, end, nil
}

func (s *Server) getTraffic(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()

	start, end, err := parseTimeRange(query, time.Now())
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)

		return
	}

	iface := query.Get("interface")

	res, err := s.traffic.Query(r.Context(), deviceID, iface, start, end)
	if err != nil {
		if errors.Is(err, traffic.ErrInvalidRange) {
			writeError(w, err.Error(), http.StatusBadRequest)

			return
		}

		s.log.Error().Err(err).Int64("device_id", deviceID).Msg("Traffic query failed")
		writeError(w, "Internal server error", http.StatusInternalServerError)

		return
	}

	samples := res.Samples
	if samples == nil {
		samples = []models.TrafficSample{}
	}

	s.writeJSON(w, TrafficResponse{
		DeviceID:      deviceID,
		Interface:     iface,
		Start:         start,
		End:           end,
		BucketSeconds: int64(res.Bucket / time.Second),
		Cached:        res.Cached,
		Samples:       samples,
	})
}

func (s *Server) getRealtime(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	limit := s.realtimeLimit

	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, errInvalidLimit.Error(), http.StatusBadRequest)

			return
		}

		limit = n
	}

	resp := RealtimeResponse{DeviceID: deviceID, Series: map[string][]models.TrafficSample{}}

	if iface := query.Get("interface"); iface != "" {
		if samples := s.store.Recent(deviceID, iface, limit); len(samples) > 0 {
			resp.Series[iface] = samples
		}
	} else {
		resp.Series = s.store.DeviceRecent(deviceID, limit)
	}

	s.writeJSON(w, resp)
}

func (s *Server) testConnection(w http.ResponseWriter, r *http.Request) {
	deviceID, ok := s.authorizedDevice(w, r)
	if !ok {
		return
	}

	disc, err := s.monitor.TestConnection(r.Context(), deviceID)
	if err != nil {
		s.log.Error().Err(err).Int64("device_id", deviceID).Msg("Connection test failed")
		writeError(w, "Connection test failed", http.StatusInternalServerError)

		return
	}

	s.writeJSON(w, connectionTestResponse(deviceID, disc))
}

func connectionTestResponse(deviceID int64, disc *device.Discovery) ConnectionTestResponse {
	resp := ConnectionTestResponse{
		DeviceID: deviceID,
		OK:       disc.OK(),
		Method:   disc.Method,
		Identity: disc.Identity,
		Attempts: make([]AttemptResult, 0, len(disc.Attempts)),
	}

	for _, a := range disc.Attempts {
		result := AttemptResult{Method: a.Method, Identity: a.Identity}
		if a.Err != nil {
			result.Error = a.Err.Error()
		}

		resp.Attempts = append(resp.Attempts, result)
	}

	return resp
}
