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

// Package realtime holds the most recent traffic samples of every series in
// memory, one bounded ring buffer per device interface.
package realtime

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mfreeman451/routeradar/pkg/models"
)

var errInvalidSize = errors.New("realtime: capacity and series limit must be positive")

// SeriesKey identifies one (device, interface) series.
type SeriesKey struct {
	DeviceID  int64
	Interface string
}

// Store is safe for concurrent use. The number of series is capped; when
// the cap is exceeded the series written least recently is evicted.
type Store struct {
	capacity int
	mu       sync.Mutex
	series   *lru.Cache[SeriesKey, *ringBuffer]
	evicted  atomic.Uint64
	removing bool // guarded by mu; Remove also fires the evict callback
}

func NewStore(capacity, maxSeries int) (*Store, error) {
	if capacity <= 0 || maxSeries <= 0 {
		return nil, errInvalidSize
	}

	s := &Store{capacity: capacity}

	cache, err := lru.NewWithEvict[SeriesKey, *ringBuffer](maxSeries, func(SeriesKey, *ringBuffer) {
		if !s.removing {
			s.evicted.Add(1)
		}
	})
	if err != nil {
		return nil, err
	}

	s.series = cache

	return s, nil
}

// Append adds a sample to its series. durable marks samples that have
// already been written to the database.
func (s *Store) Append(sample models.TrafficSample, durable bool) {
	key := SeriesKey{DeviceID: sample.DeviceID, Interface: sample.Interface}

	s.mu.Lock()

	buf, ok := s.series.Get(key)
	if !ok {
		buf = newRingBuffer(s.capacity)
		s.series.Add(key, buf)
	}

	s.mu.Unlock()

	buf.add(entry{sample: sample, durable: durable})
}

// Latest returns the newest sample of a series.
func (s *Store) Latest(deviceID int64, iface string) (models.TrafficSample, bool) {
	buf, ok := s.series.Peek(SeriesKey{DeviceID: deviceID, Interface: iface})
	if !ok {
		return models.TrafficSample{}, false
	}

	e, ok := buf.newest()

	return e.sample, ok
}

// Recent returns up to n samples of a series, oldest first.
func (s *Store) Recent(deviceID int64, iface string, n int) []models.TrafficSample {
	buf, ok := s.series.Peek(SeriesKey{DeviceID: deviceID, Interface: iface})
	if !ok {
		return nil
	}

	entries := buf.last(n)
	out := make([]models.TrafficSample, len(entries))

	for i, e := range entries {
		out[i] = e.sample
	}

	return out
}

// DeviceRecent returns up to n samples for every series of a device,
// keyed by interface name.
func (s *Store) DeviceRecent(deviceID int64, n int) map[string][]models.TrafficSample {
	out := make(map[string][]models.TrafficSample)

	for _, key := range s.series.Keys() {
		if key.DeviceID != deviceID {
			continue
		}

		if samples := s.Recent(key.DeviceID, key.Interface, n); len(samples) > 0 {
			out[key.Interface] = samples
		}
	}

	return out
}

// Since returns the samples of a series newer than t that have not been
// persisted yet, oldest first.
func (s *Store) Since(deviceID int64, iface string, t time.Time) []models.TrafficSample {
	buf, ok := s.series.Peek(SeriesKey{DeviceID: deviceID, Interface: iface})
	if !ok {
		return nil
	}

	var out []models.TrafficSample

	for _, e := range buf.last(0) {
		if !e.durable && e.sample.Timestamp.After(t) {
			out = append(out, e.sample)
		}
	}

	return out
}

// Series lists the keys currently held, ordered by device then interface.
func (s *Store) Series() []SeriesKey {
	keys := s.series.Keys()

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].DeviceID != keys[j].DeviceID {
			return keys[i].DeviceID < keys[j].DeviceID
		}

		return keys[i].Interface < keys[j].Interface
	})

	return keys
}

// RemoveDevice drops every series of a device and reports how many went.
func (s *Store) RemoveDevice(deviceID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removing = true
	defer func() { s.removing = false }()

	removed := 0

	for _, key := range s.series.Keys() {
		if key.DeviceID == deviceID && s.series.Remove(key) {
			removed++
		}
	}

	return removed
}

// Len reports the number of series held.
func (s *Store) Len() int {
	return s.series.Len()
}

// Evicted reports how many series were pushed out by the series cap.
func (s *Store) Evicted() uint64 {
	return s.evicted.Load()
}
