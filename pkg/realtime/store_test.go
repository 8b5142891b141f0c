package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleAt(deviceID int64, iface string, t time.Time, total float64) models.TrafficSample {
	return models.TrafficSample{DeviceID: deviceID, Interface: iface, Timestamp: t, TotalBps: total}
}

func TestNewStoreRejectsInvalidSizes(t *testing.T) {
	_, err := NewStore(0, 10)
	require.Error(t, err)

	_, err = NewStore(10, 0)
	require.Error(t, err)
}

func TestStoreRingBufferWraps(t *testing.T) {
	s, err := NewStore(3, 10)
	require.NoError(t, err)

	t0 := time.Now()

	for i := 0; i < 5; i++ {
		s.Append(sampleAt(1, "ether1", t0.Add(time.Duration(i)*time.Second), float64(i)), false)
	}

	got := s.Recent(1, "ether1", 0)
	require.Len(t, got, 3)
	assert.InDelta(t, 2.0, got[0].TotalBps, 0)
	assert.InDelta(t, 4.0, got[2].TotalBps, 0)

	got = s.Recent(1, "ether1", 2)
	require.Len(t, got, 2)
	assert.InDelta(t, 3.0, got[0].TotalBps, 0)

	latest, ok := s.Latest(1, "ether1")
	require.True(t, ok)
	assert.InDelta(t, 4.0, latest.TotalBps, 0)

	_, ok = s.Latest(1, "ether2")
	assert.False(t, ok)
	assert.Nil(t, s.Recent(2, "ether1", 5))
}

func TestStoreSinceSkipsDurable(t *testing.T) {
	s, err := NewStore(10, 10)
	require.NoError(t, err)

	t0 := time.Now()

	s.Append(sampleAt(1, "ether1", t0, 1), false)
	s.Append(sampleAt(1, "ether1", t0.Add(time.Second), 2), true)
	s.Append(sampleAt(1, "ether1", t0.Add(2*time.Second), 3), false)

	got := s.Since(1, "ether1", t0)
	require.Len(t, got, 1)
	assert.InDelta(t, 3.0, got[0].TotalBps, 0)

	assert.Len(t, s.Since(1, "ether1", t0.Add(-time.Second)), 2)
}

func TestStoreEvictsLeastRecentlyWritten(t *testing.T) {
	s, err := NewStore(5, 2)
	require.NoError(t, err)

	now := time.Now()

	s.Append(sampleAt(1, "a", now, 1), false)
	s.Append(sampleAt(1, "b", now, 1), false)
	s.Append(sampleAt(1, "a", now.Add(time.Second), 2), false)
	s.Append(sampleAt(1, "c", now, 1), false)

	assert.Equal(t, []SeriesKey{{1, "a"}, {1, "c"}}, s.Series())
	assert.Equal(t, uint64(1), s.Evicted())
}

func TestStoreDeviceRecentAndRemove(t *testing.T) {
	s, err := NewStore(5, 10)
	require.NoError(t, err)

	now := time.Now()

	s.Append(sampleAt(1, "ether1", now, 1), false)
	s.Append(sampleAt(1, "ether2", now, 2), false)
	s.Append(sampleAt(2, "ether1", now, 3), false)

	recent := s.DeviceRecent(1, 10)
	assert.Len(t, recent, 2)
	assert.Len(t, recent["ether2"], 1)

	assert.Equal(t, 2, s.RemoveDevice(1))
	assert.Equal(t, 1, s.Len())
	assert.Zero(t, s.Evicted())
	assert.Empty(t, s.DeviceRecent(1, 10))
}

func TestStoreConcurrentAppend(t *testing.T) {
	s, err := NewStore(50, 100)
	require.NoError(t, err)

	var wg sync.WaitGroup

	for d := 0; d < 8; d++ {
		wg.Add(1)

		go func(d int) {
			defer wg.Done()

			for i := 0; i < 200; i++ {
				s.Append(sampleAt(int64(d), fmt.Sprintf("ether%d", i%4), time.Now(), float64(i)), i%2 == 0)
				_ = s.Recent(int64(d), "ether0", 10)
			}
		}(d)
	}

	wg.Wait()

	assert.Equal(t, 32, s.Len())
	assert.Len(t, s.Recent(3, "ether1", 0), 50)
}
