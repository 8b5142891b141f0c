package device

import (
	"sync"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// CounterKey identifies one cumulative counter stream.
type CounterKey struct {
	DeviceID  int64
	Interface string
	Method    models.ConnectionMethod
}

type counterReading struct {
	rx, tx uint64
	at     time.Time
}

// CounterCache remembers the last cumulative byte counters per stream and
// turns each new reading into bytes per second.
type CounterCache struct {
	mu   sync.Mutex
	last map[CounterKey]counterReading
}

func NewCounterCache() *CounterCache {
	return &CounterCache{last: make(map[CounterKey]counterReading)}
}

// ComputeRate returns max(0, (current-previous)/elapsed) in units per second.
// A counter that went backwards (reset or rollover) yields zero.
func ComputeRate(previous, current uint64, elapsed time.Duration) float64 {
	if elapsed <= 0 || current < previous {
		return 0
	}

	return float64(current-previous) / elapsed.Seconds()
}

// Observe records a reading and returns rx/tx rates against the previous one.
// The first reading of a stream yields zero rates.
func (c *CounterCache) Observe(key CounterKey, rx, tx uint64, at time.Time) (rxBps, txBps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.last[key]
	c.last[key] = counterReading{rx: rx, tx: tx, at: at}

	if !ok {
		return 0, 0
	}

	elapsed := at.Sub(prev.at)

	return ComputeRate(prev.rx, rx, elapsed), ComputeRate(prev.tx, tx, elapsed)
}

// Prune drops streams not observed since cutoff and reports how many went.
func (c *CounterCache) Prune(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0

	for key, reading := range c.last {
		if reading.at.Before(cutoff) {
			delete(c.last, key)

			removed++
		}
	}

	return removed
}

// Len reports the number of tracked streams.
func (c *CounterCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.last)
}
