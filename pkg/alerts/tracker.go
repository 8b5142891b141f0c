package alerts

import (
	"sync"
	"time"
)

// ViolationCounter counts consecutive unfavorable observations of a
// condition.
type ViolationCounter struct {
	Count     int
	LastTouch time.Time
}

// Tracker holds violation counters in memory, keyed by condition key.
type Tracker struct {
	mu       sync.Mutex
	counters map[string]*ViolationCounter
}

func NewTracker() *Tracker {
	return &Tracker{counters: make(map[string]*ViolationCounter)}
}

// Increment bumps the counter for key and returns the new count.
func (t *Tracker) Increment(key string, at time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counters[key]
	if !ok {
		c = &ViolationCounter{}
		t.counters[key] = c
	}

	c.Count++
	c.LastTouch = at

	return c.Count
}

// Decrement undoes one increment. A counter reaching zero is removed.
func (t *Tracker) Decrement(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	c, ok := t.counters[key]
	if !ok {
		return 0
	}

	c.Count--

	if c.Count <= 0 {
		delete(t.counters, key)

		return 0
	}

	return c.Count
}

// Clear removes the counter for key and reports whether one existed.
func (t *Tracker) Clear(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok := t.counters[key]
	delete(t.counters, key)

	return ok
}

func (t *Tracker) Count(key string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if c, ok := t.counters[key]; ok {
		return c.Count
	}

	return 0
}

// Sweep removes counters not touched since cutoff and returns how many.
func (t *Tracker) Sweep(cutoff time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0

	for key, c := range t.counters {
		if c.LastTouch.Before(cutoff) {
			delete(t.counters, key)

			removed++
		}
	}

	return removed
}

func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.counters)
}
