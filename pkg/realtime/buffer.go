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

package realtime

import (
	"sync"

	"github.com/mfreeman451/routeradar/pkg/models"
)

type entry struct {
	sample  models.TrafficSample
	durable bool
}

// ringBuffer keeps the newest samples of one series. Once full, each write
// overwrites the oldest entry.
type ringBuffer struct {
	mu      sync.RWMutex
	entries []entry
	pos     int
	count   int
}

func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{entries: make([]entry, size)}
}

func (b *ringBuffer) add(e entry) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.pos] = e
	b.pos = (b.pos + 1) % len(b.entries)

	if b.count < len(b.entries) {
		b.count++
	}
}

// last returns up to n entries ordered oldest to newest. n <= 0 means all.
func (b *ringBuffer) last(n int) []entry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if n <= 0 || n > b.count {
		n = b.count
	}

	out := make([]entry, n)
	size := len(b.entries)

	for i := 0; i < n; i++ {
		idx := (b.pos - n + i + size) % size
		out[i] = b.entries[idx]
	}

	return out
}

func (b *ringBuffer) newest() (entry, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return entry{}, false
	}

	return b.entries[(b.pos-1+len(b.entries))%len(b.entries)], true
}
