package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many increments pass between removals of closed windows
const sweepEvery = 1024

// MemoryStore keeps fixed window counters in process memory. It serves a
// single wproofd instance; use the redis store to share limits.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[LimitKey]*window
	calls   int
}

type window struct {
	count int
	reset time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, windows: map[LimitKey]*window{}}
}

func (m *MemoryStore) Increment(_ context.Context, key LimitKey, limit Limit) (int, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if m.calls++; m.calls%sweepEvery == 0 {
		m.sweep(now)
	}

	w := m.windows[key]
	if w == nil || !now.Before(w.reset) {
		w = &window{reset: now.Add(limit.Period)}
		m.windows[key] = w
	}
	w.count++
	return w.count, w.reset, nil
}

func (m *MemoryStore) Reset(_ context.Context, key LimitKey) error {
	m.mu.Lock()
	delete(m.windows, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) sweep(now time.Time) {
	for key, w := range m.windows {
		if !now.Before(w.reset) {
			delete(m.windows, key)
		}
	}
}
