package cache

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/clock"
)

// MemoryStore is the single-instance TTLStore used when no Redis is
// configured and in tests.
type MemoryStore struct {
	mu      sync.Mutex
	clock   clock.Clock
	entries map[string]time.Time
}

func NewMemoryStore(c clock.Clock) *MemoryStore {
	return &MemoryStore{clock: c, entries: make(map[string]time.Time)}
}

func (m *MemoryStore) SetNX(_ context.Context, key, _ string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if exp, ok := m.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	m.entries[key] = now.Add(ttl)
	return true, nil
}

func (m *MemoryStore) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	exp, ok := m.entries[key]
	if !ok {
		return false, nil
	}
	if !m.clock.Now().Before(exp) {
		delete(m.entries, key)
		return false, nil
	}
	return true, nil
}

// MemoryLocker is a keyed mutex whose waits honour ctx.
type MemoryLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{slots: make(map[string]chan struct{})}
}

func (l *MemoryLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch, ok := l.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[key] = ch
	}
	return ch
}

func (l *MemoryLocker) Lock(ctx context.Context, key string) (func(), error) {
	ch := l.slot(key)

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-ch })
	}, nil
}
