package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the default in-process store. Expired entries are dropped lazily:
// on read, and in a sweep when the entry count passes the cap. No background
// goroutine.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates an in-process store holding at most maxEntries live
// entries per sweep.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// SetClock replaces the time source. Test hook; call before concurrent use.
func (m *Memory) SetClock(now func() time.Time) {
	m.now = now
}

func (m *Memory) Get(_ context.Context, ns Namespace, key string) ([]byte, bool) {
	k := string(ns) + ":" + key

	m.mu.RLock()
	e, ok := m.entries[k]
	m.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock, another writer may have refreshed it.
		if cur, ok := m.entries[k]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, k)
		}
		m.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, ns Namespace, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	k := string(ns) + ":" + key

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[k] = entry{value: value, expiresAt: m.now().Add(ttl)}
	if len(m.entries) > m.maxEntries {
		m.sweepLocked()
	}
}

// sweepLocked drops expired entries; if none have expired yet, it evicts the
// entries closest to expiry until the count fits.
func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	for len(m.entries) > m.maxEntries {
		oldestKey := ""
		var oldest time.Time
		for k, e := range m.entries {
			if oldestKey == "" || e.expiresAt.Before(oldest) {
				oldestKey, oldest = k, e.expiresAt
			}
		}
		delete(m.entries, oldestKey)
	}
}

// Len returns the current entry count, expired entries included.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
