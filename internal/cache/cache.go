// Package cache stores rendered JSON responses for a short TTL so repeated
// page loads do not all reach the CMS.
package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a byte-slice store with per-entry expiry. Implementations never
// return errors: a cache failure is a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte)
	Purge(ctx context.Context)
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory returns a Memory cache. A non-positive ttl disables caching.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	if m.ttl <= 0 {
		return nil, false
	}
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (m *Memory) Set(_ context.Context, key string, value []byte) {
	if m.ttl <= 0 {
		return
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: value, expiresAt: now.Add(m.ttl)}
	// Drop expired entries while we hold the lock.
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) Purge(context.Context) {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
