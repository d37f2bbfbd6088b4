package cache

import (
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	timer     *time.Timer
}

// MemoryCache is the in-process TTL fallback tier. Each entry carries its own
// expiry timer; there is no background sweep. Values cached here are invisible
// to other processes by design.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]*memoryEntry),
	}
}

// Set stores value under key for ttl. An existing entry is overwritten and
// its timer discarded.
func (m *MemoryCache) Set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		m.Delete(key)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[key]; ok {
		old.timer.Stop()
	}

	entry := &memoryEntry{
		value:     value,
		expiresAt: time.Now().Add(ttl),
	}
	// The timer removes only its own entry; an overwrite in the meantime
	// must survive a stale timer that already fired.
	entry.timer = time.AfterFunc(ttl, func() {
		m.mu.Lock()
		if current, ok := m.entries[key]; ok && current == entry {
			delete(m.entries, key)
		}
		m.mu.Unlock()
	})

	m.entries[key] = entry
}

// Get returns the value for key, or false when absent. An entry whose expiry
// instant has passed but whose timer has not fired yet reads as a miss.
func (m *MemoryCache) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Delete removes key, reporting whether an entry existed.
func (m *MemoryCache) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return false
	}
	entry.timer.Stop()
	delete(m.entries, key)
	return true
}

// Len returns the number of live entries (expired-but-unswept included).
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Flush drops every entry and stops their timers.
func (m *MemoryCache) Flush() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, entry := range m.entries {
		entry.timer.Stop()
		delete(m.entries, key)
	}
}
