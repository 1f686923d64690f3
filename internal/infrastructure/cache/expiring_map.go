package cache

import (
	"sync"
	"time"
)

const defaultCleanupInterval = 5 * time.Minute

type expiringEntry struct {
	value     []byte
	expiresAt time.Time
}

// expiringMap is a mutex-guarded map whose entries vanish after their TTL.
// A background goroutine sweeps expired entries until Close is called.
type expiringMap struct {
	mu        sync.RWMutex
	entries   map[string]expiringEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func newExpiringMap(cleanupInterval time.Duration) *expiringMap {
	m := &expiringMap{
		entries:  make(map[string]expiringEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	m.wg.Add(1)
	go m.cleanupLoop(cleanupInterval)
	return m
}

// setIfAbsent stores value unless a live entry exists; it reports whether it stored
func (m *expiringMap) setIfAbsent(key string, value []byte, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok && now.Before(e.expiresAt) {
		return false
	}
	m.entries[key] = expiringEntry{value: value, expiresAt: now.Add(ttl)}
	return true
}

func (m *expiringMap) set(key string, value []byte, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = expiringEntry{value: value, expiresAt: m.now().Add(ttl)}
}

func (m *expiringMap) get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

func (m *expiringMap) delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

func (m *expiringMap) size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *expiringMap) close() {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
	})
}

func (m *expiringMap) cleanupLoop(interval time.Duration) {
	defer m.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case <-ticker.C:
			m.cleanup()
		}
	}
}

func (m *expiringMap) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, key)
		}
	}
}
