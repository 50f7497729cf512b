package storage

import (
	"context"
	"sync"
)

type memoryKV struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryKV is an in-process store: state does not survive a restart. Used
// in tests and as an ephemeral driver.
func NewMemoryKV() KV {
	return &memoryKV{entries: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.entries[key]
	return val, ok, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

func (m *memoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
