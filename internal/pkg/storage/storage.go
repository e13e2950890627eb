// Package storage is the durable key/value layer behind the attendance
// store. Each key holds one serialized collection that is always read and
// written whole.
package storage

import (
	"context"
	"sync"
)

type Storage interface {
	// GetItem returns the value stored under key. ok is false when the key
	// has never been written.
	GetItem(ctx context.Context, key string) (value []byte, ok bool, err error)
	// SetItem replaces the value stored under key.
	SetItem(ctx context.Context, key string, value []byte) error
	Close() error
}

// Memory keeps items in process memory. It is used by tests and by the
// "memory" driver.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) GetItem(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}

	return append([]byte(nil), v...), true, nil
}

func (m *Memory) SetItem(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.items[key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Close() error { return nil }
