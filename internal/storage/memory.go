package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store.
// Suitable for tests and for sessions that should not outlive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string][]byte
	closed bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

// Get returns a copy of the stored value.
func (ms *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, ErrClosed
	}

	value, ok := ms.items[key]
	if !ok {
		return nil, ErrNotFound
	}

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set stores a copy of value.
func (ms *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrClosed
	}

	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	ms.items[key] = valueCopy
	return nil
}

// Remove deletes key.
func (ms *MemoryStore) Remove(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if ms.closed {
		return ErrClosed
	}

	delete(ms.items, key)
	return nil
}

// Keys returns every stored key.
func (ms *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	if ms.closed {
		return nil, ErrClosed
	}

	keys := make([]string, 0, len(ms.items))
	for k := range ms.items {
		keys = append(keys, k)
	}
	return keys, nil
}

// Close makes every further call fail with ErrClosed.
func (ms *MemoryStore) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.closed = true
	ms.items = nil
	return nil
}
