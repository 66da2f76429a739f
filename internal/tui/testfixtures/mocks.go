// Package testfixtures provides fixtures, mocks and render helpers for TUI tests.
//
// MockStore is a storage.Store with failure injection and call counters:
//
//	store := testfixtures.NewMockStore()
//	store.SetError = errors.New("disk full")
//	// run the form...
//	require.Equal(t, 1, store.Calls().Set)
package testfixtures

import (
	"context"
	"sync"

	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/storage"
)

// StoreCalls counts MockStore operations.
type StoreCalls struct {
	Get    int
	Set    int
	Remove int
}

// MockStore is an in-memory storage.Store for testing. It is safe for use
// from the controller's persistence goroutines.
type MockStore struct {
	mu    sync.Mutex
	items map[string][]byte
	calls StoreCalls

	// Errors returned by the matching operation when set
	GetError    error
	SetError    error
	RemoveError error
}

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{items: make(map[string][]byte)}
}

// Seed stores snap under key using the JSON codec.
func (m *MockStore) Seed(key string, snap stepform.Snapshot) error {
	b, err := stepform.JSONCodec{}.Encode(snap)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = b
	return nil
}

// Get returns the value for key.
func (m *MockStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Get++
	if m.GetError != nil {
		return nil, m.GetError
	}
	b, ok := m.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

// Set stores value under key.
func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Set++
	if m.SetError != nil {
		return m.SetError
	}
	m.items[key] = append([]byte(nil), value...)
	return nil
}

// Remove deletes key.
func (m *MockStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Remove++
	if m.RemoveError != nil {
		return m.RemoveError
	}
	delete(m.items, key)
	return nil
}

// Has reports whether key holds a value.
func (m *MockStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

// Calls returns the operation counters.
func (m *MockStore) Calls() StoreCalls {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
