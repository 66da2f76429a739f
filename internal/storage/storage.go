// Package storage defines the small key-value capability the form controller
// persists snapshots through, plus in-memory and file-backed implementations.
package storage

import (
	"context"
	"errors"
	"sort"
)

// Common store errors.
var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("store is closed")
)

// Store is a durable key-value medium with get/set/remove semantics.
// Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// Lister is implemented by stores that can enumerate their keys.
type Lister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Keys lists the keys of s in sorted order, or returns an error if s cannot list.
func Keys(ctx context.Context, s Store) ([]string, error) {
	l, ok := s.(Lister)
	if !ok {
		return nil, errors.New("store does not support listing keys")
	}
	keys, err := l.Keys(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
