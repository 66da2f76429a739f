// Package nats backs form snapshots with a JetStream key-value bucket served by
// an embedded, in-process NATS server.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/storage"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// BucketName is the KV bucket holding one entry per storage key.
	BucketName = "stepform_snapshots"

	// SnapshotTTL bounds how long an abandoned form survives.
	SnapshotTTL = 30 * 24 * time.Hour
)

// SetupBucket creates or updates the snapshot bucket.
// Only the latest revision of a key matters, so history is kept at one.
func SetupBucket(ctx context.Context, js jetstream.JetStream) (jetstream.KeyValue, error) {
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      BucketName,
		Description: "in-progress stepform snapshots",
		History:     1,
		TTL:         SnapshotTTL,
		Storage:     jetstream.FileStorage,
	})
}

// KVStore implements storage.Store over a JetStream key-value bucket.
type KVStore struct {
	kv jetstream.KeyValue
}

// NewKVStore wraps an existing bucket.
func NewKVStore(kv jetstream.KeyValue) *KVStore {
	return &KVStore{kv: kv}
}

// Get returns the latest value for key.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("kv get %s: %w", key, err)
	}
	if entry.Operation() != jetstream.KeyValuePut {
		return nil, storage.ErrNotFound
	}

	value := entry.Value()
	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

// Set stores value under key.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	rev, err := s.kv.Put(ctx, key, value)
	if err != nil {
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	logger.Debug("Snapshot %s stored at revision %d", key, rev)
	return nil
}

// Remove purges key so no delete marker lingers in the bucket.
func (s *KVStore) Remove(ctx context.Context, key string) error {
	if err := s.kv.Purge(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv purge %s: %w", key, err)
	}
	return nil
}

// Keys lists keys that currently hold a value.
func (s *KVStore) Keys(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("kv keys: %w", err)
	}
	return keys, nil
}

// Backend owns the embedded server, its connection and the snapshot store.
type Backend struct {
	*KVStore

	ns *server.Server
	nc *nats.Conn
}

// Open starts an embedded server under dataDir and prepares the bucket.
func Open(ctx context.Context, dataDir string) (*Backend, error) {
	ns, err := StartEmbeddedNATS(dataDir)
	if err != nil {
		return nil, fmt.Errorf("starting nats: %w", err)
	}

	nc, err := ConnectInProcess(ns)
	if err != nil {
		_ = Shutdown(nil, ns)
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	js, err := CreateJetStream(nc)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("creating jetstream: %w", err)
	}

	kv, err := SetupBucket(ctx, js)
	if err != nil {
		_ = Shutdown(nc, ns)
		return nil, fmt.Errorf("creating snapshot bucket: %w", err)
	}

	return &Backend{KVStore: NewKVStore(kv), ns: ns, nc: nc}, nil
}

// Close shuts the connection and server down.
func (b *Backend) Close() error {
	return Shutdown(b.nc, b.ns)
}
