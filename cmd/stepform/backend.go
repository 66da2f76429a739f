package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/stepform/internal/config"
	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/nats"
	"github.com/mark3labs/stepform/internal/storage"
	"github.com/spf13/afero"
)

// openStore opens the snapshot backend named by cfg.Storage. The returned
// close function must be called once the store is no longer used.
func openStore(ctx context.Context, fs afero.Fs, cfg *config.Config) (storage.Store, func() error, error) {
	switch cfg.Storage {
	case config.StorageFile:
		dir := cfg.SnapshotDir()
		logger.Debug("Using file snapshots in %s", dir)
		return storage.NewFileStore(fs, dir), func() error { return nil }, nil

	case config.StorageNATS:
		backend, err := nats.Open(ctx, cfg.NATSDir())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open NATS snapshot store: %w", err)
		}
		logger.Debug("Using NATS snapshots in %s", cfg.NATSDir())
		return backend, backend.Close, nil

	case config.StorageMemory:
		logger.Debug("Using in-memory snapshots, nothing survives this process")
		ms := storage.NewMemoryStore()
		return ms, ms.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
}
