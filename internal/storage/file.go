package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/spf13/afero"
)

const snapshotExt = ".snap"

// FileStore keeps one file per key in a directory.
// Writes land in a temp file first and are renamed into place, so a crash
// mid-write never leaves a truncated snapshot behind.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir on fs.
// Pass afero.NewOsFs() in production and afero.NewMemMapFs() in tests.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// Dir returns the directory snapshots are written to.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.dir, key+snapshotExt), nil
}

// Get reads the file for key.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// Set writes value for key, creating the directory if needed.
func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}

	logger.Debug("Snapshot written to %s (%d bytes)", path, len(value))
	return nil
}

// Remove deletes the file for key.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", path, err)
	}
	return nil
}

// Keys lists keys that have a snapshot file.
func (s *FileStore) Keys(ctx context.Context) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", s.dir, err)
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), snapshotExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(e.Name(), snapshotExt))
	}
	return keys, nil
}
