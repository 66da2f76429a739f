// Package storagetest holds a conformance suite every storage.Store backend runs.
package storagetest

import (
	"context"
	"testing"

	"github.com/mark3labs/stepform/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises get/set/remove semantics against s. The store must start empty.
func Run(t *testing.T, s storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.Get(ctx, "stepform_missing")
		require.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "stepform_students-new", []byte(`{"a":1}`)))
		got, err := s.Get(ctx, "stepform_students-new")
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(got))
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, s.Set(ctx, "stepform_students-new", []byte(`{"a":2}`)))
		got, err := s.Get(ctx, "stepform_students-new")
		require.NoError(t, err)
		assert.Equal(t, `{"a":2}`, string(got))
	})

	t.Run("returned value is a copy", func(t *testing.T) {
		got, err := s.Get(ctx, "stepform_students-new")
		require.NoError(t, err)
		got[0] = 'X'
		again, err := s.Get(ctx, "stepform_students-new")
		require.NoError(t, err)
		assert.Equal(t, byte('{'), again[0])
	})

	t.Run("keys", func(t *testing.T) {
		if _, ok := s.(storage.Lister); !ok {
			t.Skip("store does not list keys")
		}
		require.NoError(t, s.Set(ctx, "stepform_packages-new", []byte("x")))
		keys, err := storage.Keys(ctx, s)
		require.NoError(t, err)
		assert.Equal(t, []string{"stepform_packages-new", "stepform_students-new"}, keys)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, "stepform_students-new"))
		_, err := s.Get(ctx, "stepform_students-new")
		require.ErrorIs(t, err, storage.ErrNotFound)
		_ = s.Remove(ctx, "stepform_packages-new")
	})

	t.Run("remove missing key", func(t *testing.T) {
		require.NoError(t, s.Remove(ctx, "stepform_never-written"))
	})
}
