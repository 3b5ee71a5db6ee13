package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "sdk.db")
	store, err := New(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.ApplyMigrations())
	return store
}

func TestStore(t *testing.T) {
	t.Parallel()

	t.Run("missing key reads empty without error", func(t *testing.T) {
		store := newTestStore(t)
		value, err := store.Get("token")
		require.NoError(t, err)
		require.Empty(t, value)
	})

	t.Run("set and get", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set("token", "tok-123"))

		value, err := store.Get("token")
		require.NoError(t, err)
		require.Equal(t, "tok-123", value)
	})

	t.Run("set overwrites", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set("token", "tok-old"))
		require.NoError(t, store.Set("token", "tok-new"))

		value, err := store.Get("token")
		require.NoError(t, err)
		require.Equal(t, "tok-new", value)
	})

	t.Run("delete", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set("user", `{"id":"u1"}`))
		require.NoError(t, store.Delete("user"))

		value, err := store.Get("user")
		require.NoError(t, err)
		require.Empty(t, value)

		// Deleting again is not an error.
		require.NoError(t, store.Delete("user"))
	})

	t.Run("keys are independent", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set("token", "tok"))
		require.NoError(t, store.Set("user", `{"id":"u1"}`))
		require.NoError(t, store.Delete("token"))

		value, err := store.Get("user")
		require.NoError(t, err)
		require.Equal(t, `{"id":"u1"}`, value)
	})

	t.Run("migrations are idempotent", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.ApplyMigrations())
	})

	t.Run("ping", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Ping(context.Background()))
	})
}
