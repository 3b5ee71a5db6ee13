package platformsdk

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStorage() (*Storage, *MemStore, *memCookieStore) {
	local := NewMemStore()
	cookies := &memCookieStore{}
	return newStorage(local, cookies, slog.New(slog.DiscardHandler)), local, cookies
}

func TestStorageToken(t *testing.T) {
	t.Parallel()

	t.Run("set mirrors to both surfaces", func(t *testing.T) {
		storage, local, cookies := newTestStorage()
		require.NoError(t, storage.SetToken("tok-123"))

		require.Equal(t, "tok-123", storage.Token())
		stored, err := local.Get(storageKeyToken)
		require.NoError(t, err)
		require.Equal(t, "tok-123", stored)
		require.Equal(t, "tok-123", cookies.Token())
	})

	t.Run("absent token reads empty", func(t *testing.T) {
		storage, _, _ := newTestStorage()
		require.Empty(t, storage.Token())
	})

	t.Run("read failure treated as absent", func(t *testing.T) {
		storage := newStorage(&failingStore{}, &memCookieStore{}, slog.New(slog.DiscardHandler))
		require.Empty(t, storage.Token())
	})
}

func TestStorageUser(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		storage, _, _ := newTestStorage()
		require.NoError(t, storage.SetUser(User{ID: "u1", Email: "u1@example.com", Name: "User One"}))

		user := storage.User()
		require.NotNil(t, user)
		require.Equal(t, "u1", user.ID)
		require.Equal(t, "u1@example.com", user.Email)
	})

	t.Run("corrupt record discarded", func(t *testing.T) {
		storage, local, _ := newTestStorage()
		require.NoError(t, local.Set(storageKeyUser, "{not json"))

		require.Nil(t, storage.User())
		raw, err := local.Get(storageKeyUser)
		require.NoError(t, err)
		require.Empty(t, raw)
	})
}

func TestStorageCredentials(t *testing.T) {
	t.Parallel()

	storage, _, cookies := newTestStorage()
	require.NoError(t, storage.SetCredentials("tok-abc", User{ID: "u2"}))

	require.Equal(t, "tok-abc", storage.Token())
	require.Equal(t, "tok-abc", cookies.Token())
	user := storage.User()
	require.NotNil(t, user)
	require.Equal(t, "u2", user.ID)
}

func TestStorageOAuthState(t *testing.T) {
	t.Parallel()

	storage, _, _ := newTestStorage()
	require.Empty(t, storage.OAuthState())

	storage.SetOAuthState("abc123")
	require.Equal(t, "abc123", storage.OAuthState())

	storage.ClearOAuthState()
	require.Empty(t, storage.OAuthState())
}

func TestStorageClear(t *testing.T) {
	t.Parallel()

	t.Run("removes everything", func(t *testing.T) {
		storage, _, cookies := newTestStorage()
		require.NoError(t, storage.SetCredentials("tok", User{ID: "u1"}))
		storage.SetOAuthState("state")

		storage.Clear()
		require.Empty(t, storage.Token())
		require.Empty(t, cookies.Token())
		require.Nil(t, storage.User())
		require.Empty(t, storage.OAuthState())
	})

	t.Run("idempotent on empty storage", func(t *testing.T) {
		storage, _, _ := newTestStorage()
		storage.Clear()
		storage.Clear()
		require.Empty(t, storage.Token())
	})

	t.Run("swallows durable surface failures", func(t *testing.T) {
		storage := newStorage(&failingStore{}, &memCookieStore{}, slog.New(slog.DiscardHandler))
		storage.Clear()
	})
}

func TestMemCookieStoreExpiry(t *testing.T) {
	t.Parallel()

	cookies := &memCookieStore{}
	cookies.SetToken("tok", time.Now().Add(-time.Minute))
	require.Empty(t, cookies.Token())

	cookies.SetToken("tok", time.Now().Add(time.Minute))
	require.Equal(t, "tok", cookies.Token())
}

// failingStore errors on every operation.
type failingStore struct{}

func (failingStore) Get(string) (string, error) { return "", errors.New("store unavailable") }
func (failingStore) Set(string, string) error   { return errors.New("store unavailable") }
func (failingStore) Delete(string) error        { return errors.New("store unavailable") }
