package platformsdk

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("rejects missing base url", func(t *testing.T) {
		_, err := New(Config{})
		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("defaults are usable without options", func(t *testing.T) {
		sdk, err := New(Config{APIBaseURL: "https://api.example.com"})
		require.NoError(t, err)
		require.NotNil(t, sdk.Auth)
		require.NotNil(t, sdk.Subscription)
		require.False(t, sdk.Auth.IsAuthenticated())
	})
}

func TestDefaultUnauthorizedHandler(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /store/entitlements", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})
	sdk, _, _ := newTestSDK(t, mux)
	require.NoError(t, sdk.storage.SetCredentials("tok-stale", User{ID: "u1"}))

	var seen []AuthValidationResult
	sdk.OnAuthStateChange(func(r AuthValidationResult) { seen = append(seen, r) })

	_, err := sdk.Subscription.GetEntitlements(context.Background())
	require.True(t, IsUnauthorized(err))

	// The default handler logs out and re-validates, which short-circuits to
	// NoToken and reaches the listeners.
	require.False(t, sdk.Auth.IsAuthenticated())
	require.Len(t, seen, 1)
	require.Equal(t, ValidationErrNoToken, seen[0].Error)
}

func TestOnUnauthorizedReplaces(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /store/entitlements", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
	})
	sdk, _, _ := newTestSDK(t, mux)

	var custom int
	sdk.OnUnauthorized(func() { custom++ })

	var listenerCalls int
	sdk.OnAuthStateChange(func(AuthValidationResult) { listenerCalls++ })

	_, err := sdk.Subscription.GetEntitlements(context.Background())
	require.True(t, IsUnauthorized(err))

	// Only the replacement ran; the default logout-and-revalidate is gone.
	require.Equal(t, 1, custom)
	require.Zero(t, listenerCalls)
}

func TestValidateStatus(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/validate", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, AuthValidationResult{IsValid: true, User: &User{ID: "u1"}})
	})
	mux.HandleFunc("GET /subscription/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, SubscriptionStatus{IsActive: true})
	})
	sdk, _, _ := newTestSDK(t, mux)
	require.NoError(t, sdk.storage.SetCredentials("tok", User{ID: "u1"}))

	result, err := sdk.ValidateStatus(context.Background())
	require.NoError(t, err)
	require.True(t, result.Auth.IsValid)
	require.True(t, result.Subscription.IsActive)
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("closes a closable store", func(t *testing.T) {
		store := &closableStore{MemStore: NewMemStore()}
		sdk, err := New(Config{APIBaseURL: "https://api.example.com"}, WithLocalStore(store))
		require.NoError(t, err)

		require.NoError(t, sdk.Close())
		require.True(t, store.closed)
	})

	t.Run("no-op for plain stores", func(t *testing.T) {
		sdk, err := New(Config{APIBaseURL: "https://api.example.com"})
		require.NoError(t, err)
		require.NoError(t, sdk.Close())
	})
}

type closableStore struct {
	*MemStore
	closed bool
}

func (s *closableStore) Close() error {
	s.closed = true
	return nil
}
