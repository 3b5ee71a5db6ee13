package webapp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/platformsdk"
	"github.com/stretchr/testify/require"
)

func testJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(map[string]any{"sub": "u1", "exp": exp.Unix()})
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.%s",
		base64.RawURLEncoding.EncodeToString(header),
		base64.RawURLEncoding.EncodeToString(payload),
		base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

func TestRequireToken(t *testing.T) {
	t.Parallel()

	var reached bool
	handler := requireToken(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	send := func(cookie *http.Cookie) *httptest.ResponseRecorder {
		reached = false
		r := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
		if cookie != nil {
			r.AddCookie(cookie)
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w
	}

	t.Run("no cookie redirects to login", func(t *testing.T) {
		w := send(nil)
		require.Equal(t, http.StatusFound, w.Code)
		require.Equal(t, "/login", w.Header().Get("Location"))
		require.False(t, reached)
	})

	t.Run("expired token redirects to login", func(t *testing.T) {
		w := send(&http.Cookie{
			Name:  platformsdk.TokenCookieName,
			Value: testJWT(t, time.Now().Add(-time.Hour)),
		})
		require.Equal(t, http.StatusFound, w.Code)
		require.False(t, reached)
	})

	t.Run("live token passes through", func(t *testing.T) {
		w := send(&http.Cookie{
			Name:  platformsdk.TokenCookieName,
			Value: testJWT(t, time.Now().Add(time.Hour)),
		})
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, reached)
	})

	t.Run("opaque token passes through", func(t *testing.T) {
		// Expiry of opaque tokens is the backend's call.
		w := send(&http.Cookie{Name: platformsdk.TokenCookieName, Value: "opaque-token"})
		require.Equal(t, http.StatusOK, w.Code)
		require.True(t, reached)
	})
}
