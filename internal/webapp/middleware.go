package webapp

import (
	"net/http"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/platformsdk"
	"github.com/glimmerworks/platform-sdk/pkg/slogx"
)

// requireToken gates a route on the token cookie. This is a coarse check:
// presence plus a local expiry peek for JWT-shaped tokens. Signatures are
// not verified here; the backend rejects forged tokens on first use.
func requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(platformsdk.TokenCookieName)
		if err != nil || cookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		if platformsdk.TokenExpired(cookie.Value, time.Now()) {
			slogx.FromContext(r.Context()).Info("expired token cookie, redirecting to login")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}
