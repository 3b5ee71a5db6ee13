package webapp

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/platformsdk"
)

// requestBrowser adapts one HTTP exchange to the SDK's Browser surface: the
// request supplies the current URL and origin, the response writer carries
// redirects.
type requestBrowser struct {
	w http.ResponseWriter
	r *http.Request
}

func (b *requestBrowser) Origin() (string, error) {
	host := b.r.Host
	if host == "" {
		return "", fmt.Errorf("request carries no host")
	}
	scheme := "http"
	if b.r.TLS != nil || b.r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + host, nil
}

func (b *requestBrowser) CurrentURL() (*url.URL, error) {
	return b.r.URL, nil
}

func (b *requestBrowser) Navigate(rawURL string) error {
	http.Redirect(b.w, b.r, rawURL, http.StatusFound)
	return nil
}

// requestCookies adapts the SDK's CookieStore to the exchange's cookies:
// reads come from the request, writes go to the response.
type requestCookies struct {
	w http.ResponseWriter
	r *http.Request
}

func (c *requestCookies) SetToken(token string, expires time.Time) {
	http.SetCookie(c.w, &http.Cookie{
		Name:     platformsdk.TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c *requestCookies) Token() string {
	cookie, err := c.r.Cookie(platformsdk.TokenCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (c *requestCookies) ClearToken() {
	http.SetCookie(c.w, &http.Cookie{
		Name:     platformsdk.TokenCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		SameSite: http.SameSiteLaxMode,
	})
}
