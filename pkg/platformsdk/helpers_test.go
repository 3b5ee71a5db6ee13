package platformsdk

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeBrowser scripts the interactive surface: a fixed origin, a settable
// current URL, and a record of every navigation.
type fakeBrowser struct {
	mu          sync.Mutex
	origin      string
	current     *url.URL
	navigations []string
}

func newFakeBrowser(origin string) *fakeBrowser {
	return &fakeBrowser{origin: origin}
}

func (b *fakeBrowser) Origin() (string, error) {
	return b.origin, nil
}

func (b *fakeBrowser) CurrentURL() (*url.URL, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return &url.URL{}, nil
	}
	return b.current, nil
}

func (b *fakeBrowser) Navigate(rawURL string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.navigations = append(b.navigations, rawURL)
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	b.current = u
	return nil
}

func (b *fakeBrowser) lastNavigation(t *testing.T) *url.URL {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.navigations)
	u, err := url.Parse(b.navigations[len(b.navigations)-1])
	require.NoError(t, err)
	return u
}

// setCurrent points the browser at a URL, as if the provider had redirected
// back to it.
func (b *fakeBrowser) setCurrent(t *testing.T, rawURL string) {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	b.mu.Lock()
	b.current = u
	b.mu.Unlock()
}

// countingTransport counts round trips so tests can assert that an operation
// made no network calls.
type countingTransport struct {
	base http.RoundTripper

	mu    sync.Mutex
	calls int
}

func (t *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls++
	t.mu.Unlock()
	return t.base.RoundTrip(req)
}

func (t *countingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// newTestSDK wires an SDK against a fake backend with all defaults in-memory.
func newTestSDK(t *testing.T, backend http.Handler, opts ...Option) (*SDK, *fakeBrowser, *countingTransport) {
	t.Helper()

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	browser := newFakeBrowser("https://app.example.com")
	transport := &countingTransport{base: http.DefaultTransport}

	opts = append([]Option{
		WithBrowser(browser),
		WithHTTPClient(&http.Client{Transport: transport}),
	}, opts...)

	sdk, err := New(Config{
		APIBaseURL: srv.URL,
		OAuth: OAuthConfig{
			Google:  &OAuthClientConfig{ClientID: "google-client"},
			Discord: &OAuthClientConfig{ClientID: "discord-client"},
		},
	}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sdk.Close() })

	return sdk, browser, transport
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// unsignedJWT builds a JWT-shaped token with a junk signature, enough for
// unverified claim peeking.
func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.%s",
		base64.RawURLEncoding.EncodeToString(header),
		base64.RawURLEncoding.EncodeToString(payload),
		base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func timePtr(t time.Time) *time.Time { return &t }
