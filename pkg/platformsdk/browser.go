package platformsdk

import "net/url"

// Browser is the interactive surface hosting the SDK. In a web application
// it is implemented per request over the response writer and request; tests
// supply fakes. Operations that redirect or read the current URL fail with
// ErrNoBrowser when no Browser was supplied.
type Browser interface {
	// Origin returns the scheme://host[:port] of the hosting surface,
	// used to derive the OAuth callback URL when none is configured.
	Origin() (string, error)

	// CurrentURL returns the URL of the in-flight request, including the
	// query string carrying the OAuth code and state.
	CurrentURL() (*url.URL, error)

	// Navigate performs a full navigation to rawURL. For HTTP hosts this
	// is a redirect response; the current execution does not resume until
	// the provider redirects back.
	Navigate(rawURL string) error
}
