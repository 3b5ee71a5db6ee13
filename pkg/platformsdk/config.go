package platformsdk

import (
	"strings"
	"time"
)

// DefaultValidationInterval is used by StartAutoValidation when the caller
// does not supply an interval.
const DefaultValidationInterval = 5 * time.Minute

// defaultCallbackPath is appended to the browser origin when no explicit
// callback URL is configured.
const defaultCallbackPath = "/auth/callback"

// OAuthClientConfig holds the per-provider OAuth settings. Only the client
// ID is needed; secrets live on the backend, which performs the actual code
// exchange with the identity provider.
type OAuthClientConfig struct {
	ClientID string
}

// OAuthConfig registers identity providers. A nil entry (or an empty client
// ID) means the provider is simply not available; it is not an error.
type OAuthConfig struct {
	Google  *OAuthClientConfig
	Apple   *OAuthClientConfig
	Discord *OAuthClientConfig
	Twitter *OAuthClientConfig
}

// AutoValidateConfig controls periodic background re-validation of the
// stored token.
type AutoValidateConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Config is the immutable SDK configuration. Validate it with New; fields
// must not be mutated after the SDK is constructed.
type Config struct {
	// APIBaseURL is the platform backend base URL. Required.
	APIBaseURL string

	// AppID optionally scopes this SDK instance to a specific application.
	AppID string

	// OAuth registers the available identity providers.
	OAuth OAuthConfig

	// CallbackURL overrides the redirect target for OAuth flows. When
	// empty, it is derived from the browser origin plus /auth/callback.
	CallbackURL string

	// AutoValidate enables periodic token re-validation.
	AutoValidate AutoValidateConfig
}

// validate normalises the config and reports construction-time errors.
func (c *Config) validate() error {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return &ConfigError{Field: "APIBaseURL", Reason: "is required"}
	}
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	if c.AutoValidate.Enabled && c.AutoValidate.Interval <= 0 {
		c.AutoValidate.Interval = DefaultValidationInterval
	}
	return nil
}

// clientID returns the configured client ID for a provider, if any.
func (c Config) clientID(tag ProviderTag) (string, bool) {
	var oc *OAuthClientConfig
	switch tag {
	case ProviderGoogle:
		oc = c.OAuth.Google
	case ProviderApple:
		oc = c.OAuth.Apple
	case ProviderDiscord:
		oc = c.OAuth.Discord
	case ProviderTwitter:
		oc = c.OAuth.Twitter
	}
	if oc == nil || oc.ClientID == "" {
		return "", false
	}
	return oc.ClientID, true
}

// resolveCallbackURL returns the explicit callback URL, or derives one from
// the browser origin. It fails when neither is available.
func (c Config) resolveCallbackURL(b Browser) (string, error) {
	if c.CallbackURL != "" {
		return c.CallbackURL, nil
	}
	if b == nil {
		return "", &ConfigError{Field: "CallbackURL", Reason: "not configured and no browser origin to derive it from"}
	}
	origin, err := b.Origin()
	if err != nil || origin == "" {
		return "", &ConfigError{Field: "CallbackURL", Reason: "not configured and the browser origin could not be determined"}
	}
	return strings.TrimRight(origin, "/") + defaultCallbackPath, nil
}
