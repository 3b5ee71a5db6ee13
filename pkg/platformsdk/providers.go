package platformsdk

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Provider is the closed capability interface over the supported identity
// providers: produce an authorization URL for this provider. The set is
// fixed; new providers are added here, not by open subclassing.
type Provider interface {
	Tag() ProviderTag
	AuthorizationURL() (string, error)
}

// Provider authorization endpoints.
const (
	googleAuthEndpoint  = "https://accounts.google.com/o/oauth2/v2/auth"
	appleAuthEndpoint   = "https://appleid.apple.com/auth/authorize"
	discordAuthEndpoint = "https://discord.com/api/oauth2/authorize"
	twitterAuthEndpoint = "https://twitter.com/i/oauth2/authorize"
)

// stateNonceBytes is the entropy of the random half of the state parameter,
// transmitted as "<tag>.<randomHex>".
const stateNonceBytes = 16

// oauthProvider composes the provider-specific authorization URL. One
// instance exists per configured provider; providers without a client ID are
// never constructed, so a missing client ID surfaces at registry build time,
// not per call.
type oauthProvider struct {
	tag      ProviderTag
	endpoint string
	scopes   []string
	// extra carries provider quirks appended verbatim to the request.
	extra    map[string]string
	clientID string
	callback func() (string, error)
}

func (p *oauthProvider) Tag() ProviderTag { return p.tag }

func (p *oauthProvider) AuthorizationURL() (string, error) {
	redirectURI, err := p.callback()
	if err != nil {
		return "", err
	}

	nonce, err := newStateNonce()
	if err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client_id", p.clientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(p.scopes, " "))
	params.Set("state", string(p.tag)+"."+nonce)
	for key, value := range p.extra {
		params.Set(key, value)
	}

	return p.endpoint + "?" + params.Encode(), nil
}

// newStateNonce returns a hex-encoded random value for CSRF protection.
func newStateNonce() (string, error) {
	buf := make([]byte, stateNonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate state nonce: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// newProviderRegistry builds the provider set once from validated
// configuration. Providers whose client ID is absent are simply not
// registered.
func newProviderRegistry(cfg Config, browser Browser) map[ProviderTag]Provider {
	callback := func() (string, error) { return cfg.resolveCallbackURL(browser) }

	specs := []struct {
		tag      ProviderTag
		endpoint string
		scopes   []string
		extra    map[string]string
	}{
		{
			tag:      ProviderGoogle,
			endpoint: googleAuthEndpoint,
			scopes:   []string{"openid", "email", "profile"},
			extra:    map[string]string{"access_type": "offline", "prompt": "consent"},
		},
		{
			tag:      ProviderApple,
			endpoint: appleAuthEndpoint,
			scopes:   []string{"name", "email"},
			extra:    map[string]string{"response_mode": "form_post"},
		},
		{
			tag:      ProviderDiscord,
			endpoint: discordAuthEndpoint,
			scopes:   []string{"identify", "email"},
		},
		{
			// Twitter requires a PKCE parameter pair even for this
			// backend-exchanged flow. The fixed plain-text challenge is a
			// compatibility quirk of that provider's contract, reproduced
			// verbatim; it is not a PKCE implementation.
			tag:      ProviderTwitter,
			endpoint: twitterAuthEndpoint,
			scopes:   []string{"tweet.read", "users.read"},
			extra:    map[string]string{"code_challenge": "challenge", "code_challenge_method": "plain"},
		},
	}

	registry := make(map[ProviderTag]Provider, len(specs))
	for _, spec := range specs {
		clientID, ok := cfg.clientID(spec.tag)
		if !ok {
			continue
		}
		registry[spec.tag] = &oauthProvider{
			tag:      spec.tag,
			endpoint: spec.endpoint,
			scopes:   spec.scopes,
			extra:    spec.extra,
			clientID: clientID,
			callback: callback,
		}
	}
	return registry
}
