/*
Package platformsdk provides a client SDK for the Glimmerworks platform
backend. It covers OAuth login against third-party identity providers,
bearer-token lifecycle management, and subscription-entitlement checks.

# Overview

The package is organised around a single composition root:

	sdk, err := platformsdk.New(platformsdk.Config{
		APIBaseURL: "https://api.example.com",
		OAuth: platformsdk.OAuthConfig{
			Google: &platformsdk.OAuthClientConfig{ClientID: "..."},
		},
	}, platformsdk.WithBrowser(browser))

	// Begin a login flow (redirects the browser surface away).
	err = sdk.Auth.Login(platformsdk.ProviderGoogle)

	// On the callback route, complete the exchange.
	result, err := sdk.Auth.HandleCallback(ctx)

	// Later, check entitlements.
	ok, err := sdk.Subscription.CheckAccess(ctx, appID)

# Storage surfaces

Credentials are mirrored across two surfaces: a durable LocalStore (the
in-memory default, or the SQLite-backed store in the sqlitestore subpackage)
and a CookieStore whose token cookie is readable by server-side middleware.
Both surfaces are written and cleared together; a token present on one
surface but not the other is treated as a bug in this package.

# Browser surface

Login and callback handling need access to the hosting surface: the current
URL, the page origin, and the ability to perform a full navigation. Hosts
supply this via the Browser interface. Without one, Login and HandleCallback
fail with ErrNoBrowser, matching environments where no interactive surface
exists.

# Login state

The OAuth state parameter is transmitted as "<provider>.<randomHex>". The
random half is persisted in memory for the lifetime of the login attempt and
consumed on the first callback. When no persisted value exists at callback
time (already consumed, or the process handling the callback is not the one
that started the login) the comparison is skipped rather than failed. Hosts
that need strict single-process CSRF enforcement should gate the callback
route themselves.

# Change notification

AuthManager and SubscriptionManager both expose observer registration
returning an unsubscribe function. Listeners run synchronously in
registration order and are individually recovered, so one misbehaving
listener cannot starve the rest or the caller.
*/
package platformsdk
