package platformsdk

import (
	"errors"
	"fmt"
)

var (
	// ErrNoBrowser is returned when an operation needs an interactive
	// surface (redirects, current URL) and none was supplied.
	ErrNoBrowser = errors.New("platformsdk: no browser surface available")

	// ErrNotAuthenticated is returned when an operation requires a stored
	// user and none exists.
	ErrNotAuthenticated = errors.New("platformsdk: not authenticated")

	// ErrProviderNotConfigured is returned by Login when the requested
	// provider was never registered (no client ID in the configuration).
	ErrProviderNotConfigured = errors.New("platformsdk: oauth provider not configured")
)

// ConfigError reports invalid or missing configuration. It is raised at
// construction time and is never retried.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("platformsdk: config %s: %s", e.Field, e.Reason)
}

// CallbackFailure classifies why an OAuth callback was rejected.
type CallbackFailure string

const (
	CallbackMissingCode     CallbackFailure = "missing_code"
	CallbackMissingState    CallbackFailure = "missing_state"
	CallbackMissingProvider CallbackFailure = "missing_provider"
	CallbackStateMismatch   CallbackFailure = "state_mismatch"
)

// CallbackError is surfaced to the caller when HandleCallback rejects the
// redirect-back request. There is no automatic retry; the user must restart
// the login flow.
type CallbackError struct {
	Reason  CallbackFailure
	Message string
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("platformsdk: callback rejected (%s): %s", e.Reason, e.Message)
}

// APIError is a non-2xx response from the platform backend, parsed from the
// response body where possible.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("platformsdk: api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("platformsdk: api error %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an APIError with a 401 status.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
