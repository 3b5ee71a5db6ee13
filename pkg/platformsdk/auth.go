package platformsdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/idx"
)

// AuthManager orchestrates the OAuth login flow, token lifecycle, and
// auth-state change notification.
type AuthManager struct {
	cfg       Config
	storage   *Storage
	api       *APIClient
	browser   Browser
	providers map[ProviderTag]Provider
	logger    *slog.Logger

	mu        sync.Mutex
	listeners []authListener
	stop      chan struct{}
}

// authListener preserves registration order; the handle is used only for
// unsubscription.
type authListener struct {
	id idx.ID
	fn AuthStateListener
}

func newAuthManager(cfg Config, storage *Storage, api *APIClient, browser Browser, logger *slog.Logger) *AuthManager {
	return &AuthManager{
		cfg:       cfg,
		storage:   storage,
		api:       api,
		browser:   browser,
		providers: newProviderRegistry(cfg, browser),
		logger:    logger,
	}
}

// Providers returns the tags of the providers registered from configuration.
func (m *AuthManager) Providers() []ProviderTag {
	tags := make([]ProviderTag, 0, len(m.providers))
	for _, tag := range []ProviderTag{ProviderGoogle, ProviderApple, ProviderDiscord, ProviderTwitter} {
		if _, ok := m.providers[tag]; ok {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Login begins the OAuth flow for a provider: it persists the random half of
// the state value and performs a full navigation to the authorization URL.
// The current execution terminates there; flow resumes in HandleCallback
// after the provider redirects back.
func (m *AuthManager) Login(provider ProviderTag) error {
	p, ok := m.providers[provider]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	if m.browser == nil {
		return ErrNoBrowser
	}

	authURL, err := p.AuthorizationURL()
	if err != nil {
		return err
	}

	// The provider encodes "<tag>.<random>" into the state parameter; only
	// the random half is kept for the callback comparison.
	if state := stateParam(authURL); state != "" {
		if _, random, found := strings.Cut(state, "."); found && random != "" {
			m.storage.SetOAuthState(random)
		}
	}

	return m.browser.Navigate(authURL)
}

// stateParam extracts the state query parameter from an authorization URL.
func stateParam(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("state")
}

// HandleCallback completes the login flow on the callback route. It parses
// code and compound state from the current URL, verifies the state against
// the persisted value, consumes the state, and exchanges the code with the
// backend. The full result is returned even when the exchange reports
// failure; callers must check AuthResult.Success.
func (m *AuthManager) HandleCallback(ctx context.Context) (*AuthResult, error) {
	if m.browser == nil {
		return nil, ErrNoBrowser
	}
	current, err := m.browser.CurrentURL()
	if err != nil {
		return nil, fmt.Errorf("failed to read callback URL: %w", err)
	}
	query := current.Query()

	code := query.Get("code")
	if code == "" {
		return nil, &CallbackError{Reason: CallbackMissingCode, Message: "authorization code not found in callback URL"}
	}
	compound := query.Get("state")
	if compound == "" {
		return nil, &CallbackError{Reason: CallbackMissingState, Message: "state parameter not found in callback URL"}
	}

	provider, random, _ := strings.Cut(compound, ".")
	if provider == "" {
		return nil, &CallbackError{Reason: CallbackMissingProvider, Message: "provider not found in state parameter"}
	}

	// CSRF check. When no value was persisted (already consumed, or a
	// second concurrent callback) the comparison is skipped rather than
	// failed; see the package documentation for this known gap.
	saved := m.storage.OAuthState()
	if random != "" && saved != "" && random != saved {
		return nil, &CallbackError{Reason: CallbackStateMismatch, Message: "invalid state parameter - possible CSRF attack"}
	}

	// Single use: the state is consumed before the network exchange.
	m.storage.ClearOAuthState()

	var result AuthResult
	if err := m.api.Post(ctx, "/auth/"+provider+"/callback", map[string]string{"code": code}, &result); err != nil {
		return nil, err
	}

	if result.Success {
		if err := m.storage.SetCredentials(result.Token, result.User); err != nil {
			return nil, fmt.Errorf("failed to persist credentials: %w", err)
		}
	}
	return &result, nil
}

// IsAuthenticated reports whether a token is stored locally. No network
// call is made; use ValidateAuth to check the token against the backend.
func (m *AuthManager) IsAuthenticated() bool {
	return m.storage.Token() != ""
}

// CurrentUser returns the locally stored user profile, if any.
func (m *AuthManager) CurrentUser() *User {
	return m.storage.User()
}

// Token returns the stored bearer token, or an empty string.
func (m *AuthManager) Token() string {
	return m.storage.Token()
}

// Logout clears token, user, and OAuth state. It never fails and is
// idempotent.
func (m *AuthManager) Logout() {
	m.storage.Clear()
}

// ValidateAuth checks the stored token against the backend. It always
// returns a result, never an error: transport failures fold into an invalid
// result tagged ValidationFailed and clear local state (fail-closed). Every
// call fans out to all registered listeners exactly once.
func (m *AuthManager) ValidateAuth(ctx context.Context) AuthValidationResult {
	if m.storage.Token() == "" {
		result := AuthValidationResult{
			IsValid: false,
			Error:   ValidationErrNoToken,
			Message: "no authentication token found",
		}
		m.notify(result)
		return result
	}

	var result AuthValidationResult
	if err := m.api.Get(ctx, "/auth/validate", &result); err != nil {
		m.logger.Warn("auth validation request failed", "error", err)
		result = AuthValidationResult{
			IsValid: false,
			Error:   ValidationErrFailed,
			Message: err.Error(),
		}
		m.storage.Clear()
		m.notify(result)
		return result
	}

	if result.IsValid && result.User != nil {
		if err := m.storage.SetUser(*result.User); err != nil {
			m.logger.Warn("failed to refresh stored user", "error", err)
		}
	} else {
		m.storage.Clear()
	}

	m.notify(result)
	return result
}

// RefreshToken posts to the refresh endpoint. On success only the stored
// token is overwritten; the user is untouched. Failures propagate to the
// caller without mutating state.
func (m *AuthManager) RefreshToken(ctx context.Context) error {
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := m.api.Post(ctx, "/auth/refresh", nil, &resp); err != nil {
		m.logger.Warn("token refresh failed", "error", err)
		return err
	}
	if resp.Success && resp.Token != "" {
		return m.storage.SetToken(resp.Token)
	}
	return nil
}

// OnAuthStateChange registers a listener for validation results and returns
// its unsubscribe function. Listeners run synchronously in registration
// order.
func (m *AuthManager) OnAuthStateChange(fn AuthStateListener) func() {
	id := idx.New()
	m.mu.Lock()
	m.listeners = append(m.listeners, authListener{id: id, fn: fn})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// StartAutoValidation starts periodic re-validation. An immediate validation
// fires before the first interval elapses. Calling it again replaces the
// running timer rather than adding a second one.
func (m *AuthManager) StartAutoValidation(interval time.Duration) {
	if interval <= 0 {
		interval = DefaultValidationInterval
	}

	m.mu.Lock()
	if m.stop != nil {
		close(m.stop)
	}
	stop := make(chan struct{})
	m.stop = stop
	m.mu.Unlock()

	go func() {
		m.ValidateAuth(context.Background())

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				m.ValidateAuth(context.Background())
			}
		}
	}()
}

// StopAutoValidation stops the periodic re-validation timer, if running.
func (m *AuthManager) StopAutoValidation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stop != nil {
		close(m.stop)
		m.stop = nil
	}
}

// notify fans out synchronously, in registration order, isolating each
// listener so one panic cannot suppress the rest or reach the caller.
func (m *AuthManager) notify(result AuthValidationResult) {
	m.mu.Lock()
	listeners := make([]authListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("auth state listener panicked", "panic", r)
				}
			}()
			l.fn(result)
		}()
	}
}
