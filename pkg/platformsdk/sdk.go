package platformsdk

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
)

// SDK is the composition root wiring config, storage, transport, and the two
// managers. Construct it with New.
type SDK struct {
	Config       Config
	Auth         *AuthManager
	Subscription *SubscriptionManager

	storage *Storage
	api     *APIClient
	logger  *slog.Logger
}

type options struct {
	browser    Browser
	local      LocalStore
	cookies    CookieStore
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customises SDK construction.
type Option func(*options)

// WithBrowser supplies the interactive surface used for login redirects and
// callback parsing.
func WithBrowser(b Browser) Option {
	return func(o *options) { o.browser = b }
}

// WithLocalStore replaces the in-memory durable store, e.g. with the
// SQLite-backed store from the sqlitestore subpackage.
func WithLocalStore(s LocalStore) Option {
	return func(o *options) { o.local = s }
}

// WithCookieStore replaces the in-memory cookie surface, e.g. with a
// per-request adapter over http.ResponseWriter.
func WithCookieStore(s CookieStore) Option {
	return func(o *options) { o.cookies = s }
}

// WithHTTPClient replaces the default transport (30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger attaches a logger; without one the SDK is silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New validates the configuration and wires the SDK. The default
// unauthorized handler logs the user out and runs a validation pass so
// auth-state listeners converge on the logged-out state.
func New(cfg Config, opts ...Option) (*SDK, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.local == nil {
		o.local = NewMemStore()
	}
	if o.cookies == nil {
		o.cookies = &memCookieStore{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	storage := newStorage(o.local, o.cookies, o.logger)
	api := newAPIClient(cfg, storage, o.httpClient, o.logger)

	sdk := &SDK{
		Config:  cfg,
		storage: storage,
		api:     api,
		logger:  o.logger,
	}
	sdk.Auth = newAuthManager(cfg, storage, api, o.browser, o.logger)
	sdk.Subscription = newSubscriptionManager(storage, api, o.logger)

	api.SetUnauthorizedHandler(func() {
		sdk.Auth.Logout()
		// Storage is already empty, so this short-circuits to NoToken
		// without a network call and fans out to listeners.
		sdk.Auth.ValidateAuth(context.Background())
	})

	if cfg.AutoValidate.Enabled {
		sdk.Auth.StartAutoValidation(cfg.AutoValidate.Interval)
	}

	return sdk, nil
}

// OnUnauthorized replaces the handler invoked on 401 responses. The handler
// is replaced, not stacked; the default logout-and-revalidate behaviour is
// discarded.
func (s *SDK) OnUnauthorized(fn func()) {
	s.api.SetUnauthorizedHandler(fn)
}

// OnAuthStateChange proxies to AuthManager.OnAuthStateChange.
func (s *SDK) OnAuthStateChange(fn AuthStateListener) func() {
	return s.Auth.OnAuthStateChange(fn)
}

// OnSubscriptionChange proxies to SubscriptionManager.OnSubscriptionChange.
func (s *SDK) OnSubscriptionChange(fn SubscriptionListener) func() {
	return s.Subscription.OnSubscriptionChange(fn)
}

// StatusResult is the combined outcome of ValidateStatus.
type StatusResult struct {
	Auth         AuthValidationResult
	Subscription SubscriptionStatus
}

// ValidateStatus runs auth validation and subscription validation
// concurrently and returns both results. Only the subscription side can
// error; auth validation always resolves to a result.
func (s *SDK) ValidateStatus(ctx context.Context) (StatusResult, error) {
	var (
		wg     sync.WaitGroup
		result StatusResult
		subErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Auth = s.Auth.ValidateAuth(ctx)
	}()
	go func() {
		defer wg.Done()
		result.Subscription, subErr = s.Subscription.ValidateSubscription(ctx)
	}()
	wg.Wait()

	return result, subErr
}

// Close stops background validation and releases the durable store when it
// owns closable resources.
func (s *SDK) Close() error {
	s.Auth.StopAutoValidation()
	if closer, ok := s.storage.local.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
