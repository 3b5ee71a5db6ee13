package platformsdk

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

// Keys used in the durable local store.
const (
	storageKeyToken = "token"
	storageKeyUser  = "user"
)

// TokenCookieName is the cookie carrying the bearer token for server-side
// middleware. The cookie is set with path "/" and SameSite=Lax.
const TokenCookieName = "token"

// TokenCookieTTL is the token cookie lifetime.
const TokenCookieTTL = 7 * 24 * time.Hour

// LocalStore is the durable client-local surface. Get returns an empty
// string (and no error) for missing keys; stored values are never empty.
type LocalStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// CookieStore is the request-cookie surface, readable by server-side
// middleware for coarse route gating.
type CookieStore interface {
	SetToken(token string, expires time.Time)
	Token() string
	ClearToken()
}

// MemStore is an in-memory LocalStore. It is the default when no durable
// store is supplied and doubles as a test double.
type MemStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string]string)}
}

func (m *MemStore) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key], nil
}

func (m *MemStore) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// memCookieStore keeps the cookie surface in memory for hosts without a real
// cookie jar (CLIs, tests).
type memCookieStore struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

func (m *memCookieStore) SetToken(token string, expires time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.expires = expires
}

func (m *memCookieStore) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.expires.IsZero() && time.Now().After(m.expires) {
		return ""
	}
	return m.token
}

func (m *memCookieStore) ClearToken() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expires = time.Time{}
}

// Storage is the single logical credential sink. The token is mirrored to
// the durable local store and the cookie surface; both move together. The
// short-lived OAuth state is session-scoped and held in memory only.
type Storage struct {
	mu      sync.Mutex
	local   LocalStore
	cookies CookieStore
	state   string
	logger  *slog.Logger
}

func newStorage(local LocalStore, cookies CookieStore, logger *slog.Logger) *Storage {
	return &Storage{local: local, cookies: cookies, logger: logger}
}

// SetToken writes the token to both surfaces from one call path.
func (s *Storage) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setTokenLocked(token)
}

func (s *Storage) setTokenLocked(token string) error {
	if err := s.local.Set(storageKeyToken, token); err != nil {
		return err
	}
	s.cookies.SetToken(token, time.Now().Add(TokenCookieTTL))
	return nil
}

// Token returns the stored token, or an empty string when absent. Read
// failures on the durable surface are logged and treated as absent.
func (s *Storage) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.local.Get(storageKeyToken)
	if err != nil {
		s.logger.Warn("local store read failed", "key", storageKeyToken, "error", err)
		return ""
	}
	return token
}

// SetUser persists the user profile to the durable store.
func (s *Storage) SetUser(user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setUserLocked(user)
}

func (s *Storage) setUserLocked(user User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.local.Set(storageKeyUser, string(raw))
}

// User returns the stored user, or nil when absent. A corrupt record is
// removed and treated as absent.
func (s *Storage) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := s.local.Get(storageKeyUser)
	if err != nil {
		s.logger.Warn("local store read failed", "key", storageKeyUser, "error", err)
		return nil
	}
	if raw == "" {
		return nil
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Warn("stored user is corrupt, discarding", "error", err)
		_ = s.local.Delete(storageKeyUser)
		return nil
	}
	return &user
}

// SetCredentials persists token and user together under one lock, so a
// successful exchange never leaves the two halves out of step.
func (s *Storage) SetCredentials(token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.setTokenLocked(token); err != nil {
		return err
	}
	return s.setUserLocked(user)
}

// SetOAuthState stores the random half of the login state for later
// comparison. Lifetime is one login attempt.
func (s *Storage) SetOAuthState(state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// OAuthState returns the persisted state value, if any.
func (s *Storage) OAuthState() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ClearOAuthState consumes the state value.
func (s *Storage) ClearOAuthState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = ""
}

// Clear removes token (both surfaces), user, and OAuth state. It is
// best-effort and idempotent: failures on the durable surface are logged,
// never returned, so logout cannot fail.
func (s *Storage) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.local.Delete(storageKeyToken); err != nil {
		s.logger.Warn("local store delete failed", "key", storageKeyToken, "error", err)
	}
	s.cookies.ClearToken()
	if err := s.local.Delete(storageKeyUser); err != nil {
		s.logger.Warn("local store delete failed", "key", storageKeyUser, "error", err)
	}
	s.state = ""
}
