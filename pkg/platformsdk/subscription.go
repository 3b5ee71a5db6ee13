package platformsdk

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/idx"
)

// SubscriptionManager fetches plans and entitlements, evaluates access,
// builds checkout sessions, and notifies on subscription changes. The server
// is authoritative for entitlements; this manager only caches the latest
// status snapshot.
type SubscriptionManager struct {
	storage *Storage
	api     *APIClient
	logger  *slog.Logger

	mu        sync.Mutex
	listeners []subscriptionListener
	cached    *SubscriptionStatus
}

type subscriptionListener struct {
	id idx.ID
	fn SubscriptionListener
}

func newSubscriptionManager(storage *Storage, api *APIClient, logger *slog.Logger) *SubscriptionManager {
	return &SubscriptionManager{storage: storage, api: api, logger: logger}
}

// IsEntitlementValid reports whether an entitlement currently grants access:
// PERMANENT grants always do, SUBSCRIPTION grants only until their expiry. A
// non-permanent entitlement without an expiry is invalid.
func IsEntitlementValid(e Entitlement) bool {
	if e.EntitlementType == EntitlementPermanent {
		return true
	}
	if e.ExpireTime == nil {
		return false
	}
	return e.ExpireTime.After(time.Now())
}

// entitlementReferencesApp checks the three linkage shapes the backend may
// populate for a SPECIFIC_APP entitlement, depending on its query path.
func entitlementReferencesApp(e Entitlement, appID string) bool {
	if e.AppID == appID {
		return true
	}
	if e.Application != nil && e.Application.ID == appID {
		return true
	}
	for _, link := range e.Apps {
		if link.App.ID == appID {
			return true
		}
	}
	return false
}

// GetEntitlements returns the authoritative entitlement set from the
// backend, unfiltered.
func (m *SubscriptionManager) GetEntitlements(ctx context.Context) ([]Entitlement, error) {
	var entitlements []Entitlement
	if err := m.api.Get(ctx, "/store/entitlements", &entitlements); err != nil {
		return nil, err
	}
	return entitlements, nil
}

// GetEntitlementsForApp filters the entitlement set client-side: GLOBAL
// grants are always included, SPECIFIC_APP grants when they reference appID
// through any linkage shape. An empty appID returns the unfiltered set.
func (m *SubscriptionManager) GetEntitlementsForApp(ctx context.Context, appID string) ([]Entitlement, error) {
	entitlements, err := m.GetEntitlements(ctx)
	if err != nil {
		return nil, err
	}
	if appID == "" {
		return entitlements, nil
	}

	filtered := make([]Entitlement, 0, len(entitlements))
	for _, e := range entitlements {
		switch e.ScopeType {
		case ScopeGlobal:
			filtered = append(filtered, e)
		case ScopeSpecificApp:
			if entitlementReferencesApp(e, appID) {
				filtered = append(filtered, e)
			}
		}
	}
	return filtered, nil
}

// CheckAccess reports whether the user may access appID. With an empty
// appID it only checks that the entitlement set is non-empty, a shallow
// presence check rather than a validity guarantee. With an appID it requires a
// valid GLOBAL entitlement or a valid SPECIFIC_APP entitlement referencing
// the app.
func (m *SubscriptionManager) CheckAccess(ctx context.Context, appID string) (bool, error) {
	entitlements, err := m.GetEntitlements(ctx)
	if err != nil {
		return false, err
	}

	if appID == "" {
		return len(entitlements) > 0, nil
	}

	for _, e := range entitlements {
		if e.ScopeType == ScopeGlobal && IsEntitlementValid(e) {
			return true, nil
		}
	}
	for _, e := range entitlements {
		if e.ScopeType != ScopeSpecificApp {
			continue
		}
		if !IsEntitlementValid(e) {
			continue
		}
		if entitlementReferencesApp(e, appID) {
			return true, nil
		}
	}
	return false, nil
}

// GetPlans returns pricing plans: the global catalog when appID is empty, or
// the plans of a specific app.
func (m *SubscriptionManager) GetPlans(ctx context.Context, appID string) ([]Plan, error) {
	if appID != "" {
		detail, err := m.GetAppDetail(ctx, appID)
		if err != nil {
			return nil, err
		}
		return detail.Plans, nil
	}
	var plans []Plan
	if err := m.api.Get(ctx, "/store/plans", &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// GetApps lists all available applications.
func (m *SubscriptionManager) GetApps(ctx context.Context) ([]App, error) {
	var apps []App
	if err := m.api.Get(ctx, "/store/apps", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// GetAppDetail returns a single app with its pricing plans.
func (m *SubscriptionManager) GetAppDetail(ctx context.Context, appID string) (*AppDetail, error) {
	var detail AppDetail
	if err := m.api.Get(ctx, "/store/apps/"+appID, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ValidateSubscription refreshes the cached status from the backend. Without
// a stored user it returns an empty, inactive status and makes no network
// call. Transport errors propagate to the caller.
func (m *SubscriptionManager) ValidateSubscription(ctx context.Context) (SubscriptionStatus, error) {
	if m.storage.User() == nil {
		empty := SubscriptionStatus{
			AccessibleAppIDs: []string{},
			Entitlements:     []Entitlement{},
			Timestamp:        time.Now().UTC().Format(time.RFC3339),
		}
		m.updateCached(empty)
		return empty, nil
	}

	var status SubscriptionStatus
	if err := m.api.Get(ctx, "/subscription/status", &status); err != nil {
		m.logger.Warn("subscription validation failed", "error", err)
		return SubscriptionStatus{}, err
	}
	m.updateCached(status)
	return status, nil
}

// ShouldBlockAccess is a pure function of the last cached status; it never
// touches the network. With no cache yet it blocks (fail-closed).
func (m *SubscriptionManager) ShouldBlockAccess(appID string) bool {
	m.mu.Lock()
	cached := m.cached
	m.mu.Unlock()

	if cached == nil {
		return true
	}
	if cached.HasGlobalAccess && cached.IsActive {
		return false
	}
	if appID != "" {
		for _, id := range cached.AccessibleAppIDs {
			if id == appID {
				return false
			}
		}
	}
	return !cached.IsActive
}

// CreateCheckout builds a payment checkout session for the stored user and
// returns the provider-hosted URL for a full-page redirect. The caller must
// be authenticated.
func (m *SubscriptionManager) CreateCheckout(ctx context.Context, params CheckoutParams) (string, error) {
	user := m.storage.User()
	if user == nil {
		return "", fmt.Errorf("%w: checkout requires a signed-in user", ErrNotAuthenticated)
	}

	body := map[string]any{
		"userId":        user.ID,
		"pricingPlanId": params.PlanID,
		"successUrl":    params.SuccessURL,
		"cancelUrl":     params.CancelURL,
	}
	var session CheckoutSession
	if err := m.api.Post(ctx, "/payment/create-checkout", body, &session); err != nil {
		return "", err
	}
	return session.URL, nil
}

// SyncPaymentStatus confirms a completed checkout session with the backend.
// It is called from the payment-return page; failures propagate so the
// caller can apply its own retry policy.
func (m *SubscriptionManager) SyncPaymentStatus(ctx context.Context, sessionID string) error {
	return m.api.Post(ctx, "/payment/sync-session", map[string]string{"sessionId": sessionID}, nil)
}

// OnSubscriptionChange registers a change listener and returns its
// unsubscribe function.
func (m *SubscriptionManager) OnSubscriptionChange(fn SubscriptionListener) func() {
	id := idx.New()
	m.mu.Lock()
	m.listeners = append(m.listeners, subscriptionListener{id: id, fn: fn})
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

// updateCached swaps in the new status and notifies listeners when it
// differs from the previous snapshot.
func (m *SubscriptionManager) updateCached(status SubscriptionStatus) {
	m.mu.Lock()
	changed := statusChanged(m.cached, status)
	m.cached = &status
	listeners := make([]subscriptionListener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range listeners {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.logger.Error("subscription listener panicked", "panic", r)
				}
			}()
			l.fn(status)
		}()
	}
}

// statusChanged diffs by activity flag, global-access flag, and entitlement
// count. Two different entitlement sets of equal size therefore do not
// register as a change; this coarse heuristic is part of the documented
// contract.
func statusChanged(old *SubscriptionStatus, next SubscriptionStatus) bool {
	if old == nil {
		return true
	}
	return old.IsActive != next.IsActive ||
		old.HasGlobalAccess != next.HasGlobalAccess ||
		len(old.Entitlements) != len(next.Entitlements)
}
