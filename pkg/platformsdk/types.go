package platformsdk

import "time"

// ProviderTag identifies one of the supported OAuth identity providers.
type ProviderTag string

const (
	ProviderGoogle  ProviderTag = "google"
	ProviderApple   ProviderTag = "apple"
	ProviderDiscord ProviderTag = "discord"
	ProviderTwitter ProviderTag = "twitter"
)

// User is the profile returned by the platform backend after a successful
// login or validation.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// AuthResult is the response of the provider-specific code-exchange endpoint.
// Success must be checked by callers; a non-success result is returned as a
// value, not an error.
type AuthResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

// Validation error tags used in AuthValidationResult.Error.
const (
	// ValidationErrNoToken is reported when validation short-circuits
	// because no token is stored locally. No network call is made.
	ValidationErrNoToken = "NoToken"

	// ValidationErrFailed is reported when the validation request itself
	// failed (network or decode error). Local state is cleared.
	ValidationErrFailed = "ValidationFailed"
)

// AuthValidationResult is the outcome of a token validation pass.
type AuthValidationResult struct {
	IsValid bool   `json:"isValid"`
	User    *User  `json:"user,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// EntitlementType distinguishes time-bounded subscriptions from permanent
// grants.
type EntitlementType string

const (
	EntitlementSubscription EntitlementType = "SUBSCRIPTION"
	EntitlementPermanent    EntitlementType = "PERMANENT"
)

// ScopeType is the breadth of an entitlement's applicability.
type ScopeType string

const (
	ScopeGlobal      ScopeType = "GLOBAL"
	ScopeSpecificApp ScopeType = "SPECIFIC_APP"
)

// App is a catalog entry for a platform application.
type App struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AppKey      string `json:"appKey"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// AppLink wraps an App inside an entitlement's app-association collection.
type AppLink struct {
	App App `json:"app"`
}

// Entitlement is a grant of access owned by the server; the client only ever
// holds a read-only snapshot. Depending on which query path produced it, the
// backend may reference a specific app through AppID, Application, or Apps;
// consumers must check all three.
type Entitlement struct {
	ID              int64           `json:"id"`
	EntitlementType EntitlementType `json:"entitlementType"`
	ScopeType       ScopeType       `json:"scopeType"`
	AppID           string          `json:"appId,omitempty"`
	Application     *App            `json:"application,omitempty"`
	Apps            []AppLink       `json:"apps,omitempty"`
	ExpireTime      *time.Time      `json:"expireTime,omitempty"`
}

// SubscriptionStatus is the server-computed aggregate over the entitlement
// set at query time.
type SubscriptionStatus struct {
	IsActive         bool          `json:"isActive"`
	HasGlobalAccess  bool          `json:"hasGlobalAccess"`
	AccessibleAppIDs []string      `json:"accessibleAppIds"`
	Entitlements     []Entitlement `json:"entitlements"`
	Timestamp        string        `json:"timestamp"`
}

// Plan is a read-only pricing catalog entry.
type Plan struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
	Interval string `json:"interval,omitempty"`
	Scope    string `json:"scope"`
}

// AppDetail pairs an app with its pricing plans.
type AppDetail struct {
	App   App    `json:"app"`
	Plans []Plan `json:"plans"`
}

// CheckoutParams are the inputs to CreateCheckout.
type CheckoutParams struct {
	PlanID     int64
	SuccessURL string
	CancelURL  string
}

// CheckoutSession is the payment provider's hosted checkout, resolved to a
// redirect URL.
type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
	OrderID   string `json:"orderId"`
}

// AuthStateListener receives the result of every validation pass.
type AuthStateListener func(AuthValidationResult)

// SubscriptionListener receives the new status whenever a subscription
// change is detected.
type SubscriptionListener func(SubscriptionStatus)
