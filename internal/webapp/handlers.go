package webapp

import (
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/glimmerworks/platform-sdk/pkg/platformsdk"
	"github.com/glimmerworks/platform-sdk/pkg/slogx"
)

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
{{if .User}}<p>Signed in as {{.User.Name}} ({{.User.Email}}) | <a href="/logout">Log out</a></p>{{end}}
{{block "content" .}}{{end}}
</body>
</html>`))

var loginTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<ul>
{{range .Providers}}<li><a href="/login/start?provider={{.}}">Continue with {{.}}</a></li>{{end}}
</ul>
{{end}}`))

var dashboardTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<p>Subscription active: {{.Status.IsActive}}</p>
<p>Global access: {{.Status.HasGlobalAccess}}</p>
<h2>Entitlements</h2>
<ul>
{{range .Status.Entitlements}}<li>#{{.ID}} {{.EntitlementType}} / {{.ScopeType}}{{if .ExpireTime}} (expires {{.ExpireTime}}){{end}}</li>{{else}}<li>None</li>{{end}}
</ul>
<p><a href="/subscribe">Manage subscription</a></p>
{{end}}`))

var subscribeTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<ul>
{{range .Plans}}
<li>
<form method="post" action="/subscribe">
<input type="hidden" name="plan" value="{{.ID}}">
{{.Name}}: {{.Price}} {{.Currency}}{{if .Interval}}/{{.Interval}}{{end}}
<button type="submit">Subscribe</button>
</form>
</li>
{{else}}<li>No plans available</li>{{end}}
</ul>
{{end}}`))

var messageTmpl = template.Must(template.Must(pageTmpl.Clone()).Parse(`{{define "content"}}
<p>{{.Message}}</p>
<p><a href="/dashboard">Back to dashboard</a></p>
{{end}}`))

type pageData struct {
	Title     string
	Error     string
	Message   string
	User      *platformsdk.User
	Providers []platformsdk.ProviderTag
	Status    platformsdk.SubscriptionStatus
	Plans     []platformsdk.Plan
}

func (app *Application) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		slogx.FromContext(r.Context()).Error("template render failed", "error", err)
	}
}

func (app *Application) handleIndex(w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(platformsdk.TokenCookieName); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (app *Application) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, loginTmpl, pageData{
		Title:     "Sign in",
		Error:     r.URL.Query().Get("error"),
		Providers: sdk.Auth.Providers(),
	})
}

// handleLoginStart persists the OAuth state and redirects to the provider's
// authorization endpoint. The in-flight exchange ends here; the provider
// redirects back to /auth/callback.
func (app *Application) handleLoginStart(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	provider := platformsdk.ProviderTag(r.URL.Query().Get("provider"))
	if err := sdk.Auth.Login(provider); err != nil {
		if errors.Is(err, platformsdk.ErrProviderNotConfigured) {
			http.Redirect(w, r, "/login?error="+url.QueryEscape("unknown provider"), http.StatusFound)
			return
		}
		app.serverError(w, r, err)
	}
}

func (app *Application) handleCallback(w http.ResponseWriter, r *http.Request) {
	logger := slogx.FromContext(r.Context())

	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	result, err := sdk.Auth.HandleCallback(r.Context())
	if err != nil {
		var cbErr *platformsdk.CallbackError
		if errors.As(err, &cbErr) {
			logger.Warn("callback rejected", "reason", cbErr.Reason)
			http.Redirect(w, r, "/login?error="+url.QueryEscape(cbErr.Message), http.StatusFound)
			return
		}
		app.serverError(w, r, err)
		return
	}
	if !result.Success {
		logger.Warn("code exchange reported failure")
		http.Redirect(w, r, "/login?error="+url.QueryEscape("sign-in failed"), http.StatusFound)
		return
	}

	logger.Info("user signed in", "user_id", result.User.ID)
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

func (app *Application) handleLogout(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	sdk.Auth.Logout()
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (app *Application) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	status, err := sdk.ValidateStatus(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if !status.Auth.IsValid {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	app.render(w, r, dashboardTmpl, pageData{
		Title:  "Dashboard",
		User:   status.Auth.User,
		Status: status.Subscription,
	})
}

func (app *Application) handleSubscribePage(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	plans, err := sdk.Subscription.GetPlans(r.Context(), app.cfg.AppID)
	if err != nil {
		if platformsdk.IsUnauthorized(err) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		app.serverError(w, r, err)
		return
	}

	app.render(w, r, subscribeTmpl, pageData{
		Title: "Choose a plan",
		User:  sdk.Auth.CurrentUser(),
		Plans: plans,
	})
}

// handleSubscribe creates a checkout session for the selected plan and sends
// the user to the provider-hosted payment page.
func (app *Application) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	planID, err := strconv.ParseInt(r.FormValue("plan"), 10, 64)
	if err != nil {
		http.Error(w, "invalid plan", http.StatusBadRequest)
		return
	}

	origin, err := (&requestBrowser{w: w, r: r}).Origin()
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	checkoutURL, err := sdk.Subscription.CreateCheckout(r.Context(), platformsdk.CheckoutParams{
		PlanID:     planID,
		SuccessURL: origin + "/payment/success",
		CancelURL:  origin + "/payment/cancel",
	})
	if err != nil {
		if errors.Is(err, platformsdk.ErrNotAuthenticated) || platformsdk.IsUnauthorized(err) {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		app.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, checkoutURL, http.StatusFound)
}

// handlePaymentSuccess confirms the completed session with the backend before
// showing the confirmation page. A failed sync is surfaced, not retried; the
// backend reconciles via its own webhook anyway.
func (app *Application) handlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	data := pageData{
		Title:   "Payment complete",
		Message: "Your payment was received. Entitlements may take a moment to appear.",
		User:    sdk.Auth.CurrentUser(),
	}
	if sessionID := r.URL.Query().Get("session_id"); sessionID != "" {
		if err := sdk.Subscription.SyncPaymentStatus(r.Context(), sessionID); err != nil {
			slogx.FromContext(r.Context()).Warn("payment sync failed", "error", err)
			data.Error = "We could not confirm your payment yet. It will be reconciled shortly."
		}
	}
	app.render(w, r, messageTmpl, data)
}

func (app *Application) handlePaymentCancel(w http.ResponseWriter, r *http.Request) {
	sdk, err := app.sdkFor(w, r)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, messageTmpl, pageData{
		Title:   "Payment cancelled",
		Message: "No charge was made.",
		User:    sdk.Auth.CurrentUser(),
	})
}

func (app *Application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slogx.FromContext(r.Context()).Error("request failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
