package webapp

import (
	"net/http"

	"github.com/glimmerworks/platform-sdk/pkg/httpx"
	"github.com/glimmerworks/platform-sdk/pkg/slogx"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	authLimit := httpx.RateLimitByIP(httpx.AuthLimit)

	mux.HandleFunc("GET /{$}", app.handleIndex)
	mux.HandleFunc("GET /login", app.handleLoginPage)
	mux.Handle("GET /login/start", httpx.Chain(http.HandlerFunc(app.handleLoginStart), authLimit))
	mux.Handle("GET /auth/callback", httpx.Chain(http.HandlerFunc(app.handleCallback), authLimit))
	mux.HandleFunc("GET /logout", app.handleLogout)

	mux.Handle("GET /dashboard", httpx.Chain(http.HandlerFunc(app.handleDashboard), requireToken))
	mux.Handle("GET /subscribe", httpx.Chain(http.HandlerFunc(app.handleSubscribePage), requireToken))
	mux.Handle("POST /subscribe", httpx.Chain(http.HandlerFunc(app.handleSubscribe), requireToken))

	mux.HandleFunc("GET /payment/success", app.handlePaymentSuccess)
	mux.HandleFunc("GET /payment/cancel", app.handlePaymentCancel)

	return httpx.Chain(mux, slogx.HTTPMiddleware(app.logger))
}
