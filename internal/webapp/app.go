package webapp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glimmerworks/platform-sdk/pkg/platformsdk"
	"github.com/glimmerworks/platform-sdk/pkg/platformsdk/sqlitestore"
	"github.com/glimmerworks/platform-sdk/pkg/slogx"
)

const BuildVersion = "v0.1.0"

// Application is the consumer web app hosting the platform SDK: a login
// surface, the OAuth callback route, gated pages, and payment-return
// handling. All product behaviour lives in the SDK; handlers here are thin
// glue.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store  *sqlitestore.Store
	sdkCfg platformsdk.Config

	server *http.Server
}

func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "platform-webapp",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("PLATFORM_API_BASE_URL is required")
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", cfg.DatabaseFile)
	store, err := sqlitestore.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	if err := store.ApplyMigrations(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to apply local store migrations: %w", err)
	}
	app.store = store
	app.logger.Info("local store ready", "file", cfg.DatabaseFile)

	app.sdkCfg = platformsdk.Config{
		APIBaseURL:  cfg.APIBaseURL,
		AppID:       cfg.AppID,
		CallbackURL: cfg.CallbackURL,
		OAuth:       oauthConfig(cfg),
	}

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app.routes(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	return app, nil
}

func oauthConfig(cfg Config) platformsdk.OAuthConfig {
	var oc platformsdk.OAuthConfig
	if cfg.GoogleClientID != "" {
		oc.Google = &platformsdk.OAuthClientConfig{ClientID: cfg.GoogleClientID}
	}
	if cfg.AppleClientID != "" {
		oc.Apple = &platformsdk.OAuthClientConfig{ClientID: cfg.AppleClientID}
	}
	if cfg.DiscordClientID != "" {
		oc.Discord = &platformsdk.OAuthClientConfig{ClientID: cfg.DiscordClientID}
	}
	if cfg.TwitterClientID != "" {
		oc.Twitter = &platformsdk.OAuthClientConfig{ClientID: cfg.TwitterClientID}
	}
	return oc
}

// sdkFor builds an SDK bound to the current request: the cookie surface and
// browser surface are per-request, the durable store is shared.
func (app *Application) sdkFor(w http.ResponseWriter, r *http.Request) (*platformsdk.SDK, error) {
	return platformsdk.New(app.sdkCfg,
		platformsdk.WithBrowser(&requestBrowser{w: w, r: r}),
		platformsdk.WithCookieStore(&requestCookies{w: w, r: r}),
		platformsdk.WithLocalStore(app.store),
		platformsdk.WithLogger(slogx.FromContext(r.Context())),
	)
}

// Run starts the server and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("webapp starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}

// Shutdown drains in-flight requests and closes the local store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down webapp...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing local store", "error", err)
		return err
	}

	app.logger.Info("webapp stopped")
	return nil
}
