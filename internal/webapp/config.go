package webapp

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	APIBaseURL  string // Required: platform backend base URL
	CallbackURL string // Optional: explicit OAuth callback URL (default: derived from request origin)

	GoogleClientID  string // Optional: provider absent when empty
	AppleClientID   string // Optional
	DiscordClientID string // Optional
	TwitterClientID string // Optional

	AppID        string // Optional: scope entitlement checks to one app
	DatabaseFile string // Path to the SQLite local store (default: ./platform-sdk.db)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		APIBaseURL:  os.Getenv("PLATFORM_API_BASE_URL"),
		CallbackURL: os.Getenv("PLATFORM_CALLBACK_URL"),

		GoogleClientID:  os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
		AppleClientID:   os.Getenv("OAUTH_APPLE_CLIENT_ID"),
		DiscordClientID: os.Getenv("OAUTH_DISCORD_CLIENT_ID"),
		TwitterClientID: os.Getenv("OAUTH_TWITTER_CLIENT_ID"),

		AppID:        os.Getenv("PLATFORM_APP_ID"),
		DatabaseFile: getEnvOrDefault("PLATFORM_DATABASE_FILE", "platform-sdk.db"),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
