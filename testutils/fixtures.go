package testutils

import (
	"time"

	"github.com/tech-arch1tect/storefront/config"
)

func GetTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:      "Test Shop",
			URL:       "http://localhost:3000",
			LoginPath: "/login.html",
			HomePath:  "/site.html",
		},
		Server: config.ServerConfig{
			Host:            "127.0.0.1",
			Port:            "0",
			ShutdownTimeout: time.Second,
		},
		Log: config.LogConfig{Level: "error", Format: "json", Output: "stdout"},
		Database: config.DatabaseConfig{
			Driver:      "sqlite",
			DSN:         ":memory:",
			AutoMigrate: true,
		},
		Session: config.SessionConfig{
			Store:           "memory",
			Name:            "storefront_session",
			Path:            "/",
			HttpOnly:        true,
			SameSite:        "lax",
			IdleTimeout:     24 * time.Hour,
			Lifetime:        720 * time.Hour,
			CleanupInterval: time.Hour,
		},
		Auth: config.AuthConfig{
			AllowedEmailDomain: "gmail.com",
			CodeExpiry:         5 * time.Minute,
			BcryptCost:         10,
			MinLength:          8,
			MinUpper:           1,
			MinDigits:          3,
			MinSymbols:         1,
		},
		Mail: config.MailConfig{
			Driver:      "log",
			FromAddress: "shop@example.com",
			FromName:    "Test Shop",
			SendTimeout: time.Second,
		},
		Billing: config.BillingConfig{
			Provider: "none",
			Timeout:  time.Second,
		},
		RateLimit: config.RateLimitConfig{
			Enabled:             false,
			CodeRequests:        5,
			LoginAttempts:       10,
			Period:              time.Minute,
			StaleEntryRetention: 10 * time.Minute,
		},
		CSRF: config.CSRFConfig{
			Enabled:      false,
			TokenLength:  32,
			TokenLookup:  "header:X-CSRF-Token",
			CookieName:   "_csrf",
			CookieMaxAge: 86400,
		},
	}
}

var TestPasswords = struct {
	Valid      string
	NoUpper    string
	FewDigits  string
	NoSymbol   string
	TooShort   string
	Unlisted   string
	Borderline string
}{
	Valid:      "Abcd123!",
	NoUpper:    "abc12345",
	FewDigits:  "Abcdef12!",
	NoSymbol:   "Abcd1234",
	TooShort:   "Ab123!",
	Unlisted:   "Abcd123-",
	Borderline: "A1!2b3cd",
}
