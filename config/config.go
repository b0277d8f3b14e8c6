package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig       `envPrefix:"APP_"`
	Server    ServerConfig    `envPrefix:"SERVER_"`
	Log       LogConfig       `envPrefix:"LOG_"`
	Database  DatabaseConfig  `envPrefix:"DATABASE_"`
	Session   SessionConfig   `envPrefix:"SESSION_"`
	Auth      AuthConfig      `envPrefix:"AUTH_"`
	Mail      MailConfig      `envPrefix:"MAIL_"`
	Billing   BillingConfig   `envPrefix:"BILLING_"`
	RateLimit RateLimitConfig `envPrefix:"RATE_LIMIT_"`
	CSRF      CSRFConfig      `envPrefix:"CSRF_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"VigoBlue"`
	URL  string `env:"URL" envDefault:"http://localhost:3000"`
	// Continuation hints returned to the front end.
	LoginPath string `env:"LOGIN_PATH" envDefault:"/login.html"`
	HomePath  string `env:"HOME_PATH" envDefault:"/site.html"`
}

type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"3000"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	AllowedOrigins  []string      `env:"ALLOWED_ORIGINS" envSeparator:","`
	StaticDir       string        `env:"STATIC_DIR" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"storefront.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type SessionConfig struct {
	Store    string `env:"STORE" envDefault:"database"`
	Name     string `env:"NAME" envDefault:"storefront_session"`
	Path     string `env:"PATH" envDefault:"/"`
	Domain   string `env:"DOMAIN" envDefault:""`
	Secure   bool   `env:"SECURE" envDefault:"false"`
	HttpOnly bool   `env:"HTTP_ONLY" envDefault:"true"`
	SameSite string `env:"SAME_SITE" envDefault:"lax"`
	// IdleTimeout is the TTL refreshed by every authenticated request.
	IdleTimeout time.Duration `env:"IDLE_TIMEOUT" envDefault:"24h"`
	// Lifetime caps a session regardless of activity.
	Lifetime        time.Duration `env:"LIFETIME" envDefault:"720h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"1h"`
}

type AuthConfig struct {
	AllowedEmailDomain string        `env:"ALLOWED_EMAIL_DOMAIN" envDefault:"gmail.com"`
	CodeExpiry         time.Duration `env:"CODE_EXPIRY" envDefault:"5m"`
	BcryptCost         int           `env:"BCRYPT_COST" envDefault:"10"`
	MinLength          int           `env:"MIN_LENGTH" envDefault:"8"`
	MinUpper           int           `env:"MIN_UPPER" envDefault:"1"`
	MinDigits          int           `env:"MIN_DIGITS" envDefault:"3"`
	MinSymbols         int           `env:"MIN_SYMBOLS" envDefault:"1"`
}

type MailConfig struct {
	Driver      string        `env:"DRIVER" envDefault:"smtp"`
	Host        string        `env:"HOST" envDefault:"smtp.gmail.com"`
	Port        int           `env:"PORT" envDefault:"587"`
	Username    string        `env:"USERNAME"`
	Password    string        `env:"PASSWORD"`
	Encryption  string        `env:"ENCRYPTION" envDefault:"starttls"`
	ResendKey   string        `env:"RESEND_API_KEY"`
	FromAddress string        `env:"FROM_ADDRESS"`
	FromName    string        `env:"FROM_NAME" envDefault:"VigoBlue"`
	SendTimeout time.Duration `env:"SEND_TIMEOUT" envDefault:"10s"`
	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:""`
}

type BillingConfig struct {
	Provider  string        `env:"PROVIDER" envDefault:"stripe"`
	StripeKey string        `env:"STRIPE_SECRET_KEY"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"15s"`
}

type RateLimitConfig struct {
	Enabled             bool          `env:"ENABLED" envDefault:"true"`
	CodeRequests        int           `env:"CODE_REQUESTS" envDefault:"5"`
	LoginAttempts       int           `env:"LOGIN_ATTEMPTS" envDefault:"10"`
	Period              time.Duration `env:"PERIOD" envDefault:"1m"`
	StaleEntryRetention time.Duration `env:"STALE_ENTRY_RETENTION" envDefault:"10m"`
}

// CSRFConfig guards the cookie-authenticated routes with a double-submit
// token. Cookie flags follow the session cookie.
type CSRFConfig struct {
	Enabled      bool   `env:"ENABLED" envDefault:"false"`
	TokenLength  uint8  `env:"TOKEN_LENGTH" envDefault:"32"`
	TokenLookup  string `env:"TOKEN_LOOKUP" envDefault:"header:X-CSRF-Token"`
	CookieName   string `env:"COOKIE_NAME" envDefault:"_csrf"`
	CookieMaxAge int    `env:"COOKIE_MAX_AGE" envDefault:"86400"`
}

func LoadConfig(cfg any) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	if err := env.Parse(cfg); err != nil {
		return err
	}

	if c, ok := cfg.(*Config); ok {
		return c.Validate()
	}
	return nil
}

// Validate rejects combinations the services cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "postgresql", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %s (supported: sqlite, postgres, mysql)", c.Database.Driver)
	}

	switch c.Session.Store {
	case "memory", "database":
	default:
		return fmt.Errorf("unsupported session store: %s", c.Session.Store)
	}
	if c.Session.IdleTimeout <= 0 || c.Session.Lifetime <= 0 {
		return fmt.Errorf("session idle timeout and lifetime must be positive")
	}
	if c.Session.Lifetime < c.Session.IdleTimeout {
		return fmt.Errorf("session lifetime must not be shorter than the idle timeout")
	}

	if err := c.Auth.validate(); err != nil {
		return err
	}
	if err := c.Mail.validate(); err != nil {
		return err
	}
	return c.Billing.validate()
}

func (a AuthConfig) validate() error {
	if strings.TrimSpace(a.AllowedEmailDomain) == "" {
		return fmt.Errorf("allowed email domain is required")
	}
	if a.CodeExpiry <= 0 {
		return fmt.Errorf("verification code expiry must be positive")
	}
	if a.BcryptCost < 10 || a.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 10 and 31, got %d", a.BcryptCost)
	}
	if a.MinLength < 1 {
		return fmt.Errorf("password minimum length must be at least 1")
	}
	return nil
}

func (m MailConfig) validate() error {
	switch m.Driver {
	case "smtp":
		if m.Host == "" {
			return fmt.Errorf("MAIL_HOST is required for the smtp driver")
		}
	case "resend":
		if m.ResendKey == "" {
			return fmt.Errorf("MAIL_RESEND_API_KEY is required for the resend driver")
		}
	case "log":
	default:
		return fmt.Errorf("unsupported mail driver: %s (supported: smtp, resend, log)", m.Driver)
	}
	if m.Driver != "log" && m.FromAddress == "" {
		return fmt.Errorf("MAIL_FROM_ADDRESS is required")
	}
	if m.SendTimeout <= 0 {
		return fmt.Errorf("mail send timeout must be positive")
	}
	return nil
}

func (b BillingConfig) validate() error {
	switch b.Provider {
	case "stripe":
		if b.StripeKey == "" {
			return fmt.Errorf("BILLING_STRIPE_SECRET_KEY is required for the stripe provider")
		}
	case "none":
	default:
		return fmt.Errorf("unsupported billing provider: %s (supported: stripe, none)", b.Provider)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("billing timeout must be positive")
	}
	return nil
}
