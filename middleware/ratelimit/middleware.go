package ratelimit

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const maxPeekBytes = 64 << 10

type Config struct {
	Store          *Store
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewStore(10, time.Minute, 10*time.Minute)
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = DefaultKeyGenerator
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			now := time.Now()
			limiter := cfg.Store.Limiter(cfg.KeyGenerator(c), now)

			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Store.Burst()))

			if !limiter.AllowN(now, 1) {
				wait := secondsUntilToken(limiter.TokensAt(now), float64(limiter.Limit()))
				header.Set("X-RateLimit-Remaining", "0")
				header.Set("Retry-After", strconv.Itoa(wait))
				return cfg.OnLimitReached(c)
			}

			remaining := int(math.Max(0, math.Floor(limiter.TokensAt(now))))
			header.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			return next(c)
		}
	}
}

func secondsUntilToken(tokens, perSecond float64) int {
	if perSecond <= 0 {
		return 1
	}
	wait := int(math.Ceil((1 - tokens) / perSecond))
	if wait < 1 {
		return 1
	}
	return wait
}

func DefaultKeyGenerator(c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	return "rate_limit:" + realIP
}

// BodyFieldKeyGenerator keys on the client IP plus a top-level string field of
// a JSON body. The body is restored for the handler.
func BodyFieldKeyGenerator(field string) func(c echo.Context) string {
	return func(c echo.Context) string {
		key := DefaultKeyGenerator(c)

		req := c.Request()
		if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
			return key
		}

		body, err := io.ReadAll(io.LimitReader(req.Body, maxPeekBytes))
		_ = req.Body.Close()
		req.Body = io.NopCloser(bytes.NewReader(body))
		if err != nil {
			return key
		}

		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			return key
		}
		if value, ok := payload[field].(string); ok && value != "" {
			return key + ":" + strings.ToLower(strings.TrimSpace(value))
		}
		return key
	}
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests, please try again later")
}
