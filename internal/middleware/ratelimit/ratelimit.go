// Package ratelimit throttles the OTP endpoints per client IP.
package ratelimit

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/drapcode/exchange-engine/internal/pkg/log"
	"github.com/drapcode/exchange-engine/internal/platform/config"
)

// Config holds the configuration for rate limiting middleware
type Config struct {
	// Name appears in logs and in the rejection message.
	Name string

	Enabled bool
	Max     int
	Window  time.Duration

	// Next defines a function to skip this middleware when returned true
	Next func(c *fiber.Ctx) bool

	// KeyGenerator defaults to client IP plus route path
	KeyGenerator func(c *fiber.Ctx) string
}

// FromSettings builds a Config from the loaded rate limit settings.
func FromSettings(name string, settings config.RateLimitConfig) Config {
	return Config{
		Name:    name,
		Enabled: settings.Enabled,
		Max:     settings.Max,
		Window:  settings.Duration,
	}
}

func configDefault(cfg Config) Config {
	if cfg.Max <= 0 {
		cfg.Max = 5
	}
	if cfg.Window <= 0 {
		cfg.Window = 15 * time.Minute
	}
	if cfg.Name == "" {
		cfg.Name = "request"
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = func(c *fiber.Ctx) string {
			return c.IP() + ":" + c.Path()
		}
	}
	return cfg
}

// New creates a new rate limiting middleware handler. A disabled config
// yields a pass-through handler.
func New(config Config) fiber.Handler {
	if !config.Enabled {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	cfg := configDefault(config)

	return limiter.New(limiter.Config{
		Max:          cfg.Max,
		Expiration:   cfg.Window,
		KeyGenerator: cfg.KeyGenerator,
		Next:         cfg.Next,
		LimitReached: func(c *fiber.Ctx) error {
			log.WarnWithContext(c.UserContext(), "[RateLimit] Rate limit exceeded for %s from IP: %s", cfg.Name, c.IP())
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", int(cfg.Window.Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"code":    fiber.StatusTooManyRequests,
				"message": fmt.Sprintf("Too many %s attempts. Please try again later.", cfg.Name),
			})
		},
	})
}
