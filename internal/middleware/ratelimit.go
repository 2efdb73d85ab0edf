package middleware

import (
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimitConfig holds rate limiting settings
type RateLimitConfig struct {
	// Global limits (per IP) for all API endpoints
	GlobalAPIMax        int
	GlobalAPIExpiration time.Duration

	// Engagement write limits (per IP). Tighter than the global cap: a
	// view-spamming client is rate limited here on top of the 1-hour
	// counting window.
	EngagementMax        int
	EngagementExpiration time.Duration
}

// DefaultRateLimitConfig returns production-safe defaults
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		// Global: 200/min = ~3.3 req/sec, generous for a swipe feed
		GlobalAPIMax:        200,
		GlobalAPIExpiration: 1 * time.Minute,

		// Engagement writes: 60/min = 1 req/sec average
		EngagementMax:        60,
		EngagementExpiration: 1 * time.Minute,
	}
}

// LoadRateLimitConfig loads config from environment variables with defaults
func LoadRateLimitConfig() *RateLimitConfig {
	config := DefaultRateLimitConfig()

	if v := os.Getenv("RATE_LIMIT_GLOBAL_API"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.GlobalAPIMax = n
		}
	}
	if v := os.Getenv("RATE_LIMIT_ENGAGEMENT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.EngagementMax = n
		}
	}

	return config
}

// GlobalAPIRateLimiter applies the per-IP cap to all /api routes
func GlobalAPIRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.GlobalAPIMax,
		Expiration: config.GlobalAPIExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, slow down",
			})
		},
	})
}

// EngagementRateLimiter applies the tighter per-IP cap to engagement writes
func EngagementRateLimiter(config *RateLimitConfig) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        config.EngagementMax,
		Expiration: config.EngagementExpiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many engagement requests, slow down",
			})
		},
	})
}
