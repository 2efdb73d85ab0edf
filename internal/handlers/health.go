package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"brainscroll/internal/database"
	"brainscroll/internal/services"
)

// HealthHandler reports the health of the store connections
type HealthHandler struct {
	db    *database.MongoDB
	redis *services.RedisService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *database.MongoDB, redis *services.RedisService) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// Handle returns service health
// GET /health
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	mongoStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		mongoStatus = "unavailable"
		status = "degraded"
	}

	// Redis is an optional fast path; its absence degrades nothing
	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "unavailable"
		} else {
			redisStatus = "ok"
		}
	}

	code := fiber.StatusOK
	if mongoStatus != "ok" {
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"mongo":  mongoStatus,
		"redis":  redisStatus,
	})
}
