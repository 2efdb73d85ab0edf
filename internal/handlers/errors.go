package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"brainscroll/internal/logging"
	"brainscroll/internal/pagination"
	"brainscroll/internal/services"
)

// respondError maps service errors onto the API error taxonomy. Idempotency
// conflicts never reach here; services normalize them into successes.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPaperNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Paper not found",
		})
	case errors.Is(err, pagination.ErrInvalidCursor):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid cursor",
		})
	case errors.Is(err, services.ErrInvalidPaperID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid paper ID",
		})
	case errors.Is(err, services.ErrSessionRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	case errors.Is(err, services.ErrStoreUnavailable):
		requestLogger(c).Error("store unavailable", "error", err.Error())
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Storage temporarily unavailable, retry later",
		})
	default:
		requestLogger(c).Error("unhandled error", "error", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
}

func requestLogger(c *fiber.Ctx) *slog.Logger {
	requestID, _ := c.Locals("requestid").(string)
	return logging.WithRequest(requestID, c.Path())
}
