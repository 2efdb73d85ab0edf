package handlers

import (
	"github.com/gofiber/fiber/v2"

	"brainscroll/internal/models"
	"brainscroll/internal/services"
)

// EngagementHandler handles HTTP requests for engagement operations
type EngagementHandler struct {
	service *services.EngagementService
}

// NewEngagementHandler creates a new engagement handler
func NewEngagementHandler(service *services.EngagementService) *EngagementHandler {
	return &EngagementHandler{service: service}
}

// parseRequest validates the shared engagement request shape before any
// business logic runs
func (h *EngagementHandler) parseRequest(c *fiber.Ctx) (*models.EngagementRequest, error) {
	var req models.EngagementRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == "" {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}
	return &req, nil
}

// Like records a like
// POST /api/papers/:id/like
func (h *EngagementHandler) Like(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.Like(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Unlike removes a like
// POST /api/papers/:id/unlike
func (h *EngagementHandler) Unlike(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.Unlike(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// View records a view, throttled by the dedup window
// POST /api/papers/:id/view
func (h *EngagementHandler) View(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.View(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Bookmark records a bookmark
// POST /api/papers/:id/bookmark
func (h *EngagementHandler) Bookmark(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.Bookmark(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Unbookmark removes a bookmark
// DELETE /api/papers/:id/bookmark
func (h *EngagementHandler) Unbookmark(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.Unbookmark(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Share records a share
// POST /api/papers/:id/share
func (h *EngagementHandler) Share(c *fiber.Ctx) error {
	req, err := h.parseRequest(c)
	if req == nil {
		return err
	}

	resp, err := h.service.Share(c.Context(), c.Params("id"), req.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}
