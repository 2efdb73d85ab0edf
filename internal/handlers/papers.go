package handlers

import (
	"github.com/gofiber/fiber/v2"

	"brainscroll/internal/models"
	"brainscroll/internal/services"
)

// PaperHandler handles HTTP requests for feed and paper reads
type PaperHandler struct {
	feed *services.FeedService
}

// NewPaperHandler creates a new paper handler
func NewPaperHandler(feed *services.FeedService) *PaperHandler {
	return &PaperHandler{feed: feed}
}

// List returns a page of the feed
// GET /api/papers?category=&sort=&page=|cursor=&limit=
func (h *PaperHandler) List(c *fiber.Ctx) error {
	sortMode := c.Query("sort", models.SortNewest)
	if !models.ValidSort(sortMode) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid sort mode (must be newest, popular, or trending)",
		})
	}

	// Numeric fields are coerced to the nearest valid value, never
	// rejected: QueryInt falls back to the default on garbage input and
	// the clamps bound the rest.
	q := &models.FeedQuery{
		Category: c.Query("category"),
		Sort:     sortMode,
		Page:     models.ClampPage(c.QueryInt("page", 1)),
		Limit:    models.ClampLimit(c.QueryInt("limit", models.DefaultLimit)),
		Cursor:   c.Query("cursor"),
	}

	resp, err := h.feed.ListFeed(c.Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Trending returns a page of the trending ranking
// GET /api/papers/trending?window=&category=&page=&limit=
func (h *PaperHandler) Trending(c *fiber.Ctx) error {
	window := c.QueryInt("window", models.DefaultTrendingWindow)
	if !models.ValidWindow(window) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid trending window (must be 1, 7, or 30)",
		})
	}

	q := &models.TrendingQuery{
		WindowDays: window,
		Category:   c.Query("category"),
		Page:       models.ClampPage(c.QueryInt("page", 1)),
		Limit:      models.ClampLimit(c.QueryInt("limit", models.DefaultLimit)),
		Cursor:     c.Query("cursor"),
	}

	resp, err := h.feed.Trending(c.Context(), q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

// Get returns a single paper
// GET /api/papers/:id
func (h *PaperHandler) Get(c *fiber.Ctx) error {
	paper, err := h.feed.GetPaper(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(paper)
}

// Categories returns the distinct category tags in the feed
// GET /api/categories
func (h *PaperHandler) Categories(c *fiber.Ctx) error {
	categories, err := h.feed.Categories(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"categories": categories})
}
