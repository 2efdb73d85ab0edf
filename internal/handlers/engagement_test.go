package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"brainscroll/internal/models"
)

func TestEngagementHandler_Validation(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "missing session ID",
			body:           models.EngagementRequest{},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "Session ID is required",
		},
		{
			name:           "empty session ID",
			body:           models.EngagementRequest{SessionID: ""},
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "Session ID is required",
		},
		{
			name:           "invalid JSON body",
			body:           "not json",
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "Invalid request body",
		},
	}

	// every engagement route shares the same request shape, so validation
	// failures must be identical across them
	routes := []struct {
		method string
		path   string
		wire   func(*EngagementHandler, *fiber.App)
	}{
		{"POST", "/api/papers/abc/like", func(h *EngagementHandler, app *fiber.App) { app.Post("/api/papers/:id/like", h.Like) }},
		{"POST", "/api/papers/abc/unlike", func(h *EngagementHandler, app *fiber.App) { app.Post("/api/papers/:id/unlike", h.Unlike) }},
		{"POST", "/api/papers/abc/view", func(h *EngagementHandler, app *fiber.App) { app.Post("/api/papers/:id/view", h.View) }},
		{"POST", "/api/papers/abc/bookmark", func(h *EngagementHandler, app *fiber.App) { app.Post("/api/papers/:id/bookmark", h.Bookmark) }},
		{"DELETE", "/api/papers/abc/bookmark", func(h *EngagementHandler, app *fiber.App) { app.Delete("/api/papers/:id/bookmark", h.Unbookmark) }},
		{"POST", "/api/papers/abc/share", func(h *EngagementHandler, app *fiber.App) { app.Post("/api/papers/:id/share", h.Share) }},
	}

	for _, route := range routes {
		for _, tt := range tests {
			t.Run(route.method+" "+route.path+" "+tt.name, func(t *testing.T) {
				app := fiber.New()
				handler := NewEngagementHandler(nil)
				route.wire(handler, app)

				var bodyReader io.Reader
				if s, ok := tt.body.(string); ok {
					bodyReader = strings.NewReader(s)
				} else {
					data, _ := json.Marshal(tt.body)
					bodyReader = bytes.NewReader(data)
				}

				req := httptest.NewRequest(route.method, route.path, bodyReader)
				req.Header.Set("Content-Type", "application/json")

				resp, err := app.Test(req)
				if err != nil {
					t.Fatalf("request failed: %v", err)
				}
				defer resp.Body.Close()

				if resp.StatusCode != tt.expectedStatus {
					t.Errorf("status = %d, want %d", resp.StatusCode, tt.expectedStatus)
				}

				body, _ := io.ReadAll(resp.Body)
				if !strings.Contains(string(body), tt.expectedError) {
					t.Errorf("body = %s, want it to contain %q", body, tt.expectedError)
				}
			})
		}
	}
}
