package handlers

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

// Validation tests run the handlers with a nil service: bad requests must be
// rejected before any service call happens.

func TestPaperHandler_List_Validation(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "unknown sort mode",
			url:            "/api/papers?sort=hottest",
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "Invalid sort mode",
		},
		{
			name:           "uppercase sort mode",
			url:            "/api/papers?sort=NEWEST",
			expectedStatus: fiber.StatusBadRequest,
			expectedError:  "Invalid sort mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			handler := NewPaperHandler(nil)
			app.Get("/api/papers", handler.List)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
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

func TestPaperHandler_Trending_Validation(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedStatus int
	}{
		{"window too small", "/api/papers/trending?window=0", fiber.StatusBadRequest},
		{"unsupported window", "/api/papers/trending?window=14", fiber.StatusBadRequest},
		{"negative window", "/api/papers/trending?window=-7", fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			handler := NewPaperHandler(nil)
			app.Get("/api/papers/trending", handler.Trending)

			resp, err := app.Test(httptest.NewRequest("GET", tt.url, nil))
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.expectedStatus)
			}
		})
	}
}
