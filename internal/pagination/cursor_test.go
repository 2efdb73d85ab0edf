package pagination

import (
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brainscroll/internal/models"
)

func testPaper(t *testing.T) *models.Paper {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex("656f1e4f8b9c2d0012345678")
	if err != nil {
		t.Fatalf("bad fixture id: %v", err)
	}
	return &models.Paper{
		ID:         oid,
		CreatedAt:  time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC),
		LikesCount: 42,
		ViewsCount: 317,
	}
}

func TestCursorRoundTrip(t *testing.T) {
	paper := testPaper(t)

	for _, sortMode := range []string{models.SortNewest, models.SortPopular, models.SortTrending} {
		t.Run(sortMode, func(t *testing.T) {
			token := Encode(sortMode, paper)

			cur, err := Decode(token, sortMode)
			if err != nil {
				t.Fatalf("Decode failed: %v", err)
			}

			if cur.Sort != sortMode {
				t.Errorf("sort = %q, want %q", cur.Sort, sortMode)
			}
			if !cur.CreatedTime().Equal(paper.CreatedAt) {
				t.Errorf("createdAt = %v, want %v", cur.CreatedTime(), paper.CreatedAt)
			}
			if cur.ObjectID() != paper.ID {
				t.Errorf("id = %s, want %s", cur.ID, paper.ID.Hex())
			}

			switch sortMode {
			case models.SortNewest:
				if cur.LikesCount != 0 || cur.ViewsCount != 0 {
					t.Errorf("newest cursor should not carry counters, got likes=%d views=%d", cur.LikesCount, cur.ViewsCount)
				}
			case models.SortPopular:
				if cur.LikesCount != paper.LikesCount {
					t.Errorf("likes = %d, want %d", cur.LikesCount, paper.LikesCount)
				}
				if cur.ViewsCount != 0 {
					t.Errorf("popular cursor should not carry views, got %d", cur.ViewsCount)
				}
			case models.SortTrending:
				if cur.LikesCount != paper.LikesCount || cur.ViewsCount != paper.ViewsCount {
					t.Errorf("counters = (%d, %d), want (%d, %d)", cur.LikesCount, cur.ViewsCount, paper.LikesCount, paper.ViewsCount)
				}
			}
		})
	}
}

func TestCursorSortModeMismatch(t *testing.T) {
	paper := testPaper(t)
	token := Encode(models.SortNewest, paper)

	if _, err := Decode(token, models.SortPopular); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("cross-mode decode: got %v, want ErrInvalidCursor", err)
	}
}

func TestCursorDecodeInvalid(t *testing.T) {
	paper := testPaper(t)
	valid := Encode(models.SortNewest, paper)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"not base64", "!!!not-base64!!!"},
		{"not json", base64.RawURLEncoding.EncodeToString([]byte("hello"))},
		{"truncated payload", valid[:len(valid)/2]},
		{"unknown sort mode", base64.RawURLEncoding.EncodeToString([]byte(`{"s":"hottest","t":1700000000000,"id":"656f1e4f8b9c2d0012345678"}`))},
		{"bad tie-break id", base64.RawURLEncoding.EncodeToString([]byte(`{"s":"newest","t":1700000000000,"id":"zzz"}`))},
		{"missing timestamp", base64.RawURLEncoding.EncodeToString([]byte(`{"s":"newest","id":"656f1e4f8b9c2d0012345678"}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.token, models.SortNewest); !errors.Is(err, ErrInvalidCursor) {
				t.Errorf("got %v, want ErrInvalidCursor", err)
			}
		})
	}
}

func TestCursorOpaqueness(t *testing.T) {
	// Tokens must survive URL transport without escaping
	paper := testPaper(t)
	token := Encode(models.SortPopular, paper)

	if _, err := base64.RawURLEncoding.DecodeString(token); err != nil {
		t.Errorf("token is not URL-safe base64: %v", err)
	}
}
