package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brainscroll/internal/models"
	"brainscroll/internal/pagination"
)

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		t.Fatalf("bad fixture id %q: %v", hex, err)
	}
	return oid
}

func TestTrendingScore(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		likes  int64
		views  int64
		age    time.Duration
		want   float64
	}{
		// 10 likes, 1 day old: (10*2 + 0) / (1 + 1) = 10
		{"day-old paper with likes", 10, 0, 24 * time.Hour, 10},
		// brand new paper: denominator offset keeps the score finite
		{"just published", 5, 10, 0, 20},
		{"no engagement", 0, 0, 48 * time.Hour, 0},
		// views weigh half as much as likes
		{"views only", 0, 20, 24 * time.Hour, 10},
		{"half day", 4, 2, 12 * time.Hour, (8 + 2) / 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trendingScore(tt.likes, tt.views, now.Add(-tt.age), now)
			if got != tt.want {
				t.Errorf("trendingScore = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrendingScoreFractionalAge(t *testing.T) {
	// 36 hours is 1.5 days, not 1: age must not truncate to whole days
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	got := trendingScore(10, 0, now.Add(-36*time.Hour), now)
	want := 20.0 / 2.5
	if got != want {
		t.Errorf("trendingScore at 36h = %v, want %v", got, want)
	}
}

func TestTrendingScoreClockSkew(t *testing.T) {
	// a record stamped slightly in the future must not exceed age-zero score
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	got := trendingScore(3, 0, now.Add(2*time.Second), now)
	if got != 6 {
		t.Errorf("trendingScore with future timestamp = %v, want 6", got)
	}
}

func TestRankTrendingOrder(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	// fresh + engaged beats old + more total engagement
	hot := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000001"), LikesCount: 10, CreatedAt: now.Add(-24 * time.Hour)}
	old := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000002"), LikesCount: 14, CreatedAt: now.Add(-6 * 24 * time.Hour)}
	dead := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000003"), CreatedAt: now.Add(-2 * 24 * time.Hour)}

	papers := []models.Paper{dead, old, hot}
	rankTrending(papers, now)

	wantOrder := []primitive.ObjectID{hot.ID, old.ID, dead.ID}
	for i, want := range wantOrder {
		if papers[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, papers[i].ID.Hex(), want.Hex())
		}
	}
}

func TestRankTrendingTieBreak(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	created := now.Add(-24 * time.Hour)

	// identical score and timestamp: id descending decides
	a := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d000000000a"), LikesCount: 5, CreatedAt: created}
	b := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d000000000b"), LikesCount: 5, CreatedAt: created}

	papers := []models.Paper{a, b}
	rankTrending(papers, now)

	if papers[0].ID != b.ID || papers[1].ID != a.ID {
		t.Errorf("tie-break order = [%s, %s], want id descending", papers[0].ID.Hex(), papers[1].ID.Hex())
	}

	// equal score via compensating counters: newer timestamp wins first
	newer := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000001"), ViewsCount: 10, CreatedAt: now}
	older := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000002"), ViewsCount: 20, CreatedAt: now.Add(-24 * time.Hour)}

	papers = []models.Paper{older, newer}
	rankTrending(papers, now)
	if papers[0].ID != newer.ID {
		t.Errorf("expected newer paper first on equal score, got %s", papers[0].ID.Hex())
	}
}

func TestAfterTrendingCursorByID(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	papers := []models.Paper{
		{ID: mustOID(t, "656f1e4f8b9c2d0000000001"), LikesCount: 30, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: mustOID(t, "656f1e4f8b9c2d0000000002"), LikesCount: 20, CreatedAt: now.Add(-24 * time.Hour)},
		{ID: mustOID(t, "656f1e4f8b9c2d0000000003"), LikesCount: 10, CreatedAt: now.Add(-24 * time.Hour)},
	}
	rankTrending(papers, now)

	token := pagination.Encode(models.SortTrending, &papers[0])
	cur, err := pagination.Decode(token, models.SortTrending)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	rest := afterTrendingCursor(papers, cur, now)
	if len(rest) != 2 {
		t.Fatalf("len(rest) = %d, want 2", len(rest))
	}
	if rest[0].ID != papers[1].ID {
		t.Errorf("resume starts at %s, want %s", rest[0].ID.Hex(), papers[1].ID.Hex())
	}
}

func TestAfterTrendingCursorItemAgedOut(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	// the cursor item is no longer in the candidate set; resumption falls
	// back to its recomputed score so nothing repeats
	gone := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d00000000ff"), LikesCount: 10, CreatedAt: now.Add(-24 * time.Hour)}
	token := pagination.Encode(models.SortTrending, &gone)
	cur, err := pagination.Decode(token, models.SortTrending)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	papers := []models.Paper{
		{ID: mustOID(t, "656f1e4f8b9c2d0000000001"), LikesCount: 30, CreatedAt: now.Add(-24 * time.Hour)}, // score 30, before cursor
		{ID: mustOID(t, "656f1e4f8b9c2d0000000002"), LikesCount: 5, CreatedAt: now.Add(-24 * time.Hour)},  // score 5, after cursor
	}
	rankTrending(papers, now)

	rest := afterTrendingCursor(papers, cur, now)
	if len(rest) != 1 {
		t.Fatalf("len(rest) = %d, want 1", len(rest))
	}
	if rest[0].LikesCount != 5 {
		t.Errorf("resume item likes = %d, want 5", rest[0].LikesCount)
	}
}

func TestAfterTrendingCursorExhausted(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	last := models.Paper{ID: mustOID(t, "656f1e4f8b9c2d0000000001"), LikesCount: 1, CreatedAt: now.Add(-24 * time.Hour)}
	papers := []models.Paper{last}

	token := pagination.Encode(models.SortTrending, &last)
	cur, err := pagination.Decode(token, models.SortTrending)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if rest := afterTrendingCursor(papers, cur, now); len(rest) != 0 {
		t.Errorf("len(rest) = %d, want 0", len(rest))
	}
}
