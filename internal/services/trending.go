package services

import (
	"sort"
	"time"

	"brainscroll/internal/models"
	"brainscroll/internal/pagination"
)

// trendingScore computes the time-decayed ranking value for a paper:
//
//	score = (likes*2 + views) / (age_in_days + 1)
//
// Age is fractional, not truncated to whole days. The +1 offset keeps
// just-published papers from diverging while still privileging fresh,
// high-engagement content over older papers with diluted engagement.
func trendingScore(likes, views int64, createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		// clock skew between writer and reader
		ageDays = 0
	}
	return float64(likes*2+views) / (ageDays + 1)
}

// trendingLess orders two papers for ranking: score desc, then created_at
// desc, then id desc. The id leg makes the order total, so pages never
// repeat or drop items with identical scores and timestamps.
func trendingLess(a, b *models.Paper, now time.Time) bool {
	sa := trendingScore(a.LikesCount, a.ViewsCount, a.CreatedAt, now)
	sb := trendingScore(b.LikesCount, b.ViewsCount, b.CreatedAt, now)
	if sa != sb {
		return sa > sb
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.Hex() > b.ID.Hex()
}

// rankTrending sorts candidates in place by trending order. Scores are
// recomputed from the counters on every request; nothing decayed is
// persisted.
func rankTrending(papers []models.Paper, now time.Time) {
	sort.SliceStable(papers, func(i, j int) bool {
		return trendingLess(&papers[i], &papers[j], now)
	})
}

// afterTrendingCursor returns the ranked suffix strictly after the cursor
// position. The cursor item is located by its tie-break id when it is still
// in the candidate window; when it has aged out, its score is recomputed
// from the counters carried in the cursor and the suffix starts at the first
// item ordered after that key.
func afterTrendingCursor(ranked []models.Paper, cur *pagination.Cursor, now time.Time) []models.Paper {
	for i := range ranked {
		if ranked[i].ID.Hex() == cur.ID {
			return ranked[i+1:]
		}
	}

	curPaper := models.Paper{
		ID:         cur.ObjectID(),
		LikesCount: cur.LikesCount,
		ViewsCount: cur.ViewsCount,
		CreatedAt:  cur.CreatedTime(),
	}
	for i := range ranked {
		if trendingLess(&curPaper, &ranked[i], now) {
			return ranked[i:]
		}
	}
	return nil
}
