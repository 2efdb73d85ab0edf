package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brainscroll/internal/database"
	"brainscroll/internal/models"
	"brainscroll/internal/pagination"
)

const (
	totalCountTTL = 60 * time.Second
	categoriesTTL = 5 * time.Minute
	categoriesKey = "categories"
)

// FeedService serves the ranked, paginated paper feed. All reads are pure:
// feed listing never mutates state and tolerates eventual consistency with
// concurrent engagement writes.
type FeedService struct {
	db     *database.MongoDB
	papers *mongo.Collection

	// memoizes page-mode total counts and the category list; ranked
	// results themselves are recomputed on every request
	cache *cache.Cache
}

// NewFeedService creates a new feed service
func NewFeedService(db *database.MongoDB) *FeedService {
	return &FeedService{
		db:     db,
		papers: db.Collection(database.CollectionPapers),
		cache:  cache.New(totalCountTTL, 5*time.Minute),
	}
}

// ListFeed returns one page of the feed under the requested sort mode.
// A cursor, when present, takes precedence over the page number and must
// have been built under the same sort mode.
func (s *FeedService) ListFeed(ctx context.Context, q *models.FeedQuery) (*models.FeedResponse, error) {
	if q.Cursor != "" {
		countFeedQuery(q.Sort, "cursor")
	} else {
		countFeedQuery(q.Sort, "page")
	}

	if q.Sort == models.SortTrending {
		tq := &models.TrendingQuery{
			WindowDays: models.DefaultTrendingWindow,
			Category:   q.Category,
			Page:       q.Page,
			Limit:      q.Limit,
			Cursor:     q.Cursor,
		}
		items, meta, err := s.trendingItems(ctx, tq)
		if err != nil {
			return nil, err
		}
		return &models.FeedResponse{
			Items:          items,
			Pagination:     meta,
			AppliedFilters: models.AppliedFilters{Category: q.Category, Sort: q.Sort},
		}, nil
	}

	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}

	findOpts := options.Find().SetSort(sortDoc(q.Sort))
	var items []models.Paper
	meta := models.PaginationMeta{Limit: q.Limit}

	if q.Cursor != "" {
		cur, err := pagination.Decode(q.Cursor, q.Sort)
		if err != nil {
			return nil, err
		}

		// fetch one extra row to learn whether another page exists
		findOpts.SetLimit(int64(q.Limit + 1))
		cursor, err := s.papers.Find(ctx, withCursorFilter(filter, q.Sort, cur), findOpts)
		if err != nil {
			return nil, storeErr("feed query", err)
		}
		if err := cursor.All(ctx, &items); err != nil {
			return nil, storeErr("feed decode", err)
		}

		if len(items) > q.Limit {
			items = items[:q.Limit]
			meta.HasMore = true
		}
		if meta.HasMore && len(items) > 0 {
			meta.NextCursor = pagination.Encode(q.Sort, &items[len(items)-1])
		}
	} else {
		total, err := s.totalCount(ctx, q.Category, filter)
		if err != nil {
			return nil, err
		}

		findOpts.SetSkip(int64((q.Page - 1) * q.Limit)).SetLimit(int64(q.Limit))
		cursor, err := s.papers.Find(ctx, filter, findOpts)
		if err != nil {
			return nil, storeErr("feed query", err)
		}
		if err := cursor.All(ctx, &items); err != nil {
			return nil, storeErr("feed decode", err)
		}

		meta.Page = q.Page
		meta.TotalCount = total
		meta.TotalPages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
		meta.HasMore = int64(q.Page*q.Limit) < total
	}

	if items == nil {
		items = []models.Paper{}
	}

	return &models.FeedResponse{
		Items:          items,
		Pagination:     meta,
		AppliedFilters: models.AppliedFilters{Category: q.Category, Sort: q.Sort},
	}, nil
}

// Trending returns one page of the trending ranking for an explicit window.
func (s *FeedService) Trending(ctx context.Context, q *models.TrendingQuery) (*models.TrendingResponse, error) {
	countFeedQuery(models.SortTrending, "window")

	items, meta, err := s.trendingItems(ctx, q)
	if err != nil {
		return nil, err
	}

	return &models.TrendingResponse{
		Items:      items,
		Pagination: meta,
		Meta:       models.TrendingMeta{WindowDays: q.WindowDays, Category: q.Category},
	}, nil
}

// trendingItems fetches the candidate window, ranks it, and slices out the
// requested page. The candidate set is bounded by the window (≤30 days), so
// ranking in memory stays proportional to that bound.
func (s *FeedService) trendingItems(ctx context.Context, q *models.TrendingQuery) ([]models.Paper, models.PaginationMeta, error) {
	now := time.Now().UTC()
	meta := models.PaginationMeta{Limit: q.Limit}

	since := now.Add(-time.Duration(q.WindowDays) * 24 * time.Hour)
	filter := bson.M{"created_at": bson.M{"$gte": since}}
	if q.Category != "" {
		filter["category"] = q.Category
	}

	cursor, err := s.papers.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}))
	if err != nil {
		return nil, meta, storeErr("trending query", err)
	}
	var candidates []models.Paper
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, meta, storeErr("trending decode", err)
	}

	rankTrending(candidates, now)

	var page []models.Paper
	if q.Cursor != "" {
		cur, err := pagination.Decode(q.Cursor, models.SortTrending)
		if err != nil {
			return nil, meta, err
		}

		rest := afterTrendingCursor(candidates, cur, now)
		if len(rest) > q.Limit {
			page = rest[:q.Limit]
			meta.HasMore = true
			meta.NextCursor = pagination.Encode(models.SortTrending, &page[len(page)-1])
		} else {
			page = rest
		}
	} else {
		total := int64(len(candidates))
		start := (q.Page - 1) * q.Limit
		if start < len(candidates) {
			end := start + q.Limit
			if end > len(candidates) {
				end = len(candidates)
			}
			page = candidates[start:end]
		}

		meta.Page = q.Page
		meta.TotalCount = total
		meta.TotalPages = int((total + int64(q.Limit) - 1) / int64(q.Limit))
		meta.HasMore = int64(q.Page*q.Limit) < total
	}

	if page == nil {
		page = []models.Paper{}
	}
	return page, meta, nil
}

// GetPaper fetches a single paper by its id
func (s *FeedService) GetPaper(ctx context.Context, id string) (*models.Paper, error) {
	oid, err := parsePaperID(id)
	if err != nil {
		return nil, err
	}

	var paper models.Paper
	err = s.papers.FindOne(ctx, bson.M{"_id": oid}).Decode(&paper)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPaperNotFound
	}
	if err != nil {
		return nil, storeErr("paper lookup", err)
	}

	return &paper, nil
}

// Categories returns the distinct category tags present in the feed,
// cached briefly since the set only changes when the scraper runs.
func (s *FeedService) Categories(ctx context.Context) ([]string, error) {
	if cached, ok := s.cache.Get(categoriesKey); ok {
		return cached.([]string), nil
	}

	raw, err := s.papers.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, storeErr("categories query", err)
	}

	categories := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			categories = append(categories, s)
		}
	}
	sort.Strings(categories)

	s.cache.Set(categoriesKey, categories, categoriesTTL)
	return categories, nil
}

// totalCount memoizes CountDocuments per category filter. Staleness up to
// the TTL only skews the page-mode totals, which tolerate eventual
// consistency anyway.
func (s *FeedService) totalCount(ctx context.Context, category string, filter bson.M) (int64, error) {
	key := fmt.Sprintf("count:%s", category)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(int64), nil
	}

	total, err := s.papers.CountDocuments(ctx, filter)
	if err != nil {
		return 0, storeErr("feed count", err)
	}

	s.cache.Set(key, total, totalCountTTL)
	return total, nil
}

// sortDoc returns the Mongo sort document for a non-trending sort mode.
// _id is always the last leg so duplicate sort values still order totally.
func sortDoc(sortMode string) bson.D {
	if sortMode == models.SortPopular {
		return bson.D{{Key: "likes_count", Value: -1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
	return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
}

// withCursorFilter narrows filter to rows strictly after the cursor
// position under the given sort mode. The branches mirror the sort legs so
// a page boundary in the middle of equal sort values resumes exactly where
// it left off.
func withCursorFilter(filter bson.M, sortMode string, cur *pagination.Cursor) bson.M {
	t := cur.CreatedTime()
	oid := cur.ObjectID()

	var or []bson.M
	switch sortMode {
	case models.SortPopular:
		or = []bson.M{
			{"likes_count": bson.M{"$lt": cur.LikesCount}},
			{"likes_count": cur.LikesCount, "created_at": bson.M{"$lt": t}},
			{"likes_count": cur.LikesCount, "created_at": t, "_id": bson.M{"$lt": oid}},
		}
	default: // newest
		or = []bson.M{
			{"created_at": bson.M{"$lt": t}},
			{"created_at": t, "_id": bson.M{"$lt": oid}},
		}
	}

	combined := bson.M{"$or": or}
	for k, v := range filter {
		combined[k] = v
	}
	return combined
}
