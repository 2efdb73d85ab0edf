package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brainscroll/internal/database"
	"brainscroll/internal/models"
)

// DefaultViewWindow is the sliding dedup window for view counting: repeat
// views of the same paper by the same session inside the window collapse
// into a single counted effect. A throttle, not a permanent dedup.
const DefaultViewWindow = time.Hour

// EngagementService records like/unlike/view/bookmark/share events in the
// engagement ledger and maintains the denormalized counters on papers.
//
// Idempotency is anchored in the store, not in application reads: the
// partial unique index on (paper_id, session_id, type) decides "already
// liked" even under concurrent identical requests. Counter mutation is
// always an atomic $inc / pipeline update, never read-modify-write.
type EngagementService struct {
	db          *database.MongoDB
	papers      *mongo.Collection
	engagements *mongo.Collection
	redis       *RedisService // optional fast path for the view window

	// useTransactions couples the ledger write and the counter update
	// into one commit. Requires a replica set; standalone deployments run
	// sequentially and rely on the reconciliation job to heal drift.
	useTransactions bool
	viewWindow      time.Duration
}

// NewEngagementService creates a new engagement service. redis may be nil.
func NewEngagementService(db *database.MongoDB, redis *RedisService, useTransactions bool, viewWindow time.Duration) *EngagementService {
	if viewWindow <= 0 {
		viewWindow = DefaultViewWindow
	}
	return &EngagementService{
		db:              db,
		papers:          db.Collection(database.CollectionPapers),
		engagements:     db.Collection(database.CollectionEngagements),
		redis:           redis,
		useTransactions: useTransactions,
		viewWindow:      viewWindow,
	}
}

// Like records a like for (paper, session). Liking twice is a normalized
// no-op success: the counter moves by exactly one no matter how many
// identical requests arrive, sequentially or concurrently.
func (s *EngagementService) Like(ctx context.Context, paperID, sessionID string) (*models.LikeResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	entry := models.Engagement{
		PaperID:   oid,
		SessionID: sessionID,
		Type:      models.EngagementLike,
		CreatedAt: time.Now().UTC(),
	}

	likes, err := s.recordAndCount(ctx, entry, "likes_count")
	if mongo.IsDuplicateKeyError(err) {
		// already liked: the unique index won the race for us
		countEngagement(models.EngagementLike, "duplicate")
		likes, err = s.currentCount(ctx, oid, "likes_count")
		if err != nil {
			return nil, err
		}
		return &models.LikeResponse{Liked: true, LikesCount: likes}, nil
	}
	if err != nil {
		return nil, err
	}

	countEngagement(models.EngagementLike, "recorded")
	return &models.LikeResponse{Liked: true, LikesCount: likes}, nil
}

// Unlike removes the active like for (paper, session). Removing a like that
// does not exist is a no-op, not an error; the counter only moves when a
// ledger entry was actually deleted, and never below zero.
func (s *EngagementService) Unlike(ctx context.Context, paperID, sessionID string) (*models.LikeResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	filter := bson.M{"paper_id": oid, "session_id": sessionID, "type": models.EngagementLike}

	var likes int64
	removeAndDec := func(c context.Context) error {
		res, err := s.engagements.DeleteOne(c, filter)
		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			countEngagement(models.EngagementLike, "noop")
			likes, err = s.currentCount(c, oid, "likes_count")
			return err
		}
		countEngagement(models.EngagementLike, "removed")
		likes, err = s.incCounter(c, oid, "likes_count", -1)
		return err
	}

	if s.useTransactions {
		err = s.db.WithTransaction(ctx, func(sc mongo.SessionContext) error {
			return removeAndDec(sc)
		})
	} else {
		err = removeAndDec(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrPaperNotFound) || errors.Is(err, ErrStoreUnavailable) {
			return nil, err
		}
		return nil, storeErr("unlike", err)
	}

	return &models.LikeResponse{Liked: false, LikesCount: likes}, nil
}

// View records a view for (paper, session). Inside the sliding dedup window
// the call is acknowledged but neither a ledger entry nor an increment is
// produced; outside it, both are.
func (s *EngagementService) View(ctx context.Context, paperID, sessionID string) (*models.ViewResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	throttled, err := s.viewThrottled(ctx, oid, sessionID, now)
	if err != nil {
		return nil, err
	}
	if throttled {
		countEngagement(models.EngagementView, "throttled")
		return &models.ViewResponse{Acknowledged: true}, nil
	}

	entry := models.Engagement{
		PaperID:   oid,
		SessionID: sessionID,
		Type:      models.EngagementView,
		CreatedAt: now,
	}
	if _, err := s.recordAndCount(ctx, entry, "views_count"); err != nil {
		// release the fast-path hold so a retry is not silently swallowed
		if s.redis != nil {
			_ = s.redis.Delete(ctx, viewKey(oid, sessionID))
		}
		return nil, err
	}

	countEngagement(models.EngagementView, "recorded")
	return &models.ViewResponse{Acknowledged: true}, nil
}

// Bookmark records a bookmark ledger entry for (paper, session). Ledger
// only, no denormalized counter; duplicates are no-op successes.
func (s *EngagementService) Bookmark(ctx context.Context, paperID, sessionID string) (*models.BookmarkResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	entry := models.Engagement{
		PaperID:   oid,
		SessionID: sessionID,
		Type:      models.EngagementBookmark,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.engagements.InsertOne(ctx, entry)
	if mongo.IsDuplicateKeyError(err) {
		countEngagement(models.EngagementBookmark, "duplicate")
		return &models.BookmarkResponse{Bookmarked: true}, nil
	}
	if err != nil {
		return nil, storeErr("bookmark insert", err)
	}

	countEngagement(models.EngagementBookmark, "recorded")
	return &models.BookmarkResponse{Bookmarked: true}, nil
}

// Unbookmark removes the bookmark for (paper, session); removing a missing
// bookmark is a no-op.
func (s *EngagementService) Unbookmark(ctx context.Context, paperID, sessionID string) (*models.BookmarkResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	res, err := s.engagements.DeleteOne(ctx, bson.M{"paper_id": oid, "session_id": sessionID, "type": models.EngagementBookmark})
	if err != nil {
		return nil, storeErr("bookmark delete", err)
	}
	if res.DeletedCount == 1 {
		countEngagement(models.EngagementBookmark, "removed")
	} else {
		countEngagement(models.EngagementBookmark, "noop")
	}

	return &models.BookmarkResponse{Bookmarked: false}, nil
}

// Share appends a share ledger entry. Shares are neither deduplicated nor
// counted on the paper; the ledger is the record.
func (s *EngagementService) Share(ctx context.Context, paperID, sessionID string) (*models.ViewResponse, error) {
	oid, err := s.validate(paperID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, oid); err != nil {
		return nil, err
	}

	entry := models.Engagement{
		PaperID:   oid,
		SessionID: sessionID,
		Type:      models.EngagementShare,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.engagements.InsertOne(ctx, entry); err != nil {
		return nil, storeErr("share insert", err)
	}

	countEngagement(models.EngagementShare, "recorded")
	return &models.ViewResponse{Acknowledged: true}, nil
}

// validate checks the request shape before any mutation happens
func (s *EngagementService) validate(paperID, sessionID string) (primitive.ObjectID, error) {
	if sessionID == "" {
		return primitive.NilObjectID, ErrSessionRequired
	}
	return parsePaperID(paperID)
}

// ensureExists verifies the paper exists so validation failures leave no
// side effects.
func (s *EngagementService) ensureExists(ctx context.Context, oid primitive.ObjectID) error {
	err := s.papers.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrPaperNotFound
	}
	if err != nil {
		return storeErr("paper lookup", err)
	}
	return nil
}

// recordAndCount inserts a ledger entry and bumps the named counter by one.
// With transactions enabled both writes commit together or not at all; the
// sequential path compensates by deleting the entry when the counter write
// fails, and the reconciliation job covers the crash window in between.
func (s *EngagementService) recordAndCount(ctx context.Context, entry models.Engagement, counter string) (int64, error) {
	var count int64

	if s.useTransactions {
		err := s.db.WithTransaction(ctx, func(sc mongo.SessionContext) error {
			if _, err := s.engagements.InsertOne(sc, entry); err != nil {
				return err
			}
			var err error
			count, err = s.incCounter(sc, entry.PaperID, counter, 1)
			return err
		})
		if err != nil && !mongo.IsDuplicateKeyError(err) && !errors.Is(err, ErrPaperNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			return 0, storeErr("engagement commit", err)
		}
		return count, err
	}

	res, err := s.engagements.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return 0, err
		}
		return 0, storeErr("engagement insert", err)
	}

	count, err = s.incCounter(ctx, entry.PaperID, counter, 1)
	if err != nil {
		if _, delErr := s.engagements.DeleteOne(ctx, bson.M{"_id": res.InsertedID}); delErr != nil {
			log.Printf("⚠️ Failed to compensate ledger entry %v after counter failure: %v (reconciliation will heal)", res.InsertedID, delErr)
		}
		return 0, err
	}

	return count, nil
}

// incCounter atomically moves a paper counter by delta and returns the new
// value. Decrements go through a pipeline update so the counter is
// floor-clamped at zero server-side, never in application code.
func (s *EngagementService) incCounter(ctx context.Context, oid primitive.ObjectID, field string, delta int64) (int64, error) {
	var update interface{}
	if delta >= 0 {
		update = bson.M{"$inc": bson.M{field: delta}}
	} else {
		update = bson.A{bson.M{"$set": bson.M{
			field: bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{"$" + field, -delta}}}},
		}}}
	}

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{field: 1})

	var doc bson.M
	err := s.papers.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrPaperNotFound
	}
	if err != nil {
		return 0, storeErr("counter update", err)
	}

	return counterValue(doc, field), nil
}

// currentCount reads a paper counter without mutating it
func (s *EngagementService) currentCount(ctx context.Context, oid primitive.ObjectID, field string) (int64, error) {
	var doc bson.M
	err := s.papers.FindOne(ctx, bson.M{"_id": oid}, options.FindOne().SetProjection(bson.M{field: 1})).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrPaperNotFound
	}
	if err != nil {
		return 0, storeErr("counter read", err)
	}
	return counterValue(doc, field), nil
}

// viewThrottled reports whether a view for (paper, session) falls inside
// the dedup window. Redis SetNX with the window as TTL is the fast path;
// when Redis is absent or failing, the latest view ledger entry decides.
func (s *EngagementService) viewThrottled(ctx context.Context, oid primitive.ObjectID, sessionID string, now time.Time) (bool, error) {
	if s.redis != nil {
		won, err := s.redis.SetNX(ctx, viewKey(oid, sessionID), 1, s.viewWindow)
		if err == nil {
			return !won, nil
		}
		log.Printf("⚠️ Redis view-window check failed, falling back to ledger: %v", err)
	}

	err := s.engagements.FindOne(ctx, bson.M{
		"paper_id":   oid,
		"session_id": sessionID,
		"type":       models.EngagementView,
		"created_at": bson.M{"$gt": now.Add(-s.viewWindow)},
	}, options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, storeErr("view window lookup", err)
	}
	return true, nil
}

func viewKey(oid primitive.ObjectID, sessionID string) string {
	return fmt.Sprintf("view:%s:%s", oid.Hex(), sessionID)
}

// counterValue tolerates the int32/int64 ambiguity of numbers written by
// the Python scraper.
func counterValue(doc bson.M, field string) int64 {
	switch v := doc[field].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
