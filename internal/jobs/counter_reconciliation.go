package jobs

import (
	"context"
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

// CounterReconciliationJob recounts active ledger entries per paper and
// repairs any drift in the denormalized likes/views counters. The ledger is
// the source of truth; this job makes the "no permanent drift" invariant
// hold even on deployments that cannot couple the ledger write and the
// counter update in one transaction.
type CounterReconciliationJob struct {
	papers      *mongo.Collection
	engagements *mongo.Collection
	interval    time.Duration

	// onRepair is invoked with the counter name for each correction;
	// wired to metrics by the caller, nil-safe
	onRepair func(counter string, n int)
}

// NewCounterReconciliationJob creates the reconciliation job
func NewCounterReconciliationJob(db *database.MongoDB, interval time.Duration, onRepair func(counter string, n int)) *CounterReconciliationJob {
	return &CounterReconciliationJob{
		papers:      db.Collection(database.CollectionPapers),
		engagements: db.Collection(database.CollectionEngagements),
		interval:    interval,
		onRepair:    onRepair,
	}
}

func (j *CounterReconciliationJob) Name() string            { return "counter-reconciliation" }
func (j *CounterReconciliationJob) Interval() time.Duration { return j.interval }

// ledgerCounts holds the recounted totals for one paper
type ledgerCounts struct {
	likes int64
	views int64
}

// Run recounts the ledger and repairs mismatched counters.
//
// A like that lands between the recount and the repair can make a counter
// look stale for one cycle; the next run converges. That transient is
// acceptable for a feed that already tolerates eventually consistent reads.
func (j *CounterReconciliationJob) Run(ctx context.Context) error {
	log.Println("[RECONCILE] Recounting engagement ledger...")

	counts, err := j.recountLedger(ctx)
	if err != nil {
		return fmt.Errorf("ledger recount failed: %w", err)
	}

	cursor, err := j.papers.Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"likes_count": 1, "views_count": 1}))
	if err != nil {
		return fmt.Errorf("papers scan failed: %w", err)
	}
	defer cursor.Close(ctx)

	likesFixed, viewsFixed := 0, 0
	for cursor.Next(ctx) {
		var paper models.Paper
		if err := cursor.Decode(&paper); err != nil {
			return fmt.Errorf("paper decode failed: %w", err)
		}

		want := counts[paper.ID]
		set := bson.M{}
		if paper.LikesCount != want.likes {
			set["likes_count"] = want.likes
			likesFixed++
		}
		if paper.ViewsCount != want.views {
			set["views_count"] = want.views
			viewsFixed++
		}
		if len(set) == 0 {
			continue
		}

		if _, err := j.papers.UpdateOne(ctx, bson.M{"_id": paper.ID}, bson.M{"$set": set}); err != nil {
			return fmt.Errorf("counter repair for %s failed: %w", paper.ID.Hex(), err)
		}
		log.Printf("[RECONCILE] Repaired %s: likes %d→%d, views %d→%d",
			paper.ID.Hex(), paper.LikesCount, want.likes, paper.ViewsCount, want.views)
	}
	if err := cursor.Err(); err != nil {
		return fmt.Errorf("papers scan failed: %w", err)
	}

	if j.onRepair != nil {
		j.onRepair("likes_count", likesFixed)
		j.onRepair("views_count", viewsFixed)
	}

	log.Printf("[RECONCILE] Done: %d likes counters and %d views counters repaired", likesFixed, viewsFixed)
	return nil
}

// recountLedger aggregates active like and view entries per paper
func (j *CounterReconciliationJob) recountLedger(ctx context.Context) (map[primitive.ObjectID]ledgerCounts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"type": bson.M{"$in": []string{models.EngagementLike, models.EngagementView}},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"paper": "$paper_id", "type": "$type"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := j.engagements.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := make(map[primitive.ObjectID]ledgerCounts)
	for cursor.Next(ctx) {
		var row struct {
			ID struct {
				Paper primitive.ObjectID `bson:"paper"`
				Type  string             `bson:"type"`
			} `bson:"_id"`
			Count int64 `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}

		c := counts[row.ID.Paper]
		switch row.ID.Type {
		case models.EngagementLike:
			c.likes = row.Count
		case models.EngagementView:
			c.views = row.Count
		}
		counts[row.ID.Paper] = c
	}

	return counts, cursor.Err()
}
