package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Paper is a single content record in the feed. Documents are written by the
// scraper pipeline; this service only reads them and mutates the two
// denormalized counters. Field names follow the existing collection schema.
type Paper struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ArxivID       string             `bson:"arxiv_id" json:"arxiv_id"`
	Title         string             `bson:"title" json:"title"`
	Authors       []string           `bson:"authors" json:"authors"`
	Abstract      string             `bson:"abstract" json:"abstract"`
	Summary       *string            `bson:"summary,omitempty" json:"summary,omitempty"`             // set by the summarization pipeline, nil until processed
	WhyItMatters  *string            `bson:"why_it_matters,omitempty" json:"why_it_matters,omitempty"`
	Category      string             `bson:"category" json:"category"`
	PublishedDate *time.Time         `bson:"published_date,omitempty" json:"published_date,omitempty"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	LikesCount    int64              `bson:"likes_count" json:"likes_count"`
	ViewsCount    int64              `bson:"views_count" json:"views_count"`
}
