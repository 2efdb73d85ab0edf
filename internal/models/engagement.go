package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Engagement types recorded in the ledger
const (
	EngagementLike     = "like"
	EngagementView     = "view"
	EngagementShare    = "share"
	EngagementBookmark = "bookmark"
)

// Engagement is a single ledger entry recording an interaction against a
// paper. The session ID is an opaque caller-supplied correlation key, not a
// user identity. Like and bookmark entries are unique per
// (paper_id, session_id, type); view and share entries can repeat.
type Engagement struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaperID   primitive.ObjectID `bson:"paper_id" json:"paper_id"`
	SessionID string             `bson:"session_id" json:"session_id"`
	Type      string             `bson:"type" json:"type"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// EngagementRequest is the body for all engagement endpoints
type EngagementRequest struct {
	SessionID string `json:"sessionId"`
}

// LikeResponse is returned by like and unlike
type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// ViewResponse is returned by view and share
type ViewResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

// BookmarkResponse is returned by bookmark and unbookmark
type BookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}
