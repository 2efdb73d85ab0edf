package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brainscroll/internal/models"
)

// ErrInvalidCursor is returned for tokens that are malformed, truncated, or
// built under a different sort mode than the one requested.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor carries the sort-key tuple of the last item returned, enough to
// resume a scan under the same sort mode. Tokens are opaque to callers and
// never outlive a single pagination round-trip logically.
type Cursor struct {
	Sort       string `json:"s"`
	CreatedAt  int64  `json:"t"` // unix milliseconds
	LikesCount int64  `json:"l,omitempty"`
	ViewsCount int64  `json:"v,omitempty"` // trending resumes need both counters to recompute the score
	ID         string `json:"id"`          // tie-break, ObjectID hex
}

// Encode builds an opaque continuation token from the last item of a page.
// Only the fields the sort mode needs are serialized: newest carries just
// the timestamp and tie-break id, popular adds likes, trending adds views.
func Encode(sort string, p *models.Paper) string {
	c := Cursor{
		Sort:      sort,
		CreatedAt: p.CreatedAt.UnixMilli(),
		ID:        p.ID.Hex(),
	}
	switch sort {
	case models.SortPopular:
		c.LikesCount = p.LikesCount
	case models.SortTrending:
		c.LikesCount = p.LikesCount
		c.ViewsCount = p.ViewsCount
	}
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a continuation token and verifies it was built under the
// expected sort mode.
func Decode(token, expectedSort string) (*Cursor, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: not base64", ErrInvalidCursor)
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: not a cursor payload", ErrInvalidCursor)
	}

	if !models.ValidSort(c.Sort) {
		return nil, fmt.Errorf("%w: unknown sort mode %q", ErrInvalidCursor, c.Sort)
	}
	if c.Sort != expectedSort {
		return nil, fmt.Errorf("%w: cursor built for sort %q, request uses %q", ErrInvalidCursor, c.Sort, expectedSort)
	}
	if _, err := primitive.ObjectIDFromHex(c.ID); err != nil {
		return nil, fmt.Errorf("%w: bad tie-break id", ErrInvalidCursor)
	}
	if c.CreatedAt <= 0 {
		return nil, fmt.Errorf("%w: bad timestamp", ErrInvalidCursor)
	}

	return &c, nil
}

// ObjectID returns the tie-break id. Decode already validated the hex form.
func (c *Cursor) ObjectID() primitive.ObjectID {
	oid, _ := primitive.ObjectIDFromHex(c.ID)
	return oid
}

// CreatedTime returns the cursor timestamp as a time.Time
func (c *Cursor) CreatedTime() time.Time {
	return time.UnixMilli(c.CreatedAt).UTC()
}
