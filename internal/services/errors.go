package services

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sentinel errors surfaced to handlers. Everything else a service returns is
// an infra failure wrapped in ErrStoreUnavailable (retryable by the caller).
var (
	ErrPaperNotFound    = errors.New("paper not found")
	ErrInvalidPaperID   = errors.New("invalid paper id")
	ErrSessionRequired  = errors.New("session id is required")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeErr wraps a storage failure so handlers can map it to a retryable
// status without string matching.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}

// parsePaperID validates the opaque paper id from the request path
func parsePaperID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidPaperID, id)
	}
	return oid, nil
}
