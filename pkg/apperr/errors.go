package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidRange    = errors.New("invalid time range")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrSlotUnavailable = errors.New("no availability for the requested time")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrConflict        = errors.New("already exists")
)

// RequireOwner is the single ownership check used by every mutating
// operation on an owned resource.
func RequireOwner(requesterID, ownerID string) error {
	if requesterID == "" || requesterID != ownerID {
		return fmt.Errorf("%w: requester %q is not the owner", ErrForbidden, requesterID)
	}
	return nil
}

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
