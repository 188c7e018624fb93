package authsession

import (
	"context"
	"time"
)

// Session is a login session backing an issued token. A token is only
// accepted while its user has at least one unexpired session.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Repository interface {
	Create(ctx context.Context, userID, sessionID string) (string, error)
	IsValid(ctx context.Context, userID string) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}
