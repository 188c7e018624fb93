package review

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devloop/pkg/apperr"
	"devloop/pkg/booking"
)

const (
	MinRating = 1
	MaxRating = 5
)

// SessionFinder looks up the session a review is attached to.
type SessionFinder interface {
	GetSessionByID(ctx context.Context, id string) (*booking.Session, error)
}

type ServiceInterface interface {
	Create(ctx context.Context, sessionID, reviewerID string, rating int, comment string) (*Review, error)
	GetBySession(ctx context.Context, sessionID string) ([]*Review, error)
	Update(ctx context.Context, id, requesterID string, rating int, comment string) (*Review, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type Service struct {
	Repo     Repository
	Sessions SessionFinder
	now      func() time.Time
}

func NewService(repo Repository, sessions SessionFinder) *Service {
	return &Service{Repo: repo, Sessions: sessions, now: time.Now}
}

func validRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d", apperr.ErrInvalidInput, MinRating, MaxRating)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, sessionID, reviewerID string, rating int, comment string) (*Review, error) {
	if err := validRating(rating); err != nil {
		return nil, err
	}
	if _, err := s.Sessions.GetSessionByID(ctx, sessionID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rev := &Review{
		SessionID:  sessionID,
		ReviewerID: reviewerID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, rev); err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *Service) GetBySession(ctx context.Context, sessionID string) ([]*Review, error) {
	return s.Repo.GetBySession(ctx, sessionID)
}

func (s *Service) Update(ctx context.Context, id, requesterID string, rating int, comment string) (*Review, error) {
	if err := s.authorize(ctx, id, requesterID); err != nil {
		return nil, err
	}
	if err := validRating(rating); err != nil {
		return nil, err
	}
	return s.Repo.Update(ctx, id, rating, strings.TrimSpace(comment), s.now().UTC())
}

func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	if err := s.authorize(ctx, id, requesterID); err != nil {
		return err
	}
	return s.Repo.Delete(ctx, id)
}

func (s *Service) authorize(ctx context.Context, id, requesterID string) error {
	rev, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return apperr.RequireOwner(requesterID, rev.ReviewerID)
}
