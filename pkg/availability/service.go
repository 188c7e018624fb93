package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devloop/pkg/apperr"
	"devloop/pkg/generator"
)

// MentorLookup resolves a mentor id; it returns an apperr.ErrNotFound
// wrapping error for unknown ids.
type MentorLookup interface {
	MentorExists(ctx context.Context, id string) error
}

type ServiceInterface interface {
	Publish(ctx context.Context, mentorID string, start, end time.Time) (*Window, error)
	List(ctx context.Context, mentorID string) ([]*Window, error)
	Update(ctx context.Context, id, requesterID string, start, end time.Time) (*Window, error)
	Delete(ctx context.Context, id, requesterID string) error
}

type Service struct {
	Repo    Repository
	Mentors MentorLookup
	Logger  *slog.Logger
	NewID   generator.IDFunc
	now     func() time.Time
}

func NewService(repo Repository, mentors MentorLookup, logger *slog.Logger) *Service {
	return &Service{
		Repo:    repo,
		Mentors: mentors,
		Logger:  logger,
		NewID:   generator.NewID,
		now:     time.Now,
	}
}

func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return fmt.Errorf("%w: start must be before end", apperr.ErrInvalidRange)
	}
	return nil
}

// Publish inserts a new OPEN window. Overlap with the mentor's other
// windows is allowed.
func (s *Service) Publish(ctx context.Context, mentorID string, start, end time.Time) (*Window, error) {
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	id, err := s.NewID()
	if err != nil {
		return nil, fmt.Errorf("availability id gen error: %w", err)
	}

	w := &Window{
		ID:        id,
		MentorID:  mentorID,
		Start:     start.UTC(),
		End:       end.UTC(),
		State:     StateOpen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, w); err != nil {
		return nil, err
	}

	s.Logger.Info("availability published", "mentor", mentorID, "availability", id)
	return w, nil
}

func (s *Service) List(ctx context.Context, mentorID string) ([]*Window, error) {
	if mentorID == "" {
		return s.Repo.ListOpen(ctx)
	}
	if err := s.Mentors.MentorExists(ctx, mentorID); err != nil {
		return nil, err
	}
	return s.Repo.ListOpenByMentor(ctx, mentorID)
}

// Update checks ownership before looking at the new range.
func (s *Service) Update(ctx context.Context, id, requesterID string, start, end time.Time) (*Window, error) {
	w, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apperr.RequireOwner(requesterID, w.MentorID); err != nil {
		return nil, err
	}
	if !w.IsOpen() {
		return nil, apperr.NotFound("open availability", id)
	}
	if err := ValidateRange(start, end); err != nil {
		return nil, err
	}

	if err := s.Repo.UpdateRange(ctx, id, start, end); err != nil {
		return nil, err
	}
	w.Start, w.End = start.UTC(), end.UTC()

	s.Logger.Info("availability updated", "mentor", requesterID, "availability", id)
	return w, nil
}

// Delete removes an OPEN window. Deleting a consumed or already removed
// window succeeds without doing anything.
func (s *Service) Delete(ctx context.Context, id, requesterID string) error {
	w, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := apperr.RequireOwner(requesterID, w.MentorID); err != nil {
		return err
	}
	if !w.IsOpen() {
		return nil
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}

	s.Logger.Info("availability deleted", "mentor", requesterID, "availability", id)
	return nil
}
