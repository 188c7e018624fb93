package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"devloop/pkg/apperr"
	"devloop/pkg/availability"
	"devloop/pkg/generator"
)

// Outcomes reported to the Observer for every booking attempt.
const (
	OutcomeBooked      = "booked"
	OutcomeNoSlot      = "no_slot"
	OutcomeLostRace    = "lost_race"
	OutcomeInvalid     = "invalid"
	OutcomeUnknownUser = "unknown_user"
	OutcomeError       = "error"
)

// Participants resolves the two sides of a booking. Both return an
// apperr.ErrNotFound wrapping error for unknown or wrong-role ids.
type Participants interface {
	MentorExists(ctx context.Context, id string) error
	MenteeExists(ctx context.Context, id string) error
}

type Observer interface {
	ObserveBooking(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveBooking(string, time.Duration) {}

type EngineInterface interface {
	FindOpenWindow(ctx context.Context, mentorID string, t time.Time) (*availability.Window, error)
	BookSession(ctx context.Context, mentorID, menteeID string, t time.Time, topic string) (*Session, error)
	GetAllSessions(ctx context.Context) ([]*Session, error)
	GetSessionByID(ctx context.Context, id string) (*Session, error)
	UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type Engine struct {
	Windows  availability.Repository
	Sessions Store
	Users    Participants
	Logger   *slog.Logger
	Observer Observer
	NewID    generator.IDFunc

	mentors *keyLock
	now     func() time.Time
}

func NewEngine(windows availability.Repository, sessions Store, users Participants, logger *slog.Logger) *Engine {
	return &Engine{
		Windows:  windows,
		Sessions: sessions,
		Users:    users,
		Logger:   logger,
		Observer: nopObserver{},
		NewID:    generator.NewID,
		mentors:  newKeyLock(),
		now:      time.Now,
	}
}

// FindOpenWindow returns the first OPEN window of the mentor, in insertion
// order, whose bounds include t.
func (e *Engine) FindOpenWindow(ctx context.Context, mentorID string, t time.Time) (*availability.Window, error) {
	windows, err := e.Windows.ListOpenByMentor(ctx, mentorID)
	if err != nil {
		return nil, err
	}
	if w := availability.FirstCovering(windows, t); w != nil {
		return w, nil
	}
	return nil, fmt.Errorf("open availability of mentor %q at %s: %w", mentorID, t.Format(time.RFC3339), apperr.ErrNotFound)
}

// BookSession matches t against the mentor's open windows and consumes the
// match while creating the session. Bookings for one mentor are serialised
// in-process; the store's conditional update covers other processes. A lost
// race is reported as ErrSlotUnavailable and never retried here.
func (e *Engine) BookSession(ctx context.Context, mentorID, menteeID string, t time.Time, topic string) (sess *Session, err error) {
	started := e.now()
	outcome := OutcomeError
	defer func() {
		e.Observer.ObserveBooking(outcome, e.now().Sub(started))
	}()

	if mentorID == "" || menteeID == "" || t.IsZero() {
		outcome = OutcomeInvalid
		return nil, fmt.Errorf("%w: mentor, mentee and scheduled time are required", apperr.ErrInvalidRange)
	}

	if err := e.Users.MentorExists(ctx, mentorID); err != nil {
		outcome = unknownUserOutcome(err)
		return nil, err
	}
	if err := e.Users.MenteeExists(ctx, menteeID); err != nil {
		outcome = unknownUserOutcome(err)
		return nil, err
	}

	unlock := e.mentors.Lock(mentorID)
	defer unlock()

	w, err := e.FindOpenWindow(ctx, mentorID, t)
	if errors.Is(err, apperr.ErrNotFound) {
		outcome = OutcomeNoSlot
		return nil, fmt.Errorf("mentor %q at %s: %w", mentorID, t.Format(time.RFC3339), apperr.ErrSlotUnavailable)
	}
	if err != nil {
		return nil, err
	}

	id, err := e.NewID()
	if err != nil {
		return nil, fmt.Errorf("session id gen error: %w", err)
	}
	now := e.now().UTC()
	sess = &Session{
		ID:            id,
		MentorID:      mentorID,
		MenteeID:      menteeID,
		WindowID:      w.ID,
		ScheduledTime: t.UTC(),
		Status:        StatusBooked,
		Topic:         topic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := e.Sessions.Book(ctx, w.ID, sess); err != nil {
		if errors.Is(err, ErrWindowTaken) {
			outcome = OutcomeLostRace
			e.Logger.Warn("booking lost race", "mentor", mentorID, "availability", w.ID)
			return nil, fmt.Errorf("availability %q: %w", w.ID, apperr.ErrSlotUnavailable)
		}
		return nil, err
	}

	outcome = OutcomeBooked
	e.Logger.Info("session booked", "session", sess.ID, "mentor", mentorID, "mentee", menteeID, "availability", w.ID)
	return sess, nil
}

func (e *Engine) GetAllSessions(ctx context.Context) ([]*Session, error) {
	return e.Sessions.GetAll(ctx)
}

func (e *Engine) GetSessionByID(ctx context.Context, id string) (*Session, error) {
	return e.Sessions.GetByID(ctx, id)
}

func (e *Engine) UpdateSession(ctx context.Context, id string, patch SessionPatch) (*Session, error) {
	sess, err := e.Sessions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return nil, fmt.Errorf("%w: unknown session status %q", apperr.ErrInvalidInput, *patch.Status)
		}
		sess.Status = *patch.Status
	}
	if patch.Topic != nil {
		sess.Topic = *patch.Topic
	}
	sess.UpdatedAt = e.now().UTC()

	if err := e.Sessions.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (e *Engine) DeleteSession(ctx context.Context, id string) error {
	if err := e.Sessions.Delete(ctx, id); err != nil {
		return err
	}
	e.Logger.Info("session deleted", "session", id)
	return nil
}

func unknownUserOutcome(err error) string {
	if errors.Is(err, apperr.ErrNotFound) {
		return OutcomeUnknownUser
	}
	return OutcomeError
}
