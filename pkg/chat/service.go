package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devloop/pkg/apperr"
	"devloop/pkg/booking"
)

var ErrEmptyMessage = fmt.Errorf("%w: message content is required", apperr.ErrInvalidInput)

type SessionFinder interface {
	GetSessionByID(ctx context.Context, id string) (*booking.Session, error)
}

type Broadcaster interface {
	Broadcast(m *Message)
}

type ServiceInterface interface {
	Send(ctx context.Context, sessionID, senderID, content string) (*Message, error)
	History(ctx context.Context, sessionID, requesterID string) ([]*Message, error)
	Authorize(ctx context.Context, sessionID, userID string) error
}

type Service struct {
	Repo     Repository
	Sessions SessionFinder
	Hub      Broadcaster
	now      func() time.Time
}

func NewService(repo Repository, sessions SessionFinder, hub Broadcaster) *Service {
	return &Service{Repo: repo, Sessions: sessions, Hub: hub, now: time.Now}
}

// Authorize reports whether userID takes part in the session.
func (s *Service) Authorize(ctx context.Context, sessionID, userID string) error {
	sess, err := s.Sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.HasParticipant(userID) {
		return fmt.Errorf("%w: not a participant of session %q", apperr.ErrForbidden, sessionID)
	}
	return nil
}

func (s *Service) Send(ctx context.Context, sessionID, senderID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.Authorize(ctx, sessionID, senderID); err != nil {
		return nil, err
	}

	m := &Message{
		SessionID: sessionID,
		SenderID:  senderID,
		Content:   content,
		SentAt:    s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.Hub.Broadcast(m)
	return m, nil
}

func (s *Service) History(ctx context.Context, sessionID, requesterID string) ([]*Message, error) {
	if err := s.Authorize(ctx, sessionID, requesterID); err != nil {
		return nil, err
	}
	return s.Repo.History(ctx, sessionID)
}
