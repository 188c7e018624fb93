package booking

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Session is a booked mentoring engagement. WindowID names the
// availability window its booking consumed.
type Session struct {
	ID            string    `json:"id"`
	MentorID      string    `json:"mentorId"`
	MenteeID      string    `json:"menteeId"`
	WindowID      string    `json:"availabilityId"`
	ScheduledTime time.Time `json:"scheduledTime"`
	Status        Status    `json:"status"`
	Topic         string    `json:"topic,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Session) HasParticipant(userID string) bool {
	return userID != "" && (userID == s.MentorID || userID == s.MenteeID)
}

// SessionPatch holds the mutable fields of a session; nil means unchanged.
type SessionPatch struct {
	Status *Status
	Topic  *string
}

// ErrWindowTaken is returned by Store.Book when the window was no longer
// OPEN, or no longer covered the scheduled time, at the moment of consumption.
var ErrWindowTaken = errors.New("availability window no longer open at scheduled time")

type Store interface {
	// Book consumes the OPEN window covering s.ScheduledTime and inserts s
	// in one atomic unit.
	Book(ctx context.Context, windowID string, s *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	GetAll(ctx context.Context) ([]*Session, error)
	Update(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}
