package availability

import (
	"context"
	"time"
)

type State string

const (
	StateOpen     State = "OPEN"
	StateConsumed State = "CONSUMED"
)

// Window is one bookable interval published by a mentor. Once a booking
// consumes it the window never becomes OPEN again.
type Window struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentorId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"endTime"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

// Covers reports whether t lies inside the window, both ends inclusive.
func (w *Window) Covers(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

func (w *Window) IsOpen() bool { return w.State == StateOpen }

// FirstCovering returns the first window in the given order that covers t.
// Overlapping windows are not merged; the earliest inserted one wins.
func FirstCovering(windows []*Window, t time.Time) *Window {
	for _, w := range windows {
		if w.IsOpen() && w.Covers(t) {
			return w
		}
	}
	return nil
}

// Repository persists windows. List methods return OPEN windows only,
// in insertion order. GetByID returns the window in any state.
type Repository interface {
	Create(ctx context.Context, w *Window) error
	GetByID(ctx context.Context, id string) (*Window, error)
	ListOpen(ctx context.Context) ([]*Window, error)
	ListOpenByMentor(ctx context.Context, mentorID string) ([]*Window, error)
	// UpdateRange changes start/end only while the window is still OPEN.
	UpdateRange(ctx context.Context, id string, start, end time.Time) error
	Delete(ctx context.Context, id string) error
}
