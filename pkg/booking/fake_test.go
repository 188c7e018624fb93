package booking_test

import (
	"context"
	"sync"
	"time"

	"devloop/pkg/apperr"
	"devloop/pkg/availability"
	"devloop/pkg/booking"
)

// memStore keeps windows and sessions in memory and implements the same
// conditional consume as the SQL store: OPEN and still covering the time.
type memStore struct {
	mu       sync.Mutex
	windows  []*availability.Window
	sessions map[string]*booking.Session

	// beforeBook runs outside the lock; tests use it to widen race windows.
	beforeBook func()
}

func newMemStore(windows ...*availability.Window) *memStore {
	return &memStore{windows: windows, sessions: make(map[string]*booking.Session)}
}

func (m *memStore) Create(ctx context.Context, w *availability.Window) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *w
	m.windows = append(m.windows, &cp)
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*availability.Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.ID == id {
			cp := *w
			return &cp, nil
		}
	}
	return nil, apperr.NotFound("availability", id)
}

func (m *memStore) ListOpen(ctx context.Context) ([]*availability.Window, error) {
	return m.ListOpenByMentor(ctx, "")
}

func (m *memStore) ListOpenByMentor(ctx context.Context, mentorID string) ([]*availability.Window, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*availability.Window, 0)
	for _, w := range m.windows {
		if w.IsOpen() && (mentorID == "" || w.MentorID == mentorID) {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) UpdateRange(ctx context.Context, id string, start, end time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.ID == id && w.IsOpen() {
			w.Start, w.End = start, end
			return nil
		}
	}
	return apperr.NotFound("open availability", id)
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.windows {
		if w.ID == id && w.IsOpen() {
			m.windows = append(m.windows[:i], m.windows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memStore) Book(ctx context.Context, windowID string, s *booking.Session) error {
	if m.beforeBook != nil {
		m.beforeBook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range m.windows {
		if w.ID == windowID && w.IsOpen() && w.Covers(s.ScheduledTime) {
			w.State = availability.StateConsumed
			cp := *s
			m.sessions[s.ID] = &cp
			return nil
		}
	}
	return booking.ErrWindowTaken
}

func (m *memStore) SessionGet(ctx context.Context, id string) (*booking.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, apperr.NotFound("session", id)
}

func (m *memStore) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// sessionStore adapts memStore to booking.Store; GetByID clashes with
// the availability repository method of the same name.
type sessionStore struct{ *memStore }

func (s sessionStore) GetByID(ctx context.Context, id string) (*booking.Session, error) {
	return s.SessionGet(ctx, id)
}

func (s sessionStore) GetAll(ctx context.Context) ([]*booking.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*booking.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		cp := *sess
		out = append(out, &cp)
	}
	return out, nil
}

func (s sessionStore) Update(ctx context.Context, sess *booking.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return apperr.NotFound("session", sess.ID)
	}
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s sessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return apperr.NotFound("session", id)
	}
	delete(s.sessions, id)
	return nil
}

type participants struct {
	mentors map[string]bool
	mentees map[string]bool
}

func (p participants) MentorExists(ctx context.Context, id string) error {
	if p.mentors[id] {
		return nil
	}
	return apperr.NotFound("mentor", id)
}

func (p participants) MenteeExists(ctx context.Context, id string) error {
	if p.mentees[id] {
		return nil
	}
	return apperr.NotFound("mentee", id)
}

var defaultParticipants = participants{
	mentors: map[string]bool{"M": true},
	mentees: map[string]bool{"A": true, "B": true},
}
