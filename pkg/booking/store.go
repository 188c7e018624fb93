package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"devloop/pkg/apperr"
	"devloop/pkg/availability"
)

const sessionColumns = "id, mentor_id, mentee_id, availability_id, scheduled_time, status, topic, created_at, updated_at"

type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// Book flips the window from OPEN to CONSUMED with a conditional update
// and inserts the session inside the same transaction. The update also
// requires the window to still cover the scheduled time. Zero affected rows
// means another booking got there first or the window was moved.
func (s *SQLStore) Book(ctx context.Context, windowID string, sess *Session) (err error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE availabilities SET state = ? WHERE id = ? AND state = ? AND start_at <= ? AND end_at >= ?",
		availability.StateConsumed, windowID, availability.StateOpen,
		sess.ScheduledTime.UTC(), sess.ScheduledTime.UTC(),
	)
	if err != nil {
		return fmt.Errorf("consume window %s: %w", windowID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n != 1 {
		return ErrWindowTaken
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions ("+sessionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		sess.ID, sess.MentorID, sess.MenteeID, windowID, sess.ScheduledTime.UTC(),
		sess.Status, sess.Topic, sess.CreatedAt.UTC(), sess.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking tx: %w", err)
	}
	return nil
}

func (s *SQLStore) GetByID(ctx context.Context, id string) (*Session, error) {
	row := s.DB.QueryRowContext(ctx, "SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("session", id)
	}
	return sess, err
}

func (s *SQLStore) GetAll(ctx context.Context) ([]*Session, error) {
	rows, err := s.DB.QueryContext(ctx, "SELECT "+sessionColumns+" FROM sessions ORDER BY scheduled_time, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*Session, 0)
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func (s *SQLStore) Update(ctx context.Context, sess *Session) error {
	res, err := s.DB.ExecContext(ctx,
		"UPDATE sessions SET status = ?, topic = ?, updated_at = ? WHERE id = ?",
		sess.Status, sess.Topic, sess.UpdatedAt.UTC(), sess.ID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res, sess.ID)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return expectOneRow(res, id)
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("session", id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*Session, error) {
	var s Session
	err := sc.Scan(&s.ID, &s.MentorID, &s.MenteeID, &s.WindowID, &s.ScheduledTime,
		&s.Status, &s.Topic, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
