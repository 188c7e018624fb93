package availability

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"devloop/pkg/apperr"
)

const windowColumns = "id, mentor_id, start_at, end_at, state, created_at"

type SQLRepo struct {
	DB *sql.DB
}

func NewSQLRepo(db *sql.DB) *SQLRepo {
	return &SQLRepo{DB: db}
}

func (r *SQLRepo) Create(ctx context.Context, w *Window) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO availabilities ("+windowColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		w.ID, w.MentorID, w.Start.UTC(), w.End.UTC(), w.State, w.CreatedAt.UTC(),
	)
	return err
}

func (r *SQLRepo) GetByID(ctx context.Context, id string) (*Window, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+windowColumns+" FROM availabilities WHERE id = ?", id)
	w, err := scanWindow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("availability", id)
	}
	return w, err
}

func (r *SQLRepo) ListOpen(ctx context.Context) ([]*Window, error) {
	return r.list(ctx, "WHERE state = ?", StateOpen)
}

func (r *SQLRepo) ListOpenByMentor(ctx context.Context, mentorID string) ([]*Window, error) {
	return r.list(ctx, "WHERE mentor_id = ? AND state = ?", mentorID, StateOpen)
}

func (r *SQLRepo) list(ctx context.Context, where string, args ...any) ([]*Window, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+windowColumns+" FROM availabilities "+where+" ORDER BY seq", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	windows := make([]*Window, 0)
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	return windows, rows.Err()
}

func (r *SQLRepo) UpdateRange(ctx context.Context, id string, start, end time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE availabilities SET start_at = ?, end_at = ? WHERE id = ? AND state = ?",
		start.UTC(), end.UTC(), id, StateOpen,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFound("open availability", id)
	}
	return nil
}

// Delete removes an OPEN window. Consumed rows stay as the record of the
// booking; a missing row is not an error.
func (r *SQLRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM availabilities WHERE id = ? AND state = ?", id, StateOpen)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWindow(s scanner) (*Window, error) {
	var w Window
	if err := s.Scan(&w.ID, &w.MentorID, &w.Start, &w.End, &w.State, &w.CreatedAt); err != nil {
		return nil, err
	}
	return &w, nil
}
