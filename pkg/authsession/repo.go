package authsession

import (
	"context"
	"database/sql"
	"time"
)

type SQLRepo struct {
	DB  *sql.DB
	TTL time.Duration
	now func() time.Time
}

func NewSQLRepo(db *sql.DB, ttl time.Duration) *SQLRepo {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SQLRepo{DB: db, TTL: ttl, now: time.Now}
}

func (r *SQLRepo) Create(ctx context.Context, userID string, sessionID string) (string, error) {
	now := r.now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO auth_sessions (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`, sessionID, userID, now, now.Add(r.TTL))

	return sessionID, err
}

func (r *SQLRepo) IsValid(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM auth_sessions
			WHERE user_id = ? AND expires_at > ?
		)
	`, userID, r.now().UTC()).Scan(&exists)
	return exists, err
}

func (r *SQLRepo) Invalidate(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, `
		DELETE FROM auth_sessions WHERE user_id = ?
	`, userID)
	return err
}
