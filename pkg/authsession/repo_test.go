package authsession

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
	CREATE TABLE auth_sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL
	);`)
	require.NoError(t, err)

	return db
}

func TestSQLRepo_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepo(setupTestDB(t), time.Hour)

	ok, err := repo.IsValid(ctx, "user1")
	assert.NoError(t, err)
	assert.False(t, ok)

	id, err := repo.Create(ctx, "user1", "sess1")
	assert.NoError(t, err)
	assert.Equal(t, "sess1", id)

	ok, err = repo.IsValid(ctx, "user1")
	assert.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Create(ctx, "user1", "sess1")
	assert.Error(t, err, "duplicate session id")

	assert.NoError(t, repo.Invalidate(ctx, "user1"))

	ok, err = repo.IsValid(ctx, "user1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLRepo_Expiry(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLRepo(setupTestDB(t), time.Minute)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return base }

	_, err := repo.Create(ctx, "user1", "sess1")
	require.NoError(t, err)

	repo.now = func() time.Time { return base.Add(30 * time.Second) }
	ok, err := repo.IsValid(ctx, "user1")
	assert.NoError(t, err)
	assert.True(t, ok)

	repo.now = func() time.Time { return base.Add(2 * time.Minute) }
	ok, err = repo.IsValid(ctx, "user1")
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestNewSQLRepo_DefaultTTL(t *testing.T) {
	repo := NewSQLRepo(nil, 0)
	assert.Equal(t, time.Hour, repo.TTL)
}
