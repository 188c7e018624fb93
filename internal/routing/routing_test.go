package routing

import (
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"devloop/internal/config"
	"devloop/internal/metrics"
)

const sqliteSchema = `
CREATE TABLE users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	role TEXT NOT NULL,
	bio TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL DEFAULT '',
	experience TEXT NOT NULL DEFAULT '',
	skills TEXT NOT NULL DEFAULT '[]',
	profile_image TEXT NOT NULL DEFAULT '',
	password TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE auth_sessions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);
CREATE TABLE availabilities (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	mentor_id TEXT NOT NULL,
	start_at DATETIME NOT NULL,
	end_at DATETIME NOT NULL,
	state TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE sessions (
	id TEXT PRIMARY KEY,
	mentor_id TEXT NOT NULL,
	mentee_id TEXT NOT NULL,
	availability_id TEXT NOT NULL UNIQUE,
	scheduled_time DATETIME NOT NULL,
	status TEXT NOT NULL,
	topic TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);`

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func (c client) do(method, path, token, body string) (int, map[string]any, string) {
	c.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, reader)
	require.NoError(c.t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.srv.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, string(raw)
}

func (c client) register(name, email, role string) (token, id string) {
	c.t.Helper()
	status, obj, raw := c.do(http.MethodPost, "/api/register", "",
		`{"username":"`+name+`","email":"`+email+`","password":"secret1","role":"`+role+`"}`)
	require.Equal(c.t, http.StatusCreated, status, raw)
	return obj["token"].(string), obj["user"].(map[string]any)["id"].(string)
}

func TestBookingFlow(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("end to end", func(mt *mtest.T) {
		db, err := sql.Open("sqlite3", ":memory:")
		require.NoError(t, err)
		db.SetMaxOpenConns(1)
		defer db.Close()
		_, err = db.Exec(sqliteSchema)
		require.NoError(t, err)

		cfg := &config.Config{
			JWTSecret:      "test-secret",
			RateLimitRPS:   1000,
			RateLimitBurst: 1000,
			TokenTTL:       time.Hour,
		}
		m := metrics.New()
		r := mux.NewRouter()
		InitRoutes(r, db, mt.DB, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), m)

		srv := httptest.NewServer(r)
		defer srv.Close()
		c := client{t: t, srv: srv}

		mentorToken, mentorID := c.register("Ana", "ana@devloop.io", "mentor")
		aToken, _ := c.register("Bruno", "bruno@devloop.io", "mentee")
		bToken, _ := c.register("Carla", "carla@devloop.io", "mentee")

		status, _, _ := c.do(http.MethodPost, "/api/availabilities", aToken,
			`{"start":"2026-05-04T10:00:00Z","endTime":"2026-05-04T11:00:00Z"}`)
		assert.Equal(t, http.StatusForbidden, status)

		status, win, raw := c.do(http.MethodPost, "/api/availabilities", mentorToken,
			`{"start":"2026-05-04T10:00:00Z","endTime":"2026-05-04T11:00:00Z"}`)
		require.Equal(t, http.StatusCreated, status, raw)
		assert.Equal(t, mentorID, win["mentorId"])

		status, _, raw = c.do(http.MethodGet, "/api/availabilities?mentorId="+mentorID, "", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, raw, win["id"].(string))

		book := `{"mentorId":"` + mentorID + `","scheduledTime":"2026-05-04T10:30:00Z","topic":"channels"}`
		status, sess, raw := c.do(http.MethodPost, "/sessions", aToken, book)
		require.Equal(t, http.StatusCreated, status, raw)
		assert.Equal(t, "booked", sess["status"])
		assert.Equal(t, win["id"], sess["availabilityId"])

		status, _, _ = c.do(http.MethodPost, "/api/sessions", bToken, book)
		assert.Equal(t, http.StatusBadRequest, status)

		status, _, raw = c.do(http.MethodGet, "/api/availabilities", "", "")
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "[]", strings.TrimSpace(raw))

		status, _, _ = c.do(http.MethodGet, "/sessions", "", "")
		assert.Equal(t, http.StatusUnauthorized, status)

		status, _, raw = c.do(http.MethodGet, "/api/sessions/"+sess["id"].(string), bToken, "")
		assert.Equal(t, http.StatusOK, status)
		assert.Contains(t, raw, `"topic":"channels"`)

		status, _, _ = c.do(http.MethodPost, "/api/logout", aToken, "")
		assert.Equal(t, http.StatusOK, status)
		status, _, _ = c.do(http.MethodGet, "/api/users/me", aToken, "")
		assert.Equal(t, http.StatusUnauthorized, status)

		status, obj, _ := c.do(http.MethodGet, "/nowhere", "", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not found", obj["message"])

		status, _, _ = c.do(http.MethodPatch, "/sessions/x", mentorToken, "")
		assert.Equal(t, http.StatusMethodNotAllowed, status)

		_, _, raw = c.do(http.MethodGet, "/metrics", "", "")
		assert.Contains(t, raw, `devloop_booking_attempts_total{outcome="booked"} 1`)
		assert.Contains(t, raw, `devloop_booking_attempts_total{outcome="no_slot"} 1`)
	})
}
