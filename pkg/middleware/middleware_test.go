package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"devloop/pkg/claims"
	"devloop/pkg/middleware"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

type sessionsStub struct {
	valid map[string]bool
	err   error
}

func (s sessionsStub) Create(ctx context.Context, userID, sessionID string) (string, error) {
	return sessionID, nil
}

func (s sessionsStub) IsValid(ctx context.Context, userID string) (bool, error) {
	return s.valid[userID], s.err
}

func (s sessionsStub) Invalidate(ctx context.Context, userID string) error { return nil }

func sign(t *testing.T, key string, id, role string, ttl time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.Claims{
		User: claims.Identity{ID: id, Email: id + "@devloop.io", Role: role},
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	})
	s, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func whoami(w http.ResponseWriter, r *http.Request) {
	c := claims.FromContext(r.Context())
	if c == nil {
		_, _ = io.WriteString(w, "anonymous")
		return
	}
	_, _ = io.WriteString(w, c.User.ID+":"+c.User.Role)
}

func newRouter(sessions sessionsStub) *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.CheckJWT(secret, sessions, logger))
	api.HandleFunc("/login", whoami).Methods(http.MethodPost)
	api.HandleFunc("/users/me", whoami).Methods(http.MethodGet)
	api.Handle("/availabilities",
		middleware.RequireRole("mentor")(http.HandlerFunc(whoami)),
	).Methods(http.MethodPost)
	return r
}

func TestCheckJWT(t *testing.T) {
	sessions := sessionsStub{valid: map[string]bool{"M": true, "A": true}}

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		query      bool
		sessions   *sessionsStub
		wantStatus int
		wantBody   string
	}{
		{name: "public route", method: http.MethodPost, path: "/api/login", wantStatus: http.StatusOK, wantBody: "anonymous"},
		{name: "missing token", method: http.MethodGet, path: "/api/users/me", wantStatus: http.StatusUnauthorized},
		{name: "valid token", method: http.MethodGet, path: "/api/users/me", token: sign(t, secret, "M", "mentor", time.Hour), wantStatus: http.StatusOK, wantBody: "M:mentor"},
		{name: "query token", method: http.MethodGet, path: "/api/users/me", token: sign(t, secret, "A", "mentee", time.Hour), query: true, wantStatus: http.StatusOK, wantBody: "A:mentee"},
		{name: "wrong secret", method: http.MethodGet, path: "/api/users/me", token: sign(t, "other", "M", "mentor", time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "expired", method: http.MethodGet, path: "/api/users/me", token: sign(t, secret, "M", "mentor", -time.Minute), wantStatus: http.StatusUnauthorized},
		{name: "logged out", method: http.MethodGet, path: "/api/users/me", token: sign(t, secret, "Z", "mentee", time.Hour), wantStatus: http.StatusUnauthorized},
		{name: "session store down", method: http.MethodGet, path: "/api/users/me", token: sign(t, secret, "M", "mentor", time.Hour), sessions: &sessionsStub{err: errors.New("db down")}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sessions
			if tt.sessions != nil {
				s = *tt.sessions
			}
			path := tt.path
			if tt.query {
				path += "?access_token=" + tt.token
			}
			req := httptest.NewRequest(tt.method, path, nil)
			if tt.token != "" && !tt.query {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rr := httptest.NewRecorder()

			newRouter(s).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rr.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	router := newRouter(sessionsStub{valid: map[string]bool{"M": true, "A": true}})

	req := httptest.NewRequest(http.MethodPost, "/api/availabilities", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, secret, "A", "mentee", time.Hour))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/availabilities", nil)
	req.Header.Set("Authorization", "Bearer "+sign(t, secret, "M", "mentor", time.Hour))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	middleware.RequireRole("mentor")(http.HandlerFunc(whoami)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPanic(t *testing.T) {
	h := middleware.Panic(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "internal server error")
}

func TestRateLimiter(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 2, logger)
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(remote, xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = remote
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, send("10.0.0.1:5555", ""))
	}
	assert.Equal(t, []int{200, 200, http.StatusTooManyRequests}, codes)

	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5555", "192.168.1.9"),
		"forwarding headers from an untrusted peer are ignored")
	assert.Equal(t, http.StatusOK, send("10.0.0.2:5555", ""))
}

func TestRateLimiterTrustedProxy(t *testing.T) {
	limiter := middleware.NewRateLimiter(1, 1, logger)
	limiter.TrustedProxies = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	h := limiter.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	send := func(xff string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		req.Header.Set("X-Forwarded-For", xff)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.5, 10.0.0.3"))
	assert.Equal(t, http.StatusTooManyRequests, send("1.2.3.4, 203.0.113.5"),
		"a spoofed leftmost hop does not change the client")
	assert.Equal(t, http.StatusOK, send("198.51.100.7"))
}

type requestSpy struct {
	route  string
	status int
}

func (s *requestSpy) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	s.route, s.status = route, status
}

func TestRequestLog(t *testing.T) {
	spy := &requestSpy{}
	r := mux.NewRouter()
	r.Use(middleware.RequestLog(logger, spy))
	var seen string
	r.HandleFunc("/sessions/{id}", func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestID(r.Context())
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/sessions/42", nil))

	id := rr.Header().Get(middleware.RequestIDHeader)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, seen)
	assert.Equal(t, "/sessions/{id}", spy.route)
	assert.Equal(t, http.StatusNotFound, spy.status)

	req := httptest.NewRequest(http.MethodGet, "/sessions/42", nil)
	req.Header.Set(middleware.RequestIDHeader, "fixed")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, "fixed", rr.Header().Get(middleware.RequestIDHeader))
}
