package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"devloop/pkg/claims"

	"github.com/gorilla/mux"
)

var logger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func as(req *http.Request, id, role string) *http.Request {
	ctx := claims.WithClaims(req.Context(), &claims.Claims{
		User: claims.Identity{ID: id, Email: id + "@devloop.io", Role: role},
	})
	return req.WithContext(ctx)
}

func withVars(req *http.Request, kv ...string) *http.Request {
	vars := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		vars[kv[i]] = kv[i+1]
	}
	return mux.SetURLVars(req, vars)
}
