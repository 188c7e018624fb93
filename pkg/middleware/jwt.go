package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"devloop/pkg/authsession"
	"devloop/pkg/claims"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gorilla/mux"
)

// noSessUrls lists route templates reachable without a token.
var noSessUrls = map[string]string{
	"/api/login":               http.MethodPost,
	"/api/register":            http.MethodPost,
	"/api/users":               http.MethodGet,
	"/api/users/{id}":          http.MethodGet,
	"/api/availabilities":      http.MethodGet,
	"/api/reviews/{sessionId}": http.MethodGet,
}

func CheckJWT(secret string, sessions authsession.Repository, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(secret)

	hashSecretGetter := func(token *jwt.Token) (interface{}, error) {
		method, ok := token.Method.(*jwt.SigningMethodHMAC)
		if !ok || method.Alg() != "HS256" {
			return nil, jwt.ErrSignatureInvalid
		}
		return key, nil
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					if method, ok := noSessUrls[template]; ok && method == r.Method {
						next.ServeHTTP(w, r)
						return
					}
				}
			}

			raw := bearerToken(r)
			if raw == "" {
				unauthorized(w)
				return
			}

			c := &claims.Claims{}
			token, err := jwt.ParseWithClaims(raw, c, hashSecretGetter)
			if err != nil || !token.Valid || c.User.ID == "" {
				logger.Warn("rejected token", "path", r.URL.Path, "error", err)
				unauthorized(w)
				return
			}

			ok, err := sessions.IsValid(r.Context(), c.User.ID)
			if err != nil {
				logger.Error("session lookup", "user", c.User.ID, "error", err)
			}
			if err != nil || !ok {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(claims.WithClaims(r.Context(), c)))
		})
	}
}

// bearerToken reads the Authorization header, falling back to the
// access_token query parameter for websocket clients.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return r.URL.Query().Get("access_token")
}

func unauthorized(w http.ResponseWriter) {
	writeMessage(w, http.StatusUnauthorized, "unauthorized")
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
