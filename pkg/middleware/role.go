package middleware

import (
	"net/http"

	"devloop/pkg/claims"
)

// RequireRole lets the request through only when the caller's token
// carries one of the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c := claims.FromContext(r.Context())
			if c == nil {
				unauthorized(w)
				return
			}
			if _, ok := allowed[c.User.Role]; !ok {
				writeMessage(w, http.StatusForbidden, "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
