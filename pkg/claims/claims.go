package claims

import (
	"context"

	jwt "github.com/dgrijalva/jwt-go"
)

type contextKey string

const (
	TokenContextKey contextKey = "token"
)

type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Claims struct {
	User Identity `json:"user"`
	jwt.StandardClaims
}

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, TokenContextKey, c)
}

// FromContext returns the claims stored by the JWT middleware, or nil.
func FromContext(ctx context.Context) *Claims {
	c, ok := ctx.Value(TokenContextKey).(*Claims)
	if !ok || c == nil || c.User.ID == "" {
		return nil
	}
	return c
}
