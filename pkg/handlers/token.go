package handlers

import (
	"time"

	"devloop/pkg/claims"
	"devloop/pkg/user"

	jwt "github.com/dgrijalva/jwt-go"
)

type TokenIssuer struct {
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenIssuer{Secret: []byte(secret), TTL: ttl, now: time.Now}
}

func (t *TokenIssuer) Issue(u *user.User) (string, error) {
	now := t.now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims.Claims{
		User: claims.Identity{
			ID:    u.ID,
			Email: u.Email,
			Role:  u.Role,
		},
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(t.TTL).Unix(),
		},
	})
	return token.SignedString(t.Secret)
}
