package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Viewer is the resolved identity a session cookie carries.
type Viewer struct {
	ID       uint
	Username string
}

type sessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies the session cookie payload.
type TokenManager struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenManager(secret string, lifetime time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), lifetime: lifetime}
}

func (m *TokenManager) Issue(v Viewer) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Username: v.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", v.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.lifetime)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse validates the token and recovers the viewer. Any failure
// (expiry included) means the request proceeds anonymously.
func (m *TokenManager) Parse(token string) (Viewer, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Viewer{}, err
	}
	if !parsed.Valid {
		return Viewer{}, errors.New("invalid session token")
	}
	var id uint
	if _, err := fmt.Sscanf(claims.Subject, "%d", &id); err != nil || id == 0 {
		return Viewer{}, errors.New("malformed session subject")
	}
	return Viewer{ID: id, Username: claims.Username}, nil
}

// Lifetime is the cookie max-age the handler should use.
func (m *TokenManager) Lifetime() time.Duration { return m.lifetime }
