package platformsdk

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims are fields peeked from a bearer token WITHOUT signature
// verification. They are suitable for local decisions only (display, expiry
// short-circuits); authorization always remains the backend's call.
type TokenClaims struct {
	Subject   string
	ExpiresAt *time.Time
	IssuedAt  *time.Time
}

// PeekTokenClaims parses a JWT-shaped token without verifying it. Opaque
// (non-JWT) tokens return an error.
func PeekTokenClaims(token string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	out := &TokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		out.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		t := exp.Time
		out.ExpiresAt = &t
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		t := iat.Time
		out.IssuedAt = &t
	}
	return out, nil
}

// TokenExpired reports whether a JWT-shaped token carries an expiry in the
// past. Opaque tokens and tokens without an exp claim report false: the
// backend stays the authority on their validity.
func TokenExpired(token string, now time.Time) bool {
	claims, err := PeekTokenClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(now)
}
