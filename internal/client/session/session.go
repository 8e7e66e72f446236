// Package session owns the client's durable authenticated state: the bearer
// token and the normalized user record. Writes happen at exactly two points
// in the application (OTP verification success and password reset success)
// and always replace the previous session wholesale.
package session

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSession is returned by Store.Load when no session has been persisted.
var ErrNoSession = errors.New("session: no stored session")

// Session is the terminal artifact of a successful verification flow.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// TokenExpiry reads the exp claim from a JWT-shaped access token without
// verifying its signature. Verification is the service's job; the client
// only wants to know whether a restored session is worth presenting.
//
// Returns ok=false for opaque tokens or tokens without an exp claim.
func TokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser()

	var claims jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Stale reports whether the session's token is known to have expired.
// Opaque tokens are never considered stale locally; the service decides.
func (s *Session) Stale(now time.Time) bool {
	exp, ok := TokenExpiry(s.Token)
	if !ok {
		return false
	}
	return now.After(exp)
}
