// Package token inspects bearer tokens issued by the booking platform. The
// client treats tokens as opaque for all correctness purposes; when a token
// happens to be a JWT the expiry claim is read (unverified) as a best-effort
// freshness hint, nothing more. Verification is the server's job.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Expiry returns the expiration time of a JWT-shaped token. The boolean is
// false for opaque tokens, malformed JWTs and JWTs without an exp claim.
func Expiry(raw string) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}

	claims := jwtlib.MapClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Expired reports whether the token carries an expiry claim in the past.
// Tokens with no readable expiry are never reported as expired: an opaque
// token's lifetime is unknowable client-side.
func Expired(raw string, now time.Time) bool {
	exp, ok := Expiry(raw)
	if !ok {
		return false
	}
	return exp.Before(now)
}
