package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the identity-token claims exchanged between the auth routes and
// the rest of the service. The token deliberately carries no expiry claim:
// sessions live until the client discards the token, matching the service's
// login model. Keep changes additive to preserve compatibility.
type Claims struct {
	jwt.RegisteredClaims

	// Username for the authenticated user. This is the identity every
	// authorization decision compares against.
	Username string `json:"username,omitempty"`
}

// NewIdentityClaims builds minimally-correct claims for a username.
func NewIdentityClaims(username, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			Subject:  username,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       NewJTI(),
		},
		Username: username,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if c.Issuer != expected {
		return ErrIssuer
	}

	return nil
}
