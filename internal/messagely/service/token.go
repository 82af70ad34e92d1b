package service

import (
	"time"

	"github.com/messagely/messagely/pkg/jwtx"
)

// TokenService issues and verifies identity tokens. Issue is used by the auth
// routes after a successful register/login; Verify backs the authn middleware.
// There is intentionally no unverified decode on this type: anything that
// wants claims goes through the signature check.
type TokenService struct {
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Issuer   string
}

// Issue mints a signed token asserting the given username.
func (s *TokenService) Issue(username string) (string, error) {
	claims := jwtx.NewIdentityClaims(username, s.Issuer, time.Now().UTC())
	return s.Signer.Sign(claims)
}

// Verify checks the signature and returns the claims.
func (s *TokenService) Verify(token string) (jwtx.Claims, error) {
	return s.Verifier.Verify(token)
}
