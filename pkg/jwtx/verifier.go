package jwtx

import (
	"errors"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed = errors.New("jwtx: malformed token")
	ErrInvalid   = errors.New("jwtx: invalid token")

	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrTokenType   = errors.New("jwtx: token type mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
)

// HS256Adapter a Verifier wrapper for HS256.
type HS256Adapter struct{ *HS256Verifier }

func (a HS256Adapter) Verify(token string) (Claims, error) {
	c, err := a.HS256Verifier.Verify(token)
	if err != nil {
		return Claims{}, err
	}
	return *c, nil
}

// NewCommonHS256 returns a Verifier for access tokens using the HS256
// implementation wrapped in the common interface.
func NewCommonHS256(secret []byte, issuer string, audience []string) Verifier {
	v := NewVerifierHS256(secret, issuer, audience)
	v.tokenType = TokenTypeAccess
	return HS256Adapter{v}
}
