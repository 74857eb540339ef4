package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256KeySize is the smallest accepted secret; RFC 7518 requires the key
// to be at least as long as the hash output.
const MinHS256KeySize = 32

var ErrWeakKey = errors.New("jwtx: HS256 key shorter than 32 bytes")

// HS256Signer implements the Signer interface using HMAC-SHA256.
type HS256Signer struct {
	kid string
	key []byte
	alg string
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHS256KeySize {
		return nil, ErrWeakKey
	}

	// Copy so the caller can't mutate our key
	key := make([]byte, len(secret))
	copy(key, secret)

	return &HS256Signer{
		kid: kid,
		key: key,
		alg: jwt.SigningMethodHS256.Alg(),
	}, nil
}

func (s *HS256Signer) Alg() string { return s.alg }
func (s *HS256Signer) KID() string { return s.kid }

// Sign takes your claims and turns them into a signed JWT string.
func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.key)
}

// Validate does a quick sanity check to make sure we actually have a key.
func (s *HS256Signer) Validate() error {
	if len(s.key) < MinHS256KeySize {
		return ErrWeakKey
	}
	return nil
}

// Verifier returns an HS256Verifier sharing this signer's key.
func (s *HS256Signer) Verifier(issuer string, aud []string) *HS256Verifier {
	return NewVerifierHS256(s.key, issuer, aud)
}
