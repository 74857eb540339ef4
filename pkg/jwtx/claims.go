package jwtx

import (
	"slices"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. Access tokens are minutes long, refresh tokens
// about a day.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = 5 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 24 * time.Hour
)

// Token types carried in the "typ" claim so a refresh token can never be
// presented where an access token is expected.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Authentication Methods Reference values (RFC 8176).
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
	AMRMFA      = "mfa"
)

// Claims are the claims signed into every token we mint.
type Claims struct {
	jwt.RegisteredClaims

	// TokenType is either TokenTypeAccess or TokenTypeRefresh.
	TokenType string `json:"typ"`

	// Authentication Methods Reference ["pwd"] or ["pwd","otp","mfa"]
	// 		"pwd": Password-based Authentication
	//		"otp": One-time Password (TOTP)
	//		"mfa": Multi-factor Auth was used
	AMR []string `json:"amr,omitempty"`
}

// NewClaims builds minimally-correct claims for subject.
func NewClaims(
	subject, tokenType string,
	amr []string,
	ttl time.Duration,
	issuer string,
	audience []string,
	now time.Time,
) Claims {
	c := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		TokenType: tokenType,
		AMR:       amr,
	}
	if len(audience) > 0 {
		c.Audience = jwt.ClaimStrings(audience)
	}
	return c
}

// NewJTI returns a unique, sortable identifier for the "jti" claim.
func NewJTI() string {
	return idx.New().String()
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

// ValidateAudience checks if at least one expected audience is present.
func (c *Claims) ValidateAudience(expected []string) error {
	if len(expected) == 0 {
		return nil // nothing to enforce
	}

	for _, want := range expected {
		if slices.Contains(c.Audience, want) {
			return nil
		}
	}

	return ErrAudience
}

// ValidateType checks the "typ" claim.
func (c *Claims) ValidateType(expected string) error {
	if expected == "" {
		return nil
	}
	if c.TokenType != expected {
		return ErrTokenType
	}
	return nil
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't before nbf.
func (c *Claims) ValidateExpiry() error {
	return c.ValidateExpiryWithLeeway(0)
}

// ValidateExpiryWithLeeway adds a small grace period for clock skew.
func (c *Claims) ValidateExpiryWithLeeway(leeway time.Duration) error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}

	return nil
}
