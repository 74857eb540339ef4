package jwtx_test

import (
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testKey = []byte(strings.Repeat("k", 64))

func newSigner(t *testing.T) jwtx.Signer {
	t.Helper()
	s, err := jwtx.NewSignerHS256("test-kid", testKey)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	return s
}

func TestHS256_SignAndVerify(t *testing.T) {
	s := newSigner(t)
	require.Equal(t, "HS256", s.Alg())
	require.Equal(t, "test-kid", s.KID())

	claims := jwtx.NewClaims("42", jwtx.TokenTypeAccess, []string{jwtx.AMRPassword},
		time.Minute, "gatekeeper", nil, time.Now())
	token, err := s.Sign(claims)
	require.NoError(t, err)

	got, err := jwtx.NewVerifierHS256(testKey, "gatekeeper", nil).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "42", got.Subject)
	require.Equal(t, jwtx.TokenTypeAccess, got.TokenType)
	require.Equal(t, []string{jwtx.AMRPassword}, got.AMR)
}

func TestHS256_RejectsWeakKey(t *testing.T) {
	_, err := jwtx.NewSignerHS256("kid", []byte("short"))
	require.ErrorIs(t, err, jwtx.ErrWeakKey)
}

func TestHS256_VerifyFailures(t *testing.T) {
	s := newSigner(t)
	now := time.Now()

	sign := func(c jwtx.Claims) string {
		tok, err := s.Sign(c)
		require.NoError(t, err)
		return tok
	}

	valid := sign(jwtx.NewClaims("1", jwtx.TokenTypeAccess, nil, time.Minute, "gatekeeper", nil, now))

	t.Run("wrong key", func(t *testing.T) {
		other := []byte(strings.Repeat("x", 64))
		_, err := jwtx.NewVerifierHS256(other, "", nil).Verify(valid)
		require.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(testKey, "someone-else", nil).Verify(valid)
		require.ErrorIs(t, err, jwtx.ErrIssuer)
	})

	t.Run("expired", func(t *testing.T) {
		expired := sign(jwtx.NewClaims("1", jwtx.TokenTypeAccess, nil, time.Minute, "", nil, now.Add(-time.Hour)))
		_, err := jwtx.NewVerifierHS256(testKey, "", nil).Verify(expired)
		require.ErrorIs(t, err, jwtx.ErrExpired)
	})

	t.Run("refresh token where access expected", func(t *testing.T) {
		refresh := sign(jwtx.NewClaims("1", jwtx.TokenTypeRefresh, nil, time.Hour, "gatekeeper", nil, now))
		_, err := jwtx.NewCommonHS256(testKey, "gatekeeper", nil).Verify(refresh)
		require.ErrorIs(t, err, jwtx.ErrTokenType)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := jwtx.NewVerifierHS256(testKey, "", nil).Verify("not-a-jwt")
		require.ErrorIs(t, err, jwtx.ErrMalformed)

		_, err = jwtx.NewVerifierHS256(testKey, "", nil).Verify("")
		require.ErrorIs(t, err, jwtx.ErrMalformed)
	})

	t.Run("alg none is refused", func(t *testing.T) {
		c := jwtx.NewClaims("1", jwtx.TokenTypeAccess, nil, time.Minute, "", nil, now)
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = jwtx.NewVerifierHS256(testKey, "", nil).Verify(unsigned)
		require.Error(t, err)
	})
}

func TestHS256Signer_Verifier(t *testing.T) {
	s, err := jwtx.NewSignerHS256("", testKey)
	require.NoError(t, err)

	tok, err := s.Sign(jwtx.NewClaims("9", jwtx.TokenTypeRefresh, nil, time.Hour, "iss", nil, time.Now()))
	require.NoError(t, err)

	hs := s.(*jwtx.HS256Signer)
	c, err := hs.Verifier("iss", nil).WithTokenType(jwtx.TokenTypeRefresh).Verify(tok)
	require.NoError(t, err)
	require.Equal(t, "9", c.Subject)
}
