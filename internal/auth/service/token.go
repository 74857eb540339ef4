package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
)

// TokenService mints access and refresh tokens. It never touches the store.
type TokenService struct {
	Signer     jwtx.Signer
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Metrics    *metrics.Metrics

	// Now is overridable for tests.
	Now func() time.Time
}

// Issue signs a token pair for userID. amr records how the user proved who
// they are (jwtx.AMRPassword, jwtx.AMROTP, ...).
func (s *TokenService) Issue(ctx context.Context, userID int64, amr ...string) (domain.TokenPair, error) {
	flow := "password"
	if len(amr) > 1 {
		flow = "two_factor"
	}

	pair, err := s.issue(userID, amr)
	if err != nil {
		s.Metrics.ObserveTokens(flow, metrics.ResultError)
		return domain.TokenPair{}, err
	}
	s.Metrics.ObserveTokens(flow, metrics.ResultSuccess)
	return pair, nil
}

func (s *TokenService) issue(userID int64, amr []string) (domain.TokenPair, error) {
	now := s.now()
	sub := strconv.FormatInt(userID, 10)
	accessTTL := s.accessTTL()

	access, err := s.Signer.Sign(jwtx.NewClaims(sub, jwtx.TokenTypeAccess, amr, accessTTL, s.Issuer, nil, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := s.Signer.Sign(jwtx.NewClaims(sub, jwtx.TokenTypeRefresh, amr, s.refreshTTL(), s.Issuer, nil, now))
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	return domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    accessTTL,
	}, nil
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}
