package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// AuthService runs the password step of a login.
type AuthService struct {
	Store   store.Store
	Tokens  *TokenService
	Metrics *metrics.Metrics
}

// Login checks email and password. Users without 2FA get tokens straight
// away; users with 2FA get LoginTwoFactorPending and no tokens.
//
// An unknown email and a wrong password both return ErrInvalidCredentials,
// and both pay for one bcrypt comparison.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	log := slogx.FromContext(ctx)

	user, err := s.Store.Users().FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash())
			s.Metrics.ObserveLogin(metrics.ResultRejected)
			return domain.LoginResult{}, ErrInvalidCredentials
		}
		log.Error("failed to look up user", slog.Any("error", err))
		s.Metrics.ObserveLogin(metrics.ResultError)
		return domain.LoginResult{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Warn("stored password hash unusable", slog.Int64("user_id", user.ID), slog.Any("error", err))
		}
		s.Metrics.ObserveLogin(metrics.ResultRejected)
		return domain.LoginResult{}, ErrInvalidCredentials
	}

	if user.TwoFactorEnabled {
		s.Metrics.ObserveLogin(metrics.ResultTwoFactorRequired)
		return domain.LoginResult{
			State:  domain.LoginTwoFactorPending,
			UserID: user.ID,
		}, nil
	}

	tokens, err := s.Tokens.Issue(ctx, user.ID, jwtx.AMRPassword)
	if err != nil {
		log.Error("failed to issue tokens", slog.Int64("user_id", user.ID), slog.Any("error", err))
		s.Metrics.ObserveLogin(metrics.ResultError)
		return domain.LoginResult{}, err
	}

	s.Metrics.ObserveLogin(metrics.ResultSuccess)
	return domain.LoginResult{
		State:  domain.LoginAuthenticated,
		UserID: user.ID,
		Tokens: &tokens,
	}, nil
}
