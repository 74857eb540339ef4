package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/metrics"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/aussiebroadwan/gatekeeper/pkg/totpx"
)

// LabelPolicy picks the account label shown in authenticator apps.
type LabelPolicy string

const (
	// LabelUserID labels the account "user_id_<id>".
	LabelUserID LabelPolicy = "user_id"

	// LabelEmail labels the account with the user's email.
	LabelEmail LabelPolicy = "email"
)

// TwoFactorService provisions, checks and removes TOTP secrets.
type TwoFactorService struct {
	Store    store.Store
	Engine   *totpx.Engine
	Renderer totpx.QRRenderer
	Tokens   *TokenService
	Label    LabelPolicy
	Metrics  *metrics.Metrics

	// Now is overridable for tests.
	Now func() time.Time
}

// Activate generates a new secret for userID, stores it and turns 2FA on.
// Every call replaces the previous secret. Nothing is written unless the
// QR code rendered.
func (s *TwoFactorService) Activate(ctx context.Context, userID int64) (domain.TwoFactorActivation, error) {
	activation, err := s.activate(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("2fa activation failed", slog.Int64("user_id", userID), slog.Any("error", err))
		s.Metrics.ObserveTwoFactor("activate", metrics.ResultError)
		return domain.TwoFactorActivation{}, err
	}
	s.Metrics.ObserveTwoFactor("activate", metrics.ResultSuccess)
	return activation, nil
}

// activate looks the user up before generating anything, so an unknown id
// never gets a secret. Every failure is reported as ErrActivationFailed.
func (s *TwoFactorService) activate(ctx context.Context, userID int64) (domain.TwoFactorActivation, error) {
	user, err := s.Store.Users().FindByID(ctx, userID)
	if err != nil {
		return domain.TwoFactorActivation{}, fmt.Errorf("%w: load user: %w", ErrActivationFailed, err)
	}

	secret, err := s.Engine.GenerateSecret()
	if err != nil {
		return domain.TwoFactorActivation{}, fmt.Errorf("%w: %w", ErrActivationFailed, err)
	}

	uri, err := s.Engine.ProvisioningURI(secret, s.accountLabel(user))
	if err != nil {
		return domain.TwoFactorActivation{}, fmt.Errorf("%w: %w", ErrActivationFailed, err)
	}

	png, err := s.Renderer.Render(uri)
	if err != nil {
		return domain.TwoFactorActivation{}, fmt.Errorf("%w: render qr: %w", ErrActivationFailed, err)
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().UpdateTwoFactor(ctx, userID, &secret, true)
	})
	if err != nil {
		return domain.TwoFactorActivation{}, fmt.Errorf("%w: %w", ErrActivationFailed, err)
	}

	return domain.TwoFactorActivation{
		Secret:          secret,
		ProvisioningURI: uri,
		QRCodePNG:       png,
	}, nil
}

func (s *TwoFactorService) accountLabel(user domain.User) string {
	if s.Label == LabelEmail {
		return user.Email
	}
	return fmt.Sprintf("user_id_%d", user.ID)
}

// Verify checks a TOTP code for a user whose login is pending and, on
// success, issues tokens.
func (s *TwoFactorService) Verify(ctx context.Context, userID int64, code string) (domain.TokenPair, error) {
	log := slogx.FromContext(ctx).With(slog.Int64("user_id", userID))

	user, err := s.Store.Users().FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.ObserveTwoFactor("verify", metrics.ResultRejected)
			return domain.TokenPair{}, ErrTwoFactorNotEnabled
		}
		log.Error("failed to look up user", slog.Any("error", err))
		s.Metrics.ObserveTwoFactor("verify", metrics.ResultError)
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	if !user.TwoFactorEnabled {
		s.Metrics.ObserveTwoFactor("verify", metrics.ResultRejected)
		return domain.TokenPair{}, ErrTwoFactorNotEnabled
	}

	if !user.HasTwoFactorSecret() {
		log.Error("2fa enabled but no secret stored")
		s.Metrics.ObserveTwoFactor("verify", metrics.ResultError)
		return domain.TokenPair{}, ErrInconsistentState
	}

	if !s.Engine.Verify(*user.TwoFactorSecret, code, s.now()) {
		s.Metrics.ObserveTwoFactor("verify", metrics.ResultRejected)
		return domain.TokenPair{}, ErrInvalidTOTPCode
	}

	tokens, err := s.Tokens.Issue(ctx, user.ID, jwtx.AMRPassword, jwtx.AMROTP, jwtx.AMRMFA)
	if err != nil {
		log.Error("failed to issue tokens", slog.Any("error", err))
		s.Metrics.ObserveTwoFactor("verify", metrics.ResultError)
		return domain.TokenPair{}, err
	}

	s.Metrics.ObserveTwoFactor("verify", metrics.ResultSuccess)
	return tokens, nil
}

// Disable clears the secret and turns 2FA off. It is unconditional: an
// already disabled user or an id with no row both succeed.
func (s *TwoFactorService) Disable(ctx context.Context, userID int64) error {
	err := s.Store.Users().UpdateTwoFactor(ctx, userID, nil, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to disable 2fa", slog.Int64("user_id", userID), slog.Any("error", err))
		s.Metrics.ObserveTwoFactor("disable", metrics.ResultError)
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	s.Metrics.ObserveTwoFactor("disable", metrics.ResultSuccess)
	return nil
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
