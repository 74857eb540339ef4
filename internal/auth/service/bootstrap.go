package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

var ErrBootstrapIncomplete = errors.New("bootstrap email and password must both be set")

// BootstrapService seeds the operator account into an empty user table.
// There is no registration endpoint; this is the only way the service
// creates users.
type BootstrapService struct {
	Store store.Store
}

// EnsureOperator creates the account described by data when the user table
// is empty. It reports whether a user was created. An empty data is a no-op.
func (s *BootstrapService) EnsureOperator(ctx context.Context, data domain.BootstrapData) (bool, error) {
	l := slogx.FromContext(ctx)

	if data.Email == "" && data.Password == "" {
		return false, nil
	}
	if data.Email == "" || data.Password == "" {
		return false, ErrBootstrapIncomplete
	}

	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	if !empty {
		l.Debug("users exist, skipping bootstrap")
		return false, nil
	}

	hash, err := cryptox.HashPassword(data.Password)
	if err != nil {
		return false, err
	}

	u, err := s.Store.Users().CreateUser(ctx, domain.User{
		Email:        data.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Another instance won the race.
			return false, nil
		}
		return false, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	l.Info("bootstrapped operator account", slog.Int64("user_id", u.ID), slog.String("email", u.Email))
	return true, nil
}
