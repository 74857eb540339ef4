package sqlite

import (
	"context"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite/gen"
)

type usersRepo struct {
	q *gen.Queries
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	row, err := r.q.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) FindByID(ctx context.Context, id int64) (domain.User, error) {
	row, err := r.q.GetUserByID(ctx, id)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) UpdateTwoFactor(ctx context.Context, id int64, secret *string, enabled bool) error {
	n, err := r.q.UpdateUserTwoFactor(ctx, gen.UpdateUserTwoFactorParams{
		TwoFactorSecret:  mapOptionalString(secret),
		TwoFactorEnabled: enabled,
		ID:               id,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) (domain.User, error) {
	row, err := r.q.CreateUser(ctx, gen.CreateUserParams{
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		TwoFactorEnabled: u.TwoFactorEnabled,
		TwoFactorSecret:  mapOptionalString(u.TwoFactorSecret),
	})
	if err != nil {
		return domain.User{}, mapConstraint(err)
	}
	return mapUser(row), nil
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	count, err := r.q.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	return count == 0, nil
}
