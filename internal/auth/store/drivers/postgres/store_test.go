package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway postgres container and returns a migrated store.
func setupPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres driver test needs docker")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "gatekeeper",
			"POSTGRES_PASSWORD": "gatekeeper",
			"POSTGRES_DB":       "gatekeeper",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	url := fmt.Sprintf("postgres://gatekeeper:gatekeeper@%s:%s/gatekeeper?sslmode=disable", host, port.Port())
	st, err := postgres.NewStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.ApplyMigrations(), "second run is a no-op")
	return st
}

func TestPostgresStore(t *testing.T) {
	st := setupPostgres(t)
	ctx := context.Background()

	empty, err := st.Users().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	u, err := st.Users().CreateUser(ctx, domain.User{Email: "alice@example.com", PasswordHash: "h"})
	require.NoError(t, err)
	require.NotZero(t, u.ID)

	_, err = st.Users().CreateUser(ctx, domain.User{Email: "alice@example.com", PasswordHash: "h"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().FindByEmail(ctx, "ALICE@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	secret := "JBSWY3DPEHPK3PXP"
	require.NoError(t, st.WithTx(ctx, func(tx store.Tx) error {
		return tx.Users().UpdateTwoFactor(ctx, u.ID, &secret, true)
	}))

	got, err := st.Users().FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, got.TwoFactorEnabled)
	require.Equal(t, secret, *got.TwoFactorSecret)
	require.False(t, got.UpdatedAt.Before(got.CreatedAt))

	require.NoError(t, st.Users().UpdateTwoFactor(ctx, u.ID, nil, false))
	got, err = st.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, got.TwoFactorEnabled)
	require.Nil(t, got.TwoFactorSecret)

	require.ErrorIs(t, st.Users().UpdateTwoFactor(ctx, u.ID+1000, nil, false), store.ErrNotFound)
	require.NoError(t, st.Ping(ctx))
}
