package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories so that a Tx-scoped Store can
// hand out the same repos bound to the transaction.
type Store interface {
	Users() Users

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// back, otherwise the transaction is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// FindByEmail is used during login. The match is exact and case-sensitive.
	FindByEmail(ctx context.Context, email string) (domain.User, error)

	// FindByID returns a user by id.
	FindByID(ctx context.Context, id int64) (domain.User, error)

	// UpdateTwoFactor writes the secret and the enabled flag in one statement
	// and bumps updated_at. A nil secret clears the column. Returns
	// ErrNotFound when no row has that id.
	UpdateTwoFactor(ctx context.Context, id int64, secret *string, enabled bool) error

	// CreateUser inserts u and returns it with the generated id and timestamps.
	// Returns ErrAlreadyExists when the email is taken.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// IsEmpty returns true if there are no users.
	IsEmpty(ctx context.Context) (bool, error)
}
