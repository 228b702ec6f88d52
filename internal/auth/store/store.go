package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/202201638/security-project/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
	ErrNestedTx      = errors.New("store: nested transactions are not supported")
)

// ConstraintError reports a uniqueness violation on a named field. It
// matches ErrAlreadyExists under errors.Is.
type ConstraintError struct {
	Field string // "username", "email" or "token_hash"
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("store: %s already exists", e.Field)
}

func (e *ConstraintError) Is(target error) bool { return target == ErrAlreadyExists }

// Store is the root data access interface. Concrete drivers (sqlite, postgres)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a transaction can hand out the same repositories bound to
// itself without allowing transactions within transactions.
//
// Every mutation is durable once the call (or the enclosing WithTx) returns.
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. Read-then-write sequences that must not
	// interleave with other writers belong in here.
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
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser assigns a fresh id and timestamps, persists the user and
	// returns the stored record. Duplicate username or email yields a
	// *ConstraintError.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// UpdateUser merges the non-nil fields of upd into the user and bumps
	// updated_at. Returns the stored record.
	UpdateUser(ctx context.Context, id string, upd domain.UserUpdate) (domain.User, error)

	DeleteUser(ctx context.Context, id string) error
}

type RefreshTokens interface {
	// SaveRefreshToken stores a refresh token record keyed by fingerprint.
	SaveRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// FindRefreshToken returns the record for a fingerprint.
	FindRefreshToken(ctx context.Context, hash string) (domain.RefreshToken, error)

	// ConsumeRefreshToken atomically removes the record and returns it, so
	// at most one caller can consume a given token. Absent → ErrNotFound.
	ConsumeRefreshToken(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the record. Deleting an absent record is not
	// an error.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteExpiredRefreshTokens removes records whose expiry is at or before
	// now and reports how many were removed.
	DeleteExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error)
}
