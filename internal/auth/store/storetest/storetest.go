// Package storetest holds the behaviour every store driver must share. Driver
// packages call Run from their own tests with a factory for a fresh, migrated
// store.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty, migrated store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"CreateAndGetUser", testCreateAndGetUser},
		{"UniqueUsernameAndEmail", testUniqueUsernameAndEmail},
		{"UpdateUser", testUpdateUser},
		{"UpdateUserEmailConflict", testUpdateUserEmailConflict},
		{"DeleteUser", testDeleteUser},
		{"RefreshTokenLifecycle", testRefreshTokenLifecycle},
		{"DeleteExpiredRefreshTokens", testDeleteExpiredRefreshTokens},
		{"ConsumeRefreshTokenOnce", testConsumeRefreshTokenOnce},
		{"WithTxRollback", testWithTxRollback},
		{"NestedTxRejected", testNestedTxRejected},
		{"ConcurrentCreateSameUsername", testConcurrentCreateSameUsername},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func newUser(username, email string, role domain.Role) domain.User {
	return domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Role:         role,
	}
}

func testCreateAndGetUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	created, err := s.Users().CreateUser(ctx, newUser("alice", "alice@example.com", domain.RoleModerator))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.False(t, created.CreatedAt.IsZero())
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	byID, err := s.Users().GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.ID, byID.ID)
	require.Equal(t, "alice", byID.Username)
	require.Equal(t, "alice@example.com", byID.Email)
	require.Equal(t, domain.RoleModerator, byID.Role)
	require.Equal(t, created.PasswordHash, byID.PasswordHash)
	require.True(t, created.CreatedAt.Equal(byID.CreatedAt))

	byName, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, created.ID, byName.ID)

	byEmail, err := s.Users().GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.Equal(t, created.ID, byEmail.ID)

	_, err = s.Users().GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.Users().GetUserByUsername(ctx, "ALICE")
	require.ErrorIs(t, err, store.ErrNotFound, "usernames are case-sensitive")
}

func testUniqueUsernameAndEmail(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Users().CreateUser(ctx, newUser("alice", "alice@example.com", domain.RoleUser))
	require.NoError(t, err)

	_, err = s.Users().CreateUser(ctx, newUser("alice", "other@example.com", domain.RoleUser))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	var ce *store.ConstraintError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "username", ce.Field)

	_, err = s.Users().CreateUser(ctx, newUser("bob", "alice@example.com", domain.RoleUser))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "email", ce.Field)
}

func testUpdateUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	u, err := s.Users().CreateUser(ctx, newUser("carol", "carol@example.com", domain.RoleUser))
	require.NoError(t, err)

	email := "carol@new.example.com"
	updated, err := s.Users().UpdateUser(ctx, u.ID, domain.UserUpdate{Email: &email})
	require.NoError(t, err)
	require.Equal(t, email, updated.Email)
	require.Equal(t, u.PasswordHash, updated.PasswordHash, "unset fields are kept")
	require.Equal(t, domain.RoleUser, updated.Role)

	role := domain.RoleAdmin
	hash := "new-hash"
	updated, err = s.Users().UpdateUser(ctx, u.ID, domain.UserUpdate{Role: &role, PasswordHash: &hash})
	require.NoError(t, err)
	require.Equal(t, email, updated.Email)
	require.Equal(t, "new-hash", updated.PasswordHash)
	require.Equal(t, domain.RoleAdmin, updated.Role)

	stored, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, updated.Email, stored.Email)
	require.Equal(t, domain.RoleAdmin, stored.Role)

	_, err = s.Users().UpdateUser(ctx, "missing", domain.UserUpdate{Role: &role})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testUpdateUserEmailConflict(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.Users().CreateUser(ctx, newUser("dave", "dave@example.com", domain.RoleUser))
	require.NoError(t, err)
	erin, err := s.Users().CreateUser(ctx, newUser("erin", "erin@example.com", domain.RoleUser))
	require.NoError(t, err)

	taken := "dave@example.com"
	_, err = s.Users().UpdateUser(ctx, erin.ID, domain.UserUpdate{Email: &taken})
	var ce *store.ConstraintError
	require.True(t, errors.As(err, &ce))
	require.Equal(t, "email", ce.Field)
}

func testDeleteUser(t *testing.T, s store.Store) {
	ctx := context.Background()

	u, err := s.Users().CreateUser(ctx, newUser("frank", "frank@example.com", domain.RoleUser))
	require.NoError(t, err)

	require.NoError(t, s.Users().DeleteUser(ctx, u.ID))
	_, err = s.Users().GetUserByID(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Users().DeleteUser(ctx, u.ID), store.ErrNotFound)

	// The username is free again.
	_, err = s.Users().CreateUser(ctx, newUser("frank", "frank@example.com", domain.RoleUser))
	require.NoError(t, err)
}

func testRefreshTokenLifecycle(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	rec := domain.RefreshToken{
		TokenHash: cryptox.FingerprintToken("token-1"),
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, s.RefreshTokens().SaveRefreshToken(ctx, rec))

	got, err := s.RefreshTokens().FindRefreshToken(ctx, rec.TokenHash)
	require.NoError(t, err)
	require.Equal(t, rec.UserID, got.UserID)
	require.True(t, rec.ExpiresAt.Equal(got.ExpiresAt))

	err = s.RefreshTokens().SaveRefreshToken(ctx, rec)
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, rec.TokenHash))
	_, err = s.RefreshTokens().FindRefreshToken(ctx, rec.TokenHash)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.RefreshTokens().DeleteRefreshToken(ctx, rec.TokenHash), "delete is idempotent")
}

func testDeleteExpiredRefreshTokens(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	for i, exp := range []time.Time{now.Add(-time.Hour), now, now.Add(time.Hour)} {
		require.NoError(t, s.RefreshTokens().SaveRefreshToken(ctx, domain.RefreshToken{
			TokenHash: cryptox.FingerprintToken(fmt.Sprintf("token-%d", i)),
			UserID:    "user-1",
			ExpiresAt: exp,
			CreatedAt: now,
		}))
	}

	n, err := s.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = s.RefreshTokens().FindRefreshToken(ctx, cryptox.FingerprintToken("token-2"))
	require.NoError(t, err)
}

func testWithTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Users().CreateUser(ctx, newUser("gina", "gina@example.com", domain.RoleUser)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Users().GetUserByUsername(ctx, "gina")
	require.ErrorIs(t, err, store.ErrNotFound, "rolled back user must not be visible")

	err = s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().CreateUser(ctx, newUser("gina", "gina@example.com", domain.RoleUser))
		return err
	})
	require.NoError(t, err)

	_, err = s.Users().GetUserByUsername(ctx, "gina")
	require.NoError(t, err)
}

func testNestedTxRejected(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.ErrorIs(t, err, store.ErrNestedTx)
}

func testConcurrentCreateSameUsername(t *testing.T, s store.Store) {
	ctx := context.Background()
	const n = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Users().CreateUser(ctx, newUser("henry", fmt.Sprintf("henry%d@example.com", i), domain.RoleUser))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, store.ErrAlreadyExists):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, succeeded)
	require.Equal(t, n-1, conflicts)
}

func testConsumeRefreshTokenOnce(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	hash := cryptox.FingerprintToken("consumable")

	require.NoError(t, s.RefreshTokens().SaveRefreshToken(ctx, domain.RefreshToken{
		TokenHash: hash,
		UserID:    "user-1",
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}))

	const n = 6
	var (
		wg       sync.WaitGroup
		consumed atomic.Int32
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec, err := s.RefreshTokens().ConsumeRefreshToken(ctx, hash)
			if err == nil {
				consumed.Add(1)
				assert.Equal(t, "user-1", rec.UserID)
				return
			}
			assert.ErrorIs(t, err, store.ErrNotFound)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, consumed.Load())
	_, err := s.RefreshTokens().FindRefreshToken(ctx, hash)
	require.ErrorIs(t, err, store.ErrNotFound)
}
