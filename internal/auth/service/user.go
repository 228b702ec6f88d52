package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/202201638/security-project/pkg/slogx"
)

// ProfileUpdate holds the fields a user may change on their own account.
// Nil or empty fields are left unchanged.
type ProfileUpdate struct {
	Email    *string
	Password *string
}

type UserService struct {
	Store  store.Store
	Hasher cryptox.Hasher
}

// GetProfile fetches a user by id.
func (s *UserService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile changes the caller's email and/or password.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (domain.User, error) {
	if errs := validateProfileUpdate(in); len(errs) > 0 {
		return domain.User{}, ValidationError(errs)
	}

	var upd domain.UserUpdate
	if in.Email != nil && *in.Email != "" {
		upd.Email = in.Email
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := s.Hasher.Hash(*in.Password)
		if err != nil {
			if errors.Is(err, cryptox.ErrPasswordTooLong) {
				return domain.User{}, ValidationError(map[string]string{"password": msgPasswordTooLong})
			}
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		upd.PasswordHash = &hash
	}
	if upd.Empty() {
		return domain.User{}, ErrNoFieldsToUpdate
	}

	u, err := s.Store.Users().UpdateUser(ctx, userID, upd)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.User{}, ErrUserNotFound
	case err != nil:
		if taken := conflictFor(err); taken != nil {
			return domain.User{}, taken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("profile updated",
		slog.String("user_id", u.ID),
		slog.Bool("email_changed", upd.Email != nil),
		slog.Bool("password_changed", upd.PasswordHash != nil),
	)
	return u, nil
}

// UpdateRole sets a user's role. Tokens already issued keep the role they
// were minted with until they expire.
func (s *UserService) UpdateRole(ctx context.Context, userID, role string) (domain.User, error) {
	r, err := parseRoleInput(role)
	if err != nil {
		return domain.User{}, err
	}

	u, err := s.Store.Users().UpdateUser(ctx, userID, domain.UserUpdate{Role: &r})
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user role updated", slog.String("user_id", u.ID), slog.String("role", u.Role.String()))
	return u, nil
}
