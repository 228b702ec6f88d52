package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/202201638/security-project/internal/auth/domain"
	"github.com/202201638/security-project/internal/auth/metrics"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/202201638/security-project/pkg/jwtx"
	"github.com/202201638/security-project/pkg/slogx"
)

// dummyPassword is hashed once and verified against when a login names an
// unknown user, so both failure paths cost one hash verification.
const dummyPassword = "dummy-password-1!"

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     string // optional; defaults to "user"
}

type LoginResult struct {
	User         domain.User
	AccessToken  string
	RefreshToken string
}

// RefreshResult carries a new access token. RefreshToken is only set when
// rotation is enabled.
type RefreshResult struct {
	AccessToken  string
	RefreshToken string
}

// SessionService owns the account lifecycle: registration, login, access
// token refresh and logout.
type SessionService struct {
	Store   store.Store
	Hasher  cryptox.Hasher
	Tokens  *TokenService
	Metrics *metrics.Metrics

	// RotateRefreshTokens makes every refresh consume the presented refresh
	// token and hand out a new one.
	RotateRefreshTokens bool

	dummyOnce sync.Once
	dummyHash string
}

// Register validates and creates a new account. The username is checked
// before the email, and both are enforced again by the store's unique
// constraints for concurrent registrations.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	l := slogx.FromContext(ctx)

	role, errs := validateRegistration(in)
	if len(errs) > 0 {
		s.Metrics.Registration(metrics.OutcomeInvalid)
		return domain.User{}, ValidationError(errs)
	}

	if _, err := s.Store.Users().GetUserByUsername(ctx, in.Username); err == nil {
		s.Metrics.Registration(metrics.OutcomeConflict)
		return domain.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		s.Metrics.Registration(metrics.OutcomeError)
		return domain.User{}, err
	}

	if _, err := s.Store.Users().GetUserByEmail(ctx, in.Email); err == nil {
		s.Metrics.Registration(metrics.OutcomeConflict)
		return domain.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		s.Metrics.Registration(metrics.OutcomeError)
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			s.Metrics.Registration(metrics.OutcomeInvalid)
			return domain.User{}, ValidationError(map[string]string{"password": msgPasswordTooLong})
		}
		s.Metrics.Registration(metrics.OutcomeError)
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.Store.Users().CreateUser(ctx, domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if taken := conflictFor(err); taken != nil {
			s.Metrics.Registration(metrics.OutcomeConflict)
			return domain.User{}, taken
		}
		s.Metrics.Registration(metrics.OutcomeError)
		return domain.User{}, err
	}

	s.Metrics.Registration(metrics.OutcomeSuccess)
	l.Info("user registered", slog.String("user_id", user.ID), slog.String("role", user.Role.String()))
	return user, nil
}

// Login checks credentials and opens a session. An unknown username and a
// wrong password produce the same error.
func (s *SessionService) Login(ctx context.Context, username, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	if errs := validateLogin(username, password); len(errs) > 0 {
		s.Metrics.Login(metrics.OutcomeInvalid)
		return LoginResult{}, ValidationError(errs)
	}

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			_ = s.Hasher.Verify(password, s.dummyDigest())
			s.Metrics.Login(metrics.OutcomeInvalidCredentials)
			l.Info("login failed", slog.String("reason", "unknown_user"))
			return LoginResult{}, ErrInvalidCredentials
		}
		s.Metrics.Login(metrics.OutcomeError)
		return LoginResult{}, err
	}

	if err := s.Hasher.Verify(password, user.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) || errors.Is(err, cryptox.ErrPasswordTooLong) {
			s.Metrics.Login(metrics.OutcomeInvalidCredentials)
			l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
			return LoginResult{}, ErrInvalidCredentials
		}
		s.Metrics.Login(metrics.OutcomeError)
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	access, err := s.Tokens.IssueAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return LoginResult{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := s.openRefreshToken(ctx, s.Store, user.ID)
	if err != nil {
		s.Metrics.Login(metrics.OutcomeError)
		return LoginResult{}, err
	}

	s.Metrics.Login(metrics.OutcomeSuccess)
	l.Info("user logged in", slog.String("user_id", user.ID))
	return LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token. Every
// failure is reported as ErrInvalidRefreshToken.
func (s *SessionService) Refresh(ctx context.Context, token string) (RefreshResult, error) {
	l := slogx.FromContext(ctx)

	if token == "" {
		s.Metrics.Refresh(metrics.OutcomeInvalid)
		return RefreshResult{}, ErrRefreshTokenMissing
	}

	fp := cryptox.FingerprintToken(token)
	claims, err := s.Tokens.VerifyRefreshToken(token)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			if derr := s.Store.RefreshTokens().DeleteRefreshToken(ctx, fp); derr != nil {
				l.Warn("failed to delete expired refresh token", slog.Any("error", derr))
			}
		}
		s.Metrics.Refresh(metrics.OutcomeInvalid)
		l.Info("refresh rejected", slog.String("reason", err.Error()))
		return RefreshResult{}, ErrInvalidRefreshToken
	}

	var result RefreshResult
	if s.RotateRefreshTokens {
		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			rec, err := tx.RefreshTokens().ConsumeRefreshToken(ctx, fp)
			if err != nil {
				return err
			}
			user, err := s.sessionUser(ctx, tx, rec, claims)
			if err != nil {
				return err
			}
			if result.AccessToken, err = s.Tokens.IssueAccessToken(user.ID, user.Username, user.Role); err != nil {
				return fmt.Errorf("sign access token: %w", err)
			}
			result.RefreshToken, err = s.openRefreshToken(ctx, tx, user.ID)
			return err
		})
	} else {
		var rec domain.RefreshToken
		rec, err = s.Store.RefreshTokens().FindRefreshToken(ctx, fp)
		if err == nil {
			var user domain.User
			if user, err = s.sessionUser(ctx, s.Store, rec, claims); err == nil {
				result.AccessToken, err = s.Tokens.IssueAccessToken(user.ID, user.Username, user.Role)
			}
		}
	}

	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, ErrInvalidRefreshToken) {
			s.Metrics.Refresh(metrics.OutcomeInvalid)
			l.Info("refresh rejected", slog.String("reason", "no_session"), slog.String("user_id", claims.Subject))
			return RefreshResult{}, ErrInvalidRefreshToken
		}
		s.Metrics.Refresh(metrics.OutcomeError)
		return RefreshResult{}, err
	}

	s.Metrics.Refresh(metrics.OutcomeSuccess)
	l.Debug("access token refreshed", slog.String("user_id", claims.Subject), slog.Bool("rotated", s.RotateRefreshTokens))
	return result, nil
}

// Logout revokes a refresh token. Revoking an unknown or already revoked
// token succeeds.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrRefreshTokenMissing
	}
	if err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, cryptox.FingerprintToken(token)); err != nil {
		return err
	}
	s.Metrics.Logout()
	slogx.FromContext(ctx).Debug("refresh token revoked")
	return nil
}

// sessionUser checks that a stored record still backs the token and loads
// the account it belongs to.
func (s *SessionService) sessionUser(ctx context.Context, st store.Store, rec domain.RefreshToken, claims jwtx.Claims) (domain.User, error) {
	if rec.UserID != claims.Subject {
		return domain.User{}, ErrInvalidRefreshToken
	}
	if rec.Expired(s.Tokens.Now()) {
		if err := st.RefreshTokens().DeleteRefreshToken(ctx, rec.TokenHash); err != nil {
			return domain.User{}, err
		}
		return domain.User{}, ErrInvalidRefreshToken
	}
	return st.Users().GetUserByID(ctx, claims.Subject)
}

// openRefreshToken issues a refresh token for userID and persists its
// record through st.
func (s *SessionService) openRefreshToken(ctx context.Context, st store.Store, userID string) (string, error) {
	token, expiresAt, err := s.Tokens.IssueRefreshToken(userID)
	if err != nil {
		return "", fmt.Errorf("sign refresh token: %w", err)
	}
	err = st.RefreshTokens().SaveRefreshToken(ctx, domain.RefreshToken{
		TokenHash: cryptox.FingerprintToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: s.Tokens.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("save refresh token: %w", err)
	}
	return token, nil
}

func (s *SessionService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(dummyPassword)
	})
	return s.dummyHash
}

// conflictFor maps a store uniqueness violation onto the matching
// client-facing conflict, or nil when err is something else.
func conflictFor(err error) error {
	var ce *store.ConstraintError
	if !errors.As(err, &ce) {
		return nil
	}
	switch ce.Field {
	case "username":
		return ErrUsernameTaken
	case "email":
		return ErrEmailTaken
	default:
		return nil
	}
}
