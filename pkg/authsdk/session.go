package authsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// ErrNoRefreshToken is returned when the access token expired and the session
// has no refresh token to renew it with.
var ErrNoRefreshToken = errors.New("authsdk: access token expired and no refresh token available")

// Session represents an authenticated session with automatic token refresh.
// When the server answers 401 "Token expired" the session refreshes the
// access token once and replays the request.
type Session struct {
	client *SDKClient

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         User
}

// User returns the account returned at login. It is the zero value for
// sessions built with NewSessionFromTokens.
func (s *Session) User() User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout revokes the session's refresh token and forgets both tokens.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.RLock()
	refreshToken := s.refreshToken
	s.mu.RUnlock()

	if refreshToken == "" {
		return fmt.Errorf("no refresh token to revoke")
	}

	if err := s.client.Logout(ctx, refreshToken); err != nil {
		return err
	}

	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()
	return nil
}

// Refresh exchanges the refresh token for a new access token now.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.refresh(ctx, s.AccessToken())
	return err
}

// refresh renews the access token unless another goroutine already replaced
// stale, in which case the newer token is returned.
func (s *Session) refresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != stale {
		return s.accessToken, nil
	}
	if s.refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	out, err := s.client.RefreshToken(ctx, s.refreshToken)
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.accessToken = out.AccessToken
	if out.RefreshToken != "" {
		s.refreshToken = out.RefreshToken
	}
	return s.accessToken, nil
}

// do performs an authenticated request and decodes the reply into target.
func (s *Session) do(
	ctx context.Context,
	method, path string,
	body, target any,
	expectedStatus int,
) error {
	payload, err := encodeBody(body)
	if err != nil {
		return err
	}

	token := s.AccessToken()
	resp, err := s.client.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		b, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("failed to read response body: %w", readErr)
		}

		apiErr := parseErrorResponse(resp, b)
		var ae *APIError
		if !errors.As(apiErr, &ae) || !ae.TokenExpired() {
			return apiErr
		}

		if token, err = s.refresh(ctx, token); err != nil {
			return err
		}
		if resp, err = s.client.send(ctx, method, path, payload, token); err != nil {
			return err
		}
	}

	return decodeJSON(resp, target, expectedStatus)
}
