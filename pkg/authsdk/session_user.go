package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// ============================================================================
// Profile
// ============================================================================

// Profile returns the authenticated user's account.
func (s *Session) Profile(ctx context.Context) (*User, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodGet, "/api/profile", nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateProfile changes the caller's email and/or password.
func (s *Session) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*User, error) {
	var out UserResponse
	if err := s.do(ctx, http.MethodPut, "/api/profile", req, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// UpdateUserRole changes another account's role. Requires an admin session.
func (s *Session) UpdateUserRole(ctx context.Context, userID, role string) (*User, error) {
	var out UserResponse
	path := "/api/users/" + url.PathEscape(userID) + "/role"
	if err := s.do(ctx, http.MethodPut, path, UpdateRoleRequest{Role: role}, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ============================================================================
// Role Gated Endpoints
// ============================================================================

// Protected calls the endpoint open to any authenticated user.
func (s *Session) Protected(ctx context.Context) (*IdentityResponse, error) {
	return s.identity(ctx, "/api/protected")
}

// Moderator calls the endpoint open to moderators and admins.
func (s *Session) Moderator(ctx context.Context) (*IdentityResponse, error) {
	return s.identity(ctx, "/api/moderator")
}

// Admin calls the endpoint open to admins only.
func (s *Session) Admin(ctx context.Context) (*IdentityResponse, error) {
	return s.identity(ctx, "/api/admin")
}

func (s *Session) identity(ctx context.Context, path string) (*IdentityResponse, error) {
	var out IdentityResponse
	if err := s.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
