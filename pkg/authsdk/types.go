package authsdk

import "time"

// ============================================================================
// Shared Types
// ============================================================================

// User is the public view of an account. The password hash never leaves the
// server.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Identity is the caller as asserted by an access token.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Message string `json:"message"`

	// Errors maps a request field to its validation message.
	Errors map[string]string `json:"errors,omitempty"`

	// Details carries the underlying error text. Only populated when the
	// server runs with ENV=dev.
	Details string `json:"details,omitempty"`
}

// MessageResponse is a reply that carries nothing but a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ============================================================================
// Session Types
// ============================================================================

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`

	// Role defaults to "user" when empty.
	Role string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenRequest carries a refresh token for refresh and logout.
type TokenRequest struct {
	Token string `json:"token"`
}

// UserResponse is returned by register and the profile endpoints.
type UserResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResponse is returned by POST /api/auth/login.
type LoginResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is returned by POST /api/auth/refresh-token. RefreshToken
// is only set when the server rotates refresh tokens.
type RefreshResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// ============================================================================
// Profile Types
// ============================================================================

// UpdateProfileRequest is the body of PUT /api/profile. Nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UpdateRoleRequest is the body of PUT /api/users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// IdentityResponse is returned by the role gated demo endpoints.
type IdentityResponse struct {
	Message string   `json:"message"`
	User    Identity `json:"user"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency checked by /readyz.
type HealthChecks struct {
	Database string `json:"database"`
}
