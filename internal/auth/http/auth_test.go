package http_test

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestRegisterLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	reg, err := ts.client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: alicePassword,
	})
	require.NoError(t, err)
	require.Equal(t, "User registered successfully", reg.Message)
	require.Equal(t, "alice", reg.User.Username)
	require.Equal(t, "a@x.com", reg.User.Email)
	require.Equal(t, "user", reg.User.Role)
	require.NotEmpty(t, reg.User.ID)
	require.False(t, reg.User.CreatedAt.IsZero())

	login, err := ts.client.LoginRaw(ctx, "alice", alicePassword)
	require.NoError(t, err)
	require.Equal(t, "Login successful", login.Message)
	require.Equal(t, reg.User.ID, login.User.ID)
	require.NotEmpty(t, login.AccessToken)
	require.NotEmpty(t, login.RefreshToken)
	require.NotEqual(t, login.AccessToken, login.RefreshToken)

	_, err = ts.client.LoginRaw(ctx, "alice", "Wr0ngpass!")
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid credentials")

	_, err = ts.client.LoginRaw(ctx, "nobody", alicePassword)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid credentials")
}

func TestRegister_Rejections(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "")

	tests := []struct {
		name    string
		req     authsdk.RegisterRequest
		status  int
		message string
		field   string
	}{
		{
			name:    "duplicate username",
			req:     authsdk.RegisterRequest{Username: "alice", Email: "other@example.com", Password: alicePassword},
			status:  http.StatusConflict,
			message: "Username already exists",
		},
		{
			name:    "duplicate email",
			req:     authsdk.RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: alicePassword},
			status:  http.StatusConflict,
			message: "Email already exists",
		},
		{
			name:    "bad username",
			req:     authsdk.RegisterRequest{Username: "a!", Email: "b@example.com", Password: alicePassword},
			status:  http.StatusBadRequest,
			message: "Validation error",
			field:   "username",
		},
		{
			name:    "weak password",
			req:     authsdk.RegisterRequest{Username: "bob", Email: "b@example.com", Password: "password"},
			status:  http.StatusBadRequest,
			message: "Validation error",
			field:   "password",
		},
		{
			name:    "unknown role",
			req:     authsdk.RegisterRequest{Username: "bob", Email: "b@example.com", Password: alicePassword, Role: "root"},
			status:  http.StatusBadRequest,
			message: "Validation error",
			field:   "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.client.Register(t.Context(), tt.req)
			apiErr := requireAPIError(t, err, tt.status, tt.message)
			if tt.field != "" {
				require.Contains(t, apiErr.Errors, tt.field)
			}
		})
	}
}

func TestRegister_EmptyBodyReportsMissingFields(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.srv.URL+"/api/auth/register", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body authsdk.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "Validation error", body.Message)
	require.Equal(t, "Username is required", body.Errors["username"])
	require.Equal(t, "Email is required", body.Errors["email"])
	require.Equal(t, "Password is required", body.Errors["password"])
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/api/auth/register", "/api/auth/login", "/api/auth/refresh-token", "/api/auth/logout"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Post(ts.srv.URL+path, "application/json", strings.NewReader(`{"username":`))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
			var body authsdk.MessageResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			require.Equal(t, "Invalid request body", body.Message)
		})
	}
}

func TestLogin_MissingFields(t *testing.T) {
	ts := newTestServer(t)

	_, err := ts.client.LoginRaw(t.Context(), "", "")
	apiErr := requireAPIError(t, err, http.StatusBadRequest, "Validation error")
	require.Contains(t, apiErr.Errors, "username")
	require.Contains(t, apiErr.Errors, "password")
}

func TestRefreshAndLogout(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()
	ts.register(t, "alice", "")
	login, err := ts.client.LoginRaw(ctx, "alice", alicePassword)
	require.NoError(t, err)

	refreshed, err := ts.client.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, "Token refreshed successfully", refreshed.Message)
	require.NotEmpty(t, refreshed.AccessToken)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)
	require.Empty(t, refreshed.RefreshToken, "refresh tokens are not rotated by default")

	// Without rotation the same refresh token keeps working.
	_, err = ts.client.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)

	require.NoError(t, ts.client.Logout(ctx, login.RefreshToken))
	require.NoError(t, ts.client.Logout(ctx, login.RefreshToken), "logout is idempotent")

	_, err = ts.client.RefreshToken(ctx, login.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid refresh token")
}

func TestRefresh_Rejections(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()
	ts.register(t, "alice", "")
	login, err := ts.client.LoginRaw(ctx, "alice", alicePassword)
	require.NoError(t, err)

	_, err = ts.client.RefreshToken(ctx, "")
	requireAPIError(t, err, http.StatusBadRequest, "Refresh token is required")

	err = ts.client.Logout(ctx, "")
	requireAPIError(t, err, http.StatusBadRequest, "Refresh token is required")

	_, err = ts.client.RefreshToken(ctx, "not-a-jwt")
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid refresh token")

	_, err = ts.client.RefreshToken(ctx, login.AccessToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid refresh token")

	ts.clock.Advance(refreshTTL + time.Second)
	_, err = ts.client.RefreshToken(ctx, login.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid refresh token")
}

func TestRefresh_Rotation(t *testing.T) {
	ts := newTestServer(t, withRotation())
	ctx := t.Context()
	ts.register(t, "alice", "")
	login, err := ts.client.LoginRaw(ctx, "alice", alicePassword)
	require.NoError(t, err)

	refreshed, err := ts.client.RefreshToken(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.RefreshToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	_, err = ts.client.RefreshToken(ctx, login.RefreshToken)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid refresh token")

	_, err = ts.client.RefreshToken(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestAuthRateLimit(t *testing.T) {
	ts := newTestServer(t, withRateLimit(httpx.RateLimitConfig{
		RequestsPerWindow: 2,
		Window:            time.Minute,
		Burst:             2,
	}))

	for range 2 {
		_, err := ts.client.LoginRaw(t.Context(), "nobody", alicePassword)
		requireAPIError(t, err, http.StatusUnauthorized, "Invalid credentials")
	}

	// The bucket is shared across the auth endpoints.
	_, err := ts.client.Register(t.Context(), authsdk.RegisterRequest{})
	requireAPIError(t, err, http.StatusTooManyRequests, httpx.MsgTooManyRequests)
}
