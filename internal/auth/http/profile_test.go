package http_test

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestProfile(t *testing.T) {
	ts := newTestServer(t)
	u := ts.register(t, "alice", "")
	ts.register(t, "bob", "")
	s := ts.login(t, "alice")
	ctx := t.Context()

	p, err := s.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.ID)
	require.Equal(t, "alice@example.com", p.Email)

	_, err = s.UpdateProfile(ctx, authsdk.UpdateProfileRequest{})
	requireAPIError(t, err, http.StatusBadRequest, "No valid fields to update")

	_, err = s.UpdateProfile(ctx, authsdk.UpdateProfileRequest{Email: ptr("not-an-email")})
	apiErr := requireAPIError(t, err, http.StatusBadRequest, "Validation error")
	require.Equal(t, "Invalid email format", apiErr.Errors["email"])

	_, err = s.UpdateProfile(ctx, authsdk.UpdateProfileRequest{Email: ptr("bob@example.com")})
	requireAPIError(t, err, http.StatusConflict, "Email already exists")

	updated, err := s.UpdateProfile(ctx, authsdk.UpdateProfileRequest{
		Email:    ptr("alice@new.example.com"),
		Password: ptr("N3wPassw0rd!"),
	})
	require.NoError(t, err)
	require.Equal(t, "alice@new.example.com", updated.Email)

	_, err = ts.client.LoginRaw(ctx, "alice", alicePassword)
	requireAPIError(t, err, http.StatusUnauthorized, "Invalid credentials")
	_, err = ts.client.LoginRaw(ctx, "alice", "N3wPassw0rd!")
	require.NoError(t, err)
}

func TestProfile_DeletedUser(t *testing.T) {
	ts := newTestServer(t)
	u := ts.register(t, "alice", "")
	s := ts.login(t, "alice")

	require.NoError(t, ts.store.Users().DeleteUser(t.Context(), u.ID))

	_, err := s.Profile(t.Context())
	requireAPIError(t, err, http.StatusNotFound, "User not found")
}

func TestUpdateUserRole(t *testing.T) {
	ts := newTestServer(t)
	alice := ts.register(t, "alice", "")
	ts.register(t, "root", "admin")
	admin := ts.login(t, "root")
	user := ts.login(t, "alice")
	ctx := t.Context()

	_, err := user.UpdateUserRole(ctx, alice.ID, "admin")
	requireAPIError(t, err, http.StatusForbidden, "Admin access required")

	_, err = admin.UpdateUserRole(ctx, alice.ID, "")
	requireAPIError(t, err, http.StatusBadRequest, "Role is required")

	_, err = admin.UpdateUserRole(ctx, alice.ID, "superuser")
	requireAPIError(t, err, http.StatusBadRequest, "Role must be one of: user, moderator, admin")

	_, err = admin.UpdateUserRole(ctx, "01J00000000000000000000000", "moderator")
	requireAPIError(t, err, http.StatusNotFound, "User not found")

	updated, err := admin.UpdateUserRole(ctx, alice.ID, "moderator")
	require.NoError(t, err)
	require.Equal(t, "moderator", updated.Role)

	// The old token still carries the old role; a fresh login picks up the new one.
	_, err = user.Moderator(ctx)
	requireAPIError(t, err, http.StatusForbidden, "Moderator or admin access required")
	_, err = ts.login(t, "alice").Moderator(ctx)
	require.NoError(t, err)
}

func TestSystemEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ctx := t.Context()

	pub, err := ts.client.Public(ctx)
	require.NoError(t, err)
	require.Equal(t, "This is a public endpoint. Anyone can access it.", pub.Message)

	live, err := ts.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := ts.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.Equal(t, "ok", ready.Checks.Database)

	ts.register(t, "alice", "")
	ts.login(t, "alice")

	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `auth_logins_total{outcome="success"} 1`)
	require.Contains(t, string(body), `route="POST /api/auth/login"`)

	doc, err := http.Get(ts.srv.URL + "/swagger/doc.json")
	require.NoError(t, err)
	defer doc.Body.Close()
	require.Equal(t, http.StatusOK, doc.StatusCode)
	docBody, err := io.ReadAll(doc.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(docBody), "/api/auth/refresh-token"))
}

func TestStoreFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "alice", "")
	s := ts.login(t, "alice")

	require.NoError(t, ts.store.Close())

	_, err := ts.client.GetReadiness(t.Context())
	require.True(t, authsdk.IsStatus(err, http.StatusServiceUnavailable), "err: %v", err)

	_, err = s.Profile(t.Context())
	apiErr := requireAPIError(t, err, http.StatusInternalServerError, "Failed to retrieve profile")
	require.NotEmpty(t, apiErr.Details, "dev mode exposes details")
}
