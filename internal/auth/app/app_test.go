package app_test

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/202201638/security-project/internal/auth/app"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) app.Config {
	t.Helper()
	dir := t.TempDir()

	return app.Config{
		JWTSecret:              "app-test-secret",
		Issuer:                 "security-project-test",
		AccessTokenTTLSeconds:  60,
		RefreshTokenTTLSeconds: 3600,
		PasswordHasher:         "argon2id",
		PepperFile:             filepath.Join(dir, "pepper"),
		DatabaseDriver:         app.DriverSQLite,
		DatabaseFile:           filepath.Join(dir, "auth.db"),
		Port:                   3000,
		Env:                    "test",
		LogLevel:               "error",
		LogFormat:              "json",
		ShutdownGracePeriod:    5 * time.Second,
		HousekeepingInterval:   time.Hour,
	}
}

func newApp(t *testing.T, cfg app.Config) (*authsdk.SDKClient, *app.Application) {
	t.Helper()

	a, err := app.New(t.Context(), cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		require.NoError(t, a.Shutdown())
	})
	return authsdk.NewSDKClient(srv.URL), a
}

// TestEndToEnd drives the documented walkthrough against a fully wired
// application backed by an on-disk SQLite database.
func TestEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.BcryptCost = 4
	cfg.PasswordHasher = "bcrypt"
	client, _ := newApp(t, cfg)
	ctx := t.Context()

	reg, err := client.Register(ctx, authsdk.RegisterRequest{
		Username: "alice",
		Email:    "a@x.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	require.Equal(t, "user", reg.User.Role)

	s, err := client.Login(ctx, "alice", "Passw0rd!")
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken())
	require.NotEmpty(t, s.RefreshToken())
	require.Equal(t, reg.User.ID, s.User().ID)

	_, err = client.Login(ctx, "alice", "wrong")
	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid credentials", apiErr.Message)

	prot, err := s.Protected(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice", prot.User.Username)

	_, err = s.Admin(ctx)
	require.True(t, authsdk.IsStatus(err, http.StatusForbidden))

	require.NoError(t, s.Refresh(ctx))

	refresh := s.RefreshToken()
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, client.Logout(ctx, refresh))

	_, err = client.RefreshToken(ctx, refresh)
	require.True(t, authsdk.IsStatus(err, http.StatusUnauthorized))

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
}

func TestNew_Argon2CreatesPepper(t *testing.T) {
	cfg := testConfig(t)
	client, _ := newApp(t, cfg)

	_, err := client.Register(t.Context(), authsdk.RegisterRequest{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "Passw0rd!",
	})
	require.NoError(t, err)
	_, err = client.Login(t.Context(), "bob", "Passw0rd!")
	require.NoError(t, err)

	require.FileExists(t, cfg.PepperFile)
}

func TestNew_BadDatabasePath(t *testing.T) {
	cfg := testConfig(t)
	cfg.DatabaseFile = filepath.Join(t.TempDir(), "missing", "dir", "auth.db")

	_, err := app.New(t.Context(), cfg)
	require.Error(t, err)
}
