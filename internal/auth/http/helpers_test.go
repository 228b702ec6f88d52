package http_test

import (
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	httpapi "github.com/202201638/security-project/internal/auth/http"
	"github.com/202201638/security-project/internal/auth/metrics"
	"github.com/202201638/security-project/internal/auth/service"
	"github.com/202201638/security-project/internal/auth/store"
	"github.com/202201638/security-project/internal/auth/store/drivers/sqlite"
	"github.com/202201638/security-project/pkg/authsdk"
	"github.com/202201638/security-project/pkg/cryptox"
	"github.com/202201638/security-project/pkg/httpx"
	"github.com/202201638/security-project/pkg/slogx"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "http-test-secret-0123456789abcdef"
	testIssuer = "security-project-test"
	accessTTL  = time.Hour
	refreshTTL = 7 * 24 * time.Hour

	alicePassword = "Passw0rd!"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testServer struct {
	srv     *httptest.Server
	client  *authsdk.SDKClient
	store   store.Store
	clock   *clock
	metrics *metrics.Metrics
}

type serverOption func(*httpapi.Options, *service.SessionService)

func withRateLimit(auth httpx.RateLimitConfig) serverOption {
	return func(o *httpapi.Options, _ *service.SessionService) {
		o.RateLimit = true
		o.AuthLimit = auth
	}
}

func withRotation() serverOption {
	return func(_ *httpapi.Options, s *service.SessionService) {
		s.RotateRefreshTokens = true
	}
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())

	clk := &clock{t: time.Now().UTC().Truncate(time.Second)}
	tokens, err := service.NewTokenService([]byte(testSecret), testIssuer, accessTTL, refreshTTL, clk.Now)
	require.NoError(t, err)

	hasher, err := cryptox.NewBcryptHasher(4)
	require.NoError(t, err)

	m := metrics.New()
	sessions := &service.SessionService{Store: st, Hasher: hasher, Tokens: tokens, Metrics: m}

	o := httpapi.Options{
		Verifier:     tokens.AccessVerifier,
		Store:        st,
		Logger:       slogx.Discard(),
		Metrics:      m,
		BuildVersion: "test",
		Dev:          true,
	}
	for _, opt := range opts {
		opt(&o, sessions)
	}

	router := httpapi.NewRouter(o)
	router.SessionService = sessions
	router.UserService = &service.UserService{Store: st, Hasher: hasher}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})

	return &testServer{
		srv:     srv,
		client:  authsdk.NewSDKClient(srv.URL),
		store:   st,
		clock:   clk,
		metrics: m,
	}
}

// register creates an account and fails the test on error.
func (ts *testServer) register(t *testing.T, username, role string) authsdk.User {
	t.Helper()

	resp, err := ts.client.Register(t.Context(), authsdk.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: alicePassword,
		Role:     role,
	})
	require.NoError(t, err)
	return resp.User
}

func (ts *testServer) login(t *testing.T, username string) *authsdk.Session {
	t.Helper()

	s, err := ts.client.Login(t.Context(), username, alicePassword)
	require.NoError(t, err)
	return s
}

// requireAPIError asserts err is an *authsdk.APIError with the given status
// and message and returns it.
func requireAPIError(t *testing.T, err error, status int, message string) *authsdk.APIError {
	t.Helper()

	require.Error(t, err)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *authsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode, "message: %s", apiErr.Message)
	require.Equal(t, message, apiErr.Message)
	return apiErr
}
