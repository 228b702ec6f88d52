package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/202201638/security-project/pkg/httpx"
	"github.com/202201638/security-project/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const guardSecret = "guard-test-secret-0123456789abcdef"

type guardFixture struct {
	now     time.Time
	signer  *jwtx.HS256Signer
	handler http.Handler
}

// newGuard builds authn + an optional role gate in front of a handler that
// echoes the caller identity.
func newGuard(t *testing.T, gate httpx.Middleware) *guardFixture {
	t.Helper()

	f := &guardFixture{now: time.Now().UTC().Truncate(time.Second)}

	signer, err := jwtx.NewSignerHS256([]byte(guardSecret))
	require.NoError(t, err)
	f.signer = signer

	verifier, err := jwtx.NewVerifierHS256([]byte(guardSecret), jwtx.VerifyOptions{
		Issuer:    "test",
		TokenType: jwtx.TokenTypeAccess,
		Now:       func() time.Time { return f.now },
	})
	require.NoError(t, err)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := httpx.IdentityFromContext(r.Context())
		require.True(t, ok)
		require.Equal(t, id.ID, httpx.UserIDFromContext(r.Context()))
		httpx.WriteJSON(w, http.StatusOK, id)
	})
	f.handler = httpx.Chain(echo, httpx.AuthnMiddleware(verifier), gate)
	return f
}

func (f *guardFixture) token(t *testing.T, claims jwtx.Claims) string {
	t.Helper()
	tok, err := f.signer.Sign(claims)
	require.NoError(t, err)
	return tok
}

func (f *guardFixture) access(t *testing.T, role string) string {
	return f.token(t, jwtx.NewAccessClaims("user-1", "alice", role, "test", time.Hour, f.now))
}

func (f *guardFixture) do(authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/protected", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body httpx.MessageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Message
}

func TestAuthnMiddleware(t *testing.T) {
	f := newGuard(t, nil)

	t.Run("valid token passes identity through", func(t *testing.T) {
		rec := f.do("Bearer " + f.access(t, "user"))
		require.Equal(t, http.StatusOK, rec.Code)

		var id httpx.Identity
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&id))
		require.Equal(t, httpx.Identity{ID: "user-1", Username: "alice", Role: "user"}, id)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		rec := f.do("bearer " + f.access(t, "user"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	tests := []struct {
		name    string
		authz   func(t *testing.T) string
		code    int
		message string
	}{
		{"missing header", func(*testing.T) string { return "" }, http.StatusUnauthorized, httpx.MsgAuthenticationRequired},
		{"scheme only", func(*testing.T) string { return "Bearer " }, http.StatusUnauthorized, httpx.MsgAuthenticationRequired},
		{"basic auth", func(*testing.T) string { return "Basic dXNlcjpwYXNz" }, http.StatusUnauthorized, httpx.MsgAuthenticationRequired},
		{"garbage token", func(*testing.T) string { return "Bearer not.a.jwt" }, http.StatusForbidden, httpx.MsgInvalidToken},
		{
			"expired token",
			func(t *testing.T) string {
				return "Bearer " + f.token(t, jwtx.NewAccessClaims("user-1", "alice", "user", "test", time.Hour, f.now.Add(-2*time.Hour)))
			},
			http.StatusUnauthorized, httpx.MsgTokenExpired,
		},
		{
			"refresh token as bearer",
			func(t *testing.T) string {
				return "Bearer " + f.token(t, jwtx.NewRefreshClaims("user-1", "test", time.Hour, f.now))
			},
			http.StatusForbidden, httpx.MsgInvalidToken,
		},
		{
			"tampered token",
			func(t *testing.T) string {
				tok := f.access(t, "user")
				return "Bearer " + tok[:len(tok)-4] + strings.Repeat("A", 4)
			},
			http.StatusForbidden, httpx.MsgInvalidToken,
		},
		{
			"expired token with forged signature",
			func(t *testing.T) string {
				other, err := jwtx.NewSignerHS256([]byte("some-other-secret"))
				require.NoError(t, err)
				tok, err := other.Sign(jwtx.NewAccessClaims("user-1", "alice", "admin", "test", time.Hour, f.now.Add(-2*time.Hour)))
				require.NoError(t, err)
				return "Bearer " + tok
			},
			http.StatusForbidden, httpx.MsgInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.authz(t))
			require.Equal(t, tt.code, rec.Code)
			require.Equal(t, tt.message, message(t, rec))
		})
	}
}

func TestRequireAnyRole(t *testing.T) {
	admin := newGuard(t, httpx.RequireAnyRole("Admin access required", "admin"))
	mod := newGuard(t, httpx.RequireAnyRole("Moderator or admin access required", "moderator", "admin"))

	tests := []struct {
		name  string
		guard *guardFixture
		role  string
		code  int
	}{
		{"user on admin", admin, "user", http.StatusForbidden},
		{"moderator on admin", admin, "moderator", http.StatusForbidden},
		{"admin on admin", admin, "admin", http.StatusOK},
		{"user on moderator", mod, "user", http.StatusForbidden},
		{"moderator on moderator", mod, "moderator", http.StatusOK},
		{"admin on moderator", mod, "admin", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.guard.do("Bearer " + tt.guard.access(t, tt.role))
			require.Equal(t, tt.code, rec.Code)
		})
	}

	rec := admin.do("Bearer " + admin.access(t, "user"))
	require.Equal(t, "Admin access required", message(t, rec))

	rec = admin.do("")
	require.Equal(t, http.StatusUnauthorized, rec.Code, "authentication is checked before the role")
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mark("outer"), nil, mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestCORS(t *testing.T) {
	h := httpx.CORS(httpx.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/public", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"alice"}`))
	require.NoError(t, httpx.DecodeJSON(req, &v))
	require.Equal(t, "alice", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	require.ErrorIs(t, httpx.DecodeJSON(req, &v), httpx.ErrEmptyBody)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":`))
	require.Error(t, httpx.DecodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{} {}`))
	require.Error(t, httpx.DecodeJSON(req, &v))
}
